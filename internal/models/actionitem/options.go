package actionitem

import "time"

// ItemOption изменяет одно поле записи. nil-опции пропускаются при применении.
type ItemOption func(*Item)

func Apply(it *Item, opts ...ItemOption) {
	for _, opt := range opts {
		if opt != nil {
			opt(it)
		}
	}
}

func WithTitle(title string) ItemOption {
	if title == "" {
		return nil
	}
	return func(it *Item) {
		it.Title = title
	}
}

// WithDescription sets or clears the description.
func WithDescription(description *string) ItemOption {
	return func(it *Item) {
		it.Description = cloneString(description)
	}
}

func WithCategory(category Category) ItemOption {
	if !category.Valid() {
		return nil
	}
	return func(it *Item) {
		it.Category = category
	}
}

func WithStatus(status Status) ItemOption {
	if !status.Valid() {
		return nil
	}
	return func(it *Item) {
		it.Status = status
	}
}

func WithPriority(priority Priority) ItemOption {
	if !priority.Valid() {
		return nil
	}
	return func(it *Item) {
		it.Priority = priority
	}
}

func WithRequestedBy(person Person) ItemOption {
	return func(it *Item) {
		it.RequestedBy = person
	}
}

// пустой список не должен затирать исполнителей
func WithAssignedTo(people []Person) ItemOption {
	people = UniquePeople(people)
	if len(people) == 0 {
		return nil
	}
	return func(it *Item) {
		it.AssignedTo = people
	}
}

func WithRequestedDueDate(date *string) ItemOption {
	return func(it *Item) {
		it.RequestedDueDate = cloneString(date)
	}
}

func WithExpectedDueDate(date *string) ItemOption {
	return func(it *Item) {
		it.ExpectedDueDate = cloneString(date)
	}
}

func WithUpdatedAt(ts string) ItemOption {
	if ts == "" {
		return nil
	}
	return func(it *Item) {
		it.UpdatedAt = ts
	}
}

// WithUpdatedAtAfter moves updated_at forward to ts. When ts is not later
// than the stored updated_at or created_at, the later of the two plus one
// millisecond is used instead.
func WithUpdatedAtAfter(ts string) ItemOption {
	if ts == "" {
		return nil
	}
	return func(it *Item) {
		floor := it.UpdatedAt
		if timestampBefore(floor, it.CreatedAt) {
			floor = it.CreatedAt
		}
		if floor == "" || timestampBefore(floor, ts) {
			it.UpdatedAt = ts
			return
		}
		if t, ok := parseTimestamp(floor); ok {
			it.UpdatedAt = FormatTimestamp(t.Add(time.Millisecond))
			return
		}
		it.UpdatedAt = ts
	}
}

// WithClosedAtOnce records the first close only; an existing closed_at is kept.
func WithClosedAtOnce(ts string) ItemOption {
	if ts == "" {
		return nil
	}
	return func(it *Item) {
		if it.ClosedAt == nil {
			it.ClosedAt = &ts
		}
	}
}
