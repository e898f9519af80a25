package actionitem

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Wire is a record as the action item service sends it. Every field is kept
// raw because the backend mixes plain strings, {"value": ...} wrappers from
// date-typed columns and epoch numbers.
type Wire struct {
	ID               json.RawMessage `json:"id,omitempty"`
	Title            json.RawMessage `json:"title,omitempty"`
	Description      json.RawMessage `json:"description,omitempty"`
	Category         json.RawMessage `json:"category,omitempty"`
	Status           json.RawMessage `json:"status,omitempty"`
	Priority         json.RawMessage `json:"priority,omitempty"`
	RequestedBy      json.RawMessage `json:"requested_by,omitempty"`
	AssignedTo       json.RawMessage `json:"assigned_to,omitempty"`
	RequestedDueDate json.RawMessage `json:"requested_due_date,omitempty"`
	ExpectedDueDate  json.RawMessage `json:"expected_due_date,omitempty"`
	CreatedAt        json.RawMessage `json:"created_at,omitempty"`
	UpdatedAt        json.RawMessage `json:"updated_at,omitempty"`
	ClosedAt         json.RawMessage `json:"closed_at,omitempty"`
}

// Normalize coerces a wire record into the canonical Item shape.
// Normalize(ToWire(Normalize(w))) == Normalize(w) for every w.
func Normalize(w Wire) Item {
	it := Item{
		ID:               idValue(w.ID),
		Title:            stringValue(w.Title),
		Description:      optionalString(w.Description),
		Category:         ParseCategory(stringValue(w.Category)),
		Status:           ParseStatus(stringValue(w.Status)),
		Priority:         ParsePriority(stringValue(w.Priority)),
		AssignedTo:       assigneesValue(w.AssignedTo),
		RequestedDueDate: dateValue(w.RequestedDueDate),
		ExpectedDueDate:  dateValue(w.ExpectedDueDate),
		ClosedAt:         timestampValue(w.ClosedAt),
	}
	if p, ok := ParsePerson(stringValue(w.RequestedBy)); ok {
		it.RequestedBy = p
	}
	if ts := timestampValue(w.CreatedAt); ts != nil {
		it.CreatedAt = *ts
	}
	if ts := timestampValue(w.UpdatedAt); ts != nil {
		it.UpdatedAt = *ts
	}
	return it
}

func NormalizeAll(ws []Wire) []Item {
	items := make([]Item, 0, len(ws))
	for _, w := range ws {
		items = append(items, Normalize(w))
	}
	return items
}

// ToWire renders an Item back into the wire shape.
func ToWire(it Item) Wire {
	w := Wire{
		ID:          marshalRaw(it.ID),
		Title:       marshalRaw(it.Title),
		Description: marshalRaw(it.Description),
		Category:    marshalRaw(it.Category),
		Status:      marshalRaw(it.Status),
		Priority:    marshalRaw(it.Priority),
		AssignedTo:  marshalRaw(it.AssignedTo),

		RequestedDueDate: marshalRaw(it.RequestedDueDate),
		ExpectedDueDate:  marshalRaw(it.ExpectedDueDate),
		ClosedAt:         marshalRaw(it.ClosedAt),
	}
	if it.RequestedBy != "" {
		w.RequestedBy = marshalRaw(it.RequestedBy)
	}
	if it.CreatedAt != "" {
		w.CreatedAt = marshalRaw(it.CreatedAt)
	}
	if it.UpdatedAt != "" {
		w.UpdatedAt = marshalRaw(it.UpdatedAt)
	}
	return w
}

func ParseStatus(s string) Status {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "open":
		return StatusOpen
	case "in_process", "in process":
		return StatusInProcess
	case "on_hold", "on hold":
		return StatusOnHold
	case "closed":
		return StatusClosed
	default:
		return StatusOpen
	}
}

func ParsePriority(s string) Priority {
	for _, p := range Priorities {
		if strings.EqualFold(strings.TrimSpace(s), string(p)) {
			return p
		}
	}
	return PriorityNormal
}

func ParseCategory(s string) Category {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(s, string(c)) {
			return c
		}
	}
	// неизвестные и пустые категории попадают в Misc.
	return CategoryMisc
}

func ParsePerson(s string) (Person, bool) {
	for _, p := range People {
		if strings.EqualFold(strings.TrimSpace(s), string(p)) {
			return p, true
		}
	}
	return "", false
}

// UniquePeople drops unknown names and duplicates, keeping first-seen order.
func UniquePeople(in []Person) []Person {
	out := make([]Person, 0, len(in))
	seen := make(map[Person]bool, len(in))
	for _, raw := range in {
		p, ok := ParsePerson(string(raw))
		if !ok || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

type rawShape int

const (
	shapeAbsent rawShape = iota
	shapeString
	shapeWrapped
	shapeNumber
	shapeOther
)

// classify decides which representation a raw value uses before anything is
// extracted from it.
func classify(raw json.RawMessage) rawShape {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return shapeAbsent
	}
	switch c := raw[0]; {
	case c == '"':
		return shapeString
	case c == '{':
		return shapeWrapped
	case c == '-' || (c >= '0' && c <= '9'):
		return shapeNumber
	default:
		return shapeOther
	}
}

func stringValue(raw json.RawMessage) string {
	switch classify(raw) {
	case shapeString:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return s
	case shapeWrapped:
		return stringValue(unwrap(raw))
	case shapeNumber:
		return string(bytes.TrimSpace(raw))
	default:
		return ""
	}
}

func optionalString(raw json.RawMessage) *string {
	s := stringValue(raw)
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func idValue(raw json.RawMessage) string {
	if classify(raw) == shapeWrapped {
		return ""
	}
	return stringValue(raw)
}

func unwrap(raw json.RawMessage) json.RawMessage {
	var wrapper struct {
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil
	}
	if classify(wrapper.Value) == shapeWrapped {
		return nil
	}
	return wrapper.Value
}

// dateValue collapses any date representation to YYYY-MM-DD, nil when absent.
func dateValue(raw json.RawMessage) *string {
	switch classify(raw) {
	case shapeString:
		s := strings.TrimSpace(stringValue(raw))
		if s == "" {
			return nil
		}
		if len(s) > len(DateLayout) {
			s = s[:len(DateLayout)]
		}
		return &s
	case shapeWrapped:
		return dateValue(unwrap(raw))
	case shapeNumber:
		t, ok := epochMillis(raw)
		if !ok {
			return nil
		}
		s := t.Format(DateLayout)
		return &s
	default:
		return nil
	}
}

func timestampValue(raw json.RawMessage) *string {
	switch classify(raw) {
	case shapeString:
		s := strings.TrimSpace(stringValue(raw))
		if s == "" {
			return nil
		}
		return &s
	case shapeWrapped:
		return timestampValue(unwrap(raw))
	case shapeNumber:
		t, ok := epochMillis(raw)
		if !ok {
			return nil
		}
		s := FormatTimestamp(t)
		return &s
	default:
		return nil
	}
}

// границы четырёхзначного года, за ними YYYY-MM-DD не получится
var (
	minEpochMillis = float64(time.Date(0, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli())
	maxEpochMillis = float64(time.Date(9999, 12, 31, 23, 59, 59, 999e6, time.UTC).UnixMilli())
)

func epochMillis(raw json.RawMessage) (time.Time, bool) {
	ms, err := strconv.ParseFloat(string(bytes.TrimSpace(raw)), 64)
	if err != nil || math.IsNaN(ms) || ms < minEpochMillis || ms > maxEpochMillis {
		return time.Time{}, false
	}
	return time.UnixMilli(int64(ms)).UTC(), true
}

// assigneesValue accepts only an array of strings; anything else is empty.
func assigneesValue(raw json.RawMessage) []Person {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return []Person{}
	}
	var names []string
	if err := json.Unmarshal(raw, &names); err != nil {
		return []Person{}
	}
	people := make([]Person, len(names))
	for i, n := range names {
		people[i] = Person(n)
	}
	return UniquePeople(people)
}

func marshalRaw(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}
