// Package query derives the visible list from the record store.
package query

import (
	"slices"
	"strings"

	"actionTracker/internal/models/actionitem"
)

// All is the filter value meaning "no constraint".
const All = "All"

type SortKey string

const (
	SortUpdatedDesc SortKey = "updated_desc"
	SortCreatedDesc SortKey = "created_desc"
	SortDueAsc      SortKey = "due_asc"
	SortDueDesc     SortKey = "due_desc"
)

var SortKeys = []SortKey{SortUpdatedDesc, SortCreatedDesc, SortDueAsc, SortDueDesc}

// Criteria are the list controls. Status, Priority and Assignee hold either
// All or an enum value; an empty string is treated as All.
type Criteria struct {
	Text       string
	Status     string
	Priority   string
	Assignee   string
	ShowClosed bool
	Sort       SortKey
}

func DefaultCriteria() Criteria {
	return Criteria{
		Status:   All,
		Priority: All,
		Assignee: All,
		Sort:     SortUpdatedDesc,
	}
}

// View filters and sorts a copy of items. Stages run in a fixed order:
// closed visibility, text, status, priority, assignee, then a stable sort.
func View(items []actionitem.Item, c Criteria) []actionitem.Item {
	rows := make([]actionitem.Item, 0, len(items))
	q := strings.ToLower(strings.TrimSpace(c.Text))

	for _, it := range items {
		// скрытие закрытых работает независимо от фильтра статуса
		if !c.ShowClosed && it.IsClosed() {
			continue
		}
		if q != "" && !strings.Contains(haystack(it), q) {
			continue
		}
		if constrained(c.Status) && string(it.Status) != c.Status {
			continue
		}
		if constrained(c.Priority) && string(it.Priority) != c.Priority {
			continue
		}
		if constrained(c.Assignee) && !it.IsAssignedTo(actionitem.Person(c.Assignee)) {
			continue
		}
		rows = append(rows, it)
	}

	if cmp := comparator(c.Sort); cmp != nil {
		slices.SortStableFunc(rows, cmp)
	}
	return rows
}

func constrained(v string) bool {
	return v != "" && v != All
}

func haystack(it actionitem.Item) string {
	desc := ""
	if it.Description != nil {
		desc = *it.Description
	}
	assignees := make([]string, len(it.AssignedTo))
	for i, p := range it.AssignedTo {
		assignees[i] = string(p)
	}
	return strings.ToLower(strings.Join([]string{
		it.Title,
		desc,
		string(it.Category),
		string(it.Status),
		string(it.RequestedBy),
		strings.Join(assignees, " "),
	}, " "))
}

// ISO-8601 strings compare lexicographically in chronological order.
func comparator(key SortKey) func(a, b actionitem.Item) int {
	switch key {
	case SortUpdatedDesc:
		return func(a, b actionitem.Item) int { return strings.Compare(b.UpdatedAt, a.UpdatedAt) }
	case SortCreatedDesc:
		return func(a, b actionitem.Item) int { return strings.Compare(b.CreatedAt, a.CreatedAt) }
	case SortDueAsc:
		return func(a, b actionitem.Item) int { return strings.Compare(a.EffectiveDueDate(), b.EffectiveDueDate()) }
	case SortDueDesc:
		return func(a, b actionitem.Item) int { return strings.Compare(b.EffectiveDueDate(), a.EffectiveDueDate()) }
	default:
		return nil
	}
}

func ParseSortKey(s string) (SortKey, bool) {
	for _, k := range SortKeys {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

type Stats struct {
	Total     int `json:"total"`
	Open      int `json:"open"`
	InProcess int `json:"in_process"`
	OnHold    int `json:"on_hold"`
	Closed    int `json:"closed"`
}

// CountByStatus counts the whole store, ignoring the current criteria.
func CountByStatus(items []actionitem.Item) Stats {
	st := Stats{Total: len(items)}
	for _, it := range items {
		switch it.Status {
		case actionitem.StatusOpen:
			st.Open++
		case actionitem.StatusInProcess:
			st.InProcess++
		case actionitem.StatusOnHold:
			st.OnHold++
		case actionitem.StatusClosed:
			st.Closed++
		}
	}
	return st
}
