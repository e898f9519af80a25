package main

import (
	"testing"
	"time"

	"actionTracker/internal/models/actionitem"
	"actionTracker/internal/notify"
	"actionTracker/internal/query"

	"github.com/stretchr/testify/assert"
)

// TestDraftInput_Apply тестирует перенос флагов в форму
func TestDraftInput_Apply(t *testing.T) {
	now := time.Date(2025, 12, 28, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		in       draftInput
		base     actionitem.Draft
		expected func(d actionitem.Draft) actionitem.Draft
	}{
		{
			name: "only given fields change",
			in:   draftInput{set: map[string]string{"title": "Call", "priority": "High"}},
			base: actionitem.NewDraft(),
			expected: func(d actionitem.Draft) actionitem.Draft {
				d.Title = "Call"
				d.Priority = actionitem.PriorityHigh
				return d
			},
		},
		{
			name: "assignees replace the default",
			in:   draftInput{set: map[string]string{}, people: []string{"Jake", "Lloyd"}},
			base: actionitem.NewDraft(),
			expected: func(d actionitem.Draft) actionitem.Draft {
				d.AssignedTo = []actionitem.Person{actionitem.PersonJake, actionitem.PersonLloyd}
				return d
			},
		},
		{
			name: "week shortcut then explicit expected date",
			in:   draftInput{set: map[string]string{"expected-due": "2026-02-01"}, week: true},
			base: actionitem.NewDraft(),
			expected: func(d actionitem.Draft) actionitem.Draft {
				d.RequestedDueDate = "2026-01-04"
				d.ExpectedDueDate = "2026-02-01"
				return d
			},
		},
		{
			name: "today shortcut",
			in:   draftInput{set: map[string]string{}, today: true},
			base: actionitem.NewDraft(),
			expected: func(d actionitem.Draft) actionitem.Draft {
				d.RequestedDueDate = "2025-12-28"
				d.ExpectedDueDate = "2025-12-28"
				return d
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.apply(tt.base, now)
			assert.Equal(t, tt.expected(actionitem.NewDraft()), got)
		})
	}
}

// TestRender тестирует вывод строк
func TestRender(t *testing.T) {
	it := actionitem.Item{
		ID:               "0123456789abcdef",
		Title:            "Order business cards",
		Category:         actionitem.CategoryMarketing,
		Status:           actionitem.StatusOnHold,
		Priority:         actionitem.PriorityUrgent,
		AssignedTo:       []actionitem.Person{actionitem.PersonJake, actionitem.PersonJoey},
		RequestedDueDate: actionitem.Ptr("2025-03-10"),
	}

	row := renderRow(it)
	assert.Contains(t, row, "01234567")
	assert.NotContains(t, row, "89abcdef")
	assert.Contains(t, row, "Order business cards")
	assert.Contains(t, row, "On Hold")
	assert.Contains(t, row, "Jake, Joey")
	assert.Contains(t, row, "due 2025-03-10")

	stats := renderStats(query.Stats{Total: 4, Open: 1, InProcess: 1, OnHold: 1, Closed: 1})
	assert.Contains(t, stats, "Total 4")

	assert.Contains(t, renderToast(notify.Notification{Level: notify.LevelError, Message: "Save failed: boom"}), "Save failed: boom")
}
