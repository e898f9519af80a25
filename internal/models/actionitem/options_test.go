package actionitem_test

import (
	"testing"

	"actionTracker/internal/models/actionitem"

	"github.com/stretchr/testify/assert"
)

// TestWithUpdatedAtAfter тестирует монотонность updated_at
func TestWithUpdatedAtAfter(t *testing.T) {
	tests := []struct {
		name      string
		createdAt string
		updatedAt string
		ts        string
		expected  string
	}{
		{
			name:      "later stamp is taken",
			createdAt: "2025-01-01T10:00:00.000Z",
			updatedAt: "2025-01-01T10:00:00.000Z",
			ts:        "2025-01-01T11:00:00.000Z",
			expected:  "2025-01-01T11:00:00.000Z",
		},
		{
			name:      "stamp behind created_at",
			createdAt: "2025-01-01T10:00:00.000Z",
			updatedAt: "",
			ts:        "2025-01-01T09:00:00.000Z",
			expected:  "2025-01-01T10:00:00.001Z",
		},
		{
			name:      "same millisecond",
			createdAt: "2025-01-01T09:00:00.000Z",
			updatedAt: "2025-01-01T10:00:00.000Z",
			ts:        "2025-01-01T10:00:00.000Z",
			expected:  "2025-01-01T10:00:00.001Z",
		},
		{
			name:      "same instant in another layout",
			createdAt: "2025-01-01T09:00:00.000Z",
			updatedAt: "2025-01-01T10:00:00.000Z",
			ts:        "2025-01-01T10:00:00Z",
			expected:  "2025-01-01T10:00:00.001Z",
		},
		{
			name:      "date only created_at",
			createdAt: "2025-01-02",
			ts:        "2025-01-01T23:00:00.000Z",
			expected:  "2025-01-02T00:00:00.001Z",
		},
		{
			name:     "empty record",
			ts:       "2025-01-01T09:00:00.000Z",
			expected: "2025-01-01T09:00:00.000Z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := actionitem.Item{CreatedAt: tt.createdAt, UpdatedAt: tt.updatedAt}
			actionitem.Apply(&it, actionitem.WithUpdatedAtAfter(tt.ts))
			assert.Equal(t, tt.expected, it.UpdatedAt)
		})
	}

	assert.Nil(t, actionitem.WithUpdatedAtAfter(""))
}
