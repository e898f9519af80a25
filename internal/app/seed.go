package app

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"actionTracker/internal/models/actionitem"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// LoadSeed читает yaml-список записей в том же виде, что отдаёт сервис,
// и нормализует их. Записи без id получают новый uuid.
func LoadSeed(path string, now time.Time) ([]actionitem.Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("не могу открыть %s: %w", path, err)
	}
	return ParseSeed(data, now)
}

func ParseSeed(data []byte, now time.Time) ([]actionitem.Item, error) {
	var rows []map[string]any
	if err := yaml.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("ошибка парсинга seed: %w", err)
	}

	ts := actionitem.FormatTimestamp(now)
	items := make([]actionitem.Item, 0, len(rows))
	for i, row := range rows {
		raw, err := json.Marshal(row)
		if err != nil {
			return nil, fmt.Errorf("запись %d: %w", i, err)
		}
		var w actionitem.Wire
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, fmt.Errorf("запись %d: %w", i, err)
		}

		it := actionitem.Normalize(w)
		if it.ID == "" {
			it.ID = uuid.NewString()
		}
		if it.CreatedAt == "" {
			it.CreatedAt = ts
		}
		if it.UpdatedAt == "" {
			it.UpdatedAt = it.CreatedAt
		}
		if it.IsClosed() && it.ClosedAt == nil {
			it.ClosedAt = actionitem.Ptr(it.UpdatedAt)
		}
		items = append(items, it)
	}
	return items, nil
}
