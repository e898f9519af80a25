package handlers

import (
	"context"

	"actionTracker/internal/models/actionitem"
)

type ItemStore interface {
	InsertFront(context.Context, actionitem.Item) error
	Patch(context.Context, string, ...actionitem.ItemOption) (actionitem.Item, error)
	Remove(context.Context, string) error
	GetByID(context.Context, string) (actionitem.Item, error)
	List(context.Context) ([]actionitem.Item, error)
}
