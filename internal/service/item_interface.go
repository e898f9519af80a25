package service

import (
	"context"

	"actionTracker/internal/models/actionitem"
)

// ActionItemAPI is the remote action item service.
type ActionItemAPI interface {
	List(context.Context) ([]actionitem.Wire, error)
	Create(context.Context, actionitem.Payload) (*actionitem.Wire, error)
	Update(context.Context, string, actionitem.Payload) (*actionitem.Wire, error)
	SetStatus(context.Context, string, actionitem.Status) (*actionitem.Wire, error)
	Delete(context.Context, string) error
}

// ItemRepository is the session's record store.
type ItemRepository interface {
	ReplaceAll(context.Context, []actionitem.Item) error
	InsertFront(context.Context, actionitem.Item) error
	Patch(context.Context, string, ...actionitem.ItemOption) (actionitem.Item, error)
	Remove(context.Context, string) error
	GetByID(context.Context, string) (actionitem.Item, error)
	List(context.Context) ([]actionitem.Item, error)
}
