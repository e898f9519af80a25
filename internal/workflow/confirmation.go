package workflow

import (
	"context"
	"errors"

	"actionTracker/internal/models/actionitem"
)

type Kind string

const (
	KindClose    Kind = "close"
	KindFollowUp Kind = "follow_up"
	KindDelete   Kind = "delete"
)

var ErrNothingPending = errors.New("нет ожидающего подтверждения")

// Confirmation is a modal question. The guarded action runs only on Confirm.
type Confirmation struct {
	Kind         Kind
	ItemID       string
	Title        string
	Message      string
	ConfirmLabel string
	CancelLabel  string

	run func(context.Context) error
}

func closeConfirmation(id string, run func(context.Context) error) Confirmation {
	return Confirmation{
		Kind:         KindClose,
		ItemID:       id,
		Title:        "Confirm close",
		Message:      "Mark this action item as CLOSED?",
		ConfirmLabel: "Yes, Close",
		CancelLabel:  "Cancel",
		run:          run,
	}
}

func followUpConfirmation(id string, run func(context.Context) error) Confirmation {
	return Confirmation{
		Kind:         KindFollowUp,
		ItemID:       id,
		Title:        "Send follow up",
		Message:      "Send follow up message?",
		ConfirmLabel: "Send",
		CancelLabel:  "Cancel",
		run:          run,
	}
}

func deleteConfirmation(id string, run func(context.Context) error) Confirmation {
	return Confirmation{
		Kind:         KindDelete,
		ItemID:       id,
		Title:        "Delete",
		Message:      "Delete this action item?",
		ConfirmLabel: "Delete",
		CancelLabel:  "Cancel",
		run:          run,
	}
}

// FollowUpSender delivers the follow-up message for an item.
type FollowUpSender interface {
	SendFollowUp(ctx context.Context, it actionitem.Item) error
}
