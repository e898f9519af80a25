package workflow

import (
	"context"
	"fmt"
	"sync"

	"actionTracker/internal/logger"
	"actionTracker/internal/models/actionitem"
	"actionTracker/internal/notify"
	"actionTracker/internal/service"

	"go.uber.org/zap"
)

// Coordinator is the part of the mutation coordinator the workflow drives.
type Coordinator interface {
	Get(ctx context.Context, id string) (actionitem.Item, error)
	Update(ctx context.Context, id string, draft actionitem.Draft) (actionitem.Item, error)
	SetStatus(ctx context.Context, id string, status actionitem.Status) (actionitem.Item, error)
	Delete(ctx context.Context, id string) error
}

// Workflow gates closing, follow-ups and deletion behind a confirmation.
// At most one confirmation is pending; a new request replaces the old one.
type Workflow struct {
	coord  Coordinator
	sender FollowUpSender
	toasts *notify.Bus

	mu      sync.Mutex
	pending *Confirmation
}

func New(coord Coordinator, toasts *notify.Bus, sender FollowUpSender) *Workflow {
	if sender == nil {
		sender = LogSender{}
	}
	return &Workflow{
		coord:  coord,
		sender: sender,
		toasts: toasts,
	}
}

// Pending returns the open confirmation, if any.
func (w *Workflow) Pending() (Confirmation, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending == nil {
		return Confirmation{}, false
	}
	return *w.pending, true
}

func (w *Workflow) raise(c Confirmation) *Confirmation {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending != nil {
		logger.Info("Workflow: Предыдущее подтверждение заменено",
			zap.String("kind", string(w.pending.Kind)), zap.String("id", w.pending.ItemID))
	}
	w.pending = &c
	logger.Debug("Workflow: Запрошено подтверждение", zap.String("kind", string(c.Kind)), zap.String("id", c.ItemID))
	out := c
	return &out
}

// Confirm runs the pending action.
func (w *Workflow) Confirm(ctx context.Context) error {
	w.mu.Lock()
	c := w.pending
	w.pending = nil
	w.mu.Unlock()

	if c == nil {
		return ErrNothingPending
	}
	logger.Info("Workflow: Подтверждено", zap.String("kind", string(c.Kind)), zap.String("id", c.ItemID))
	return c.run(ctx)
}

// Cancel drops the pending confirmation. Nothing is sent.
func (w *Workflow) Cancel() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending == nil {
		return
	}
	logger.Info("Workflow: Отменено", zap.String("kind", string(w.pending.Kind)), zap.String("id", w.pending.ItemID))
	w.pending = nil
}

// RequestStatus is the quick status change. Closing returns a confirmation,
// every other status is applied right away.
func (w *Workflow) RequestStatus(ctx context.Context, id string, status actionitem.Status) (*Confirmation, error) {
	if !status.Valid() {
		err := service.NewValidationError(fmt.Errorf("Unknown status %q.", status))
		return nil, w.fail("Status update failed", err)
	}

	current, err := w.coord.Get(ctx, id)
	if err != nil {
		return nil, w.fail("Status update failed", err)
	}
	if current.Status == status {
		return nil, nil
	}

	if status == actionitem.StatusClosed {
		return w.raise(closeConfirmation(id, func(ctx context.Context) error {
			return w.applyStatus(ctx, id, status)
		})), nil
	}
	return nil, w.applyStatus(ctx, id, status)
}

func (w *Workflow) applyStatus(ctx context.Context, id string, status actionitem.Status) error {
	if _, err := w.coord.SetStatus(ctx, id, status); err != nil {
		return w.fail("Status update failed", err)
	}
	if status == actionitem.StatusClosed {
		w.toasts.Infof("Closed.")
	} else {
		w.toasts.Infof("Status → %s", status)
	}
	return nil
}

// SubmitEdit saves the edit form. Moving a non-Closed item to Closed waits
// for confirmation and then sends every edited field in one update.
func (w *Workflow) SubmitEdit(ctx context.Context, id string, draft actionitem.Draft) (*Confirmation, error) {
	draft = draft.Clean()
	if err := draft.Validate(); err != nil {
		return nil, w.fail("", service.NewValidationError(err))
	}

	current, err := w.coord.Get(ctx, id)
	if err != nil {
		return nil, w.fail("Save failed", err)
	}

	if draft.Status == actionitem.StatusClosed && current.Status != actionitem.StatusClosed {
		return w.raise(closeConfirmation(id, func(ctx context.Context) error {
			return w.save(ctx, id, draft)
		})), nil
	}
	return nil, w.save(ctx, id, draft)
}

func (w *Workflow) save(ctx context.Context, id string, draft actionitem.Draft) error {
	if _, err := w.coord.Update(ctx, id, draft); err != nil {
		return w.fail("Save failed", err)
	}
	w.toasts.Infof("Saved.")
	return nil
}

// RequestFollowUp asks before sending a follow-up. Status is not touched.
func (w *Workflow) RequestFollowUp(ctx context.Context, id string) (*Confirmation, error) {
	if _, err := w.coord.Get(ctx, id); err != nil {
		return nil, w.fail("Follow up failed", err)
	}
	return w.raise(followUpConfirmation(id, func(ctx context.Context) error {
		it, err := w.coord.Get(ctx, id)
		if err != nil {
			return w.fail("Follow up failed", err)
		}
		if err := w.sender.SendFollowUp(ctx, it); err != nil {
			return w.fail("Follow up failed", err)
		}
		w.toasts.Infof("Follow up sent.")
		return nil
	})), nil
}

func (w *Workflow) RequestDelete(ctx context.Context, id string) (*Confirmation, error) {
	if _, err := w.coord.Get(ctx, id); err != nil {
		return nil, w.fail("", err)
	}
	return w.raise(deleteConfirmation(id, func(ctx context.Context) error {
		if err := w.coord.Delete(ctx, id); err != nil {
			return w.fail("", err)
		}
		w.toasts.Infof("Deleted.")
		return nil
	})), nil
}

// fail turns an error into a toast. A missing record is a silent no-op.
func (w *Workflow) fail(prefix string, err error) error {
	if service.HasCode(err, service.CodeNotFound) {
		logger.Debug("Workflow: Запись не найдена, действие пропущено", zap.Error(err))
		return nil
	}
	msg := service.UserMessage(err)
	if prefix != "" && !service.HasCode(err, service.CodeValidation) {
		msg = prefix + ": " + msg
	}
	w.toasts.Errorf("%s", msg)
	return err
}
