package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"actionTracker/internal/logger"
	"actionTracker/internal/models/actionitem"
	rep "actionTracker/internal/repository"

	"go.uber.org/zap"
)

// ActionItemService синхронизирует хранилище с удалённым сервисом.
// Локальное состояние меняется только после ответа сервера.
type ActionItemService struct {
	api      ActionItemAPI
	repo     ItemRepository
	now      func() time.Time
	creating atomic.Bool
}

type ServiceOption func(*ActionItemService)

func WithClock(now func() time.Time) ServiceOption {
	return func(s *ActionItemService) {
		if now != nil {
			s.now = now
		}
	}
}

func NewActionItemService(api ActionItemAPI, repo ItemRepository, opts ...ServiceOption) *ActionItemService {
	s := &ActionItemService{
		api:  api,
		repo: repo,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ActionItemService) timestamp() string {
	return actionitem.FormatTimestamp(s.now())
}

// Load replaces the store with the server's list.
func (s *ActionItemService) Load(ctx context.Context) ([]actionitem.Item, error) {
	rows, err := s.api.List(ctx)
	if err != nil {
		logger.Error("Service: Ошибка загрузки списка", err)
		return nil, NewRemoteError("load", err)
	}

	items := actionitem.NormalizeAll(rows)
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = actionitem.NewTempID()
			logger.Warn("Service: Запись без id, назначен временный", zap.String("id", items[i].ID))
		}
	}

	if err := s.repo.ReplaceAll(ctx, items); err != nil {
		return nil, fmt.Errorf("замена хранилища: %w", err)
	}
	logger.Info("Service: Список загружен", zap.Int("count", len(items)))
	return items, nil
}

func (s *ActionItemService) Items(ctx context.Context) ([]actionitem.Item, error) {
	return s.repo.List(ctx)
}

func (s *ActionItemService) Get(ctx context.Context, id string) (actionitem.Item, error) {
	it, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return actionitem.Item{}, NewNotFound(id)
		}
		return actionitem.Item{}, fmt.Errorf("получение записи: %w", err)
	}
	return it, nil
}

// Creating reports whether a create request is in flight.
func (s *ActionItemService) Creating() bool {
	return s.creating.Load()
}

// Create validates locally, posts the draft and inserts the confirmed record
// at the front of the store. A call made while another create is pending
// returns ErrCreateInFlight without touching the network.
func (s *ActionItemService) Create(ctx context.Context, draft actionitem.Draft) (actionitem.Item, error) {
	if !s.creating.CompareAndSwap(false, true) {
		logger.Info("Service: Повторная отправка формы создания проигнорирована")
		return actionitem.Item{}, ErrCreateInFlight
	}
	defer s.creating.Store(false)

	draft = draft.Clean()
	if err := draft.Validate(); err != nil {
		logger.Info("Service: Ошибка валидации при создании", zap.Error(err))
		return actionitem.Item{}, NewValidationError(err)
	}

	payload := draft.Payload()
	created, err := s.api.Create(ctx, payload)
	if err != nil {
		logger.Error("Service: Ошибка создания", err)
		return actionitem.Item{}, NewRemoteError("create", err)
	}

	it := s.confirmCreated(created, payload)
	if err := s.repo.InsertFront(ctx, it); err != nil {
		return actionitem.Item{}, fmt.Errorf("сохранение записи: %w", err)
	}

	logger.Info("Service: Запись создана", zap.String("id", it.ID))
	return it, nil
}

// confirmCreated fills whatever the server left out of its answer.
func (s *ActionItemService) confirmCreated(created *actionitem.Wire, payload actionitem.Payload) actionitem.Item {
	var it actionitem.Item
	if created != nil {
		it = actionitem.Normalize(*created)
	} else {
		it = actionitem.Item{AssignedTo: []actionitem.Person{}}
		actionitem.Apply(&it, payload.Options()...)
	}

	if it.ID == "" {
		it.ID = actionitem.NewTempID()
	}
	if it.Title == "" {
		it.Title = payload.Title
	}
	if len(it.AssignedTo) == 0 {
		it.AssignedTo = actionitem.UniquePeople(payload.AssignedTo)
	}

	now := s.timestamp()
	if it.CreatedAt == "" {
		it.CreatedAt = now
	}
	if it.UpdatedAt == "" {
		it.UpdatedAt = it.CreatedAt
	}
	if it.Status == actionitem.StatusClosed && it.ClosedAt == nil {
		it.ClosedAt = actionitem.Ptr(it.UpdatedAt)
	}
	return it
}

// Update saves an edit form. The whole draft goes out as one PUT.
func (s *ActionItemService) Update(ctx context.Context, id string, draft actionitem.Draft) (actionitem.Item, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return actionitem.Item{}, err
	}

	draft = draft.Clean()
	if err := draft.Validate(); err != nil {
		logger.Info("Service: Ошибка валидации при сохранении", zap.String("id", id), zap.Error(err))
		return actionitem.Item{}, NewValidationError(err)
	}

	payload := draft.Payload()
	confirmed, err := s.api.Update(ctx, id, payload)
	if err != nil {
		logger.Error("Service: Ошибка сохранения", err, zap.String("id", id))
		return actionitem.Item{}, NewRemoteError("update", err)
	}

	opts := payload.Options()
	opts = append(opts, s.confirmedOptions(confirmed, payload.Status)...)
	return s.patch(ctx, id, opts...)
}

// SetStatus is the quick status change.
func (s *ActionItemService) SetStatus(ctx context.Context, id string, status actionitem.Status) (actionitem.Item, error) {
	if !status.Valid() {
		return actionitem.Item{}, NewValidationError(fmt.Errorf("Unknown status %q.", status))
	}
	if _, err := s.Get(ctx, id); err != nil {
		return actionitem.Item{}, err
	}

	confirmed, err := s.api.SetStatus(ctx, id, status)
	if err != nil {
		logger.Error("Service: Ошибка смены статуса", err, zap.String("id", id), zap.String("status", string(status)))
		return actionitem.Item{}, NewRemoteError("status", err)
	}

	opts := []actionitem.ItemOption{actionitem.WithStatus(status)}
	opts = append(opts, s.confirmedOptions(confirmed, status)...)
	return s.patch(ctx, id, opts...)
}

// confirmedOptions refreshes updated_at and records the first close.
// The server's updated_at wins over the local clock; either way the stored
// value only moves forward. closed_at is never cleared, reopening keeps the
// close history.
func (s *ActionItemService) confirmedOptions(confirmed *actionitem.Wire, status actionitem.Status) []actionitem.ItemOption {
	var server actionitem.Item
	if confirmed != nil {
		server = actionitem.Normalize(*confirmed)
	}
	stamp := server.UpdatedAt
	if stamp == "" {
		stamp = s.timestamp()
	}

	opts := []actionitem.ItemOption{actionitem.WithUpdatedAtAfter(stamp)}
	if status != actionitem.StatusClosed {
		return opts
	}
	if server.ClosedAt != nil {
		opts = append(opts, actionitem.WithClosedAtOnce(*server.ClosedAt))
	}
	// без closed_at от сервера берём уже сдвинутый updated_at
	return append(opts, func(it *actionitem.Item) {
		actionitem.Apply(it, actionitem.WithClosedAtOnce(it.UpdatedAt))
	})
}

// patch applies a confirmed change. A record removed while the request was
// in flight makes this a silent no-op.
func (s *ActionItemService) patch(ctx context.Context, id string, opts ...actionitem.ItemOption) (actionitem.Item, error) {
	it, err := s.repo.Patch(ctx, id, opts...)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: Запись исчезла до ответа сервера", zap.String("id", id))
			return actionitem.Item{}, NewNotFound(id)
		}
		return actionitem.Item{}, fmt.Errorf("обновление записи: %w", err)
	}
	return it, nil
}

// Delete removes locally first; the remote delete is fire-and-forget.
func (s *ActionItemService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Remove(ctx, id); err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return NewNotFound(id)
		}
		return fmt.Errorf("удаление записи: %w", err)
	}

	if actionitem.IsTempID(id) {
		return nil
	}
	if err := s.api.Delete(ctx, id); err != nil {
		logger.Warn("Service: Удалённое удаление не удалось", zap.String("id", id), zap.Error(err))
	}
	return nil
}
