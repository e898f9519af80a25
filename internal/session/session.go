// Package session owns the state of one working session: the record store,
// the list criteria, the toasts and the pending confirmation.
package session

import (
	"context"
	"sync"
	"time"

	"actionTracker/internal/client"
	"actionTracker/internal/config"
	"actionTracker/internal/logger"
	"actionTracker/internal/models/actionitem"
	"actionTracker/internal/notify"
	"actionTracker/internal/query"
	"actionTracker/internal/repository/actionitem/inmemory"
	"actionTracker/internal/service"
	"actionTracker/internal/workflow"

	"go.uber.org/zap"
)

type Session struct {
	repo   *inmemory.ItemStorage
	svc    *service.ActionItemService
	flow   *workflow.Workflow
	toasts *notify.Bus
	now    func() time.Time

	mu       sync.RWMutex
	criteria query.Criteria
}

type options struct {
	sender workflow.FollowUpSender
	now    func() time.Time
}

type Option func(*options)

func WithFollowUpSender(s workflow.FollowUpSender) Option {
	return func(o *options) {
		o.sender = s
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func New(api service.ActionItemAPI, opts ...Option) *Session {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	repo := inmemory.NewItemStorage()
	toasts := notify.NewBus()
	svc := service.NewActionItemService(api, repo, service.WithClock(o.now))

	return &Session{
		repo:     repo,
		svc:      svc,
		flow:     workflow.New(svc, toasts, o.sender),
		toasts:   toasts,
		now:      o.now,
		criteria: query.DefaultCriteria(),
	}
}

// Open validates the client configuration and connects. A configuration
// error is the only fatal error of a session.
func Open(cfg config.APIConfig, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		logger.Error("Session: Неверная конфигурация клиента", err)
		return nil, service.NewConfigError(err)
	}

	var clientOpts []client.Option
	if cfg.Timeout > 0 {
		clientOpts = append(clientOpts, client.WithTimeout(cfg.Timeout))
	}
	api, err := client.New(cfg.BaseURL, cfg.APIKey, clientOpts...)
	if err != nil {
		return nil, service.NewConfigError(err)
	}
	return New(api, opts...), nil
}

func (s *Session) Toasts() *notify.Bus {
	return s.toasts
}

func (s *Session) Creating() bool {
	return s.svc.Creating()
}

func (s *Session) Load(ctx context.Context) error {
	if _, err := s.svc.Load(ctx); err != nil {
		s.toasts.Errorf("Load failed: %s", service.UserMessage(err))
		return err
	}
	return nil
}

// NewDraft returns the create form with its defaults.
func (s *Session) NewDraft() actionitem.Draft {
	return actionitem.NewDraft()
}

// EditDraft prefills the edit form from the stored record.
func (s *Session) EditDraft(ctx context.Context, id string) (actionitem.Draft, error) {
	it, err := s.svc.Get(ctx, id)
	if err != nil {
		return actionitem.Draft{}, err
	}
	return actionitem.DraftFromItem(it), nil
}

func (s *Session) Today(d actionitem.Draft) actionitem.Draft {
	return d.Today(s.now())
}

func (s *Session) InAWeek(d actionitem.Draft) actionitem.Draft {
	return d.InAWeek(s.now())
}

// Create submits the create form. A repeated submit while one is pending
// is ignored without a toast.
func (s *Session) Create(ctx context.Context, d actionitem.Draft) (actionitem.Item, error) {
	it, err := s.svc.Create(ctx, d)
	switch {
	case err == nil:
		s.toasts.Infof("Action item created.")
	case service.HasCode(err, service.CodeCreateInFlight):
	case service.HasCode(err, service.CodeValidation):
		s.toasts.Errorf("%s", service.UserMessage(err))
	default:
		s.toasts.Errorf("Create failed: %s", service.UserMessage(err))
	}
	return it, err
}

func (s *Session) RequestStatus(ctx context.Context, id string, status actionitem.Status) (*workflow.Confirmation, error) {
	return s.flow.RequestStatus(ctx, id, status)
}

func (s *Session) SubmitEdit(ctx context.Context, id string, d actionitem.Draft) (*workflow.Confirmation, error) {
	return s.flow.SubmitEdit(ctx, id, d)
}

func (s *Session) RequestFollowUp(ctx context.Context, id string) (*workflow.Confirmation, error) {
	return s.flow.RequestFollowUp(ctx, id)
}

func (s *Session) RequestDelete(ctx context.Context, id string) (*workflow.Confirmation, error) {
	return s.flow.RequestDelete(ctx, id)
}

func (s *Session) Pending() (workflow.Confirmation, bool) {
	return s.flow.Pending()
}

func (s *Session) Confirm(ctx context.Context) error {
	return s.flow.Confirm(ctx)
}

func (s *Session) Cancel() {
	s.flow.Cancel()
}

func (s *Session) Get(ctx context.Context, id string) (actionitem.Item, error) {
	return s.svc.Get(ctx, id)
}

func (s *Session) Criteria() query.Criteria {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.criteria
}

func (s *Session) SetCriteria(c query.Criteria) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.criteria = c
	logger.Debug("Session: Критерии списка изменены",
		zap.String("text", c.Text),
		zap.String("status", c.Status),
		zap.String("priority", c.Priority),
		zap.String("assignee", c.Assignee),
		zap.Bool("show_closed", c.ShowClosed),
		zap.String("sort", string(c.Sort)),
	)
}

// View is the visible list for the current criteria.
func (s *Session) View(ctx context.Context) ([]actionitem.Item, error) {
	items, err := s.svc.Items(ctx)
	if err != nil {
		return nil, err
	}
	return query.View(items, s.Criteria()), nil
}

// Stats counts the whole store, ignoring the criteria.
func (s *Session) Stats(ctx context.Context) (query.Stats, error) {
	items, err := s.svc.Items(ctx)
	if err != nil {
		return query.Stats{}, err
	}
	return query.CountByStatus(items), nil
}
