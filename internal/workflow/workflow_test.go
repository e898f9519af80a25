package workflow_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"actionTracker/internal/client"
	"actionTracker/internal/models/actionitem"
	"actionTracker/internal/notify"
	"actionTracker/internal/repository/actionitem/inmemory"
	"actionTracker/internal/service"
	"actionTracker/internal/workflow"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) List(ctx context.Context) ([]actionitem.Wire, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]actionitem.Wire), args.Error(1)
}

func (m *MockAPI) Create(ctx context.Context, p actionitem.Payload) (*actionitem.Wire, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*actionitem.Wire), args.Error(1)
}

func (m *MockAPI) Update(ctx context.Context, id string, p actionitem.Payload) (*actionitem.Wire, error) {
	args := m.Called(ctx, id, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*actionitem.Wire), args.Error(1)
}

func (m *MockAPI) SetStatus(ctx context.Context, id string, status actionitem.Status) (*actionitem.Wire, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*actionitem.Wire), args.Error(1)
}

func (m *MockAPI) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockSender struct {
	mock.Mock
}

func (m *MockSender) SendFollowUp(ctx context.Context, it actionitem.Item) error {
	return m.Called(ctx, it.ID).Error(0)
}

type fixture struct {
	api    *MockAPI
	repo   *inmemory.ItemStorage
	svc    *service.ActionItemService
	toasts *notify.Bus
	flow   *workflow.Workflow
}

func newFixture(t *testing.T, sender workflow.FollowUpSender, items ...actionitem.Item) *fixture {
	t.Helper()
	clock := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	now := func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	f := &fixture{
		api:    new(MockAPI),
		repo:   inmemory.NewItemStorage(),
		toasts: notify.NewBus(),
	}
	f.svc = service.NewActionItemService(f.api, f.repo, service.WithClock(now))
	f.flow = workflow.New(f.svc, f.toasts, sender)
	require.NoError(t, f.repo.ReplaceAll(context.Background(), items))
	return f
}

func (f *fixture) item(t *testing.T, id string) actionitem.Item {
	t.Helper()
	it, err := f.repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	return it
}

func (f *fixture) lastToast(t *testing.T) string {
	t.Helper()
	n, ok := f.toasts.Last()
	require.True(t, ok)
	return n.Message
}

func wire(raw string) *actionitem.Wire {
	var w actionitem.Wire
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		panic(err)
	}
	return &w
}

func openItem(id string) actionitem.Item {
	return actionitem.Item{
		ID:         id,
		Title:      "Call the bank",
		Category:   actionitem.CategorySetup,
		Status:     actionitem.StatusOpen,
		Priority:   actionitem.PriorityNormal,
		AssignedTo: []actionitem.Person{actionitem.PersonLloyd},
		CreatedAt:  "2024-12-01T00:00:00.000Z",
		UpdatedAt:  "2024-12-01T00:00:00.000Z",
	}
}

// TestWorkflow_NonClosedStatus тестирует смену статуса без подтверждения
func TestWorkflow_NonClosedStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, openItem("1"))
	f.api.On("SetStatus", mock.Anything, "1", actionitem.StatusOnHold).Return(nil, nil)

	c, err := f.flow.RequestStatus(ctx, "1", actionitem.StatusOnHold)
	require.NoError(t, err)
	assert.Nil(t, c)

	assert.Equal(t, actionitem.StatusOnHold, f.item(t, "1").Status)
	assert.Equal(t, "Status → On Hold", f.lastToast(t))
	f.api.AssertExpectations(t)
}

// TestWorkflow_CloseGate тестирует подтверждение закрытия
func TestWorkflow_CloseGate(t *testing.T) {
	ctx := context.Background()

	t.Run("cancel - nothing changes, nothing is sent", func(t *testing.T) {
		f := newFixture(t, nil, openItem("1"))

		c, err := f.flow.RequestStatus(ctx, "1", actionitem.StatusClosed)
		require.NoError(t, err)
		require.NotNil(t, c)
		assert.Equal(t, workflow.KindClose, c.Kind)
		assert.Equal(t, "Confirm close", c.Title)
		assert.Equal(t, "Mark this action item as CLOSED?", c.Message)
		assert.Equal(t, "Yes, Close", c.ConfirmLabel)
		assert.Equal(t, "Cancel", c.CancelLabel)

		assert.Equal(t, openItem("1"), f.item(t, "1"))

		f.flow.Cancel()
		_, pending := f.flow.Pending()
		assert.False(t, pending)
		assert.Equal(t, openItem("1"), f.item(t, "1"))
		assert.ErrorIs(t, f.flow.Confirm(ctx), workflow.ErrNothingPending)
		f.api.AssertNotCalled(t, "SetStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("confirm - closes and stamps closed_at", func(t *testing.T) {
		f := newFixture(t, nil, openItem("1"))
		f.api.On("SetStatus", mock.Anything, "1", actionitem.StatusClosed).Return(nil, nil).Once()

		_, err := f.flow.RequestStatus(ctx, "1", actionitem.StatusClosed)
		require.NoError(t, err)
		require.NoError(t, f.flow.Confirm(ctx))

		it := f.item(t, "1")
		assert.Equal(t, actionitem.StatusClosed, it.Status)
		assert.NotNil(t, it.ClosedAt)
		assert.Equal(t, "Closed.", f.lastToast(t))
		f.api.AssertExpectations(t)
	})

	t.Run("confirm - remote failure leaves item open", func(t *testing.T) {
		f := newFixture(t, nil, openItem("1"))
		f.api.On("SetStatus", mock.Anything, "1", actionitem.StatusClosed).
			Return(nil, &client.APIError{StatusCode: 500, Message: "boom"})

		_, err := f.flow.RequestStatus(ctx, "1", actionitem.StatusClosed)
		require.NoError(t, err)
		require.Error(t, f.flow.Confirm(ctx))

		assert.Equal(t, actionitem.StatusOpen, f.item(t, "1").Status)
		assert.Equal(t, "Status update failed: boom", f.lastToast(t))
	})

	t.Run("reopen needs no confirmation", func(t *testing.T) {
		closed := openItem("1")
		closed.Status = actionitem.StatusClosed
		closed.ClosedAt = actionitem.Ptr("2024-12-02T00:00:00.000Z")
		f := newFixture(t, nil, closed)
		f.api.On("SetStatus", mock.Anything, "1", actionitem.StatusOpen).Return(nil, nil)

		c, err := f.flow.RequestStatus(ctx, "1", actionitem.StatusOpen)
		require.NoError(t, err)
		assert.Nil(t, c)
		it := f.item(t, "1")
		assert.Equal(t, actionitem.StatusOpen, it.Status)
		assert.Equal(t, "2024-12-02T00:00:00.000Z", *it.ClosedAt)
	})
}

// TestWorkflow_SubmitEdit тестирует сохранение формы через шлюз закрытия
func TestWorkflow_SubmitEdit(t *testing.T) {
	ctx := context.Background()

	t.Run("closing edit is bundled into one update after confirm", func(t *testing.T) {
		f := newFixture(t, nil, openItem("1"))

		d := actionitem.DraftFromItem(openItem("1"))
		d.Title = "Call the bank again"
		d.Priority = actionitem.PriorityUrgent
		d.Status = actionitem.StatusClosed

		c, err := f.flow.SubmitEdit(ctx, "1", d)
		require.NoError(t, err)
		require.NotNil(t, c)
		assert.Equal(t, workflow.KindClose, c.Kind)
		assert.Equal(t, openItem("1"), f.item(t, "1"))
		f.api.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)

		f.api.On("Update", mock.Anything, "1", mock.MatchedBy(func(p actionitem.Payload) bool {
			return p.Title == "Call the bank again" && p.Priority == actionitem.PriorityUrgent && p.Status == actionitem.StatusClosed
		})).Return(nil, nil).Once()

		require.NoError(t, f.flow.Confirm(ctx))
		it := f.item(t, "1")
		assert.Equal(t, "Call the bank again", it.Title)
		assert.Equal(t, actionitem.StatusClosed, it.Status)
		assert.NotNil(t, it.ClosedAt)
		assert.Equal(t, "Saved.", f.lastToast(t))
		f.api.AssertNumberOfCalls(t, "Update", 1)
		f.api.AssertNotCalled(t, "SetStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("plain edit is saved right away", func(t *testing.T) {
		f := newFixture(t, nil, openItem("1"))
		f.api.On("Update", mock.Anything, "1", mock.Anything).Return(nil, nil)

		d := actionitem.DraftFromItem(openItem("1"))
		d.Description = "  bring the papers "
		c, err := f.flow.SubmitEdit(ctx, "1", d)
		require.NoError(t, err)
		assert.Nil(t, c)
		assert.Equal(t, "bring the papers", *f.item(t, "1").Description)
	})

	t.Run("editing a closed item keeps it closed without asking", func(t *testing.T) {
		closed := openItem("1")
		closed.Status = actionitem.StatusClosed
		closed.ClosedAt = actionitem.Ptr("2024-12-02T00:00:00.000Z")
		f := newFixture(t, nil, closed)
		f.api.On("Update", mock.Anything, "1", mock.Anything).Return(nil, nil)

		d := actionitem.DraftFromItem(closed)
		d.Title = "Renamed"
		c, err := f.flow.SubmitEdit(ctx, "1", d)
		require.NoError(t, err)
		assert.Nil(t, c)
		assert.Equal(t, "2024-12-02T00:00:00.000Z", *f.item(t, "1").ClosedAt)
	})

	t.Run("validation error is toasted without prefix", func(t *testing.T) {
		f := newFixture(t, nil, openItem("1"))

		d := actionitem.DraftFromItem(openItem("1"))
		d.AssignedTo = nil
		_, err := f.flow.SubmitEdit(ctx, "1", d)
		require.Error(t, err)
		assert.Equal(t, "Please select at least one assignee.", f.lastToast(t))
	})

	t.Run("remote failure is toasted with reason", func(t *testing.T) {
		f := newFixture(t, nil, openItem("1"))
		f.api.On("Update", mock.Anything, "1", mock.Anything).Return(nil, &client.APIError{StatusCode: 502, Message: "HTTP 502"})

		_, err := f.flow.SubmitEdit(ctx, "1", actionitem.DraftFromItem(openItem("1")))
		require.Error(t, err)
		assert.Equal(t, "Save failed: HTTP 502", f.lastToast(t))
	})
}

// TestWorkflow_FollowUp тестирует отправку напоминания
func TestWorkflow_FollowUp(t *testing.T) {
	ctx := context.Background()

	t.Run("confirm sends and keeps status", func(t *testing.T) {
		sender := new(MockSender)
		sender.On("SendFollowUp", mock.Anything, "1").Return(nil).Once()
		f := newFixture(t, sender, openItem("1"))

		c, err := f.flow.RequestFollowUp(ctx, "1")
		require.NoError(t, err)
		assert.Equal(t, "Send follow up", c.Title)
		assert.Equal(t, "Send follow up message?", c.Message)
		assert.Equal(t, "Send", c.ConfirmLabel)
		sender.AssertNotCalled(t, "SendFollowUp", mock.Anything, mock.Anything)

		require.NoError(t, f.flow.Confirm(ctx))
		assert.Equal(t, "Follow up sent.", f.lastToast(t))
		assert.Equal(t, openItem("1"), f.item(t, "1"))
		sender.AssertExpectations(t)
	})

	t.Run("cancel sends nothing", func(t *testing.T) {
		sender := new(MockSender)
		f := newFixture(t, sender, openItem("1"))

		_, err := f.flow.RequestFollowUp(ctx, "1")
		require.NoError(t, err)
		f.flow.Cancel()
		sender.AssertNotCalled(t, "SendFollowUp", mock.Anything, mock.Anything)
	})

	t.Run("sender failure is toasted", func(t *testing.T) {
		sender := new(MockSender)
		sender.On("SendFollowUp", mock.Anything, "1").Return(errors.New("smtp down"))
		f := newFixture(t, sender, openItem("1"))

		_, err := f.flow.RequestFollowUp(ctx, "1")
		require.NoError(t, err)
		require.Error(t, f.flow.Confirm(ctx))
		assert.Equal(t, "Follow up failed: smtp down", f.lastToast(t))
	})
}

// TestWorkflow_Delete тестирует удаление с подтверждением
func TestWorkflow_Delete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, openItem("1"), openItem("2"))
	f.api.On("Delete", mock.Anything, "1").Return(nil)

	c, err := f.flow.RequestDelete(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Delete this action item?", c.Message)
	assert.Equal(t, 2, f.repo.Len())

	require.NoError(t, f.flow.Confirm(ctx))
	assert.Equal(t, 1, f.repo.Len())
	assert.Equal(t, "Deleted.", f.lastToast(t))
}

// TestWorkflow_SinglePending тестирует замену ожидающего подтверждения
func TestWorkflow_SinglePending(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, openItem("1"), openItem("2"))
	f.api.On("Delete", mock.Anything, "2").Return(nil)

	_, err := f.flow.RequestStatus(ctx, "1", actionitem.StatusClosed)
	require.NoError(t, err)
	_, err = f.flow.RequestDelete(ctx, "2")
	require.NoError(t, err)

	c, ok := f.flow.Pending()
	require.True(t, ok)
	assert.Equal(t, workflow.KindDelete, c.Kind)

	require.NoError(t, f.flow.Confirm(ctx))
	assert.Equal(t, actionitem.StatusOpen, f.item(t, "1").Status)
	f.api.AssertNotCalled(t, "SetStatus", mock.Anything, mock.Anything, mock.Anything)
}

// TestWorkflow_MissingRecord тестирует молчаливый пропуск для удалённой записи
func TestWorkflow_MissingRecord(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, openItem("1"))

	c, err := f.flow.RequestStatus(ctx, "ghost", actionitem.StatusClosed)
	assert.NoError(t, err)
	assert.Nil(t, c)
	_, ok := f.toasts.Last()
	assert.False(t, ok)

	// запись удалили, пока открыто подтверждение
	_, err = f.flow.RequestStatus(ctx, "1", actionitem.StatusClosed)
	require.NoError(t, err)
	require.NoError(t, f.repo.Remove(ctx, "1"))
	assert.NoError(t, f.flow.Confirm(ctx))
	f.api.AssertNotCalled(t, "SetStatus", mock.Anything, mock.Anything, mock.Anything)
}

// TestWorkflow_Scenario тестирует полный сценарий: создание, статусы, закрытие, открытие
func TestWorkflow_Scenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	f.api.On("Create", mock.Anything, mock.Anything).Return(wire(`{"id": "srv-1", "title": "A"}`), nil)
	f.api.On("SetStatus", mock.Anything, "srv-1", mock.Anything).Return(nil, nil)

	d := actionitem.NewDraft()
	d.Title = "A"
	d.AssignedTo = []actionitem.Person{actionitem.PersonJoey}
	d.RequestedBy = actionitem.PersonJoey
	d.Status = actionitem.StatusOpen
	created, err := f.svc.Create(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, 1, f.repo.Len())
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)

	_, err = f.flow.RequestStatus(ctx, "srv-1", actionitem.StatusInProcess)
	require.NoError(t, err)
	inProcess := f.item(t, "srv-1")
	assert.Equal(t, actionitem.StatusInProcess, inProcess.Status)
	assert.Greater(t, inProcess.UpdatedAt, created.UpdatedAt)
	assert.Nil(t, inProcess.ClosedAt)

	_, err = f.flow.RequestStatus(ctx, "srv-1", actionitem.StatusClosed)
	require.NoError(t, err)
	require.NoError(t, f.flow.Confirm(ctx))
	closed := f.item(t, "srv-1")
	assert.Equal(t, actionitem.StatusClosed, closed.Status)
	require.NotNil(t, closed.ClosedAt)

	_, err = f.flow.RequestStatus(ctx, "srv-1", actionitem.StatusOpen)
	require.NoError(t, err)
	reopened := f.item(t, "srv-1")
	assert.Equal(t, actionitem.StatusOpen, reopened.Status)
	assert.Equal(t, *closed.ClosedAt, *reopened.ClosedAt)
}
