package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"actionTracker/internal/handlers/dto"
	"actionTracker/internal/logger"
	"actionTracker/internal/models/actionitem"
	rep "actionTracker/internal/repository"
	"actionTracker/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ItemHandler serves the action item API backed by an in-memory store.
type ItemHandler struct {
	store ItemStore
	now   func() time.Time
}

func NewItemHandler(store ItemStore, now func() time.Time) *ItemHandler {
	if now == nil {
		now = time.Now
	}
	return &ItemHandler{
		store: store,
		now:   now,
	}
}

func (h *ItemHandler) timestamp() string {
	return actionitem.FormatTimestamp(h.now())
}

func (h *ItemHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: Health check")
	responseWithJSON(w, http.StatusOK,
		toPayload("status", "ok"),
		toPayload("service", "action-items"),
	)
}

func (h *ItemHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	items, err := h.store.List(r.Context())
	if err != nil {
		handleError(w, err, "list_items")
		return
	}

	logger.Info("HTTP_OUT: Список отдан",
		zap.Int("count", len(items)),
		zap.Duration("ms", time.Since(start)))
	writeJSON(w, http.StatusOK, dto.FromItemList(items))
}

func (h *ItemHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	request, ok := decodeWrite(w, r)
	if !ok {
		return
	}

	draft := request.Draft()
	if err := draft.Validate(); err != nil {
		handleError(w, service.NewValidationError(err), "create_item")
		return
	}

	ts := h.timestamp()
	it := actionitem.Item{
		ID:         uuid.NewString(),
		Category:   actionitem.CategoryMisc,
		Status:     actionitem.StatusOpen,
		Priority:   actionitem.PriorityNormal,
		AssignedTo: []actionitem.Person{},
	}
	actionitem.Apply(&it, draft.Payload().Options()...)
	it.CreatedAt = ts
	it.UpdatedAt = ts
	if it.IsClosed() {
		it.ClosedAt = actionitem.Ptr(ts)
	}

	if err := h.store.InsertFront(r.Context(), it); err != nil {
		handleError(w, err, "create_item")
		return
	}

	logger.Info("HTTP_OUT: Запись создана",
		zap.String("id", it.ID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))
	writeJSON(w, http.StatusCreated, dto.FromItem(it))
}

func (h *ItemHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := chi.URLParam(r, "id")

	request, ok := decodeWrite(w, r)
	if !ok {
		return
	}

	draft := request.Draft()
	if err := draft.Validate(); err != nil {
		handleError(w, service.NewValidationError(err), "update_item")
		return
	}

	payload := draft.Payload()
	opts := append(payload.Options(), h.touch(payload.Status)...)
	it, err := h.store.Patch(r.Context(), id, opts...)
	if err != nil {
		handleError(w, notFound(err, id), "update_item")
		return
	}

	logger.Info("HTTP_OUT: Запись обновлена",
		zap.String("id", id),
		zap.Duration("ms", time.Since(start)))
	writeJSON(w, http.StatusOK, dto.FromItem(it))
}

func (h *ItemHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if !checkContentType(r, "application/json") {
		unsupportedMedia(w, r)
		return
	}

	var request dto.StatusRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		badJSON(w, r, err)
		return
	}

	status := actionitem.Status(request.Status)
	if !status.Valid() {
		handleError(w, service.NewValidationError(fmt.Errorf("Unknown status %q.", request.Status)), "set_status")
		return
	}

	opts := append([]actionitem.ItemOption{actionitem.WithStatus(status)}, h.touch(status)...)
	it, err := h.store.Patch(r.Context(), id, opts...)
	if err != nil {
		handleError(w, notFound(err, id), "set_status")
		return
	}

	logger.Info("HTTP_OUT: Статус изменён", zap.String("id", id), zap.String("status", string(status)))
	writeJSON(w, http.StatusOK, dto.FromItem(it))
}

func (h *ItemHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.store.Remove(r.Context(), id); err != nil {
		handleError(w, notFound(err, id), "delete_item")
		return
	}

	logger.Info("HTTP_OUT: Запись удалена", zap.String("id", id))
	w.WriteHeader(http.StatusNoContent)
}

// touch обновляет updated_at; closed_at ставится только при первом закрытии
func (h *ItemHandler) touch(status actionitem.Status) []actionitem.ItemOption {
	ts := h.timestamp()
	opts := []actionitem.ItemOption{actionitem.WithUpdatedAt(ts)}
	if status == actionitem.StatusClosed {
		opts = append(opts, actionitem.WithClosedAtOnce(ts))
	}
	return opts
}

func decodeWrite(w http.ResponseWriter, r *http.Request) (dto.WriteRequest, bool) {
	var request dto.WriteRequest

	if !checkContentType(r, "application/json") {
		unsupportedMedia(w, r)
		return request, false
	}

	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		badJSON(w, r, err)
		return request, false
	}
	return request, true
}

func unsupportedMedia(w http.ResponseWriter, r *http.Request) {
	logger.Warn("HTTP: Неверный тип контента",
		zap.String("expected", "application/json"),
		zap.String("received", r.Header.Get("Content-Type")),
		zap.String("client_ip", r.RemoteAddr))
	responseWithError(w, http.StatusUnsupportedMediaType, codeUnsupported, "Content-Type must be application/json")
}

func badJSON(w http.ResponseWriter, r *http.Request, err error) {
	logger.Warn("HTTP: Ошибка чтения JSON",
		zap.Error(err),
		zap.String("client_ip", r.RemoteAddr))
	responseWithError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
}

func notFound(err error, id string) error {
	if errors.Is(err, rep.ErrNotFound) {
		return service.NewNotFound(id)
	}
	return err
}
