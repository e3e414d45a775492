package tasks

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"taskhub-backend/internal/analytics"
	"taskhub-backend/internal/response"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

type Handler struct {
	store  *Store
	events *analytics.Recorder
	logger *zap.Logger
}

func NewHandler(store *Store, events *analytics.Recorder, logger *zap.Logger) *Handler {
	return &Handler{store: store, events: events, logger: logger}
}

func taskIDParam(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func decodeInput(w http.ResponseWriter, r *http.Request) (Input, bool) {
	var in Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid json")
		return Input{}, false
	}
	if err := in.Validate(); err != nil {
		response.Error(w, http.StatusUnprocessableEntity, validationMessage(err))
		return Input{}, false
	}
	return in, true
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeInput(w, r)
	if !ok {
		return
	}

	t, err := h.store.Create(r.Context(), in)
	if err != nil {
		h.logger.Error("create task failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "db error")
		return
	}

	h.events.Track(r, "task_created", map[string]any{
		"task_id":  t.ID,
		"status":   t.Status,
		"text_len": len(t.Title) + len(t.Description),
	})

	response.JSON(w, http.StatusCreated, t)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	skip, limit := 0, defaultLimit

	if v := r.URL.Query().Get("skip"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			response.Error(w, http.StatusBadRequest, "skip must be a non-negative integer")
			return
		}
		skip = n
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > maxLimit {
			response.Error(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	list, err := h.store.List(r.Context(), skip, limit)
	if err != nil {
		h.logger.Error("list tasks failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "db error")
		return
	}

	response.JSON(w, http.StatusOK, list)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := taskIDParam(r)
	if !ok {
		response.Error(w, http.StatusBadRequest, "invalid task id")
		return
	}

	t, err := h.store.Get(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		response.Error(w, http.StatusNotFound, ErrNotFound.Error())
		return
	}
	if err != nil {
		h.logger.Error("get task failed", zap.Int("task_id", id), zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "db error")
		return
	}

	response.JSON(w, http.StatusOK, t)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := taskIDParam(r)
	if !ok {
		response.Error(w, http.StatusBadRequest, "invalid task id")
		return
	}

	in, ok := decodeInput(w, r)
	if !ok {
		return
	}

	prev, t, err := h.store.Update(r.Context(), id, in)
	if errors.Is(err, ErrNotFound) {
		response.Error(w, http.StatusNotFound, ErrNotFound.Error())
		return
	}
	if err != nil {
		h.logger.Error("update task failed", zap.Int("task_id", id), zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "db error")
		return
	}

	h.events.Track(r, "task_updated", map[string]any{
		"task_id":  t.ID,
		"text_len": len(t.Title) + len(t.Description),
	})

	switch {
	case !prev.Completed() && t.Completed():
		h.events.Track(r, "task_completed", map[string]any{
			"task_id":                t.ID,
			"time_since_created_sec": int(t.CompletedAt.Sub(t.CreationDate).Seconds()),
		})
	case prev.Completed() && !t.Completed():
		h.events.Track(r, "task_uncompleted", map[string]any{
			"task_id": t.ID,
		})
	}

	response.JSON(w, http.StatusOK, t)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := taskIDParam(r)
	if !ok {
		response.Error(w, http.StatusBadRequest, "invalid task id")
		return
	}

	err := h.store.Delete(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		response.Error(w, http.StatusNotFound, ErrNotFound.Error())
		return
	}
	if err != nil {
		h.logger.Error("delete task failed", zap.Int("task_id", id), zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "db error")
		return
	}

	h.events.Track(r, "task_deleted", map[string]any{"task_id": id})

	w.WriteHeader(http.StatusNoContent)
}

// Routes mounts the CRUD endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}
