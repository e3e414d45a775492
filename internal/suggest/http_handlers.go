package suggest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"taskhub-backend/internal/analytics"
	"taskhub-backend/internal/response"
)

type Handler struct {
	svc    *Service
	events *analytics.Recorder
	logger *zap.Logger
}

func NewHandler(svc *Service, events *analytics.Recorder, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, events: events, logger: logger}
}

// Routes mounts the suggestion endpoints. They must be registered before any
// /{id} route on the same router.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/suggestions", h.Words)
	r.Get("/suggestions/clusters", h.Clusters)
	r.Get("/suggestions/combined", h.Combined)
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidParameter):
		response.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrUpstreamUnavailable):
		h.logger.Warn("suggestion snapshot unavailable", zap.Error(err))
		w.Header().Set("Retry-After", "5")
		response.Error(w, http.StatusServiceUnavailable, "tasks temporarily unavailable")
	default:
		h.logger.Error("suggestion failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *Handler) served(r *http.Request, kind string, n int) {
	h.events.Track(r, "suggestions_served", map[string]any{
		"kind":  kind,
		"count": n,
	})
}

func (h *Handler) Words(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.WordAndAdjacencySuggestions(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	h.served(r, "lexical", len(out))
	response.JSON(w, http.StatusOK, out)
}

func (h *Handler) Clusters(w http.ResponseWriter, r *http.Request) {
	cfg := h.svc.Config()
	threshold, topK := cfg.Threshold, cfg.TopK

	q := r.URL.Query()
	if v := q.Get("threshold"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "threshold must be a number")
			return
		}
		threshold = f
	}
	if v := q.Get("top_k"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "top_k must be an integer")
			return
		}
		topK = n
	}

	out, err := h.svc.SimilarityClusters(r.Context(), threshold, topK)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.served(r, "clusters", len(out))
	response.JSON(w, http.StatusOK, out)
}

func (h *Handler) Combined(w http.ResponseWriter, r *http.Request) {
	count := h.svc.Config().TargetCount
	if v := r.URL.Query().Get("count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "count must be an integer")
			return
		}
		count = n
	}

	out, err := h.svc.CombinedSuggestions(r.Context(), count)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.served(r, "combined", len(out))
	response.JSON(w, http.StatusOK, out)
}
