package audit

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shopdesk/shopdesk/internal/platform/httpx"
)

// Handler serves the billing event timeline for support review.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the audit HTTP handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes attaches the audit routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/timeline", h.timeline)
}

type eventView struct {
	At       time.Time `json:"at"`
	Action   string    `json:"action"`
	Entity   string    `json:"entity"`
	EntityID string    `json:"entity_id"`
	Detail   string    `json:"detail"`
}

type timelineResponse struct {
	Rows   []eventView `json:"rows"`
	Paging PagingInfo  `json:"paging"`
}

func (h *Handler) timeline(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := Filters{
		Action: q.Get("action"),
		Entity: q.Get("entity"),
	}
	if v := q.Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			httpx.Error(w, http.StatusBadRequest, "from must be an RFC 3339 timestamp")
			return
		}
		f.From = t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			httpx.Error(w, http.StatusBadRequest, "to must be an RFC 3339 timestamp")
			return
		}
		f.To = t
	}
	f.Page, _ = strconv.Atoi(q.Get("page"))
	f.PageSize, _ = strconv.Atoi(q.Get("page_size"))

	res, err := h.service.Timeline(r.Context(), f)
	if err != nil {
		h.logger.Error("audit timeline", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "audit timeline unavailable")
		return
	}

	rows := make([]eventView, 0, len(res.Rows))
	for _, ev := range res.Rows {
		rows = append(rows, eventView{
			At:       ev.At,
			Action:   ev.Action,
			Entity:   ev.Entity,
			EntityID: ev.EntityID,
			Detail:   ev.Detail,
		})
	}
	httpx.JSON(w, http.StatusOK, timelineResponse{Rows: rows, Paging: res.Paging})
}
