package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/salam-labs/adzan/internal/httpjson"
	"github.com/salam-labs/adzan/internal/ports"
)

const defaultNotificationsLimit = 50

type NotificationsHandler struct {
	history ports.NotificationRepository
}

func NewNotificationsHandler(history ports.NotificationRepository) *NotificationsHandler {
	return &NotificationsHandler{history: history}
}

func (h *NotificationsHandler) Routes(r chi.Router) {
	r.Get("/notifications", h.list)
}

func (h *NotificationsHandler) list(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = defaultNotificationsLimit
	}
	items, err := h.history.List(r.Context(), limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, items)
}
