package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/salam-labs/adzan/internal/app"
	"github.com/salam-labs/adzan/internal/domain"
	"github.com/salam-labs/adzan/internal/httpjson"
)

type PrayerHandler struct {
	schedules *app.ScheduleService
}

func NewPrayerHandler(schedules *app.ScheduleService) *PrayerHandler {
	return &PrayerHandler{schedules: schedules}
}

func (h *PrayerHandler) Routes(r chi.Router) {
	r.Route("/prayer", func(r chi.Router) {
		r.Get("/today", h.today)
		r.Get("/next", h.next)
		r.Get("/monthly", h.monthly)
		r.Post("/refresh", h.refresh)
	})
}

func (h *PrayerHandler) today(w http.ResponseWriter, r *http.Request) {
	httpjson.Write(w, http.StatusOK, h.schedules.Today())
}

func (h *PrayerHandler) next(w http.ResponseWriter, r *http.Request) {
	httpjson.Write(w, http.StatusOK, h.schedules.Today().Next)
}

// monthly: sans paramètres, le mois courant dans le fuseau de l'horaire.
func (h *PrayerHandler) monthly(w http.ResponseWriter, r *http.Request) {
	now := h.schedules.Now()
	year, month := now.Year(), int(now.Month())

	q := r.URL.Query()
	if v := q.Get("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			httpjson.WriteError(w, http.StatusBadRequest, "invalid year")
			return
		}
		year = n
	}
	if v := q.Get("month"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			httpjson.WriteError(w, http.StatusBadRequest, "invalid month")
			return
		}
		month = n
	}

	days, err := h.schedules.Monthly(r.Context(), year, time.Month(month))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, days)
}

type refreshResponse struct {
	Schedule domain.DailySchedule `json:"schedule"`
	Warning  string               `json:"warning,omitempty"`
}

// refresh renvoie toujours un horaire utilisable ; l'échec amont passe dans warning.
func (h *PrayerHandler) refresh(w http.ResponseWriter, r *http.Request) {
	daily, err := h.schedules.Refresh(r.Context())
	resp := refreshResponse{Schedule: daily}
	if err != nil {
		resp.Warning = err.Error()
	}
	httpjson.Write(w, http.StatusOK, resp)
}
