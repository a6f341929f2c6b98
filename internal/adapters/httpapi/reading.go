package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/salam-labs/adzan/internal/app"
	"github.com/salam-labs/adzan/internal/domain"
	"github.com/salam-labs/adzan/internal/httpjson"
)

type ReadingHandler struct {
	reading *app.ReadingService
}

func NewReadingHandler(reading *app.ReadingService) *ReadingHandler {
	return &ReadingHandler{reading: reading}
}

func (h *ReadingHandler) Routes(r chi.Router) {
	r.Get("/last-read", h.get)
	r.Put("/last-read", h.put)
}

func (h *ReadingHandler) get(w http.ResponseWriter, r *http.Request) {
	lr, err := h.reading.Get(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if lr == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	httpjson.Write(w, http.StatusOK, lr)
}

func (h *ReadingHandler) put(w http.ResponseWriter, r *http.Request) {
	var lr domain.LastRead
	if err := json.NewDecoder(r.Body).Decode(&lr); err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid json")
		return
	}
	saved, err := h.reading.Put(r.Context(), lr)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, saved)
}
