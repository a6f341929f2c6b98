package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/salam-labs/adzan/internal/app"
	"github.com/salam-labs/adzan/internal/domain"
	"github.com/salam-labs/adzan/internal/httpjson"
)

type LocationHandler struct {
	location *app.LocationService
}

func NewLocationHandler(location *app.LocationService) *LocationHandler {
	return &LocationHandler{location: location}
}

func (h *LocationHandler) Routes(r chi.Router) {
	r.Put("/location", h.put)
	r.Get("/qibla", h.qibla)
}

func (h *LocationHandler) put(w http.ResponseWriter, r *http.Request) {
	var loc domain.Location
	if err := json.NewDecoder(r.Body).Decode(&loc); err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid json")
		return
	}
	out, err := h.location.Set(r.Context(), loc)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, out)
}

// qibla: lat et lng vont ensemble ; absents, on prend la localisation enregistrée.
func (h *LocationHandler) qibla(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var from *domain.Coordinates
	if q.Has("lat") || q.Has("lng") {
		lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
		lng, errLng := strconv.ParseFloat(q.Get("lng"), 64)
		if errLat != nil || errLng != nil {
			httpjson.WriteError(w, http.StatusBadRequest, "lat and lng must be numbers")
			return
		}
		from = &domain.Coordinates{Latitude: lat, Longitude: lng}
	}
	out, err := h.location.Qibla(r.Context(), from)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, out)
}
