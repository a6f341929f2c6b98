package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/salam-labs/adzan/internal/app"
	"github.com/salam-labs/adzan/internal/domain"
	"github.com/salam-labs/adzan/internal/ports"
)

// Services regroupe les services exposés ; un champ nil désactive ses routes.
type Services struct {
	Settings  *app.SettingsService
	Schedules *app.ScheduleService
	Location  *app.LocationService
	Reading   *app.ReadingService
	History   ports.NotificationRepository
}

type Server struct {
	logger zerolog.Logger
	svc    Services
	bus    ports.EventBus
	// onSettingsUpdated est optionnel (ex: recharger l'horaire après un changement de méthode).
	onSettingsUpdated func(domain.Settings)
}

func NewServer(logger zerolog.Logger, svc Services, bus ports.EventBus, onSettingsUpdated func(domain.Settings)) *Server {
	return &Server{logger: logger, svc: svc, bus: bus, onSettingsUpdated: onSettingsUpdated}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(hlog.NewHandler(s.logger))
	r.Use(hlog.RequestIDHandler("request_id", "Request-Id"))
	r.Use(hlog.RemoteAddrHandler("remote_ip"))
	r.Use(hlog.UserAgentHandler("user_agent"))
	r.Use(hlog.AccessHandler(accessLogFn))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/version", s.handleVersion)
		r.Get("/openapi.json", s.handleOpenAPI)
		// Le flux SSE reste ouvert: pas de timeout de requête.
		r.Get("/events", s.handleEvents)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(defaultRequestTimeout))

			if s.svc.Schedules != nil {
				NewPrayerHandler(s.svc.Schedules).Routes(r)
			}
			if s.svc.Settings != nil {
				NewSettingsHandler(s.svc.Settings, s.onSettingsUpdated).Routes(r)
			}
			if s.svc.Location != nil {
				NewLocationHandler(s.svc.Location).Routes(r)
			}
			if s.svc.Reading != nil {
				NewReadingHandler(s.svc.Reading).Routes(r)
			}
			if s.svc.History != nil {
				NewNotificationsHandler(s.svc.History).Routes(r)
			}
		})
	})

	return r
}
