package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/Guilhem-Bonnet/akd/internal/app"
	"github.com/Guilhem-Bonnet/akd/internal/ports"
)

// Services regroupe les dépendances de l'API. Un service nil désactive ses routes.
type Services struct {
	MyList   *app.MyListService
	Liked    *app.LikedService
	Catalog  ports.CatalogClient
	Cache    *app.CatalogCache
	Episodes *app.EpisodeService
	Showcase *app.Showcase
	Browse   *app.BrowseService
	Bus      ports.EventBus
}

type Server struct {
	logger zerolog.Logger
	svc    Services
}

func NewServer(logger zerolog.Logger, svc Services) *Server {
	return &Server{logger: logger, svc: svc}
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
		if s.svc.Bus != nil {
			// SSE: pas de timeout de requête.
			r.Get("/events", s.handleEvents)
		}

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(defaultRequestTimeout))

			if s.svc.MyList != nil {
				NewMyListHandler(s.svc.MyList).Routes(r)
			}
			if s.svc.Liked != nil {
				NewLikedHandler(s.svc.Liked).Routes(r)
			}
			if s.svc.Catalog != nil {
				NewCatalogHandler(s.svc.Catalog, s.svc.Cache, s.svc.Episodes, s.svc.Showcase).Routes(r)
			}
			if s.svc.Browse != nil {
				NewBrowseHandler(s.svc.Browse).Routes(r)
			}
		})
	})

	return r
}
