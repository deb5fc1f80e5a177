package httpapi

import (
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Guilhem-Bonnet/akd/internal/app"
	"github.com/Guilhem-Bonnet/akd/internal/domain"
	"github.com/Guilhem-Bonnet/akd/internal/httpjson"
	"github.com/Guilhem-Bonnet/akd/internal/ports"
)

// CatalogHandler expose l'API catalogue normalisée. cache, episodes et
// showcase sont optionnels.
type CatalogHandler struct {
	client   ports.CatalogClient
	cache    *app.CatalogCache
	episodes *app.EpisodeService
	showcase *app.Showcase
	now      func() time.Time
}

func NewCatalogHandler(client ports.CatalogClient, cache *app.CatalogCache, episodes *app.EpisodeService, showcase *app.Showcase) *CatalogHandler {
	if episodes == nil {
		episodes = app.NewEpisodeService(client)
	}
	return &CatalogHandler{client: client, cache: cache, episodes: episodes, showcase: showcase, now: time.Now}
}

func (h *CatalogHandler) Routes(r chi.Router) {
	r.Route("/catalog", func(r chi.Router) {
		r.Get("/new", h.newAnime)
		r.Get("/genres", h.genres)
		r.Get("/schedule", h.schedule)
		r.Get("/search", h.search)
		r.Get("/anime/{slug}", h.detail)
		r.Get("/episode", h.episode)
		r.Get("/play", h.play)
		r.Get("/video", h.video)
	})
}

func (h *CatalogHandler) newAnime(w http.ResponseWriter, r *http.Request) {
	load := h.client.NewAnime
	if h.cache != nil {
		load = h.cache.NewAnime
	}
	list, err := load(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, list)
}

func (h *CatalogHandler) genres(w http.ResponseWriter, r *http.Request) {
	load := h.client.Genres
	if h.cache != nil {
		load = h.cache.Genres
	}
	list, err := load(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, list)
}

// schedule: jour courant si ?day est absent.
func (h *CatalogHandler) schedule(w http.ResponseWriter, r *http.Request) {
	day := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("day")))
	if day == "" {
		day = strings.ToLower(h.now().Weekday().String())
	}
	if !slices.Contains(domain.Weekdays, day) {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid day")
		return
	}
	load := h.client.Schedule
	if h.cache != nil {
		load = h.cache.Schedule
	}
	s, err := load(r.Context(), day)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, s)
}

func (h *CatalogHandler) search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		httpjson.WriteError(w, http.StatusBadRequest, "missing q")
		return
	}
	p, err := h.client.Search(r.Context(), q)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, p)
}

// detail: ?order=asc|desc et ?arc=1-61 filtrent la liste d'épisodes.
func (h *CatalogHandler) detail(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	d, err := h.client.Detail(r.Context(), slug)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	q := r.URL.Query()
	if order, arc := q.Get("order"), q.Get("arc"); order != "" || arc != "" {
		d.Episodes = app.FilterEpisodes(d.Episodes, order, arc)
	}
	httpjson.Write(w, http.StatusOK, h.showcase.Decorate(slug, d))
}

func (h *CatalogHandler) episode(w http.ResponseWriter, r *http.Request) {
	path, ok := pathParam(w, r)
	if !ok {
		return
	}
	res, err := h.episodes.Servers(r.Context(), path)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, res)
}

func (h *CatalogHandler) play(w http.ResponseWriter, r *http.Request) {
	path, ok := pathParam(w, r)
	if !ok {
		return
	}
	res, err := h.episodes.Play(r.Context(), path)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, res)
}

func (h *CatalogHandler) video(w http.ResponseWriter, r *http.Request) {
	path, ok := pathParam(w, r)
	if !ok {
		return
	}
	u, err := h.episodes.Resolve(r.Context(), path)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]string{"url": u})
}

func pathParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	p := strings.TrimSpace(r.URL.Query().Get("path"))
	if p == "" {
		httpjson.WriteError(w, http.StatusBadRequest, "missing path")
		return "", false
	}
	return p, true
}
