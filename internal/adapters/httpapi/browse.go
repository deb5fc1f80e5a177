package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Guilhem-Bonnet/akd/internal/app"
	"github.com/Guilhem-Bonnet/akd/internal/httpjson"
)

type BrowseHandler struct {
	browse *app.BrowseService
}

func NewBrowseHandler(browse *app.BrowseService) *BrowseHandler {
	return &BrowseHandler{browse: browse}
}

func (h *BrowseHandler) Routes(r chi.Router) {
	r.Route("/browse", func(r chi.Router) {
		r.Post("/", h.open)
		r.Get("/feeds", h.feeds)
		r.Get("/{id}", h.get)
		r.Post("/{id}/more", h.more)
		r.Post("/{id}/retry", h.retry)
		r.Post("/{id}/refresh", h.refresh)
		r.Put("/{id}/query", h.requery)
		r.Delete("/{id}", h.close)
	})
}

type openBrowseRequest struct {
	Feed  app.Feed `json:"feed"`
	Query string   `json:"query"`
}

func (h *BrowseHandler) open(w http.ResponseWriter, r *http.Request) {
	var req openBrowseRequest
	if err := httpjson.Decode(w, r, &req); err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid json")
		return
	}
	v, err := h.browse.Open(r.Context(), req.Feed, req.Query)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusCreated, v)
}

func (h *BrowseHandler) feeds(w http.ResponseWriter, r *http.Request) {
	httpjson.Write(w, http.StatusOK, h.browse.Feeds())
}

func (h *BrowseHandler) get(w http.ResponseWriter, r *http.Request) {
	v, err := h.browse.Get(chi.URLParam(r, "id"))
	h.reply(w, r, v, err)
}

func (h *BrowseHandler) more(w http.ResponseWriter, r *http.Request) {
	v, err := h.browse.More(r.Context(), chi.URLParam(r, "id"))
	h.reply(w, r, v, err)
}

func (h *BrowseHandler) retry(w http.ResponseWriter, r *http.Request) {
	v, err := h.browse.Retry(r.Context(), chi.URLParam(r, "id"))
	h.reply(w, r, v, err)
}

func (h *BrowseHandler) refresh(w http.ResponseWriter, r *http.Request) {
	v, err := h.browse.Refresh(r.Context(), chi.URLParam(r, "id"))
	h.reply(w, r, v, err)
}

func (h *BrowseHandler) requery(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
	}
	if err := httpjson.Decode(w, r, &req); err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid json")
		return
	}
	v, err := h.browse.Requery(r.Context(), chi.URLParam(r, "id"), req.Query)
	h.reply(w, r, v, err)
}

func (h *BrowseHandler) close(w http.ResponseWriter, r *http.Request) {
	if err := h.browse.Close(chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *BrowseHandler) reply(w http.ResponseWriter, r *http.Request, v app.BrowseView, err error) {
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, v)
}
