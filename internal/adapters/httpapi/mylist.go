package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Guilhem-Bonnet/akd/internal/app"
	"github.com/Guilhem-Bonnet/akd/internal/domain"
	"github.com/Guilhem-Bonnet/akd/internal/httpjson"
)

type MyListHandler struct {
	list *app.MyListService
}

func NewMyListHandler(list *app.MyListService) *MyListHandler {
	return &MyListHandler{list: list}
}

func (h *MyListHandler) Routes(r chi.Router) {
	r.Route("/mylist", func(r chi.Router) {
		r.Get("/", h.getAll)
		r.Post("/", h.add)
		r.Delete("/", h.remove)
		r.Get("/count", h.count)
		r.Get("/contains", h.contains)
		r.Post("/toggle", h.toggle)
		r.Delete("/all", h.clear)
	})
}

func (h *MyListHandler) getAll(w http.ResponseWriter, r *http.Request) {
	httpjson.Write(w, http.StatusOK, h.list.GetAll(r.Context()))
}

func (h *MyListHandler) count(w http.ResponseWriter, r *http.Request) {
	httpjson.Write(w, http.StatusOK, map[string]int{"count": h.list.Count(r.Context())})
}

func (h *MyListHandler) contains(w http.ResponseWriter, r *http.Request) {
	link, ok := linkParam(w, r)
	if !ok {
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]any{"link": link, "isMember": h.list.IsMember(r.Context(), link)})
}

func (h *MyListHandler) add(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeSavedAnime(w, r)
	if !ok {
		return
	}
	added := h.list.Add(r.Context(), in)
	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	httpjson.Write(w, status, map[string]bool{"added": added})
}

func (h *MyListHandler) toggle(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeSavedAnime(w, r)
	if !ok {
		return
	}
	httpjson.Write(w, http.StatusOK, h.list.Toggle(r.Context(), in))
}

func (h *MyListHandler) remove(w http.ResponseWriter, r *http.Request) {
	link, ok := linkParam(w, r)
	if !ok {
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]bool{"removed": h.list.Remove(r.Context(), link)})
}

func (h *MyListHandler) clear(w http.ResponseWriter, r *http.Request) {
	httpjson.Write(w, http.StatusOK, map[string]bool{"cleared": h.list.Clear(r.Context())})
}

func decodeSavedAnime(w http.ResponseWriter, r *http.Request) (domain.SavedAnimeInput, bool) {
	var in domain.SavedAnimeInput
	if err := httpjson.Decode(w, r, &in); err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid json")
		return in, false
	}
	if strings.TrimSpace(in.Link) == "" {
		httpjson.WriteError(w, http.StatusBadRequest, "missing link")
		return in, false
	}
	return in, true
}

func linkParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	link := strings.TrimSpace(r.URL.Query().Get("link"))
	if link == "" {
		httpjson.WriteError(w, http.StatusBadRequest, "missing link")
		return "", false
	}
	return link, true
}
