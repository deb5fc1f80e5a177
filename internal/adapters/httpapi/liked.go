package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Guilhem-Bonnet/akd/internal/app"
	"github.com/Guilhem-Bonnet/akd/internal/httpjson"
)

type LikedHandler struct {
	liked *app.LikedService
}

func NewLikedHandler(liked *app.LikedService) *LikedHandler {
	return &LikedHandler{liked: liked}
}

func (h *LikedHandler) Routes(r chi.Router) {
	r.Route("/liked", func(r chi.Router) {
		r.Get("/", h.getAll)
		r.Get("/count", h.count)
		r.Get("/contains", h.contains)
		r.Post("/toggle", h.toggle)
		r.Delete("/all", h.clear)
	})
}

func (h *LikedHandler) getAll(w http.ResponseWriter, r *http.Request) {
	httpjson.Write(w, http.StatusOK, h.liked.GetAll(r.Context()))
}

func (h *LikedHandler) count(w http.ResponseWriter, r *http.Request) {
	httpjson.Write(w, http.StatusOK, map[string]int{"count": h.liked.Count(r.Context())})
}

func (h *LikedHandler) contains(w http.ResponseWriter, r *http.Request) {
	link, ok := linkParam(w, r)
	if !ok {
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]any{"link": link, "liked": h.liked.IsMember(r.Context(), link)})
}

func (h *LikedHandler) toggle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Link string `json:"link"`
	}
	if err := httpjson.Decode(w, r, &req); err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if strings.TrimSpace(req.Link) == "" {
		httpjson.WriteError(w, http.StatusBadRequest, "missing link")
		return
	}
	httpjson.Write(w, http.StatusOK, h.liked.Toggle(r.Context(), req.Link))
}

func (h *LikedHandler) clear(w http.ResponseWriter, r *http.Request) {
	httpjson.Write(w, http.StatusOK, map[string]bool{"cleared": h.liked.Clear(r.Context())})
}
