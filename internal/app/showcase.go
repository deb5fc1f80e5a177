package app

import (
	_ "embed"
	"net/url"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/Guilhem-Bonnet/akd/internal/domain"
)

//go:embed showcase_defaults.yaml
var defaultShowcase []byte

// Showcase associe un slug à ses visuels, son trailer et ses arcs.
type Showcase struct {
	entries map[string]domain.ShowcaseEntry
}

// AnimeView est la fiche renvoyée au client, décorée.
type AnimeView struct {
	domain.AnimeDetail
	Showcase *domain.ShowcaseEntry `json:"showcase,omitempty"`
	Trailer  string                `json:"trailer_url,omitempty"`
}

func DefaultShowcase() *Showcase {
	s, err := ParseShowcase(defaultShowcase)
	if err != nil {
		panic(err)
	}
	return s
}

func ParseShowcase(b []byte) (*Showcase, error) {
	var list []domain.ShowcaseEntry
	if err := yaml.Unmarshal(b, &list); err != nil {
		return nil, errors.Wrap(err, "parse showcase")
	}
	s := &Showcase{entries: make(map[string]domain.ShowcaseEntry, len(list))}
	for _, e := range list {
		e.Slug = strings.TrimSpace(e.Slug)
		if e.Slug == "" {
			return nil, errors.New("showcase entry without slug")
		}
		s.entries[e.Slug] = e
	}
	return s, nil
}

// LoadShowcase part des valeurs intégrées puis applique le fichier, s'il existe.
// Un champ vide du fichier ne remplace pas la valeur intégrée.
func LoadShowcase(path string) (*Showcase, error) {
	s := DefaultShowcase()
	if strings.TrimSpace(path) == "" {
		return s, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, errors.Wrapf(err, "read showcase %s", path)
	}
	overrides, err := ParseShowcase(b)
	if err != nil {
		return nil, errors.Wrapf(err, "showcase %s", path)
	}
	for slug, o := range overrides.entries {
		s.entries[slug] = mergeEntry(s.entries[slug], o)
	}
	return s, nil
}

func mergeEntry(base, o domain.ShowcaseEntry) domain.ShowcaseEntry {
	base.Slug = o.Slug
	if o.Logo != "" {
		base.Logo = o.Logo
	}
	if o.Landscape != "" {
		base.Landscape = o.Landscape
	}
	if o.YouTubeID != "" {
		base.YouTubeID = o.YouTubeID
	}
	if len(o.Arcs) > 0 {
		base.Arcs = o.Arcs
	}
	return base
}

func (s *Showcase) Entry(slug string) (domain.ShowcaseEntry, bool) {
	e, ok := s.entries[slug]
	return e, ok
}

func (s *Showcase) Artwork(slug string) (logo, landscape string) {
	e := s.entries[slug]
	return e.Logo, e.Landscape
}

func (s *Showcase) Trailer(slug string) (string, bool) {
	e, ok := s.entries[slug]
	if !ok || e.YouTubeID == "" {
		return "", false
	}
	return e.YouTubeID, true
}

func (s *Showcase) Arcs(slug string) []domain.Arc {
	return s.entries[slug].Arcs
}

func (s *Showcase) Len() int { return len(s.entries) }

// TrailerEmbedURL construit l'URL d'intégration (lecture auto, muet, en boucle).
func TrailerEmbedURL(youtubeID string) string {
	q := url.Values{}
	q.Set("autoplay", "1")
	q.Set("mute", "1")
	q.Set("loop", "1")
	q.Set("playlist", youtubeID)
	q.Set("controls", "0")
	q.Set("rel", "0")
	q.Set("modestbranding", "1")
	q.Set("playsinline", "1")
	return "https://www.youtube.com/embed/" + url.PathEscape(youtubeID) + "?" + q.Encode()
}

func (s *Showcase) Decorate(slug string, d domain.AnimeDetail) AnimeView {
	if d.Slug == "" {
		d.Slug = slug
	}
	v := AnimeView{AnimeDetail: d}
	if s == nil {
		return v
	}
	if e, ok := s.entries[slug]; ok {
		v.Showcase = &e
		if e.YouTubeID != "" {
			v.Trailer = TrailerEmbedURL(e.YouTubeID)
		}
	}
	return v
}
