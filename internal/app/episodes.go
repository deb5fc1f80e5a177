package app

import (
	"context"
	"slices"
	"strconv"
	"strings"

	"github.com/Guilhem-Bonnet/akd/internal/domain"
	"github.com/Guilhem-Bonnet/akd/internal/ports"
)

// EpisodeService prépare le sélecteur de serveurs d'un épisode.
type EpisodeService struct {
	client ports.CatalogClient
}

func NewEpisodeService(client ports.CatalogClient) *EpisodeService {
	return &EpisodeService{client: client}
}

type EpisodeServers struct {
	Episode domain.EpisodeDetail                      `json:"episode"`
	Groups  domain.ProviderGroups[domain.VideoOption] `json:"groups"`
}

type PlayResult struct {
	Episode domain.EpisodeDetail `json:"episode"`
	Option  domain.VideoOption   `json:"option"`
	URL     string               `json:"url"`
}

func (s *EpisodeService) Servers(ctx context.Context, episodePath string) (EpisodeServers, error) {
	ep, err := s.client.Episode(ctx, episodePath)
	if err != nil {
		return EpisodeServers{}, err
	}
	return EpisodeServers{Episode: ep, Groups: GroupVideoOptions(ep.Videos)}, nil
}

// Play résout le premier serveur proposé pour l'épisode.
func (s *EpisodeService) Play(ctx context.Context, episodePath string) (PlayResult, error) {
	ep, err := s.client.Episode(ctx, episodePath)
	if err != nil {
		return PlayResult{}, err
	}
	if len(ep.Videos) == 0 {
		return PlayResult{Episode: ep}, ErrNotFound
	}
	u, err := s.client.ResolveVideo(ctx, ep.Videos[0].Video)
	if err != nil {
		return PlayResult{Episode: ep}, err
	}
	return PlayResult{Episode: ep, Option: ep.Videos[0], URL: u}, nil
}

func (s *EpisodeService) Resolve(ctx context.Context, videoPath string) (string, error) {
	return s.client.ResolveVideo(ctx, videoPath)
}

// Latest renvoie l'épisode le plus récent (dernier de la liste).
func Latest(episodes []domain.EpisodeRef) (domain.EpisodeRef, bool) {
	if len(episodes) == 0 {
		return domain.EpisodeRef{}, false
	}
	return episodes[len(episodes)-1], true
}

// ParseArcRange lit "1-61" ou "1086+" (borne haute ouverte).
func ParseArcRange(r string) (start, end int, ok bool) {
	r = strings.TrimSpace(r)
	if strings.HasSuffix(r, "+") {
		n, err := strconv.Atoi(strings.TrimSuffix(r, "+"))
		if err != nil {
			return 0, 0, false
		}
		return n, 0, true
	}
	a, b, found := strings.Cut(r, "-")
	if !found {
		n, err := strconv.Atoi(r)
		if err != nil {
			return 0, 0, false
		}
		return n, n, true
	}
	start, err1 := strconv.Atoi(strings.TrimSpace(a))
	end, err2 := strconv.Atoi(strings.TrimSpace(b))
	if err1 != nil || err2 != nil || end < start {
		return 0, 0, false
	}
	return start, end, true
}

// FilterEpisodes trie (asc|desc) puis garde les épisodes de l'arc donné.
// Un arc vide ou illisible ne filtre rien; end == 0 signifie sans borne haute.
func FilterEpisodes(episodes []domain.EpisodeRef, order string, arc string) []domain.EpisodeRef {
	out := slices.Clone(episodes)
	if out == nil {
		out = []domain.EpisodeRef{}
	}
	if strings.EqualFold(order, "desc") {
		slices.Reverse(out)
	}
	start, end, ok := ParseArcRange(arc)
	if arc == "" || !ok {
		return out
	}
	return slices.DeleteFunc(out, func(e domain.EpisodeRef) bool {
		return e.Episode < start || (end > 0 && e.Episode > end)
	})
}
