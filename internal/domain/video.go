package domain

// VideoOption est un serveur vidéo proposé pour un épisode.
type VideoOption struct {
	ID     string `json:"id,omitempty"`
	Title  string `json:"title"`
	Post   string `json:"post,omitempty"`
	Action string `json:"action,omitempty"`
	Nume   string `json:"nume,omitempty"`
	Type   string `json:"type,omitempty"`
	// Video est une référence opaque, résolue en URL lisible par ResolveVideo.
	Video string `json:"video"`
}

type ProviderGroup[T any] struct {
	Provider string `json:"provider"`
	Options  []T    `json:"options"`
}

// ProviderGroups garde l'ordre de première apparition des providers.
type ProviderGroups[T any] []ProviderGroup[T]

func (g ProviderGroups[T]) Providers() []string {
	out := make([]string, 0, len(g))
	for _, grp := range g {
		out = append(out, grp.Provider)
	}
	return out
}

func (g ProviderGroups[T]) Get(provider string) ([]T, bool) {
	for _, grp := range g {
		if grp.Provider == provider {
			return grp.Options, true
		}
	}
	return nil, false
}
