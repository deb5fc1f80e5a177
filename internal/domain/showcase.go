package domain

// Arc est une plage d'épisodes nommée ("1-61", "1086+").
type Arc struct {
	Name     string `json:"name" yaml:"name"`
	Episodes string `json:"episodes" yaml:"episodes"`
}

// ShowcaseEntry décore une fiche anime (visuels, trailer, arcs).
type ShowcaseEntry struct {
	Slug      string `json:"slug" yaml:"slug"`
	Logo      string `json:"logo,omitempty" yaml:"logo"`
	Landscape string `json:"landscape,omitempty" yaml:"landscape"`
	YouTubeID string `json:"youtubeId,omitempty" yaml:"youtubeId"`
	Arcs      []Arc  `json:"arcs,omitempty" yaml:"arcs"`
}
