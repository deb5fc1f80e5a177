package domain

import "strings"

// SavedAnime est une entrée de "My List". Link sert d'identifiant unique.
type SavedAnime struct {
	Link     string   `json:"link"`
	Img      string   `json:"img"`
	Alt      string   `json:"alt"`
	Title    string   `json:"title"`
	Episode  string   `json:"episode,omitempty"`
	Released string   `json:"released,omitempty"`
	Type     string   `json:"type,omitempty"`
	Score    *float64 `json:"score,omitempty"`
	// AddedAt en millisecondes epoch, posé à l'insertion.
	AddedAt int64 `json:"addedAt"`
}

// SavedAnimeInput est une SavedAnime sans AddedAt (posé par le store).
type SavedAnimeInput struct {
	Link     string   `json:"link"`
	Img      string   `json:"img"`
	Alt      string   `json:"alt"`
	Title    string   `json:"title"`
	Episode  string   `json:"episode,omitempty"`
	Released string   `json:"released,omitempty"`
	Type     string   `json:"type,omitempty"`
	Score    *float64 `json:"score,omitempty"`
}

func (in SavedAnimeInput) Stamp(addedAt int64) SavedAnime {
	return SavedAnime{
		Link:     strings.TrimSpace(in.Link),
		Img:      in.Img,
		Alt:      in.Alt,
		Title:    in.Title,
		Episode:  in.Episode,
		Released: in.Released,
		Type:     in.Type,
		Score:    in.Score,
		AddedAt:  addedAt,
	}
}

// Clés du stockage local et topics de notification.
const (
	WatchlistKey   = "watchlist"
	LikedKey       = "liked-set"
	WatchlistTopic = "watchlist-updated"
	LikedTopic     = "liked-updated"
)
