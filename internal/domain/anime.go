package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// FlexFloat accepte un nombre JSON ou une chaîne numérique ("8.12").
// Toute autre valeur vaut 0.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			*f = 0
			return nil
		}
		s = strings.TrimSpace(str)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = FlexFloat(v)
	return nil
}

type GenreTag struct {
	Tag  string `json:"tag"`
	Link string `json:"link,omitempty"`
}

// AnimeCard est l'entrée commune des listes (new, ongoing, popular, genre, search).
type AnimeCard struct {
	Slug      string     `json:"slug"`
	Title     string     `json:"title"`
	Alt       string     `json:"alt"`
	Img       string     `json:"img"`
	Type      string     `json:"type"`
	Score     FlexFloat  `json:"score"`
	Episode   string     `json:"episode,omitempty"`
	Released  string     `json:"released,omitempty"`
	DetailURL string     `json:"detail_url"`
	Genres    []GenreTag `json:"genres"`
}

type Genre struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type EpisodeRef struct {
	Episode     int    `json:"episode"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Img         string `json:"img,omitempty"`
	DetailPath  string `json:"detail_eps"`
}

type AnimeDetail struct {
	Slug          string       `json:"slug"`
	Title         string       `json:"title"`
	Synonyms      string       `json:"synonims"`
	JapaneseTitle string       `json:"japanese_title"`
	EnglishTitle  string       `json:"english_title"`
	Img           string       `json:"img"`
	Type          string       `json:"type"`
	Status        string       `json:"status,omitempty"`
	Rating        FlexFloat    `json:"rating"`
	RatingCount   string       `json:"rating_count"`
	Studio        string       `json:"studio"`
	Producer      string       `json:"producer"`
	Source        string       `json:"source"`
	Season        string       `json:"season"`
	Released      string       `json:"released"`
	Descriptions  []string     `json:"descriptions"`
	Genres        []GenreTag   `json:"genres"`
	Episodes      []EpisodeRef `json:"episodes"`
}

type EpisodeDetail struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Videos      []VideoOption `json:"videos"`
}

type ScheduleAnime struct {
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Img         string    `json:"img"`
	Type        string    `json:"type"`
	Score       FlexFloat `json:"score"`
	Genres      []string  `json:"genres"`
	Time        string    `json:"time"`
	Schedule    string    `json:"schedule"`
	Description string    `json:"description"`
	DetailURL   string    `json:"detail_url"`
}

type DayOption struct {
	Day      string `json:"day"`
	DayValue string `json:"day_value"`
	Endpoint string `json:"endpoint"`
}

type Schedule struct {
	Day           string          `json:"day"`
	DayValue      string          `json:"day_value"`
	AvailableDays []DayOption     `json:"available_days"`
	Total         int             `json:"total_anime"`
	Anime         []ScheduleAnime `json:"data"`
}

// Weekdays est l'ordre des jours attendu par /release-schedule.
var Weekdays = []string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}
