package httpapi

import (
	"net/http"

	"github.com/Guilhem-Bonnet/akd/internal/httpjson"
)

func schemaRef(name string) map[string]any {
	return map[string]any{"$ref": "#/components/schemas/" + name}
}

func jsonContent(schema map[string]any) map[string]any {
	return map[string]any{"application/json": map[string]any{"schema": schema}}
}

func queryParam(name, description string, required bool) map[string]any {
	return map[string]any{
		"name":        name,
		"in":          "query",
		"required":    required,
		"description": description,
		"schema":      map[string]any{"type": "string"},
	}
}

func pathID(name string) map[string]any {
	return map[string]any{"name": name, "in": "path", "required": true, "schema": map[string]any{"type": "string"}}
}

// handleOpenAPI décrit l'API v1.
func (s *Server) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	jsonOK := func(schema map[string]any) map[string]any {
		return map[string]any{"description": "OK", "content": jsonContent(schema)}
	}
	jsonErr := map[string]any{"description": "Error", "content": jsonContent(schemaRef("Error"))}
	body := func(schema map[string]any) map[string]any {
		return map[string]any{"required": true, "content": jsonContent(schema)}
	}
	flag := func(name string) map[string]any {
		return map[string]any{
			"type":       "object",
			"properties": map[string]any{name: map[string]any{"type": "boolean"}},
		}
	}
	count := map[string]any{"type": "object", "properties": map[string]any{"count": map[string]any{"type": "integer"}}}
	linkQuery := queryParam("link", "Lien de la fiche anime", true)
	browseOp := func(method string) map[string]any {
		return map[string]any{
			method: map[string]any{
				"parameters": []any{pathID("id")},
				"responses":  map[string]any{"200": jsonOK(schemaRef("BrowseView")), "404": jsonErr},
			},
		}
	}
	catalogGet := func(schema map[string]any, params ...any) map[string]any {
		op := map[string]any{"responses": map[string]any{"200": jsonOK(schema), "400": jsonErr, "404": jsonErr, "502": jsonErr}}
		if len(params) > 0 {
			op["parameters"] = params
		}
		return map[string]any{"get": op}
	}

	savedAnimeProps := map[string]any{
		"link":     map[string]any{"type": "string"},
		"img":      map[string]any{"type": "string"},
		"alt":      map[string]any{"type": "string"},
		"title":    map[string]any{"type": "string"},
		"episode":  map[string]any{"type": "string"},
		"released": map[string]any{"type": "string"},
		"type":     map[string]any{"type": "string"},
		"score":    map[string]any{"type": "number", "nullable": true},
	}
	savedAnimeStored := map[string]any{"addedAt": map[string]any{"type": "integer", "description": "ms depuis epoch"}}
	for k, v := range savedAnimeProps {
		savedAnimeStored[k] = v
	}
	savedAnime := map[string]any{"type": "object", "properties": savedAnimeStored, "required": []any{"link", "addedAt"}}

	spec := map[string]any{
		"openapi": "3.0.3",
		"info": map[string]any{
			"title":   "AKD API",
			"version": "v1",
		},
		"components": map[string]any{
			"schemas": map[string]any{
				"OpenAPIDocument": map[string]any{"type": "object", "additionalProperties": true},
				"Error": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"error": map[string]any{"type": "string"},
						"code":  map[string]any{"type": "string", "enum": []any{"invalid_params", "http_status", "network_error", "bad_payload"}},
					},
					"required": []any{"error"},
				},
				"SavedAnimeInput": map[string]any{"type": "object", "properties": savedAnimeProps, "required": []any{"link"}},
				"SavedAnime":      savedAnime,
				"SavedAnimeList":  map[string]any{"type": "array", "items": schemaRef("SavedAnime")},
				"ToggleResult": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"added":    map[string]any{"type": "boolean"},
						"isMember": map[string]any{"type": "boolean"},
					},
				},
				"LinkList": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				"AnimeCard": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"slug":       map[string]any{"type": "string"},
						"title":      map[string]any{"type": "string"},
						"alt":        map[string]any{"type": "string"},
						"img":        map[string]any{"type": "string"},
						"type":       map[string]any{"type": "string"},
						"score":      map[string]any{"type": "number"},
						"episode":    map[string]any{"type": "string"},
						"released":   map[string]any{"type": "string"},
						"detail_url": map[string]any{"type": "string"},
					},
				},
				"AnimeCardList": map[string]any{"type": "array", "items": schemaRef("AnimeCard")},
				"AnimeCardPage": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"items":       schemaRef("AnimeCardList"),
						"currentPage": map[string]any{"type": "integer"},
						"totalPages":  map[string]any{"type": "integer"},
					},
				},
				"Genre": map[string]any{
					"type":       "object",
					"properties": map[string]any{"id": map[string]any{"type": "string"}, "title": map[string]any{"type": "string"}},
				},
				"GenreList":      map[string]any{"type": "array", "items": schemaRef("Genre")},
				"Schedule":       map[string]any{"type": "object", "additionalProperties": true},
				"AnimeView":      map[string]any{"type": "object", "additionalProperties": true, "description": "Fiche anime + showcase (logo, landscape, youtubeId, arcs) + trailer_url."},
				"EpisodeServers": map[string]any{"type": "object", "additionalProperties": true, "description": "Episode + serveurs groupés par fournisseur."},
				"PlayResult":     map[string]any{"type": "object", "additionalProperties": true},
				"VideoURL":       map[string]any{"type": "object", "properties": map[string]any{"url": map[string]any{"type": "string"}}},
				"BrowseState": map[string]any{
					"type": "string",
					"enum": []any{"idle", "loading-first-page", "has-more", "loading-next-page", "exhausted", "error"},
				},
				"BrowseFeed": map[string]any{"type": "string", "enum": []any{"ongoing", "completed", "popular", "genre", "search"}},
				"BrowseView": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id":          map[string]any{"type": "string"},
						"feed":        schemaRef("BrowseFeed"),
						"query":       map[string]any{"type": "string"},
						"state":       schemaRef("BrowseState"),
						"items":       schemaRef("AnimeCardList"),
						"currentPage": map[string]any{"type": "integer"},
						"totalPages":  map[string]any{"type": "integer"},
						"nextPage":    map[string]any{"type": "integer"},
						"error":       map[string]any{"type": "string"},
						"outcome":     map[string]any{"type": "string", "enum": []any{"fetched", "suppressed", "exhausted", "stale", "failed"}},
					},
					"required": []any{"id", "feed", "state", "items"},
				},
				"OpenBrowseRequest": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"feed":  schemaRef("BrowseFeed"),
						"query": map[string]any{"type": "string", "description": "Genre (feed=genre) ou recherche (feed=search)."},
					},
					"required": []any{"feed"},
				},
			},
		},
		"paths": map[string]any{
			"/api/v1/health": map[string]any{
				"get": map[string]any{"responses": map[string]any{"200": map[string]any{"description": "OK"}}},
			},
			"/api/v1/version": map[string]any{
				"get": map[string]any{"responses": map[string]any{"200": map[string]any{"description": "OK"}}},
			},
			"/api/v1/openapi.json": map[string]any{
				"get": map[string]any{"responses": map[string]any{"200": jsonOK(schemaRef("OpenAPIDocument"))}},
			},
			"/api/v1/events": map[string]any{
				"get": map[string]any{
					"parameters": []any{queryParam("topic", "watchlist-updated, liked-updated, browse.updated", false)},
					"responses":  map[string]any{"200": map[string]any{"description": "SSE"}},
				},
			},
			"/api/v1/mylist": map[string]any{
				"get": map[string]any{"responses": map[string]any{"200": jsonOK(schemaRef("SavedAnimeList"))}},
				"post": map[string]any{
					"requestBody": body(schemaRef("SavedAnimeInput")),
					"responses":   map[string]any{"200": jsonOK(flag("added")), "201": jsonOK(flag("added")), "400": jsonErr},
				},
				"delete": map[string]any{
					"parameters": []any{linkQuery},
					"responses":  map[string]any{"200": jsonOK(flag("removed")), "400": jsonErr},
				},
			},
			"/api/v1/mylist/count": map[string]any{
				"get": map[string]any{"responses": map[string]any{"200": jsonOK(count)}},
			},
			"/api/v1/mylist/contains": map[string]any{
				"get": map[string]any{"parameters": []any{linkQuery}, "responses": map[string]any{"200": jsonOK(flag("isMember")), "400": jsonErr}},
			},
			"/api/v1/mylist/toggle": map[string]any{
				"post": map[string]any{
					"requestBody": body(schemaRef("SavedAnimeInput")),
					"responses":   map[string]any{"200": jsonOK(schemaRef("ToggleResult")), "400": jsonErr},
				},
			},
			"/api/v1/mylist/all": map[string]any{
				"delete": map[string]any{"responses": map[string]any{"200": jsonOK(flag("cleared"))}},
			},
			"/api/v1/liked": map[string]any{
				"get": map[string]any{"responses": map[string]any{"200": jsonOK(schemaRef("LinkList"))}},
			},
			"/api/v1/liked/count": map[string]any{
				"get": map[string]any{"responses": map[string]any{"200": jsonOK(count)}},
			},
			"/api/v1/liked/contains": map[string]any{
				"get": map[string]any{"parameters": []any{linkQuery}, "responses": map[string]any{"200": jsonOK(flag("liked")), "400": jsonErr}},
			},
			"/api/v1/liked/toggle": map[string]any{
				"post": map[string]any{
					"requestBody": body(map[string]any{"type": "object", "properties": map[string]any{"link": map[string]any{"type": "string"}}, "required": []any{"link"}}),
					"responses":   map[string]any{"200": jsonOK(flag("liked")), "400": jsonErr},
				},
			},
			"/api/v1/liked/all": map[string]any{
				"delete": map[string]any{"responses": map[string]any{"200": jsonOK(flag("cleared"))}},
			},
			"/api/v1/catalog/new":    catalogGet(schemaRef("AnimeCardList")),
			"/api/v1/catalog/genres": catalogGet(schemaRef("GenreList")),
			"/api/v1/catalog/schedule": catalogGet(schemaRef("Schedule"),
				queryParam("day", "sunday..saturday (défaut: aujourd'hui)", false)),
			"/api/v1/catalog/search": catalogGet(schemaRef("AnimeCardPage"), queryParam("q", "Recherche", true)),
			"/api/v1/catalog/anime/{slug}": catalogGet(schemaRef("AnimeView"),
				pathID("slug"),
				queryParam("order", "asc|desc", false),
				queryParam("arc", "Plage d'épisodes (1-61, 1086+)", false)),
			"/api/v1/catalog/episode": catalogGet(schemaRef("EpisodeServers"), queryParam("path", "Chemin detail_eps", true)),
			"/api/v1/catalog/play":    catalogGet(schemaRef("PlayResult"), queryParam("path", "Chemin detail_eps", true)),
			"/api/v1/catalog/video":   catalogGet(schemaRef("VideoURL"), queryParam("path", "Chemin video", true)),
			"/api/v1/browse": map[string]any{
				"post": map[string]any{
					"requestBody": body(schemaRef("OpenBrowseRequest")),
					"responses":   map[string]any{"201": jsonOK(schemaRef("BrowseView")), "400": jsonErr},
				},
			},
			"/api/v1/browse/feeds": map[string]any{
				"get": map[string]any{"responses": map[string]any{"200": jsonOK(map[string]any{"type": "array", "items": schemaRef("BrowseFeed")})}},
			},
			"/api/v1/browse/{id}": map[string]any{
				"get": browseOp("get")["get"],
				"delete": map[string]any{
					"parameters": []any{pathID("id")},
					"responses":  map[string]any{"204": map[string]any{"description": "Closed"}, "404": jsonErr},
				},
			},
			"/api/v1/browse/{id}/more":    browseOp("post"),
			"/api/v1/browse/{id}/retry":   browseOp("post"),
			"/api/v1/browse/{id}/refresh": browseOp("post"),
			"/api/v1/browse/{id}/query": map[string]any{
				"put": map[string]any{
					"parameters":  []any{pathID("id")},
					"requestBody": body(map[string]any{"type": "object", "properties": map[string]any{"query": map[string]any{"type": "string"}}}),
					"responses":   map[string]any{"200": jsonOK(schemaRef("BrowseView")), "404": jsonErr},
				},
			},
		},
	}

	httpjson.Write(w, http.StatusOK, spec)
}
