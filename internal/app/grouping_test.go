package app

import (
	"encoding/json"
	"testing"

	"github.com/Guilhem-Bonnet/akd/internal/domain"
)

func TestGroupVideoOptions_FirstOccurrenceOrder(t *testing.T) {
	in := []domain.VideoOption{
		{Title: "Mega 1080p", Video: "/v/0"},
		{Title: "Mega 720p", Video: "/v/1"},
		{Title: "Vidstream 480p", Video: "/v/2"},
	}
	got := GroupVideoOptions(in)

	if providers := got.Providers(); len(providers) != 2 || providers[0] != "Mega" || providers[1] != "Vidstream" {
		t.Fatalf("providers: %v", providers)
	}
	mega, ok := got.Get("Mega")
	if !ok || len(mega) != 2 || mega[0].Video != "/v/0" || mega[1].Video != "/v/1" {
		t.Fatalf("Mega group: %+v", mega)
	}
	vid, _ := got.Get("Vidstream")
	if len(vid) != 1 || vid[0].Video != "/v/2" {
		t.Fatalf("Vidstream group: %+v", vid)
	}
}

func TestGroupVideoOptions_Interleaved(t *testing.T) {
	in := []domain.VideoOption{
		{Title: "Vidstream 480p"},
		{Title: "Mega 1080p"},
		{Title: "Vidstream 720p"},
	}
	got := GroupVideoOptions(in)
	if got.Providers()[0] != "Vidstream" {
		t.Fatalf("expected Vidstream first, got %v", got.Providers())
	}
	vid, _ := got.Get("Vidstream")
	if len(vid) != 2 || vid[1].Title != "Vidstream 720p" {
		t.Fatalf("Vidstream group: %+v", vid)
	}
}

func TestGroupVideoOptions_EmptyInput(t *testing.T) {
	got := GroupVideoOptions(nil)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil groups, got %#v", got)
	}
	b, _ := json.Marshal(got)
	if string(b) != "[]" {
		t.Fatalf("json: want [], got %s", b)
	}
}

func TestGroupVideoOptions_EdgeTitles(t *testing.T) {
	in := []domain.VideoOption{
		{Title: ""},
		{Title: "Solo"},
		{Title: "Stream Backup"},
		{Title: "Stream Primary"},
	}
	got := GroupVideoOptions(in)

	if _, ok := got.Get(""); !ok {
		t.Fatalf("empty title should map to the empty provider")
	}
	if solo, _ := got.Get("Solo"); len(solo) != 1 {
		t.Fatalf("single-word title should be its own provider")
	}
	if stream, _ := got.Get("Stream"); len(stream) != 2 {
		t.Fatalf("titles sharing a first word should merge, got %d", len(stream))
	}
}

func TestGroupByProvider_DoesNotMutateInput(t *testing.T) {
	in := []string{"B x", "A y", "B z"}
	GroupByProvider(in, func(s string) string { return s })
	if in[0] != "B x" || in[1] != "A y" || in[2] != "B z" {
		t.Fatalf("input mutated: %v", in)
	}
}
