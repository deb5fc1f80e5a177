package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Guilhem-Bonnet/akd/internal/domain"
)

func TestDefaultShowcase_BuiltIns(t *testing.T) {
	s := DefaultShowcase()

	logo, landscape := s.Artwork("one-piece")
	if logo == "" || landscape == "" {
		t.Fatalf("one-piece artwork missing: %q %q", logo, landscape)
	}
	if id, ok := s.Trailer("naruto-kecil"); !ok || id != "-G9BqkgZXRA" {
		t.Fatalf("unexpected trailer: %q %v", id, ok)
	}
	arcs := s.Arcs("one-piece")
	if len(arcs) != 11 || arcs[0].Episodes != "1-61" || arcs[10].Episodes != "1086+" {
		t.Fatalf("unexpected arcs: %+v", arcs)
	}
	if _, ok := s.Trailer("teogonia"); ok {
		t.Fatalf("teogonia has no trailer")
	}
}

func TestLoadShowcase_FileOverridesAndExtends(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "showcase.yaml")
	body := `
- slug: one-piece
  youtubeId: NEWTRAILER
- slug: frieren
  landscape: https://img.example/frieren.jpg
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	s, err := LoadShowcase(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if id, _ := s.Trailer("one-piece"); id != "NEWTRAILER" {
		t.Fatalf("override not applied: %q", id)
	}
	if logo, _ := s.Artwork("one-piece"); logo == "" {
		t.Fatalf("empty override must keep built-in logo")
	}
	if len(s.Arcs("one-piece")) != 11 {
		t.Fatalf("arcs lost")
	}
	if _, l := s.Artwork("frieren"); l != "https://img.example/frieren.jpg" {
		t.Fatalf("new entry missing: %q", l)
	}
}

func TestLoadShowcase_MissingFileUsesDefaults(t *testing.T) {
	s, err := LoadShowcase(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Len() != DefaultShowcase().Len() {
		t.Fatalf("expected defaults only")
	}
}

func TestParseShowcase_Invalid(t *testing.T) {
	if _, err := ParseShowcase([]byte("- logo: x\n")); err == nil {
		t.Fatalf("entry without slug accepted")
	}
	if _, err := ParseShowcase([]byte("{not: [a list")); err == nil {
		t.Fatalf("invalid yaml accepted")
	}
}

func TestShowcase_Decorate(t *testing.T) {
	s := DefaultShowcase()
	v := s.Decorate("one-piece", domain.AnimeDetail{Title: "One Piece"})
	if v.Slug != "one-piece" || v.Showcase == nil {
		t.Fatalf("expected decoration: %+v", v)
	}
	if !strings.HasPrefix(v.Trailer, "https://www.youtube.com/embed/MCb13lbVGE0?") || !strings.Contains(v.Trailer, "playlist=MCb13lbVGE0") {
		t.Fatalf("unexpected trailer url: %s", v.Trailer)
	}

	plain := s.Decorate("unknown", domain.AnimeDetail{Slug: "unknown"})
	if plain.Showcase != nil || plain.Trailer != "" {
		t.Fatalf("unknown slug must stay plain: %+v", plain)
	}
}
