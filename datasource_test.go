package vectortile

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestResolveTileURL(t *testing.T) {
	cases := []struct {
		template string
		z, x, y  int
		want     string
	}{
		{"https://tile.example.com/#Z#/#X#/#Y#.mvt", 3, 1, 2, "https://tile.example.com/3/1/2.mvt"},
		{"https://tile.example.com/#Z#/#X#/#TMSY#.mvt", 2, 1, 1, "https://tile.example.com/2/1/2.mvt"},
	}
	for _, c := range cases {
		got, err := resolveTileURL(c.template, c.z, c.x, c.y)
		if err != nil {
			t.Fatalf("resolveTileURL(%q): %v", c.template, err)
		}
		if got != c.want {
			t.Errorf("resolveTileURL(%q, %d, %d, %d) = %q, want %q", c.template, c.z, c.x, c.y, got, c.want)
		}
	}
}

func TestResolveTileURLRejectsTemplateWithoutPlaceholders(t *testing.T) {
	if _, err := resolveTileURL("https://tile.example.com/tile.mvt", 1, 1, 1); err == nil {
		t.Fatal("expected error for template with no placeholders")
	}
}

func TestHTTPSourceFetchTile(t *testing.T) {
	const want = "fake-mvt-bytes"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/4/8/6.mvt" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(want))
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL+"/#Z#/#X#/#Y#.mvt", nil)
	got, err := src.FetchTile(context.Background(), 4, 8, 6)
	if err != nil {
		t.Fatalf("FetchTile: %v", err)
	}
	if string(got) != want {
		t.Errorf("FetchTile = %q, want %q", got, want)
	}
}

func TestHTTPSourceFetchTileBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL+"/#Z#/#X#/#Y#.mvt", nil)
	_, err := src.FetchTile(context.Background(), 1, 1, 1)
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
	verr, ok := err.(*Error)
	if !ok || verr.Kind != ErrBadResponse {
		t.Fatalf("expected ErrBadResponse, got %v", err)
	}
}

func TestFileSourceFetchTile(t *testing.T) {
	dir := t.TempDir()
	tileDir := filepath.Join(dir, "5", "3")
	if err := os.MkdirAll(tileDir, 0o755); err != nil {
		t.Fatal(err)
	}
	want := []byte("fake-mvt-bytes")
	if err := os.WriteFile(filepath.Join(tileDir, "7.mvt"), want, 0o644); err != nil {
		t.Fatal(err)
	}

	src := NewFileSource(dir)
	got, err := src.FetchTile(context.Background(), 5, 3, 7)
	if err != nil {
		t.Fatalf("FetchTile: %v", err)
	}
	if string(got) != string(want) {
		t.Errorf("FetchTile = %q, want %q", got, want)
	}
}

func TestFileSourceFetchTileMissing(t *testing.T) {
	src := NewFileSource(t.TempDir())
	if _, err := src.FetchTile(context.Background(), 0, 0, 0); err == nil {
		t.Fatal("expected error for missing tile file")
	}
}
