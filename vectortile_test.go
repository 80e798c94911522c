package vectortile

import "testing"

const minimalStyleJSON = `{
  "sources": {
    "composite": {"type": "vector", "tiles": ["https://tile.example.com/#Z#/#X#/#Y#.mvt"]}
  },
  "layers": [
    {"id": "bg", "type": "background", "paint": {"background-color": "#223344"}},
    {"id": "water-fill", "type": "fill", "source": "composite", "source-layer": "water",
     "filter": ["==", ["geometry-type"], "Polygon"],
     "paint": {"fill-color": "#3388cc", "fill-opacity": 0.8}},
    {"id": "road-line", "type": "line", "source": "composite", "source-layer": "road",
     "layout": {"line-cap": "round", "line-join": "round"},
     "paint": {"line-color": "#ffffff", "line-width": 2}},
    {"id": "place-label", "type": "symbol", "source": "composite", "source-layer": "place",
     "layout": {"text-field": ["get", "name"], "symbol-placement": "point"},
     "paint": {"text-color": "#000000"}}
  ]
}`

func TestLoadStyleParsesSourceAndLayers(t *testing.T) {
	s, err := LoadStyle([]byte(minimalStyleJSON), nil, nil)
	if err != nil {
		t.Fatalf("LoadStyle: %v", err)
	}
	if s.Source != "composite" {
		t.Errorf("Source = %q, want %q", s.Source, "composite")
	}
	if s.TileURL != "https://tile.example.com/#Z#/#X#/#Y#.mvt" {
		t.Errorf("TileURL = %q", s.TileURL)
	}
	if len(s.Layers) != 4 {
		t.Fatalf("got %d layers, want 4", len(s.Layers))
	}
}

func TestLoadStyleRejectsMissingSource(t *testing.T) {
	_, err := LoadStyle([]byte(`{"sources": {}, "layers": []}`), nil, nil)
	if err == nil {
		t.Fatal("expected error for missing source")
	}
	verr, ok := err.(*Error)
	if !ok || verr.Kind != ErrMalformedStyle {
		t.Fatalf("expected ErrMalformedStyle, got %v", err)
	}
}

func TestLoadStyleRejectsRasterSource(t *testing.T) {
	doc := `{"sources": {"r": {"type": "raster", "tiles": ["https://x/#Z#/#X#/#Y#.png"]}}, "layers": []}`
	_, err := LoadStyle([]byte(doc), nil, nil)
	if err == nil {
		t.Fatal("expected error for non-vector source")
	}
}

func TestLoadStyleBuildsIndexDemand(t *testing.T) {
	s, err := LoadStyle([]byte(minimalStyleJSON), nil, nil)
	if err != nil {
		t.Fatalf("LoadStyle: %v", err)
	}
	if _, ok := s.IndexDemand["water"]; !ok {
		t.Error("expected an index demand entry for source-layer \"water\"")
	}
}
