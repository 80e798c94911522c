package sprite

import "testing"

func TestGetExactScaleMatch(t *testing.T) {
	s := New()
	s.AddSprite("pin", Sprite{Width: 10, Height: 10, Scale: 1})
	s.AddSprite("pin", Sprite{Width: 20, Height: 20, Scale: 2})
	got, ok := s.Get("pin", 2)
	if !ok || got.Scale != 2 {
		t.Fatalf("got %+v, ok=%v", got, ok)
	}
}

func TestGetNearestAboveThenBelow(t *testing.T) {
	s := New()
	s.AddSprite("pin", Sprite{Width: 10, Height: 10, Scale: 1})
	s.AddSprite("pin", Sprite{Width: 30, Height: 30, Scale: 3})

	got, ok := s.Get("pin", 2)
	if !ok || got.Scale != 3 {
		t.Fatalf("expected nearest-above 3, got %+v", got)
	}

	s2 := New()
	s2.AddSprite("pin", Sprite{Width: 10, Height: 10, Scale: 1})
	got2, ok := s2.Get("pin", 2)
	if !ok || got2.Scale != 1 {
		t.Fatalf("expected nearest-below 1, got %+v", got2)
	}
}

func TestFallbackInvokedOnceAndCached(t *testing.T) {
	s := New()
	calls := 0
	s.SetFallback(func(name string) (Sprite, bool) {
		calls++
		return Sprite{}, false
	})
	for i := 0; i < 5; i++ {
		if _, ok := s.Get("missing", 1); ok {
			t.Fatalf("expected miss")
		}
	}
	if calls != 1 {
		t.Fatalf("fallback invoked %d times, want 1", calls)
	}
}

func TestFallbackCacheFIFOEviction(t *testing.T) {
	s := New()
	s.SetFallback(func(name string) (Sprite, bool) { return Sprite{}, false })
	for i := 0; i < fallbackCacheCapacity+10; i++ {
		s.Get(nameFor(i), 1)
	}
	if len(s.fbCache) != fallbackCacheCapacity {
		t.Fatalf("cache size = %d, want %d", len(s.fbCache), fallbackCacheCapacity)
	}
	if _, stillCached := s.fbCache[nameFor(0)]; stillCached {
		t.Fatalf("oldest entry should have been evicted")
	}
}

func nameFor(i int) string {
	return string(rune('a'+i%26)) + string(rune('A'+(i/26)%26))
}

func TestAddPageRejectsNonPositiveDimensions(t *testing.T) {
	s := New()
	err := s.AddPage(nil, []byte(`{"broken":{"x":0,"y":0,"width":0,"height":10}}`), 1)
	if err == nil {
		t.Fatalf("expected MALFORMED_STYLE error")
	}
}

func TestSetFallbackClearsCache(t *testing.T) {
	s := New()
	s.SetFallback(func(name string) (Sprite, bool) { return Sprite{}, false })
	s.Get("x", 1)
	if len(s.fbCache) != 1 {
		t.Fatalf("expected one cached entry")
	}
	s.SetFallback(func(name string) (Sprite, bool) { return Sprite{}, false })
	if len(s.fbCache) != 0 {
		t.Fatalf("expected cache cleared on fallback replacement")
	}
}
