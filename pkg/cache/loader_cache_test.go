package cache

import (
	"context"
	"errors"
	"testing"

	"sync/atomic"
)

func TestLoaderCache_Get_miss_then_hit(t *testing.T) {
	loads := atomic.Int32{}

	c, err := NewLoaderCache[string, string](10, func(s string) string { return s })
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	load := func(_ context.Context, key string) (string, error) {
		loads.Add(1)

		return "v-" + key, nil
	}

	v, err := c.Get(ctx, "a", load)
	if err != nil {
		t.Fatal(err)
	}

	if v != "v-a" {
		t.Errorf("got %q", v)
	}

	if loads.Load() != 1 {
		t.Errorf("loads = %d", loads.Load())
	}

	v, err = c.Get(ctx, "a", load)
	if err != nil {
		t.Fatal(err)
	}

	if v != "v-a" {
		t.Errorf("got %q", v)
	}

	if loads.Load() != 1 {
		t.Errorf("loads = %d, want 1 (second Get must be a hit)", loads.Load())
	}
}

func TestLoaderCache_Get_error_not_cached(t *testing.T) {
	loads := atomic.Int32{}
	failing := errors.New("load failed")

	c, err := NewLoaderCache[string, string](10, func(s string) string { return s })
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	load := func(_ context.Context, _ string) (string, error) {
		loads.Add(1)

		return "", failing
	}

	if _, err := c.Get(ctx, "a", load); !errors.Is(err, failing) {
		t.Fatalf("err = %v, want %v", err, failing)
	}

	if _, err := c.Get(ctx, "a", load); !errors.Is(err, failing) {
		t.Fatalf("err = %v, want %v", err, failing)
	}

	if loads.Load() != 2 {
		t.Errorf("loads = %d, want 2 (errors must not be cached)", loads.Load())
	}
}

func TestLoaderCache_Invalidate(t *testing.T) {
	loads := atomic.Int32{}

	c, err := NewLoaderCache[string, string](10, func(s string) string { return s })
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	load := func(_ context.Context, key string) (string, error) {
		loads.Add(1)

		return "v-" + key, nil
	}

	if _, err := c.Get(ctx, "a", load); err != nil {
		t.Fatal(err)
	}

	c.Invalidate("a")

	if _, err := c.Get(ctx, "a", load); err != nil {
		t.Fatal(err)
	}

	if loads.Load() != 2 {
		t.Errorf("loads = %d, want 2 after invalidation", loads.Load())
	}

	c.InvalidateAll()

	if c.Len() != 0 {
		t.Errorf("Len = %d, want 0", c.Len())
	}
}
