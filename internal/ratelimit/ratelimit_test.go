package ratelimit

import (
	"testing"
	"time"
)

func TestBucketAllowsUpToBurstThenBlocks(t *testing.T) {
	b := New(0, 3)
	for i := 0; i < 3; i++ {
		if !b.Allow() {
			t.Fatalf("expected token %d to be available", i)
		}
	}
	if b.Allow() {
		t.Fatal("expected bucket to be exhausted")
	}
}

func TestBucketRefillsOverTime(t *testing.T) {
	b := New(10, 1)
	if !b.Allow() {
		t.Fatal("expected initial token")
	}
	if b.Allow() {
		t.Fatal("expected bucket exhausted before refill")
	}
	tick := b.last
	b.now = func() time.Time { return tick.Add(200 * time.Millisecond) }
	if !b.Allow() {
		t.Fatal("expected refill after elapsed time")
	}
}
