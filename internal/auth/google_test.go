package auth

import (
	"fmt"
	"testing"
	"time"
)

func TestStateStoreConsumeIsOneShot(t *testing.T) {
	store := newStateStore()
	store.put("state-1", time.Now().Add(time.Minute))

	if !store.consume("state-1") {
		t.Fatal("fresh state must be accepted")
	}
	if store.consume("state-1") {
		t.Fatal("a state must not be consumable twice")
	}
	if store.consume("never-issued") {
		t.Fatal("unknown state must be rejected")
	}
}

func TestStateStoreRejectsExpired(t *testing.T) {
	store := newStateStore()
	store.put("stale", time.Now().Add(-time.Second))

	if store.consume("stale") {
		t.Fatal("expired state must be rejected")
	}
}

func TestStateStorePutSweepsExpired(t *testing.T) {
	store := newStateStore()
	for i := 0; i < 10; i++ {
		store.put(fmt.Sprintf("stale-%d", i), time.Now().Add(-time.Second))
	}
	store.put("fresh", time.Now().Add(time.Minute))

	store.mu.Lock()
	size := len(store.items)
	store.mu.Unlock()
	if size != 1 {
		t.Fatalf("expected only the fresh state to remain, got %d entries", size)
	}
}

func TestAppendTokenPreservesQuery(t *testing.T) {
	got, err := appendToken("https://app.example.com/signin?tab=oauth", "jwt-value")
	if err != nil {
		t.Fatalf("appendToken: %v", err)
	}
	want := "https://app.example.com/signin?tab=oauth&token=jwt-value"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}

	if _, err := appendToken("", "jwt-value"); err == nil {
		t.Fatal("empty redirect url must error")
	}
}
