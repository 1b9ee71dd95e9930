package common

import (
	"context"
	"testing"
)

func TestActor(t *testing.T) {
	t.Run("fallback", func(t *testing.T) {
		if got := Actor(context.Background()); got != DefaultActor {
			t.Fatalf("expected %q, got %q", DefaultActor, got)
		}
	})

	t.Run("user id only", func(t *testing.T) {
		ctx := ContextWithUserID(context.Background(), 42)
		if got := Actor(ctx); got != "user:42" {
			t.Fatalf("expected user:42, got %q", got)
		}
	})

	t.Run("name wins", func(t *testing.T) {
		ctx := ContextWithUserID(context.Background(), 42)
		ctx = ContextWithUserName(ctx, "  alice ")
		if got := Actor(ctx); got != "alice" {
			t.Fatalf("expected alice, got %q", got)
		}
	})
}

func TestGetUserID(t *testing.T) {
	ctx := context.WithValue(context.Background(), userIDKey, "17")
	id, ok := GetUserID(ctx)
	if !ok || id != 17 {
		t.Fatalf("expected 17, got %d (%v)", id, ok)
	}
	if _, ok := GetUserID(context.WithValue(context.Background(), userIDKey, "x")); ok {
		t.Fatal("expected non-numeric id to be rejected")
	}
}

func TestRequestID(t *testing.T) {
	if GetRequestID(context.Background()) != "" {
		t.Fatal("expected empty request id")
	}
	ctx := ContextWithRequestID(context.Background(), "abc")
	if GetRequestID(ctx) != "abc" {
		t.Fatal("request id not stored")
	}
}
