package ai

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestGeminiGenerator_WithoutKey(t *testing.T) {
	g, err := NewGeminiGenerator(context.Background(), "", "gemini-2.0-flash", time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = g.Generate(context.Background(), "hello")
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}
