package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestWithLogger_RoundTrip(t *testing.T) {
	l, _ := New(DefaultConfig())
	ctx := WithLogger(context.Background(), l)

	if FromContext(ctx) != l {
		t.Fatal("FromContext should return the stored logger")
	}
}

func TestFromContext_FallsBackToDefault(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatal("FromContext must never return nil")
	}
}

func TestUpdateAndChatIDs(t *testing.T) {
	ctx := WithUpdateID(context.Background(), 77)
	ctx = WithChatID(ctx, 721641425)

	if got := UpdateIDFromContext(ctx); got != 77 {
		t.Fatalf("UpdateIDFromContext = %d", got)
	}
	if got := ChatIDFromContext(ctx); got != 721641425 {
		t.Fatalf("ChatIDFromContext = %d", got)
	}
}

func TestL_EnrichesFromContext(t *testing.T) {
	var buf bytes.Buffer
	l, _ := New(Config{Level: "info", Format: "json", Output: &buf})

	ctx := WithLogger(context.Background(), l)
	ctx = WithUpdateID(ctx, 42)
	ctx = WithChatID(ctx, 100)

	L(ctx).Info("handled")

	out := buf.String()
	if !strings.Contains(out, `"update_id":42`) {
		t.Fatalf("missing update_id: %q", out)
	}
	if !strings.Contains(out, `"chat_id":100`) {
		t.Fatalf("missing chat_id: %q", out)
	}
}
