package net

import (
	"context"
	"testing"
)

func TestWithRequestAndRequestID(t *testing.T) {
	ctx := WithRequest(context.Background(), "req-42")
	if got := RequestID(ctx); got != "req-42" {
		t.Fatalf("RequestID = %q", got)
	}
	base := context.Background()
	if WithRequest(base, "") != base {
		t.Fatalf("empty id should return same ctx")
	}
	if RequestID(base) != "" {
		t.Fatalf("bare ctx should have no request id")
	}
}
