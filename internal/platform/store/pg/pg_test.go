package pg

import (
	"context"
	"testing"
)

func TestOpen_InvalidURL(t *testing.T) {
	if _, err := Open(context.Background(), Config{URL: "://bad"}, nil, nil); err == nil {
		t.Fatalf("expected parse error for invalid url")
	}
}

func TestClose_NilSafe(t *testing.T) {
	var p *PG
	p.Close()
	(&PG{}).Close()
}
