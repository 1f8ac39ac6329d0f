package domain

import (
	"context"

	"cardrelay/internal/core/shard"
)

// CardSource fetches a raw card document by candidate URL.
// A non-nil error means the request never produced a response
type CardSource interface {
	Get(ctx context.Context, url string) (body []byte, status int, err error)
}

// MetadataSource fetches enrichment by identifier. ok is false when the source
// answered but holds nothing for id
type MetadataSource interface {
	Get(ctx context.Context, id string) (meta Metadata, ok bool, err error)
}

// PriceHistorySource fetches the price history stored on a card's shard
type PriceHistorySource interface {
	Get(ctx context.Context, id string, at shard.Affinity) (records []PriceRecord, ok bool, err error)
}

// ResolverPort resolves identifiers to cards with their price window
type ResolverPort interface {
	Resolve(ctx context.Context, id string) ResolutionResult
}
