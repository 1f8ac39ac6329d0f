package service

import (
	"context"
	"time"

	"cardrelay/internal/core/pricing"
	"cardrelay/internal/core/shard"
	perr "cardrelay/internal/platform/errors"
	"cardrelay/internal/platform/logger"
	"cardrelay/internal/platform/metrics"

	dom "cardrelay/internal/services/lookup/domain"
)

// Extractor turns a card's price history into the display window.
// It never fails; anything short of usable data yields the no-history sentinel
type Extractor struct {
	src    dom.PriceHistorySource
	months int
	order  pricing.Order
	met    *metrics.Metrics
	now    func() time.Time
}

// NewExtractor constructs an Extractor. A nil src always yields the sentinel
func NewExtractor(src dom.PriceHistorySource, months int, order pricing.Order, met *metrics.Metrics) *Extractor {
	return &Extractor{src: src, months: months, order: order, met: met, now: time.Now}
}

// Extract fetches the history stored on the card's shard and formats the window
func (e *Extractor) Extract(ctx context.Context, id string, at shard.Affinity) []dom.PriceWindowEntry {
	log := logger.C(ctx)
	if e.src == nil {
		e.met.ObserveHistory("absent")
		return pricing.NoHistory()
	}

	recs, ok, err := e.src.Get(ctx, id, at)
	switch {
	case err != nil:
		log.Warn().
			Err(perr.Wrap(err, perr.ErrorCodeHistoryUnavailable, "price history unavailable")).
			Int("mirror", at.MirrorIndex).
			Msg("price history fetch failed")
		e.met.ObserveHistory("unavailable")
		return pricing.NoHistory()
	case !ok || len(recs) == 0:
		log.Debug().Int("mirror", at.MirrorIndex).Msg("no price history on shard")
		e.met.ObserveHistory("absent")
		return pricing.NoHistory()
	}

	out := pricing.Build(recs, e.now(), e.months, e.order)
	if pricing.IsNoHistory(out) {
		log.Debug().Int("records", len(recs)).Msg("price history outside window")
		e.met.ObserveHistory("empty")
		return out
	}
	e.met.ObserveHistory("ok")
	return out
}
