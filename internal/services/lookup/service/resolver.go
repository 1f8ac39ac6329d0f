package service

import (
	"context"
	"sync"

	"cardrelay/internal/core/shard"
	perr "cardrelay/internal/platform/errors"
	"cardrelay/internal/platform/logger"

	dom "cardrelay/internal/services/lookup/domain"
)

// Resolve probes the candidates for id in order and builds the card from the
// first success. Per-candidate failures are absorbed; only exhaustion fails
func (s *Svc) Resolve(ctx context.Context, id string) dom.ResolutionResult {
	ctx = logger.WithIdentifier(ctx, id)
	log := logger.C(ctx)
	start := s.now()
	res := dom.ResolutionResult{Identifier: id}

	if !isIdentifier(id) {
		res.Err = perr.InvalidArgf("identifier %q must be a run of at least 5 digits", id)
		s.met.ObserveResolve("invalid", 0, s.now().Sub(start))
		return res
	}

	win, probed, ok := s.firstSuccess(ctx, shard.Generate(id, s.cfg.Hosts))
	res.Probed = probed
	if !ok {
		res.Err = perr.Newf(perr.ErrorCodeExhaustedCandidates, "no mirror holds a card for %s (%d candidates)", id, probed)
		log.Info().Int("probed", probed).Msg("candidates exhausted")
		s.met.ObserveResolve("exhausted", probed, s.now().Sub(start))
		return res
	}

	card := buildCard(id, win, s.cfg.ImageExt)
	s.enrich(ctx, id, card)
	res.Card = card
	res.History = s.history.Extract(ctx, id, card.Affinity)

	log.Info().
		Int("probed", probed).
		Int("mirror", card.Affinity.MirrorIndex).
		Str("category", card.Category).
		Msg("card resolved")
	s.met.ObserveResolve("resolved", probed, s.now().Sub(start))
	return res
}

// firstSuccess walks candidates band by band. Inside a band every probe runs to
// completion and the lowest-ordered success wins, so the winner is the one a
// strictly sequential walk would find
func (s *Svc) firstSuccess(ctx context.Context, cands []shard.Candidate) (dom.ProbeOutcome, int, bool) {
	band := max(s.cfg.Band, 1)
	probed := 0
	for lo := 0; lo < len(cands); lo += band {
		hi := min(lo+band, len(cands))
		outs := s.probeBand(ctx, cands[lo:hi])
		probed += len(outs)
		for _, o := range outs {
			if o.Kind == dom.OutcomeSuccess {
				return o, probed, true
			}
		}
	}
	return dom.ProbeOutcome{}, probed, false
}

func (s *Svc) probeBand(ctx context.Context, band []shard.Candidate) []dom.ProbeOutcome {
	outs := make([]dom.ProbeOutcome, len(band))
	if len(band) == 1 {
		outs[0] = s.prober.Probe(ctx, band[0])
		return outs
	}
	var wg sync.WaitGroup
	for i, c := range band {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outs[i] = s.prober.Probe(ctx, c)
		}()
	}
	wg.Wait()
	return outs
}

func buildCard(id string, win dom.ProbeOutcome, ext string) *dom.ProductCard {
	aff := win.Candidate.Affinity()
	card := &dom.ProductCard{
		ImageURL: aff.ImageURL(id, ext),
		Affinity: aff,
	}
	if win.Doc != nil {
		card.DisplayName = win.Doc.ImtName
		card.Category = win.Doc.SubjName
		card.Subcategory = win.Doc.SubjRootName
	}
	return card
}

// enrich fills brand and supplier. A failed or empty lookup leaves them blank
func (s *Svc) enrich(ctx context.Context, id string, card *dom.ProductCard) {
	if s.meta == nil {
		return
	}
	meta, ok, err := s.meta.Get(ctx, id)
	if err != nil || !ok {
		if err == nil {
			err = perr.NotFoundf("no metadata for %s", id)
		}
		logger.C(ctx).Warn().
			Err(perr.Wrap(err, perr.ErrorCodeEnrichmentUnavailable, "enrichment unavailable")).
			Msg("metadata lookup failed; card kept without brand and supplier")
		return
	}
	card.Brand = meta.Brand
	card.BrandID = meta.BrandID
	card.Supplier = meta.Supplier
	card.SupplierID = meta.SupplierID
}

// isIdentifier accepts any run of at least 5 ASCII digits; ids are opaque and may exceed uint64
func isIdentifier(id string) bool {
	if len(id) < 5 {
		return false
	}
	for i := range len(id) {
		if id[i] < '0' || id[i] > '9' {
			return false
		}
	}
	return true
}
