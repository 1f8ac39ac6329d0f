package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"cardrelay/internal/core/shard"
	perr "cardrelay/internal/platform/errors"
	"cardrelay/internal/platform/logger"
	"cardrelay/internal/platform/metrics"

	dom "cardrelay/internal/services/lookup/domain"
)

// Prober issues one GET per candidate and classifies the answer. No retries
type Prober struct {
	src     dom.CardSource
	timeout time.Duration
	met     *metrics.Metrics
	now     func() time.Time
}

// NewProber constructs a Prober with a per-probe timeout
func NewProber(src dom.CardSource, timeout time.Duration, met *metrics.Metrics) *Prober {
	return &Prober{src: src, timeout: timeout, met: met, now: time.Now}
}

// Probe fetches c.URL and returns its outcome
func (p *Prober) Probe(ctx context.Context, c shard.Candidate) dom.ProbeOutcome {
	pctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := p.now()
	body, status, err := p.src.Get(pctx, c.URL)
	out := classify(c, body, status, err)
	out.Latency = p.now().Sub(start)

	ev := logger.C(ctx).Debug().
		Int("mirror", c.MirrorIndex).
		Int("variant", c.Variant).
		Str("url", c.URL).
		Int("status", out.Status).
		Dur("latency", out.Latency).
		Str("outcome", out.Kind.String())
	if out.Err != nil {
		ev = ev.Err(out.Err)
	}
	ev.Msg("card probe")

	p.met.ObserveProbe(out.Kind.String(), out.Latency)
	return out
}

func classify(c shard.Candidate, body []byte, status int, err error) dom.ProbeOutcome {
	out := dom.ProbeOutcome{Candidate: c, Status: status}
	switch {
	case err != nil:
		out.Kind = dom.OutcomeNetworkFailure
		out.Err = perr.Wrapf(err, perr.ErrorCodeUnavailable, "probe %s", c.URL)
	case status != http.StatusOK:
		out.Kind = dom.OutcomeNotFound
		out.Err = perr.NotFoundf("probe %s: status %d", c.URL, status)
	default:
		doc, derr := decodeCard(body)
		if derr != nil {
			out.Kind = dom.OutcomeMalformed
			out.Err = perr.Wrapf(derr, perr.ErrorCodeMalformed, "probe %s: undecodable card", c.URL)
			return out
		}
		out.Kind = dom.OutcomeSuccess
		out.Payload = body
		out.Doc = doc
	}
	return out
}

// decodeCard accepts any JSON object; missing fields stay empty
func decodeCard(body []byte) (*dom.CardDocument, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, perr.Malformedf("card document is not a JSON object")
	}
	var doc dom.CardDocument
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}
