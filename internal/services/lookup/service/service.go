// Package service implements the identifier resolver
package service

import (
	"time"

	"cardrelay/internal/core/pricing"
	"cardrelay/internal/core/shard"
	"cardrelay/internal/modkit"
	"cardrelay/internal/platform/metrics"

	dom "cardrelay/internal/services/lookup/domain"
)

// Config controls probing and the price window
type Config struct {
	Hosts        []string
	ProbeTimeout time.Duration
	Band         int
	ImageExt     string
	WindowMonths int
	Order        pricing.Order
}

// Sources are the marketplace collaborators the resolver reads from
type Sources struct {
	Cards   dom.CardSource
	Meta    dom.MetadataSource
	History dom.PriceHistorySource
}

// Svc implements dom.ResolverPort
type Svc struct {
	cfg     Config
	prober  *Prober
	meta    dom.MetadataSource
	history *Extractor
	met     *metrics.Metrics
	now     func() time.Time
}

// New constructs the resolver. Meta and History may be nil
func New(deps modkit.Deps, cfg Config, src Sources) *Svc {
	if len(cfg.Hosts) == 0 {
		cfg.Hosts = shard.DefaultHosts()
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = 2 * time.Second
	}
	if cfg.Band < 1 {
		cfg.Band = 1
	}
	if cfg.ImageExt == "" {
		cfg.ImageExt = "jpg"
	}
	if cfg.WindowMonths <= 0 {
		cfg.WindowMonths = pricing.DefaultWindowMonths
	}
	if cfg.Order == "" {
		cfg.Order = pricing.OrderReverse
	}
	met := deps.MetricsOrNop()
	return &Svc{
		cfg:     cfg,
		prober:  NewProber(src.Cards, cfg.ProbeTimeout, met),
		meta:    src.Meta,
		history: NewExtractor(src.History, cfg.WindowMonths, cfg.Order, met),
		met:     met,
		now:     time.Now,
	}
}

// Hosts returns the mirror order in use
func (s *Svc) Hosts() []string { return s.cfg.Hosts }
