// Package module wires the identifier resolver and exposes its ports
package module

import (
	"cardrelay/internal/adapters/marketplace"
	"cardrelay/internal/modkit"
	phttp "cardrelay/internal/platform/net/http"

	dom "cardrelay/internal/services/lookup/domain"
	"cardrelay/internal/services/lookup/service"
)

// Ports is the resolver port set
type Ports struct {
	Resolver dom.ResolverPort
}

// Module defines the lookup module
type Module struct {
	deps  modkit.Deps
	opts  Options
	ports Ports
}

// New constructs the lookup module. Non-zero overrides win over config.
// A mirror list that fails validation, from the file or the CSV, is fatal
func New(deps modkit.Deps, overrides Options) *Module {
	opts := FromConfig(deps.Cfg)

	if overrides.MirrorsFile != "" {
		opts.MirrorsFile = overrides.MirrorsFile
	}
	if len(overrides.Mirrors) != 0 {
		opts.Mirrors = overrides.Mirrors
	}
	if overrides.ProbeTimeout != 0 {
		opts.ProbeTimeout = overrides.ProbeTimeout
	}
	if overrides.Band != 0 {
		opts.Band = overrides.Band
	}
	if overrides.ImageExt != "" {
		opts.ImageExt = overrides.ImageExt
	}
	if overrides.MetadataURL != "" {
		opts.MetadataURL = overrides.MetadataURL
	}
	if overrides.Currency != "" {
		opts.Currency = overrides.Currency
	}
	if overrides.Order != "" {
		opts.Order = overrides.Order
	}
	if overrides.WindowMonths != 0 {
		opts.WindowMonths = overrides.WindowMonths
	}
	if overrides.UserAgent != "" {
		opts.UserAgent = overrides.UserAgent
	}

	if opts.MirrorsFile != "" && len(overrides.Mirrors) == 0 {
		hosts, err := LoadMirrors(opts.MirrorsFile)
		if err != nil {
			deps.Log.Fatal().Err(err).Str("file", opts.MirrorsFile).Msg("mirror list rejected")
		}
		opts.Mirrors = hosts
	} else if err := ValidateMirrors(opts.Mirrors); err != nil {
		deps.Log.Fatal().Err(err).Strs("mirrors", opts.Mirrors).Msg("mirror list rejected")
	}

	client := marketplace.NewClient(marketplace.Options{
		UserAgent:   opts.UserAgent,
		MetadataURL: opts.MetadataURL,
		Currency:    opts.Currency,
	})
	svc := service.New(deps, service.Config{
		Hosts:        opts.Mirrors,
		ProbeTimeout: opts.ProbeTimeout,
		Band:         opts.Band,
		ImageExt:     opts.ImageExt,
		WindowMonths: opts.WindowMonths,
		Order:        opts.Order,
	}, service.Sources{
		Cards:   client.Cards(),
		Meta:    client.Metadata(),
		History: client.PriceHistory(),
	})

	deps.Log.Info().
		Int("mirrors", len(opts.Mirrors)).
		Int("band", max(opts.Band, 1)).
		Dur("probe_timeout", opts.ProbeTimeout).
		Str("price_order", string(opts.Order)).
		Msg("lookup module ready")

	return &Module{deps: deps, opts: opts, ports: Ports{Resolver: svc}}
}

// Options returns the effective options after config and overrides
func (m *Module) Options() Options { return m.opts }

// Ports returns the module ports (Resolver)
func (m *Module) Ports() any { return m.ports }

// Name returns the module name
func (m *Module) Name() string { return "lookup" }

// MountRoutes returns no HTTP routes; the ops API mounts lookup itself
func (m *Module) MountRoutes(_ phttp.Router) {}
