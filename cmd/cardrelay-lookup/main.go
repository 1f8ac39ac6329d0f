// Command cardrelay-lookup resolves identifiers once and prints one JSON line per result
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"cardrelay/internal/modkit"
	"cardrelay/internal/modkit/module"
	"cardrelay/internal/platform/config"
	perr "cardrelay/internal/platform/errors"
	"cardrelay/internal/platform/logger"
	"cardrelay/internal/platform/metrics"

	lookupdom "cardrelay/internal/services/lookup/domain"
	lookupmod "cardrelay/internal/services/lookup/module"

	"github.com/joho/godotenv"
)

// line is one output record
type line struct {
	lookupdom.ResolutionResult
	Code  string `json:"code,omitempty"`
	Error string `json:"error,omitempty"`
}

func main() {
	_ = godotenv.Load()

	var (
		fIDs     = flag.String("id", "", "comma-separated identifiers (positional args are accepted too)")
		fBand    = flag.Int("band", 0, "candidates probed concurrently (default from MARKET_PROBE_BAND)")
		fTimeout = flag.Duration("timeout", 0, "per-probe timeout (default from MARKET_PROBE_TIMEOUT)")
	)
	flag.Parse()

	ids := idsFrom(*fIDs, flag.Args())
	if len(ids) == 0 {
		fmt.Fprintln(os.Stderr, "usage: cardrelay-lookup -id 123456[,7654321] [-band 3] [-timeout 2s]")
		os.Exit(2)
	}

	l := logger.Get()
	deps := modkit.Deps{Log: *l, Cfg: config.New(), Metrics: metrics.New(nil)}
	lookup := lookupmod.New(deps, lookupmod.Options{Band: *fBand, ProbeTimeout: *fTimeout})
	resolver := module.MustPortsOf[lookupdom.ResolverPort](lookup)

	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	failed := 0
	for _, id := range ids {
		res := resolver.Resolve(context.Background(), id)
		out := line{ResolutionResult: res}
		if res.Err != nil {
			failed++
			out.Code = perr.CodeOf(res.Err).String()
			out.Error = res.Err.Error()
		}
		if err := enc.Encode(out); err != nil {
			l.Fatal().Err(err).Msg("write result")
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func idsFrom(csv string, args []string) []string {
	var out []string
	for _, s := range append(strings.Split(csv, ","), args...) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
