package module

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"cardrelay/internal/core/pricing"
	"cardrelay/internal/core/shard"
	"cardrelay/internal/modkit"
	mod "cardrelay/internal/modkit/module"
	"cardrelay/internal/platform/config"
	perr "cardrelay/internal/platform/errors"
	"cardrelay/internal/platform/logger"

	dom "cardrelay/internal/services/lookup/domain"
)

func TestFromConfig_Defaults(t *testing.T) {
	o := FromConfig(config.New())
	if len(o.Mirrors) != 18 || o.Mirrors[0] != "basket-01.wbbasket.ru" {
		t.Fatalf("mirrors = %v", o.Mirrors)
	}
	if o.ProbeTimeout != 2*time.Second || o.Band != 1 || o.ImageExt != "jpg" {
		t.Fatalf("probe defaults = %+v", o)
	}
	if o.Order != pricing.OrderReverse || o.WindowMonths != 3 || o.Currency != "RUB" {
		t.Fatalf("price defaults = %+v", o)
	}
}

func TestFromConfig_Env(t *testing.T) {
	t.Setenv("MARKET_MIRRORS", "a.example, b.example")
	t.Setenv("MARKET_PROBE_BAND", "3")
	t.Setenv("MARKET_PRICE_ORDER", "SOURCE")
	t.Setenv("MARKET_IMAGE_EXT", "webp")
	o := FromConfig(config.New())
	if len(o.Mirrors) != 2 || o.Band != 3 || o.Order != pricing.OrderSource || o.ImageExt != "webp" {
		t.Fatalf("options = %+v", o)
	}
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "mirrors.yaml")
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func TestLoadMirrors(t *testing.T) {
	got, err := LoadMirrors(writeFile(t, "mirrors:\n  - basket-01.wbbasket.ru\n  - 127.0.0.1:8080\n  - http://localhost:9000\n"))
	if err != nil || len(got) != 3 || got[1] != "127.0.0.1:8080" {
		t.Fatalf("LoadMirrors = %v, %v", got, err)
	}

	cases := map[string]string{
		"empty list":  "mirrors: []\n",
		"bad host":    "mirrors:\n  - \"not a host!\"\n",
		"not yaml":    "mirrors: [unclosed\n",
		"missing key": "hosts:\n  - a.example\n",
	}
	for name, body := range cases {
		if _, err := LoadMirrors(writeFile(t, body)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
	if _, err := LoadMirrors(filepath.Join(t.TempDir(), "nope.yaml")); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("missing file err = %v", err)
	}
}

func TestValidateMirrors(t *testing.T) {
	if err := ValidateMirrors(shard.DefaultHosts()); err != nil {
		t.Fatalf("default mirrors rejected: %v", err)
	}
	if err := ValidateMirrors([]string{"basket-01.wbbasket.ru", "127.0.0.1:8080", "http://localhost:9000"}); err != nil {
		t.Fatalf("mixed mirrors rejected: %v", err)
	}

	t.Setenv("MARKET_MIRRORS", "basket-01.wbbasket.ru, not a host!")
	bad := FromConfig(config.New()).Mirrors
	if err := ValidateMirrors(bad); !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("ValidateMirrors(%v) = %v, want validation error", bad, err)
	}
	if err := ValidateMirrors(nil); !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("empty list err = %v", err)
	}
}

func TestNew_WiresResolverAgainstMirrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/vol12/part1234/123456/info/ru/card.json":
			_, _ = w.Write([]byte(`{"imt_name":"Куртка","subj_name":"Куртки","subj_root_name":"Одежда"}`))
		case strings.HasPrefix(r.URL.Path, "/detail"):
			_, _ = w.Write([]byte(`{"data":{"products":[{"id":123456,"brand":"Acme"}]}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	m := New(modkit.Deps{Log: logger.Nop(), Cfg: config.New()}, Options{
		Mirrors:     []string{srv.URL},
		MetadataURL: srv.URL + "/detail?nm={id}",
	})
	if m.Name() != "lookup" {
		t.Fatalf("name = %s", m.Name())
	}
	res := mod.MustPortsOf[dom.ResolverPort](m).Resolve(context.Background(), "123456")
	if !res.Resolved() {
		t.Fatalf("resolve: %v", res.Err)
	}
	if res.Card.DisplayName != "Куртка" || res.Card.Brand != "Acme" {
		t.Fatalf("card = %+v", res.Card)
	}
	if !pricing.IsNoHistory(res.History) {
		t.Fatalf("history = %+v", res.History)
	}
}

func TestNew_MirrorsFile(t *testing.T) {
	p := writeFile(t, "mirrors:\n  - one.example\n  - two.example\n")
	m := New(modkit.Deps{Log: logger.Nop(), Cfg: config.New()}, Options{MirrorsFile: p})
	if got := m.Options().Mirrors; len(got) != 2 || got[1] != "two.example" {
		t.Fatalf("mirrors = %v", got)
	}
}
