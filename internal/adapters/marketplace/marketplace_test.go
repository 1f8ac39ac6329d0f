package marketplace

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"cardrelay/internal/core/shard"
	perr "cardrelay/internal/platform/errors"
)

func TestFetch_StatusAndBody(t *testing.T) {
	var ua atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua.Store(r.Header.Get("User-Agent"))
		if strings.HasSuffix(r.URL.Path, "/miss") {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"imt_name":"x"}`))
	}))
	defer srv.Close()

	c := NewClient(Options{UserAgent: "relay-test"})
	body, status, err := c.Cards().Get(context.Background(), srv.URL+"/hit")
	if err != nil || status != 200 || string(body) != `{"imt_name":"x"}` {
		t.Fatalf("hit = %q %d %v", body, status, err)
	}
	if ua.Load() != "relay-test" {
		t.Fatalf("user agent = %v", ua.Load())
	}

	body, status, err = c.Fetch(context.Background(), srv.URL+"/miss")
	if err != nil || status != 404 || body != nil {
		t.Fatalf("miss = %q %d %v", body, status, err)
	}
}

func TestFetch_TransportErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	c := NewClient(Options{})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, _, err := c.Fetch(ctx, srv.URL)
	if !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("err = %v, want unavailable", err)
	}
}

func TestMetadata_PicksMatchingProduct(t *testing.T) {
	var gotQuery atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery.Store(r.URL.RawQuery)
		_, _ = w.Write([]byte(`{"data":{"products":[
			{"id":1,"brand":"Other","brandId":1},
			{"id":123456,"brand":"Acme","brandId":77,"supplier":"ООО Ромашка","supplierId":42}
		]}}`))
	}))
	defer srv.Close()

	c := NewClient(Options{MetadataURL: srv.URL + "/cards/v2/detail?dest=0&nm={id}"})
	meta, ok, err := c.Metadata().Get(context.Background(), "123456")
	if err != nil || !ok {
		t.Fatalf("Get = %v %v", ok, err)
	}
	if meta.Brand != "Acme" || meta.BrandID != 77 || meta.Supplier != "ООО Ромашка" || meta.SupplierID != 42 {
		t.Fatalf("meta = %+v", meta)
	}
	if gotQuery.Load() != "dest=0&nm=123456" {
		t.Fatalf("query = %v", gotQuery.Load())
	}
}

func TestMetadata_Shapes(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		status int
		ok     bool
		brand  string
		code   perr.ErrorCode
	}{
		{"top level products without ids", `{"products":[{"brand":"TopLevel"}]}`, 200, true, "TopLevel", 0},
		{"no products", `{"data":{"products":[]}}`, 200, false, "", 0},
		{"ids that do not match", `{"data":{"products":[{"id":9,"brand":"Nope"}]}}`, 200, false, "", 0},
		{"not found", ``, 404, false, "", 0},
		{"server error", ``, 503, false, "", perr.ErrorCodeUnavailable},
		{"garbage", `<html>`, 200, false, "", perr.ErrorCodeMalformed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			c := NewClient(Options{MetadataURL: srv.URL + "/detail?nm="})
			meta, ok, err := c.Metadata().Get(context.Background(), "123456")
			if tc.code != 0 {
				if !perr.IsCode(err, tc.code) {
					t.Fatalf("err = %v, want %v", err, tc.code)
				}
				return
			}
			if err != nil || ok != tc.ok || meta.Brand != tc.brand {
				t.Fatalf("got %+v ok=%v err=%v", meta, ok, err)
			}
		})
	}
}

func TestHistory_UsesAffinityAndCurrency(t *testing.T) {
	var path atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path.Store(r.URL.Path)
		_, _ = w.Write([]byte(`[
			{"dt":1709251200,"price":{"RUB":100000,"USD":1100}},
			{"dt":1711929600,"price":{"USD":1000}},
			{"dt":1714521600,"price":{"RUB":57231}}
		]`))
	}))
	defer srv.Close()

	at := shard.Affinity{MirrorIndex: 2, Host: srv.URL, Volume: "123", Part: "12345"}
	recs, ok, err := NewClient(Options{}).PriceHistory().Get(context.Background(), "123456", at)
	if err != nil || !ok {
		t.Fatalf("Get = %v %v", ok, err)
	}
	if path.Load() != "/vol123/part12345/123456/info/price-history.json" {
		t.Fatalf("path = %v", path.Load())
	}
	if len(recs) != 2 || recs[0].Amount != 100000 || recs[1].Amount != 57231 {
		t.Fatalf("records = %+v", recs)
	}
	if !recs[1].Timestamp.Equal(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("timestamp = %v", recs[1].Timestamp)
	}
}

func TestHistory_MissingAndMalformed(t *testing.T) {
	miss := httptest.NewServer(http.NotFoundHandler())
	defer miss.Close()
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not":"a list"}`))
	}))
	defer bad.Close()

	c := NewClient(Options{}).PriceHistory()
	if recs, ok, err := c.Get(context.Background(), "123456", shard.Affinity{Host: miss.URL}); err != nil || ok || recs != nil {
		t.Fatalf("missing = %v %v %v", recs, ok, err)
	}
	if _, _, err := c.Get(context.Background(), "123456", shard.Affinity{Host: bad.URL}); !perr.IsCode(err, perr.ErrorCodeMalformed) {
		t.Fatalf("malformed err = %v", err)
	}
}
