package marketplace

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	perr "cardrelay/internal/platform/errors"

	dom "cardrelay/internal/services/lookup/domain"
)

// MetadataSource reads brand and supplier by identifier
type MetadataSource struct{ c *Client }

// Metadata returns the enrichment source
func (c *Client) Metadata() MetadataSource { return MetadataSource{c: c} }

type detailProduct struct {
	ID         int64  `json:"id"`
	Brand      string `json:"brand"`
	BrandID    int64  `json:"brandId"`
	Supplier   string `json:"supplier"`
	SupplierID int64  `json:"supplierId"`
}

// detail documents carry products under data (v2) or at the top level (v4)
type detailDoc struct {
	Data struct {
		Products []detailProduct `json:"products"`
	} `json:"data"`
	Products []detailProduct `json:"products"`
}

// Get fetches the detail document for id. ok is false when it holds no product
func (s MetadataSource) Get(ctx context.Context, id string) (dom.Metadata, bool, error) {
	body, status, err := s.c.Fetch(ctx, s.url(id))
	if err != nil {
		return dom.Metadata{}, false, err
	}
	if status == http.StatusNotFound {
		return dom.Metadata{}, false, nil
	}
	if status != http.StatusOK {
		return dom.Metadata{}, false, perr.Unavailablef("metadata status %d", status)
	}

	var doc detailDoc
	if err := json.Unmarshal(body, &doc); err != nil {
		return dom.Metadata{}, false, perr.Wrapf(err, perr.ErrorCodeMalformed, "metadata decode failed")
	}
	products := doc.Data.Products
	if len(products) == 0 {
		products = doc.Products
	}
	p, ok := pick(products, id)
	if !ok {
		return dom.Metadata{}, false, nil
	}
	return dom.Metadata{
		Brand:      p.Brand,
		BrandID:    p.BrandID,
		Supplier:   p.Supplier,
		SupplierID: p.SupplierID,
	}, true, nil
}

func (s MetadataSource) url(id string) string {
	if strings.Contains(s.c.opts.MetadataURL, "{id}") {
		return strings.ReplaceAll(s.c.opts.MetadataURL, "{id}", id)
	}
	return s.c.opts.MetadataURL + id
}

// pick prefers the product whose id matches, then a document without ids
func pick(products []detailProduct, id string) (detailProduct, bool) {
	if len(products) == 0 {
		return detailProduct{}, false
	}
	want, _ := strconv.ParseInt(id, 10, 64)
	anyIDs := false
	for _, p := range products {
		if p.ID == want {
			return p, true
		}
		anyIDs = anyIDs || p.ID != 0
	}
	if anyIDs {
		return detailProduct{}, false
	}
	return products[0], true
}
