package marketplace

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"cardrelay/internal/core/shard"
	perr "cardrelay/internal/platform/errors"

	dom "cardrelay/internal/services/lookup/domain"
)

// HistorySource reads the price history stored next to a card on its shard
type HistorySource struct{ c *Client }

// PriceHistory returns the price history source
func (c *Client) PriceHistory() HistorySource { return HistorySource{c: c} }

type historyPoint struct {
	DT    int64            `json:"dt"`
	Price map[string]int64 `json:"price"`
}

// Get fetches and decodes the history for id. A 404 means the product has none
func (s HistorySource) Get(ctx context.Context, id string, at shard.Affinity) ([]dom.PriceRecord, bool, error) {
	body, status, err := s.c.Fetch(ctx, at.PriceHistoryURL(id))
	if err != nil {
		return nil, false, err
	}
	if status == http.StatusNotFound {
		return nil, false, nil
	}
	if status != http.StatusOK {
		return nil, false, perr.Unavailablef("price history status %d", status)
	}

	var points []historyPoint
	if err := json.Unmarshal(body, &points); err != nil {
		return nil, false, perr.Wrapf(err, perr.ErrorCodeMalformed, "price history decode failed")
	}
	cur := s.c.opts.Currency
	out := make([]dom.PriceRecord, 0, len(points))
	for _, p := range points {
		amt, ok := p.Price[cur]
		if !ok {
			continue
		}
		out = append(out, dom.PriceRecord{Timestamp: time.Unix(p.DT, 0).UTC(), Amount: amt})
	}
	return out, true, nil
}
