package marketplace

import "context"

// CardSource serves candidate card documents by URL
type CardSource struct{ c *Client }

// Cards returns the card document source
func (c *Client) Cards() CardSource { return CardSource{c: c} }

// Get fetches one candidate URL
func (s CardSource) Get(ctx context.Context, url string) ([]byte, int, error) {
	return s.c.Fetch(ctx, url)
}
