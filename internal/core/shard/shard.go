// Package shard enumerates the mirror-shard locations a product card may live at.
//
// Cards are partitioned across mirror hosts by prefixes of the identifier:
// a volume prefix and a longer part prefix. No index service exists, so the
// resolver walks every (mirror, variant) pair in a fixed order until one answers.
package shard

import (
	"fmt"
	"strings"
)

// Variants is the number of prefix precisions tried per mirror
const Variants = 3

// prefix lengths per variant, indexed by variant-1
var (
	volumeDigits = [Variants]int{2, 3, 4}
	partDigits   = [Variants]int{4, 5, 6}
)

// DefaultHosts returns the 18 public basket mirrors in their canonical order
func DefaultHosts() []string {
	out := make([]string, 18)
	for i := range out {
		out[i] = fmt.Sprintf("basket-%02d.wbbasket.ru", i+1)
	}
	return out
}

// Affinity is the (mirror, volume, part) triple of the candidate that produced a card.
// Every shard-scoped lookup for that card is built from it
type Affinity struct {
	MirrorIndex int    `json:"mirror_index"`
	Host        string `json:"host"`
	Volume      string `json:"volume"`
	Part        string `json:"part"`
}

// Candidate is one (mirror, variant) location to probe
type Candidate struct {
	MirrorIndex int    `json:"mirror_index"` // 1-based, configured order
	Variant     int    `json:"variant"`      // 1..3
	Host        string `json:"host"`
	Volume      string `json:"volume"`
	Part        string `json:"part"`
	URL         string `json:"url"`
}

// Affinity returns the triple future lookups must reuse once c succeeds
func (c Candidate) Affinity() Affinity {
	return Affinity{MirrorIndex: c.MirrorIndex, Host: c.Host, Volume: c.Volume, Part: c.Part}
}

// Before reports whether c is ordered ahead of o (mirror, then variant)
func (c Candidate) Before(o Candidate) bool {
	if c.MirrorIndex != o.MirrorIndex {
		return c.MirrorIndex < o.MirrorIndex
	}
	return c.Variant < o.Variant
}

// Generate returns len(hosts)*Variants candidates, mirror-major then variant ascending.
// Prefixes longer than id collapse to the whole id
func Generate(id string, hosts []string) []Candidate {
	out := make([]Candidate, 0, len(hosts)*Variants)
	for i, host := range hosts {
		for v := range Variants {
			vol := prefix(id, volumeDigits[v])
			part := prefix(id, partDigits[v])
			a := Affinity{MirrorIndex: i + 1, Host: host, Volume: vol, Part: part}
			out = append(out, Candidate{
				MirrorIndex: i + 1,
				Variant:     v + 1,
				Host:        host,
				Volume:      vol,
				Part:        part,
				URL:         a.CardURL(id),
			})
		}
	}
	return out
}

func prefix(id string, n int) string {
	if len(id) <= n {
		return id
	}
	return id[:n]
}

// Base returns the product directory on the mirror, without a trailing slash.
// A host that already carries a scheme is used as is
func (a Affinity) Base(id string) string {
	host := strings.TrimRight(a.Host, "/")
	if !strings.Contains(host, "://") {
		host = "https://" + host
	}
	return fmt.Sprintf("%s/vol%s/part%s/%s", host, a.Volume, a.Part, id)
}

// CardURL is the card document location
func (a Affinity) CardURL(id string) string { return a.Base(id) + "/info/ru/card.json" }

// ImageURL is the first large product image; ext is "jpg" or "webp"
func (a Affinity) ImageURL(id, ext string) string {
	if ext == "" {
		ext = "jpg"
	}
	return a.Base(id) + "/images/big/1." + ext
}

// PriceHistoryURL is the price history document location
func (a Affinity) PriceHistoryURL(id string) string { return a.Base(id) + "/info/price-history.json" }
