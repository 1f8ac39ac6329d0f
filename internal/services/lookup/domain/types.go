// Package domain defines the identifier resolver types and ports
package domain

import (
	"time"

	"cardrelay/internal/core/pricing"
	"cardrelay/internal/core/shard"
)

// OutcomeKind classifies a single candidate probe
type OutcomeKind int

const (
	// OutcomeSuccess is a 200 response carrying a decodable card document
	OutcomeSuccess OutcomeKind = iota
	// OutcomeNotFound is any non-200 response
	OutcomeNotFound
	// OutcomeMalformed is a 200 response whose body is not a card document
	OutcomeMalformed
	// OutcomeNetworkFailure is a transport error or timeout
	OutcomeNetworkFailure
)

var outcomeNames = [...]string{"success", "not_found", "malformed", "network_failure"}

func (k OutcomeKind) String() string {
	if int(k) >= 0 && int(k) < len(outcomeNames) {
		return outcomeNames[k]
	}
	return "unknown"
}

// CardDocument is the subset of the mirror card document the resolver reads
type CardDocument struct {
	ImtName      string `json:"imt_name"`
	SubjName     string `json:"subj_name"`
	SubjRootName string `json:"subj_root_name"`
	NmID         int64  `json:"nm_id,omitempty"`
}

// ProbeOutcome is the classified result of one probe. Doc is set only on success
type ProbeOutcome struct {
	Candidate shard.Candidate
	Kind      OutcomeKind
	Status    int
	Payload   []byte
	Doc       *CardDocument
	Latency   time.Duration
	Err       error
}

// Metadata is the enrichment fetched by identifier alone
type Metadata struct {
	Brand      string `json:"brand,omitempty"`
	BrandID    int64  `json:"brand_id,omitempty"`
	Supplier   string `json:"supplier,omitempty"`
	SupplierID int64  `json:"supplier_id,omitempty"`
}

// ProductCard is the resolved product. Affinity is the winning candidate's shard
// and every follow-up lookup for the product goes through it
type ProductCard struct {
	DisplayName string         `json:"display_name"`
	Category    string         `json:"category"`
	Subcategory string         `json:"subcategory"`
	Brand       string         `json:"brand,omitempty"`
	BrandID     int64          `json:"brand_id,omitempty"`
	Supplier    string         `json:"supplier,omitempty"`
	SupplierID  int64          `json:"supplier_id,omitempty"`
	ImageURL    string         `json:"image_url"`
	Affinity    shard.Affinity `json:"affinity"`
}

// PriceRecord is one point from the price history source
type PriceRecord = pricing.Record

// PriceWindowEntry is one formatted line of the price window
type PriceWindowEntry = pricing.Entry

// ResolutionResult is the outcome of resolving one identifier.
// Identifier is set on failure too; the result is resolved iff Err is nil
type ResolutionResult struct {
	Identifier string             `json:"identifier"`
	Card       *ProductCard       `json:"card,omitempty"`
	History    []PriceWindowEntry `json:"history,omitempty"`
	Probed     int                `json:"probed"`
	Err        error              `json:"-"`
}

// Resolved reports whether a card was found
func (r ResolutionResult) Resolved() bool { return r.Err == nil }
