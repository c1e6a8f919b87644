package scraper

import (
	"errors"

	"github.com/stilmark/fashion-scraper/internal/models"
)

var (
	ErrNoCanonicalImage = errors.New("no product-only image found")
	ErrNoTitle          = errors.New("no resolvable title")
	ErrFetchFailed      = errors.New("detail page fetch failed")
)

// Outcome is the terminal state of one product's extraction.
type Outcome int

const (
	// OutcomeOK carries a complete normalized product.
	OutcomeOK Outcome = iota
	// OutcomeDropped means the product was rejected by policy or could not
	// be fetched; expected during a scrape, never fatal.
	OutcomeDropped
	// OutcomeFailed marks an unexpected extraction error.
	OutcomeFailed
)

// Result makes the three terminal outcomes of extraction explicit at every
// call site instead of hiding skips inside broad error handling.
type Result struct {
	Outcome Outcome
	Product models.Product
	Reason  error
}

func Ok(p models.Product) Result {
	return Result{Outcome: OutcomeOK, Product: p}
}

func Dropped(reason error) Result {
	return Result{Outcome: OutcomeDropped, Reason: reason}
}

func Failed(err error) Result {
	return Result{Outcome: OutcomeFailed, Reason: err}
}
