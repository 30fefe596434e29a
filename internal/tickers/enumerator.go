package tickers

import (
	"context"
	"log"
	"strings"

	"StockBoard/internal/model"
)

// Enumerator produces the list of symbols to quote.
type Enumerator struct {
	Source   IndexSource
	Indices  []string
	Fallback []model.Ticker
}

// NewEnumerator creates an enumerator over the given indices with the built-in fallback list.
func NewEnumerator(src IndexSource, indices []string) *Enumerator {
	return &Enumerator{Source: src, Indices: indices, Fallback: FallbackTickers}
}

// Enumerate returns the deduplicated constituents of all indices in index order.
// If any index cannot be read, or nothing is left after filtering, the fallback
// list is returned unchanged. The result is never empty.
func (e *Enumerator) Enumerate(ctx context.Context) []model.Ticker {
	if e.Source == nil || len(e.Indices) == 0 {
		log.Println("[WARN] no index source configured, using fallback tickers")
		return e.fallback()
	}

	var all []model.Ticker
	seen := make(map[string]bool)
	for _, index := range e.Indices {
		list, err := e.Source.Constituents(ctx, index)
		if err != nil {
			log.Printf("[WARN] %s index source failed for %q, using fallback tickers: %v", e.Source.Name(), index, err)
			return e.fallback()
		}
		log.Printf("[INFO] index %q: %d constituents", index, len(list))
		for _, t := range list {
			key := strings.ToUpper(t.Symbol)
			if seen[key] {
				continue
			}
			seen[key] = true
			all = append(all, t)
		}
	}

	filtered := DropRedundantBShares(all)
	if removed := len(all) - len(filtered); removed > 0 {
		log.Printf("[INFO] filtered out %d B shares with a listed A share", removed)
	}
	if len(filtered) == 0 {
		log.Println("[WARN] index sources returned no tickers, using fallback tickers")
		return e.fallback()
	}
	return filtered
}

func (e *Enumerator) fallback() []model.Ticker {
	list := e.Fallback
	if len(list) == 0 {
		list = FallbackTickers
	}
	out := make([]model.Ticker, len(list))
	copy(out, list)
	return out
}

// DropRedundantBShares removes B shares whose A share is also listed.
// B shares without an A counterpart are kept.
func DropRedundantBShares(list []model.Ticker) []model.Ticker {
	aShares := make(map[string]bool)
	for _, t := range list {
		if base, class := shareClass(t.Symbol); class == "A" {
			aShares[base] = true
		}
	}
	out := make([]model.Ticker, 0, len(list))
	for _, t := range list {
		if base, class := shareClass(t.Symbol); class == "B" && aShares[base] {
			continue
		}
		out = append(out, t)
	}
	return out
}

// shareClass splits "VOLV.B" or "VOLV-B" into ("VOLV", "B").
func shareClass(symbol string) (base, class string) {
	s := strings.ToUpper(symbol)
	i := strings.LastIndexAny(s, ".-")
	if i <= 0 || i == len(s)-1 {
		return s, ""
	}
	return s[:i], s[i+1:]
}
