package calculator

import (
	"sort"

	"StockBoard/internal/model"
)

// Summarize counts the outcome of a run's rows into s. Successful rows without
// a reported change count as succeeded but take no part in the breadth figures.
func Summarize(s *model.RunSummary, rows []model.QuoteRow) {
	s.Total = len(rows)
	s.Succeeded, s.Failed = 0, 0
	s.Advancers, s.Decliners, s.Unchanged = 0, 0, 0
	for _, r := range rows {
		if !r.OK() {
			s.Failed++
			continue
		}
		s.Succeeded++
		if !r.ChangePercent.Valid {
			continue
		}
		switch r.ChangePercent.Decimal.Sign() {
		case 1:
			s.Advancers++
		case -1:
			s.Decliners++
		default:
			s.Unchanged++
		}
	}
}

// TopMovers returns up to n gainers (best first) and n losers (worst first).
// Only successful rows with a reported percent change take part.
func TopMovers(rows []model.QuoteRow, n int) (gainers, losers []model.Mover) {
	if n <= 0 {
		return nil, nil
	}
	var movers []model.Mover
	for _, r := range rows {
		if !r.OK() || !r.ChangePercent.Valid {
			continue
		}
		pct, _ := r.ChangePercent.Decimal.Float64()
		movers = append(movers, model.Mover{Symbol: r.Symbol, Name: r.Name, ChangePercent: pct})
	}
	sort.SliceStable(movers, func(i, j int) bool {
		if movers[i].ChangePercent != movers[j].ChangePercent {
			return movers[i].ChangePercent > movers[j].ChangePercent
		}
		return movers[i].Symbol < movers[j].Symbol
	})

	for _, m := range movers {
		if len(gainers) == n || m.ChangePercent <= 0 {
			break
		}
		gainers = append(gainers, m)
	}
	for i := len(movers) - 1; i >= 0; i-- {
		if len(losers) == n || movers[i].ChangePercent >= 0 {
			break
		}
		losers = append(losers, movers[i])
	}
	return gainers, losers
}
