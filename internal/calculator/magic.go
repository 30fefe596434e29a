package calculator

import (
	"database/sql"
	"sort"
	"strings"

	"StockBoard/internal/model"

	"github.com/shopspring/decimal"
)

// Reasons attached to model.MagicFormula.
const (
	MagicRanked           = "Ranked"
	MagicFailedRow        = "Error fetching data"
	MagicMissingEBIT      = "Missing EBIT"
	MagicMissingEV        = "Missing Enterprise Value"
	MagicMissingFixed     = "Missing Net Fixed Assets"
	MagicMissingCurAssets = "Missing Current Assets"
	MagicMissingCurLiab   = "Missing Current Liabilities"
	MagicNegativeEBIT     = "Negative EBIT (losses)"
	MagicNonPositiveEY    = "Negative/zero Earnings Yield"
	MagicNonPositiveROC   = "Negative/zero Return on Capital"
	MagicFinancial        = "Financial company, excluded by default"
)

// magicCurrency is the only reporting currency ranked. Rows without a currency are assumed to use it.
const magicCurrency = "SEK"

type magicUniverse struct {
	minCap            decimal.Decimal // zero means no floor
	excludeFinancials bool
	score             func(*model.MagicFormula) *sql.NullInt64
}

var magicUniverses = []magicUniverse{
	{excludeFinancials: false, score: func(m *model.MagicFormula) *sql.NullInt64 { return &m.All }},
	{excludeFinancials: true, score: func(m *model.MagicFormula) *sql.NullInt64 { return &m.Score }},
	{minCap: decimal.New(100, 6), excludeFinancials: true, score: func(m *model.MagicFormula) *sql.NullInt64 { return &m.Min100M }},
	{minCap: decimal.New(500, 6), excludeFinancials: true, score: func(m *model.MagicFormula) *sql.NullInt64 { return &m.Min500M }},
	{minCap: decimal.New(1, 9), excludeFinancials: true, score: func(m *model.MagicFormula) *sql.NullInt64 { return &m.Min1B }},
	{minCap: decimal.New(5, 9), excludeFinancials: true, score: func(m *model.MagicFormula) *sql.NullInt64 { return &m.Min5B }},
}

type magicCandidate struct {
	index   int
	ey, roc decimal.Decimal
	eyRank  int
	rocRank int
}

// EarningsYieldAndROC computes EBIT/EV and EBIT/(net fixed assets + current assets - current liabilities).
// A non-positive denominator yields zero, as does a missing input; reason names the first gap.
func EarningsYieldAndROC(r model.QuoteRow) (ey, roc decimal.Decimal, reason string) {
	f := r.Fundamentals
	switch {
	case !r.OK():
		return ey, roc, MagicFailedRow
	case r.Currency != "" && r.Currency != magicCurrency:
		return ey, roc, "Currency is " + r.Currency + ", only " + magicCurrency + " is ranked"
	case !f.EBIT.Valid:
		return ey, roc, MagicMissingEBIT
	case !f.EnterpriseValue.Valid:
		return ey, roc, MagicMissingEV
	case !f.NetFixedAssets.Valid:
		return ey, roc, MagicMissingFixed
	case !f.CurrentAssets.Valid:
		return ey, roc, MagicMissingCurAssets
	case !f.CurrentLiabilities.Valid:
		return ey, roc, MagicMissingCurLiab
	}

	ebit := f.EBIT.Decimal
	if ev := f.EnterpriseValue.Decimal; ev.IsPositive() {
		ey = ebit.Div(ev)
	}
	capital := f.NetFixedAssets.Decimal.Add(f.CurrentAssets.Decimal).Sub(f.CurrentLiabilities.Decimal)
	if capital.IsPositive() {
		roc = ebit.Div(capital)
	}

	switch {
	case ey.IsPositive() && roc.IsPositive():
		return ey, roc, MagicRanked
	case ebit.IsNegative():
		return ey, roc, MagicNegativeEBIT
	case !ey.IsPositive():
		return ey, roc, MagicNonPositiveEY
	default:
		return ey, roc, MagicNonPositiveROC
	}
}

// IsFinancialCompany reports whether a row belongs to the banks, investment
// companies and real estate excluded from the default ranking.
func IsFinancialCompany(r model.QuoteRow) bool {
	sector := strings.ToLower(r.Fundamentals.Sector)
	industry := strings.ToLower(r.Fundamentals.Industry)
	name := strings.ToLower(r.Name)

	if strings.Contains(sector, "financial") || strings.Contains(sector, "real estate") || strings.Contains(industry, "real estate") {
		return true
	}
	if strings.Contains(industry, "investment") || strings.Contains(industry, "asset management") {
		return true
	}
	for _, kw := range []string{"investment", "investor", "holding", "equity"} {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}

// RankMagicFormula fills rows[i].Magic. In each universe eligible rows are ranked
// by earnings yield and by return on capital (1 = highest); the score is the sum
// of both ranks. Ties keep input order.
func RankMagicFormula(rows []model.QuoteRow) {
	eligible := make([]magicCandidate, 0, len(rows))
	for i := range rows {
		ey, roc, reason := EarningsYieldAndROC(rows[i])
		rows[i].Magic = model.MagicFormula{Reason: reason}
		if reason == MagicRanked {
			eligible = append(eligible, magicCandidate{index: i, ey: ey, roc: roc})
		}
	}

	for _, u := range magicUniverses {
		var set []magicCandidate
		for _, c := range eligible {
			r := rows[c.index]
			if u.excludeFinancials && IsFinancialCompany(r) {
				continue
			}
			if !u.minCap.IsZero() && (!r.MarketCap.Valid || r.MarketCap.Decimal.LessThan(u.minCap)) {
				continue
			}
			set = append(set, c)
		}
		rankCandidates(set)
		for _, c := range set {
			*u.score(&rows[c.index].Magic) = sql.NullInt64{Int64: int64(c.eyRank + c.rocRank), Valid: true}
		}
	}

	for i := range rows {
		if rows[i].Magic.Reason == MagicRanked && !rows[i].Magic.Score.Valid {
			rows[i].Magic.Reason = MagicFinancial
		}
	}
}

func rankCandidates(set []magicCandidate) {
	sort.SliceStable(set, func(i, j int) bool { return set[i].ey.GreaterThan(set[j].ey) })
	for i := range set {
		set[i].eyRank = i + 1
	}
	sort.SliceStable(set, func(i, j int) bool { return set[i].roc.GreaterThan(set[j].roc) })
	for i := range set {
		set[i].rocRank = i + 1
	}
}
