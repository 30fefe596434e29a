package model

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

// Fundamentals are the valuation and balance-sheet figures reported with a quote.
// Providers that do not report them leave every field null.
type Fundamentals struct {
	Sector        string
	Industry      string
	PE            decimal.NullDecimal
	DividendYield decimal.NullDecimal // fraction, 0.0255 for 2.55 %

	EBIT               decimal.NullDecimal
	EnterpriseValue    decimal.NullDecimal
	CurrentAssets      decimal.NullDecimal
	CurrentLiabilities decimal.NullDecimal
	NetFixedAssets     decimal.NullDecimal
}

// Empty reports whether nothing at all was reported.
func (f Fundamentals) Empty() bool {
	return f.Sector == "" && f.Industry == "" && !f.PE.Valid && !f.DividendYield.Valid &&
		!f.EBIT.Valid && !f.EnterpriseValue.Valid && !f.CurrentAssets.Valid &&
		!f.CurrentLiabilities.Valid && !f.NetFixedAssets.Valid
}

// MagicFormula holds a row's combined earnings-yield and return-on-capital rank
// in each ranking universe. Lower is better; null means not ranked there.
type MagicFormula struct {
	Score   sql.NullInt64 // financial companies excluded
	All     sql.NullInt64 // every eligible row
	Min100M sql.NullInt64
	Min500M sql.NullInt64
	Min1B   sql.NullInt64
	Min5B   sql.NullInt64
	Reason  string
}
