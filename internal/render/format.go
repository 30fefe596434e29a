package render

import (
	"database/sql"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// numberFormat holds go-humanize format directives for one locale.
type numberFormat struct {
	fixed   string // two decimals
	signed  string // two decimals with explicit plus sign
	integer string // thousands separators, no decimals
}

var numberFormats = map[string]numberFormat{
	"sv": {fixed: "# ###,##", signed: "+# ###,##", integer: "# ###,"},
	"en": {fixed: "#,###.##", signed: "+#,###.##", integer: "#,###."},
}

func formatFor(locale string) numberFormat {
	if f, ok := numberFormats[locale]; ok {
		return f
	}
	return numberFormats["sv"]
}

func (f numberFormat) decimal(d decimal.NullDecimal, signed bool) string {
	if !d.Valid {
		return ""
	}
	format := f.fixed
	if signed {
		format = f.signed
	}
	return humanize.FormatFloat(format, d.Decimal.InexactFloat64())
}

// percent formats a change in percent with an explicit sign, as used by the mover lists.
func (f numberFormat) percent(v float64) string {
	return humanize.FormatFloat(f.signed, v) + " %"
}

func (f numberFormat) wholeNumber(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return humanize.FormatFloat(f.integer, d.Decimal.Round(0).InexactFloat64())
}

func (f numberFormat) count(n sql.NullInt64) string {
	if !n.Valid {
		return ""
	}
	return humanize.FormatInteger(f.integer, int(n.Int64))
}

// sortKey is the machine-readable value the client-side sorter compares.
func sortKey(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}
