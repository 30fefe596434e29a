package model

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Ticker is one constituent returned by the enumerator.
type Ticker struct {
	Symbol string `json:"ticker"`
	Name   string `json:"name"`
}

// Quote is the raw result of a single provider query.
// Zero values mean the provider did not report the field.
type Quote struct {
	Symbol        string
	Name          string
	Currency      string
	Price         float64
	PreviousClose float64
	Change        float64
	ChangePercent float64
	HasChange     bool // Change/ChangePercent were reported directly
	Volume        int64
	MarketCap     float64

	Fundamentals *Fundamentals // nil when the provider reports none
}

// QuoteStatus tags a row as fetched or failed.
type QuoteStatus string

const (
	StatusSuccess QuoteStatus = "success"
	StatusError   QuoteStatus = "error"
)

// QuoteRow is one symbol's data for a single generation run.
type QuoteRow struct {
	Symbol        string
	Name          string
	Currency      string
	Price         decimal.NullDecimal
	Change        decimal.NullDecimal
	ChangePercent decimal.NullDecimal
	Volume        sql.NullInt64
	MarketCap     decimal.NullDecimal
	Fundamentals  Fundamentals
	Magic         MagicFormula
	Status        QuoteStatus
	Error         string
	FetchedAt     time.Time
}

// OK reports whether the row holds fetched data.
func (r QuoteRow) OK() bool { return r.Status == StatusSuccess }

// ErrorRow builds a failed row. Numeric fields stay null.
func ErrorRow(t Ticker, err error, at time.Time) QuoteRow {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return QuoteRow{
		Symbol:    t.Symbol,
		Name:      t.Name,
		Status:    StatusError,
		Error:     msg,
		FetchedAt: at,
	}
}
