package render

import (
	"bytes"
	"database/sql"
	"embed"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"

	"StockBoard/internal/calculator"
	"StockBoard/internal/model"

	"github.com/shopspring/decimal"
)

//go:embed templates/*.html
var templateFS embed.FS

const timeLayout = "2006-01-02 15:04:05 MST"

// Renderer turns quote rows into a self-contained static HTML page.
// Output depends only on its arguments, so identical input renders byte-identical HTML.
type Renderer struct {
	Title  string
	Locale string

	format numberFormat
	labels labels
	tmpl   *template.Template
}

// New parses the embedded templates. Locale is "sv" or "en".
func New(title, locale string) (*Renderer, error) {
	format := formatFor(locale)
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"pct": format.percent,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{
		Title:  title,
		Locale: locale,
		format: format,
		labels: labelsFor(locale),
		tmpl:   tmpl,
	}, nil
}

type cell struct {
	Text string
	Sort string
}

type pageRow struct {
	Symbol    string
	Name      string
	Search    string
	Failed    bool
	Error     string
	Direction string

	Price         cell
	Change        cell
	ChangePercent cell
	Volume        cell
	MarketCap     cell
	Category      string

	Sector        string
	PE            cell
	DividendYield cell
	Magic         magicCell
}

// magicCell carries every Magic Formula variant so the page can switch between them.
type magicCell struct {
	Reason  string
	Score   string
	All     string
	Min100M string
	Min500M string
	Min1B   string
	Min5B   string
}

type pageData struct {
	Title        string
	Lang         string
	Labels       labels
	Generated    string
	GeneratedISO string
	Summary      model.RunSummary
	Rows         []pageRow

	// HasFundamentals shows the sector, valuation and Magic Formula columns.
	HasFundamentals bool
}

// Render produces the quote table page for rows, in the order given.
func (r *Renderer) Render(rows []model.QuoteRow, generatedAt time.Time) (string, error) {
	data := pageData{
		Title:        r.Title,
		Lang:         r.Locale,
		Labels:       r.labels,
		Generated:    generatedAt.Format(timeLayout),
		GeneratedISO: generatedAt.Format(time.RFC3339),
		Rows:         make([]pageRow, 0, len(rows)),
	}
	calculator.Summarize(&data.Summary, rows)
	for _, row := range rows {
		data.Rows = append(data.Rows, r.viewRow(row))
		if row.OK() && !row.Fundamentals.Empty() {
			data.HasFundamentals = true
		}
	}
	return r.execute("page.html", data)
}

func (r *Renderer) viewRow(row model.QuoteRow) pageRow {
	v := pageRow{
		Symbol: row.Symbol,
		Name:   row.Name,
		Search: strings.ToLower(row.Symbol + " " + row.Name),
	}
	if !row.OK() {
		v.Failed = true
		v.Error = row.Error
		return v
	}

	f := r.format
	v.Price = cell{Text: f.decimal(row.Price, false), Sort: sortKey(row.Price)}
	v.Change = cell{Text: f.decimal(row.Change, true), Sort: sortKey(row.Change)}
	v.ChangePercent = cell{Text: f.decimal(row.ChangePercent, true), Sort: sortKey(row.ChangePercent)}
	v.MarketCap = cell{Text: f.wholeNumber(row.MarketCap), Sort: sortKey(row.MarketCap)}
	v.Category = calculator.MarketCapCategory(row.MarketCap)
	if row.Volume.Valid {
		v.Volume = cell{Text: f.count(row.Volume), Sort: strconv.FormatInt(row.Volume.Int64, 10)}
	}
	if v.ChangePercent.Text != "" {
		v.ChangePercent.Text += " %"
	}
	if row.Currency != "" && v.Price.Text != "" {
		v.Price.Text += " " + row.Currency
	}

	if row.ChangePercent.Valid {
		switch row.ChangePercent.Decimal.Sign() {
		case 1:
			v.Direction = "positive"
		case -1:
			v.Direction = "negative"
		}
	}

	fund := row.Fundamentals
	v.Sector = fund.Sector
	v.PE = cell{Text: f.decimal(fund.PE, false), Sort: sortKey(fund.PE)}
	if fund.DividendYield.Valid {
		pct := decimal.NewNullDecimal(fund.DividendYield.Decimal.Shift(2))
		v.DividendYield = cell{Text: f.decimal(pct, false) + " %", Sort: sortKey(pct)}
	}
	m := row.Magic
	v.Magic = magicCell{
		Reason:  m.Reason,
		Score:   rank(m.Score),
		All:     rank(m.All),
		Min100M: rank(m.Min100M),
		Min500M: rank(m.Min500M),
		Min1B:   rank(m.Min1B),
		Min5B:   rank(m.Min5B),
	}
	return v
}

func rank(n sql.NullInt64) string {
	if !n.Valid {
		return ""
	}
	return strconv.FormatInt(n.Int64, 10)
}

type historyData struct {
	Title     string
	Lang      string
	Labels    labels
	Generated string
	Runs      []historyRun
}

type historyRun struct {
	Anchor   string
	Date     string
	Duration string
	Summary  model.RunSummary
	Gainers  []model.Mover
	Losers   []model.Mover
}

// RenderHistory produces the companion page listing past runs, newest first as given.
func (r *Renderer) RenderHistory(runs []model.RunRecord, generatedAt time.Time) (string, error) {
	data := historyData{
		Title:     r.Title,
		Lang:      r.Locale,
		Labels:    r.labels,
		Generated: generatedAt.Format(timeLayout),
		Runs:      make([]historyRun, 0, len(runs)),
	}
	for i, run := range runs {
		data.Runs = append(data.Runs, historyRun{
			Anchor:   "run-" + strconv.Itoa(i+1),
			Date:     run.Summary.StartedAt.Format(timeLayout),
			Duration: run.Summary.Duration().Round(time.Second).String(),
			Summary:  run.Summary,
			Gainers:  run.Gainers,
			Losers:   run.Losers,
		})
	}
	return r.execute("history.html", data)
}

func (r *Renderer) execute(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
