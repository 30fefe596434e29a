package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"StockBoard/internal/model"

	"github.com/shopspring/decimal"
)

// summaryModules is everything the page and the Magic Formula ranking need,
// requested in one quoteSummary call.
const summaryModules = "price,summaryDetail,defaultKeyStatistics,incomeStatementHistory,balanceSheetHistory,assetProfile"

// YahooSummaryFetcher implements Fetcher using the Yahoo Finance v10
// quoteSummary API. One query returns the quote together with the income
// statement and balance sheet figures.
type YahooSummaryFetcher struct {
	Client *http.Client
}

// NewYahooSummaryFetcher creates a quoteSummary fetcher with optional proxy support.
func NewYahooSummaryFetcher(proxyURL string) *YahooSummaryFetcher {
	return newYahooSummaryFetcher(newTransport(proxyURL))
}

func newYahooSummaryFetcher(base http.RoundTripper) *YahooSummaryFetcher {
	return &YahooSummaryFetcher{Client: newYahooSessionClient(base)}
}

func (f *YahooSummaryFetcher) Name() string { return "yahoo-summary" }

// yahooValue is Yahoo's {"raw": 1.5, "fmt": "1.50"} wrapper. Missing values
// arrive as {} and leave Raw nil.
type yahooValue struct {
	Raw *float64 `json:"raw"`
}

func (v yahooValue) float() float64 {
	if v.Raw == nil {
		return 0
	}
	return *v.Raw
}

func (v yahooValue) decimal() decimal.NullDecimal {
	if v.Raw == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimal.NewFromFloat(*v.Raw))
}

type yahooSummary struct {
	QuoteSummary struct {
		Result []struct {
			Price struct {
				LongName                   string     `json:"longName"`
				ShortName                  string     `json:"shortName"`
				Currency                   string     `json:"currency"`
				RegularMarketPrice         yahooValue `json:"regularMarketPrice"`
				RegularMarketChange        yahooValue `json:"regularMarketChange"`
				RegularMarketChangePercent yahooValue `json:"regularMarketChangePercent"` // fraction
				RegularMarketPreviousClose yahooValue `json:"regularMarketPreviousClose"`
				RegularMarketVolume        yahooValue `json:"regularMarketVolume"`
				MarketCap                  yahooValue `json:"marketCap"`
			} `json:"price"`
			SummaryDetail struct {
				TrailingPE    yahooValue `json:"trailingPE"`
				DividendYield yahooValue `json:"dividendYield"`
			} `json:"summaryDetail"`
			DefaultKeyStatistics struct {
				EnterpriseValue yahooValue `json:"enterpriseValue"`
			} `json:"defaultKeyStatistics"`
			IncomeStatementHistory struct {
				Statements []struct {
					EBIT            yahooValue `json:"ebit"`
					OperatingIncome yahooValue `json:"operatingIncome"`
				} `json:"incomeStatementHistory"`
			} `json:"incomeStatementHistory"`
			BalanceSheetHistory struct {
				Statements []struct {
					TotalCurrentAssets      yahooValue `json:"totalCurrentAssets"`
					TotalCurrentLiabilities yahooValue `json:"totalCurrentLiabilities"`
					PropertyPlantEquipment  yahooValue `json:"propertyPlantEquipment"`
				} `json:"balanceSheetStatements"`
			} `json:"balanceSheetHistory"`
			AssetProfile struct {
				Sector   string `json:"sector"`
				Industry string `json:"industry"`
			} `json:"assetProfile"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"quoteSummary"`
}

func (f *YahooSummaryFetcher) FetchQuote(ctx context.Context, symbol string) (*model.Quote, error) {
	u := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s",
		yahooHost, url.PathEscape(YahooSymbol(symbol)), url.QueryEscape(summaryModules))

	var resp yahooSummary
	if err := yahooGet(ctx, f.Client, u, &resp); err != nil {
		return nil, err
	}
	if e := resp.QuoteSummary.Error; e != nil {
		return nil, fmt.Errorf("yahoo api error: %s", e.Description)
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("yahoo %s: %w", symbol, ErrNoQuote)
	}

	r := resp.QuoteSummary.Result[0]
	p := r.Price
	name := p.LongName
	if name == "" {
		name = p.ShortName
	}
	q := &model.Quote{
		Symbol:        symbol,
		Name:          name,
		Currency:      p.Currency,
		Price:         p.RegularMarketPrice.float(),
		PreviousClose: p.RegularMarketPreviousClose.float(),
		Change:        p.RegularMarketChange.float(),
		ChangePercent: p.RegularMarketChangePercent.float() * 100,
		HasChange:     p.RegularMarketChange.Raw != nil && p.RegularMarketChangePercent.Raw != nil,
		Volume:        int64(p.RegularMarketVolume.float()),
		MarketCap:     p.MarketCap.float(),
	}

	fund := valuation(r.SummaryDetail.TrailingPE.float(), r.SummaryDetail.DividendYield.float())
	if fund == nil {
		fund = &model.Fundamentals{}
	}
	fund.Sector = r.AssetProfile.Sector
	fund.Industry = r.AssetProfile.Industry
	fund.EnterpriseValue = r.DefaultKeyStatistics.EnterpriseValue.decimal()
	// Statements are listed most recent first.
	if s := r.IncomeStatementHistory.Statements; len(s) > 0 {
		fund.EBIT = s[0].EBIT.decimal()
		if !fund.EBIT.Valid {
			fund.EBIT = s[0].OperatingIncome.decimal()
		}
	}
	if s := r.BalanceSheetHistory.Statements; len(s) > 0 {
		fund.CurrentAssets = s[0].TotalCurrentAssets.decimal()
		fund.CurrentLiabilities = s[0].TotalCurrentLiabilities.decimal()
		fund.NetFixedAssets = s[0].PropertyPlantEquipment.decimal()
	}
	if !fund.Empty() {
		q.Fundamentals = fund
	}
	return q, nil
}

// valuation builds the P/E and dividend yield part of the fundamentals. Zero
// means not reported; nil is returned when neither is.
func valuation(pe, dividendYield float64) *model.Fundamentals {
	if pe == 0 && dividendYield == 0 {
		return nil
	}
	f := &model.Fundamentals{}
	if pe != 0 {
		f.PE = decimal.NewNullDecimal(decimal.NewFromFloat(pe).Round(2))
	}
	if dividendYield != 0 {
		// Some feeds report percent instead of a fraction.
		d := decimal.NewFromFloat(dividendYield)
		if d.GreaterThan(decimal.NewFromInt(1)) {
			d = d.Div(decimal.NewFromInt(100))
		}
		f.DividendYield = decimal.NewNullDecimal(d)
	}
	return f
}
