package collector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

// rewriteTransport redirects all requests to a fixed base URL (test server).
type rewriteTransport struct {
	base  string
	inner http.RoundTripper
}

func (rt *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req2 := req.Clone(req.Context())
	parsed, _ := http.NewRequest("GET", rt.base, nil)
	req2.URL.Host = parsed.URL.Host
	req2.URL.Scheme = parsed.URL.Scheme
	return rt.inner.RoundTrip(req2)
}

// fakeYahoo serves the cookie and crumb handshake and rejects data requests
// that lack either, the way query1.finance.yahoo.com does.
type fakeYahoo struct {
	crumb      string
	crumbCalls int32
	data       http.HandlerFunc
}

func (y *fakeYahoo) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/":
		http.SetCookie(w, &http.Cookie{Name: "A3", Value: "session", Domain: ".yahoo.com", Path: "/"})
		w.WriteHeader(http.StatusNotFound)
	case "/v1/test/getcrumb":
		atomic.AddInt32(&y.crumbCalls, 1)
		if _, err := r.Cookie("A3"); err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, y.crumb)
	default:
		if _, err := r.Cookie("A3"); err != nil || r.URL.Query().Get("crumb") != y.crumb {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"finance":{"result":null,"error":{"code":"Unauthorized","description":"Invalid Crumb"}}}`)
			return
		}
		y.data(w, r)
	}
}

func newFakeYahoo(t *testing.T, data http.HandlerFunc) (*fakeYahoo, http.RoundTripper) {
	t.Helper()
	y := &fakeYahoo{crumb: "c7umb.X", data: data}
	srv := httptest.NewServer(y)
	t.Cleanup(srv.Close)
	return y, &rewriteTransport{base: srv.URL, inner: http.DefaultTransport}
}

func TestYahooQuoteFetcher(t *testing.T) {
	var gotPath, gotQuery, gotUA string
	y, rt := newFakeYahoo(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotQuery, gotUA = r.URL.Path, r.URL.Query().Get("symbols"), r.Header.Get("User-Agent")
		if gotQuery == "NOPE.ST" {
			fmt.Fprint(w, `{"quoteResponse":{"result":[],"error":null}}`)
			return
		}
		fmt.Fprint(w, `{"quoteResponse":{"result":[{
			"symbol":"VOLV-B.ST","longName":"AB Volvo (publ)","shortName":"VOLVO B","currency":"SEK",
			"regularMarketPrice":251.3,"regularMarketChange":2.1,"regularMarketChangePercent":0.84,
			"regularMarketPreviousClose":249.2,"regularMarketVolume":4311200,"marketCap":511000000000,
			"trailingPE":12.345,"trailingAnnualDividendYield":0.0295}],"error":null}}`)
	})

	f := newYahooQuoteFetcher(rt)
	q, err := f.FetchQuote(context.Background(), "VOLV.B")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/v7/finance/quote" || gotQuery != "VOLV-B.ST" || gotUA == "" {
		t.Errorf("request = %s ?symbols=%s UA=%q", gotPath, gotQuery, gotUA)
	}
	if q.Symbol != "VOLV.B" || q.Name != "AB Volvo (publ)" || q.Currency != "SEK" {
		t.Errorf("identity fields = %+v", q)
	}
	if q.Price != 251.3 || !q.HasChange || q.ChangePercent != 0.84 || q.Volume != 4311200 || q.MarketCap != 511e9 {
		t.Errorf("numeric fields = %+v", q)
	}
	if q.Fundamentals == nil || q.Fundamentals.PE.Decimal.String() != "12.35" || q.Fundamentals.DividendYield.Decimal.String() != "0.0295" {
		t.Errorf("fundamentals = %+v", q.Fundamentals)
	}

	if _, err := f.FetchQuote(context.Background(), "NOPE"); !errors.Is(err, ErrNoQuote) {
		t.Errorf("empty result: got %v, want ErrNoQuote", err)
	}
	if c := atomic.LoadInt32(&y.crumbCalls); c != 1 {
		t.Errorf("crumb fetched %d times, want once per session", c)
	}
}

func TestYahooQuoteFetcher_RejectedCrumbIsRenewed(t *testing.T) {
	y, rt := newFakeYahoo(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"quoteResponse":{"result":[{"symbol":"ABB.ST","regularMarketPrice":500}],"error":null}}`)
	})
	f := newYahooQuoteFetcher(rt)

	if _, err := f.FetchQuote(context.Background(), "ABB"); err != nil {
		t.Fatalf("first fetch: %v", err)
	}

	// Yahoo rotates the crumb; the next request is answered 401.
	y.crumb = "rotated"
	_, err := f.FetchQuote(context.Background(), "ABB")
	if err == nil || !strings.Contains(err.Error(), "401") {
		t.Fatalf("stale crumb: got %v, want status 401 error", err)
	}

	q, err := f.FetchQuote(context.Background(), "ABB")
	if err != nil || q.Price != 500 {
		t.Fatalf("after renewal: got %+v, %v", q, err)
	}
	if c := atomic.LoadInt32(&y.crumbCalls); c != 2 {
		t.Errorf("crumb fetched %d times, want 2", c)
	}
}

func TestYahooQuoteFetcher_CrumbUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			w.WriteHeader(http.StatusNotFound)
		case "/v1/test/getcrumb":
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprint(w, "Too Many Requests")
		default:
			t.Errorf("quote requested without a crumb: %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	f := newYahooQuoteFetcher(&rewriteTransport{base: srv.URL, inner: http.DefaultTransport})
	if _, err := f.FetchQuote(context.Background(), "ABB"); err == nil || !strings.Contains(err.Error(), "crumb") {
		t.Errorf("got %v, want crumb error", err)
	}
}

func TestYahooSummaryFetcher(t *testing.T) {
	var gotPath, gotModules string
	_, rt := newFakeYahoo(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotModules = r.URL.Path, r.URL.Query().Get("modules")
		if r.URL.Path == "/v10/finance/quoteSummary/GONE.ST" {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"quoteSummary":{"result":null,"error":{"code":"Not Found","description":"Quote not found for symbol: GONE.ST"}}}`)
			return
		}
		fmt.Fprint(w, `{"quoteSummary":{"result":[{
			"price":{"longName":"Atlas Copco AB","currency":"SEK",
				"regularMarketPrice":{"raw":172.5,"fmt":"172.50"},"regularMarketChange":{"raw":-1.5},
				"regularMarketChangePercent":{"raw":-0.00862},"regularMarketPreviousClose":{"raw":174.0},
				"regularMarketVolume":{"raw":3200000},"marketCap":{"raw":840000000000}},
			"summaryDetail":{"trailingPE":{"raw":28.41},"dividendYield":{}},
			"defaultKeyStatistics":{"enterpriseValue":{"raw":860000000000}},
			"incomeStatementHistory":{"incomeStatementHistory":[
				{"ebit":{"raw":36000000000},"operatingIncome":{"raw":35000000000}},
				{"ebit":{"raw":30000000000}}]},
			"balanceSheetHistory":{"balanceSheetStatements":[
				{"totalCurrentAssets":{"raw":90000000000},"totalCurrentLiabilities":{"raw":60000000000},"propertyPlantEquipment":{"raw":25000000000}}]},
			"assetProfile":{"sector":"Industrials","industry":"Specialty Industrial Machinery"}}],"error":null}}`)
	})

	f := newYahooSummaryFetcher(rt)
	q, err := f.FetchQuote(context.Background(), "ATCO.A")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/v10/finance/quoteSummary/ATCO-A.ST" || !strings.Contains(gotModules, "balanceSheetHistory") {
		t.Errorf("request = %s modules=%s", gotPath, gotModules)
	}
	if q.Name != "Atlas Copco AB" || q.Price != 172.5 || q.PreviousClose != 174 || !q.HasChange || q.MarketCap != 840e9 {
		t.Errorf("quote = %+v", q)
	}
	if pct := q.ChangePercent; pct > -0.861 || pct < -0.863 {
		t.Errorf("change percent = %v, want -0.862", pct)
	}

	fund := q.Fundamentals
	if fund == nil {
		t.Fatal("expected fundamentals")
	}
	if fund.Sector != "Industrials" || !fund.PE.Valid || fund.DividendYield.Valid {
		t.Errorf("valuation = %+v", fund)
	}
	figures := []struct {
		name string
		got  string
		want string
	}{
		{"ebit", fund.EBIT.Decimal.String(), "36000000000"},
		{"enterprise value", fund.EnterpriseValue.Decimal.String(), "860000000000"},
		{"current assets", fund.CurrentAssets.Decimal.String(), "90000000000"},
		{"current liabilities", fund.CurrentLiabilities.Decimal.String(), "60000000000"},
		{"net fixed assets", fund.NetFixedAssets.Decimal.String(), "25000000000"},
	}
	for _, fg := range figures {
		if fg.got != fg.want {
			t.Errorf("%s = %s, want %s", fg.name, fg.got, fg.want)
		}
	}

	if _, err := f.FetchQuote(context.Background(), "GONE"); err == nil {
		t.Error("unknown symbol: expected error")
	}
}

func TestFinanceGoFetcher(t *testing.T) {
	var gotPath, gotSymbols string
	_, rt := newFakeYahoo(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotSymbols = r.URL.Path, r.URL.Query().Get("symbols")
		fmt.Fprint(w, `{"quoteResponse":{"result":[{"symbol":"SAND.ST","longName":"Sandvik AB","currency":"SEK",
			"regularMarketPrice":210.4,"regularMarketPreviousClose":208,"regularMarketChange":2.4,
			"regularMarketChangePercent":1.15,"regularMarketVolume":150,"marketCap":264000000000,"trailingPE":19.2}],"error":null}}`)
	})

	f := newFinanceGoFetcher("https://query2.finance.yahoo.com", rt)
	q, err := f.FetchQuote(context.Background(), "SAND")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotSymbols != "SAND.ST" || !strings.HasSuffix(gotPath, "/finance/quote") {
		t.Errorf("request = %s ?symbols=%s", gotPath, gotSymbols)
	}
	if q.Name != "Sandvik AB" || q.Price != 210.4 || q.ChangePercent != 1.15 || q.MarketCap != 264e9 {
		t.Errorf("quote = %+v", q)
	}
	if q.Fundamentals == nil || !q.Fundamentals.PE.Valid {
		t.Errorf("fundamentals = %+v", q.Fundamentals)
	}
}

func TestValuation(t *testing.T) {
	if valuation(0, 0) != nil {
		t.Error("nothing reported should yield nil")
	}
	if f := valuation(0, 2.55); f.DividendYield.Decimal.String() != "0.0255" || f.PE.Valid {
		t.Errorf("percent yield should be normalized to a fraction, got %+v", f)
	}
}

func TestYahooChartFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v8/finance/chart/ERIC-B.ST":
			fmt.Fprint(w, `{"chart":{"result":[{"meta":{"symbol":"ERIC-B.ST","currency":"SEK",
				"shortName":"ERICSSON B","regularMarketPrice":84.2,"chartPreviousClose":83.0,"regularMarketVolume":9000000}}],"error":null}}`)
		case "/v8/finance/chart/GONE.ST":
			fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`)
		default:
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprint(w, "Too Many Requests")
		}
	}))
	defer srv.Close()

	f := NewYahooChartFetcher("")
	f.Client.Transport = &rewriteTransport{base: srv.URL, inner: http.DefaultTransport}

	q, err := f.FetchQuote(context.Background(), "ERIC.B")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Name != "ERICSSON B" || q.Price != 84.2 || q.PreviousClose != 83.0 || q.HasChange || q.MarketCap != 0 {
		t.Errorf("got %+v", q)
	}

	if _, err := f.FetchQuote(context.Background(), "GONE"); err == nil {
		t.Error("api error: expected error")
	}
	if _, err := f.FetchQuote(context.Background(), "BUSY"); err == nil {
		t.Error("status 429: expected error")
	}
}

func TestRESTFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Query().Get("symbol") {
		case "SAND":
			fmt.Fprint(w, `{"symbol":"SAND","name":"Sandvik AB","currency":"SEK","price":210.4,"previous_close":208,"volume":150,"market_cap":264000000000}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewRESTFetcher(srv.URL+"/", "secret", "")
	q, err := f.FetchQuote(context.Background(), "SAND")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Name != "Sandvik AB" || q.PreviousClose != 208 || q.HasChange || q.MarketCap != 264e9 {
		t.Errorf("got %+v", q)
	}
	if _, err := f.FetchQuote(context.Background(), "XXX"); !errors.Is(err, ErrNoQuote) {
		t.Errorf("404: got %v, want ErrNoQuote", err)
	}

	f.APIKey = ""
	if _, err := f.FetchQuote(context.Background(), "SAND"); err == nil {
		t.Error("401: expected error")
	}
}
