package render

type labels struct {
	Updated   string
	Filter    string
	Total     string
	OK        string
	Failed    string
	Ticker    string
	Name      string
	Price     string
	Change    string
	ChangePct string
	Volume    string
	MarketCap string
	Size      string
	Status    string
	History   string
	Latest    string
	Run       string
	Advancers string
	Decliners string
	Gainers   string
	Losers    string
	Duration  string
	NoRuns    string

	Sector        string
	PE            string
	DividendYield string
	Magic         string
	MagicScore    string
	MagicAll      string
	MagicMin100M  string
	MagicMin500M  string
	MagicMin1B    string
	MagicMin5B    string
}

var labelSets = map[string]labels{
	"sv": {
		Updated: "Senast uppdaterad", Filter: "Filtrera på ticker eller namn",
		Total: "Totalt", OK: "Hämtade", Failed: "Misslyckade",
		Ticker: "Ticker", Name: "Namn", Price: "Pris", Change: "Förändring", ChangePct: "Förändring %",
		Volume: "Volym", MarketCap: "Börsvärde", Size: "Storlek", Status: "Status",
		History: "Historik", Latest: "Senaste kurser", Run: "Körning",
		Advancers: "Upp", Decliners: "Ner", Gainers: "Vinnare", Losers: "Förlorare",
		Duration: "Tid", NoRuns: "Inga sparade körningar ännu.",
		Sector: "Sektor", PE: "P/E", DividendYield: "Direktavkastning", Magic: "Magic Formula",
		MagicScore: "Exkl. finansbolag", MagicAll: "Alla bolag",
		MagicMin100M: "Börsvärde minst 100 MSEK", MagicMin500M: "Börsvärde minst 500 MSEK",
		MagicMin1B: "Börsvärde minst 1 mdr SEK", MagicMin5B: "Börsvärde minst 5 mdr SEK",
	},
	"en": {
		Updated: "Last updated", Filter: "Filter by ticker or name",
		Total: "Total", OK: "Fetched", Failed: "Failed",
		Ticker: "Ticker", Name: "Name", Price: "Price", Change: "Change", ChangePct: "Change %",
		Volume: "Volume", MarketCap: "Market cap", Size: "Size", Status: "Status",
		History: "History", Latest: "Latest quotes", Run: "Run",
		Advancers: "Up", Decliners: "Down", Gainers: "Gainers", Losers: "Losers",
		Duration: "Duration", NoRuns: "No recorded runs yet.",
		Sector: "Sector", PE: "P/E", DividendYield: "Dividend yield", Magic: "Magic Formula",
		MagicScore: "Excluding financials", MagicAll: "All companies",
		MagicMin100M: "Market cap at least 100M SEK", MagicMin500M: "Market cap at least 500M SEK",
		MagicMin1B: "Market cap at least 1B SEK", MagicMin5B: "Market cap at least 5B SEK",
	},
}

func labelsFor(locale string) labels {
	if l, ok := labelSets[locale]; ok {
		return l
	}
	return labelSets["sv"]
}
