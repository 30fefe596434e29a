package collector

import "strings"

var dashSuffixes = []string{".SDB", ".STAM", ".PREF"}

// YahooSymbol maps an exchange ticker to its Yahoo Finance form.
//
//	STAR.A    -> STAR-A.ST
//	ARION.SDB -> ARION-SDB.ST
//	ABB.SE    -> ABB.ST
//	NDA-HE    -> NDA.HE
//	ABB       -> ABB.ST
func YahooSymbol(ticker string) string {
	t := strings.ToUpper(strings.TrimSpace(ticker))

	for _, suffix := range dashSuffixes {
		if strings.HasSuffix(t, suffix) {
			return strings.TrimSuffix(t, suffix) + "-" + suffix[1:] + ".ST"
		}
	}
	switch {
	case strings.HasSuffix(t, ".SEK"):
		return strings.TrimSuffix(t, ".SEK") + ".ST"
	case strings.HasSuffix(t, ".SE"):
		return strings.TrimSuffix(t, ".SE") + ".ST"
	case strings.HasSuffix(t, "-HE"):
		return strings.TrimSuffix(t, "-HE") + ".HE"
	case strings.HasSuffix(t, ".ST"):
		return strings.Replace(strings.TrimSuffix(t, ".ST"), ".", "-", 1) + ".ST"
	}
	return strings.Replace(t, ".", "-", 1) + ".ST"
}
