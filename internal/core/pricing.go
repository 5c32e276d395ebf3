package core

import (
	"net/http"
	"strings"
)

// Settlement currencies for checkout pricing.
const (
	CurrencyUSD = "USD"
	CurrencyEUR = "EUR"
	CurrencyBRL = "BRL"
)

// Headers consulted for the caller's country, in priority order. The first
// is set by edge runtimes, the second by reverse proxies; Accept-Language is
// the last resort before defaulting to US.
const (
	headerEdgeCountry  = "X-Vercel-IP-Country"
	headerProxyCountry = "CF-IPCountry"
)

const defaultCountry = "US"

// southAmericaCountries settle in BRL.
var southAmericaCountries = map[string]bool{
	"AR": true, "BO": true, "BR": true, "CL": true, "CO": true,
	"EC": true, "GY": true, "PY": true, "PE": true, "SR": true,
	"UY": true, "VE": true,
}

// europeCountries settle in EUR.
var europeCountries = map[string]bool{
	"AT": true, "BE": true, "BG": true, "CH": true, "CY": true,
	"CZ": true, "DE": true, "DK": true, "EE": true, "ES": true,
	"FI": true, "FR": true, "GB": true, "GR": true, "HR": true,
	"HU": true, "IE": true, "IS": true, "IT": true, "LI": true,
	"LT": true, "LU": true, "LV": true, "MT": true, "NL": true,
	"NO": true, "PL": true, "PT": true, "RO": true, "SE": true,
	"SI": true, "SK": true,
}

// ResolveCountry infers a two-letter country code from request headers,
// falling back to US when nothing resolves.
func ResolveCountry(headers http.Header) string {
	if c := strings.ToUpper(strings.TrimSpace(headers.Get(headerEdgeCountry))); len(c) == 2 {
		return c
	}
	if c := strings.ToUpper(strings.TrimSpace(headers.Get(headerProxyCountry))); len(c) == 2 {
		return c
	}
	if c := countryFromAcceptLanguage(headers.Get("Accept-Language")); c != "" {
		return c
	}
	return defaultCountry
}

// countryFromAcceptLanguage extracts the region subtag from the first
// language range carrying one, e.g. "pt-BR,pt;q=0.9" -> "BR".
func countryFromAcceptLanguage(acceptLanguage string) string {
	for _, rng := range strings.Split(acceptLanguage, ",") {
		lang := strings.TrimSpace(strings.SplitN(rng, ";", 2)[0])
		parts := strings.Split(lang, "-")
		if len(parts) < 2 {
			continue
		}
		region := strings.ToUpper(parts[len(parts)-1])
		if len(region) == 2 && region[0] >= 'A' && region[0] <= 'Z' && region[1] >= 'A' && region[1] <= 'Z' {
			return region
		}
	}
	return ""
}

// CurrencyForCountry maps a country code to its settlement currency:
// South America settles in BRL, Europe in EUR, everywhere else in USD.
func CurrencyForCountry(countryCode string) string {
	code := strings.ToUpper(strings.TrimSpace(countryCode))
	switch {
	case southAmericaCountries[code]:
		return CurrencyBRL
	case europeCountries[code]:
		return CurrencyEUR
	default:
		return CurrencyUSD
	}
}
