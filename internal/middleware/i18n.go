package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"golang.org/x/text/language"

	"dashboard/internal/i18n"
)

type localeContextKey struct{}
type countryContextKey struct{}

var (
	LocaleKey  = localeContextKey{}
	CountryKey = countryContextKey{}
)

// CountryLookup resolves an upper-case ISO country code for an IP address,
// returning "" when unknown.
type CountryLookup func(ip string) string

// I18N picks the UI language for the request. Explicit choices (?lang, the
// lang cookie, X-Locale) win over Accept-Language, which wins over the
// country hint.
func I18N(defaultLocale string, lookup CountryLookup) func(http.Handler) http.Handler {
	fallback := i18n.Match(defaultLocale)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			country := ResolveCountry(r, lookup)
			locale := detectLocale(r, fallback, country)
			if q := r.URL.Query().Get("lang"); q != "" {
				http.SetCookie(w, &http.Cookie{
					Name:     "lang",
					Value:    locale.String(),
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}
			ctx := context.WithValue(r.Context(), LocaleKey, locale)
			if country != "" {
				ctx = context.WithValue(ctx, CountryKey, country)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func detectLocale(r *http.Request, fallback language.Tag, country string) language.Tag {
	var explicit []string
	if v := r.URL.Query().Get("lang"); v != "" {
		explicit = append(explicit, v)
	}
	if c, err := r.Cookie("lang"); err == nil && c.Value != "" {
		explicit = append(explicit, c.Value)
	}
	if v := r.Header.Get("X-Locale"); v != "" {
		explicit = append(explicit, v)
	}
	if len(explicit) > 0 {
		return i18n.Match(explicit[0])
	}
	if v := r.Header.Get("Accept-Language"); v != "" {
		return i18n.Match(v)
	}
	if country == "ID" {
		return language.Indonesian
	}
	if country != "" {
		return language.English
	}
	return fallback
}

// ClientIP returns the best-effort client IP address for the request.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		parts := strings.Split(xf, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// LocaleFromContext returns the request language, English when unset.
func LocaleFromContext(ctx context.Context) language.Tag {
	if v, ok := ctx.Value(LocaleKey).(language.Tag); ok {
		return v
	}
	return language.English
}

// CountryFromContext returns the ISO country code stored in the request context.
func CountryFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CountryKey).(string); ok {
		return v
	}
	return ""
}

// ResolveCountry resolves a best-effort ISO country code for the given request.
// Edge proxy headers are trusted first, then the region subtag of the
// preferred language, then the GeoIP lookup.
func ResolveCountry(r *http.Request, lookup CountryLookup) string {
	if r == nil {
		return ""
	}
	headerHints := []string{"X-Country-Code", "CF-IPCountry", "X-Appengine-Country"}
	for _, key := range headerHints {
		if val := strings.TrimSpace(r.Header.Get(key)); val != "" {
			return strings.ToUpper(val)
		}
	}
	for _, header := range []string{"X-Locale", "Accept-Language"} {
		if region := localeRegion(r.Header.Get(header)); region != "" {
			return region
		}
	}
	if lookup != nil {
		if ip := ClientIP(r); ip != "" {
			return strings.ToUpper(lookup(ip))
		}
	}
	return ""
}

func localeRegion(accept string) string {
	tags, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(tags) == 0 {
		return ""
	}
	region, conf := tags[0].Region()
	if conf != language.Exact {
		return ""
	}
	return region.String()
}
