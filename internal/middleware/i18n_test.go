package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/text/language"
)

func TestDetectLocale(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		setup    func(r *http.Request)
		fallback language.Tag
		country  string
		want     language.Tag
	}{
		{
			name: "x-locale overrides",
			setup: func(r *http.Request) {
				r.Header.Set("X-Locale", "ID")
			},
			country: "US",
			want:    language.Indonesian,
		},
		{
			name:   "query parameter wins",
			target: "/?lang=id",
			setup: func(r *http.Request) {
				r.Header.Set("X-Locale", "en")
			},
			want: language.Indonesian,
		},
		{
			name: "cookie before accept-language",
			setup: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: "lang", Value: "id"})
				r.Header.Set("Accept-Language", "en-US")
			},
			want: language.Indonesian,
		},
		{
			name: "accept-language used",
			setup: func(r *http.Request) {
				r.Header.Set("Accept-Language", "en-US,en;q=0.9")
			},
			want: language.English,
		},
		{
			name: "accept-language id preference",
			setup: func(r *http.Request) {
				r.Header.Set("Accept-Language", "id-ID,en;q=0.8")
			},
			want: language.Indonesian,
		},
		{
			name:    "country id overrides",
			country: "ID",
			want:    language.Indonesian,
		},
		{
			name:     "country non-id falls back to en",
			country:  "US",
			fallback: language.Indonesian,
			want:     language.English,
		},
		{
			name:     "configured fallback",
			fallback: language.Indonesian,
			want:     language.Indonesian,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			target := tc.target
			if target == "" {
				target = "/"
			}
			req := httptest.NewRequest(http.MethodGet, target, nil)
			if tc.setup != nil {
				tc.setup(req)
			}
			fallback := tc.fallback
			if fallback == (language.Tag{}) {
				fallback = language.English
			}
			got := detectLocale(req, fallback, tc.country)
			if got != tc.want {
				t.Fatalf("detectLocale() = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestResolveCountry(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(r *http.Request)
		resolver CountryLookup
		want     string
	}{
		{
			name: "header precedence",
			setup: func(r *http.Request) {
				r.Header.Set("X-Country-Code", "us")
				r.Header.Set("CF-IPCountry", "id")
			},
			want: "US",
		},
		{
			name: "locale region fallback",
			setup: func(r *http.Request) {
				r.Header.Set("X-Locale", "en-AU")
			},
			want: "AU",
		},
		{
			name: "accept-language region",
			setup: func(r *http.Request) {
				r.Header.Set("Accept-Language", "en-GB,en;q=0.9")
			},
			want: "GB",
		},
		{
			name: "resolver fallback",
			resolver: func(ip string) string {
				if ip != "203.0.113.4" {
					t.Errorf("unexpected ip: %s", ip)
				}
				return "my"
			},
			want: "MY",
		},
		{
			name:     "resolver miss returns empty",
			resolver: func(ip string) string { return "" },
			want:     "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "203.0.113.4:80"
			if tc.setup != nil {
				tc.setup(req)
			}
			got := ResolveCountry(req, tc.resolver)
			if got != tc.want {
				t.Fatalf("ResolveCountry() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestI18NSetsCookieFromQuery(t *testing.T) {
	var got language.Tag
	h := I18N("en", nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = LocaleFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/?lang=id", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got != language.Indonesian {
		t.Fatalf("locale = %s, want id", got)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "lang" || cookies[0].Value != "id" {
		t.Fatalf("cookies = %v, want lang=id", cookies)
	}
}

func TestLocaleFromContext(t *testing.T) {
	ctx := context.Background()
	if got := LocaleFromContext(ctx); got != language.English {
		t.Fatalf("LocaleFromContext() default = %s, want en", got)
	}
	ctx = context.WithValue(ctx, LocaleKey, language.Indonesian)
	if got := LocaleFromContext(ctx); got != language.Indonesian {
		t.Fatalf("LocaleFromContext() with value = %s, want id", got)
	}
}
