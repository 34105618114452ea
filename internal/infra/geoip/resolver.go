// Package geoip maps client addresses to ISO country codes. The dashboard
// only uses the result as a language hint, so every failure degrades to "".
package geoip

import (
	"fmt"
	"net/netip"
	"strings"
	"sync"

	"github.com/oschwald/geoip2-golang"
	"github.com/rs/zerolog"
)

const cacheLimit = 4096

// Locator resolves countries from a MaxMind GeoLite2/GeoIP2 Country database.
// A nil *Locator is valid and never resolves anything.
type Locator struct {
	reader *geoip2.Reader
	logger zerolog.Logger

	mu    sync.Mutex
	cache map[netip.Addr]string
}

// Open loads the database at path. An empty path yields a nil Locator.
func Open(path string, logger zerolog.Logger) (*Locator, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("geoip: open database: %w", err)
	}
	return &Locator{reader: reader, logger: logger, cache: make(map[netip.Addr]string)}, nil
}

// Country returns the upper-case ISO code for ip, or "" when unknown.
func (l *Locator) Country(ip string) string {
	if l == nil || l.reader == nil {
		return ""
	}
	addr, err := netip.ParseAddr(strings.TrimSpace(ip))
	if err != nil || addr.IsLoopback() || addr.IsPrivate() {
		return ""
	}
	addr = addr.Unmap()

	l.mu.Lock()
	if code, ok := l.cache[addr]; ok {
		l.mu.Unlock()
		return code
	}
	l.mu.Unlock()

	record, err := l.reader.Country(addr.AsSlice())
	if err != nil {
		l.logger.Debug().Err(err).Str("ip", addr.String()).Msg("geoip lookup failed")
		return ""
	}
	code := strings.ToUpper(record.Country.IsoCode)

	l.mu.Lock()
	if len(l.cache) >= cacheLimit {
		clear(l.cache)
	}
	l.cache[addr] = code
	l.mu.Unlock()
	return code
}

// Close releases the database.
func (l *Locator) Close() error {
	if l == nil || l.reader == nil {
		return nil
	}
	return l.reader.Close()
}
