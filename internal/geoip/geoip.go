// Package geoip resolves viewer addresses to a coarse location for watch
// records. Everything here is best-effort: a missing database file, an
// unparseable address or an address outside the dataset all come back as
// empty strings rather than errors.
package geoip

import (
	"log/slog"
	"net"

	"github.com/oschwald/maxminddb-golang"
)

type Resolver struct {
	reader *maxminddb.Reader
}

type record struct {
	Country struct {
		ISOCode string            `maxminddb:"iso_code"`
		Names   map[string]string `maxminddb:"names"`
	} `maxminddb:"country"`
	City struct {
		Names map[string]string `maxminddb:"names"`
	} `maxminddb:"city"`
}

// New opens a MaxMind database. An empty path or an unreadable file yields
// a resolver that answers every lookup with empty strings, so callers never
// have to branch on whether geolocation is configured.
func New(path string) (*Resolver, error) {
	if path == "" {
		return &Resolver{}, nil
	}
	reader, err := maxminddb.Open(path)
	if err != nil {
		slog.Warn("geoip: failed to open database, geolocation disabled", "path", path, "error", err)
		return &Resolver{}, nil
	}
	slog.Info("geoip: loaded database", "path", path)
	return &Resolver{reader: reader}, nil
}

func (r *Resolver) Lookup(addr string) (country, city string) {
	if r.reader == nil || addr == "" {
		return "", ""
	}
	ip := net.ParseIP(addr)
	if ip == nil {
		return "", ""
	}

	var rec record
	if err := r.reader.Lookup(ip, &rec); err != nil {
		return "", ""
	}

	country = rec.Country.ISOCode
	if country == "" {
		country = rec.Country.Names["en"]
	}
	return country, rec.City.Names["en"]
}

func (r *Resolver) Close() error {
	if r.reader == nil {
		return nil
	}
	return r.reader.Close()
}
