package app

import (
	"net/url"
	"strings"

	"github.com/lib/pq"
)

const binaryParametersKey = "binary_parameters"

// normalizeDBURL turns on lib/pq's binary_parameters when prepared statements
// must be avoided, as behind a transaction-mode pooler. Both URL and keyword
// DSNs are accepted and an explicit setting always wins.
func normalizeDBURL(raw string, disablePreparedStatements bool) string {
	raw = strings.TrimSpace(raw)
	if !disablePreparedStatements || raw == "" {
		return raw
	}

	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" {
		if _, set := dsnKeywords(raw)[binaryParametersKey]; set {
			return raw
		}
		return raw + " " + binaryParametersKey + "=yes"
	}

	query := parsed.Query()
	if !query.Has(binaryParametersKey) {
		query.Set(binaryParametersKey, "yes")
		parsed.RawQuery = query.Encode()
	}
	return parsed.String()
}

// MigrationURL is the database URL cmd/migration hands to golang-migrate,
// which only understands the URL form.
func MigrationURL(raw string, disablePreparedStatements bool) string {
	raw = strings.TrimSpace(raw)
	if parsed, err := url.Parse(raw); err != nil || parsed.Scheme == "" {
		return raw
	}
	return normalizeDBURL(raw, disablePreparedStatements)
}

// dbNameFromURL reports the database name for span attributes.
func dbNameFromURL(raw string) string {
	dsn := strings.TrimSpace(raw)
	if converted, err := pq.ParseURL(dsn); err == nil && converted != "" {
		dsn = converted
	}
	return dsnKeywords(dsn)["dbname"]
}

func dsnKeywords(dsn string) map[string]string {
	out := make(map[string]string)
	for _, field := range strings.Fields(dsn) {
		key, value, ok := strings.Cut(field, "=")
		if !ok {
			continue
		}
		out[key] = strings.Trim(value, `"'`)
	}
	return out
}
