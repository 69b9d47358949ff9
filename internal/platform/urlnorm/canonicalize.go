// Package urlnorm collapses cosmetically different URLs into one canonical
// form used for comment grouping and partition placement.
package urlnorm

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"regexp"
	"strings"
)

// trackingParams are query parameters dropped during normalization because
// they identify a visit, not a page.
var trackingParams = map[string]struct{}{
	"fbclid":   {},
	"gclid":    {},
	"msclkid":  {},
	"ref":      {},
	"referrer": {},
	"_ga":      {},
	"_gl":      {},
	"mc_cid":   {},
	"mc_eid":   {},
	"campaign": {},
	"source":   {},
	"medium":   {},
}

// langSubdomain matches two-letter language subdomains like "en." or "de.".
var langSubdomain = regexp.MustCompile(`^[a-z]{2}\.`)

// Canonicalize normalizes a raw URL and returns its canonical form together
// with the hex-encoded SHA-256 digest of that form. The digest is the
// grouping and partition key for all comments on the URL.
//
// Canonicalize never fails: input that cannot be parsed as a URL is
// normalized as an opaque string. The function is idempotent, feeding the
// canonical form back in yields the same result.
func Canonicalize(raw string) (canonical string, hash string) {
	canonical = normalize(raw)
	sum := sha256.Sum256([]byte(canonical))
	return canonical, hex.EncodeToString(sum[:])
}

func normalize(raw string) string {
	// The whole URL is lowercased, accepting the loss of case-sensitive
	// path semantics in exchange for cross-URL matching.
	s := strings.ToLower(strings.TrimSpace(raw))

	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return trimTrailingSlash(s)
	}

	u.Host = normalizeHost(u.Host)
	u.Path = normalizePath(u.Path)
	u.RawQuery = normalizeQuery(u.Query())
	u.RawPath = ""
	u.Fragment = ""
	u.RawFragment = ""

	return u.String()
}

func normalizeHost(host string) string {
	host = strings.TrimPrefix(host, "www.")

	// Language subdomains group with their parent site. The remaining host
	// must still contain a dot so a bare two-label domain is left alone.
	if langSubdomain.MatchString(host) && strings.Count(host, ".") >= 2 {
		host = host[3:]
	}
	return host
}

func normalizePath(path string) string {
	if path == "" {
		return "/"
	}
	return trimTrailingSlash(path)
}

func trimTrailingSlash(s string) string {
	if len(s) > 1 && strings.HasSuffix(s, "/") {
		return s[:len(s)-1]
	}
	return s
}

func normalizeQuery(values url.Values) string {
	for key := range values {
		if isTrackingParam(key) {
			delete(values, key)
		}
	}
	if len(values) == 0 {
		return ""
	}
	// Encode sorts keys, so parameter order never affects the canonical form.
	return values.Encode()
}

func isTrackingParam(key string) bool {
	if strings.HasPrefix(key, "utm_") {
		return true
	}
	_, ok := trackingParams[key]
	return ok
}
