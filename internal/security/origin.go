package security

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// OriginChecker resolves redirect targets against the service base URL and
// verifies that absolute targets point at a trusted origin. It exists to stop
// the browser confirmation flow from becoming an open redirect.
type OriginChecker struct {
	base    *url.URL
	trusted map[string]struct{}
}

// NewOriginChecker builds a checker from the service base URL and a list of
// additional trusted origins (scheme://host[:port]). The base URL's own
// origin is always trusted. A single "*" entry trusts every origin.
func NewOriginChecker(baseURL string, trustedOrigins []string) (*OriginChecker, error) {
	base, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("origin checker: parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, errors.New("origin checker: base url must be absolute")
	}

	trusted := make(map[string]struct{}, len(trustedOrigins)+1)
	trusted[originOf(base)] = struct{}{}
	for _, o := range trustedOrigins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "" {
			continue
		}
		trusted[strings.ToLower(o)] = struct{}{}
	}

	return &OriginChecker{base: base, trusted: trusted}, nil
}

// ErrUntrustedOrigin rejects redirect targets outside the trusted origins.
var ErrUntrustedOrigin = errors.New("origin checker: untrusted redirect origin")

// Resolve interprets target relative to the base URL and returns the absolute
// redirect URL, or ErrUntrustedOrigin when the resolved origin is not
// trusted.
func (c *OriginChecker) Resolve(target string) (*url.URL, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return nil, errors.New("origin checker: empty redirect target")
	}

	parsed, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("origin checker: parse target: %w", err)
	}

	resolved := c.base.ResolveReference(parsed)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return nil, ErrUntrustedOrigin
	}

	if _, all := c.trusted["*"]; all {
		return resolved, nil
	}
	if _, ok := c.trusted[originOf(resolved)]; !ok {
		return nil, ErrUntrustedOrigin
	}

	return resolved, nil
}

// Base returns the configured base URL.
func (c *OriginChecker) Base() *url.URL {
	return c.base
}

func originOf(u *url.URL) string {
	return strings.ToLower(u.Scheme + "://" + u.Host)
}
