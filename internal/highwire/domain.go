package highwire

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// ErrNoDomain is returned when a URL has no host to derive a site from.
var ErrNoDomain = errors.New("unable to determine domain")

var (
	hostRegex        = regexp.MustCompile(`^([^.]+\.)*([^.]+)(\.[^.]+)$`)
	nonAlphanumRegex = regexp.MustCompile(`[^0-9A-Za-z]`)
)

// Domain returns the site identifier of a URL: the host label just before the
// top-level domain, lower-cased and stripped to ASCII letters and digits.
// "https://www.sciencedirect.com/science/article/pii/X" gives "sciencedirect".
func Domain(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w of %s: %v", ErrNoDomain, rawURL, err)
	}

	m := hostRegex.FindStringSubmatch(u.Hostname())
	if m == nil {
		return "", fmt.Errorf("%w of %s", ErrNoDomain, rawURL)
	}

	domain := strings.ToLower(nonAlphanumRegex.ReplaceAllString(m[2], ""))
	if domain == "" {
		return "", fmt.Errorf("%w of %s", ErrNoDomain, rawURL)
	}
	return domain, nil
}
