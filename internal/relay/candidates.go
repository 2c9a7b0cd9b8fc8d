package relay

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

const (
	// DefaultRelayPort is the port the mail relay listens on by default.
	DefaultRelayPort = "5000"
	// DefaultFallbackEndpoint is tried last when nothing else is configured.
	DefaultFallbackEndpoint = "http://127.0.0.1:5500/send-mail"
)

var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
}

var loopbackEndpoints = []string{
	"http://127.0.0.1:5000/send-mail",
	"http://localhost:5000/send-mail",
}

// Location is the address of the page a submission originates from.
type Location struct {
	Scheme   string
	Hostname string
	Port     string
}

// ParseLocation parses an absolute page URL such as "https://example.com:8443/contact".
// The scheme and hostname are lowercased as a browser reports them.
func ParseLocation(raw string) (*Location, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("page url is empty")
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("invalid page url: %w", err)
	}
	if u.Scheme == "" {
		return nil, fmt.Errorf("page url %q has no scheme", raw)
	}

	return &Location{
		Scheme:   strings.ToLower(u.Scheme),
		Hostname: strings.ToLower(u.Hostname()),
		Port:     u.Port(),
	}, nil
}

// IsHTTP reports whether the page was served over http or https.
func (l *Location) IsHTTP() bool {
	if l == nil {
		return false
	}
	return l.Scheme == "http" || l.Scheme == "https"
}

// Origin renders scheme://host[:port] the way a browser reports it: the
// hostname is lowercased and the scheme's default port is omitted.
func (l *Location) Origin() string {
	if l == nil {
		return ""
	}
	scheme := strings.ToLower(l.Scheme)
	hostname := strings.ToLower(l.Hostname)
	if l.Port != "" && l.Port != defaultPorts[scheme] {
		return scheme + "://" + net.JoinHostPort(hostname, l.Port)
	}
	if strings.Contains(hostname, ":") {
		hostname = "[" + hostname + "]"
	}
	return scheme + "://" + hostname
}

// Candidates builds the ordered endpoint list for one submission. The page
// origin comes first, then the page host on the relay port, then the loopback
// addresses and finally the fallback. Duplicates are kept.
func Candidates(location *Location, fallback string) []string {
	candidates := make([]string, 0, 5)

	if location.IsHTTP() {
		candidates = append(candidates, location.Origin()+SendMailPath)
		if location.Hostname != "" {
			candidates = append(candidates,
				strings.ToLower(location.Scheme)+"://"+net.JoinHostPort(strings.ToLower(location.Hostname), DefaultRelayPort)+SendMailPath)
		}
	}

	candidates = append(candidates, loopbackEndpoints...)

	if fallback = strings.TrimSpace(fallback); fallback != "" {
		candidates = append(candidates, fallback)
	}

	return candidates
}
