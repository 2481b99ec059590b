// ABOUTME: URL resolver turning feed hrefs into URLs a browser client can fetch
// ABOUTME: Resolves relative paths against the catalog origin and forwards remote URLs through a proxy

package urlresolver

import (
	"net"
	"net/url"
	"strings"
)

// Resolver implements interfaces.URLResolver
type Resolver struct {
	base  *url.URL
	proxy string
}

// New creates a resolver. baseURL is the origin relative hrefs resolve
// against; proxyURL is prepended to escaped absolute URLs and may be empty
// to disable forwarding.
func New(baseURL, proxyURL string) (*Resolver, error) {
	r := &Resolver{proxy: proxyURL}

	if baseURL != "" {
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, err
		}
		r.base = u
	}

	return r, nil
}

// Resolve returns the fetchable form of href. Empty input yields empty output.
func (r *Resolver) Resolve(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}

	absolute := r.absolute(href)

	if r.proxy == "" || strings.HasPrefix(absolute, r.proxy) || !isRemote(absolute) {
		return absolute
	}

	return r.proxy + EscapeComponent(absolute)
}

// componentUnescapes restores the characters a URI component leaves bare.
// QueryEscape turns spaces into "+" and escapes a literal "+" as %2B.
var componentUnescapes = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// EscapeComponent percent-encodes s as a single URI component, keeping
// letters, digits and -_.!~*'() unescaped and spaces as %20
func EscapeComponent(s string) string {
	return componentUnescapes.Replace(url.QueryEscape(s))
}

func (r *Resolver) absolute(href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	if ref.IsAbs() || r.base == nil {
		return ref.String()
	}
	return r.base.ResolveReference(ref).String()
}

// isRemote reports whether raw is an http(s) URL off this machine
func isRemote(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}

	host := u.Hostname()
	if strings.EqualFold(host, "localhost") {
		return false
	}
	if ip := net.ParseIP(host); ip != nil && ip.IsLoopback() {
		return false
	}
	return true
}
