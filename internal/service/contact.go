package service

import (
	"context"
	"errors"
	"net"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/nyaruka/phonenumbers"
	"golang.org/x/net/idna"
)

var (
	emailPattern   = regexp.MustCompile(`^[a-z0-9._%+\-']+@[a-z0-9.-]+\.[a-z]{2,}$`)
	phoneCandidate = regexp.MustCompile(`\+?\d[\d\s().-]{5,}\d`)
	idnaProfile    = idna.Lookup
)

const (
	trackingPrefix     = "utm_"
	defaultPhoneRegion = "IN"
	mxLookupTimeout    = 3 * time.Second
)

// DNSResolver abstracts DNS lookups to simplify testing.
type DNSResolver interface {
	LookupMX(ctx context.Context, domain string) ([]*net.MX, error)
}

// ContactNormalizer cleans phone numbers, emails and URLs entered for leads,
// offices, officers and sources.
type ContactNormalizer struct {
	DefaultRegion string
	dnsResolver   DNSResolver
}

// ContactOption configures optional dependencies.
type ContactOption func(*ContactNormalizer)

// WithDNSResolver enables MX checks on email domains.
func WithDNSResolver(resolver DNSResolver) ContactOption {
	return func(n *ContactNormalizer) {
		n.dnsResolver = resolver
	}
}

// NewContactNormalizer builds a normalizer parsing national numbers in defaultRegion.
func NewContactNormalizer(defaultRegion string, opts ...ContactOption) *ContactNormalizer {
	region := strings.ToUpper(strings.TrimSpace(defaultRegion))
	if region == "" {
		region = defaultPhoneRegion
	}
	n := &ContactNormalizer{DefaultRegion: region}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// SystemDNSResolver returns a resolver backed by the host's DNS configuration.
func SystemDNSResolver() DNSResolver {
	return systemDNSResolver{}
}

// NormalizePhone returns raw in E.164 form, or "" when it is not a valid number.
func (n *ContactNormalizer) NormalizePhone(raw string) string {
	return normalizePhone(raw, n.DefaultRegion)
}

// ExtractPhones finds every valid phone number inside free text such as a lead's
// contact information, in order of appearance and without duplicates.
func (n *ContactNormalizer) ExtractPhones(text string) []string {
	candidates := phoneCandidate.FindAllString(text, -1)
	seen := make(map[string]struct{}, len(candidates))
	valid := make([]string, 0, len(candidates))

	for _, raw := range candidates {
		normalized := normalizePhone(raw, n.DefaultRegion)
		if normalized == "" {
			continue
		}
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}
		valid = append(valid, normalized)
	}
	if len(valid) == 0 {
		return nil
	}
	return valid
}

// NormalizeEmail lower-cases raw and checks its syntax and domain. When a DNS
// resolver is configured the domain must also publish an MX record.
func (n *ContactNormalizer) NormalizeEmail(ctx context.Context, raw string) (string, bool) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" || !emailPattern.MatchString(email) {
		return "", false
	}
	domain := email[strings.LastIndex(email, "@")+1:]
	if !isDomainValid(domain) {
		return "", false
	}
	asciiDomain, err := idnaProfile.ToASCII(domain)
	if err != nil || asciiDomain == "" {
		return "", false
	}
	if n.dnsResolver != nil && !n.hasMXRecord(ctx, asciiDomain) {
		return "", false
	}
	return email, true
}

// NormalizeSourceURL validates an absolute http(s) URL, converts its host to
// ASCII and strips utm_ tracking parameters.
func (n *ContactNormalizer) NormalizeSourceURL(raw string) (string, error) {
	u, err := sanitizeURL(raw)
	if err != nil {
		return "", err
	}
	stripTracking(u)
	return u.String(), nil
}

func (n *ContactNormalizer) hasMXRecord(ctx context.Context, domain string) bool {
	ctx, cancel := context.WithTimeout(ctx, mxLookupTimeout)
	defer cancel()
	records, err := n.dnsResolver.LookupMX(ctx, domain)
	return err == nil && len(records) > 0
}

func sanitizeURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, errors.New("url is not valid")
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return nil, errors.New("url must start with http:// or https://")
	}
	host := strings.Trim(strings.ToLower(u.Hostname()), ".")
	if host == "" {
		return nil, errors.New("url must include a host")
	}
	asciiHost, err := idnaProfile.ToASCII(host)
	if err != nil || !isDomainValid(asciiHost) {
		return nil, errors.New("url host is not a valid domain")
	}
	if port := u.Port(); port != "" {
		asciiHost = net.JoinHostPort(asciiHost, port)
	}
	u.Scheme = scheme
	u.Host = asciiHost
	return u, nil
}

func stripTracking(u *url.URL) {
	if u == nil {
		return
	}
	query := u.Query()
	changed := false
	for key := range query {
		if strings.HasPrefix(strings.ToLower(key), trackingPrefix) {
			query.Del(key)
			changed = true
		}
	}
	if changed {
		u.RawQuery = query.Encode()
	}
}

func normalizePhone(raw, region string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if region == "" {
		region = defaultPhoneRegion
	}
	number, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return ""
	}
	if !phonenumbers.IsPossibleNumber(number) || !phonenumbers.IsValidNumber(number) {
		return ""
	}
	return phonenumbers.Format(number, phonenumbers.E164)
}

func isDomainValid(domain string) bool {
	if strings.Count(domain, ".") == 0 {
		return false
	}
	parts := strings.Split(domain, ".")
	for _, part := range parts {
		if part == "" || strings.HasPrefix(part, "-") || strings.HasSuffix(part, "-") {
			return false
		}
	}
	return true
}

type systemDNSResolver struct{}

func (systemDNSResolver) LookupMX(ctx context.Context, domain string) ([]*net.MX, error) {
	return net.DefaultResolver.LookupMX(ctx, domain)
}
