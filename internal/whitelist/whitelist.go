// Package whitelist decides which envelope senders bypass classification in
// the SMTP content filter.
package whitelist

import (
	"strings"

	"go.uber.org/zap"
)

// Checker matches sender addresses against a set of trusted domains
type Checker struct {
	domains map[string]struct{}
	logger  *zap.Logger
}

// NewChecker creates a new whitelist checker. Domains are matched
// case-insensitively and blank entries are ignored.
func NewChecker(domains []string, logger *zap.Logger) *Checker {
	if logger == nil {
		logger = zap.NewNop()
	}

	set := make(map[string]struct{}, len(domains))
	names := make([]string, 0, len(domains))
	for _, domain := range domains {
		domain = strings.ToLower(strings.TrimSpace(domain))
		if domain == "" {
			continue
		}
		if _, dup := set[domain]; !dup {
			set[domain] = struct{}{}
			names = append(names, domain)
		}
	}

	if len(names) > 0 {
		logger.Info("Initialized whitelist checker", zap.Strings("domains", names))
	}

	return &Checker{domains: set, logger: logger}
}

// IsWhitelisted reports whether the sender's domain is trusted. A nil
// Checker trusts nobody.
func (c *Checker) IsWhitelisted(from string) bool {
	if c == nil || len(c.domains) == 0 {
		return false
	}

	domain, ok := senderDomain(from)
	if !ok {
		return false
	}

	if _, hit := c.domains[domain]; hit {
		c.logger.Debug("Domain is whitelisted",
			zap.String("domain", domain),
			zap.String("email", from))
		return true
	}
	return false
}

func senderDomain(from string) (string, bool) {
	from = strings.Trim(strings.TrimSpace(from), "<>")
	at := strings.LastIndex(from, "@")
	if at <= 0 || at == len(from)-1 {
		return "", false
	}
	return strings.ToLower(from[at+1:]), true
}
