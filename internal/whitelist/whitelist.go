package whitelist

import (
	"strings"

	"go.uber.org/zap"
)

// Checker reports whether a URL host belongs to a trusted domain
type Checker struct {
	domains []string
	logger  *zap.Logger
}

// NewChecker creates a new whitelist checker
func NewChecker(domains []string, logger *zap.Logger) *Checker {
	normalizedDomains := make([]string, 0, len(domains))
	for _, domain := range domains {
		domain = strings.Trim(strings.ToLower(strings.TrimSpace(domain)), ".")
		if domain != "" {
			normalizedDomains = append(normalizedDomains, domain)
		}
	}

	if len(normalizedDomains) > 0 && logger != nil {
		logger.Info("Initialized trusted domain checker", zap.Strings("domains", normalizedDomains))
	}

	return &Checker{
		domains: normalizedDomains,
		logger:  logger,
	}
}

// IsWhitelisted reports whether host equals a trusted domain or is a subdomain of one
func (c *Checker) IsWhitelisted(host string) bool {
	if c == nil || len(c.domains) == 0 {
		return false
	}

	host = strings.TrimSuffix(strings.ToLower(host), ".")

	for _, trusted := range c.domains {
		if host == trusted || strings.HasSuffix(host, "."+trusted) {
			if c.logger != nil {
				c.logger.Debug("Host is whitelisted",
					zap.String("host", host),
					zap.String("domain", trusted))
			}
			return true
		}
	}

	return false
}

// Domains returns the normalized trusted domains
func (c *Checker) Domains() []string {
	return append([]string(nil), c.domains...)
}
