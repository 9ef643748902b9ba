package core

import (
	"net"
	"net/url"

	"github.com/go-playground/validator/v10"
)

// URLValidator checks URLs for syntactic well-formedness before classification
type URLValidator struct {
	validate *validator.Validate
}

// NewURLValidator creates a new URL validator
func NewURLValidator() *URLValidator {
	return &URLValidator{validate: validator.New()}
}

// IsValid reports whether raw is an absolute URL whose host is an IP
// literal or a fully qualified domain name
func (v *URLValidator) IsValid(raw string) bool {
	if err := v.validate.Var(raw, "required,url"); err != nil {
		return false
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	host := parsed.Hostname()
	if host == "" {
		return false
	}
	if net.ParseIP(host) != nil {
		return true
	}
	return v.validate.Var(host, "fqdn") == nil
}
