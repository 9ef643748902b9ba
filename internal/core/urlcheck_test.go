package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestURLValidator_IsValid(t *testing.T) {
	v := NewURLValidator()

	valid := []string{
		"http://example.com",
		"https://www.google.com/search?q=x",
		"http://192.168.1.10:8080/login",
		"https://xn--pypal-4ve.com/",
		"http://[2001:db8::1]/login",
		"https://mail.example.co.uk.",
	}
	for _, u := range valid {
		assert.True(t, v.IsValid(u), u)
	}

	invalid := []string{
		"",
		"not a url",
		"example.com",
		"/relative/path",
		"http://",
		"mailto:user@example.com",
		"http://localhost",
		"http://a",
		"http://-bad-.com",
		"http://exa_mple.com/",
	}
	for _, u := range invalid {
		assert.False(t, v.IsValid(u), u)
	}
}
