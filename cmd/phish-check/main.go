// phish-check runs the phishing detector against a single message or URL
// without starting the HTTP API.
//
// Usage:
//
//	# Analyze a message read from a file
//	phish-check analyze --file message.eml
//
//	# Analyze a message read from stdin
//	cat message.eml | phish-check analyze
//
//	# Look a URL up against Safe Browsing
//	phish-check url http://example.com/login
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
