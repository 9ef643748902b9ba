package classifier

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/mikey/llm-phishing-detector/internal/core"
	"github.com/mikey/llm-phishing-detector/internal/whitelist"
	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"
)

// PhishingVerdict is the label the heuristic gives a URL scoring at or above the threshold
const PhishingVerdict = "Given website is a phishing site"

const longURLLength = 75

var shorteners = map[string]struct{}{
	"bit.ly":      {},
	"tinyurl.com": {},
	"goo.gl":      {},
	"t.co":        {},
	"ow.ly":       {},
	"is.gd":       {},
	"buff.ly":     {},
	"cutt.ly":     {},
	"rebrand.ly":  {},
	"shorturl.at": {},
}

var suspiciousTLDs = map[string]struct{}{
	"tk":      {},
	"ml":      {},
	"ga":      {},
	"cf":      {},
	"gq":      {},
	"zip":     {},
	"mov":     {},
	"xyz":     {},
	"top":     {},
	"work":    {},
	"click":   {},
	"country": {},
	"loan":    {},
}

var sensitiveKeywords = []string{
	"login", "signin", "verify", "account", "secure", "update",
	"banking", "confirm", "password", "webscr", "wallet",
}

// HeuristicOptions configures the lexical classifier
type HeuristicOptions struct {
	Threshold     float64
	BenignLabel   string
	PhishingLabel string
}

// Heuristic is a local VerdictProvider that scores lexical URL features
type Heuristic struct {
	trusted       *whitelist.Checker
	threshold     float64
	benignLabel   string
	phishingLabel string
	logger        *zap.Logger
}

// NewHeuristic creates a new heuristic classifier. Hosts under a trusted
// domain are always benign.
func NewHeuristic(opts HeuristicOptions, trusted *whitelist.Checker, logger *zap.Logger) *Heuristic {
	if opts.Threshold <= 0 {
		opts.Threshold = 0.5
	}
	if opts.BenignLabel == "" {
		opts.BenignLabel = core.BenignVerdict
	}
	if opts.PhishingLabel == "" {
		opts.PhishingLabel = PhishingVerdict
	}

	return &Heuristic{
		trusted:       trusted,
		threshold:     opts.Threshold,
		benignLabel:   opts.BenignLabel,
		phishingLabel: opts.PhishingLabel,
		logger:        logger,
	}
}

// Predict returns the phishing label when the URL score reaches the threshold
func (h *Heuristic) Predict(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse URL: %w", err)
	}

	if h.trusted.IsWhitelisted(u.Hostname()) {
		return h.benignLabel, nil
	}

	score, features, err := h.Score(rawURL)
	if err != nil {
		return "", err
	}

	h.logger.Debug("Scored URL",
		zap.String("url", rawURL),
		zap.Float64("score", score),
		zap.Strings("features", features))

	if score >= h.threshold {
		return h.phishingLabel, nil
	}
	return h.benignLabel, nil
}

// Score returns the phishing score of rawURL in [0, 1] and the features that fired
func (h *Heuristic) Score(rawURL string) (float64, []string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return 0, nil, fmt.Errorf("URL %q has no host", rawURL)
	}

	var score float64
	var features []string
	add := func(name string, weight float64) {
		score += weight
		features = append(features, name)
	}

	if net.ParseIP(host) != nil {
		add("ip_host", 0.5)
	} else {
		suffix, _ := publicsuffix.PublicSuffix(host)
		registrable, err := publicsuffix.EffectiveTLDPlusOne(host)
		if err != nil {
			registrable = host
		}

		if strings.Contains(strings.TrimSuffix(registrable, "."+suffix), "-") {
			add("hyphenated_domain", 0.15)
		}
		if sub := strings.TrimSuffix(strings.TrimSuffix(host, registrable), "."); sub != "" {
			if strings.Count(sub, ".")+1 >= 3 {
				add("deep_subdomain", 0.2)
			}
		}
		if strings.Contains(host, "xn--") {
			add("punycode", 0.3)
		}
		if _, ok := shorteners[registrable]; ok {
			add("shortener", 0.25)
		}
		if _, ok := suspiciousTLDs[suffix]; ok {
			add("suspicious_tld", 0.2)
		}
	}

	if strings.Contains(rawURL, "@") {
		add("at_sign", 0.4)
	}
	if len(rawURL) > longURLLength {
		add("long_url", 0.15)
	}
	if u.Scheme != "https" {
		add("no_https", 0.1)
	}
	if strings.Contains(u.Path, "//") {
		add("redirect_path", 0.2)
	}

	lower := strings.ToLower(rawURL)
	hits := 0
	for _, kw := range sensitiveKeywords {
		if strings.Contains(lower, kw) {
			hits++
		}
	}
	if hits > 0 {
		add("sensitive_keywords", min(0.1*float64(hits), 0.3))
	}

	return min(score, 1), features, nil
}
