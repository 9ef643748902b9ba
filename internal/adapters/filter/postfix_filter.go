package filter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/mikey/llm-phishing-detector/internal/config"
	"github.com/mikey/llm-phishing-detector/internal/core"
	"github.com/mikey/llm-phishing-detector/internal/mailparse"
	"go.uber.org/zap"
)

// Headers stamped on every relayed message
const (
	HeaderStatus        = "X-Phishing-Status"
	HeaderURLs          = "X-Phishing-URLs"
	HeaderAttachments   = "X-Phishing-Attachments"
	HeaderSummary       = "X-Phishing-Summary"
	HeaderAnalysisError = "X-Phishing-Analysis-Error"
)

// Values of the X-Phishing-Status header
const (
	StatusPhishing = "phishing"
	StatusClean    = "clean"
	StatusError    = "error"
)

const maxHeaderValue = 500

// Analyzer runs the phishing analysis for one email
type Analyzer interface {
	AnalyzeEmail(ctx context.Context, req *core.AnalysisRequest) (*core.AnalysisResponse, error)
}

// EmailFilter is a long-running mail front-end
type EmailFilter interface {
	Start() error
	Stop() error
}

// PostfixFilter implements a Postfix content filter
type PostfixFilter struct {
	service Analyzer
	cfg     config.SMTPConfig
	logger  *zap.Logger
	server  *smtp.Server
}

// NewPostfixFilter creates a new Postfix content filter
func NewPostfixFilter(service Analyzer, cfg config.SMTPConfig, logger *zap.Logger) *PostfixFilter {
	if cfg.SubjectPrefix == "" && cfg.ModifySubject {
		cfg.SubjectPrefix = "[**PHISHING**] "
	}
	if cfg.AnalysisTimeout <= 0 {
		cfg.AnalysisTimeout = 30 * time.Second
	}

	return &PostfixFilter{
		service: service,
		cfg:     cfg,
		logger:  logger,
	}
}

// Start starts the Postfix filter service
func (f *PostfixFilter) Start() error {
	f.server = smtp.NewServer(&smtpBackend{filter: f})

	f.server.Addr = f.cfg.ListenAddress
	f.server.Domain = "localhost"
	f.server.ReadTimeout = 30 * time.Second
	f.server.WriteTimeout = 30 * time.Second
	f.server.MaxMessageBytes = 30 * 1024 * 1024
	f.server.MaxRecipients = 50

	f.logger.Info("Postfix filter starting", zap.String("address", f.cfg.ListenAddress))

	go func() {
		if err := f.server.ListenAndServe(); err != nil && err != smtp.ErrServerClosed {
			f.logger.Error("SMTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop stops the Postfix filter service
func (f *PostfixFilter) Stop() error {
	if f.server != nil {
		return f.server.Close()
	}
	return nil
}

// process analyses a raw message and returns it with the phishing headers added.
// Analysis failures never reject mail; they are reported in a header instead.
// A nil message means the mail must be rejected.
func (f *PostfixFilter) process(raw []byte) ([]byte, bool) {
	req, err := mailparse.Parse(bytes.NewReader(raw))
	if err != nil {
		f.logger.Warn("Failed to parse email message", zap.Error(err))
		return stampMessage(raw, nil, err, ""), false
	}

	ctx, cancel := context.WithTimeout(context.Background(), f.cfg.AnalysisTimeout)
	defer cancel()

	resp, err := f.service.AnalyzeEmail(ctx, req)
	if err != nil {
		f.logger.Error("Failed to analyze email", zap.Error(err))
		return stampMessage(raw, nil, err, ""), false
	}

	phishing := IsPhishing(resp)
	if phishing && f.cfg.BlockPhishing {
		return nil, true
	}

	newSubject := ""
	if phishing && f.cfg.ModifySubject && !strings.HasPrefix(req.Subject, f.cfg.SubjectPrefix) {
		newSubject = f.cfg.SubjectPrefix + req.Subject
	}

	return stampMessage(raw, resp, nil, newSubject), phishing
}

// IsPhishing reports whether the analysis flagged any URL or attachment
func IsPhishing(resp *core.AnalysisResponse) bool {
	return len(resp.PhishingURLs) > 0 || len(resp.SuspiciousAttachments) > 0
}

// stampMessage prepends the phishing headers to raw and, when newSubject is
// set, replaces the Subject field. The body is left byte-for-byte intact.
func stampMessage(raw []byte, resp *core.AnalysisResponse, analysisErr error, newSubject string) []byte {
	var out bytes.Buffer

	switch {
	case analysisErr != nil:
		fmt.Fprintf(&out, "%s: %s\r\n", HeaderStatus, StatusError)
		fmt.Fprintf(&out, "%s: %s\r\n", HeaderAnalysisError, headerValue(analysisErr.Error()))
	default:
		status := StatusClean
		if IsPhishing(resp) {
			status = StatusPhishing
		}
		urls := make([]string, 0, len(resp.PhishingURLs))
		for _, v := range resp.PhishingURLs {
			urls = append(urls, v.URL)
		}
		fmt.Fprintf(&out, "%s: %s\r\n", HeaderStatus, status)
		if len(urls) > 0 {
			fmt.Fprintf(&out, "%s: %s\r\n", HeaderURLs, headerValue(strings.Join(urls, ", ")))
		}
		if len(resp.SuspiciousAttachments) > 0 {
			fmt.Fprintf(&out, "%s: %s\r\n", HeaderAttachments, headerValue(strings.Join(resp.SuspiciousAttachments, ", ")))
		}
		fmt.Fprintf(&out, "%s: %s\r\n", HeaderSummary, headerValue(resp.LLMAnalysis.Summary))
	}

	if newSubject == "" {
		out.Write(raw)
		return out.Bytes()
	}

	headerEnd := headerLength(raw)
	replaced := false
	skipping := false
	for _, line := range strings.SplitAfter(string(raw[:headerEnd]), "\n") {
		if line == "" {
			continue
		}
		if skipping && (line[0] == ' ' || line[0] == '\t') {
			continue
		}
		skipping = false
		if !replaced && len(line) > 8 && strings.EqualFold(line[:8], "subject:") {
			fmt.Fprintf(&out, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", newSubject))
			replaced = true
			skipping = true
			continue
		}
		out.WriteString(line)
		if !strings.HasSuffix(line, "\n") {
			out.WriteString("\r\n")
		}
	}
	if !replaced {
		fmt.Fprintf(&out, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", newSubject))
	}
	out.Write(raw[headerEnd:])

	return out.Bytes()
}

// headerLength returns the offset just past the last header line
func headerLength(raw []byte) int {
	if i := bytes.Index(raw, []byte("\r\n\r\n")); i >= 0 {
		return i + 2
	}
	if i := bytes.Index(raw, []byte("\n\n")); i >= 0 {
		return i + 1
	}
	return len(raw)
}

func headerValue(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > maxHeaderValue {
		s = s[:maxHeaderValue]
	}
	return mime.QEncoding.Encode("utf-8", strings.ToValidUTF8(s, ""))
}

// relay sends the processed email to the downstream MTA
func (f *PostfixFilter) relay(sender string, recipients []string, emailData []byte) error {
	relayAddr := net.JoinHostPort(f.cfg.RelayAddress, strconv.Itoa(f.cfg.RelayPort))

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	conn, err := net.DialTimeout("tcp", relayAddr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to relay: %w", err)
	}

	if err := conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}

	if err := c.Mail(sender, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	recipientOK := false
	for _, recipient := range recipients {
		if err := c.Rcpt(recipient, nil); err != nil {
			f.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", recipient),
				zap.Error(err))
		} else {
			recipientOK = true
		}
	}
	if !recipientOK {
		return fmt.Errorf("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}
	if _, err := wc.Write(emailData); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send email data: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		f.logger.Warn("QUIT command failed", zap.Error(err))
	}

	return nil
}

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	filter *PostfixFilter
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{filter: b.filter}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	filter     *PostfixFilter
	sender     string
	recipients []string
}

// Reset resets the session state
func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = nil
}

// Mail sets the sender address
func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

// Rcpt adds a recipient
func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data analyses the message, then rejects or relays it
func (s *smtpSession) Data(r io.Reader) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		s.filter.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	stamped, phishing := s.filter.process(raw)

	if stamped == nil {
		s.filter.logger.Info("Rejecting phishing email", zap.String("from", s.sender))
		return &smtp.SMTPError{
			Code:         550,
			EnhancedCode: smtp.EnhancedCode{5, 7, 1},
			Message:      "Message rejected as phishing",
		}
	}

	if s.filter.cfg.RelayEnabled {
		if err := s.filter.relay(s.sender, s.recipients, stamped); err != nil {
			s.filter.logger.Error("Failed to relay email",
				zap.Error(err),
				zap.String("sender", s.sender))
			return err
		}
	} else {
		s.filter.logger.Warn("Relay disabled, this is likely a misconfiguration")
	}

	s.filter.logger.Info("Processed email",
		zap.String("from", s.sender),
		zap.Int("recipients", len(s.recipients)),
		zap.Bool("phishing", phishing))

	return nil
}

// Logout handles SMTP logout
func (s *smtpSession) Logout() error {
	return nil
}
