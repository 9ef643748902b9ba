package filter

import (
	"context"
	"errors"
	"io"
	"net"
	"net/mail"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/mikey/llm-phishing-detector/internal/config"
	"github.com/mikey/llm-phishing-detector/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testMessage = "From: attacker@example.net\r\n" +
	"To: victim@example.org\r\n" +
	"Subject: Account locked\r\n" +
	"Content-Type: text/plain\r\n" +
	"\r\n" +
	"Unlock at http://192.168.1.10/login now.\r\n"

type fakeAnalyzer struct {
	resp *core.AnalysisResponse
	err  error
	got  *core.AnalysisRequest
}

func (f *fakeAnalyzer) AnalyzeEmail(_ context.Context, req *core.AnalysisRequest) (*core.AnalysisResponse, error) {
	f.got = req
	return f.resp, f.err
}

func phishingResponse() *core.AnalysisResponse {
	return &core.AnalysisResponse{
		PhishingURLs: []core.URLVerdict{
			{URL: "http://192.168.1.10/login", Verdict: "Given website is a phishing site"},
		},
		SuspiciousAttachments: []string{},
		LLMAnalysis: core.NarrativeAnalysis{
			Summary:         "Credential\r\nharvesting attempt.",
			ThreatPhrases:   []string{"Account locked"},
			Recommendations: []string{},
		},
	}
}

func TestStampMessage_Clean(t *testing.T) {
	resp := &core.AnalysisResponse{
		PhishingURLs:          []core.URLVerdict{},
		SuspiciousAttachments: []string{},
		LLMAnalysis:           core.DefaultNarrativeAnalysis(),
	}

	out := stampMessage([]byte(testMessage), resp, nil, "")
	msg, err := mail.ReadMessage(strings.NewReader(string(out)))
	require.NoError(t, err)

	assert.Equal(t, StatusClean, msg.Header.Get(HeaderStatus))
	assert.Empty(t, msg.Header.Get(HeaderURLs))
	assert.Equal(t, core.FallbackSummary, msg.Header.Get(HeaderSummary))
	assert.Equal(t, "Account locked", msg.Header.Get("Subject"))
	assert.True(t, strings.HasSuffix(string(out), testMessage))
}

func TestStampMessage_PhishingWithSubject(t *testing.T) {
	resp := phishingResponse()
	resp.SuspiciousAttachments = []string{"invoice.exe"}

	raw := strings.Replace(testMessage, "Subject: Account locked\r\n", "Subject: Account\r\n locked\r\n", 1)
	out := stampMessage([]byte(raw), resp, nil, "[**PHISHING**] Account locked")

	msg, err := mail.ReadMessage(strings.NewReader(string(out)))
	require.NoError(t, err)

	assert.Equal(t, StatusPhishing, msg.Header.Get(HeaderStatus))
	assert.Equal(t, "http://192.168.1.10/login", msg.Header.Get(HeaderURLs))
	assert.Equal(t, "invoice.exe", msg.Header.Get(HeaderAttachments))
	assert.Equal(t, "Credential harvesting attempt.", msg.Header.Get(HeaderSummary))
	assert.Equal(t, []string{"[**PHISHING**] Account locked"}, msg.Header["Subject"])
	assert.Equal(t, "attacker@example.net", msg.Header.Get("From"))

	body, err := io.ReadAll(msg.Body)
	require.NoError(t, err)
	assert.Equal(t, "Unlock at http://192.168.1.10/login now.\r\n", string(body))
}

func TestStampMessage_AnalysisError(t *testing.T) {
	out := stampMessage([]byte(testMessage), nil, errors.New("classifier\nunavailable"), "")

	msg, err := mail.ReadMessage(strings.NewReader(string(out)))
	require.NoError(t, err)
	assert.Equal(t, StatusError, msg.Header.Get(HeaderStatus))
	assert.Equal(t, "classifier unavailable", msg.Header.Get(HeaderAnalysisError))
	assert.Empty(t, msg.Header.Get(HeaderSummary))
}

func TestProcess(t *testing.T) {
	analyzer := &fakeAnalyzer{resp: phishingResponse()}
	f := NewPostfixFilter(analyzer, config.SMTPConfig{ModifySubject: true}, zap.NewNop())

	out, phishing := f.process([]byte(testMessage))
	require.NotNil(t, out)
	assert.True(t, phishing)
	assert.Equal(t, []string{"http://192.168.1.10/login"}, analyzer.got.URLs)
	assert.Equal(t, "Account locked", analyzer.got.Subject)

	msg, err := mail.ReadMessage(strings.NewReader(string(out)))
	require.NoError(t, err)
	assert.Equal(t, "[**PHISHING**] Account locked", msg.Header.Get("Subject"))
}

func TestProcess_Block(t *testing.T) {
	f := NewPostfixFilter(&fakeAnalyzer{resp: phishingResponse()}, config.SMTPConfig{BlockPhishing: true}, zap.NewNop())

	out, phishing := f.process([]byte(testMessage))
	assert.Nil(t, out)
	assert.True(t, phishing)

	session := &smtpSession{filter: f, sender: "attacker@example.net", recipients: []string{"victim@example.org"}}
	err := session.Data(strings.NewReader(testMessage))

	var smtpErr *smtp.SMTPError
	require.True(t, errors.As(err, &smtpErr))
	assert.Equal(t, 550, smtpErr.Code)
}

func TestProcess_AnalysisErrorFailsOpen(t *testing.T) {
	f := NewPostfixFilter(&fakeAnalyzer{err: errors.New("boom")}, config.SMTPConfig{BlockPhishing: true}, zap.NewNop())

	out, phishing := f.process([]byte(testMessage))
	require.NotNil(t, out)
	assert.False(t, phishing)
	assert.Contains(t, string(out), HeaderStatus+": "+StatusError)
}

type captureBackend struct {
	messages chan capturedMessage
}

type capturedMessage struct {
	from string
	to   []string
	data string
}

func (b *captureBackend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &captureSession{backend: b}, nil
}

type captureSession struct {
	backend *captureBackend
	msg     capturedMessage
}

func (s *captureSession) Reset()        { s.msg = capturedMessage{} }
func (s *captureSession) Logout() error { return nil }

func (s *captureSession) Mail(from string, _ *smtp.MailOptions) error {
	s.msg.from = from
	return nil
}

func (s *captureSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.msg.to = append(s.msg.to, to)
	return nil
}

func (s *captureSession) Data(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.msg.data = string(data)
	s.backend.messages <- s.msg
	return nil
}

func TestSessionRelaysStampedMessage(t *testing.T) {
	backend := &captureBackend{messages: make(chan capturedMessage, 1)}
	relay := smtp.NewServer(backend)
	relay.Domain = "localhost"

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = relay.Serve(l) }()
	defer relay.Close()

	host, port, err := net.SplitHostPort(l.Addr().String())
	require.NoError(t, err)
	portNum, err := strconv.Atoi(port)
	require.NoError(t, err)

	f := NewPostfixFilter(&fakeAnalyzer{resp: phishingResponse()}, config.SMTPConfig{
		RelayEnabled: true,
		RelayAddress: host,
		RelayPort:    portNum,
	}, zap.NewNop())

	session := &smtpSession{filter: f}
	require.NoError(t, session.Mail("attacker@example.net", nil))
	require.NoError(t, session.Rcpt("victim@example.org", nil))
	require.NoError(t, session.Data(strings.NewReader(testMessage)))

	select {
	case got := <-backend.messages:
		assert.Equal(t, "attacker@example.net", got.from)
		assert.Equal(t, []string{"victim@example.org"}, got.to)
		assert.Contains(t, got.data, HeaderStatus+": "+StatusPhishing)
		assert.Contains(t, got.data, "Subject: Account locked")
	case <-time.After(5 * time.Second):
		t.Fatal("relay did not receive the message")
	}
}
