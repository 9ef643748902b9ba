package mailparse

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"regexp"
	"strings"

	"github.com/mikey/llm-phishing-detector/internal/core"
	"golang.org/x/net/html"
	"golang.org/x/text/encoding/htmlindex"
)

var urlPattern = regexp.MustCompile(`https?://[^\s<>"'(){}\[\]]+`)

var wordDecoder = &mime.WordDecoder{CharsetReader: charsetReader}

type header interface {
	Get(key string) string
}

type content struct {
	plain       strings.Builder
	html        strings.Builder
	hrefs       []string
	attachments []string
}

// Parse reads an RFC 5322 message and returns the fields used for analysis:
// decoded subject, text body, linked URLs and attachment filenames
func Parse(r io.Reader) (*core.AnalysisRequest, error) {
	msg, err := mail.ReadMessage(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}

	var c content
	if err := walk(msg.Header, msg.Body, &c, true); err != nil {
		return nil, err
	}

	body := strings.TrimSpace(c.plain.String())
	if body == "" {
		body = strings.TrimSpace(c.html.String())
	}

	return &core.AnalysisRequest{
		Subject:             DecodeHeader(msg.Header.Get("Subject")),
		Body:                body,
		URLs:                dedupe(append(ExtractURLs(c.plain.String()), c.hrefs...)),
		AttachmentFilenames: append([]string{}, c.attachments...),
	}, nil
}

// DecodeHeader decodes RFC 2047 encoded words, returning the raw value when decoding fails
func DecodeHeader(value string) string {
	decoded, err := wordDecoder.DecodeHeader(value)
	if err != nil {
		return value
	}
	return decoded
}

// ExtractURLs returns the http and https URLs found in text, in order of appearance
func ExtractURLs(text string) []string {
	matches := urlPattern.FindAllString(text, -1)
	urls := make([]string, 0, len(matches))
	for _, m := range matches {
		m = strings.TrimRight(m, ".,;:!?")
		if m != "" {
			urls = append(urls, m)
		}
	}
	return dedupe(urls)
}

func walk(h header, body io.Reader, c *content, topLevel bool) error {
	mediaType, params, err := mime.ParseMediaType(h.Get("Content-Type"))
	if err != nil {
		mediaType, params = "text/plain", map[string]string{}
	}

	// multipart.Reader decodes quoted-printable parts itself
	if topLevel {
		body = transferDecoder(h.Get("Content-Transfer-Encoding"), body)
	} else if strings.EqualFold(h.Get("Content-Transfer-Encoding"), "base64") {
		body = base64.NewDecoder(base64.StdEncoding, body)
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		boundary := params["boundary"]
		if boundary == "" {
			return fmt.Errorf("multipart message without boundary")
		}
		mr := multipart.NewReader(body, boundary)
		for {
			part, err := mr.NextPart()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to read multipart section: %w", err)
			}
			if err := walk(part.Header, part, c, false); err != nil {
				return err
			}
		}
	}

	disposition, dispParams, _ := mime.ParseMediaType(h.Get("Content-Disposition"))
	filename := dispParams["filename"]
	if filename == "" {
		filename = params["name"]
	}
	if disposition == "attachment" || filename != "" {
		if filename != "" {
			c.attachments = append(c.attachments, DecodeHeader(filename))
		}
		return nil
	}

	switch mediaType {
	case "text/plain":
		text, err := readText(body, params["charset"])
		if err != nil {
			return err
		}
		c.plain.WriteString(text)
		c.plain.WriteString("\n")
	case "text/html":
		raw, err := readText(body, params["charset"])
		if err != nil {
			return err
		}
		text, hrefs := scanHTML(raw)
		c.html.WriteString(text)
		c.html.WriteString("\n")
		c.hrefs = append(c.hrefs, hrefs...)
	}

	return nil
}

func transferDecoder(encoding string, r io.Reader) io.Reader {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "base64":
		return base64.NewDecoder(base64.StdEncoding, r)
	case "quoted-printable":
		return quotedprintable.NewReader(r)
	default:
		return r
	}
}

func readText(r io.Reader, charset string) (string, error) {
	decoded, err := charsetReader(charset, r)
	if err != nil {
		decoded = r
	}
	data, err := io.ReadAll(decoded)
	if err != nil {
		return "", fmt.Errorf("failed to read message body: %w", err)
	}
	return string(bytes.ToValidUTF8(data, nil)), nil
}

func charsetReader(charset string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(charset)) {
	case "", "utf-8", "utf8", "us-ascii":
		return input, nil
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", charset, err)
	}
	return enc.NewDecoder().Reader(input), nil
}

// scanHTML returns the visible text of an HTML document and the http(s) links it references
func scanHTML(doc string) (string, []string) {
	var text strings.Builder
	var hrefs []string
	skip := 0

	z := html.NewTokenizer(strings.NewReader(doc))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(text.String()), " "), hrefs
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if tok.Data == "script" || tok.Data == "style" {
				if tok.Type == html.StartTagToken {
					skip++
				}
				continue
			}
			for _, attr := range tok.Attr {
				if attr.Key != "href" {
					continue
				}
				href := strings.TrimSpace(attr.Val)
				lower := strings.ToLower(href)
				if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
					hrefs = append(hrefs, href)
				}
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if (string(name) == "script" || string(name) == "style") && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip == 0 {
				text.Write(z.Text())
				text.WriteString(" ")
			}
		}
	}
}

func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
