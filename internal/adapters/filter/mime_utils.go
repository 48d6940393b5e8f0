package filter

import (
	"html"
	"io"
	"regexp"
	"strings"

	_ "github.com/emersion/go-message/charset"

	"github.com/emersion/go-message"
	"github.com/emersion/go-message/mail"
)

var htmlTag = regexp.MustCompile(`<[^>]*>`)

// extractTextFromMessage returns the subject and readable body of a message.
// text/plain parts are preferred; HTML parts are used with their tags
// stripped only when no plain text is present. Attachments are skipped.
func extractTextFromMessage(r io.Reader) (string, error) {
	mr, err := mail.CreateReader(r)
	if err != nil && !message.IsUnknownCharset(err) {
		return "", err
	}
	defer mr.Close()

	subject, _ := mr.Header.Subject()

	var plain, markup strings.Builder
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil && !message.IsUnknownCharset(err) {
			// Keep whatever was readable before the malformed part
			break
		}

		h, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}

		contentType, _, _ := h.ContentType()
		switch {
		case contentType == "", strings.HasPrefix(contentType, "text/plain"):
			if _, err := io.Copy(&plain, part.Body); err != nil {
				continue
			}
			plain.WriteString("\n")
		case strings.HasPrefix(contentType, "text/html"):
			if _, err := io.Copy(&markup, part.Body); err != nil {
				continue
			}
			markup.WriteString("\n")
		}
	}

	body := plain.String()
	if strings.TrimSpace(body) == "" {
		body = html.UnescapeString(htmlTag.ReplaceAllString(markup.String(), " "))
	}

	if subject == "" {
		return body, nil
	}
	return subject + "\n\n" + body, nil
}
