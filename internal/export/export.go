// Package export renders generated content for download and printing.
package export

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/sahayak-edu/sahayak/internal/domain"
)

var unsafeRun = regexp.MustCompile(`[^a-z0-9]+`)

// slug reduces s to lowercase ASCII letters, digits and single hyphens, so
// the result is always one safe path element. fallback is used when
// nothing survives, e.g. for a title written entirely in Devanagari.
func slug(s, fallback string) string {
	out := strings.Trim(unsafeRun.ReplaceAllString(strings.ToLower(s), "-"), "-")
	if out == "" {
		return fallback
	}
	return out
}

// Filename is the download name of a worksheet, e.g.
// "grade-8-worksheet-mathematics.txt".
func Filename(grade domain.Grade, subject string) string {
	name := slug(subject, slug(domain.DefaultSubject, "worksheet"))
	return fmt.Sprintf("grade-%d-worksheet-%s.txt", int(grade), name)
}

// HTMLFilename is Filename with an .html extension.
func HTMLFilename(grade domain.Grade, subject string) string {
	return strings.TrimSuffix(Filename(grade, subject), ".txt") + ".html"
}

// LibraryFilename is the download name of a saved library item.
func LibraryFilename(title string) string {
	return slug(title, "library-item") + ".txt"
}

// ConversationFilename names an assistant transcript by its date.
func ConversationFilename(day time.Time) string {
	return "sahayak-conversation-" + day.Format("2006-01-02") + ".txt"
}

// WriteText writes the worksheet body exactly as generated.
func WriteText(w io.Writer, ws domain.Worksheet) error {
	_, err := io.WriteString(w, ws.Content)
	return err
}

// WriteConversation writes "You: ..." and "SAHAYAK: ..." turns separated by a
// blank line.
func WriteConversation(w io.Writer, messages []domain.ChatMessage) error {
	parts := make([]string, 0, len(messages))
	for _, m := range messages {
		speaker := "SAHAYAK"
		if m.Role == domain.RoleUser {
			speaker = "You"
		}
		parts = append(parts, speaker+": "+m.Content)
	}
	_, err := io.WriteString(w, strings.Join(parts, "\n\n"))
	return err
}

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.Table, extension.Strikethrough),
	goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
)

// RenderHTML returns a standalone printable page for a worksheet. The body
// is treated as markdown with hard line breaks so plain-text worksheets keep
// their layout.
func RenderHTML(ws domain.Worksheet) ([]byte, error) {
	var body bytes.Buffer
	if err := markdown.Convert([]byte(ws.Content), &body); err != nil {
		return nil, fmt.Errorf("rendering worksheet: %w", err)
	}

	var out bytes.Buffer
	fmt.Fprintf(&out, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: "Noto Sans", Arial, sans-serif; max-width: 48rem; margin: 2rem auto; line-height: 1.6; }
h1 { font-size: 1.4rem; border-bottom: 1px solid #999; padding-bottom: .3rem; }
@media print { body { margin: 0; } }
</style>
</head>
<body>
<h1>%s</h1>
`, html.EscapeString(ws.Title), html.EscapeString(ws.Title))
	out.Write(body.Bytes())
	out.WriteString("</body>\n</html>\n")
	return out.Bytes(), nil
}
