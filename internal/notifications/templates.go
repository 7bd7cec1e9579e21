package notifications

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Email bodies are authored in Markdown and rendered to HTML. Raw HTML in the
// source is not passed through, and interpolated values are escaped.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.Linkify),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

const (
	inviteSMSTemplate = "Cześć {name}! {inviter_name} zaprasza Cię na {event}. Twój kod: {code}. Link: {link}"

	inviteEmailSubject  = "Zaproszenie na Urodziny!"
	inviteEmailTemplate = `# Cześć %s!

**%s** zaprasza Cię na %s.

Twój kod dostępu: **%s**

[Potwierdź obecność (RSVP)](%s)

Lub otwórz link: %s
`

	rsvpEmailSubject  = "Potwierdzenie RSVP - Urodziny Gemini"
	rsvpEmailTemplate = `# Cześć %s!

Dzięki za aktualizację RSVP.

Status: %s
`
)

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", "*", `\*`, "_", `\_`, "[", `\[`, "]", `\]`,
	"<", `\<`, ">", `\>`, "#", `\#`, "!", `\!`, "|", `\|`, "~", `\~`,
)

func escapeMarkdown(value string) string {
	return markdownEscaper.Replace(value)
}

// RenderMarkdown converts a Markdown document to an HTML fragment.
func RenderMarkdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("notifications: render markdown: %w", err)
	}
	return buf.String(), nil
}

func inviteSMS(r Recipient, event string) string {
	msg := strings.ReplaceAll(inviteSMSTemplate, "{event}", event)
	return Personalize(msg, r)
}

func inviteEmailHTML(r Recipient, event string) (string, error) {
	return RenderMarkdown(fmt.Sprintf(inviteEmailTemplate,
		escapeMarkdown(r.Name),
		escapeMarkdown(r.InviterName),
		escapeMarkdown(event),
		escapeMarkdown(r.Code),
		r.Link,
		r.Link,
	))
}

func rsvpEmailHTML(name string, attending bool) (string, error) {
	status := "❌ Nie będzie mnie"
	if attending {
		status = "✅ Będę"
	}
	return RenderMarkdown(fmt.Sprintf(rsvpEmailTemplate, escapeMarkdown(name), status))
}
