package notifications

import (
	"strings"

	"github.com/charlesng35/soiree/internal/models"
)

// Placeholder tokens understood by Personalize.
const (
	TokenName        = "{name}"
	TokenFullName    = "{fullname}"
	TokenCode        = "{code}"
	TokenInviterName = "{inviter_name}"
	TokenLink        = "{link}"
)

// Recipient carries the per-guest values substituted into a message.
type Recipient struct {
	Name        string
	Code        string
	InviterName string
	Link        string
}

// RecipientFor builds the substitution values for guest. inviter may be nil,
// in which case fallback is used for {inviter_name}.
func RecipientFor(guest *models.Guest, inviter *models.Guest, link, fallback string) Recipient {
	r := Recipient{Name: guest.Name, Code: guest.Code, InviterName: fallback, Link: link}
	if inviter != nil && strings.TrimSpace(inviter.Name) != "" {
		r.InviterName = inviter.Name
	}
	return r
}

// Personalize substitutes every occurrence of the placeholder tokens in tmpl.
// {name} is the first word of the name; values are inserted literally and are
// not themselves expanded.
func Personalize(tmpl string, r Recipient) string {
	first := ""
	if fields := strings.Fields(r.Name); len(fields) > 0 {
		first = fields[0]
	}
	return strings.NewReplacer(
		TokenName, first,
		TokenFullName, r.Name,
		TokenCode, r.Code,
		TokenInviterName, r.InviterName,
		TokenLink, r.Link,
	).Replace(tmpl)
}
