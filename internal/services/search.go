package services

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"doctorportal-be/internal/models"
	"doctorportal-be/internal/utils"
)

// FilterContacts keeps contacts whose name contains the query, ignoring case
// and accents, or whose phone contains it. An empty query keeps everything.
func FilterContacts(contacts []models.Contact, query string) []models.Contact {
	query = strings.TrimSpace(query)
	if query == "" {
		return contacts
	}

	m := newMatcher(query)
	out := make([]models.Contact, 0, len(contacts))
	for _, c := range contacts {
		if m.matchName(c.Name) || m.matchPhone(c.Phone) {
			out = append(out, c)
		}
	}
	return out
}

// RankContacts orders contacts by fuzzy similarity of their name to the
// query, best first. Phone matches that are not name matches follow in their
// original order.
func RankContacts(contacts []models.Contact, query string) []models.Contact {
	query = strings.TrimSpace(query)
	if query == "" {
		return contacts
	}

	names := make([]string, len(contacts))
	for i, c := range contacts {
		names[i] = utils.FoldText(c.Name)
	}

	out := make([]models.Contact, 0, len(contacts))
	seen := make(map[int]bool)
	for _, match := range fuzzy.Find(utils.FoldText(query), names) {
		out = append(out, contacts[match.Index])
		seen[match.Index] = true
	}

	m := newMatcher(query)
	for i, c := range contacts {
		if !seen[i] && m.matchPhone(c.Phone) {
			out = append(out, c)
		}
	}
	return out
}

type matcher struct {
	raw    string
	folded string
	digits string
}

func newMatcher(query string) matcher {
	m := matcher{raw: query, folded: utils.FoldText(query)}
	// Compare digits only when the query looks like a phone number.
	if strings.Trim(query, "0123456789 +-()") == "" {
		m.digits = utils.DigitsOnly(query)
	}
	return m
}

func (m matcher) matchName(name string) bool {
	return strings.Contains(utils.FoldText(name), m.folded)
}

func (m matcher) matchPhone(phone string) bool {
	if strings.Contains(phone, m.raw) {
		return true
	}
	return m.digits != "" && strings.Contains(utils.DigitsOnly(phone), m.digits)
}
