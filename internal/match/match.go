// Package match filters a dataset snapshot against a completed query.
package match

import (
	"strings"
	"time"

	"github.com/sanad-aid/sanadbot/internal/dataset"
)

// DefaultCountryCode is the WhatsApp national prefix for the stock deployment.
const DefaultCountryCode = "963"

// Query is derived from a completed dialogue session.
type Query struct {
	Service     string
	Governorate string
	AsOf        time.Time
}

// Result is one presentable match.
type Result struct {
	Organization  string
	ContactPhone  string
	Start         *time.Time
	End           time.Time
	DaysRemaining int
	// ContactLink is empty when the phone does not follow the local
	// trunk-prefix pattern.
	ContactLink string
}

// Matcher applies the filtering rules. The zero value uses DefaultCountryCode.
type Matcher struct {
	CountryCode string
}

// Match returns the active records matching the query, preserving snapshot
// row order. It is a pure function of its inputs.
func (m Matcher) Match(snapshot []dataset.Record, q Query) []Result {
	results := make([]Result, 0, len(snapshot))
	for _, rec := range snapshot {
		if strings.TrimSpace(rec.ServiceType) != strings.TrimSpace(q.Service) {
			continue
		}
		if strings.TrimSpace(rec.Governorate) != strings.TrimSpace(q.Governorate) {
			continue
		}
		// Unparseable end dates cannot prove the project is active.
		if rec.End == nil || !rec.End.After(q.AsOf) {
			continue
		}

		phone := stripWhitespace(rec.ContactPhone)
		results = append(results, Result{
			Organization:  rec.Organization,
			ContactPhone:  phone,
			Start:         rec.Start,
			End:           *rec.End,
			DaysRemaining: daysRemaining(*rec.End, q.AsOf),
			ContactLink:   m.ContactLink(phone),
		})
	}
	return results
}

// ContactLink builds a WhatsApp deep link from a whitespace-stripped phone.
// Only numbers starting with the local trunk prefix "09" produce a link;
// the national country code replaces the trunk prefix via the last 9 digits.
func (m Matcher) ContactLink(phone string) string {
	phone = stripWhitespace(phone)
	if !strings.HasPrefix(phone, "09") || len(phone) < 9 {
		return ""
	}
	code := m.CountryCode
	if code == "" {
		code = DefaultCountryCode
	}
	return "https://wa.me/" + code + phone[len(phone)-9:]
}

// daysRemaining counts whole days, truncated toward zero.
func daysRemaining(end, asOf time.Time) int {
	return int(end.Sub(asOf).Hours() / 24)
}

func stripWhitespace(s string) string {
	return strings.Join(strings.Fields(s), "")
}
