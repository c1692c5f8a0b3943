package match

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanad-aid/sanadbot/internal/dataset"
)

func datePtr(t time.Time) *time.Time { return &t }

var asOf = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func activeRecord(service, gov string) dataset.Record {
	return dataset.Record{
		Organization: "Org",
		ServiceType:  service,
		Governorate:  gov,
		ContactPhone: "0912345678",
		Start:        datePtr(asOf.AddDate(0, -1, 0)),
		End:          datePtr(asOf.AddDate(0, 1, 0)),
	}
}

func TestMatchTrimsWhitespaceAroundFields(t *testing.T) {
	snapshot := []dataset.Record{activeRecord(" صحة ", "حلب")}

	got := Matcher{}.Match(snapshot, Query{Service: "صحة", Governorate: "حلب", AsOf: asOf})
	require.Len(t, got, 1)

	got = Matcher{}.Match(snapshot, Query{Service: "صحة", Governorate: "إدلب", AsOf: asOf})
	assert.Empty(t, got)
}

func TestMatchStrictEndDateComparison(t *testing.T) {
	endsNow := activeRecord("صحة", "حلب")
	endsNow.End = datePtr(asOf)
	endsTomorrow := activeRecord("صحة", "حلب")
	endsTomorrow.End = datePtr(asOf.AddDate(0, 0, 1))

	got := Matcher{}.Match([]dataset.Record{endsNow, endsTomorrow}, Query{Service: "صحة", Governorate: "حلب", AsOf: asOf})
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].DaysRemaining)
}

func TestMatchExcludesNilEndDate(t *testing.T) {
	rec := activeRecord("صحة", "حلب")
	rec.End = nil

	got := Matcher{}.Match([]dataset.Record{rec}, Query{Service: "صحة", Governorate: "حلب", AsOf: asOf})
	assert.Empty(t, got)
}

func TestMatchPreservesSnapshotOrder(t *testing.T) {
	a := activeRecord("صحة", "حلب")
	a.Organization = "Org A"
	a.End = datePtr(asOf.AddDate(0, 0, 3))
	b := activeRecord("صحة", "حلب")
	b.Organization = "Org B"
	b.End = datePtr(asOf.AddDate(0, 0, 30))
	c := activeRecord("صحة", "حلب")
	c.Organization = "Org C"
	c.End = datePtr(asOf.AddDate(0, 0, 7))

	got := Matcher{}.Match([]dataset.Record{a, b, c}, Query{Service: "صحة", Governorate: "حلب", AsOf: asOf})
	require.Len(t, got, 3)
	assert.Equal(t, "Org A", got[0].Organization)
	assert.Equal(t, "Org B", got[1].Organization)
	assert.Equal(t, "Org C", got[2].Organization)
}

func TestMatchIsDeterministic(t *testing.T) {
	snapshot := []dataset.Record{
		activeRecord("صحة", "حلب"),
		activeRecord("تعليم", "حلب"),
		activeRecord("صحة", "دمشق"),
	}
	q := Query{Service: "صحة", Governorate: "حلب", AsOf: asOf}

	first := Matcher{}.Match(snapshot, q)
	second := Matcher{}.Match(snapshot, q)
	assert.Equal(t, first, second)
}

func TestMatchEmptySnapshot(t *testing.T) {
	got := Matcher{}.Match(nil, Query{Service: "صحة", Governorate: "حلب", AsOf: asOf})
	assert.Empty(t, got)
}

func TestMatchUnknownQueryValues(t *testing.T) {
	snapshot := []dataset.Record{activeRecord("صحة", "حلب")}
	got := Matcher{}.Match(snapshot, Query{Service: "no-such-service", Governorate: "حلب", AsOf: asOf})
	assert.Empty(t, got)
}

func TestContactLink(t *testing.T) {
	m := Matcher{}

	assert.Equal(t, "https://wa.me/963912345678", m.ContactLink("0912345678"))
	assert.Equal(t, "https://wa.me/963955000111", m.ContactLink("09 5500 0111"))
	assert.Empty(t, m.ContactLink("321000"))
	assert.Empty(t, m.ContactLink(""))
	assert.Empty(t, m.ContactLink("+963912345678"))
}

func TestContactLinkCustomCountryCode(t *testing.T) {
	m := Matcher{CountryCode: "90"}
	assert.Equal(t, "https://wa.me/90912345678", m.ContactLink("0912345678"))
}

func TestMatchScenarioTenDaysRemaining(t *testing.T) {
	rec := dataset.Record{
		Organization: "Org A",
		ServiceType:  " تعليم",
		Governorate:  "حلب ",
		ContactPhone: "0955000111",
		Start:        datePtr(asOf.AddDate(0, -2, 0)),
		End:          datePtr(asOf.AddDate(0, 0, 10)),
	}

	got := Matcher{}.Match([]dataset.Record{rec}, Query{Service: "تعليم", Governorate: "حلب", AsOf: asOf})
	require.Len(t, got, 1)

	res := got[0]
	assert.Equal(t, "Org A", res.Organization)
	assert.Equal(t, 10, res.DaysRemaining)
	assert.Equal(t, "https://wa.me/963955000111", res.ContactLink)
	assert.Equal(t, "0955000111", res.ContactPhone)
}
