package dataset

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = "اسم المنظمة,نوع الخدمة,المحافظة,رقم التواصل,بدء المشروع,انتهاء المشروع\n" +
	"Org A, تعليم,حلب ,0955000111,2025-01-01,2025-12-31\n" +
	"Org B,صحة,دمشق,321000,2025-02-01,not-a-date\n" +
	"Org C,غذاء,حمص,0911222333,,2025-10-01\n"

func newTestSource(t *testing.T, srv *httptest.Server) *SheetSource {
	t.Helper()
	src, err := NewSheetSource(SheetOptions{
		URL:    srv.URL,
		Client: srv.Client(),
	})
	require.NoError(t, err)
	return src
}

func TestSheetSourceFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	records, err := newTestSource(t, srv).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 3)

	first := records[0]
	assert.Equal(t, "Org A", first.Organization)
	assert.Equal(t, " تعليم", first.ServiceType)
	assert.Equal(t, "حلب ", first.Governorate)
	assert.Equal(t, "0955000111", first.ContactPhone)
	require.NotNil(t, first.Start)
	require.NotNil(t, first.End)
	assert.Equal(t, time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), *first.End)

	// Malformed end date keeps the row but leaves the date nil.
	assert.Nil(t, records[1].End)
	require.NotNil(t, records[1].Start)

	assert.Nil(t, records[2].Start)
	require.NotNil(t, records[2].End)
}

func TestSheetSourceFetchHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestSource(t, srv).Fetch(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestSheetSourceFetchMissingColumn(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("اسم المنظمة,نوع الخدمة\nOrg A,صحة\n"))
	}))
	defer srv.Close()

	_, err := newTestSource(t, srv).Fetch(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestSheetSourceSkipsShortRows(t *testing.T) {
	csv := "اسم المنظمة,نوع الخدمة,المحافظة,رقم التواصل,بدء المشروع,انتهاء المشروع\n" +
		"short,row\n" +
		"Org A,صحة,حلب,0912345678,2025-01-01,2025-12-31\n"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(csv))
	}))
	defer srv.Close()

	records, err := newTestSource(t, srv).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Org A", records[0].Organization)
}

func TestNewSheetSourceRequiresURL(t *testing.T) {
	_, err := NewSheetSource(SheetOptions{})
	assert.Error(t, err)
}
