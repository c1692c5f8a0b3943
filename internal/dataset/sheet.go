package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sanad-aid/sanadbot/core/logger"
	"github.com/sanad-aid/sanadbot/core/netutil"
	"log/slog"
)

// Columns maps dataset fields to CSV header names.
type Columns struct {
	Organization string `yaml:"organization" envconfig:"DATASET_COL_ORGANIZATION"`
	ServiceType  string `yaml:"service_type" envconfig:"DATASET_COL_SERVICE_TYPE"`
	Governorate  string `yaml:"governorate" envconfig:"DATASET_COL_GOVERNORATE"`
	ContactPhone string `yaml:"contact_phone" envconfig:"DATASET_COL_CONTACT_PHONE"`
	Start        string `yaml:"start" envconfig:"DATASET_COL_START"`
	End          string `yaml:"end" envconfig:"DATASET_COL_END"`
}

// DefaultColumns returns the header names used by the stock sheet.
func DefaultColumns() Columns {
	return Columns{
		Organization: "اسم المنظمة",
		ServiceType:  "نوع الخدمة",
		Governorate:  "المحافظة",
		ContactPhone: "رقم التواصل",
		Start:        "بدء المشروع",
		End:          "انتهاء المشروع",
	}
}

func (c Columns) withDefaults() Columns {
	def := DefaultColumns()
	if strings.TrimSpace(c.Organization) == "" {
		c.Organization = def.Organization
	}
	if strings.TrimSpace(c.ServiceType) == "" {
		c.ServiceType = def.ServiceType
	}
	if strings.TrimSpace(c.Governorate) == "" {
		c.Governorate = def.Governorate
	}
	if strings.TrimSpace(c.ContactPhone) == "" {
		c.ContactPhone = def.ContactPhone
	}
	if strings.TrimSpace(c.Start) == "" {
		c.Start = def.Start
	}
	if strings.TrimSpace(c.End) == "" {
		c.End = def.End
	}
	return c
}

// SheetOptions configures a SheetSource.
type SheetOptions struct {
	URL          string
	Columns      Columns
	FetchTimeout time.Duration
	Client       *http.Client
}

// SheetSource fetches the dataset from a CSV export URL
// (a published Google Sheet in the stock deployment).
type SheetSource struct {
	url     string
	columns Columns
	timeout time.Duration
	client  *http.Client
}

const defaultFetchTimeout = 15 * time.Second

// NewSheetSource validates options and returns a ready source.
func NewSheetSource(opts SheetOptions) (*SheetSource, error) {
	url := strings.TrimSpace(opts.URL)
	if url == "" {
		return nil, errors.New("dataset: csv url is required")
	}

	timeout := opts.FetchTimeout
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}

	client := opts.Client
	if client == nil {
		client = buildFetchClient(timeout)
	}

	return &SheetSource{
		url:     url,
		columns: opts.Columns.withDefaults(),
		timeout: timeout,
		client:  client,
	}, nil
}

func buildFetchClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		ForceAttemptHTTP2:   true,
		MaxIdleConns:        4,
		IdleConnTimeout:     30 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &netutil.RetryTransport{
			Base:       transport,
			MaxRetries: 2,
			Backoff:    time.Second,
		},
	}
}

// Fetch downloads and types the current snapshot. Any transport, HTTP, or
// header-level failure wraps ErrUnavailable; per-row defects only skip rows.
func (s *SheetSource) Fetch(ctx context.Context) ([]Record, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	reqCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrUnavailable, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		logger.SVCDataset.LogAttrs(ctx, slog.LevelError, "snapshot.fetch.failed",
			slog.String("status", "fail"),
			slog.String("url", s.url),
			slog.Int64("duration_ms", logger.RoundMS(time.Since(start)).Milliseconds()),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("%w: fetch: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		logger.SVCDataset.LogAttrs(ctx, slog.LevelError, "snapshot.fetch.failed",
			slog.String("status", "fail"),
			slog.String("url", s.url),
			slog.Int("http_status", resp.StatusCode),
			slog.Int64("duration_ms", logger.RoundMS(time.Since(start)).Milliseconds()),
		)
		return nil, fmt.Errorf("%w: unexpected status %s", ErrUnavailable, resp.Status)
	}

	records, skipped, malformedDates, err := s.parse(resp.Body)
	if err != nil {
		logger.SVCDataset.LogAttrs(ctx, slog.LevelError, "snapshot.parse.failed",
			slog.String("status", "fail"),
			slog.String("url", s.url),
			slog.String("err", err.Error()),
		)
		return nil, err
	}

	logger.SVCDataset.LogAttrs(ctx, slog.LevelInfo, "snapshot.fetch",
		slog.String("status", "ok"),
		slog.Int("rows", len(records)),
		slog.Int("skipped", skipped),
		slog.Int("malformed_dates", malformedDates),
		slog.Int64("duration_ms", logger.RoundMS(time.Since(start)).Milliseconds()),
	)

	return records, nil
}

// parse reads the CSV body into typed records. A missing required header
// makes the whole snapshot unusable; defective data rows are skipped.
func (s *SheetSource) parse(body io.Reader) ([]Record, int, int, error) {
	// Field whitespace is kept as sourced; normalization belongs to the matcher.
	reader := csv.NewReader(body)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, 0, 0, fmt.Errorf("%w: read header: %v", ErrUnavailable, err)
	}

	idx, err := s.columnIndexes(header)
	if err != nil {
		return nil, 0, 0, err
	}

	var (
		records        []Record
		skipped        int
		malformedDates int
	)

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			skipped++
			continue
		}
		if len(row) <= idx.max() {
			skipped++
			continue
		}

		rec := Record{
			Organization: strings.TrimSpace(row[idx.organization]),
			ServiceType:  row[idx.serviceType],
			Governorate:  row[idx.governorate],
			ContactPhone: strings.TrimSpace(row[idx.contactPhone]),
			Start:        ParseDate(row[idx.start]),
			End:          ParseDate(row[idx.end]),
		}
		if rec.Start == nil && strings.TrimSpace(row[idx.start]) != "" {
			malformedDates++
		}
		if rec.End == nil && strings.TrimSpace(row[idx.end]) != "" {
			malformedDates++
		}
		records = append(records, rec)
	}

	return records, skipped, malformedDates, nil
}

type columnIndexes struct {
	organization int
	serviceType  int
	governorate  int
	contactPhone int
	start        int
	end          int
}

func (c columnIndexes) max() int {
	m := c.organization
	for _, v := range []int{c.serviceType, c.governorate, c.contactPhone, c.start, c.end} {
		if v > m {
			m = v
		}
	}
	return m
}

func (s *SheetSource) columnIndexes(header []string) (columnIndexes, error) {
	byName := make(map[string]int, len(header))
	for i, name := range header {
		byName[strings.TrimSpace(name)] = i
	}

	lookup := func(name string) (int, error) {
		if i, ok := byName[name]; ok {
			return i, nil
		}
		return 0, fmt.Errorf("%w: column %q not found", ErrUnavailable, name)
	}

	var (
		idx columnIndexes
		err error
	)
	if idx.organization, err = lookup(s.columns.Organization); err != nil {
		return idx, err
	}
	if idx.serviceType, err = lookup(s.columns.ServiceType); err != nil {
		return idx, err
	}
	if idx.governorate, err = lookup(s.columns.Governorate); err != nil {
		return idx, err
	}
	if idx.contactPhone, err = lookup(s.columns.ContactPhone); err != nil {
		return idx, err
	}
	if idx.start, err = lookup(s.columns.Start); err != nil {
		return idx, err
	}
	if idx.end, err = lookup(s.columns.End); err != nil {
		return idx, err
	}
	return idx, nil
}
