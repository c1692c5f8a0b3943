package dialog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanad-aid/sanadbot/core/telegram/state"
	"github.com/sanad-aid/sanadbot/internal/catalog"
	"github.com/sanad-aid/sanadbot/internal/dataset"
	"github.com/sanad-aid/sanadbot/internal/history"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type fakeSource struct {
	records []dataset.Record
	err     error
	calls   int
}

func (s *fakeSource) Fetch(ctx context.Context) ([]dataset.Record, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.records, nil
}

type fakeRecorder struct {
	entries []history.Entry
}

func (r *fakeRecorder) Record(ctx context.Context, e history.Entry) {
	r.entries = append(r.entries, e)
}

func newTestFlow(t *testing.T, src dataset.Source, rec history.Recorder) *Flow {
	t.Helper()
	f, err := New(Options{
		Sessions: state.NewMemoryManager(),
		Catalog:  catalog.Default(),
		Source:   src,
		History:  rec,
		Now:      func() time.Time { return testNow },
	})
	require.NoError(t, err)
	return f
}

func datePtr(t time.Time) *time.Time { return &t }

func TestFullDialogueScenario(t *testing.T) {
	src := &fakeSource{records: []dataset.Record{{
		Organization: "Org A",
		ServiceType:  " تعليم",
		Governorate:  "حلب ",
		ContactPhone: "0955000111",
		Start:        datePtr(testNow.AddDate(0, -1, 0)),
		End:          datePtr(testNow.AddDate(0, 0, 10)),
	}}}
	rec := &fakeRecorder{}
	f := newTestFlow(t, src, rec)
	ctx := context.Background()
	const sid = int64(42)

	start := f.HandleStart(ctx, sid)
	prompt, ok := start.(Prompt)
	require.True(t, ok)
	assert.Equal(t, MsgAskName, prompt.Text)
	assert.True(t, f.InProgress(sid))

	next := f.HandleText(ctx, sid, "Aya")
	svcMenu, ok := next.(MenuPrompt)
	require.True(t, ok)
	assert.Equal(t, MenuService, svcMenu.Menu)
	assert.Equal(t, MsgChooseService, svcMenu.Text)
	require.Len(t, svcMenu.Options, 5)

	next = f.HandleSelect(ctx, sid, MenuService, "تعليم")
	govMenu, ok := next.(MenuPrompt)
	require.True(t, ok)
	assert.Equal(t, MenuGovernorate, govMenu.Menu)

	next = f.HandleSelect(ctx, sid, MenuGovernorate, "حلب")
	results, ok := next.(Results)
	require.True(t, ok)
	assert.Equal(t, "Aya", results.Name)
	assert.Equal(t, "تعليم", results.Service)
	assert.Equal(t, "حلب", results.Governorate)
	require.Len(t, results.Matches, 1)
	assert.Equal(t, 10, results.Matches[0].DaysRemaining)
	assert.Equal(t, "https://wa.me/963955000111", results.Matches[0].ContactLink)

	// Session destroyed after the final output.
	assert.False(t, f.InProgress(sid))
	assert.Equal(t, 1, src.calls)

	require.Len(t, rec.entries, 1)
	entry := rec.entries[0]
	assert.Equal(t, history.OutcomeMatches, entry.Outcome)
	assert.Equal(t, 1, entry.Matches)
	assert.Equal(t, "Aya", entry.Name)
}

func TestInvalidSelectionKeepsStateAndMenu(t *testing.T) {
	src := &fakeSource{}
	f := newTestFlow(t, src, nil)
	ctx := context.Background()
	const sid = int64(7)

	f.HandleStart(ctx, sid)
	f.HandleText(ctx, sid, "سارة")

	// Unknown value: same menu again, no stage change.
	next := f.HandleSelect(ctx, sid, MenuService, "not-a-service")
	menu, ok := next.(MenuPrompt)
	require.True(t, ok)
	assert.Equal(t, MenuService, menu.Menu)

	// Stale governorate button while awaiting service: same rule.
	next = f.HandleSelect(ctx, sid, MenuGovernorate, "حلب")
	menu, ok = next.(MenuPrompt)
	require.True(t, ok)
	assert.Equal(t, MenuService, menu.Menu)

	// The dataset is never touched by rejected selections.
	assert.Equal(t, 0, src.calls)

	// A valid selection still advances.
	next = f.HandleSelect(ctx, sid, MenuService, "صحة")
	menu, ok = next.(MenuPrompt)
	require.True(t, ok)
	assert.Equal(t, MenuGovernorate, menu.Menu)
}

func TestStaleTextIsIgnored(t *testing.T) {
	f := newTestFlow(t, &fakeSource{}, nil)
	ctx := context.Background()
	const sid = int64(9)

	f.HandleStart(ctx, sid)
	f.HandleText(ctx, sid, "ليلى")

	next := f.HandleText(ctx, sid, "more text")
	assert.IsType(t, None{}, next)
}

func TestSelectWithoutSession(t *testing.T) {
	f := newTestFlow(t, &fakeSource{}, nil)
	next := f.HandleSelect(context.Background(), 11, MenuService, "صحة")
	assert.IsType(t, None{}, next)
}

func TestDataUnavailableNotice(t *testing.T) {
	rec := &fakeRecorder{}
	f := newTestFlow(t, &fakeSource{err: dataset.ErrUnavailable}, rec)
	ctx := context.Background()
	const sid = int64(3)

	f.HandleStart(ctx, sid)
	f.HandleText(ctx, sid, "Aya")
	f.HandleSelect(ctx, sid, MenuService, "صحة")
	next := f.HandleSelect(ctx, sid, MenuGovernorate, "دمشق")

	notice, ok := next.(Notice)
	require.True(t, ok)
	assert.Equal(t, NoticeDataUnavailable, notice.Kind)
	assert.Equal(t, MsgDataUnavailable, notice.Text)
	assert.False(t, f.InProgress(sid))

	require.Len(t, rec.entries, 1)
	assert.Equal(t, history.OutcomeUnavailable, rec.entries[0].Outcome)
}

func TestNoMatchesNoticeDistinctFromUnavailable(t *testing.T) {
	rec := &fakeRecorder{}
	f := newTestFlow(t, &fakeSource{records: nil}, rec)
	ctx := context.Background()
	const sid = int64(5)

	f.HandleStart(ctx, sid)
	f.HandleText(ctx, sid, "Aya")
	f.HandleSelect(ctx, sid, MenuService, "صحة")
	next := f.HandleSelect(ctx, sid, MenuGovernorate, "حلب")

	notice, ok := next.(Notice)
	require.True(t, ok)
	assert.Equal(t, NoticeNoMatches, notice.Kind)
	assert.Equal(t, MsgNoResults, notice.Text)

	require.Len(t, rec.entries, 1)
	assert.Equal(t, history.OutcomeNoMatches, rec.entries[0].Outcome)
}

func TestRestartResetsSession(t *testing.T) {
	f := newTestFlow(t, &fakeSource{}, nil)
	ctx := context.Background()
	const sid = int64(21)

	f.HandleStart(ctx, sid)
	f.HandleText(ctx, sid, "Aya")
	f.HandleSelect(ctx, sid, MenuService, "صحة")

	// Restart mid-dialogue: back to the name prompt.
	next := f.HandleStart(ctx, sid)
	assert.IsType(t, Prompt{}, next)

	// Text is accepted again, proving the stage was reset.
	next = f.HandleText(ctx, sid, "Nour")
	assert.IsType(t, MenuPrompt{}, next)
}

func TestActiveSessionsCount(t *testing.T) {
	f := newTestFlow(t, &fakeSource{}, nil)
	ctx := context.Background()

	assert.Equal(t, 0, f.ActiveSessions())
	f.HandleStart(ctx, 1)
	f.HandleStart(ctx, 2)
	assert.Equal(t, 2, f.ActiveSessions())
}
