// Package dialog owns the guided conversation: a fixed stage machine that
// collects name, service, and governorate, then runs the query pipeline.
package dialog

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sanad-aid/sanadbot/core/logger"
	"github.com/sanad-aid/sanadbot/core/telegram/state"
	"github.com/sanad-aid/sanadbot/internal/catalog"
	"github.com/sanad-aid/sanadbot/internal/dataset"
	"github.com/sanad-aid/sanadbot/internal/history"
	"github.com/sanad-aid/sanadbot/internal/match"
	"log/slog"
)

// Dialogue stages in fixed order. Completion has no stage of its own:
// the session is cleared the moment its final output is produced.
const (
	StageAwaitingName        = state.State("awaiting_name")
	StageAwaitingService     = state.State("awaiting_service")
	StageAwaitingGovernorate = state.State("awaiting_governorate")
)

const (
	tempKeyName    = "name"
	tempKeyService = "service"
)

const lockStripes = 64

// Options configure a Flow.
type Options struct {
	Sessions state.Manager
	Catalog  catalog.Catalog
	Source   dataset.Source
	Matcher  match.Matcher
	// History may be nil to disable search recording.
	History history.Recorder
	// Now overrides the clock in tests.
	Now func() time.Time
}

// Flow advances sessions through the dialogue stages. Events for one
// session are serialized through striped locks; sessions share nothing
// mutable beyond the dataset source.
type Flow struct {
	sessions state.Manager
	catalog  catalog.Catalog
	source   dataset.Source
	matcher  match.Matcher
	history  history.Recorder
	now      func() time.Time

	locks [lockStripes]sync.Mutex
}

// New validates options and returns a ready Flow.
func New(opts Options) (*Flow, error) {
	if opts.Sessions == nil {
		return nil, errors.New("dialog: session manager is required")
	}
	if opts.Source == nil {
		return nil, errors.New("dialog: dataset source is required")
	}
	if len(opts.Catalog.Services) == 0 || len(opts.Catalog.Governorates) == 0 {
		return nil, errors.New("dialog: catalog must offer services and governorates")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Flow{
		sessions: opts.Sessions,
		catalog:  opts.Catalog,
		source:   opts.Source,
		matcher:  opts.Matcher,
		history:  opts.History,
		now:      now,
	}, nil
}

func (f *Flow) lock(sessionID int64) *sync.Mutex {
	return &f.locks[uint64(sessionID)%lockStripes]
}

// HandleStart begins (or restarts) a session and asks for the name.
func (f *Flow) HandleStart(ctx context.Context, sessionID int64) Action {
	mu := f.lock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	f.sessions.Clear(sessionID)
	f.sessions.SetState(sessionID, StageAwaitingName)

	logger.SVCDialog.LogAttrs(ctx, slog.LevelInfo, "dialog.start",
		slog.String("status", "ok"),
		slog.Int64("user_id", sessionID),
		slog.String("stage", string(StageAwaitingName)),
	)
	return Prompt{Text: MsgAskName}
}

// HandleText consumes free-text input. Only the AwaitingName stage reads
// text; anything else is stale input and produces no action.
func (f *Flow) HandleText(ctx context.Context, sessionID int64, text string) Action {
	mu := f.lock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	if f.sessions.GetState(sessionID) != StageAwaitingName {
		return None{}
	}

	f.sessions.SetTemp(sessionID, tempKeyName, text)
	f.sessions.SetState(sessionID, StageAwaitingService)

	logger.SVCDialog.LogAttrs(ctx, slog.LevelDebug, "stage.advance",
		slog.Int64("user_id", sessionID),
		slog.String("stage", string(StageAwaitingService)),
	)
	return f.serviceMenu()
}

// HandleSelect consumes a menu selection. Out-of-set or out-of-stage
// values re-issue the current menu without touching session state.
func (f *Flow) HandleSelect(ctx context.Context, sessionID int64, menu, value string) Action {
	mu := f.lock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	switch f.sessions.GetState(sessionID) {
	case StageAwaitingService:
		if menu != MenuService || !f.catalog.Services.Known(value) {
			f.logInvalidSelection(ctx, sessionID, menu, value, StageAwaitingService)
			return f.serviceMenu()
		}
		f.sessions.SetTemp(sessionID, tempKeyService, value)
		f.sessions.SetState(sessionID, StageAwaitingGovernorate)
		logger.SVCDialog.LogAttrs(ctx, slog.LevelDebug, "stage.advance",
			slog.Int64("user_id", sessionID),
			slog.String("stage", string(StageAwaitingGovernorate)),
			slog.String("service", value),
		)
		return f.governorateMenu()

	case StageAwaitingGovernorate:
		if menu != MenuGovernorate || !f.catalog.Governorates.Known(value) {
			f.logInvalidSelection(ctx, sessionID, menu, value, StageAwaitingGovernorate)
			return f.governorateMenu()
		}
		return f.complete(ctx, sessionID, value)
	}

	// No active session owns this selection.
	return None{}
}

func (f *Flow) serviceMenu() MenuPrompt {
	return MenuPrompt{Text: MsgChooseService, Menu: MenuService, Options: f.catalog.Services}
}

func (f *Flow) governorateMenu() MenuPrompt {
	return MenuPrompt{Text: MsgChooseGovernorate, Menu: MenuGovernorate, Options: f.catalog.Governorates}
}

func (f *Flow) logInvalidSelection(ctx context.Context, sessionID int64, menu, value string, stage state.State) {
	logger.SVCDialog.LogAttrs(ctx, slog.LevelWarn, "selection.invalid",
		slog.Int64("user_id", sessionID),
		slog.String("stage", string(stage)),
		slog.String("cb_key", menu),
		slog.String("payload", logger.SanitizeLimit(value, 64)),
	)
}

// complete runs the synchronous fetch → match pipeline and ends the session.
func (f *Flow) complete(ctx context.Context, sessionID int64, governorate string) Action {
	name, _ := f.sessions.GetTempString(sessionID, tempKeyName)
	service, _ := f.sessions.GetTempString(sessionID, tempKeyService)
	defer f.sessions.Clear(sessionID)

	start := time.Now()
	asOf := f.now()

	snapshot, err := f.source.Fetch(ctx)
	if err != nil {
		logger.SVCDialog.LogAttrs(ctx, slog.LevelWarn, "query.complete",
			slog.String("status", "fail"),
			slog.Int64("user_id", sessionID),
			slog.String("service", service),
			slog.String("governorate", governorate),
			slog.String("outcome", "unavailable"),
			slog.Int64("duration_ms", logger.RoundMS(time.Since(start)).Milliseconds()),
			slog.String("err", err.Error()),
		)
		f.record(ctx, sessionID, name, service, governorate, history.OutcomeUnavailable, 0)
		return Notice{Kind: NoticeDataUnavailable, Text: MsgDataUnavailable}
	}

	matches := f.matcher.Match(snapshot, match.Query{
		Service:     service,
		Governorate: governorate,
		AsOf:        asOf,
	})

	outcome := history.OutcomeMatches
	if len(matches) == 0 {
		outcome = history.OutcomeNoMatches
	}
	logger.SVCDialog.LogAttrs(ctx, slog.LevelInfo, "query.complete",
		slog.String("status", "ok"),
		slog.Int64("user_id", sessionID),
		slog.String("service", service),
		slog.String("governorate", governorate),
		slog.Int("rows", len(snapshot)),
		slog.Int("matches", len(matches)),
		slog.String("outcome", outcome),
		slog.Int64("duration_ms", logger.RoundMS(time.Since(start)).Milliseconds()),
	)
	f.record(ctx, sessionID, name, service, governorate, outcome, len(matches))

	if len(matches) == 0 {
		return Notice{Kind: NoticeNoMatches, Text: MsgNoResults}
	}
	return Results{
		Name:        name,
		Service:     service,
		Governorate: governorate,
		Matches:     matches,
	}
}

func (f *Flow) record(ctx context.Context, sessionID int64, name, service, governorate, outcome string, matches int) {
	if f.history == nil {
		return
	}
	f.history.Record(ctx, history.Entry{
		ChatID:      sessionID,
		Name:        name,
		Service:     service,
		Governorate: governorate,
		Outcome:     outcome,
		Matches:     matches,
		At:          f.now(),
	})
}

// InProgress reports whether a session is mid-dialogue.
func (f *Flow) InProgress(sessionID int64) bool {
	return f.sessions.InProgress(sessionID)
}

// ActiveSessions counts sessions currently mid-dialogue.
func (f *Flow) ActiveSessions() int {
	return f.sessions.Count()
}
