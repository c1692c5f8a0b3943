package dialog

import (
	"github.com/sanad-aid/sanadbot/internal/catalog"
	"github.com/sanad-aid/sanadbot/internal/match"
)

// Menu keys carried in callback data so selections can be validated
// against the menu they were offered from.
const (
	MenuService     = "svc"
	MenuGovernorate = "gov"
)

// Action is one outbound instruction produced by a dialogue transition.
// Exactly one action is returned per handled event.
type Action interface{ isAction() }

// None means the event was ignored (stale text, no active session).
type None struct{}

// Prompt asks a free-text question.
type Prompt struct {
	Text string
}

// MenuPrompt asks the user to pick from an inline menu.
type MenuPrompt struct {
	Text    string
	Menu    string
	Options catalog.OptionSet
}

// NoticeKind distinguishes the two terminal non-result outcomes.
type NoticeKind string

const (
	NoticeNoMatches       NoticeKind = "no_matches"
	NoticeDataUnavailable NoticeKind = "unavailable"
)

// Notice ends the session with a single informational message.
type Notice struct {
	Kind NoticeKind
	Text string
}

// Results ends the session with one message per match.
type Results struct {
	Name        string
	Service     string
	Governorate string
	Matches     []match.Result
}

func (None) isAction()       {}
func (Prompt) isAction()     {}
func (MenuPrompt) isAction() {}
func (Notice) isAction()     {}
func (Results) isAction()    {}
