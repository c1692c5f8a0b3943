package middleware

import (
	"github.com/sanad-aid/sanadbot/core/logger"
	tghelpers "github.com/sanad-aid/sanadbot/core/telegram/helpers"
	"github.com/sanad-aid/sanadbot/core/telegram/state"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// State returns a middleware that checks if user is in the expected FSM state.
func State(mgr state.Manager, expected state.State) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			userID := c.Sender().ID
			current := mgr.GetState(userID)
			ctx := tghelpers.BuildContext(c)
			if current == expected {
				logger.TG.LogAttrs(ctx, slog.LevelDebug, "fsm.match",
					slog.Int64("user_id", userID),
					slog.String("stage", string(current)),
					slog.String("expected", string(expected)),
					slog.String("rid", logger.RIDFrom(ctx)),
				)
				return next(c)
			}
			logger.TG.LogAttrs(ctx, slog.LevelDebug, "fsm.skip",
				slog.Int64("user_id", userID),
				slog.String("stage", string(current)),
				slog.String("expected", string(expected)),
				slog.String("rid", logger.RIDFrom(ctx)),
			)
			// Ignore message if user is in a different state
			return nil
		}
	}
}
