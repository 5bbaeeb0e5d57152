package handlers

import (
	"github.com/bwmarrin/discordgo"

	"github.com/latoulicious/ideaboard/internal/presence"
	"github.com/latoulicious/ideaboard/pkg/classify"
	"github.com/latoulicious/ideaboard/pkg/logging"
)

// ReadyHandler logs the bot identity and the monitored channels once the
// gateway session is ready, then sets the initial presence.
func ReadyHandler(allow classify.Allowlist, pm *presence.Manager, logger logging.Logger) func(*discordgo.Session, *discordgo.Ready) {
	return func(s *discordgo.Session, r *discordgo.Ready) {
		if r == nil || r.User == nil {
			return
		}

		logger.Info("Logged in",
			logging.String("user", r.User.String()),
			logging.Int("guilds", len(r.Guilds)),
		)
		logger.Info("Bot is ready and monitoring channels by server",
			logging.Any("channels", allow),
			logging.Int("servers", allow.Servers()),
		)

		if pm != nil {
			pm.Update()
		}
	}
}
