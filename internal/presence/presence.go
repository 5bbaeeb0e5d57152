package presence

import (
	"strconv"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/latoulicious/ideaboard/pkg/classify"
	"github.com/latoulicious/ideaboard/pkg/logging"
)

// StatusUpdater is the part of a Discord session used to set presence
type StatusUpdater interface {
	UpdateStatusComplex(usd discordgo.UpdateStatusData) error
}

// Manager keeps the bot's presence in sync with what it monitors
type Manager struct {
	session StatusUpdater
	allow   classify.Allowlist
	logger  logging.Logger

	mu   sync.RWMutex
	last *discordgo.UpdateStatusData
}

// NewManager creates a presence manager
func NewManager(session StatusUpdater, allow classify.Allowlist, logger logging.Logger) *Manager {
	if logger == nil {
		logger = logging.NullLogger()
	}
	return &Manager{
		session: session,
		allow:   allow,
		logger:  logger,
	}
}

// Status builds the presence shown for the current allowlist
func (pm *Manager) Status() discordgo.UpdateStatusData {
	return discordgo.UpdateStatusData{
		Status: "online",
		Activities: []*discordgo.Activity{
			{
				Name:  strconv.Itoa(pm.allow.Channels()) + " channels",
				Type:  discordgo.ActivityTypeWatching,
				State: "in " + strconv.Itoa(pm.allow.Servers()) + " servers",
			},
		},
	}
}

// Update pushes the presence to Discord
func (pm *Manager) Update() {
	status := pm.Status()
	if err := pm.session.UpdateStatusComplex(status); err != nil {
		pm.logger.Warn("Failed to update bot presence", logging.Error(err))
		return
	}

	pm.mu.Lock()
	pm.last = &status
	pm.mu.Unlock()
}

// Refresh is Update in the shape of a scheduled job
func (pm *Manager) Refresh() error {
	pm.Update()
	return nil
}

// Current returns the last presence successfully set, nil before the first update
func (pm *Manager) Current() *discordgo.UpdateStatusData {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return pm.last
}
