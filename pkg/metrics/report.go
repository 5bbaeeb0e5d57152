package metrics

import "github.com/latoulicious/ideaboard/pkg/logging"

// Reporter logs a summary of a Registry, used by the periodic stats job
type Reporter struct {
	registry *Registry
	logger   logging.Logger
}

// NewReporter creates a Reporter
func NewReporter(registry *Registry, logger logging.Logger) *Reporter {
	return &Reporter{registry: registry, logger: logger}
}

// Summary returns the headline numbers of a snapshot as log fields
func Summary(snap Snapshot) []logging.Field {
	latency := Metric{Type: TimingType}
	for _, m := range snap.Metrics {
		if m.Name == ReactionLatency && m.Type == TimingType {
			latency = m
		}
	}

	return []logging.Field{
		logging.Int64("ideas", snap.Counter(MessagesHandled, map[string]string{"decision": "idea"})),
		logging.Int64("questions", snap.Counter(MessagesHandled, map[string]string{"decision": "question"})),
		logging.Int64("ignored", snap.Counter(MessagesHandled, map[string]string{"decision": "ignore"})),
		logging.Int64("panicked", snap.Counter(MessagesPanicked, nil)),
		logging.Int64("reactions_applied", snap.Counter(ReactionsApplied, nil)),
		logging.Int64("reactions_failed", snap.Counter(ReactionsFailed, nil)),
		logging.Int64("custom_emoji_missed", snap.Counter(CustomEmojiMissed, nil)),
		logging.Int64("threads_started", snap.Counter(ThreadsStarted, nil)),
		logging.Int64("threads_failed", snap.Counter(ThreadsFailed, nil)),
		logging.Duration("reaction_latency_avg", latency.Avg()),
		logging.Duration("reaction_latency_max", latency.Max),
	}
}

// Report logs the current summary
func (r *Reporter) Report() error {
	r.logger.Info("Reaction stats", Summary(r.registry.Snapshot())...)
	return nil
}
