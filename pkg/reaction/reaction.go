// Package reaction applies a batch of emoji reactions to one message.
//
// Every reaction in a batch is attempted independently and concurrently.
// Failures are collected into a Report and logged; they are never returned
// to the caller and never retried.
package reaction

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"

	"github.com/latoulicious/ideaboard/pkg/emoji"
	"github.com/latoulicious/ideaboard/pkg/logging"
	"github.com/latoulicious/ideaboard/pkg/metrics"
)

const (
	CheckMark = "✅"
	CrossMark = "❌"
)

// DefaultReactions are added to every idea, in this order
var DefaultReactions = []string{CheckMark, CrossMark}

var ErrNoReactor = errors.New("no reactor configured")

// Reactor adds a single reaction to a message
type Reactor interface {
	AddReaction(ctx context.Context, channelID, messageID, emojiName string) error
}

// ReactorFunc adapts a function to Reactor
type ReactorFunc func(ctx context.Context, channelID, messageID, emojiName string) error

func (f ReactorFunc) AddReaction(ctx context.Context, channelID, messageID, emojiName string) error {
	return f(ctx, channelID, messageID, emojiName)
}

// Outcome is the result of one reaction attempt
type Outcome struct {
	Emoji    string
	Err      error
	Duration time.Duration
}

// OK reports whether the reaction was added
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Report collects the outcomes of a batch, in the order of the input reactions
type Report struct {
	Outcomes []Outcome
}

// Attempted returns the number of reactions tried
func (r Report) Attempted() int {
	return len(r.Outcomes)
}

// Succeeded returns the number of reactions that were added
func (r Report) Succeeded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.OK() {
			n++
		}
	}
	return n
}

// Failures returns the failed outcomes
func (r Report) Failures() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if !o.OK() {
			out = append(out, o)
		}
	}
	return out
}

// Options configures an Applicator
type Options struct {
	Reactor Reactor
	Logger  logging.Logger
	Metrics metrics.Collector
	// Limiter paces reaction calls; nil means no pacing
	Limiter *rate.Limiter
	// Concurrency caps in-flight reaction calls per message; zero means no cap
	Concurrency int
}

// Applicator adds reactions to messages
type Applicator struct {
	reactor     Reactor
	logger      logging.Logger
	metrics     metrics.Collector
	limiter     *rate.Limiter
	concurrency int
}

// NewApplicator creates an Applicator
func NewApplicator(opts Options) *Applicator {
	a := &Applicator{
		reactor:     opts.Reactor,
		logger:      opts.Logger,
		metrics:     opts.Metrics,
		limiter:     opts.Limiter,
		concurrency: opts.Concurrency,
	}
	if a.logger == nil {
		a.logger = logging.NullLogger()
	}
	if a.metrics == nil {
		a.metrics = metrics.Discard{}
	}
	return a
}

// NewLimiter builds a limiter allowing perSecond reactions with the given
// burst. A non-positive rate returns nil, which disables pacing.
func NewLimiter(perSecond float64, burst int) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

// Apply adds every reaction to the message and waits until all attempts have
// finished. An empty batch makes no calls. Apply never fails as a whole; look
// at the returned Report for per-reaction results.
func (a *Applicator) Apply(ctx context.Context, channelID, messageID string, reactions []emoji.Reaction) Report {
	if len(reactions) == 0 {
		return Report{}
	}

	outcomes := make([]Outcome, len(reactions))
	errs := SettleAll(ctx, len(reactions), a.concurrency, func(ctx context.Context, i int) error {
		name := reactions[i].APIName()
		outcomes[i].Emoji = name

		start := time.Now()
		defer func() { outcomes[i].Duration = time.Since(start) }()

		if a.reactor == nil {
			return ErrNoReactor
		}
		if a.limiter != nil {
			if err := a.limiter.Wait(ctx); err != nil {
				return err
			}
		}
		return a.reactor.AddReaction(ctx, channelID, messageID, name)
	})

	for i, err := range errs {
		outcomes[i].Err = err
		if outcomes[i].Emoji == "" {
			outcomes[i].Emoji = reactions[i].APIName()
		}
		a.record(outcomes[i])
	}

	report := Report{Outcomes: outcomes}
	a.logReport(channelID, messageID, report)
	return report
}

// ApplyGlyphs is Apply for plain Unicode glyphs
func (a *Applicator) ApplyGlyphs(ctx context.Context, channelID, messageID string, glyphs ...string) Report {
	return a.Apply(ctx, channelID, messageID, emoji.GlyphReactions(glyphs...))
}

func (a *Applicator) record(o Outcome) {
	if o.OK() {
		a.metrics.RecordCounter(metrics.ReactionsApplied, 1, nil)
		a.metrics.RecordTiming(metrics.ReactionLatency, o.Duration, nil)
		return
	}
	a.metrics.RecordCounter(metrics.ReactionsFailed, 1, nil)
}

func (a *Applicator) logReport(channelID, messageID string, report Report) {
	failures := report.Failures()
	if len(failures) == 0 {
		a.logger.Debug("Reactions applied",
			logging.String("channel_id", channelID),
			logging.String("message_id", messageID),
			logging.Int("count", report.Attempted()),
		)
		return
	}

	for _, f := range failures {
		a.logger.Debug("Reaction failed",
			logging.String("message_id", messageID),
			logging.String("emoji", f.Emoji),
			logging.Error(f.Err),
		)
	}

	failed := make([]string, 0, len(failures))
	for _, f := range failures {
		failed = append(failed, f.Emoji+": "+f.Err.Error())
	}
	a.logger.Warn("Some reactions could not be added",
		logging.String("channel_id", channelID),
		logging.String("message_id", messageID),
		logging.Int("attempted", report.Attempted()),
		logging.Int("failed", len(failures)),
		logging.Strings("failures", failed),
	)
}
