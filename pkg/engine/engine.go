// Package engine ties classification, emoji extraction and reaction
// application together for a single inbound message.
package engine

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/latoulicious/ideaboard/pkg/classify"
	"github.com/latoulicious/ideaboard/pkg/emoji"
	"github.com/latoulicious/ideaboard/pkg/logging"
	"github.com/latoulicious/ideaboard/pkg/metrics"
	"github.com/latoulicious/ideaboard/pkg/reaction"
)

// ThreadStarter opens a discussion thread on a message
type ThreadStarter interface {
	StartThread(ctx context.Context, channelID, messageID, name string) error
}

// Options configures an Engine
type Options struct {
	Allowlist classify.Allowlist
	Registry  emoji.Registry
	Applier   *reaction.Applicator
	// Threads is nil when thread creation is disabled
	Threads ThreadStarter
	Logger  logging.Logger
	Metrics metrics.Collector
}

// Engine handles inbound messages. It keeps no per-message state, so
// HandleMessage may be called from many goroutines at once.
type Engine struct {
	allowlist classify.Allowlist
	registry  emoji.Registry
	applier   *reaction.Applicator
	threads   ThreadStarter
	logger    logging.Logger
	metrics   metrics.Collector
}

// Result describes what was done with a message
type Result struct {
	Decision classify.Decision
	// Reactions holds the reaction set that was applied, in order
	Reactions []emoji.Reaction
	Report    reaction.Report
	// ThreadErr is set when starting the thread failed
	ThreadErr error
	// Err is set when handling panicked
	Err error
}

// New creates an Engine
func New(opts Options) *Engine {
	e := &Engine{
		allowlist: opts.Allowlist,
		registry:  opts.Registry,
		applier:   opts.Applier,
		threads:   opts.Threads,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
	}
	if e.logger == nil {
		e.logger = logging.NullLogger()
	}
	if e.metrics == nil {
		e.metrics = metrics.Discard{}
	}
	if e.applier == nil {
		e.applier = reaction.NewApplicator(reaction.Options{Logger: e.logger, Metrics: e.metrics})
	}
	return e
}

// Allowlist returns the channels the engine acts on
func (e *Engine) Allowlist() classify.Allowlist {
	return e.allowlist
}

// ThreadsEnabled reports whether a thread is started for ideas and questions
func (e *Engine) ThreadsEnabled() bool {
	return e.threads != nil
}

// HandleMessage classifies msg and, when it is an idea or a question, reacts
// to it and optionally starts a thread. It never panics: unexpected failures
// are logged and reported in Result.Err.
func (e *Engine) HandleMessage(ctx context.Context, msg classify.Message) (res Result) {
	logger := e.logger.With(
		logging.String("message_id", msg.ID),
		logging.String("channel_id", msg.ChannelID),
	)

	defer func() {
		if r := recover(); r != nil {
			res.Err = errors.Wrap(&PanicError{Value: r, Stack: string(debug.Stack())}, "handle message")
			e.metrics.RecordCounter(metrics.MessagesPanicked, 1, nil)
			logger.Error("Error processing message",
				logging.Error(res.Err),
				logging.String("stack", fmt.Sprintf("%+v", res.Err)),
			)
		}
	}()

	res.Decision = classify.Classify(msg, e.allowlist)
	e.metrics.RecordCounter(metrics.MessagesHandled, 1, map[string]string{"decision": res.Decision.String()})
	if res.Decision == classify.Ignore {
		return res
	}

	logger = logger.With(
		logging.String("trace_id", uuid.NewString()),
		logging.String("guild_id", msg.GuildID),
		logging.String("type", res.Decision.String()),
	)
	logger.Info(fmt.Sprintf("New %s received", res.Decision), logging.String("content", msg.Content))

	res.Reactions = e.BuildReactions(res.Decision, msg.Content)

	start := time.Now()
	res.Report = e.applier.Apply(ctx, msg.ChannelID, msg.ID, res.Reactions)
	logger.Debug("Reactions settled",
		logging.Int("attempted", res.Report.Attempted()),
		logging.Int("succeeded", res.Report.Succeeded()),
		logging.Duration("elapsed", time.Since(start)),
	)

	if e.threads != nil {
		res.ThreadErr = e.startThread(ctx, logger, msg, res.Decision)
	}

	return res
}

// BuildReactions returns the reaction set for a classified message: the fixed
// check/cross pair for ideas, or the de-duplicated, resolved emoji of the text
// for questions. Ignore yields nothing.
func (e *Engine) BuildReactions(decision classify.Decision, content string) []emoji.Reaction {
	switch decision {
	case classify.Idea:
		return emoji.GlyphReactions(reaction.DefaultReactions...)
	case classify.Question:
		refs := emoji.ExtractUnique(content)
		reactions := emoji.Resolve(refs, e.registry)
		if missed := countCustom(refs) - countCustomReactions(reactions); missed > 0 {
			e.metrics.RecordCounter(metrics.CustomEmojiMissed, int64(missed), nil)
		}
		return reactions
	default:
		return nil
	}
}

// ThreadName is the title of the discussion thread for a decision
func ThreadName(decision classify.Decision) string {
	return fmt.Sprintf("Discuss this %s!", decision)
}

func (e *Engine) startThread(ctx context.Context, logger logging.Logger, msg classify.Message, decision classify.Decision) error {
	err := e.threads.StartThread(ctx, msg.ChannelID, msg.ID, ThreadName(decision))
	if err != nil {
		e.metrics.RecordCounter(metrics.ThreadsFailed, 1, nil)
		logger.Warn("Failed to start discussion thread", logging.Error(err))
		return err
	}
	e.metrics.RecordCounter(metrics.ThreadsStarted, 1, nil)
	return nil
}

func countCustom(refs []emoji.Reference) int {
	n := 0
	for _, r := range refs {
		if r.Kind == emoji.Custom {
			n++
		}
	}
	return n
}

func countCustomReactions(reactions []emoji.Reaction) int {
	n := 0
	for _, r := range reactions {
		if r.Emoji != nil {
			n++
		}
	}
	return n
}
