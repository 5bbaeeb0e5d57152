// Package metrics keeps in-process counters and timings for the bot.
// Nothing is exported to an external system; the stats job logs a snapshot
// periodically.
package metrics

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// Metric names recorded by the bot
const (
	MessagesHandled   = "messages_handled"
	MessagesPanicked  = "messages_panicked"
	ReactionsApplied  = "reactions_applied"
	ReactionsFailed   = "reactions_failed"
	ReactionLatency   = "reaction_latency"
	ThreadsStarted    = "threads_started"
	ThreadsFailed     = "threads_failed"
	CustomEmojiMissed = "custom_emoji_missed"
)

// Collector is what components record into
type Collector interface {
	RecordCounter(name string, value int64, tags map[string]string)
	RecordTiming(name string, d time.Duration, tags map[string]string)
}

// Type of a recorded metric
type Type int

const (
	CounterType Type = iota
	TimingType
)

func (t Type) String() string {
	switch t {
	case CounterType:
		return "counter"
	case TimingType:
		return "timing"
	default:
		return "unknown"
	}
}

// Metric is the aggregated state of one name+tags combination.
// For timings Value is the number of samples and Min/Max/Sum are durations.
type Metric struct {
	Name    string            `json:"name"`
	Type    Type              `json:"type"`
	Tags    map[string]string `json:"tags,omitempty"`
	Value   int64             `json:"value"`
	Sum     time.Duration     `json:"sum,omitempty"`
	Min     time.Duration     `json:"min,omitempty"`
	Max     time.Duration     `json:"max,omitempty"`
	Updated time.Time         `json:"updated"`
}

// Avg returns the mean of a timing metric
func (m Metric) Avg() time.Duration {
	if m.Type != TimingType || m.Value == 0 {
		return 0
	}
	return m.Sum / time.Duration(m.Value)
}

// Snapshot is a copy of all metrics at a point in time
type Snapshot struct {
	Taken   time.Time
	Metrics map[string]Metric
}

// Counter sums every counter with the given name whose tags include want
func (s Snapshot) Counter(name string, want map[string]string) int64 {
	var total int64
	for _, m := range s.Metrics {
		if m.Type != CounterType || m.Name != name || !hasTags(m.Tags, want) {
			continue
		}
		total += m.Value
	}
	return total
}

func hasTags(have, want map[string]string) bool {
	for k, v := range want {
		if have[k] != v {
			return false
		}
	}
	return true
}

// Registry is a Collector that keeps everything in memory
type Registry struct {
	mu      sync.RWMutex
	metrics map[string]Metric
	now     func() time.Time
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		metrics: make(map[string]Metric),
		now:     time.Now,
	}
}

// RecordCounter adds value to a counter
func (r *Registry) RecordCounter(name string, value int64, tags map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := metricKey(name, tags)
	m, ok := r.metrics[key]
	if !ok || m.Type != CounterType {
		m = Metric{Name: name, Type: CounterType, Tags: copyTags(tags)}
	}
	m.Value += value
	m.Updated = r.now()
	r.metrics[key] = m
}

// RecordTiming adds one duration sample
func (r *Registry) RecordTiming(name string, d time.Duration, tags map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := metricKey(name, tags)
	m, ok := r.metrics[key]
	if !ok || m.Type != TimingType {
		m = Metric{Name: name, Type: TimingType, Tags: copyTags(tags), Min: d, Max: d}
	}
	m.Value++
	m.Sum += d
	if d < m.Min {
		m.Min = d
	}
	if d > m.Max {
		m.Max = d
	}
	m.Updated = r.now()
	r.metrics[key] = m
}

// Snapshot copies the current state
func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]Metric, len(r.metrics))
	for k, m := range r.metrics {
		m.Tags = copyTags(m.Tags)
		out[k] = m
	}
	return Snapshot{Taken: r.now(), Metrics: out}
}

// Reset drops everything recorded so far
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.metrics = make(map[string]Metric)
}

func metricKey(name string, tags map[string]string) string {
	if len(tags) == 0 {
		return name
	}
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(name)
	for _, k := range keys {
		b.WriteString(",")
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(tags[k])
	}
	return b.String()
}

func copyTags(tags map[string]string) map[string]string {
	if tags == nil {
		return nil
	}
	out := make(map[string]string, len(tags))
	for k, v := range tags {
		out[k] = v
	}
	return out
}

// Discard is a Collector that records nothing
type Discard struct{}

func (Discard) RecordCounter(string, int64, map[string]string)        {}
func (Discard) RecordTiming(string, time.Duration, map[string]string) {}
