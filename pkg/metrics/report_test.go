package metrics

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/latoulicious/ideaboard/pkg/logging"
)

func TestSummary(t *testing.T) {
	r := NewRegistry()
	r.RecordCounter(MessagesHandled, 2, map[string]string{"decision": "idea"})
	r.RecordCounter(MessagesHandled, 5, map[string]string{"decision": "ignore"})
	r.RecordCounter(ReactionsApplied, 4, nil)
	r.RecordTiming(ReactionLatency, 40*time.Millisecond, nil)

	fields := map[string]interface{}{}
	for _, f := range Summary(r.Snapshot()) {
		fields[f.Key] = f.Value
	}

	assert.Equal(t, int64(2), fields["ideas"])
	assert.Equal(t, int64(0), fields["questions"])
	assert.Equal(t, int64(5), fields["ignored"])
	assert.Equal(t, int64(4), fields["reactions_applied"])
	assert.Equal(t, "40ms", fields["reaction_latency_avg"])
}

func TestReporter_Report(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(logging.Config{Level: "info", Format: "text"}, &buf)
	r := NewRegistry()
	r.RecordCounter(ThreadsStarted, 1, nil)

	require.NoError(t, NewReporter(r, logger).Report())
	assert.Contains(t, buf.String(), "Reaction stats")
	assert.Contains(t, buf.String(), "threads_started=1")
}
