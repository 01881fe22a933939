package llm

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogObserver(t *testing.T) {
	var buf bytes.Buffer
	obs := NewLogObserver(slog.New(slog.NewTextHandler(&buf, nil)))

	obs.OnCallComplete(LLMCallEvent{Task: TaskStory, Provider: ProviderGemini, Model: "gemini-1.5-flash", LatencyMs: 420, Attempts: 1, Success: true})
	obs.OnCallComplete(LLMCallEvent{Task: TaskWorksheet, Provider: ProviderOllama, Model: "llama3.2", Attempts: 3, ErrorCode: "TIMEOUT"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "level=INFO msg=llm_call component=llm task=story provider=gemini model=gemini-1.5-flash latency_ms=420 attempts=1 status=ok")
	assert.Contains(t, lines[1], "level=WARN")
	assert.Contains(t, lines[1], "attempts=3 status=err:TIMEOUT")
}

func TestLogObserver_NilLogger(t *testing.T) {
	assert.IsType(t, NoopObserver{}, NewLogObserver(nil))
}
