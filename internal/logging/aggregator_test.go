package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestAggregatorSummarises(t *testing.T) {
	var buf bytes.Buffer
	agg := NewAggregator(slog.New(slog.NewJSONHandler(&buf, nil)), 60)

	agg.Record(CompKeys, "keystroke", slog.String("key", "a"))
	agg.Record(CompKeys, "keystroke", slog.String("key", "b"))
	agg.Record(CompKeys, "keystroke", slog.String("key", "c"))
	agg.Record(CompSearch, "query_changed")

	if got := agg.Pending(CompKeys, "keystroke"); got != 3 {
		t.Fatalf("Pending = %d, want 3", got)
	}

	agg.Flush()

	var summaries []map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		var rec map[string]any
		if err := json.Unmarshal(line, &rec); err != nil {
			t.Fatalf("bad json %q: %v", line, err)
		}
		summaries = append(summaries, rec)
	}
	if len(summaries) != 2 {
		t.Fatalf("got %d summaries, want 2", len(summaries))
	}
	// keys sort before search
	first := summaries[0]
	if first["event"] != "keystroke" || first["count"] != float64(3) || first["key"] != "c" {
		t.Errorf("unexpected keystroke summary: %v", first)
	}
	if agg.Pending(CompKeys, "keystroke") != 0 {
		t.Error("Flush should reset counters")
	}
}

func TestAggregatorNilLoggerDrops(t *testing.T) {
	agg := NewAggregator(nil, 1)
	agg.Start()
	agg.Record(CompUI, "resize")
	agg.Stop()
	if agg.Pending(CompUI, "resize") != 0 {
		t.Error("Stop should flush pending entries")
	}
}
