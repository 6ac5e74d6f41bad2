package logger_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/stratum/internal/adapters/logger"
	"go.trai.ch/zerr"
)

func TestCollectErrorEntries(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantMessages []string
		wantMetadata []map[string]any
	}{
		{
			name:         "standard error",
			err:          errors.New("disk full"),
			wantMessages: []string{"disk full"},
			wantMetadata: []map[string]any{nil},
		},
		{
			name:         "zerr without metadata",
			err:          zerr.New("not found"),
			wantMessages: []string{"not found"},
			wantMetadata: []map[string]any{{}},
		},
		{
			name:         "wrapped chain",
			err:          zerr.Wrap(zerr.Wrap(errors.New("permission denied"), "cannot open blob"), "staging failed"),
			wantMessages: []string{"staging failed", "cannot open blob", "permission denied"},
			wantMetadata: []map[string]any{{}, {}, nil},
		},
		{
			name:         "metadata merges on one level",
			err:          zerr.With(zerr.With(zerr.New("build failed"), "element", "hello"), "attempt", 2),
			wantMessages: []string{"build failed"},
			wantMetadata: []map[string]any{{"element": "hello", "attempt": 2}},
		},
		{
			name:         "metadata on a standard error",
			err:          zerr.With(errors.New("connection refused"), "url", "grpc://cache:11001"),
			wantMessages: []string{"connection refused"},
			wantMetadata: []map[string]any{{"url": "grpc://cache:11001"}},
		},
		{
			name: "metadata per level",
			err: zerr.With(
				zerr.Wrap(zerr.With(zerr.New("digest mismatch"), "digest", "ab12"), "upload failed"),
				"element", "base"),
			wantMessages: []string{"upload failed", "digest mismatch"},
			wantMetadata: []map[string]any{{"element": "base"}, {"digest": "ab12"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := logger.CollectErrorEntries(tt.err)
			if !assert.Len(t, entries, len(tt.wantMessages)) {
				return
			}
			for i := range entries {
				assert.Equal(t, tt.wantMessages[i], entries[i].Message, "message %d", i)
				assert.Equal(t, tt.wantMetadata[i], entries[i].Metadata, "metadata %d", i)
			}
		})
	}

	assert.Empty(t, logger.CollectErrorEntries(nil))
}

func TestFormatErrorEntries(t *testing.T) {
	tests := []struct {
		name    string
		entries []logger.ErrorEntry
		want    string
	}{
		{"empty", nil, ""},
		{"single", []logger.ErrorEntry{{Message: "boom"}}, "Error: boom"},
		{
			"causes",
			[]logger.ErrorEntry{{Message: "first"}, {Message: "second"}, {Message: "third"}},
			"Error: first\n\n  Caused by:\n    → second\n    → third",
		},
		{
			"sorted metadata",
			[]logger.ErrorEntry{{Message: "e", Metadata: map[string]any{"zeta": 1, "alpha": "a"}}},
			"Error: e\n       alpha: a\n       zeta: 1",
		},
		{
			"multiline cause",
			[]logger.ErrorEntry{{Message: "main\nmore"}, {Message: "line1\nline2", Metadata: map[string]any{"k": "v"}}},
			"Error: main\n       more\n\n  Caused by:\n    → line1\n      line2\n      k: v",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, logger.FormatErrorEntries(tt.entries))
		})
	}
}

func TestCollectAndFormat(t *testing.T) {
	inner := zerr.With(zerr.New("remote unavailable"), "timeout_ms", 5000)
	err := zerr.With(zerr.Wrap(inner, "pull failed"), "element", "base")

	want := "Error: pull failed\n" +
		"       element: base\n\n" +
		"  Caused by:\n" +
		"    → remote unavailable\n" +
		"      timeout_ms: 5000"
	assert.Equal(t, want, logger.FormatErrorEntries(logger.CollectErrorEntries(err)))
}
