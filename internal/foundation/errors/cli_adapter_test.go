package errors

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil error", nil, 0},
		{"validation", ValidationError("bad flag").Build(), 2},
		{"config", ConfigError("missing input").Build(), 7},
		{"heading", HeadingError("depth jump").Build(), 9},
		{"stability", StabilityError("malformed").Build(), 9},
		{"build", BuildError("2 pages failed").Build(), 11},
		{"internal", InternalError("boom").Build(), 10},
		{"unclassified", &customError{msg: "unknown"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, adapter.ExitCodeFor(tt.err))
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	quiet := NewCLIErrorAdapter(false, slog.Default())
	verbose := NewCLIErrorAdapter(true, slog.Default())

	assert.Equal(t, "", quiet.FormatError(nil))
	assert.Equal(t, "Error: unknown", quiet.FormatError(&customError{msg: "unknown"}))
	assert.Equal(t, "Internal error occurred (use -v for details)", quiet.FormatError(InternalError("boom").Build()))
	assert.Contains(t, verbose.FormatError(InternalError("boom").Build()), "boom")
	assert.Contains(t, quiet.FormatError(HeadingError("depth jump").Build()), "depth jump")
}

func TestCLIErrorAdapter_HandleError(t *testing.T) {
	var out, logs bytes.Buffer
	adapter := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(&logs, nil)))
	adapter.out = &out
	code := -1
	adapter.exit = func(c int) { code = c }

	adapter.HandleError(ConfigError("input directory not found").WithContext("input", "doc/api").Build())

	assert.Equal(t, 7, code)
	assert.Contains(t, out.String(), "input directory not found")
	assert.Contains(t, logs.String(), "input=doc/api")

	logs.Reset()
	adapter.HandleError(StateError("query page").WithContext("page", "fs").Build())
	assert.NotContains(t, logs.String(), "page=fs", "non-fatal context stays hidden without -v")

	code = -1
	adapter.HandleError(nil)
	assert.Equal(t, -1, code)
}

type customError struct{ msg string }

func (e *customError) Error() string { return e.msg }
