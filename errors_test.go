package inventory

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zero-day-ai/inventory/config"
	"github.com/zero-day-ai/inventory/connector"
	"github.com/zero-day-ai/inventory/katalogus"
	"github.com/zero-day-ai/inventory/listing"
	"github.com/zero-day-ai/inventory/objectstore"
	"github.com/zero-day-ai/inventory/ooi"
	"github.com/zero-day-ai/inventory/properties"
	"github.com/zero-day-ai/inventory/transport"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "no cause",
			err:  &Error{Op: "Session.Get", Kind: KindInternal},
			want: "inventory: Session.Get: internal",
		},
		{
			name: "with cause",
			err:  &Error{Op: "Session.Get", Kind: KindNotFound, Err: connector.ErrNotFound},
			want: "inventory: Session.Get (not_found): object not found",
		},
		{
			name: "with context",
			err: &Error{Op: "Session.Get", Kind: KindNotFound, Err: connector.ErrNotFound,
				Context: map[string]any{"reference": "Network|internet"}},
			want: "inventory: Session.Get (not_found): object not found [context: map[reference:Network|internet]]",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{Op: "Session.Get", Kind: KindNotFound, Err: connector.ErrNotFound}

	assert.ErrorIs(t, err, &Error{Kind: KindNotFound})
	assert.ErrorIs(t, err, &Error{Op: "Session.Get", Kind: KindNotFound})
	assert.NotErrorIs(t, err, &Error{Op: "Session.Tree", Kind: KindNotFound})
	assert.NotErrorIs(t, err, &Error{Kind: KindValidation})
	assert.ErrorIs(t, err, connector.ErrNotFound)
	assert.False(t, err.Is(nil))
}

func TestError_WithContext(t *testing.T) {
	orig := &Error{Op: "op", Kind: KindNetwork, Context: map[string]any{"a": 1}}
	copied := orig.WithContext(map[string]any{"b": 2})

	assert.Equal(t, map[string]any{"a": 1, "b": 2}, copied.Context)
	assert.Equal(t, map[string]any{"a": 1}, orig.Context, "original is untouched")
}

func TestClassify(t *testing.T) {
	ref := ooi.MustParse("Network|internet")

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"not found", &connector.NotFoundError{Reference: ref}, KindNotFound},
		{"plugin not found", fmt.Errorf("wrap: %w", katalogus.ErrPluginNotFound), KindNotFound},
		{"malformed reference", &ooi.MalformedReferenceError{Input: "x", Reason: "missing separator"}, KindValidation},
		{"invalid window", listing.ErrInvalidWindow, KindValidation},
		{"invalid task id", objectstore.ErrInvalidTaskID, KindValidation},
		{"invalid config", fmt.Errorf("%w: graph.url is required", config.ErrInvalidConfig), KindConfiguration},
		{"missing field", &properties.MissingFieldError{Reference: ref, Field: "scan_profile"}, KindInvariant},
		{"root missing", ooi.ErrRootMissing, KindInvariant},
		{"deadline", context.DeadlineExceeded, KindTimeout},
		{"server error", &transport.StatusError{Service: "graph", StatusCode: 502}, KindNetwork},
		{"network", &transport.NetworkError{Service: "graph", Err: errors.New("connection refused")}, KindNetwork},
		{"other", errors.New("boom"), KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify("op", tt.err)
			assert.Equal(t, tt.want, KindOf(err))
			assert.ErrorIs(t, err, tt.err)
		})
	}

	assert.NoError(t, classify("op", nil))

	inner := NewValidationError("inner", errors.New("bad"))
	assert.Same(t, inner, classify("outer", inner))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, "", KindOf(nil))
	assert.Equal(t, "", KindOf(errors.New("plain")))
	assert.Equal(t, KindConfiguration, KindOf(fmt.Errorf("wrap: %w", NewConfigurationError("op", ErrMissingConnector))))
}

type mockCloser struct {
	closeErr   error
	closeCalls int
}

func (m *mockCloser) Close() error {
	m.closeCalls++
	return m.closeErr
}

func TestCloseWithLog(t *testing.T) {
	var logBuf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logBuf, nil))

	CloseWithLog(nil, logger, "nothing")
	assert.Empty(t, logBuf.String())

	ok := &mockCloser{}
	CloseWithLog(ok, logger, "cache")
	assert.Equal(t, 1, ok.closeCalls)
	assert.Empty(t, logBuf.String())

	failing := &mockCloser{closeErr: errors.New("close failed: resource busy")}
	CloseWithLog(failing, logger, "discovery client")
	out := logBuf.String()
	assert.Contains(t, out, "failed to close resource")
	assert.Contains(t, out, "discovery client")
	assert.Contains(t, out, "level=WARN")

	require.NotPanics(t, func() {
		CloseWithLog(&mockCloser{closeErr: errors.New("x")}, nil, "default logger")
	})
}
