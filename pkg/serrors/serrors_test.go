package serrors_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"domaincheck/pkg/serrors"

	"github.com/stretchr/testify/require"
)

type customError struct{ msg string }

func (e customError) Error() string { return e.msg }

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestDefaultKindsDistinct(t *testing.T) {
	kinds := []serrors.Kind{
		serrors.ErrTransport,
		serrors.ErrTimeout,
		serrors.ErrParse,
		serrors.ErrBadInput,
		serrors.ErrNotFound,
		serrors.ErrInternal,
	}
	seen := map[serrors.Kind]bool{}
	for i, k := range kinds {
		require.NotNil(t, k, "kind at index %d is nil", i)
		require.False(t, seen[k], "kind at index %d is duplicate: %v", i, k)
		seen[k] = true
	}
}

func TestErrorFormatting(t *testing.T) {
	base := errors.New("connection refused")

	e1 := serrors.With(serrors.ErrBadInput, "line %d unreadable", 3)
	require.Equal(t, "line 3 unreadable", e1.Error())

	e2 := serrors.Wrap(serrors.ErrTransport, base, "fetching page")
	require.Equal(t, "fetching page: connection refused", e2.Error())

	e3 := serrors.KindOnly(serrors.ErrParse)
	require.Equal(t, "PARSE", e3.Error())
}

func TestIsAndAs(t *testing.T) {
	base := &customError{"root cause"}
	e := serrors.Wrap(serrors.ErrParse, base, "reading")

	require.ErrorIs(t, e, serrors.ErrParse)
	require.ErrorIs(t, e, base)
	require.NotErrorIs(t, e, serrors.ErrTransport)

	var k serrors.Kind
	require.ErrorAs(t, e, &k)
	require.Equal(t, serrors.ErrParse, k)

	var ce *customError
	require.ErrorAs(t, e, &ce)
	require.Equal(t, base, ce)
}

func TestClassify(t *testing.T) {
	require.NoError(t, serrors.Classify(nil, "noop"))

	err := serrors.Classify(context.DeadlineExceeded, "get")
	require.ErrorIs(t, err, serrors.ErrTimeout)

	err = serrors.Classify(fmt.Errorf("dial: %w", timeoutError{}), "get")
	require.ErrorIs(t, err, serrors.ErrTimeout)

	err = serrors.Classify(errors.New("connection reset"), "get")
	require.ErrorIs(t, err, serrors.ErrTransport)

	parse := serrors.With(serrors.ErrParse, "bad body")
	require.Same(t, parse, serrors.Classify(parse, "get"))
}

func TestNote(t *testing.T) {
	require.Equal(t, "rdap_error=TIMEOUT", serrors.Note("rdap", serrors.KindOnly(serrors.ErrTimeout)))
	require.Equal(t, "statshow_error=TRANSPORT",
		serrors.Note("statshow", fmt.Errorf("outer: %w", serrors.KindOnly(serrors.ErrTransport))))
	require.Equal(t, "hypestat_error=INTERNAL", serrors.Note("hypestat", errors.New("plain")))
}
