package wirestruct

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorPathDecoration(t *testing.T) {
	rt := NewRecordType().
		Field("magic", NewFixed([]byte{0xCA, 0xFE})).
		Build()
	outer := NewRecordType().
		Field("header", rt).
		Build()

	_, err := Parse(outer, []byte{0x00, 0x00}, nil)
	require.Error(t, err)

	var werr *Error
	require.ErrorAs(t, err, &werr)
	require.Equal(t, "header.magic", formatPath(werr.Path))
	require.Equal(t, KindConstantMismatch, ErrorKind(err))
	require.Contains(t, err.Error(), "[header.magic]")
}

func TestErrorNotDoubleWrapped(t *testing.T) {
	c := NewFixed([]byte{0x01})
	_, err := Parse(c, []byte{0x02}, nil)
	require.Error(t, err)

	werr, ok := err.(*Error)
	require.True(t, ok)
	// The Cause must be the original kindError, not another *Error:
	// nothing in this call had a path frame to decorate with, and the
	// outermost driver must not wrap what's already wrapped.
	_, doubleWrapped := werr.Cause.(*Error)
	require.False(t, doubleWrapped)
	require.Empty(t, werr.Path)
}

func TestErrorArrayIndexPath(t *testing.T) {
	// The mismatch at index 1 must not land exactly at EOF, or the
	// array's "peek one byte, terminate cleanly on EOF" rule (§4.5)
	// would swallow it instead of rethrowing.
	a := NewArray(NewFixed([]byte{0x01})).WithCount(3)
	_, err := Parse(a, []byte{0x01, 0x02, 0x99}, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "[1]")
}

func TestPathBalanceAfterFailure(t *testing.T) {
	ctx := NewContext(nil, nil, nil)
	err := ctx.Enter("a", nil, func() error {
		return ctx.Enter("b", nil, func() error {
			return newError(KindUnknown, "boom")
		})
	})
	require.Error(t, err)
	require.Empty(t, ctx.Path())
}

