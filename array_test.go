package wirestruct

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Testable Properties scenario 4: sentinel-terminated array of u8.
func TestArraySentinelTerminated(t *testing.T) {
	a := NewArray(NewUInt(8, LittleEndian)).WithSentinel(int64(0))
	s := NewByteStream([]byte{0x01, 0x02, 0x00, 0x03})

	v, err := a.Parse(s, NewContext(a, nil, nil))
	require.NoError(t, err)
	require.Equal(t, []any{int64(1), int64(2)}, v)
	require.EqualValues(t, 3, s.Tell())

	out := NewEmptyByteStream()
	require.NoError(t, a.Emit(v, out, NewContext(a, nil, nil)))
	require.Equal(t, []byte{0x01, 0x02, 0x00}, out.Bytes())
}

func TestArrayCount(t *testing.T) {
	a := NewArray(NewUInt(16, BigEndian)).WithCount(2)
	s := NewByteStream([]byte{0x00, 0x01, 0x00, 0x02, 0xFF, 0xFF})

	v, err := a.Parse(s, NewContext(a, nil, nil))
	require.NoError(t, err)
	require.Equal(t, []any{int64(1), int64(2)}, v)
	require.EqualValues(t, 4, s.Tell())

	n, known, err := a.Sizeof(v, NewContext(a, nil, nil))
	require.NoError(t, err)
	require.True(t, known)
	require.EqualValues(t, 4, n)
}

func TestArrayByteSize(t *testing.T) {
	a := NewArray(NewUInt(8, LittleEndian)).WithByteSize(3)
	s := NewByteStream([]byte{1, 2, 3, 4, 5})

	v, err := a.Parse(s, NewContext(a, nil, nil))
	require.NoError(t, err)
	require.Equal(t, []any{int64(1), int64(2), int64(3)}, v)
	require.EqualValues(t, 3, s.Tell())
}

func TestArrayCleanEOFTerminates(t *testing.T) {
	a := NewArray(NewUInt(32, LittleEndian))
	s := NewByteStream([]byte{1, 0, 0, 0})

	v, err := a.Parse(s, NewContext(a, nil, nil))
	require.NoError(t, err)
	require.Equal(t, []any{int64(1)}, v)
}

func TestArrayOversizedEmitFails(t *testing.T) {
	a := NewArray(NewUInt(8, LittleEndian)).WithByteSize(2)
	out := NewEmptyByteStream()
	err := a.Emit([]any{int64(1), int64(2), int64(3)}, out, NewContext(a, nil, nil))
	require.Error(t, err)
	require.Equal(t, KindSizeViolation, ErrorKind(err))
}

func TestArrayHeterogeneousElementList(t *testing.T) {
	a := NewArray([]Codec{NewUInt(8, LittleEndian), NewUInt(16, LittleEndian)}).WithCount(2)
	s := NewByteStream([]byte{0x01, 0x02, 0x00})

	v, err := a.Parse(s, NewContext(a, nil, nil))
	require.NoError(t, err)
	require.Equal(t, []any{int64(1), int64(2)}, v)
}
