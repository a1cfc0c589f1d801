package wirestruct

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Testable Properties scenario 1: little-endian u32.
func TestUInt32LittleEndian(t *testing.T) {
	c := NewUInt(32, LittleEndian)
	s := NewByteStream([]byte{0x01, 0x02, 0x03, 0x04})

	v, err := c.Parse(s, NewContext(c, nil, nil))
	require.NoError(t, err)
	require.EqualValues(t, 0x04030201, v)

	out := NewEmptyByteStream()
	require.NoError(t, c.Emit(v, out, NewContext(c, v, nil)))
	require.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, out.Bytes())
}

func TestUInt32BigEndian(t *testing.T) {
	c := NewUInt(32, BigEndian)
	s := NewByteStream([]byte{0x01, 0x02, 0x03, 0x04})

	v, err := c.Parse(s, NewContext(c, nil, nil))
	require.NoError(t, err)
	require.EqualValues(t, 0x01020304, v)
}

func TestInt16SignedTwosComplement(t *testing.T) {
	c := NewInt(16, BigEndian, true)
	s := NewByteStream([]byte{0xFF, 0xFF})

	v, err := c.Parse(s, NewContext(c, nil, nil))
	require.NoError(t, err)
	require.EqualValues(t, -1, v)

	s2 := NewByteStream([]byte{0x80, 0x00})
	v2, err := c.Parse(s2, NewContext(c, nil, nil))
	require.NoError(t, err)
	require.EqualValues(t, -32768, v2)
}

func TestFloat32RoundTrip(t *testing.T) {
	c := NewFloat(32, LittleEndian)
	out := NewEmptyByteStream()
	require.NoError(t, c.Emit(float64(3.5), out, NewContext(c, nil, nil)))

	in := NewByteStream(out.Bytes())
	v, err := c.Parse(in, NewContext(c, nil, nil))
	require.NoError(t, err)
	require.InDelta(t, 3.5, v.(float64), 0.0001)
}

func TestFloat64BigEndianRoundTrip(t *testing.T) {
	c := NewFloat(64, BigEndian)
	out := NewEmptyByteStream()
	require.NoError(t, c.Emit(-12.25, out, NewContext(c, nil, nil)))
	require.Len(t, out.Bytes(), 8)

	in := NewByteStream(out.Bytes())
	v, err := c.Parse(in, NewContext(c, nil, nil))
	require.NoError(t, err)
	require.Equal(t, -12.25, v)
}

func TestBool8(t *testing.T) {
	c := NewBool8()
	ctx := NewContext(c, nil, nil)

	s := NewByteStream([]byte{1})
	v, err := c.Parse(s, ctx)
	require.NoError(t, err)
	require.Equal(t, true, v)

	out := NewEmptyByteStream()
	require.NoError(t, c.Emit(false, out, ctx))
	require.Equal(t, []byte{0}, out.Bytes())
}

func TestIntSizeofIsFixed(t *testing.T) {
	c := NewUInt(32, LittleEndian)
	n, known, err := c.Sizeof(nil, nil)
	require.NoError(t, err)
	require.True(t, known)
	require.EqualValues(t, 4, n)
}
