package wirestruct

// ByteOrder selects little- or big-endian interpretation for Int,
// UInt, and Float, the "order" parameter of §4.3.
type ByteOrder int

const (
	LittleEndian ByteOrder = iota
	BigEndian
)

// Options is a small typed settings bag threaded into a fresh Context
// by NewContext when the caller doesn't build one itself. It plays
// the same role the teacher's Config does for grammar transformations
// (config.go): named, typed values with a documented default, except
// wirestruct's Options is optional because the kernel has no
// multi-stage pipeline to configure — most callers never touch it.
type Options struct {
	// DefaultOrder is the ByteOrder new Int/Float codecs use when one
	// isn't explicit at the call site that constructs them. Codecs
	// built with NewInt/NewFloat always carry their own order, so this
	// only affects helpers that construct codecs on the caller's
	// behalf (none in this package yet; reserved for format packages
	// built on top of the kernel).
	DefaultOrder ByteOrder

	// AllowTrailingBytes records whether a caller tolerates unconsumed
	// bytes after the root codec returns. Nothing in this package reads
	// it: the top-level Parse driver never checks for trailing bytes,
	// whatever its value.
	AllowTrailingBytes bool
}

// DefaultOptions returns the zero-value Options: little-endian,
// AllowTrailingBytes false.
func DefaultOptions() *Options {
	return &Options{DefaultOrder: LittleEndian}
}
