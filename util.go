package serial

import "encoding/binary"

var (
	BE = binary.BigEndian
	LE = binary.LittleEndian
	// Order is the default byte order of normalized integers and length prefixes.
	Order binary.ByteOrder = BE
	// NativeOrder is the host byte order used for floats, bools and raw scalar blocks.
	NativeOrder = binary.NativeEndian
)

// Ptr returns a pointer to a copy of v.
func Ptr[T any](v T) *T { return &v }
