package serial

import "errors"

var (
	// ErrNilIO indicates that NewReader/NewWriter was called with an nil interface
	ErrNilIO = errors.New("serial: NewReader/NewWriter called with a nil io.Reader/io.Writer")

	// ErrSizeTooSmall indicates a size conflict with bufio
	ErrSizeTooSmall = errors.New("serial: NewReaderSize with a size smaller than 16 conflict with bufio")

	// ErrAllocationFailure is raised by panic when a buffer cannot grow to the requested size.
	// It is not recoverable.
	ErrAllocationFailure = errors.New("serial: allocation failure")

	// ErrTruncatedInput indicates that a decode attempted to read past the available bytes.
	ErrTruncatedInput = errors.New("serial: truncated input")

	// ErrSizeOverflow indicates a length prefix that is negative, larger than the remaining
	// input or the configured limit, or a length that cannot be represented on the wire.
	ErrSizeOverflow = errors.New("serial: size overflow")

	// ErrUnsupportedType indicates a value whose type has no encoding (chan, func, interface...).
	ErrUnsupportedType = errors.New("serial: unsupported type")

	// ErrNilTarget indicates Decode was called with something other than a non-nil pointer.
	ErrNilTarget = errors.New("serial: decode target must be a non-nil pointer")

	// ErrInvalidPresence indicates a nullable presence byte other than 0 or 1.
	ErrInvalidPresence = errors.New("serial: invalid presence byte")

	// ErrLengthMismatch indicates a sequence count that does not match a fixed-size array.
	ErrLengthMismatch = errors.New("serial: sequence length does not match array length")

	// ErrTrailingData is returned by Unmarshal when bytes remain after the value was decoded.
	ErrTrailingData = errors.New("serial: trailing data found after decoding")

	// ErrInvalidSeek indicates a seek was attempted to invalid position.
	ErrInvalidSeek = errors.New("serial: seek to a invalid position")

	// ErrInvalidWhence indicates that an invalid 'whence' parameter was provided to a Seek operation.
	ErrInvalidWhence = errors.New("serial: unsupported whence")

	// ErrInvalidWrite indicates that an io.Writer returned an invalid (negative) count from Write.
	ErrInvalidWrite = errors.New("serial: writer returned invalid count from Write")
)
