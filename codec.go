package serial

// Encoder is implemented by types that write their own fields.
type Encoder interface {
	// Encode writes each field to w in a fixed order. Failures are
	// recorded on w and surface through w.Err().
	Encode(w *Writer)
}

// Decoder is implemented by types that read their own fields.
type Decoder interface {
	// Decode reads the fields in the order Encode wrote them.
	// Use r.Fail to reject invalid content.
	Decode(r *Reader)
}

// Serializable is the explicit object contract. A type whose pointer
// implements it is always encoded through it, even if it is also a
// slice, map or struct.
type Serializable interface {
	Encoder
	Decoder
}

// Fielder is the declarative object contract: the type lists its fields once
// and the same list drives both encoding and decoding.
//
//	func (p *Point) Fields(f *serial.Fields) { f.Add(&p.X, &p.Y) }
//
// Fields must use a pointer receiver so decoded values land in the object.
type Fielder interface {
	Fields(f *Fields)
}

// Sizer is an interface for types that can report their binary size.
// Marshal uses it to reserve the output buffer up front.
type Sizer interface {
	// Size returns the size of the type in bytes when binary encoded.
	Size() int
}
