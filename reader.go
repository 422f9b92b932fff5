package mp4

import (
	"io"
)

// Reader provides bounded, big-endian reads over a seekable byte stream,
// plus a budget stack used by the box-tree walker to enforce that no box
// reads past the bytes its enclosing container declared for it.
//
// Reader tracks its own notion of the current stream position
// (CurrentOffset) rather than querying the underlying stream, so that a
// caller cannot observe a position change without a Reader method call.
type Reader struct {
	rs     io.ReadSeeker
	pos    int64
	size   int64
	budget []int64 // stack of remaining-byte budgets, one per open container
	small  [8]byte
}

// NewReader wraps rs. size is the total stream length, used to bound the
// outermost budget.
func NewReader(rs io.ReadSeeker, size int64) *Reader {
	return &Reader{rs: rs, size: size, budget: []int64{size}}
}

// CurrentOffset returns the reader's current absolute position in the
// stream.
func (r *Reader) CurrentOffset() int64 { return r.pos }

// Size returns the total stream length.
func (r *Reader) Size() int64 { return r.size }

// PushBudget opens a new nested budget of n bytes, charged against (and
// capped by) the enclosing budget.
func (r *Reader) PushBudget(n int64) error {
	top := r.budget[len(r.budget)-1]
	if n > top {
		return newErr(MalformedSize, BoxType{}, r.pos, "nested budget %d exceeds enclosing budget %d", n, top)
	}
	r.budget = append(r.budget, n)
	return nil
}

// PopBudget closes the innermost budget, returning the number of bytes that
// were left unconsumed in it. Since charge() decrements every open budget
// level on every read, the parent budget has already had the consumed
// bytes deducted and needs no further adjustment.
func (r *Reader) PopBudget() (remaining int64) {
	n := len(r.budget)
	remaining = r.budget[n-1]
	r.budget = r.budget[:n-1]
	return remaining
}

// Remaining returns the number of bytes left in the innermost open budget.
func (r *Reader) Remaining() int64 {
	if len(r.budget) == 0 {
		return 0
	}
	return r.budget[len(r.budget)-1]
}

// charge deducts n bytes from every open budget level (a read inside a
// nested container also consumes from every enclosing container's budget).
func (r *Reader) charge(n int64) error {
	for i := range r.budget {
		if r.budget[i] < n {
			return newErr(MalformedSize, BoxType{}, r.pos, "read of %d bytes exceeds remaining budget %d", n, r.budget[i])
		}
	}
	for i := range r.budget {
		r.budget[i] -= n
	}
	r.pos += n
	return nil
}

func (r *Reader) readFull(buf []byte) error {
	n, err := io.ReadFull(r.rs, buf)
	if err != nil {
		return wrapErr(IoError, BoxType{}, r.pos, err, "short read (%d of %d bytes)", n, len(buf))
	}
	return r.charge(int64(n))
}

// ReadU8 reads a single byte.
func (r *Reader) ReadU8() (uint8, error) {
	if err := r.readFull(r.small[:1]); err != nil {
		return 0, err
	}
	return r.small[0], nil
}

// ReadU16BE reads a big-endian uint16.
func (r *Reader) ReadU16BE() (uint16, error) {
	if err := r.readFull(r.small[:2]); err != nil {
		return 0, err
	}
	return be.Uint16(r.small[:2]), nil
}

// ReadU32BE reads a big-endian uint32.
func (r *Reader) ReadU32BE() (uint32, error) {
	if err := r.readFull(r.small[:4]); err != nil {
		return 0, err
	}
	return be.Uint32(r.small[:4]), nil
}

// ReadU64BE reads a big-endian uint64.
func (r *Reader) ReadU64BE() (uint64, error) {
	if err := r.readFull(r.small[:8]); err != nil {
		return 0, err
	}
	return be.Uint64(r.small[:8]), nil
}

// ReadExact reads exactly n bytes into a freshly allocated slice.
func (r *Reader) ReadExact(n int) ([]byte, error) {
	if n < 0 {
		return nil, newErr(InvalidArgument, BoxType{}, r.pos, "negative read length %d", n)
	}
	buf := make([]byte, n)
	if err := r.readFull(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// Skip advances past n bytes without retaining them.
func (r *Reader) Skip(n int64) error {
	if n == 0 {
		return nil
	}
	if n < 0 {
		return newErr(InvalidArgument, BoxType{}, r.pos, "negative skip length %d", n)
	}
	if _, err := r.rs.Seek(n, io.SeekCurrent); err != nil {
		return wrapErr(IoError, BoxType{}, r.pos, err, "seek failed")
	}
	return r.charge(n)
}

// SeekTo repositions the stream at an absolute offset, resetting the
// budget stack to a single budget spanning the remainder of the file. The
// recursive descent walker never calls it; sample data is read through
// ReadAt instead.
func (r *Reader) SeekTo(offset int64) error {
	if offset < 0 || offset > r.size {
		return newErr(InvalidArgument, BoxType{}, offset, "seek offset %d out of range [0,%d]", offset, r.size)
	}
	if _, err := r.rs.Seek(offset, io.SeekStart); err != nil {
		return wrapErr(IoError, BoxType{}, offset, err, "seek failed")
	}
	r.pos = offset
	r.budget = []int64{r.size - offset}
	return nil
}

// ReadAt reads n bytes at an absolute offset, leaving the reader's logical
// position and budget stack exactly as they were beforehand. Used for
// sample-data reads that happen outside of box-tree traversal (e.g.
// chapter text samples, sample payload fetches driven by the index).
func (r *Reader) ReadAt(offset int64, n int) ([]byte, error) {
	savedPos := r.pos
	if _, err := r.rs.Seek(offset, io.SeekStart); err != nil {
		return nil, wrapErr(IoError, BoxType{}, offset, err, "seek failed")
	}
	buf := make([]byte, n)
	read, err := io.ReadFull(r.rs, buf)
	if err != nil {
		return nil, wrapErr(IoError, BoxType{}, offset, err, "short read (%d of %d bytes)", read, n)
	}
	if _, err := r.rs.Seek(savedPos, io.SeekStart); err != nil {
		return nil, wrapErr(IoError, BoxType{}, savedPos, err, "seek failed restoring position")
	}
	return buf, nil
}
