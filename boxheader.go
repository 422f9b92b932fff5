package mp4

// BoxHeader is the parsed header of a single box: its type, the absolute
// stream offset of its first byte, and the size of its payload (the bytes
// after the header, not counting the header itself).
type BoxHeader struct {
	Type    BoxType
	Offset  int64 // absolute offset of the box's first header byte
	Size    int64 // total size including header
	Payload int64 // Size minus the header's own length
	Version uint8
	Flags   uint32
}

// readBoxHeader reads one box header from r, which must have at least 8
// bytes remaining in its innermost budget (the bounds contract: a
// container only calls this while Remaining() >= 8).
//
// size==0 is treated as "this box extends to the end of its enclosing
// container"; the caller is responsible for resolving that against the
// enclosing budget.
func readBoxHeader(r *Reader) (BoxHeader, error) {
	start := r.CurrentOffset()
	if r.Remaining() < 8 {
		return BoxHeader{}, newErr(MalformedSize, BoxType{}, start, "only %d bytes remain, need at least 8 for a box header", r.Remaining())
	}

	size32, err := r.ReadU32BE()
	if err != nil {
		return BoxHeader{}, err
	}
	var t BoxType
	raw, err := r.ReadExact(4)
	if err != nil {
		return BoxHeader{}, err
	}
	copy(t[:], raw)

	size := int64(size32)
	headerLen := int64(8)

	if size32 == 1 {
		if r.Remaining() < 8 {
			return BoxHeader{}, newErr(MalformedSize, t, start, "largesize declared but only %d bytes remain", r.Remaining())
		}
		size64, err := r.ReadU64BE()
		if err != nil {
			return BoxHeader{}, err
		}
		size = int64(size64)
		headerLen += 8
	} else if size32 == 0 {
		size = r.Remaining() + 8 // extends to end of enclosing container
	}

	if t == newBoxType("uuid") {
		if r.Remaining() < 16 {
			return BoxHeader{}, newErr(MalformedSize, t, start, "uuid box but only %d bytes remain", r.Remaining())
		}
		if _, err := r.ReadExact(16); err != nil {
			return BoxHeader{}, err
		}
		headerLen += 16
	}

	var version uint8
	var flags uint32
	if isFullBox(t) {
		if r.Remaining() < 4 {
			return BoxHeader{}, newErr(MalformedSize, t, start, "full box header needs 4 more bytes, %d remain", r.Remaining())
		}
		vf, err := r.ReadU32BE()
		if err != nil {
			return BoxHeader{}, err
		}
		version = uint8(vf >> 24)
		flags = vf & 0x00ffffff
		headerLen += 4
	}

	if size < headerLen {
		return BoxHeader{}, newErr(MalformedSize, t, start, "box declares size %d smaller than its own header (%d)", size, headerLen)
	}

	return BoxHeader{
		Type:    t,
		Offset:  start,
		Size:    size,
		Payload: size - headerLen,
		Version: version,
		Flags:   flags,
	}, nil
}
