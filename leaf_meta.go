package mp4

const (
	metaClassUTF8 = 1
	metaClassJPEG = 13
	metaClassPNG  = 14
	metaClassBMP  = 27
)

// parseMeta parses a "meta" box's children (an optional "keys" box, an
// "ilst" box), depositing reconciled entries into ctx.mb. The same
// key/value extraction rules apply regardless of whether the box is nested
// under moov/udta or sits directly under moov, matching the original's dual
// "mdta" (key-index) vs "mdir" (literal-tag) metadata schemes. Which scheme
// applies is decided by whether this meta box holds a "keys" box, not by its
// container; tag types are not checked against a list of known Apple tags.
func parseMeta(r *Reader, h BoxHeader, ctx *parseCtx) error {
	inner := *ctx
	inner.keyList = nil
	return walkContainer(r, h.Payload, func(ch BoxHeader) error {
		switch ch.Type {
		case TypeKeys:
			keys, err := parseKeys(r, ch)
			if err != nil {
				return err
			}
			inner.keyList = keys
			return nil
		case TypeIlst:
			return parseIlst(r, ch, &inner)
		default:
			return nil
		}
	})
}

// parseKeys reads a "keys" box's entry_count and each (namespace, name)
// key_size-prefixed entry, returning just the name portion (the namespace
// is discarded, matching the original, which never surfaces it).
func parseKeys(r *Reader, h BoxHeader) ([]string, error) {
	if h.Payload < 4 {
		return nil, newErr(MalformedSize, h.Type, h.Offset, "keys box too small: %d", h.Payload)
	}
	count, err := r.ReadU32BE()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, count)
	for i := uint32(0); i < count; i++ {
		keySize, err := r.ReadU32BE()
		if err != nil {
			return nil, err
		}
		if keySize < 8 {
			return nil, newErr(MalformedSize, h.Type, h.Offset, "key size %d smaller than 8", keySize)
		}
		if _, err := r.ReadU32BE(); err != nil { // key_namespace, unused
			return nil, err
		}
		name, err := r.ReadExact(int(keySize - 8))
		if err != nil {
			return nil, err
		}
		keys = append(keys, string(name))
	}
	return keys, nil
}

// parseIlst walks an "ilst" box's tag entries. Each entry is itself a
// container whose single "data" child carries the value; the entry's own
// box type is either a literal Apple tag fourcc (the mdir scheme, when no
// sibling "keys" box was present) or a 1-based index into ctx.keyList (the
// mdta scheme, when one was).
func parseIlst(r *Reader, h BoxHeader, ctx *parseCtx) error {
	return walkContainer(r, h.Payload, func(tag BoxHeader) error {
		return walkContainer(r, tag.Payload, func(ch BoxHeader) error {
			if ch.Type != TypeData {
				return nil
			}
			return parseMetaData(r, ch, tag.Type, ctx)
		})
	})
}

// parseMetaData parses a "data" box nested under one ilst tag entry and
// records the resulting key/value pair or cover-art bytes, following
// mp4_demux_parse_meta_data's class/tag dispatch. Per the original (e.g.
// mp4_demux.c:2034-2042), a udta-scheme (mdir) tag's key is always the raw
// 4 bytes of its own box type rendered as a string, never a mapped name;
// the mdta scheme's key-index form is only used when a sibling "keys" box
// supplied ctx.keyList.
func parseMetaData(r *Reader, h BoxHeader, tagType BoxType, ctx *parseCtx) error {
	if h.Payload < 8 {
		return newErr(MalformedSize, h.Type, h.Offset, "data box too small: %d", h.Payload)
	}
	vc, err := r.ReadU32BE()
	if err != nil {
		return err
	}
	class := vc & 0x00ffffff
	if _, err := r.ReadU32BE(); err != nil { // reserved/locale
		return err
	}
	valueLen := int(h.Payload - 8)

	switch class {
	case metaClassUTF8:
		raw, err := r.ReadExact(valueLen)
		if err != nil {
			return err
		}
		value := string(raw)
		if ctx.keyList != nil {
			if idx := keyIndex(tagType); idx > 0 && int(idx) <= len(ctx.keyList) {
				ctx.mb.MetaEntries = append(ctx.mb.MetaEntries, MetadataEntry{Key: ctx.keyList[idx-1], Value: value})
			}
			return nil
		}
		ctx.mb.UdtaEntries = append(ctx.mb.UdtaEntries, MetadataEntry{Key: string(tagType[:]), Value: value})
		return nil
	case metaClassJPEG, metaClassPNG, metaClassBMP:
		raw, err := r.ReadExact(valueLen)
		if err != nil {
			return err
		}
		if ctx.keyList != nil {
			if idx := keyIndex(tagType); idx > 0 && int(idx) <= len(ctx.keyList) && ctx.keyList[idx-1] == "com.apple.quicktime.artwork" {
				ctx.mb.MetaCover = raw
			}
			return nil
		}
		if tagType == TypeCovr {
			ctx.mb.UdtaCover = raw
		}
		return nil
	default:
		return r.Skip(int64(valueLen))
	}
}

// keyIndex interprets a BoxType as the big-endian uint32 it holds, used
// whenever a sibling "keys" box was seen: under the "mdta" metadata scheme,
// an ilst entry's "type" field is a 1-based index into that "keys" box
// rather than a fourcc. An index outside the key list is ignored.
func keyIndex(t BoxType) uint32 {
	return be.Uint32(t[:])
}

// parseXyz parses the QuickTime "©xyz" location atom: a 16-bit
// location_size, a 16-bit language code, then location_size bytes of
// UTF-8 text. The caller (parseUdta) uses the box's own type as the
// reconciled metadata key, matching mp4_demux.c:1821-1825, which never
// hardcodes a "location" string.
func parseXyz(r *Reader, h BoxHeader) (string, error) {
	if h.Payload < 4 {
		return "", newErr(MalformedSize, h.Type, h.Offset, "xyz box too small: %d", h.Payload)
	}
	locationSize, err := r.ReadU16BE()
	if err != nil {
		return "", err
	}
	if _, err := r.ReadU16BE(); err != nil { // language code, unused
		return "", err
	}
	if int64(4)+int64(locationSize) > h.Payload {
		return "", newErr(MalformedSize, h.Type, h.Offset, "location_size %d exceeds box payload %d", locationSize, h.Payload)
	}
	raw, err := r.ReadExact(int(locationSize))
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
