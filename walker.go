package mp4

import "github.com/sirupsen/logrus"

// parseCtx carries the ambient state the leaf parsers need but that isn't
// carried by the box tree itself (spec's "explicit context" design: cheaper
// and simpler than materializing a BoxNode tree and re-deriving context from
// it on every leaf visit).
type parseCtx struct {
	log     *logrus.Entry
	movie   *Movie
	track   *Track // non-nil while inside a trak
	mb      *MetadataBuffers
	keyList []string
}

// walkContainer reads box headers from r until its budget (pushed by the
// caller) is exhausted, invoking dispatch for each one. dispatch receives
// the header and must consume exactly h.Payload bytes (by reading fields,
// recursing, or skipping); walkContainer corrects for any under/over-read
// by skipping to the next box's declared start.
func walkContainer(r *Reader, budget int64, dispatch func(h BoxHeader) error) error {
	if err := r.PushBudget(budget); err != nil {
		return err
	}
	defer r.PopBudget()

	for r.Remaining() >= 8 {
		h, err := readBoxHeader(r)
		if err != nil {
			return err
		}
		nextOffset := h.Offset + h.Size
		if err := dispatch(h); err != nil {
			return err
		}
		// dispatch may have consumed more or fewer bytes than h.Payload
		// (e.g. a leaf parser that only reads a fixed prefix); resync to
		// the box's declared end so the next header read starts cleanly.
		drift := nextOffset - r.CurrentOffset()
		if drift < 0 {
			return newErr(MalformedSize, h.Type, h.Offset, "box consumed %d bytes past its declared size", -drift)
		}
		if drift > 0 {
			if err := r.Skip(drift); err != nil {
				return err
			}
		}
	}
	return nil
}

// parseMoovBody walks the children of an already-entered "moov" box.
func parseMoovBody(r *Reader, payload int64, ctx *parseCtx) error {
	return walkContainer(r, payload, func(h BoxHeader) error {
		switch h.Type {
		case TypeMvhd:
			return parseMvhd(r, h, ctx.movie)
		case TypeTrak:
			return parseTrak(r, h, ctx)
		case TypeUdta:
			return parseUdta(r, h, ctx)
		case TypeMeta:
			return parseMeta(r, h, ctx)
		default:
			return nil // skipBox via drift correction in walkContainer
		}
	})
}

func parseTrak(r *Reader, h BoxHeader, ctx *parseCtx) error {
	t := &Track{Index: len(ctx.movie.Tracks), refTrackIndex: -1, MetadataTrackIndex: -1, followsTrackIndex: -1}
	inner := *ctx
	inner.track = t

	err := walkContainer(r, h.Payload, func(ch BoxHeader) error {
		switch ch.Type {
		case TypeTkhd:
			return parseTkhd(r, ch, t)
		case TypeTref:
			return parseTref(r, ch, t)
		case TypeMdia:
			return parseMdia(r, ch, &inner)
		case TypeUdta:
			return parseUdta(r, ch, &inner)
		case TypeMeta:
			return parseMeta(r, ch, &inner)
		default:
			return nil
		}
	})
	if err != nil {
		return err
	}
	ctx.movie.Tracks = append(ctx.movie.Tracks, t)
	return nil
}

func parseMdia(r *Reader, h BoxHeader, ctx *parseCtx) error {
	return walkContainer(r, h.Payload, func(ch BoxHeader) error {
		switch ch.Type {
		case TypeMdhd:
			return parseMdhd(r, ch, ctx.track)
		case TypeHdlr:
			return parseHdlr(r, ch, ctx.track)
		case TypeMinf:
			return parseMinf(r, ch, ctx)
		default:
			return nil
		}
	})
}

func parseMinf(r *Reader, h BoxHeader, ctx *parseCtx) error {
	return walkContainer(r, h.Payload, func(ch BoxHeader) error {
		switch ch.Type {
		case TypeStbl:
			return parseStbl(r, ch, ctx)
		default:
			return nil
		}
	})
}

func parseStbl(r *Reader, h BoxHeader, ctx *parseCtx) error {
	t := ctx.track
	var stsc []stscEntry
	var stco []int64
	var stsz stszResult
	var stts []sttsEntry
	var haveStsc, haveStco, haveStsz, haveStts, haveStss bool

	err := walkContainer(r, h.Payload, func(ch BoxHeader) error {
		switch ch.Type {
		case TypeStsd:
			return parseStsd(r, ch, t)
		case TypeStts:
			if haveStts {
				return newErr(DuplicateTable, ch.Type, ch.Offset, "duplicate stts")
			}
			haveStts = true
			v, err := parseStts(r, ch)
			stts = v
			return err
		case TypeStsc:
			if haveStsc {
				return newErr(DuplicateTable, ch.Type, ch.Offset, "duplicate stsc")
			}
			haveStsc = true
			v, err := parseStsc(r, ch)
			stsc = v
			return err
		case TypeStsz:
			if haveStsz {
				return newErr(DuplicateTable, ch.Type, ch.Offset, "duplicate stsz")
			}
			haveStsz = true
			v, err := parseStsz(r, ch)
			stsz = v
			return err
		case TypeStco:
			if haveStco {
				return newErr(DuplicateTable, ch.Type, ch.Offset, "duplicate stco/co64")
			}
			haveStco = true
			v, err := parseStco(r, ch)
			stco = v
			return err
		case TypeCo64:
			if haveStco {
				return newErr(DuplicateTable, ch.Type, ch.Offset, "duplicate stco/co64")
			}
			haveStco = true
			v, err := parseCo64(r, ch)
			stco = v
			return err
		case TypeStss:
			if haveStss {
				return newErr(DuplicateTable, ch.Type, ch.Offset, "duplicate stss")
			}
			haveStss = true
			v, err := parseStss(r, ch)
			t.SyncSamples = v
			return err
		default:
			return nil
		}
	})
	if err != nil {
		return err
	}
	if !haveStco || !haveStsz || !haveStsc || !haveStts {
		ctx.log.WithField("track_id", t.TrackID).Warn("incomplete sample table, skipping sample index")
		return nil
	}
	return buildSampleIndex(t, stsc, stco, stsz, stts)
}

func parseUdta(r *Reader, h BoxHeader, ctx *parseCtx) error {
	mb := ctx.mb
	if ctx.track != nil {
		return nil // only the movie-level udta carries metadata in this data model
	}
	return walkContainer(r, h.Payload, func(ch BoxHeader) error {
		switch ch.Type {
		case TypeMeta:
			// Unlike "meta" directly under "moov" (the ISO mdta form),
			// "meta" under "udta" carries a version+flags header. TypeMeta
			// is absent from fullBoxes for exactly this reason, so it must
			// be consumed here rather than by readBoxHeader.
			if ch.Payload < 4 {
				return newErr(MalformedSize, ch.Type, ch.Offset, "udta meta too small for version+flags: %d", ch.Payload)
			}
			if _, err := r.ReadU32BE(); err != nil {
				return err
			}
			return parseMeta(r, BoxHeader{Type: ch.Type, Offset: ch.Offset, Size: ch.Size, Payload: ch.Payload - 4}, ctx)
		case TypeXyz:
			loc, err := parseXyz(r, ch)
			if err != nil {
				return err
			}
			mb.Location = loc
			mb.LocationKey = ch.Type.String()
			return nil
		default:
			return nil
		}
	})
}
