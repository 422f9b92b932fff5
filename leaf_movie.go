package mp4

// macToUnixEpochOffset converts a QuickTime/ISO "seconds since 1904-01-01"
// timestamp to Unix epoch seconds.
const macToUnixEpochOffset = 0x7c25b080

// macToUnixSeconds subtracts the Mac epoch offset, saturating at 0 for
// timestamps (legitimately present in some files) that predate the Unix
// epoch.
func macToUnixSeconds(t uint64) uint64 {
	if t < macToUnixEpochOffset {
		return 0
	}
	return t - macToUnixEpochOffset
}

// parseFtyp validates the presence of a file-type box. Brand values
// themselves aren't part of the data model (no operation in this package
// branches on major_brand/compatible_brands), so only the fixed 8-byte
// prefix is read; any compatible_brands entries are left to the enclosing
// walkContainer's drift correction to skip.
func parseFtyp(r *Reader, h BoxHeader) error {
	if h.Payload < 8 {
		return newErr(MalformedSize, h.Type, h.Offset, "ftyp too small: %d", h.Payload)
	}
	if _, err := r.ReadU32BE(); err != nil { // major_brand
		return err
	}
	if _, err := r.ReadU32BE(); err != nil { // minor_version
		return err
	}
	return nil
}

// parseMvhd reads the movie header, grounded on mp4_demux_parse_mvhd.
func parseMvhd(r *Reader, h BoxHeader, m *Movie) error {
	if h.Version == 1 {
		if h.Payload < 28*4-4 {
			return newErr(MalformedSize, h.Type, h.Offset, "mvhd v1 too small: %d", h.Payload)
		}
		creation, err := r.ReadU64BE()
		if err != nil {
			return err
		}
		modification, err := r.ReadU64BE()
		if err != nil {
			return err
		}
		timescale, err := r.ReadU32BE()
		if err != nil {
			return err
		}
		duration, err := r.ReadU64BE()
		if err != nil {
			return err
		}
		m.CreationUs = macToUnixSeconds(creation) * 1_000_000
		m.ModifiedUs = macToUnixSeconds(modification) * 1_000_000
		m.Timescale = timescale
		m.Duration = duration
	} else {
		if h.Payload < 25*4-4 {
			return newErr(MalformedSize, h.Type, h.Offset, "mvhd v0 too small: %d", h.Payload)
		}
		creation, err := r.ReadU32BE()
		if err != nil {
			return err
		}
		modification, err := r.ReadU32BE()
		if err != nil {
			return err
		}
		timescale, err := r.ReadU32BE()
		if err != nil {
			return err
		}
		duration, err := r.ReadU32BE()
		if err != nil {
			return err
		}
		m.CreationUs = macToUnixSeconds(uint64(creation)) * 1_000_000
		m.ModifiedUs = macToUnixSeconds(uint64(modification)) * 1_000_000
		m.Timescale = timescale
		m.Duration = uint64(duration)
	}

	// rate(4) + volume/reserved(4) + reserved(8) + matrix(36) + pre_defined(24)
	if _, err := r.ReadExact(4 + 4 + 8 + 36 + 24); err != nil {
		return err
	}
	nextTrackID, err := r.ReadU32BE()
	if err != nil {
		return err
	}
	m.NextTrackID = nextTrackID
	return nil
}
