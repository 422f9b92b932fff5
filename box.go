// Package mp4 implements a streaming demultiplexer for the ISO Base Media
// File Format (ISO/IEC 14496-12), as used by MP4 and QuickTime MOV files.
package mp4

import "encoding/binary"

var be = binary.BigEndian

// BoxType is a 4-byte box type identifier (a "fourcc").
type BoxType [4]byte

func (t BoxType) String() string { return string(t[:]) }

// newBoxType creates a BoxType from a string. For types that are not plain
// ASCII (such as the QuickTime "©xyz" location atom), pass the raw bytes.
func newBoxType(s string) BoxType {
	var t BoxType
	copy(t[:], s)
	return t
}

// Known box types this demuxer recognizes.
var (
	TypeFtyp = newBoxType("ftyp")
	TypeFree = newBoxType("free")
	TypeMdat = newBoxType("mdat")
	TypeMoov = newBoxType("moov")
	TypeMvhd = newBoxType("mvhd")
	TypeTrak = newBoxType("trak")
	TypeTkhd = newBoxType("tkhd")
	TypeTref = newBoxType("tref")
	TypeUdta = newBoxType("udta")
	TypeMdia = newBoxType("mdia")
	TypeMdhd = newBoxType("mdhd")
	TypeHdlr = newBoxType("hdlr")
	TypeMinf = newBoxType("minf")
	TypeVmhd = newBoxType("vmhd")
	TypeSmhd = newBoxType("smhd")
	TypeHmhd = newBoxType("hmhd")
	TypeNmhd = newBoxType("nmhd")
	TypeStbl = newBoxType("stbl")
	TypeStsd = newBoxType("stsd")
	TypeStts = newBoxType("stts")
	TypeStsc = newBoxType("stsc")
	TypeStsz = newBoxType("stsz")
	TypeStco = newBoxType("stco")
	TypeCo64 = newBoxType("co64")
	TypeStss = newBoxType("stss")
	TypeAvc1 = newBoxType("avc1")
	TypeAvcC = newBoxType("avcC")
	TypeMeta = newBoxType("meta")
	TypeKeys = newBoxType("keys")
	TypeIlst = newBoxType("ilst")
	TypeData = newBoxType("data")
	// TypeXyz is the QuickTime "©xyz" location atom; its first byte is the
	// copyright sign (0xA9), not an ASCII character.
	TypeXyz = BoxType{0xA9, 'x', 'y', 'z'}
	// TypeCovr is iTunes' "covr" cover-art key under ilst.
	TypeCovr = newBoxType("covr")
)

// fullBoxes is the set of box types that unconditionally carry a
// version+flags header (ISO/IEC 14496-12 "FullBox") in addition to the
// basic box header. TypeData is deliberately absent: its first 4 bytes are
// a "type indicator" whose low 3 bytes parseMetaData reads itself as a
// class selector, not a generic FullBox version+flags pair, so the walker
// must not strip them before handing the box to parseMetaData.
//
// TypeMeta is also deliberately absent, even though "meta" is a FullBox in
// most contexts: a "meta" box directly under "moov" (the ISO mdta form,
// moov/meta/keys+ilst) has no version+flags header, while a "meta" box
// nested under "udta" does. Since isFullBox only has the box's own type to
// go on, not its parent, that distinction can't be expressed in this map;
// parseUdta reads the 4 version+flags bytes itself on the one path where
// they're present (see walker.go).
var fullBoxes = map[BoxType]bool{
	TypeMvhd: true, TypeTkhd: true, TypeMdhd: true, TypeHdlr: true,
	TypeVmhd: true, TypeSmhd: true, TypeHmhd: true, TypeNmhd: true,
	TypeStsd: true, TypeStts: true, TypeStsc: true,
	TypeStsz: true, TypeStco: true, TypeCo64: true, TypeStss: true,
	TypeKeys: true,
}

// isFullBox reports whether t carries a version+flags header.
func isFullBox(t BoxType) bool { return fullBoxes[t] }
