package codec

import "encoding/binary"

const (
	markerSOI  = 0xD8
	markerEOI  = 0xD9
	markerSOS  = 0xDA
	markerAPP0 = 0xE0
	markerAPP1 = 0xE1 // Exif, XMP
	markerAPP2 = 0xE2 // ICC profile
)

// metadataSegments copies the APP1 and APP2 segments (marker included) out of
// a JPEG stream. Parsing stops at the first scan.
func metadataSegments(data []byte) [][]byte {
	if len(data) < 4 || data[0] != 0xFF || data[1] != markerSOI {
		return nil
	}

	var segs [][]byte
	i := 2
	for i+4 <= len(data) {
		if data[i] != 0xFF {
			break
		}
		marker := data[i+1]
		switch {
		case marker == 0xFF:
			i++
			continue
		case marker == markerSOS || marker == markerEOI:
			return segs
		case marker == 0x01 || (marker >= 0xD0 && marker <= 0xD7):
			i += 2
			continue
		}

		length := int(binary.BigEndian.Uint16(data[i+2:]))
		end := i + 2 + length
		if length < 2 || end > len(data) {
			break
		}
		if marker == markerAPP1 || marker == markerAPP2 {
			seg := make([]byte, end-i)
			copy(seg, data[i:end])
			segs = append(segs, seg)
		}
		i = end
	}

	return segs
}

// spliceSegments inserts segs into an encoded JPEG after SOI, or after a
// leading JFIF APP0 segment when the encoder wrote one.
func spliceSegments(encoded []byte, segs [][]byte) []byte {
	if len(segs) == 0 || len(encoded) < 4 || encoded[0] != 0xFF || encoded[1] != markerSOI {
		return encoded
	}

	insert := 2
	if len(encoded) >= 6 && encoded[2] == 0xFF && encoded[3] == markerAPP0 {
		if end := 4 + int(binary.BigEndian.Uint16(encoded[4:])); end <= len(encoded) {
			insert = end
		}
	}

	size := len(encoded)
	for _, s := range segs {
		size += len(s)
	}

	out := make([]byte, 0, size)
	out = append(out, encoded[:insert]...)
	for _, s := range segs {
		out = append(out, s...)
	}
	return append(out, encoded[insert:]...)
}
