package font

import (
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// DecodeUTF16BE decodes big-endian UTF-16, honouring a leading BOM
func DecodeUTF16BE(data []byte) string {
	dec := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()
	out, err := dec.Bytes(data)
	if err != nil {
		return ""
	}
	return string(out)
}

// DecodeSimple decodes a single-byte encoded string.
//
// Priority order:
//  1. UTF-16 byte order mark
//  2. The named base encoding (WinAnsiEncoding, MacRomanEncoding)
//  3. Windows-1252, which agrees with StandardEncoding for ASCII text
func DecodeSimple(data []byte, enc string) string {
	if len(data) >= 2 && ((data[0] == 0xFE && data[1] == 0xFF) || (data[0] == 0xFF && data[1] == 0xFE)) {
		if data[0] == 0xFF {
			out, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder().Bytes(data)
			if err == nil {
				return string(out)
			}
		}
		return DecodeUTF16BE(data)
	}

	out, err := charmapFor(enc).NewDecoder().Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(out)
}

func charmapFor(enc string) encoding.Encoding {
	switch enc {
	case "MacRomanEncoding":
		return charmap.Macintosh
	default:
		return charmap.Windows1252
	}
}
