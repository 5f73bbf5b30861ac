// Package imagemeta extracts pixel dimensions from PNG, JPEG and WEBP
// payloads by reading only the header bytes, without decoding the image.
package imagemeta

import (
	"encoding/base64"
	"encoding/binary"
	"strings"
)

// Dimensions holds the pixel size read from an image header.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// FromBase64 decodes a base64 payload (optionally carrying a
// "data:image/...;base64," prefix) and reads its dimensions.
// Returns nil when the payload cannot be decoded or the format is unknown.
func FromBase64(payload string) *Dimensions {
	if strings.HasPrefix(payload, "data:") {
		idx := strings.Index(payload, ",")
		if idx < 0 {
			return nil
		}
		payload = payload[idx+1:]
	}

	// Fix padding before decoding
	if pad := len(payload) % 4; pad != 0 {
		payload += strings.Repeat("=", 4-pad)
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil
	}

	return FromBytes(raw)
}

// FromBytes reads dimensions from raw image bytes. Any truncated, malformed
// or unrecognized buffer yields nil, never partial values.
func FromBytes(b []byte) *Dimensions {
	switch {
	case isPNG(b):
		return pngDimensions(b)
	case isJPEG(b):
		return jpegDimensions(b)
	case isWEBP(b):
		return webpDimensions(b)
	default:
		return nil
	}
}

func isPNG(b []byte) bool {
	return len(b) >= 4 && b[0] == 0x89 && b[1] == 0x50 && b[2] == 0x4E && b[3] == 0x47
}

func isJPEG(b []byte) bool {
	return len(b) >= 3 && b[0] == 0xFF && b[1] == 0xD8 && b[2] == 0xFF
}

func isWEBP(b []byte) bool {
	return len(b) >= 12 && string(b[0:4]) == "RIFF" && string(b[8:12]) == "WEBP"
}

// pngDimensions reads the IHDR width/height fields, 32-bit big-endian at
// fixed offsets 16 and 20.
func pngDimensions(b []byte) *Dimensions {
	if len(b) < 24 {
		return nil
	}

	width := binary.BigEndian.Uint32(b[16:20])
	height := binary.BigEndian.Uint32(b[20:24])

	return &Dimensions{Width: int(width), Height: int(height)}
}

// jpegDimensions scans marker segments until a non-differential SOF marker
// (C0, C1 or C2) carries the frame size. FF FF padding advances one byte at
// a time without consuming a segment.
func jpegDimensions(b []byte) *Dimensions {
	i := 2
	for i+1 < len(b) {
		if b[i] != 0xFF {
			return nil
		}

		marker := b[i+1]
		if marker == 0xFF {
			i++
			continue
		}

		if marker == 0xC0 || marker == 0xC1 || marker == 0xC2 {
			if i+9 > len(b) {
				return nil
			}
			height := binary.BigEndian.Uint16(b[i+5 : i+7])
			width := binary.BigEndian.Uint16(b[i+7 : i+9])
			return &Dimensions{Width: int(width), Height: int(height)}
		}

		if i+4 > len(b) {
			return nil
		}
		segLen := int(binary.BigEndian.Uint16(b[i+2 : i+4]))
		if segLen < 2 {
			return nil
		}
		i += 2 + segLen
	}

	return nil
}

// webpDimensions dispatches on the chunk tag at offset 12: VP8 (lossy),
// VP8L (lossless) and VP8X (extended) each encode dimensions differently.
func webpDimensions(b []byte) *Dimensions {
	if len(b) < 16 {
		return nil
	}

	switch string(b[12:16]) {
	case "VP8 ":
		if len(b) < 30 {
			return nil
		}
		width := binary.LittleEndian.Uint16(b[26:28]) & 0x3FFF
		height := binary.LittleEndian.Uint16(b[28:30]) & 0x3FFF
		return &Dimensions{Width: int(width), Height: int(height)}

	case "VP8L":
		if len(b) < 25 {
			return nil
		}
		if b[20] != 0x2F {
			return nil
		}
		bits := binary.LittleEndian.Uint32(b[21:25])
		width := int(bits&0x3FFF) + 1
		height := int((bits>>14)&0x3FFF) + 1
		return &Dimensions{Width: width, Height: height}

	case "VP8X":
		if len(b) < 30 {
			return nil
		}
		// canvas size minus one, 24-bit little-endian
		width := int(b[24]) | int(b[25])<<8 | int(b[26])<<16
		height := int(b[27]) | int(b[28])<<8 | int(b[29])<<16
		return &Dimensions{Width: width + 1, Height: height + 1}

	default:
		return nil
	}
}
