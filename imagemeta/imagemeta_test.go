package imagemeta

import (
	"encoding/base64"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 1x1 transparent PNG
const tinyPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

func encodePNG(width, height uint32) []byte {
	b := make([]byte, 24)
	copy(b, []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A})
	binary.BigEndian.PutUint32(b[8:12], 13)
	copy(b[12:16], "IHDR")
	binary.BigEndian.PutUint32(b[16:20], width)
	binary.BigEndian.PutUint32(b[20:24], height)
	return b
}

func encodeJPEG(width, height uint16) []byte {
	b := []byte{0xFF, 0xD8}

	// APP0 segment to force the scanner to skip by declared length
	b = append(b, 0xFF, 0xE0, 0x00, 0x10)
	b = append(b, make([]byte, 0x10-2)...)

	// SOF0: marker, length, precision, height, width
	sof := make([]byte, 9)
	sof[0] = 0xFF
	sof[1] = 0xC0
	binary.BigEndian.PutUint16(sof[2:4], 11)
	sof[4] = 8
	binary.BigEndian.PutUint16(sof[5:7], height)
	binary.BigEndian.PutUint16(sof[7:9], width)
	return append(b, sof...)
}

func webpHeader(tag string) []byte {
	b := make([]byte, 30)
	copy(b[0:4], "RIFF")
	binary.LittleEndian.PutUint32(b[4:8], 22)
	copy(b[8:12], "WEBP")
	copy(b[12:16], tag)
	binary.LittleEndian.PutUint32(b[16:20], 10)
	return b
}

func encodeVP8(width, height uint16) []byte {
	b := webpHeader("VP8 ")
	copy(b[23:26], []byte{0x9D, 0x01, 0x2A})
	binary.LittleEndian.PutUint16(b[26:28], width&0x3FFF)
	binary.LittleEndian.PutUint16(b[28:30], height&0x3FFF)
	return b
}

func encodeVP8L(width, height int) []byte {
	b := webpHeader("VP8L")[:25]
	b[20] = 0x2F
	bits := uint32(width-1) | uint32(height-1)<<14
	binary.LittleEndian.PutUint32(b[21:25], bits)
	return b
}

func encodeVP8X(width, height int) []byte {
	b := webpHeader("VP8X")
	w := width - 1
	h := height - 1
	b[24] = byte(w)
	b[25] = byte(w >> 8)
	b[26] = byte(w >> 16)
	b[27] = byte(h)
	b[28] = byte(h >> 8)
	b[29] = byte(h >> 16)
	return b
}

func TestFromBase64TinyPNG(t *testing.T) {
	dims := FromBase64(tinyPNG)
	require.NotNil(t, dims)
	assert.Equal(t, 1, dims.Width)
	assert.Equal(t, 1, dims.Height)
}

func TestFromBase64DataURIPrefix(t *testing.T) {
	dims := FromBase64("data:image/png;base64," + tinyPNG)
	require.NotNil(t, dims)
	assert.Equal(t, 1, dims.Width)
	assert.Equal(t, 1, dims.Height)
}

func TestFromBase64MissingPadding(t *testing.T) {
	trimmed := base64.StdEncoding.EncodeToString(encodePNG(320, 200))
	for len(trimmed) > 0 && trimmed[len(trimmed)-1] == '=' {
		trimmed = trimmed[:len(trimmed)-1]
	}

	dims := FromBase64(trimmed)
	require.NotNil(t, dims)
	assert.Equal(t, 320, dims.Width)
	assert.Equal(t, 200, dims.Height)
}

func TestFromBase64Garbage(t *testing.T) {
	assert.Nil(t, FromBase64("not-base64!!"))
	assert.Nil(t, FromBase64("data:image/png;base64"))
}

func TestJPEGSOF0(t *testing.T) {
	dims := FromBytes(encodeJPEG(640, 480))
	require.NotNil(t, dims)
	assert.Equal(t, 640, dims.Width)
	assert.Equal(t, 480, dims.Height)
}

func TestJPEGPaddingBytes(t *testing.T) {
	// FF FF padding before the SOF marker is skipped one byte at a time
	b := []byte{0xFF, 0xD8, 0xFF, 0xFF, 0xFF, 0xFF}
	sof := make([]byte, 9)
	sof[0] = 0xFF
	sof[1] = 0xC2
	binary.BigEndian.PutUint16(sof[2:4], 11)
	sof[4] = 8
	binary.BigEndian.PutUint16(sof[5:7], 32)
	binary.BigEndian.PutUint16(sof[7:9], 64)
	b = append(b, sof...)

	dims := FromBytes(b)
	require.NotNil(t, dims)
	assert.Equal(t, 64, dims.Width)
	assert.Equal(t, 32, dims.Height)
}

func TestJPEGTruncatedSOF(t *testing.T) {
	b := []byte{0xFF, 0xD8, 0xFF, 0xC0, 0x00, 0x11, 0x08}
	assert.Nil(t, FromBytes(b))
}

func TestWEBPVariants(t *testing.T) {
	tests := []struct {
		name   string
		buf    []byte
		width  int
		height int
	}{
		{"VP8 lossy", encodeVP8(800, 600), 800, 600},
		{"VP8L lossless", encodeVP8L(1024, 768), 1024, 768},
		{"VP8X extended", encodeVP8X(100, 50), 100, 50},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dims := FromBytes(tc.buf)
			require.NotNil(t, dims)
			assert.Equal(t, tc.width, dims.Width)
			assert.Equal(t, tc.height, dims.Height)
		})
	}
}

func TestVP8LBadSignature(t *testing.T) {
	b := encodeVP8L(10, 10)
	b[20] = 0x00
	assert.Nil(t, FromBytes(b))
}

func TestWEBPUnknownChunk(t *testing.T) {
	assert.Nil(t, FromBytes(webpHeader("ALPH")))
}

func TestShortBuffers(t *testing.T) {
	buffers := [][]byte{
		nil,
		{},
		{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00},
		{0xFF, 0xD8, 0xFF},
		[]byte("RIFF1234WEBP"),
		[]byte("random bytes here"),
	}

	for _, b := range buffers {
		assert.Nil(t, FromBytes(b))
	}
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		encode func(w, h int) []byte
		width  int
		height int
	}{
		{"png 32-bit", func(w, h int) []byte { return encodePNG(uint32(w), uint32(h)) }, 65536, 131072},
		{"jpeg 16-bit", func(w, h int) []byte { return encodeJPEG(uint16(w), uint16(h)) }, 65535, 1},
		{"vp8 14-bit", func(w, h int) []byte { return encodeVP8(uint16(w), uint16(h)) }, 16383, 16383},
		{"vp8l 14-bit", encodeVP8L, 16384, 16384},
		{"vp8x 24-bit", encodeVP8X, 1 << 23, 1 << 22},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dims := FromBytes(tc.encode(tc.width, tc.height))
			require.NotNil(t, dims)
			assert.Equal(t, tc.width, dims.Width)
			assert.Equal(t, tc.height, dims.Height)
		})
	}
}
