package batch

import (
	"encoding/binary"
	"math"
)

// Pixel data is laid out component by component in R, G, B, A order.
// 16-bit components are unsigned normalized and 32-bit components are
// floats, both little-endian.

// encodePixel converts c to one pixel of desc's format.
func encodePixel(desc TextureDescriptor, c RGBA) []byte {
	comp := [4]float64{c.R, c.G, c.B, c.A}
	size := desc.ChannelBits / 8
	out := make([]byte, desc.Channels*size)
	for i := 0; i < desc.Channels; i++ {
		dst := out[i*size:]
		switch desc.ChannelBits {
		case 8:
			dst[0] = to8(comp[i])
		case 16:
			binary.LittleEndian.PutUint16(dst, to16(comp[i]))
		case 32:
			binary.LittleEndian.PutUint32(dst, math.Float32bits(float32(comp[i])))
		}
	}
	return out
}

// decodePixel is the inverse of encodePixel. Missing color components are
// 0, a missing alpha is 1.
func decodePixel(desc TextureDescriptor, px []byte) RGBA {
	comp := [4]float64{0, 0, 0, 1}
	size := desc.ChannelBits / 8
	for i := 0; i < desc.Channels; i++ {
		src := px[i*size:]
		switch desc.ChannelBits {
		case 8:
			comp[i] = float64(src[0]) / 255
		case 16:
			comp[i] = float64(binary.LittleEndian.Uint16(src)) / 65535
		case 32:
			comp[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(src)))
		}
	}
	return RGBA{R: comp[0], G: comp[1], B: comp[2], A: comp[3]}
}

func to16(x float64) uint16 {
	switch {
	case x <= 0:
		return 0
	case x >= 1:
		return 65535
	}
	return uint16(x*65535 + 0.5)
}
