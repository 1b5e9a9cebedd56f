// Package pixel implements the packed-pixel codec of the accelerator
// input tensor. One RGB sample becomes one 32-bit word laid out as
// (B<<16)|(G<<8)|R and xored with SignBias, which shifts the unsigned
// [0,255] channel range into the signed range the model was trained on.
// The exact transform is a wire contract shared with the accelerator
// and every exporter; it cannot change.
package pixel

// SignBias recenters each 8-bit channel around zero.
const SignBias uint32 = 0x00808080

// Pack encodes one RGB sample into an accelerator word.
func Pack(r, g, b uint8) uint32 {
	return (uint32(b)<<16 | uint32(g)<<8 | uint32(r)) ^ SignBias
}

// Unpack is the exact inverse of Pack: Unpack(Pack(r,g,b)) == r,g,b
// for every byte triple.
func Unpack(w uint32) (r, g, b uint8) {
	w ^= SignBias
	return uint8(w), uint8(w >> 8), uint8(w >> 16)
}

// ToRGB565 truncates an RGB sample to the 5/6/5 display word.
// Lossy and one-directional, preview only.
func ToRGB565(r, g, b uint8) uint16 {
	return uint16(r&0xF8)<<8 | uint16(g&0xFC)<<3 | uint16(b)>>3
}

// Luma computes the BT.601 luminance approximation
// Y = (77*R + 150*G + 29*B) >> 8 in fixed point.
func Luma(r, g, b uint8) uint8 {
	return uint8((77*uint16(r) + 150*uint16(g) + 29*uint16(b)) >> 8)
}
