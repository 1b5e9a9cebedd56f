package infer

// Q15Unit is the fixed-point unit value of the probability range:
// probabilities live in [0, 32768) where 32768 would be 1.0.
const Q15Unit = 1 << 15

// Softmax converts raw q17.14 scores into q15 probabilities using the
// base-2 approximation the accelerator toolchain ships: each score is
// quantized to integer powers of two relative to the maximum, summed,
// and redistributed. Bit-exact with the reference implementation, so
// downstream confidence values stay byte-stable.
func Softmax(raw []int32, out []int16) {
	base := int32(-1 << 31)
	for _, v := range raw {
		if v > base {
			base = v
		}
	}
	// Anything more than 16.0 (q17.14) below the max contributes nothing.
	base -= 16 << 14

	var sum int64
	for _, v := range raw {
		if v > base {
			shift := usat5((v - base) >> 14)
			sum += 1 << shift
		}
	}
	if sum == 0 {
		return
	}
	outputBase := int32((1 << 32) / sum)

	for i, v := range raw {
		if v > base {
			shift := usat5(17 + ((base - v) >> 14))
			out[i] = ssat16(int32(outputBase >> shift))
		} else {
			out[i] = 0
		}
	}
}

// usat5 saturates to the unsigned 5-bit range [0, 31].
func usat5(v int32) uint {
	if v < 0 {
		return 0
	}
	if v > 31 {
		return 31
	}
	return uint(v)
}

// ssat16 saturates to the signed 16-bit range.
func ssat16(v int32) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}
