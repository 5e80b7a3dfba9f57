package resize

// Fit returns the largest size with the aspect ratio of w×h that fits inside
// maxW×maxH. Sizes already inside the box are returned unchanged. The
// limiting side is chosen by cross-multiplying in 64 bits; the other side is
// rounded half up and never drops below 1.
func Fit(w, h, maxW, maxH int) (int, int) {
	if w <= maxW && h <= maxH {
		return w, h
	}

	sw, sh, bw, bh := int64(w), int64(h), int64(maxW), int64(maxH)
	if sw*bh >= sh*bw {
		return maxW, int(max(1, roundDiv(sh*bw, sw)))
	}
	return int(max(1, roundDiv(sw*bh, sh))), maxH
}

// EffectiveBox returns the bounding box in stored pixel orientation. EXIF
// orientations 5-8 rotate the image by 90 or 270 degrees, so the box is
// swapped before fitting the stored pixels.
func EffectiveBox(orientation, maxW, maxH int) (int, int) {
	if orientation >= 5 && orientation <= 8 {
		return maxH, maxW
	}
	return maxW, maxH
}

// scale maps v by num/den, rounding half up.
func scale(v, num, den int) int {
	return int(roundDiv(int64(v)*int64(num), int64(den)))
}

func roundDiv(n, d int64) int64 {
	return (2*n + d) / (2 * d)
}
