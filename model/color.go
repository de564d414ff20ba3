package model

// HSL is a packed color: 6 bits hue, 3 bits saturation, 7 bits lightness.
type HSL uint16

// PackHSL packs hue (0-63), saturation (0-7) and lightness (0-127).
// Out of range components are masked.
func PackHSL(h, s, l int) HSL {
	return HSL((h&0x3F)<<10 | (s&0x7)<<7 | l&0x7F)
}

// Unpack returns the hue, saturation and lightness components.
func (c HSL) Unpack() (h, s, l int) {
	return int(c>>10) & 0x3F, int(c>>7) & 0x7, int(c) & 0x7F
}

// RGB converts c to sRGB components in [0, 1].
func (c HSL) RGB() (r, g, b float32) {
	hi, si, li := c.Unpack()
	h := float32(hi) / 64
	s := float32(si) / 8
	l := float32(li) / 128

	var q float32
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = (l + s) - s*l
	}
	p := 2*l - q

	r = clamp01(hueToRGB(p, q, h+1.0/3.0))
	g = clamp01(hueToRGB(p, q, h))
	b = clamp01(hueToRGB(p, q, h-1.0/3.0))
	return r, g, b
}

func hueToRGB(p, q, h float32) float32 {
	if h < 0 {
		h++
	}
	if h > 1 {
		h--
	}
	switch {
	case 6*h < 1:
		return p + (q-p)*6*h
	case 2*h < 1:
		return q
	case 3*h < 2:
		return p + (q-p)*6*(2.0/3.0-h)
	default:
		return p
	}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// BlendHSL interpolates each component of a towards b by weight/255.
// Hue is interpolated linearly without wrapping, matching the tile
// blending of the terrain shader.
func BlendHSL(a, b HSL, weight uint8) HSL {
	if weight == 0 {
		return a
	}
	if weight == 255 {
		return b
	}
	ah, as, al := a.Unpack()
	bh, bs, bl := b.Unpack()
	w := int(weight)
	lerp := func(x, y int) int { return x + (y-x)*w/255 }
	return PackHSL(lerp(ah, bh), lerp(as, bs), lerp(al, bl))
}
