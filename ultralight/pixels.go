// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package ultralight

// bgraToRGBA converts a w x h BGRA bitmap with srcStride bytes per row into
// dst, an RGBA buffer with dstStride bytes per row. Both are premultiplied,
// so only the channel order changes.
func bgraToRGBA(dst []byte, dstStride int, src []byte, srcStride, w, h int) {
	for y := 0; y < h; y++ {
		s := src[y*srcStride : y*srcStride+w*4]
		d := dst[y*dstStride : y*dstStride+w*4]
		for x := 0; x < w*4; x += 4 {
			d[x+0] = s[x+2] // BGRA -> RGBA
			d[x+1] = s[x+1]
			d[x+2] = s[x+0]
			d[x+3] = s[x+3]
		}
	}
}
