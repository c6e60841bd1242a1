package mnist

import "strings"

// shades maps intensity to characters, darkest first.
const shades = " .:-=+*#%@"

// Render draws a pixel matrix as text, one character per pixel.
func Render(pixels [][]int) string {
	var b strings.Builder
	for _, row := range pixels {
		for _, v := range row {
			b.WriteByte(shades[int(clampByte(v))*(len(shades)-1)/255])
		}
		b.WriteByte('\n')
	}
	return b.String()
}
