package imaging

import "github.com/cockroachdb/errors"

// digitGlyphs is a 3x5 bitmap font for the digits 0-9.
var digitGlyphs = [10][5]string{
	{"111", "101", "101", "101", "111"},
	{"010", "110", "010", "010", "111"},
	{"111", "001", "111", "100", "111"},
	{"111", "001", "111", "001", "111"},
	{"101", "101", "111", "001", "001"},
	{"111", "100", "111", "001", "111"},
	{"111", "100", "111", "101", "111"},
	{"111", "001", "001", "001", "001"},
	{"111", "101", "111", "101", "111"},
	{"111", "101", "111", "001", "111"},
}

// GlyphOptions controls GlyphMatrix. Zero fields take the defaults noted.
type GlyphOptions struct {
	// Size is the canvas side (default DefaultMatrixSize).
	Size int
	// Scale is the side of the square each font pixel becomes (default 4).
	Scale int
	// RowOffset and ColOffset shift the glyph from the canvas center.
	RowOffset int
	ColOffset int
	// Intensity is the ink value (default 255).
	Intensity int
}

// GlyphMatrix renders digit centered on a blank canvas. Cells pushed off the
// canvas by the offsets are dropped.
func GlyphMatrix(digit int, opts GlyphOptions) ([][]int, error) {
	if digit < 0 || digit > 9 {
		return nil, errors.Newf("no glyph for digit %d", digit)
	}
	if opts.Size == 0 {
		opts.Size = DefaultMatrixSize
	}
	if opts.Scale == 0 {
		opts.Scale = 4
	}
	if opts.Intensity == 0 {
		opts.Intensity = 255
	}
	if opts.Size < 0 || opts.Scale < 0 {
		return nil, errors.Newf("invalid glyph geometry size=%d scale=%d", opts.Size, opts.Scale)
	}

	m := make([][]int, opts.Size)
	for i := range m {
		m[i] = make([]int, opts.Size)
	}

	top := (opts.Size-5*opts.Scale)/2 + opts.RowOffset
	left := (opts.Size-3*opts.Scale)/2 + opts.ColOffset
	for row, line := range digitGlyphs[digit] {
		for col, pixel := range line {
			if pixel != '1' {
				continue
			}
			for dy := 0; dy < opts.Scale; dy++ {
				for dx := 0; dx < opts.Scale; dx++ {
					y := top + row*opts.Scale + dy
					x := left + col*opts.Scale + dx
					if y >= 0 && y < opts.Size && x >= 0 && x < opts.Size {
						m[y][x] = opts.Intensity
					}
				}
			}
		}
	}
	return m, nil
}
