package detection

import (
	"image"

	"github.com/anthonynsimon/bild/segment"

	"github.com/ironsheep/radial-resonance/internal/imaging"
)

// Bounds is a rectangle with inclusive (X1,Y1) and exclusive (X2,Y2).
type Bounds struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Width of the rectangle.
func (b Bounds) Width() int { return b.X2 - b.X1 }

// Height of the rectangle.
func (b Bounds) Height() int { return b.Y2 - b.Y1 }

// Region converts b to the crop rectangle used by imaging.
func (b Bounds) Region() imaging.Region {
	return imaging.Region{X1: b.X1, Y1: b.Y1, X2: b.X2, Y2: b.Y2}
}

// Component is a connected group of ink pixels.
type Component struct {
	Bounds Bounds `json:"bounds"`
	Pixels int    `json:"pixels"`
}

type pixel struct{ x, y int }

// inkMask marks pixels at or above threshold after ink normalization.
func inkMask(img image.Image, polarity imaging.Polarity, threshold uint8) ([][]bool, error) {
	ink, err := imaging.InkImage(img, polarity)
	if err != nil {
		return nil, err
	}
	binary := segment.Threshold(ink, threshold)

	b := binary.Bounds()
	mask := make([][]bool, b.Dy())
	for y := 0; y < b.Dy(); y++ {
		mask[y] = make([]bool, b.Dx())
		for x := 0; x < b.Dx(); x++ {
			mask[y][x] = binary.GrayAt(b.Min.X+x, b.Min.Y+y).Y > 0
		}
	}
	return mask, nil
}

// findComponents returns the 8-connected components of mask with at least
// minPixels pixels, in scan order of their first pixel.
func findComponents(mask [][]bool, minPixels int) []Component {
	height := len(mask)
	if height == 0 {
		return nil
	}
	width := len(mask[0])

	visited := make([][]bool, height)
	for y := range visited {
		visited[y] = make([]bool, width)
	}

	var components []Component
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if mask[y][x] && !visited[y][x] {
				c := floodFill(mask, visited, x, y)
				if c.Pixels >= minPixels {
					components = append(components, c)
				}
			}
		}
	}
	return components
}

// floodFill grows a component from (startX, startY) with an explicit stack.
func floodFill(mask, visited [][]bool, startX, startY int) Component {
	height, width := len(mask), len(mask[0])
	c := Component{Bounds: Bounds{X1: startX, Y1: startY, X2: startX + 1, Y2: startY + 1}}
	stack := []pixel{{startX, startY}}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.x < 0 || p.x >= width || p.y < 0 || p.y >= height {
			continue
		}
		if visited[p.y][p.x] || !mask[p.y][p.x] {
			continue
		}
		visited[p.y][p.x] = true
		c.Pixels++
		c.Bounds = mergeBounds(c.Bounds, Bounds{X1: p.x, Y1: p.y, X2: p.x + 1, Y2: p.y + 1})

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				stack = append(stack, pixel{p.x + dx, p.y + dy})
			}
		}
	}
	return c
}

// mergeBounds combines two bounds into their union
func mergeBounds(a, b Bounds) Bounds {
	return Bounds{
		X1: min(a.X1, b.X1),
		Y1: min(a.Y1, b.Y1),
		X2: max(a.X2, b.X2),
		Y2: max(a.Y2, b.Y2),
	}
}
