package detection

import (
	"image"
	"sort"

	"github.com/ironsheep/radial-resonance/internal/imaging"
)

// LocateOptions controls LocateDigits. Zero fields take the defaults noted.
type LocateOptions struct {
	// Polarity of the ink (default imaging.PolarityAuto).
	Polarity imaging.Polarity `json:"polarity,omitempty"`

	// Threshold is the minimum ink intensity (default 128).
	Threshold uint8 `json:"threshold,omitempty"`

	// MinPixels drops smaller components as noise (default 8).
	MinPixels int `json:"min_pixels,omitempty"`

	// Padding grows each region on every side, clipped to the image (default 2).
	Padding int `json:"padding,omitempty"`
}

func (o LocateOptions) withDefaults() LocateOptions {
	if o.Threshold == 0 {
		o.Threshold = 128
	}
	if o.MinPixels == 0 {
		o.MinPixels = 8
	}
	if o.Padding == 0 {
		o.Padding = 2
	}
	return o
}

// LocateDigits returns one component per digit, ordered left to right, with
// bounds in the coordinates of img.
func LocateDigits(img image.Image, opts LocateOptions) ([]Component, error) {
	opts = opts.withDefaults()

	mask, err := inkMask(img, opts.Polarity, opts.Threshold)
	if err != nil {
		return nil, err
	}
	components := mergeOverlappingColumns(findComponents(mask, opts.MinPixels))

	sort.Slice(components, func(i, j int) bool {
		return components[i].Bounds.X1 < components[j].Bounds.X1
	})

	b := img.Bounds()
	for i := range components {
		c := &components[i].Bounds
		c.X1 = max(c.X1-opts.Padding, 0) + b.Min.X
		c.Y1 = max(c.Y1-opts.Padding, 0) + b.Min.Y
		c.X2 = min(c.X2+opts.Padding, b.Dx()) + b.Min.X
		c.Y2 = min(c.Y2+opts.Padding, b.Dy()) + b.Min.Y
	}
	return components, nil
}

// mergeOverlappingColumns joins components whose column spans overlap until
// no two overlap.
func mergeOverlappingColumns(components []Component) []Component {
	merged := make([]Component, 0, len(components))
	for _, c := range components {
		merged = append(merged, c)
		for {
			last := len(merged) - 1
			joined := false
			for i := 0; i < last; i++ {
				if columnsOverlap(merged[i].Bounds, merged[last].Bounds) {
					merged[i].Bounds = mergeBounds(merged[i].Bounds, merged[last].Bounds)
					merged[i].Pixels += merged[last].Pixels
					merged[last] = merged[i]
					merged = append(merged[:i], merged[i+1:]...)
					joined = true
					break
				}
			}
			if !joined {
				break
			}
		}
	}
	return merged
}

// columnsOverlap reports whether two bounds share at least one column.
func columnsOverlap(a, b Bounds) bool {
	return a.X1 < b.X2 && a.X2 > b.X1
}
