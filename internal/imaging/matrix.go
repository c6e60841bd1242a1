package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/segment"
	"github.com/cockroachdb/errors"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
)

// DefaultMatrixSize matches the 28x28 MNIST canvas.
const DefaultMatrixSize = 28

// Polarity tells ToMatrix which way round the ink is.
type Polarity string

const (
	// PolarityAuto inspects the border to decide whether to invert.
	PolarityAuto Polarity = "auto"
	// PolarityLightInk keeps the image as is: bright strokes on dark paper.
	PolarityLightInk Polarity = "light-ink"
	// PolarityDarkInk inverts the image: dark strokes on light paper.
	PolarityDarkInk Polarity = "dark-ink"
)

// Region is a rectangle with inclusive (X1,Y1) and exclusive (X2,Y2).
type Region struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// MatrixOptions controls ToMatrix.
type MatrixOptions struct {
	// Size is the side of the square output canvas. Zero means DefaultMatrixSize.
	Size int `json:"size"`

	// Region crops the source before anything else when non-nil.
	Region *Region `json:"region,omitempty"`

	// Polarity defaults to PolarityAuto.
	Polarity Polarity `json:"polarity,omitempty"`

	// BlurRadius applies a Gaussian blur of that radius when positive.
	BlurRadius float64 `json:"blur_radius,omitempty"`

	// Threshold binarizes the canvas when positive: values at or above it
	// become 255, the rest 0.
	Threshold uint8 `json:"threshold,omitempty"`
}

// ToMatrix converts img into a Size x Size matrix of 0-255 intensities with
// bright ink. Images that already have the target size are not resampled;
// others are fitted into the central 20/28 of the canvas the way MNIST digits
// are.
func ToMatrix(img image.Image, opts MatrixOptions) ([][]int, error) {
	size := opts.Size
	if size == 0 {
		size = DefaultMatrixSize
	}
	if size < 0 {
		return nil, errors.Newf("invalid matrix size %d", size)
	}

	src := img
	if opts.Region != nil {
		cropped, err := crop(img, *opts.Region)
		if err != nil {
			return nil, err
		}
		src = cropped
	}

	gray, err := InkImage(src, opts.Polarity)
	if err != nil {
		return nil, err
	}

	if opts.BlurRadius > 0 {
		gray = blur.Gaussian(gray, opts.BlurRadius)
	}

	canvas := fitCanvas(gray, size)

	var out image.Image = canvas
	if opts.Threshold > 0 {
		out = segment.Threshold(canvas, opts.Threshold)
	}
	return readMatrix(out), nil
}

// InkImage converts img to grayscale with bright ink on a dark background.
func InkImage(img image.Image, polarity Polarity) (image.Image, error) {
	var gray image.Image = imaging.Grayscale(img)

	switch polarity {
	case "", PolarityAuto:
		if lightBackground(gray) {
			gray = imaging.Invert(gray)
		}
	case PolarityDarkInk:
		gray = imaging.Invert(gray)
	case PolarityLightInk:
	default:
		return nil, errors.Newf("unknown polarity %q", polarity)
	}
	return gray, nil
}

// crop validates r against the image bounds before cropping.
func crop(img image.Image, r Region) (image.Image, error) {
	bounds := img.Bounds()
	if r.X1 < bounds.Min.X || r.Y1 < bounds.Min.Y || r.X2 > bounds.Max.X || r.Y2 > bounds.Max.Y {
		return nil, errors.Newf("crop region (%d,%d)-(%d,%d) outside image bounds (%d,%d)-(%d,%d)",
			r.X1, r.Y1, r.X2, r.Y2, bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	}
	if r.X1 >= r.X2 || r.Y1 >= r.Y2 {
		return nil, errors.New("invalid crop region: x1 must be < x2, y1 must be < y2")
	}
	return imaging.Crop(img, image.Rect(r.X1, r.Y1, r.X2, r.Y2)), nil
}

// lightBackground reports whether the mean perceptual lightness of the
// border pixels is above one half. Fully transparent pixels are ignored.
func lightBackground(img image.Image) bool {
	b := img.Bounds()
	var sum float64
	var n int
	add := func(x, y int) {
		c, ok := colorful.MakeColor(img.At(x, y))
		if !ok {
			return
		}
		l, _, _ := c.Lab()
		sum += l
		n++
	}
	for x := b.Min.X; x < b.Max.X; x++ {
		add(x, b.Min.Y)
		add(x, b.Max.Y-1)
	}
	for y := b.Min.Y + 1; y < b.Max.Y-1; y++ {
		add(b.Min.X, y)
		add(b.Max.X-1, y)
	}
	return n > 0 && sum/float64(n) > 0.5
}

// fitCanvas places img on a black size x size canvas.
func fitCanvas(img image.Image, size int) image.Image {
	b := img.Bounds()
	if b.Dx() == size && b.Dy() == size {
		return img
	}
	inner := size * 20 / 28
	if inner < 1 {
		inner = 1
	}
	fitted := imaging.Fit(img, inner, inner, imaging.Lanczos)
	return imaging.PasteCenter(imaging.New(size, size, color.Black), fitted)
}

// readMatrix returns the gray level of every pixel as matrix[row][column].
func readMatrix(img image.Image) [][]int {
	b := img.Bounds()
	m := make([][]int, b.Dy())
	for y := 0; y < b.Dy(); y++ {
		m[y] = make([]int, b.Dx())
		for x := 0; x < b.Dx(); x++ {
			g := color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray)
			m[y][x] = int(g.Y)
		}
	}
	return m
}

// MatrixImage renders a matrix as a grayscale image, clamping values to 0-255.
func MatrixImage(matrix [][]int) *image.Gray {
	width := 0
	for _, row := range matrix {
		if len(row) > width {
			width = len(row)
		}
	}
	img := image.NewGray(image.Rect(0, 0, width, len(matrix)))
	for y, row := range matrix {
		for x, v := range row {
			img.SetGray(x, y, color.Gray{Y: uint8(clamp(v, 0, 255))})
		}
	}
	return img
}

// EncodePNGBase64 encodes img as a base64 PNG string.
func EncodePNGBase64(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", errors.Wrap(err, "failed to encode image")
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// clamp constrains val to [min, max].
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
