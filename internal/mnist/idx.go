package mnist

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/klauspost/compress/gzip"
)

// IDX magic numbers.
const (
	ImageMagic uint32 = 2051
	LabelMagic uint32 = 2049
)

var (
	// ErrBadMagic is returned when a file does not start with the expected magic.
	ErrBadMagic = errors.New("unexpected IDX magic number")
	// ErrCountMismatch is returned when image and label files disagree on size.
	ErrCountMismatch = errors.New("image and label counts differ")
)

var gzipMagic = []byte{0x1f, 0x8b}

// Sample is one labeled digit image. Pixels is indexed [row][col] with values
// in [0,255].
type Sample struct {
	Pixels [][]int `json:"pixels"`
	Label  int     `json:"label"`
}

// Open opens an IDX file, transparently decompressing gzip content.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	br := bufio.NewReader(f)
	head, err := br.Peek(len(gzipMagic))
	if err != nil && err != io.EOF {
		f.Close()
		return nil, errors.Wrapf(err, "read %s", path)
	}
	if len(head) == len(gzipMagic) && head[0] == gzipMagic[0] && head[1] == gzipMagic[1] {
		zr, err := gzip.NewReader(br)
		if err != nil {
			f.Close()
			return nil, errors.Wrapf(err, "gunzip %s", path)
		}
		return &gzipFile{Reader: zr, file: f}, nil
	}
	return &plainFile{Reader: br, file: f}, nil
}

type plainFile struct {
	io.Reader
	file *os.File
}

func (p *plainFile) Close() error { return p.file.Close() }

type gzipFile struct {
	*gzip.Reader
	file *os.File
}

func (g *gzipFile) Close() error {
	zerr := g.Reader.Close()
	if err := g.file.Close(); err != nil {
		return err
	}
	return zerr
}

// ReadImages decodes an IDX image stream. limit > 0 caps the number of images
// returned.
func ReadImages(r io.Reader, limit int) ([][][]int, error) {
	var header [4]uint32
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return nil, errors.Wrap(err, "read image header")
	}
	if header[0] != ImageMagic {
		return nil, errors.Wrapf(ErrBadMagic, "image file: got %d, want %d", header[0], ImageMagic)
	}
	count, rows, cols := int(header[1]), int(header[2]), int(header[3])
	if limit > 0 && limit < count {
		count = limit
	}

	buf := make([]byte, rows*cols)
	images := make([][][]int, count)
	for n := 0; n < count; n++ {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, errors.Wrapf(err, "read image %d of %d", n, count)
		}
		img := make([][]int, rows)
		for i := range img {
			row := make([]int, cols)
			for j := range row {
				row[j] = int(buf[i*cols+j])
			}
			img[i] = row
		}
		images[n] = img
	}
	return images, nil
}

// ReadLabels decodes an IDX label stream. limit > 0 caps the number of labels
// returned.
func ReadLabels(r io.Reader, limit int) ([]int, error) {
	var header [2]uint32
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return nil, errors.Wrap(err, "read label header")
	}
	if header[0] != LabelMagic {
		return nil, errors.Wrapf(ErrBadMagic, "label file: got %d, want %d", header[0], LabelMagic)
	}
	count := int(header[1])
	if limit > 0 && limit < count {
		count = limit
	}

	buf := make([]byte, count)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, errors.Wrapf(err, "read %d labels", count)
	}
	labels := make([]int, count)
	for i, b := range buf {
		labels[i] = int(b)
	}
	return labels, nil
}

// ReadDataset loads paired image and label files.
func ReadDataset(imagesPath, labelsPath string, limit int) ([]Sample, error) {
	images, err := readFile(imagesPath, func(r io.Reader) ([][][]int, error) {
		return ReadImages(r, limit)
	})
	if err != nil {
		return nil, err
	}
	labels, err := readFile(labelsPath, func(r io.Reader) ([]int, error) {
		return ReadLabels(r, limit)
	})
	if err != nil {
		return nil, err
	}
	if len(images) != len(labels) {
		return nil, errors.Wrapf(ErrCountMismatch, "%d images, %d labels", len(images), len(labels))
	}

	samples := make([]Sample, len(images))
	for i := range images {
		samples[i] = Sample{Pixels: images[i], Label: labels[i]}
	}
	return samples, nil
}

func readFile[T any](path string, read func(io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := Open(path)
	if err != nil {
		return zero, err
	}
	defer f.Close()

	v, err := read(f)
	if err != nil {
		return zero, errors.Wrapf(err, "decode %s", path)
	}
	return v, nil
}

// WriteImages encodes images as an IDX image stream. All images must share
// the dimensions of the first one; pixel values are clamped to [0,255].
func WriteImages(w io.Writer, images [][][]int) error {
	rows, cols := 0, 0
	if len(images) > 0 {
		rows = len(images[0])
		if rows > 0 {
			cols = len(images[0][0])
		}
	}
	header := [4]uint32{ImageMagic, uint32(len(images)), uint32(rows), uint32(cols)}
	if err := binary.Write(w, binary.BigEndian, header); err != nil {
		return errors.Wrap(err, "write image header")
	}

	buf := make([]byte, rows*cols)
	for n, img := range images {
		if len(img) != rows {
			return errors.Newf("image %d has %d rows, want %d", n, len(img), rows)
		}
		for i, row := range img {
			if len(row) != cols {
				return errors.Newf("image %d row %d has %d columns, want %d", n, i, len(row), cols)
			}
			for j, v := range row {
				buf[i*cols+j] = clampByte(v)
			}
		}
		if _, err := w.Write(buf); err != nil {
			return errors.Wrapf(err, "write image %d", n)
		}
	}
	return nil
}

// WriteLabels encodes labels as an IDX label stream.
func WriteLabels(w io.Writer, labels []int) error {
	header := [2]uint32{LabelMagic, uint32(len(labels))}
	if err := binary.Write(w, binary.BigEndian, header); err != nil {
		return errors.Wrap(err, "write label header")
	}
	buf := make([]byte, len(labels))
	for i, l := range labels {
		buf[i] = clampByte(l)
	}
	_, err := w.Write(buf)
	return errors.Wrap(err, "write labels")
}

// WriteDataset writes samples to an image file and a label file. Paths ending
// in ".gz" are gzip-compressed.
func WriteDataset(imagesPath, labelsPath string, samples []Sample) error {
	images := make([][][]int, len(samples))
	labels := make([]int, len(samples))
	for i, s := range samples {
		images[i] = s.Pixels
		labels[i] = s.Label
	}
	if err := writeFile(imagesPath, func(w io.Writer) error { return WriteImages(w, images) }); err != nil {
		return err
	}
	return writeFile(labelsPath, func(w io.Writer) error { return WriteLabels(w, labels) })
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = errors.Wrapf(cerr, "close %s", path)
		}
	}()

	bw := bufio.NewWriter(f)
	if strings.HasSuffix(path, ".gz") {
		zw := gzip.NewWriter(bw)
		if err := write(zw); err != nil {
			return errors.Wrapf(err, "encode %s", path)
		}
		if err := zw.Close(); err != nil {
			return errors.Wrapf(err, "gzip %s", path)
		}
	} else if err := write(bw); err != nil {
		return errors.Wrapf(err, "encode %s", path)
	}
	return errors.Wrapf(bw.Flush(), "flush %s", path)
}

func clampByte(v int) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}
