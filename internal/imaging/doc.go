// Package imaging turns digit images into the integer pixel matrices the
// descriptor consumes.
//
// Images are decoded from PNG, JPEG or GIF files and cached by path. ToMatrix
// then crops an optional region, converts to grayscale, flips polarity so the
// ink is bright on a dark background, fits the digit into a square canvas and
// reads the result back as rows of 0-255 values. An optional blur and an
// optional binarizing threshold can be applied on the way.
//
// # Coordinate System
//
// Image coordinates are 0-based with (0,0) at the top-left. Regions use
// inclusive (X1,Y1) and exclusive (X2,Y2). Matrices are indexed [row][column],
// so matrix[y][x] holds the pixel at (x,y).
//
// # Synthetic Digits
//
// GlyphMatrix renders the digits 0-9 from a 3x5 bitmap font scaled into a
// matrix. The glyphs give demos and tests a source of labelled digits without
// a dataset on disk.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. The conversion functions are
// stateless.
package imaging
