// Package mnist reads and writes the IDX files used by the MNIST digit
// database. Image files (magic 2051) hold unsigned byte pixels in row-major
// order and label files (magic 2049) hold one unsigned byte per sample. Both
// may be gzip-compressed; compression is detected from the leading bytes.
package mnist
