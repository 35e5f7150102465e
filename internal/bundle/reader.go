package bundle

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ulikunitz/xz"
)

// Reader wraps a tar.Reader with automatic decompression handling.
type Reader struct {
	*tar.Reader
	file         *os.File
	decompressor io.Closer
}

// NewReader opens a .tar.xz or .tar.gz bundle.
func NewReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bundle: %w", err)
	}

	tr, closer, err := decompress(f, path)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &Reader{Reader: tr, file: f, decompressor: closer}, nil
}

func decompress(r io.Reader, name string) (*tar.Reader, io.Closer, error) {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".tar.xz"):
		xzr, err := xz.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("xz reader: %w", err)
		}
		return tar.NewReader(xzr), nil, nil
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		gzr, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("gzip reader: %w", err)
		}
		return tar.NewReader(gzr), gzr, nil
	}
	return nil, nil, fmt.Errorf("unsupported bundle format: %s", name)
}

// Close closes the bundle and any underlying decompressor.
func (r *Reader) Close() error {
	var first error
	if r.decompressor != nil {
		first = r.decompressor.Close()
	}
	if err := r.file.Close(); err != nil && first == nil {
		first = err
	}
	return first
}

// Visitor is called for each bundle entry. Return true to stop.
type Visitor func(header *tar.Header, content io.Reader) (stop bool, err error)

// Iterate walks through all entries, calling the visitor for each.
func (r *Reader) Iterate(visitor Visitor) error {
	return iterate(r.Reader, visitor)
}

func iterate(tr *tar.Reader, visitor Visitor) error {
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read header: %w", err)
		}
		stop, err := visitor(header, tr)
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
	}
}

// ReadFile reads a single named entry from the bundle at path.
func ReadFile(path, name string) ([]byte, error) {
	r, err := NewReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var content []byte
	found := false
	err = r.Iterate(func(header *tar.Header, rd io.Reader) (bool, error) {
		if header.Name != name {
			return false, nil
		}
		found = true
		var err error
		content, err = io.ReadAll(rd)
		return true, err
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("file not found in bundle: %s", name)
	}
	return content, nil
}
