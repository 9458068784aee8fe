// Package source opens pole-zero input files. It transparently handles
// gzip and xz compression and computes content digests used for caching
// and catalog deduplication.
package source

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/FocuswithJustin/PoleZero/core/errors"
)

// Compression identifies how a source file is encoded on disk.
type Compression string

// Supported compressions.
const (
	CompressionNone Compression = "none"
	CompressionGzip Compression = "gzip"
	CompressionXZ   Compression = "xz"
)

// Magic numbers used to sniff compression when the extension is missing.
var (
	gzipMagic = []byte{0x1f, 0x8b}
	xzMagic   = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
)

// DetectCompression picks a compression from the path extension, falling
// back to the leading magic bytes of head.
func DetectCompression(path string, head []byte) Compression {
	switch {
	case strings.HasSuffix(path, ".xz"):
		return CompressionXZ
	case strings.HasSuffix(path, ".gz"):
		return CompressionGzip
	case bytes.HasPrefix(head, xzMagic):
		return CompressionXZ
	case bytes.HasPrefix(head, gzipMagic):
		return CompressionGzip
	default:
		return CompressionNone
	}
}

// Decompress wraps r according to c. The returned closer releases any
// decompressor state but never closes r itself.
func Decompress(r io.Reader, c Compression) (io.Reader, io.Closer, error) {
	switch c {
	case CompressionNone:
		return r, io.NopCloser(nil), nil
	case CompressionXZ:
		xzr, err := xz.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("xz reader: %w", err)
		}
		return xzr, io.NopCloser(nil), nil // xz reader doesn't need closing
	case CompressionGzip:
		gzr, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("gzip reader: %w", err)
		}
		return gzr, gzr, nil
	default:
		return nil, nil, errors.NewUnsupported("compression", string(c))
	}
}

// Content is a fully read, decompressed source file.
type Content struct {
	Path        string
	Compression Compression
	Data        []byte
	Hashes      Hashes
}

// ReadFile reads and decompresses the file at path, refusing decompressed
// content larger than limit bytes. A limit of 0 disables the check.
func ReadFile(path string, limit int64) (*Content, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	defer f.Close()

	head := make([]byte, len(xzMagic))
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, errors.NewIO("read", path, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, errors.NewIO("seek", path, err)
	}

	compression := DetectCompression(path, head[:n])
	r, closer, err := Decompress(f, compression)
	if err != nil {
		return nil, errors.NewIO("decompress", path, err)
	}
	defer closer.Close()

	if limit > 0 {
		r = io.LimitReader(r, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.NewIO("read", path, err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, &errors.ValidationError{
			Field:   "size",
			Value:   path,
			Message: fmt.Sprintf("decompressed content exceeds %d bytes", limit),
		}
	}

	return &Content{
		Path:        path,
		Compression: compression,
		Data:        data,
		Hashes:      Digest(data),
	}, nil
}
