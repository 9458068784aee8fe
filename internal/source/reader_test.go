package source

import (
	"bytes"
	"compress/gzip"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ulikunitz/xz"

	pzerrors "github.com/FocuswithJustin/PoleZero/core/errors"
)

const samplePZ = "* ****\n*STATION: T\nZEROS 0\nPOLES 0\nCONSTANT 1\n* ****\n"

func writeGzip(t *testing.T, path string, data []byte) {
	t.Helper()
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	if _, err := gw.Write(data); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := gw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}
}

func writeXZ(t *testing.T, path string, data []byte) {
	t.Helper()
	var buf bytes.Buffer
	xw, err := xz.NewWriter(&buf)
	if err != nil {
		t.Fatalf("xz writer: %v", err)
	}
	if _, err := xw.Write(data); err != nil {
		t.Fatalf("xz write: %v", err)
	}
	if err := xw.Close(); err != nil {
		t.Fatalf("xz close: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	want := Digest([]byte(samplePZ))

	plain := filepath.Join(dir, "SAC_PZs_plain")
	if err := os.WriteFile(plain, []byte(samplePZ), 0644); err != nil {
		t.Fatal(err)
	}
	gz := filepath.Join(dir, "SAC_PZs.gz")
	writeGzip(t, gz, []byte(samplePZ))
	xzPath := filepath.Join(dir, "SAC_PZs.xz")
	writeXZ(t, xzPath, []byte(samplePZ))
	sniffed := filepath.Join(dir, "SAC_PZs_noext")
	writeXZ(t, sniffed, []byte(samplePZ))

	tests := []struct {
		path        string
		compression Compression
	}{
		{plain, CompressionNone},
		{gz, CompressionGzip},
		{xzPath, CompressionXZ},
		{sniffed, CompressionXZ},
	}

	for _, tt := range tests {
		t.Run(filepath.Base(tt.path), func(t *testing.T) {
			c, err := ReadFile(tt.path, 0)
			if err != nil {
				t.Fatalf("ReadFile() error = %v", err)
			}
			if c.Compression != tt.compression {
				t.Errorf("Compression = %s, want %s", c.Compression, tt.compression)
			}
			if string(c.Data) != samplePZ {
				t.Errorf("Data = %q", c.Data)
			}
			if c.Hashes != want {
				t.Errorf("Hashes = %+v, want %+v", c.Hashes, want)
			}
		})
	}
}

func TestReadFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadFile(filepath.Join(dir, "missing"), 0)
	var ioErr *pzerrors.IOError
	if !errors.As(err, &ioErr) || ioErr.Operation != "open" {
		t.Errorf("missing file error = %v, want open IOError", err)
	}

	corrupt := filepath.Join(dir, "corrupt.gz")
	if err := os.WriteFile(corrupt, []byte("not gzip"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadFile(corrupt, 0); !errors.As(err, &ioErr) {
		t.Errorf("corrupt gzip error = %v, want IOError", err)
	}

	big := filepath.Join(dir, "big")
	if err := os.WriteFile(big, bytes.Repeat([]byte("x"), 100), 0644); err != nil {
		t.Fatal(err)
	}
	_, err = ReadFile(big, 10)
	if !errors.Is(err, pzerrors.ErrInvalidInput) {
		t.Errorf("oversized error = %v, want ErrInvalidInput", err)
	}
	if _, err := ReadFile(big, 100); err != nil {
		t.Errorf("content exactly at the limit should pass: %v", err)
	}
}

func TestDetectCompression(t *testing.T) {
	tests := []struct {
		path string
		head []byte
		want Compression
	}{
		{"a.xz", nil, CompressionXZ},
		{"a.gz", nil, CompressionGzip},
		{"a", []byte{0x1f, 0x8b, 0x08}, CompressionGzip},
		{"a", []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}, CompressionXZ},
		{"a", []byte("* ****"), CompressionNone},
	}
	for _, tt := range tests {
		if got := DetectCompression(tt.path, tt.head); got != tt.want {
			t.Errorf("DetectCompression(%q, %v) = %s, want %s", tt.path, tt.head, got, tt.want)
		}
	}
}

func TestDigest(t *testing.T) {
	h := Digest([]byte("abc"))
	if h.SHA256 != "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad" {
		t.Errorf("SHA256 = %s", h.SHA256)
	}
	if h.BLAKE3 != Blake3Hash([]byte("abc")) {
		t.Errorf("BLAKE3 mismatch between Digest and Blake3Hash")
	}
	if !IsValidHash(h.SHA256) || !IsValidHash(h.BLAKE3) {
		t.Error("digests should be valid hex hashes")
	}
	if IsValidHash("XYZ") {
		t.Error("IsValidHash accepted garbage")
	}
}
