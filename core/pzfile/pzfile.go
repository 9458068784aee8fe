// Package pzfile loads pole-zero files from disk. Plain, gzip and xz inputs
// are accepted; parsed results are cached by content digest so that the
// same response file under several names is parsed once.
package pzfile

import (
	"bytes"
	"context"
	"os"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/FocuswithJustin/PoleZero/core/errors"
	"github.com/FocuswithJustin/PoleZero/core/pz"
	"github.com/FocuswithJustin/PoleZero/internal/cache"
	"github.com/FocuswithJustin/PoleZero/internal/logging"
	"github.com/FocuswithJustin/PoleZero/internal/source"
	"github.com/FocuswithJustin/PoleZero/internal/validation"
)

// DefaultCacheTTL is how long a parsed result stays cached.
const DefaultCacheTTL = 10 * time.Minute

// File is one loaded pole-zero file.
type File struct {
	Path        string             `json:"path"`
	Compression source.Compression `json:"compression"`
	Hashes      source.Hashes      `json:"hashes"`
	Instruments pz.Result          `json:"instruments"`
}

// Load reads and parses the file at path without caching.
func Load(path string) (*File, error) {
	content, err := read(path)
	if err != nil {
		return nil, err
	}
	result, err := parse(content)
	if err != nil {
		return nil, err
	}
	return newFile(content, result), nil
}

func read(path string) (*source.Content, error) {
	if _, err := validation.ValidateInputFile(path); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewIO("open", path, err)
		}
		return nil, &errors.ValidationError{Field: "path", Value: path, Message: err.Error(), Err: err}
	}
	content, err := source.ReadFile(path, validation.MaxFileSize)
	if err != nil {
		return nil, err
	}
	if len(content.Data) > 0 && !validation.IsLikelyText(sniff(content.Data)) {
		return nil, &errors.ValidationError{
			Field:   "content",
			Value:   path,
			Message: validation.ErrBinaryContent.Error(),
			Err:     validation.ErrBinaryContent,
		}
	}
	return content, nil
}

// sniff returns the prefix of data inspected for binary content.
func sniff(data []byte) []byte {
	const n = 8192
	if len(data) > n {
		data = data[:n]
	}
	return data
}

func parse(content *source.Content) (pz.Result, error) {
	result, err := pz.Parse(bytes.NewReader(content.Data))
	if err != nil {
		return nil, errors.Wrap(err, content.Path)
	}
	return result, nil
}

func newFile(content *source.Content, result pz.Result) *File {
	return &File{
		Path:        content.Path,
		Compression: content.Compression,
		Hashes:      content.Hashes,
		Instruments: result,
	}
}

// Option configures a Loader.
type Option func(*Loader)

// WithCacheTTL sets how long parsed results are kept. Zero keeps them for
// the lifetime of the Loader.
func WithCacheTTL(ttl time.Duration) Option {
	return func(l *Loader) {
		l.ttl = ttl
	}
}

// WithWorkers bounds the number of files LoadAll parses at once.
func WithWorkers(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.workers = n
		}
	}
}

// Loader loads files through a content-addressed parse cache. It is safe
// for concurrent use. Cached results are shared between callers and must
// be treated as read-only.
type Loader struct {
	ttl     time.Duration
	workers int
	cache   *cache.TTLCache[string, pz.Result]
}

// NewLoader creates a Loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		ttl:     DefaultCacheTTL,
		workers: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.cache = cache.New[string, pz.Result](l.ttl)
	return l
}

// Workers returns the LoadAll concurrency limit.
func (l *Loader) Workers() int {
	return l.workers
}

// Load reads path and parses it, reusing a cached result when the
// decompressed content was seen before.
func (l *Loader) Load(ctx context.Context, path string) (*File, error) {
	start := time.Now()
	content, err := read(path)
	if err != nil {
		logging.FileFailed(ctx, path, err)
		return nil, err
	}

	key := content.Hashes.BLAKE3
	if result, ok := l.cache.Get(key); ok {
		logging.FileParsed(ctx, path, len(result), true, time.Since(start))
		return newFile(content, result), nil
	}

	result, err := parse(content)
	if err != nil {
		logging.FileFailed(ctx, path, err)
		return nil, err
	}
	l.cache.Set(key, result)

	logger := logging.LoggerFromContext(ctx)
	for i, in := range result {
		if !in.HasConstant() {
			logger.Warn("constant_missing", "path", path, "block", i+1)
		}
	}
	logging.FileParsed(ctx, path, len(result), false, time.Since(start))
	return newFile(content, result), nil
}

// LoadAll loads paths concurrently, at most Workers at a time. Files are
// returned in the order of paths. The first failure cancels the remaining
// loads and is returned.
func (l *Loader) LoadAll(ctx context.Context, paths []string) ([]*File, error) {
	files := make([]*File, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			f, err := l.Load(ctx, path)
			if err != nil {
				return err
			}
			files[i] = f
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	logging.LoggerFromContext(ctx).Debug("batch_loaded",
		"files", len(files),
		"cache_entries", l.cache.Len(),
	)
	return files, nil
}

// Prune drops expired cache entries and returns how many were removed.
func (l *Loader) Prune() int {
	return l.cache.Prune()
}
