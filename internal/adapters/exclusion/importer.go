// Package exclusion resolves exclusion sources named by string roles into
// the tokens they list.
package exclusion

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/jessebenson/numl/pkg/logger"
	"github.com/jessebenson/numl/pkg/metrics"
)

// DefaultMaxBytes is the size limit applied when none is configured.
const DefaultMaxBytes int64 = 4 << 20

// FileImporter reads exclusion lists from files, one read per Import call.
type FileImporter struct {
	baseDir    string
	delimiters string
	maxBytes   int64
	logger     logger.Logger
}

// NewFileImporter creates a FileImporter with configuration options.
func NewFileImporter(opts ...Option) *FileImporter {
	f := &FileImporter{
		delimiters: ",;",
		maxBytes:   DefaultMaxBytes,
		logger:     logger.Discard(),
	}

	// Apply all options
	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Import returns the unique tokens of source in first-seen order. An empty
// source or a file that does not exist yields no tokens; the latter is logged.
func (f *FileImporter) Import(ctx context.Context, source string) ([]string, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := source
	if !filepath.IsAbs(path) && f.baseDir != "" {
		path = filepath.Join(f.baseDir, path)
	}

	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		metrics.RecordExclusionSourceMissing()
		f.logger.Warn(ctx, "exclusion source not found, using empty set",
			logger.String("source", source),
			logger.String("path", path),
		)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open exclusion source %q: %w", source, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat exclusion source %q: %w", source, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %q is a directory", ErrInvalidSource, source)
	}
	if info.Size() > f.maxBytes {
		return nil, fmt.Errorf("%w: %q is %d bytes, limit %d", ErrTooLarge, source, info.Size(), f.maxBytes)
	}

	// the limit also covers files that grow between Stat and read
	cr := &countingReader{r: io.LimitReader(file, f.maxBytes+1)}
	tokens, err := f.read(cr)
	if err == nil && cr.n > f.maxBytes {
		err = ErrTooLarge
	}
	if err != nil {
		return nil, fmt.Errorf("read exclusion source %q: %w", source, err)
	}

	metrics.RecordExclusionTokens(len(tokens))
	f.logger.Debug(ctx, "exclusion source imported",
		logger.String("source", source),
		logger.Int("tokens", len(tokens)),
	)
	return tokens, nil
}

func (f *FileImporter) read(r io.Reader) ([]string, error) {
	var (
		tokens []string
		seen   = make(map[string]struct{})
	)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), int(f.maxBytes)+1)
	for sc.Scan() {
		for _, tok := range Split(sc.Text(), f.delimiters) {
			if _, dup := seen[tok]; dup {
				continue
			}
			seen[tok] = struct{}{}
			tokens = append(tokens, tok)
		}
	}
	if err := sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, ErrTooLarge
		}
		return nil, err
	}
	return tokens, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// Split breaks one line into trimmed, non-empty tokens on any of delims.
func Split(line, delims string) []string {
	parts := strings.FieldsFunc(line, func(r rune) bool {
		return strings.ContainsRune(delims, r)
	})
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Map is an in-memory importer keyed by source name. Unknown sources yield
// no tokens.
type Map map[string][]string

// Import returns a copy of the tokens registered for source.
func (m Map) Import(_ context.Context, source string) ([]string, error) {
	return slices.Clone(m[source]), nil
}
