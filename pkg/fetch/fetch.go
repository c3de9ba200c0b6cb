package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	readability "codeberg.org/readeck/go-readability/v2"
	badger "github.com/dgraph-io/badger/v4"

	"github.com/soundprediction/docgraph/pkg/types"
)

// ErrPayloadTooLarge is returned when a single source exceeds the payload
// ceiling. It is deliberately distinct from fetch/read failures so callers
// can report the two differently.
var ErrPayloadTooLarge = errors.New("payload exceeds size ceiling")

const (
	// DefaultTimeout bounds a single URL fetch.
	DefaultTimeout = 20 * time.Second
	// DefaultMaxBytes bounds a single source's payload.
	DefaultMaxBytes = 10 << 20
	// cacheTTL is how long fetched URL text stays cached.
	cacheTTL = time.Hour
)

// Options configures an Extractor.
type Options struct {
	Timeout  time.Duration
	MaxBytes int64
	// CachePath is the badger directory for the URL cache; empty selects
	// an in-memory cache.
	CachePath string
	// DisableCache turns the URL cache off entirely.
	DisableCache bool
}

// Result is an extracted source: a display name, the detected source
// kind, and the plain text content.
type Result struct {
	Name string
	Kind types.SourceKind
	Text string
}

// Extractor resolves sources into plain text.
type Extractor struct {
	httpClient *http.Client
	maxBytes   int64
	cache      *badger.DB
	logger     *slog.Logger
}

// NewExtractor creates an Extractor. A nil options value selects defaults.
func NewExtractor(opts *Options, logger *slog.Logger) (*Extractor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := DefaultTimeout
	maxBytes := int64(DefaultMaxBytes)
	cachePath := ""
	disableCache := false
	if opts != nil {
		if opts.Timeout > 0 {
			timeout = opts.Timeout
		}
		if opts.MaxBytes > 0 {
			maxBytes = opts.MaxBytes
		}
		cachePath = opts.CachePath
		disableCache = opts.DisableCache
	}

	var cache *badger.DB
	if !disableCache {
		badgerOpts := badger.DefaultOptions(cachePath).WithLogger(nil)
		if cachePath == "" {
			badgerOpts = badgerOpts.WithInMemory(true)
		}
		db, err := badger.Open(badgerOpts)
		if err != nil {
			// The cache is an optimization; run without it rather than
			// failing construction.
			logger.Warn("url cache unavailable, fetching without cache", "error", err)
		} else {
			cache = db
		}
	}

	return &Extractor{
		httpClient: &http.Client{Timeout: timeout},
		maxBytes:   maxBytes,
		cache:      cache,
		logger:     logger,
	}, nil
}

// ExtractPlainText resolves a source (file path or URL) into plain text.
func (e *Extractor) ExtractPlainText(ctx context.Context, source string) (*Result, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return e.extractURL(ctx, source)
	}
	return e.extractFile(source)
}

// Close releases the URL cache.
func (e *Extractor) Close() error {
	if e.cache != nil {
		return e.cache.Close()
	}
	return nil
}

func (e *Extractor) extractFile(path string) (*Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.Size() > e.maxBytes {
		return nil, fmt.Errorf("%s is %d bytes: %w", path, info.Size(), ErrPayloadTooLarge)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	text := string(data)
	if isHTMLPath(path) {
		if stripped, err := stripHTML(strings.NewReader(text), "file://"+path); err == nil {
			text = stripped
		}
	}

	return &Result{
		Name: filepath.Base(path),
		Kind: types.FileSource,
		Text: strings.TrimSpace(text),
	}, nil
}

func (e *Extractor) extractURL(ctx context.Context, rawURL string) (*Result, error) {
	if cached, ok := e.cacheGet(rawURL); ok {
		return &Result{Name: displayName(rawURL), Kind: types.URLSource, Text: cached}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch of %s returned status %d", rawURL, resp.StatusCode)
	}

	// Read one byte past the ceiling to distinguish "at the limit" from
	// "over it".
	body, err := io.ReadAll(io.LimitReader(resp.Body, e.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", rawURL, err)
	}
	if int64(len(body)) > e.maxBytes {
		return nil, fmt.Errorf("%s: %w", rawURL, ErrPayloadTooLarge)
	}

	text := string(body)
	if strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		if stripped, err := stripHTML(strings.NewReader(text), rawURL); err == nil {
			text = stripped
		} else {
			e.logger.Warn("readability extraction failed, keeping raw body",
				"url", rawURL, "error", err)
		}
	}

	text = strings.TrimSpace(text)
	e.cachePut(rawURL, text)
	return &Result{Name: displayName(rawURL), Kind: types.URLSource, Text: text}, nil
}

func (e *Extractor) cacheGet(key string) (string, bool) {
	if e.cache == nil {
		return "", false
	}
	var value string
	err := e.cache.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			value = string(val)
			return nil
		})
	})
	if err != nil {
		return "", false
	}
	return value, true
}

func (e *Extractor) cachePut(key, value string) {
	if e.cache == nil {
		return
	}
	err := e.cache.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), []byte(value)).WithTTL(cacheTTL)
		return txn.SetEntry(entry)
	})
	if err != nil {
		e.logger.Warn("failed to cache fetched url", "url", key, "error", err)
	}
}

func stripHTML(r io.Reader, sourceURL string) (string, error) {
	parsed, err := url.Parse(sourceURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse url: %w", err)
	}
	article, err := readability.FromReader(r, parsed)
	if err != nil {
		return "", fmt.Errorf("failed to parse html: %w", err)
	}
	var builder strings.Builder
	if err := article.RenderText(&builder); err != nil {
		return "", fmt.Errorf("failed to render article text: %w", err)
	}
	return builder.String(), nil
}

func isHTMLPath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".html" || ext == ".htm"
}

func displayName(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	name := parsed.Host + parsed.Path
	return strings.TrimSuffix(name, "/")
}
