package pixel

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/png" // register PNG
	"io/fs"
	"sync"

	_ "golang.org/x/image/bmp"  // register BMP
	_ "golang.org/x/image/webp" // register WebP
)

// ErrLoad marks every asset loading failure.
var ErrLoad = errors.New("pixel: load failed")

// LoadError reports which identifier could not be turned into a buffer.
type LoadError struct {
	ID  string
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %q: %v", e.ID, e.Err)
}

// Unwrap exposes both ErrLoad and the cause.
func (e *LoadError) Unwrap() []error { return []error{ErrLoad, e.Err} }

// Loader turns a pool identifier into its decoded pixel buffer.
type Loader interface {
	Load(ctx context.Context, id string) (*Buffer, error)
}

// FSLoader decodes "<id><Ext>" files from a filesystem, e.g. os.DirFS("flags/quantized").
type FSLoader struct {
	FS     fs.FS
	Ext    string // defaults to ".png"
	Width  int    // defaults to Width
	Height int    // defaults to Height
}

// NewFSLoader builds a loader for 640x480 PNG flags under fsys.
func NewFSLoader(fsys fs.FS) *FSLoader {
	return &FSLoader{FS: fsys, Ext: ".png", Width: Width, Height: Height}
}

// Load implements Loader.
func (l *FSLoader) Load(ctx context.Context, id string) (*Buffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, &LoadError{ID: id, Err: err}
	}
	name := id + l.ext()
	if !fs.ValidPath(name) {
		return nil, &LoadError{ID: id, Err: fmt.Errorf("invalid asset name %q", name)}
	}
	f, err := l.FS.Open(name)
	if err != nil {
		return nil, &LoadError{ID: id, Err: err}
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, &LoadError{ID: id, Err: fmt.Errorf("decode: %w", err)}
	}
	w, h := l.Width, l.Height
	if w == 0 || h == 0 {
		w, h = Width, Height
	}
	return FromImage(img, w, h), nil
}

func (l *FSLoader) ext() string {
	if l.Ext == "" {
		return ".png"
	}
	return l.Ext
}

// CachingLoader memoises decoded buffers per identifier. Buffers handed out are
// shared and must be treated as read-only.
type CachingLoader struct {
	next  Loader
	mu    sync.Mutex
	cache map[string]*Buffer
}

// NewCachingLoader wraps next.
func NewCachingLoader(next Loader) *CachingLoader {
	return &CachingLoader{next: next, cache: make(map[string]*Buffer)}
}

// Load implements Loader. Failures are not cached so a retry can succeed.
func (c *CachingLoader) Load(ctx context.Context, id string) (*Buffer, error) {
	c.mu.Lock()
	if b, ok := c.cache[id]; ok {
		c.mu.Unlock()
		return b, nil
	}
	c.mu.Unlock()

	b, err := c.next.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// Another caller may have won the race; keep the first buffer.
	if prev, ok := c.cache[id]; ok {
		return prev, nil
	}
	c.cache[id] = b
	return b, nil
}

// MapLoader serves buffers from memory. Missing identifiers fail with a LoadError.
type MapLoader map[string]*Buffer

// Load implements Loader.
func (m MapLoader) Load(_ context.Context, id string) (*Buffer, error) {
	b, ok := m[id]
	if !ok {
		return nil, &LoadError{ID: id, Err: fs.ErrNotExist}
	}
	return b, nil
}
