// Package source loads the raw bytes of template and face images from local
// paths, file:// URLs or http(s):// URLs.
package source

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/handiism/waifu2ugc/internal/http"
	ioutils "github.com/handiism/waifu2ugc/internal/io"
)

// ErrEmptyReference is returned when a required reference is blank.
var ErrEmptyReference = errors.New("empty image reference")

// Kind classifies a reference.
type Kind int

const (
	KindLocal Kind = iota
	KindRemote
	KindUnsupported
)

// Classify tells local references (plain paths and file:// URLs) apart from
// remote http(s) ones. Any other URL scheme is unsupported. Single letter
// schemes are Windows drive letters, not URLs.
func Classify(ref string) Kind {
	u, err := url.Parse(ref)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		return KindLocal
	}
	switch strings.ToLower(u.Scheme) {
	case "file":
		return KindLocal
	case "http", "https":
		return KindRemote
	}
	return KindUnsupported
}

// LocalPath returns the file system path of a local reference, resolved
// against base (see ioutils.ResolvePath). ok is false for remote and
// unsupported references.
func LocalPath(ref, base string) (path string, ok bool) {
	if Classify(ref) != KindLocal {
		return "", false
	}
	if u, err := url.Parse(ref); err == nil && strings.EqualFold(u.Scheme, "file") {
		p := u.Path
		if runtime.GOOS == "windows" {
			p = strings.TrimPrefix(p, "/")
		}
		return ioutils.ResolvePath(filepath.FromSlash(p), base), true
	}
	return ioutils.ResolvePath(ref, base), true
}

// Loader fetches reference contents.
type Loader struct {
	client  *http.Client
	baseDir string
}

// NewLoader creates a Loader. Relative local references resolve against baseDir.
func NewLoader(client *http.Client, baseDir string) *Loader {
	return &Loader{client: client, baseDir: baseDir}
}

// Load returns the bytes behind ref.
func (l *Loader) Load(ctx context.Context, ref string) ([]byte, error) {
	if strings.TrimSpace(ref) == "" {
		return nil, ErrEmptyReference
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch Classify(ref) {
	case KindRemote:
		return l.client.DownloadBytes(ctx, ref)
	case KindLocal:
		path, _ := LocalPath(ref, l.baseDir)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return data, nil
	}
	return nil, fmt.Errorf("unsupported reference %q", ref)
}
