// Package label builds the extruded 3D text label shown in the scene.
//
// Fonts come from a Source, are parsed once per source by a FontCache, and
// are turned into meshes by Tessellate. A Generator ties these together and
// can run asynchronously; a Slot decides which finished label is shown.
package label

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/go-fonts/latin-modern/lmsans10regular"
	"github.com/h2non/filetype"
)

// maxFontSize bounds how much a remote font download may read.
const maxFontSize = 32 << 20

// Source supplies raw TrueType or OpenType font data.
type Source interface {
	Load(ctx context.Context) ([]byte, error)
	String() string // Cache key and log name
}

// FileSource reads a font file from disk.
type FileSource struct {
	Path string
}

func (s FileSource) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(s.Path)
}

func (s FileSource) String() string { return s.Path }

// HTTPSource downloads a font.
type HTTPSource struct {
	URL    string
	Client *http.Client // http.DefaultClient when nil
}

func (s HTTPSource) Load(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, err
	}
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxFontSize))
}

func (s HTTPSource) String() string { return s.URL }

// BytesSource serves font data already in memory.
type BytesSource struct {
	Name string
	Data []byte
}

func (s BytesSource) Load(ctx context.Context) ([]byte, error) {
	return s.Data, ctx.Err()
}

func (s BytesSource) String() string { return s.Name }

// DefaultSource is the embedded Latin Modern Sans font.
func DefaultSource() Source {
	return BytesSource{Name: "builtin:lmsans10-regular", Data: lmsans10regular.TTF}
}

// SourceFor picks a source from a user-supplied value: empty or "builtin"
// selects the embedded font, http(s) URLs are downloaded, anything else is a
// file path.
func SourceFor(v string) Source {
	switch {
	case v == "" || v == "builtin":
		return DefaultSource()
	case strings.HasPrefix(v, "http://"), strings.HasPrefix(v, "https://"):
		return HTTPSource{URL: v}
	default:
		return FileSource{Path: v}
	}
}

// checkFontType rejects data that is not TrueType or OpenType, naming what it
// looks like instead.
func checkFontType(data []byte) error {
	kind, err := filetype.Match(data)
	if err != nil {
		return err
	}
	switch kind.Extension {
	case "ttf", "otf":
		return nil
	case "unknown":
		return fmt.Errorf("not a font file")
	default:
		return fmt.Errorf("unsupported font format %q", kind.Extension)
	}
}
