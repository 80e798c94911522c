package vectortile

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DataSource fetches the raw MVT bytes for one tile. Implementations must
// be safe for concurrent use, since callers may fetch independent tiles from
// several goroutines (pipeline.Pool renders already-fetched tiles
// concurrently; it does not call FetchTile itself).
type DataSource interface {
	FetchTile(ctx context.Context, z, x, y int) ([]byte, error)
}

// HTTPSource fetches tiles over net/http from a URL template containing
// #Z#/#X#/#Y#/#TMSY# placeholders, the convention
// shumate-network-tile-source.c's get_tile_uri uses. It makes a single
// attempt per call — no retry or backoff, which the original's GUI layer
// owns and which is out of scope here.
type HTTPSource struct {
	URLTemplate string
	Client      *http.Client
}

// NewHTTPSource returns an HTTPSource for urlTemplate. If client is nil,
// http.DefaultClient is used.
func NewHTTPSource(urlTemplate string, client *http.Client) *HTTPSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSource{URLTemplate: urlTemplate, Client: client}
}

func (s *HTTPSource) FetchTile(ctx context.Context, z, x, y int) ([]byte, error) {
	url, err := resolveTileURL(s.URLTemplate, z, x, y)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &Error{Kind: ErrMalformedURL, Msg: url, Err: err}
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, &Error{Kind: ErrOffline, Msg: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{Kind: ErrBadResponse, Msg: fmt.Sprintf("%s: HTTP %d", url, resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: ErrBadResponse, Msg: url, Err: err}
	}
	return body, nil
}

// resolveTileURL substitutes #Z#, #X#, #Y#, and #TMSY# tokens in template,
// following get_tile_uri's tokenizing technique (split on "#", substitute
// recognized tokens, pass everything else through unchanged) rather than
// fmt.Sprintf, since the placeholder positions and count are caller-defined.
func resolveTileURL(template string, z, x, y int) (string, error) {
	if !strings.Contains(template, "#") {
		return "", &Error{Kind: ErrMalformedURL, Msg: fmt.Sprintf("template %q has no #Z#/#X#/#Y# placeholders", template)}
	}

	tokens := strings.Split(template, "#")
	var b strings.Builder
	for _, tok := range tokens {
		switch tok {
		case "Z":
			b.WriteString(strconv.Itoa(z))
		case "X":
			b.WriteString(strconv.Itoa(x))
		case "Y":
			b.WriteString(strconv.Itoa(y))
		case "TMSY":
			ymax := 1 << uint(z)
			b.WriteString(strconv.Itoa(ymax - y - 1))
		default:
			b.WriteString(tok)
		}
	}
	return b.String(), nil
}

// FileSource reads tiles from a local directory tree laid out as
// {root}/{z}/{x}/{y}.{ext}, grounded on shumate-file-tile-source.c's
// local-file tile loading. ext defaults to "mvt" if empty; "pbf" is also
// accepted as a fallback extension since both are in common use.
type FileSource struct {
	Root string
	Ext  string
}

// NewFileSource returns a FileSource rooted at dir.
func NewFileSource(dir string) *FileSource {
	return &FileSource{Root: dir, Ext: "mvt"}
}

func (s *FileSource) FetchTile(ctx context.Context, z, x, y int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ext := s.Ext
	if ext == "" {
		ext = "mvt"
	}

	path := filepath.Join(s.Root, strconv.Itoa(z), strconv.Itoa(x), strconv.Itoa(y)+"."+ext)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && ext == "mvt" {
			altPath := filepath.Join(s.Root, strconv.Itoa(z), strconv.Itoa(x), strconv.Itoa(y)+".pbf")
			if data, altErr := os.ReadFile(altPath); altErr == nil {
				return data, nil
			}
		}
		return nil, &Error{Kind: ErrBadResponse, Msg: path, Err: err}
	}
	return data, nil
}
