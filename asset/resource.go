package asset

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// A readable scene asset such as a background image or an SDF glyph atlas.
// Assets live on the local filesystem or behind an http(s) URL.
type Resource struct {
	io.ReadCloser
	url *url.URL
}

// Path returns the location the resource was opened from.
func (r *Resource) Path() string {
	return r.url.String()
}

// Name returns the last element of the resource path.
func (r *Resource) Name() string {
	return filepath.Base(r.url.Path)
}

// IsRemote reports whether the resource was fetched over the network.
func (r *Resource) IsRemote() bool {
	return r.url.Scheme != ""
}

// NewResource opens an asset. Paths without a scheme that are not absolute
// are looked up next to relTo when it is not nil, so a scene file can refer
// to its textures by relative path both on disk and on a web server.
//
// Closing the returned resource is the caller's responsibility.
func NewResource(pathToResource string, relTo *Resource) (*Resource, error) {
	return NewResourceContext(context.Background(), pathToResource, relTo)
}

// NewResourceContext is like NewResource but aborts remote fetches when
// ctx is done.
func NewResourceContext(ctx context.Context, pathToResource string, relTo *Resource) (*Resource, error) {
	loc, err := resolveLocation(pathToResource, relTo)
	if err != nil {
		return nil, err
	}

	var stream io.ReadCloser
	switch loc.Scheme {
	case "":
		stream, err = os.Open(filepath.Clean(loc.Path))
	case "http", "https":
		stream, err = fetch(ctx, loc)
	default:
		err = fmt.Errorf("resource: unsupported scheme '%s'", loc.Scheme)
	}
	if err != nil {
		return nil, err
	}

	return &Resource{ReadCloser: stream, url: loc}, nil
}

// NewResourceFromStream wraps an in-memory asset. The name is only used for
// reporting and relative lookups.
func NewResourceFromStream(name string, source io.Reader) *Resource {
	loc, _ := url.Parse(name)
	return &Resource{
		ReadCloser: io.NopCloser(source),
		url:        loc,
	}
}

// Parse a resource path, accepting windows separators, and rebase relative
// paths onto the directory that contains the parent resource.
func resolveLocation(pathToResource string, relTo *Resource) (*url.URL, error) {
	loc, err := url.Parse(strings.ReplaceAll(pathToResource, `\`, `/`))
	if err != nil {
		return nil, err
	}
	if loc.Scheme != "" || relTo == nil || filepath.IsAbs(loc.Path) {
		return loc, nil
	}

	base := *relTo.url
	dir := base.Path
	if base.Scheme == "" {
		if dir, err = filepath.Abs(relTo.url.String()); err != nil {
			return nil, fmt.Errorf("resource: could not detect abs path for %s: %w", relTo.url.String(), err)
		}
	}
	base.Path = filepath.Dir(dir) + "/" + loc.Path
	return &base, nil
}

func fetch(ctx context.Context, loc *url.URL) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loc.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("resource: could not fetch '%s': %w", loc.String(), err)
	}
	if resp.StatusCode >= 400 {
		resp.Body.Close()
		return nil, fmt.Errorf("resource: could not fetch '%s': status %d", loc.String(), resp.StatusCode)
	}
	return resp.Body, nil
}
