// Package capture feeds camera frames through the decoder chain and submits
// what it reads.
package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ErrUnsupportedSource is returned for stream URLs this build cannot open.
var ErrUnsupportedSource = errors.New("unsupported frame source")

// FrameSource yields frames. Next returns io.EOF when the source is exhausted.
type FrameSource interface {
	Next(ctx context.Context) (image.Image, error)
}

// NewSource picks a source for url: http(s) URLs are polled as still-image
// snapshots and local paths are read as image directories or single files.
func NewSource(url string, timeout time.Duration) (FrameSource, error) {
	switch {
	case strings.HasPrefix(url, "http://"), strings.HasPrefix(url, "https://"):
		return NewSnapshotSource(url, timeout), nil
	case strings.Contains(url, "://"):
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, url)
	default:
		return NewDirSource(url)
	}
}

// SnapshotSource fetches one JPEG or PNG per call from a camera's snapshot URL.
type SnapshotSource struct {
	url    string
	client *http.Client
}

// NewSnapshotSource creates a SnapshotSource.
func NewSnapshotSource(url string, timeout time.Duration) *SnapshotSource {
	return &SnapshotSource{url: url, client: &http.Client{Timeout: timeout}}
}

func (s *SnapshotSource) Next(ctx context.Context) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("snapshot request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received non-200 status code: %d", resp.StatusCode)
	}
	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return img, nil
}

// DirSource replays image files in name order, then reports io.EOF.
type DirSource struct {
	files []string
	next  int
}

// NewDirSource creates a DirSource over path, which may be a directory of
// .jpg/.jpeg/.png files or a single image file.
func NewDirSource(path string) (*DirSource, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		return &DirSource{files: []string{path}}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".jpg", ".jpeg", ".png":
			files = append(files, filepath.Join(path, e.Name()))
		}
	}
	sort.Strings(files)
	return &DirSource{files: files}, nil
}

func (s *DirSource) Next(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.next >= len(s.files) {
		return nil, io.EOF
	}
	path := s.files[s.next]
	s.next++
	return LoadImage(path)
}

// LoadImage decodes a JPEG or PNG file.
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return img, nil
}
