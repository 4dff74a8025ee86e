package model

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "image/gif"  // artwork decoder registration
	_ "image/jpeg" // artwork decoder registration
	_ "image/png"  // artwork decoder registration
)

// Fetcher is the subset of HTTP behavior the song asset helpers need.
// The internal/http Client satisfies it; tests substitute fakes.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Song represents one track scraped from a bensound listing page.
//
// Song is a passive value object: every field is filled at construction
// from the scraped block, plus the Modified stamp. The asset helpers
// (FetchStream, FetchArtwork, Download) issue requests on demand through
// a caller-supplied Fetcher; nothing is cached between calls.
//
// Example:
//
//	song, err := model.NewSong(fields, time.Now())
//	stream, err := song.FetchStream(ctx, client)
//	img, err := song.FetchArtwork(ctx, client)
//	path, err := song.Download(ctx, client, "/music/bensound")
type Song struct {
	// Title is the display title, unique within a catalog snapshot.
	Title string `json:"title"`

	// Length is the display duration in "m:ss" form, e.g. "2:44".
	Length string `json:"length"`

	// Description is the short blurb shown under the title.
	Description string `json:"description"`

	// ForDownload reports whether the page offered a free download button.
	ForDownload bool `json:"for_download"`

	// ForPurchase reports whether the page offered a license purchase button.
	ForPurchase bool `json:"for_purchase"`

	// License is the assembled license text. It always ends with a period,
	// even when the page carried no license fragments at all.
	License string `json:"license"`

	// URLMain is the song's detail page, as written in the listing.
	URLMain string `json:"url_main"`

	// URLImage is the absolute URL of the cover thumbnail.
	URLImage string `json:"url_image"`

	// URLMP3 is the absolute URL of the preview/download stream.
	URLMP3 string `json:"url_mp3"`

	// URLPurchase is the license purchase page. Empty unless ForPurchase.
	URLPurchase string `json:"url_purchase"`

	// Modified is the extraction date in "2006-01-02" form.
	Modified string `json:"modified"`
}

// Fields carries the raw values scraped from one song block, before
// validation. Pass it to NewSong to obtain a Song.
type Fields struct {
	Title       string
	Length      string
	Description string
	ForDownload bool
	ForPurchase bool
	License     string
	URLMain     string
	URLImage    string
	URLMP3      string
	URLPurchase string
}

// MissingFieldError reports a required field that was empty at construction.
type MissingFieldError struct {
	// Field is the wire name of the missing field, e.g. "title" or "url_mp3".
	Field string
}

func (e *MissingFieldError) Error() string {
	return "missing required song field: " + e.Field
}

// NewSong validates the scraped fields and builds a Song.
//
// Title, length, description and the three media URLs are required; an
// empty value fails construction with a MissingFieldError naming the
// field. URLPurchase is required only when ForPurchase is set. The
// Modified stamp is taken from now, so callers control the clock.
func NewSong(f Fields, now time.Time) (*Song, error) {
	required := []struct{ name, value string }{
		{"title", f.Title},
		{"length", f.Length},
		{"description", f.Description},
		{"url_main", f.URLMain},
		{"url_image", f.URLImage},
		{"url_mp3", f.URLMP3},
	}
	for _, r := range required {
		if r.value == "" {
			return nil, &MissingFieldError{Field: r.name}
		}
	}
	if f.ForPurchase && f.URLPurchase == "" {
		return nil, &MissingFieldError{Field: "url_purchase"}
	}

	return &Song{
		Title:       f.Title,
		Length:      f.Length,
		Description: f.Description,
		ForDownload: f.ForDownload,
		ForPurchase: f.ForPurchase,
		License:     f.License,
		URLMain:     f.URLMain,
		URLImage:    f.URLImage,
		URLMP3:      f.URLMP3,
		URLPurchase: f.URLPurchase,
		Modified:    now.Format("2006-01-02"),
	}, nil
}

// Seconds converts the "m:ss" display length to whole seconds.
//
// Returns 0 when the length does not match that layout. Used for playlist
// duration entries.
func (s *Song) Seconds() int {
	mins, secs, ok := strings.Cut(s.Length, ":")
	if !ok {
		return 0
	}
	m, err := strconv.Atoi(strings.TrimSpace(mins))
	if err != nil {
		return 0
	}
	sec, err := strconv.Atoi(strings.TrimSpace(secs))
	if err != nil {
		return 0
	}
	return m*60 + sec
}

// FileName returns the local file name for the song's MP3, taken from the
// final path segment of the stream URL.
//
// Example:
//
//	// URLMP3 = "https://www.bensound.com/bensound-music/bensound-jazzcomedy.mp3"
//	song.FileName() // "bensound-jazzcomedy.mp3"
func (s *Song) FileName() string {
	if u, err := url.Parse(s.URLMP3); err == nil && u.Path != "" {
		return path.Base(u.Path)
	}
	parts := strings.Split(s.URLMP3, "/")
	return parts[len(parts)-1]
}

// FetchStream fetches the full MP3 and returns it as an in-memory
// seekable reader, suitable for feeding a player.
//
// The bytes are not cached; every call issues a fresh request. Purchase
// previews carry voiceover markers but fetch the same way.
func (s *Song) FetchStream(ctx context.Context, f Fetcher) (*bytes.Reader, error) {
	data, err := f.Get(ctx, s.URLMP3)
	if err != nil {
		return nil, fmt.Errorf("fetch stream for %q: %w", s.Title, err)
	}
	return bytes.NewReader(data), nil
}

// FetchArtwork fetches the cover thumbnail and decodes it.
//
// JPEG, PNG and GIF sources are supported. Returns an error when the
// fetch fails or the payload is not a decodable image.
func (s *Song) FetchArtwork(ctx context.Context, f Fetcher) (image.Image, error) {
	data, err := f.Get(ctx, s.URLImage)
	if err != nil {
		return nil, fmt.Errorf("fetch artwork for %q: %w", s.Title, err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode artwork for %q: %w", s.Title, err)
	}
	return img, nil
}

// Download fetches the MP3 and writes it under destDir, named after the
// final path segment of the stream URL. An empty destDir writes to the
// current working directory. Existing files are overwritten.
//
// Returns the path of the written file.
func (s *Song) Download(ctx context.Context, f Fetcher, destDir string) (string, error) {
	data, err := f.Get(ctx, s.URLMP3)
	if err != nil {
		return "", fmt.Errorf("download %q: %w", s.Title, err)
	}

	dest := s.FileName()
	if destDir != "" {
		dest = filepath.Join(destDir, dest)
	}
	if err := os.WriteFile(dest, data, 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", dest, err)
	}
	return dest, nil
}
