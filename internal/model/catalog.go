package model

import (
	"errors"
	"fmt"
	"io"

	json "github.com/goccy/go-json"
)

// ErrNotFound is returned by catalog lookups for unknown indexes, titles
// and channels. It signals a recoverable miss, never a failed extraction.
var ErrNotFound = errors.New("not found in catalog")

// Catalog is the result of one full extraction: the deduplicated master
// song list plus one playlist of titles per channel.
//
// The master list holds each title exactly once. When the same title
// appears in several channels, the record built from its first occurrence
// (in channel order, then page order) wins; later occurrences still show
// up in their channel's playlist, referencing the master record by title.
//
// Example:
//
//	catalog := model.NewCatalog()
//	catalog.Add("Jazz", song)
//	song, err := catalog.SongByTitle("Jazz Comedy")
//	titles, err := catalog.Playlist("Jazz")
type Catalog struct {
	songs     []*Song
	titles    []string
	byTitle   map[string]*Song
	playlists map[string][]string
	channels  []string
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		byTitle:   make(map[string]*Song),
		playlists: make(map[string][]string),
	}
}

// AddChannel registers a channel so it appears in the snapshot even when
// its traversal produced no songs. Registering twice is a no-op.
func (c *Catalog) AddChannel(name string) {
	if _, ok := c.playlists[name]; ok {
		return
	}
	c.channels = append(c.channels, name)
	c.playlists[name] = []string{}
}

// Add records a song under the given channel.
//
// The title always joins the channel's playlist. The song object itself
// joins the master list only if its title has not been seen before.
func (c *Catalog) Add(channel string, s *Song) {
	c.AddChannel(channel)
	c.playlists[channel] = append(c.playlists[channel], s.Title)

	if _, seen := c.byTitle[s.Title]; seen {
		return
	}
	c.byTitle[s.Title] = s
	c.songs = append(c.songs, s)
	c.titles = append(c.titles, s.Title)
}

// Len returns the number of unique songs in the master list.
func (c *Catalog) Len() int {
	return len(c.songs)
}

// Songs returns the master list in first-seen order.
func (c *Catalog) Songs() []*Song {
	return c.songs
}

// Titles returns the master list titles, parallel to Songs.
func (c *Catalog) Titles() []string {
	return c.titles
}

// ChannelNames returns the registered channels in registration order.
func (c *Catalog) ChannelNames() []string {
	return c.channels
}

// SongByIndex returns the song at the given position in the master list.
// Out-of-range indexes return ErrNotFound.
func (c *Catalog) SongByIndex(i int) (*Song, error) {
	if i < 0 || i >= len(c.songs) {
		return nil, fmt.Errorf("song index %d: %w", i, ErrNotFound)
	}
	return c.songs[i], nil
}

// SongByTitle returns the song with the exact title.
//
// Presence is checked explicitly, so the first entry of the master list
// resolves like any other; a "found at position zero" result is a hit,
// not a miss.
func (c *Catalog) SongByTitle(title string) (*Song, error) {
	s, ok := c.byTitle[title]
	if !ok {
		return nil, fmt.Errorf("song %q: %w", title, ErrNotFound)
	}
	return s, nil
}

// Playlist returns the titles listed under a channel, in the order the
// traversal encountered them. Duplicate titles within a channel are kept.
func (c *Catalog) Playlist(channel string) ([]string, error) {
	titles, ok := c.playlists[channel]
	if !ok {
		return nil, fmt.Errorf("channel %q: %w", channel, ErrNotFound)
	}
	return titles, nil
}

// Export is the serializable form of a catalog snapshot.
type Export struct {
	Channels  []string            `json:"channels"`
	Songs     []*Song             `json:"songs"`
	Playlists map[string][]string `json:"playlists"`
}

// Export builds the serializable snapshot view.
func (c *Catalog) Export() *Export {
	return &Export{
		Channels:  c.channels,
		Songs:     c.songs,
		Playlists: c.playlists,
	}
}

// WriteJSON writes the snapshot as indented JSON, for feeding the catalog
// into a database import or any other downstream consumer.
func (c *Catalog) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(c.Export())
}
