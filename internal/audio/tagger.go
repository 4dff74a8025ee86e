package audio

import (
	"os"

	"github.com/bogem/id3v2"

	"github.com/velvetear/bensound-downloader/internal/model"
)

// TagEditAction defines how to handle individual ID3 tags.
//
// Each tag field can be configured independently to determine whether
// it should be modified, cleared, or left unchanged.
type TagEditAction int

const (
	// TagEmpty clears the tag value (sets to empty string).
	TagEmpty TagEditAction = iota

	// TagModify updates the tag with the value scraped from bensound.
	TagModify

	// TagDoNotModify leaves the existing tag value unchanged.
	TagDoNotModify
)

// TagConfig holds tagging configuration for each ID3 field.
//
// This allows fine-grained control over which tags are modified
// when processing downloaded MP3 files.
//
// Example:
//
//	cfg := &TagConfig{
//	    ModifyTags: true,
//	    ArtistName: "Bensound",
//	    Artist:     TagModify,      // Write the configured artist
//	    Album:      TagModify,      // Album is the channel name
//	    TrackTitle: TagModify,      // Update title from the listing
//	    Year:       TagModify,      // Year from the extraction date
//	    Comments:   TagModify,      // License text goes into COMM
//	    SourceURL:  TagDoNotModify, // Keep any existing WOAS frame
//	}
type TagConfig struct {
	// ModifyTags is a master switch. If false, no string tags are modified.
	ModifyTags bool

	// ArtistName is the value written when Artist is TagModify.
	// bensound publishes all tracks under one name, so it is configured
	// rather than scraped.
	ArtistName string

	// Artist controls the TPE1 (Lead artist) frame.
	Artist TagEditAction

	// Album controls the TALB (Album title) frame; the channel name is
	// used as the album.
	Album TagEditAction

	// Year controls the TYER (Year) frame, from the record's Modified date.
	Year TagEditAction

	// Date controls the TDRC (Recording time) frame (ID3v2.4).
	Date TagEditAction

	// TrackTitle controls the TIT2 (Title) frame.
	TrackTitle TagEditAction

	// Comments controls the COMM (Comments) frame, carrying the
	// assembled license text.
	Comments TagEditAction

	// SourceURL controls the WOAS (Official audio source webpage) frame,
	// pointing back at the song's detail page.
	SourceURL TagEditAction
}

// DefaultTagConfig returns the default tag configuration.
//
// By default every frame is set to TagModify, filling the tags from the
// scraped record, with "Bensound" as the artist.
func DefaultTagConfig() *TagConfig {
	return &TagConfig{
		ModifyTags: true,
		ArtistName: "Bensound",
		Artist:     TagModify,
		Album:      TagModify,
		Year:       TagModify,
		Date:       TagModify,
		TrackTitle: TagModify,
		Comments:   TagModify,
		SourceURL:  TagModify,
	}
}

// Tagger writes ID3 tags to MP3 files.
//
// Tagger uses the id3v2 library to modify MP3 file metadata including:
//   - Artist, Album (channel), Title
//   - Year (extraction date)
//   - License text (comments)
//   - Source page URL
//   - Cover Art (attached picture)
//
// Example:
//
//	tagger := NewTagger(DefaultTagConfig())
//
//	// After downloading a song
//	err := tagger.SaveTags(path, song, "Jazz", artworkBytes)
//	if err != nil {
//	    log.Printf("Failed to tag %s: %v", path, err)
//	}
type Tagger struct {
	config *TagConfig
}

// NewTagger creates a new Tagger with the given configuration.
//
// If config is nil, DefaultTagConfig() is used.
func NewTagger(config *TagConfig) *Tagger {
	if config == nil {
		config = DefaultTagConfig()
	}
	return &Tagger{config: config}
}

// SaveTags writes ID3 tags to a downloaded MP3 file.
//
// This method:
//  1. Opens the existing MP3 file (or creates empty tags if none exist)
//  2. Updates string tags based on TagConfig settings
//  3. Embeds cover art if artwork bytes are provided
//  4. Saves the modified tags to the file
//
// Parameters:
//   - path: The MP3 file to tag
//   - song: The song record (provides title, license, source URL, date)
//   - channel: The channel the song was downloaded from (used as album)
//   - artwork: JPEG image bytes for cover art (nil to skip artwork)
//
// Returns an error if the file cannot be opened or saved.
func (t *Tagger) SaveTags(path string, song *model.Song, channel string, artwork []byte) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		// If file doesn't have tags, create new
		if os.IsNotExist(err) {
			tag = id3v2.NewEmptyTag()
		} else {
			return err
		}
	}
	defer tag.Close()

	if t.config.ModifyTags {
		t.updateStringTags(tag, song, channel)
	}

	if artwork != nil {
		t.updateArtwork(tag, artwork)
	}

	return tag.Save()
}

// updateStringTags updates text-based ID3 frames based on configuration.
func (t *Tagger) updateStringTags(tag *id3v2.Tag, song *model.Song, channel string) {
	// Artist (TPE1)
	switch t.config.Artist {
	case TagEmpty:
		tag.SetArtist("")
	case TagModify:
		tag.SetArtist(t.config.ArtistName)
	}

	// Album (TALB) - the channel stands in for an album
	switch t.config.Album {
	case TagEmpty:
		tag.SetAlbum("")
	case TagModify:
		tag.SetAlbum(channel)
	}

	// Year (TYER) - ID3v2.3, from the "2006-01-02" Modified stamp
	switch t.config.Year {
	case TagEmpty:
		tag.DeleteFrames("TYER")
	case TagModify:
		if len(song.Modified) >= 4 {
			tag.AddTextFrame("TYER", id3v2.EncodingUTF8, song.Modified[:4])
		}
	}

	// Date (TDRC) - ID3v2.4
	switch t.config.Date {
	case TagEmpty:
		tag.DeleteFrames("TDRC")
	case TagModify:
		tag.AddTextFrame("TDRC", id3v2.EncodingUTF8, song.Modified)
	}

	// Track Title (TIT2)
	switch t.config.TrackTitle {
	case TagEmpty:
		tag.SetTitle("")
	case TagModify:
		tag.SetTitle(song.Title)
	}

	// Comments (COMM) - carries the license summary
	switch t.config.Comments {
	case TagEmpty:
		tag.DeleteFrames(tag.CommonID("Comments"))
	case TagModify:
		if song.License != "" {
			tag.AddCommentFrame(id3v2.CommentFrame{
				Encoding:    id3v2.EncodingUTF8,
				Language:    "eng",
				Description: "License",
				Text:        song.License,
			})
		}
	}

	// Source webpage (WOAS). URL frames carry no encoding byte, so the
	// URL is written as a raw frame body.
	switch t.config.SourceURL {
	case TagEmpty:
		tag.DeleteFrames("WOAS")
	case TagModify:
		if song.URLMain != "" {
			tag.DeleteFrames("WOAS")
			tag.AddFrame("WOAS", id3v2.UnknownFrame{Body: []byte(song.URLMain)})
		}
	}

	// Genre - always clear, bensound channels are not genres in the ID3 sense
	tag.SetGenre("")
}

// updateArtwork embeds cover art as an attached picture frame.
func (t *Tagger) updateArtwork(tag *id3v2.Tag, artwork []byte) {
	// Remove any existing cover pictures
	tag.DeleteFrames(tag.CommonID("Attached picture"))

	// Add new artwork as front cover (APIC frame)
	pic := id3v2.PictureFrame{
		Encoding:    id3v2.EncodingUTF8,
		MimeType:    "image/jpeg",
		PictureType: id3v2.PTFrontCover,
		Description: "Cover",
		Picture:     artwork,
	}
	tag.AddAttachedPicture(pic)
}
