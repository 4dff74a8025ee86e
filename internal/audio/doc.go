// Package audio provides audio file manipulation services including
// ID3 tag writing and playlist generation.
//
// # ID3 Tagging
//
// Use the Tagger to write ID3 tags to downloaded MP3 files:
//
//	tagger := audio.NewTagger(audio.DefaultTagConfig())
//	err := tagger.SaveTags(path, song, "Jazz", artworkBytes)
//
// The tagger supports:
//   - Artist (configured, "Bensound" by default)
//   - Album (the song's channel), Track Title
//   - Year and Date from the extraction stamp
//   - License text (comments frame)
//   - Source page URL
//   - Cover Art (embedded in MP3)
//
// # Playlist Generation
//
// Generate one playlist per downloaded channel:
//
//	creator := audio.NewPlaylistCreator(audio.FormatM3U, true) // extended M3U
//	content := creator.CreatePlaylist("Jazz", entries)
//	os.WriteFile("Jazz.m3u", []byte(content), 0644)
//
// Supported formats:
//   - M3U (with optional extended info)
//   - PLS
//   - WPL (Windows Media Player)
//   - ZPL (Zune Media Player)
package audio
