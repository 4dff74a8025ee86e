// Package model defines the core data structures used throughout
// the bensound-downloader application.
//
// # Song
//
// Song is the scraped record for one track. It is built once from a
// listing block and never mutated afterwards; asset access goes through
// small on-demand helpers:
//
//	song, _ := model.NewSong(fields, time.Now())
//	stream, _ := song.FetchStream(ctx, client)   // full MP3 in memory
//	img, _ := song.FetchArtwork(ctx, client)     // decoded cover image
//	path, _ := song.Download(ctx, client, dir)   // MP3 written to disk
//
// # Catalog
//
// Catalog aggregates one full site extraction: a master list of unique
// songs (first occurrence wins across channels) and one ordered playlist
// of titles per channel:
//
//	song, err := catalog.SongByTitle("Jazz Comedy")
//	titles, err := catalog.Playlist("Jazz")
//
// Lookups return ErrNotFound for unknown titles, indexes and channels.
//
// # Channel
//
// Channel is a navigation category (name plus listing URL). Channels are
// carried in slices, never maps, because discovery order is meaningful:
// it decides which duplicate of a title enters the master list.
package model
