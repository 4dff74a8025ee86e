// Package config provides configuration management for bensound-downloader.
//
// This package handles:
//   - Loading and saving settings from TOML files
//   - Default configuration values
//   - Conversion to TagConfig and PlaylistFormat for other packages
//
// # Default Settings
//
// Use DefaultSettings() to get sensible defaults:
//
//	settings := config.DefaultSettings()
//	// Scrapes www.bensound.com with a 30s request timeout
//	// Downloads to ~/Music/Bensound/{channel}
//	// ID3 tagging with embedded cover art enabled
//
// # Loading from File
//
// The settings file lives at ~/.config/bensound-dl/config.toml by default:
//
//	settings, err := config.Load(config.ConfigPath())
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//
// # Saving Settings
//
//	settings.DownloadsPath = "/custom/path/{channel}"
//	err := settings.Save(config.ConfigPath())
//
// # Configuration Options
//
// Settings includes options for:
//   - Site base URL, User-Agent and request timeout
//   - Download path templating and concurrency limits
//   - Skipping purchase-only songs
//   - Cover art handling and ID3 tag modification
//   - Playlist generation
//   - Log level and format
package config
