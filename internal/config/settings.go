package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/velvetear/bensound-downloader/internal/audio"
	ioutils "github.com/velvetear/bensound-downloader/internal/io"
)

// Settings holds all configuration options.
type Settings struct {
	// Scraping settings
	BaseURL               string `toml:"base_url"`
	UserAgent             string `toml:"user_agent"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`

	// Download settings. DownloadsPath may contain a {channel} placeholder
	// that is replaced with the sanitized channel name per download.
	DownloadsPath          string `toml:"downloads_path"`
	MaxConcurrentDownloads int    `toml:"max_concurrent_downloads"`
	SkipPurchaseOnly       bool   `toml:"skip_purchase_only"`

	// Tag settings
	TagFiles             bool   `toml:"tag_files"`
	TagArtist            string `toml:"tag_artist"`
	SaveCoverArtInTags   bool   `toml:"save_cover_art_in_tags"`
	CoverArtMaxSize      int    `toml:"cover_art_max_size"`
	ConvertCoverArtToJPG bool   `toml:"convert_cover_art_to_jpg"`

	// Playlist settings
	CreatePlaylist bool   `toml:"create_playlist"`
	PlaylistFormat string `toml:"playlist_format"` // m3u, pls, wpl, zpl
	M3UExtended    bool   `toml:"m3u_extended"`

	// Logging settings
	LogLevel  string `toml:"log_level"`  // trace, debug, info, warn, error
	LogFormat string `toml:"log_format"` // console, json
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	homeDir, _ := os.UserHomeDir()
	return &Settings{
		BaseURL:               "https://www.bensound.com/",
		UserAgent:             "bensound-downloader",
		RequestTimeoutSeconds: 30,

		DownloadsPath:          filepath.Join(homeDir, "Music", "Bensound", "{channel}"),
		MaxConcurrentDownloads: 4,
		SkipPurchaseOnly:       false,

		TagFiles:             true,
		TagArtist:            "Bensound",
		SaveCoverArtInTags:   true,
		CoverArtMaxSize:      1000,
		ConvertCoverArtToJPG: true,

		CreatePlaylist: false,
		PlaylistFormat: "m3u",
		M3UExtended:    true,

		LogLevel:  "info",
		LogFormat: "console",
	}
}

// ConfigPath returns the default location of the settings file.
func ConfigPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "bensound-dl", "config.toml")
}

// Load reads settings from a TOML file.
//
// A missing file is not an error; defaults are returned so a fresh
// install works without any configuration step.
func Load(path string) (*Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// Save writes settings to a TOML file, creating parent directories as needed.
func (s *Settings) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(s); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// RequestTimeout returns the configured request timeout as a duration.
// Non-positive values fall back to the HTTP client's default.
func (s *Settings) RequestTimeout() time.Duration {
	return time.Duration(s.RequestTimeoutSeconds) * time.Second
}

// ResolveDownloadsPath returns the download directory for a channel,
// with the {channel} placeholder replaced by the sanitized channel name.
func (s *Settings) ResolveDownloadsPath(channel string) string {
	return strings.ReplaceAll(s.DownloadsPath, "{channel}", ioutils.SanitizeFileName(channel))
}

// ToTagConfig converts settings to an audio.TagConfig.
func (s *Settings) ToTagConfig() *audio.TagConfig {
	cfg := audio.DefaultTagConfig()
	cfg.ModifyTags = s.TagFiles
	cfg.ArtistName = s.TagArtist
	return cfg
}

// ToPlaylistFormat maps the configured format name to an audio.PlaylistFormat.
// Unknown names fall back to M3U.
func (s *Settings) ToPlaylistFormat() audio.PlaylistFormat {
	switch s.PlaylistFormat {
	case "pls":
		return audio.FormatPLS
	case "wpl":
		return audio.FormatWPL
	case "zpl":
		return audio.FormatZPL
	default:
		return audio.FormatM3U
	}
}
