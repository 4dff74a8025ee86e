package download

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/velvetear/bensound-downloader/internal/audio"
	"github.com/velvetear/bensound-downloader/internal/config"
	"github.com/velvetear/bensound-downloader/internal/http"
	ioutils "github.com/velvetear/bensound-downloader/internal/io"
	"github.com/velvetear/bensound-downloader/internal/model"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a download progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// queuedSong is one song scheduled for download, with its destination
// already resolved from the channel path template.
type queuedSong struct {
	song    *model.Song
	channel string
	dir     string
	path    string
}

// Manager coordinates song downloads.
//
// Songs are registered per channel with Queue, sized with ComputeTotals
// and fetched with Start. A failed song is reported through the progress
// callback and never aborts the rest of the queue; there are no retries.
type Manager struct {
	settings     *config.Settings
	httpClient   *http.Client
	tagger       *audio.Tagger
	playlist     *audio.PlaylistCreator
	imageService *ioutils.ImageService

	mu    sync.Mutex
	queue []*queuedSong

	totalBytes      int64
	receivedBytes   int64
	totalFiles      int32
	downloadedFiles int32

	onProgress func(ProgressEvent)
}

// NewManager creates a new download Manager.
func NewManager(settings *config.Settings, onProgress func(ProgressEvent)) *Manager {
	return &Manager{
		settings:     settings,
		httpClient:   http.NewClientWithUserAgent(settings.RequestTimeout(), settings.UserAgent),
		tagger:       audio.NewTagger(settings.ToTagConfig()),
		playlist:     audio.NewPlaylistCreator(settings.ToPlaylistFormat(), settings.M3UExtended),
		imageService: ioutils.NewImageService(),
		onProgress:   onProgress,
	}
}

// Queue registers songs of one channel for download.
//
// The destination directory comes from the settings path template with
// {channel} resolved to the sanitized channel name. Purchase-only songs
// are skipped when the settings say so.
func (m *Manager) Queue(channel string, songs ...*model.Song) {
	dir := m.settings.ResolveDownloadsPath(channel)

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, song := range songs {
		if m.settings.SkipPurchaseOnly && song.ForPurchase && !song.ForDownload {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Skipping purchase-only: %s", song.Title), Level: LevelVerbose})
			continue
		}
		m.queue = append(m.queue, &queuedSong{
			song:    song,
			channel: channel,
			dir:     dir,
			path:    filepath.Join(dir, song.FileName()),
		})
	}
}

// Queued returns the number of songs currently scheduled for download.
func (m *Manager) Queued() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// ComputeTotals sizes the queue via HEAD requests so progress can be
// reported against a known denominator. Songs whose size cannot be
// determined still count as files, just with unknown bytes.
func (m *Manager) ComputeTotals(ctx context.Context) {
	m.mu.Lock()
	queue := m.queue
	m.mu.Unlock()

	for _, q := range queue {
		atomic.AddInt32(&m.totalFiles, 1)
		size, err := m.httpClient.GetFileSize(ctx, q.song.URLMP3)
		if err == nil {
			atomic.AddInt64(&m.totalBytes, size)
		}
	}
}

// Start downloads every queued song, at most MaxConcurrentDownloads at a
// time, then writes one playlist per channel when enabled.
//
// A song that fails to download or tag is reported and skipped; Start
// only returns an error when the context is cancelled.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	queue := m.queue
	m.mu.Unlock()

	limit := m.settings.MaxConcurrentDownloads
	if limit < 1 {
		limit = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for _, q := range queue {
		q := q
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := m.downloadSong(ctx, q); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				m.progress(ProgressEvent{Message: fmt.Sprintf("Error downloading %s: %v", q.song.Title, err), Level: LevelError})
				return nil // Continue with other songs
			}
			atomic.AddInt32(&m.downloadedFiles, 1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	if m.settings.CreatePlaylist {
		m.writePlaylists(ctx, queue)
	}

	m.progress(ProgressEvent{
		Message: fmt.Sprintf("Finished: %d/%d songs downloaded", atomic.LoadInt32(&m.downloadedFiles), atomic.LoadInt32(&m.totalFiles)),
		Level:   LevelSuccess,
	})
	return nil
}

// Progress returns the current download progress.
func (m *Manager) Progress() (received, total int64, filesReceived, filesTotal int32) {
	return atomic.LoadInt64(&m.receivedBytes), atomic.LoadInt64(&m.totalBytes),
		atomic.LoadInt32(&m.downloadedFiles), atomic.LoadInt32(&m.totalFiles)
}

func (m *Manager) downloadSong(ctx context.Context, q *queuedSong) error {
	if err := ioutils.EnsureDir(q.dir); err != nil {
		return fmt.Errorf("create directory %s: %w", q.dir, err)
	}

	var prev int64
	err := m.httpClient.DownloadFile(ctx, q.song.URLMP3, q.path, func(written, total int64) {
		atomic.AddInt64(&m.receivedBytes, written-prev)
		prev = written
	})
	if err != nil {
		return err
	}

	if m.settings.TagFiles {
		var artwork []byte
		if m.settings.SaveCoverArtInTags {
			artwork = m.fetchArtwork(ctx, q.song)
		}
		if err := m.tagger.SaveTags(q.path, q.song, q.channel, artwork); err != nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error tagging %s: %v", q.song.Title, err), Level: LevelWarning})
		}
	}

	m.progress(ProgressEvent{Message: fmt.Sprintf("Downloaded: %s", filepath.Base(q.path)), Level: LevelVerbose})
	return nil
}

// fetchArtwork fetches and prepares a song's cover thumbnail for ID3
// embedding. Artwork is best effort: any failure just means an untagged
// cover, reported as a warning.
func (m *Manager) fetchArtwork(ctx context.Context, song *model.Song) []byte {
	artwork, err := m.httpClient.DownloadBytes(ctx, song.URLImage)
	if err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error fetching artwork for %s: %v", song.Title, err), Level: LevelWarning})
		return nil
	}

	if m.settings.CoverArtMaxSize > 0 {
		if resized, err := m.imageService.ResizeImage(ctx, artwork, m.settings.CoverArtMaxSize, m.settings.CoverArtMaxSize); err == nil {
			artwork = resized
		}
	}
	if m.settings.ConvertCoverArtToJPG {
		if converted, err := m.imageService.ConvertToJPEG(ctx, artwork); err == nil {
			artwork = converted
		}
	}
	return artwork
}

// writePlaylists emits one playlist file per channel, next to the
// channel's downloaded songs, in queue order.
func (m *Manager) writePlaylists(ctx context.Context, queue []*queuedSong) {
	var channels []string
	byChannel := make(map[string][]*queuedSong)
	for _, q := range queue {
		if _, ok := byChannel[q.channel]; !ok {
			channels = append(channels, q.channel)
		}
		byChannel[q.channel] = append(byChannel[q.channel], q)
	}

	for _, channel := range channels {
		songs := byChannel[channel]
		entries := lo.Map(songs, func(q *queuedSong, _ int) audio.Entry {
			return audio.Entry{
				Title:   q.song.Title,
				File:    filepath.Base(q.path),
				Seconds: q.song.Seconds(),
			}
		})

		content := m.playlist.CreatePlaylist(channel, entries)
		name := ioutils.SanitizeFileName(channel) + m.settings.ToPlaylistFormat().Ext()
		path := filepath.Join(songs[0].dir, name)
		if err := ioutils.WriteFile(ctx, path, []byte(content)); err != nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error creating playlist for %s: %v", channel, err), Level: LevelWarning})
			continue
		}
		m.progress(ProgressEvent{Message: fmt.Sprintf("Created playlist for %s", channel), Level: LevelSuccess})
	}
}

func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress != nil {
		m.onProgress(event)
	}
}
