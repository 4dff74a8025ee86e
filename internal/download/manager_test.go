package download

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/velvetear/bensound-downloader/internal/config"
	"github.com/velvetear/bensound-downloader/internal/model"
)

// testSettings returns settings pointed at a temp dir with tagging and
// playlists off, so tests exercise only the download path they care about.
func testSettings(t *testing.T) *config.Settings {
	t.Helper()
	settings := config.DefaultSettings()
	settings.DownloadsPath = filepath.Join(t.TempDir(), "{channel}")
	settings.MaxConcurrentDownloads = 2
	settings.TagFiles = false
	settings.CreatePlaylist = false
	return settings
}

func serveMP3s(t *testing.T, bodies map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := bodies[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestManager_StartDownloadsQueue(t *testing.T) {
	srv := serveMP3s(t, map[string]string{
		"/music/bensound-jazzcomedy.mp3": "jazz comedy bytes",
		"/music/bensound-funnysong.mp3":  "funny song bytes",
	})

	songs := []*model.Song{
		{Title: "Jazz Comedy", Length: "2:44", URLMP3: srv.URL + "/music/bensound-jazzcomedy.mp3"},
		{Title: "Funny Song", Length: "3:07", URLMP3: srv.URL + "/music/bensound-funnysong.mp3"},
	}

	settings := testSettings(t)
	var mu sync.Mutex
	var events []ProgressEvent
	manager := NewManager(settings, func(e ProgressEvent) {
		mu.Lock()
		events = append(events, e)
		mu.Unlock()
	})

	manager.Queue("Jazz", songs...)
	if manager.Queued() != 2 {
		t.Fatalf("Queued() = %d, want 2", manager.Queued())
	}

	ctx := context.Background()
	manager.ComputeTotals(ctx)
	if err := manager.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	dir := settings.ResolveDownloadsPath("Jazz")
	for file, want := range map[string]string{
		"bensound-jazzcomedy.mp3": "jazz comedy bytes",
		"bensound-funnysong.mp3":  "funny song bytes",
	} {
		got, err := os.ReadFile(filepath.Join(dir, file))
		if err != nil {
			t.Fatalf("reading %s: %v", file, err)
		}
		if string(got) != want {
			t.Errorf("%s bytes = %q, want %q", file, got, want)
		}
	}

	received, total, files, totalFiles := manager.Progress()
	if files != 2 || totalFiles != 2 {
		t.Errorf("Progress() files = %d/%d, want 2/2", files, totalFiles)
	}
	if received == 0 || total == 0 {
		t.Errorf("Progress() bytes = %d/%d, want non-zero", received, total)
	}
}

func TestManager_FailedSongDoesNotAbort(t *testing.T) {
	srv := serveMP3s(t, map[string]string{
		"/ok.mp3": "ok bytes",
		// /gone.mp3 is intentionally absent
	})

	settings := testSettings(t)
	var mu sync.Mutex
	var errored bool
	manager := NewManager(settings, func(e ProgressEvent) {
		mu.Lock()
		if e.Level == LevelError {
			errored = true
		}
		mu.Unlock()
	})

	manager.Queue("Jazz",
		&model.Song{Title: "Gone", URLMP3: srv.URL + "/gone.mp3"},
		&model.Song{Title: "OK", URLMP3: srv.URL + "/ok.mp3"},
	)

	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v, want nil despite a failed song", err)
	}

	if !errored {
		t.Error("expected an error-level progress event for the missing song")
	}
	if _, err := os.Stat(filepath.Join(settings.ResolveDownloadsPath("Jazz"), "ok.mp3")); err != nil {
		t.Errorf("surviving song missing: %v", err)
	}
}

func TestManager_SkipsPurchaseOnly(t *testing.T) {
	settings := testSettings(t)
	settings.SkipPurchaseOnly = true
	manager := NewManager(settings, nil)

	manager.Queue("Jazz",
		&model.Song{Title: "Buy Me", ForPurchase: true, URLMP3: "https://site/buy.mp3"},
		&model.Song{Title: "Free", ForDownload: true, URLMP3: "https://site/free.mp3"},
	)

	if manager.Queued() != 1 {
		t.Errorf("Queued() = %d, want 1 (purchase-only skipped)", manager.Queued())
	}
}

func TestManager_WritesChannelPlaylist(t *testing.T) {
	srv := serveMP3s(t, map[string]string{
		"/a.mp3": "aaa",
		"/b.mp3": "bbb",
	})

	settings := testSettings(t)
	settings.CreatePlaylist = true
	settings.PlaylistFormat = "m3u"
	settings.M3UExtended = true

	manager := NewManager(settings, nil)
	manager.Queue("Jazz",
		&model.Song{Title: "Song A", Length: "1:30", URLMP3: srv.URL + "/a.mp3"},
		&model.Song{Title: "Song B", Length: "2:00", URLMP3: srv.URL + "/b.mp3"},
	)

	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	playlist, err := os.ReadFile(filepath.Join(settings.ResolveDownloadsPath("Jazz"), "Jazz.m3u"))
	if err != nil {
		t.Fatalf("reading playlist: %v", err)
	}

	content := string(playlist)
	for _, fragment := range []string{"#EXTM3U", "#EXTINF:90,Song A", "a.mp3", "b.mp3"} {
		if !strings.Contains(content, fragment) {
			t.Errorf("playlist missing %q:\n%s", fragment, content)
		}
	}
}
