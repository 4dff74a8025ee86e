package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/velvetear/bensound-downloader/internal/bensound"
	"github.com/velvetear/bensound-downloader/internal/config"
	"github.com/velvetear/bensound-downloader/internal/download"
	"github.com/velvetear/bensound-downloader/internal/http"
	"github.com/velvetear/bensound-downloader/internal/logging"
	"github.com/velvetear/bensound-downloader/internal/model"
)

func main() {
	// Command line flags
	var (
		listChannelsFlag = flag.Bool("list-channels", false, "List the channels discovered from the site navigation")
		listSongsFlag    = flag.String("list-songs", "", "List the songs of one channel")
		songFlag         = flag.String("song", "", "Show the details of one song by title (triggers a full extraction)")
		downloadFlag     = flag.Bool("download", false, "Download songs")
		channelsFlag     = flag.String("channels", "all", "Channels to download: \"all\" or a comma-separated list")
		exportFlag       = flag.String("export", "", "Write the extracted catalog as JSON to the given file")
		outputFlag       = flag.String("output", "", "Output directory (overrides config)")
		configFlag       = flag.String("config", "", "Path to config file")
		playlistFlag     = flag.Bool("playlist", false, "Create a playlist file per channel")
		noTagFlag        = flag.Bool("no-tag", false, "Skip ID3 tagging of downloaded files")
		verboseFlag      = flag.Bool("verbose", false, "Show verbose output")
		dryRunFlag       = flag.Bool("dry-run", false, "List what would be downloaded without downloading")
	)

	flag.Parse()

	if !*listChannelsFlag && *listSongsFlag == "" && *songFlag == "" && !*downloadFlag && *exportFlag == "" {
		fmt.Println("Bensound Downloader - Scrape and download royalty-free music from bensound.com")
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Println("  bensound-dl -list-channels")
		fmt.Println("  bensound-dl -list-songs <channel>")
		fmt.Println("  bensound-dl -song <title>")
		fmt.Println("  bensound-dl -download [-channels all|a,b,c] [options]")
		fmt.Println("  bensound-dl -export catalog.json")
		fmt.Println()
		fmt.Println("For interactive mode, use: bensound-tui")
		fmt.Println()
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Load config
	configPath := *configFlag
	if configPath == "" {
		configPath = config.ConfigPath()
	}
	settings, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Apply flags
	if *outputFlag != "" {
		settings.DownloadsPath = *outputFlag + "/{channel}"
	}
	if *playlistFlag {
		settings.CreatePlaylist = true
	}
	if *noTagFlag {
		settings.TagFiles = false
	}
	logLevel := settings.LogLevel
	if *verboseFlag {
		logLevel = "debug"
	}

	// Handle interrupts
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nInterrupted, cancelling...")
		cancel()
	}()

	logger := logging.New(logLevel, settings.LogFormat)
	client := bensound.New(bensound.Config{
		BaseURL: settings.BaseURL,
		HTTP:    http.NewClientWithUserAgent(settings.RequestTimeout(), settings.UserAgent),
		Logger:  &logger,
	})

	switch {
	case *listChannelsFlag:
		listChannels(ctx, client)

	case *listSongsFlag != "":
		listSongs(ctx, client, *listSongsFlag)

	case *songFlag != "":
		showSong(ctx, client, *songFlag)

	case *exportFlag != "" && !*downloadFlag:
		exportCatalog(ctx, client, *exportFlag)

	case *downloadFlag:
		if *exportFlag != "" {
			exportCatalog(ctx, client, *exportFlag)
		}
		downloadChannels(ctx, client, settings, *channelsFlag, *verboseFlag, *dryRunFlag)
	}
}

func listChannels(ctx context.Context, client *bensound.Client) {
	channels, err := client.DiscoverChannels(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error discovering channels: %v\n", err)
		os.Exit(1)
	}

	for _, ch := range channels {
		fmt.Printf("%-20s %s\n", ch.Name, ch.URL)
	}
}

func listSongs(ctx context.Context, client *bensound.Client, channel string) {
	songs, report, err := client.ChannelSongs(ctx, channel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error fetching channel %q: %v\n", channel, err)
		os.Exit(1)
	}

	for _, song := range songs {
		fmt.Printf("%-40s %6s  %s\n", song.Title, song.Length, badges(song))
	}
	if report.Failed() > 0 {
		fmt.Printf("\n%d pages and %d blocks were skipped.\n", len(report.PageErrors), len(report.BlockErrors))
	}
}

func showSong(ctx context.Context, client *bensound.Client, title string) {
	catalog, err := client.ExtractAll(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error extracting catalog: %v\n", err)
		os.Exit(1)
	}

	song, err := catalog.SongByTitle(title)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			fmt.Fprintf(os.Stderr, "Song %q not found in the catalog (%d songs).\n", title, catalog.Len())
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Title:       %s\n", song.Title)
	fmt.Printf("Length:      %s\n", song.Length)
	fmt.Printf("Description: %s\n", song.Description)
	fmt.Printf("Downloadable: %v  Purchasable: %v\n", song.ForDownload, song.ForPurchase)
	fmt.Printf("Page:        %s\n", song.URLMain)
	fmt.Printf("Stream:      %s\n", song.URLMP3)
	if song.ForPurchase {
		fmt.Printf("Purchase:    %s\n", song.URLPurchase)
	}
	fmt.Printf("License:     %s\n", song.License)
	fmt.Printf("Extracted:   %s\n", song.Modified)
}

func exportCatalog(ctx context.Context, client *bensound.Client, path string) {
	catalog, err := client.Catalog()
	if err != nil {
		catalog, err = client.ExtractAll(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error extracting catalog: %v\n", err)
			os.Exit(1)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating %s: %v\n", path, err)
		os.Exit(1)
	}
	defer file.Close()

	if err := catalog.WriteJSON(file); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing catalog: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Exported %d songs to %s\n", catalog.Len(), path)
}

func downloadChannels(ctx context.Context, client *bensound.Client, settings *config.Settings, channelsArg string, verbose, dryRun bool) {
	var names []string
	if channelsArg == "all" || channelsArg == "" {
		channels, err := client.DiscoverChannels(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error discovering channels: %v\n", err)
			os.Exit(1)
		}
		for _, ch := range channels {
			names = append(names, ch.Name)
		}
	} else {
		for _, name := range strings.Split(channelsArg, ",") {
			if name = strings.TrimSpace(name); name != "" {
				names = append(names, name)
			}
		}
	}

	manager := download.NewManager(settings, func(event download.ProgressEvent) {
		if event.Level == download.LevelVerbose && !verbose {
			return
		}

		prefix := "   "
		switch event.Level {
		case download.LevelError:
			prefix = " ✗ "
		case download.LevelWarning:
			prefix = " ! "
		case download.LevelSuccess:
			prefix = " ✓ "
		case download.LevelInfo:
			prefix = " › "
		}

		fmt.Println(prefix + event.Message)
	})

	total := 0
	for _, name := range names {
		songs, report, err := client.ChannelSongs(ctx, name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error fetching channel %q: %v\n", name, err)
			if ctx.Err() != nil {
				os.Exit(130)
			}
			continue
		}
		if report.Failed() > 0 {
			fmt.Printf("Channel %s: %d pages/%d blocks skipped\n", name, len(report.PageErrors), len(report.BlockErrors))
		}

		if dryRun {
			for _, song := range songs {
				fmt.Printf("%-20s %s\n", name, song.Title)
			}
		}
		manager.Queue(name, songs...)
		total += len(songs)
	}

	if dryRun {
		fmt.Printf("\n[Dry run] %d songs across %d channels; nothing downloaded.\n", total, len(names))
		return
	}

	fmt.Printf("\nDownloading %d songs from %d channels...\n\n", manager.Queued(), len(names))
	manager.ComputeTotals(ctx)

	if err := manager.Start(ctx); err != nil {
		if ctx.Err() != nil {
			fmt.Println("\nDownload cancelled.")
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "Error during download: %v\n", err)
		os.Exit(1)
	}

	received, totalBytes, filesReceived, filesTotal := manager.Progress()
	fmt.Println()
	fmt.Printf("Complete! Downloaded %d/%d files (%.2f MB)\n", filesReceived, filesTotal, float64(received)/1024/1024)
	if totalBytes > 0 && received < totalBytes {
		fmt.Printf("  (%.2f MB expected)\n", float64(totalBytes)/1024/1024)
	}
}

func badges(song *model.Song) string {
	var b []string
	if song.ForDownload {
		b = append(b, "free")
	}
	if song.ForPurchase {
		b = append(b, "license")
	}
	return strings.Join(b, ",")
}
