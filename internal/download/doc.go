// Package download provides the download orchestration logic for
// fetching songs scraped from bensound.
//
// # Manager
//
// The Manager coordinates the entire download process:
//
//  1. Queue songs per channel (destination from the path template)
//  2. Size the queue via HEAD requests
//  3. Download MP3s concurrently, at most MaxConcurrentDownloads at once
//  4. Tag files with ID3 metadata, embedding cover art
//  5. Generate one playlist per channel (optional)
//
// # Basic Usage
//
//	manager := download.NewManager(settings, func(event download.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//
//	manager.Queue("Jazz", songs...)
//	manager.ComputeTotals(ctx)
//
//	if err := manager.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Concurrency
//
// Page scraping stays sequential in the catalog client; only the song
// downloads run in parallel. Each song's asset fetches depend solely on
// the song's own fields and write to distinct paths, so a bounded worker
// group is safe.
//
// # Failure Policy
//
// There are no retries. A song that cannot be downloaded is reported via
// the progress callback and the rest of the queue continues; Start fails
// only on context cancellation.
//
// # Progress Tracking
//
// Progress is reported via a callback function that receives ProgressEvent:
//
//	type ProgressEvent struct {
//	    Message string
//	    Level   ProgressLevel // Info, Verbose, Warning, Error, Success
//	}
//
// Byte and file counters are also available from Progress() for polling UIs.
package download
