// Package http provides an HTTP client configured for scraping bensound.com.
//
// The Client in this package handles:
//   - User-Agent headers
//   - Configurable request timeouts, surfaced as fetch failures
//   - Page fetching into parsed goquery documents
//   - File downloads with progress tracking
//   - File size retrieval via HEAD requests
//
// # Basic Usage
//
//	client := http.NewClient(15 * time.Second)
//
//	// Fetch a listing page ready for selector queries
//	doc, err := client.GetDocument(ctx, "https://www.bensound.com/royalty-free-music")
//
//	// Download file with progress callback
//	client.DownloadFile(ctx, mp3URL, "/path/to/file.mp3", func(written, total int64) {
//	    fmt.Printf("%.1f%%\n", float64(written)/float64(total)*100)
//	})
//
// Responses with a status other than 200 OK fail with an error wrapping
// ErrBadStatus. Nothing in this package retries.
//
// # Progress Tracking
//
// The ProgressWriter type can be used to wrap any io.Writer for progress tracking:
//
//	pw := &http.ProgressWriter{
//	    Writer:   file,
//	    Total:    contentLength,
//	    OnUpdate: func(written, total int64) { /* update UI */ },
//	}
package http
