// Package bensound scrapes the bensound.com catalog: the channel list
// from the site navigation and the songs from each channel's paginated
// listing pages.
//
// The package handles three operations:
//
//  1. Discovering channels from the navigation menu (minus the "All" entry)
//  2. Traversing one channel's pages with a cycle-safe worklist
//  3. Aggregating every channel into a deduplicated catalog snapshot
//
// # Channel Discovery
//
//	client := bensound.New(bensound.Config{})
//	channels, err := client.DiscoverChannels(ctx)
//	for _, ch := range channels {
//	    fmt.Println(ch.Name, ch.URL)
//	}
//
// # One Channel
//
//	songs, report, err := client.ChannelSongs(ctx, "Jazz")
//	fmt.Printf("%d songs, %d pages skipped\n", len(songs), len(report.PageErrors))
//
// # Full Extraction
//
//	catalog, err := client.ExtractAll(ctx)
//	song, err := catalog.SongByTitle("Jazz Comedy")
//
// # Failure Handling
//
// Pages that cannot be fetched and song blocks missing a required field
// do not abort a traversal. They are skipped, logged, and aggregated in
// the Report so callers can see exactly what was left out. Catalog
// lookups on missing entries return model.ErrNotFound.
//
// # Site Markup
//
// bensound serves server-rendered HTML. Each listing page carries a
// div.bloc_cat container with one div.bloc_produit block per song; the
// license text sits in a div.pop_license popup as up to three optional
// fragments. Relative image and audio paths are resolved against the
// site base by concatenation, matching how the pages are written.
package bensound
