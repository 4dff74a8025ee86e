package bensound

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/velvetear/bensound-downloader/internal/http"
	"github.com/velvetear/bensound-downloader/internal/model"
)

// DefaultBaseURL is the public site root. Relative media paths found in
// listing pages are resolved against it.
const DefaultBaseURL = "https://www.bensound.com/"

// Config carries the knobs for a Client. The zero value is usable: it
// scrapes the public site with a default HTTP client, a disabled logger
// and the system clock.
type Config struct {
	// BaseURL overrides the site root, mainly for tests.
	BaseURL string

	// HTTP is the transport used for every page request.
	HTTP *http.Client

	// Logger receives traversal progress and the extraction summary.
	// Nil disables logging.
	Logger *zerolog.Logger

	// Now supplies the extraction timestamp stamped on each song.
	// Nil means time.Now.
	Now func() time.Time
}

// Client walks the bensound.com catalog: channels come from the site
// navigation menu, songs from each channel's paginated listing pages.
//
// A Client fetches pages sequentially and is not safe for concurrent use.
// The asset helpers on model.Song are independent of the Client and may
// run in parallel once a catalog is built.
//
// Example usage:
//
//	client := bensound.New(bensound.Config{})
//	catalog, err := client.ExtractAll(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	song, err := catalog.SongByTitle("Jazz Comedy")
type Client struct {
	http    *http.Client
	baseURL string
	logger  zerolog.Logger
	now     func() time.Time

	channels []model.Channel
	catalog  *model.Catalog
	report   *Report
}

// New creates a catalog client from cfg, applying defaults for any
// field left unset.
func New(cfg Config) *Client {
	c := &Client{
		http:    cfg.HTTP,
		baseURL: cfg.BaseURL,
		logger:  zerolog.Nop(),
		now:     cfg.Now,
	}
	if c.http == nil {
		c.http = http.NewClient(0)
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if cfg.Logger != nil {
		c.logger = *cfg.Logger
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// DiscoverChannels fetches the site root and extracts the channel list
// from the navigation menu, skipping the aggregating "All" entry.
//
// The discovered list fully replaces any previous one and is returned in
// menu order. A page without the menu fails with a ParseError.
func (c *Client) DiscoverChannels(ctx context.Context) ([]model.Channel, error) {
	doc, err := c.http.GetDocument(ctx, c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("fetch site root: %w", err)
	}

	channels, perr := parseChannels(doc, c.baseURL)
	if perr != nil {
		return nil, perr
	}

	c.channels = channels
	c.logger.Debug().Int("channels", len(channels)).Msg("discovered channels")
	return channels, nil
}

// Channels returns the channel list from the latest discovery, in the
// order the navigation menu presents them. Empty before discovery.
func (c *Client) Channels() []model.Channel {
	return c.channels
}

// Channel looks up a discovered channel by display name.
func (c *Client) Channel(name string) (model.Channel, error) {
	for _, ch := range c.channels {
		if ch.Name == name {
			return ch, nil
		}
	}
	return model.Channel{}, fmt.Errorf("channel %q: %w", name, model.ErrNotFound)
}

// ChannelSongs fetches every listing page of one channel and returns its
// songs in page-visit order, blocks in page order.
//
// The traversal keeps a worklist seeded with the channel URL. Pagination
// links found on each page join the back of the worklist unless already
// fetched or queued, so pages that link back to each other are visited
// exactly once. Unreachable pages and malformed song blocks never stop
// the traversal; they are recorded in the returned Report.
//
// Channels are discovered first when no discovery has run yet. An unknown
// channel name fails with model.ErrNotFound.
func (c *Client) ChannelSongs(ctx context.Context, channel string) ([]*model.Song, *Report, error) {
	if len(c.channels) == 0 {
		if _, err := c.DiscoverChannels(ctx); err != nil {
			return nil, nil, err
		}
	}
	ch, err := c.Channel(channel)
	if err != nil {
		return nil, nil, err
	}

	var (
		songs    []*model.Song
		report   = &Report{}
		worklist = []string{ch.URL}
		fetched  = map[string]bool{}
		queued   = map[string]bool{ch.URL: true}
	)
	for len(worklist) > 0 {
		pageURL := worklist[0]
		worklist = worklist[1:]
		fetched[pageURL] = true
		report.Pages = append(report.Pages, pageURL)

		doc, err := c.http.GetDocument(ctx, pageURL)
		if err != nil {
			if ctx.Err() != nil {
				return nil, nil, ctx.Err()
			}
			report.PageErrors = append(report.PageErrors, &PageError{URL: pageURL, Err: err})
			c.logger.Warn().Str("page", pageURL).Err(err).Msg("skipping unreachable page")
			continue
		}

		for _, link := range parsePagination(doc, c.baseURL) {
			if fetched[link] || queued[link] {
				continue
			}
			queued[link] = true
			worklist = append(worklist, link)
		}

		pageSongs, skipped, perr := parseListing(doc, pageURL, c.baseURL, c.now())
		if perr != nil {
			report.PageErrors = append(report.PageErrors, &PageError{URL: pageURL, Err: perr})
			c.logger.Warn().Str("page", pageURL).Err(perr).Msg("page has no song listing")
			continue
		}
		for _, pe := range skipped {
			c.logger.Warn().
				Str("page", pe.Page).
				Int("block", pe.Block).
				Str("field", pe.Field).
				Msg("skipping malformed song block")
		}
		report.BlockErrors = append(report.BlockErrors, skipped...)
		songs = append(songs, pageSongs...)
	}

	c.logger.Debug().
		Str("channel", channel).
		Int("pages", len(report.Pages)).
		Int("songs", len(songs)).
		Int("skipped", report.Failed()).
		Msg("channel traversal complete")

	return songs, report, nil
}

// ExtractAll traverses every channel and rebuilds the catalog snapshot,
// replacing the previous one wholesale. Channel discovery runs first if
// it has not run yet.
//
// Duplicate titles across channels collapse onto the record from their
// first occurrence; later channels still list the title in their own
// playlist. The summary (channel count, unique song count, skipped pages
// and blocks) is written to the configured logger.
func (c *Client) ExtractAll(ctx context.Context) (*model.Catalog, error) {
	if len(c.channels) == 0 {
		if _, err := c.DiscoverChannels(ctx); err != nil {
			return nil, err
		}
	}

	catalog := model.NewCatalog()
	report := &Report{}
	for _, ch := range c.channels {
		catalog.AddChannel(ch.Name)
		songs, chReport, err := c.ChannelSongs(ctx, ch.Name)
		if err != nil {
			return nil, fmt.Errorf("channel %q: %w", ch.Name, err)
		}
		for _, song := range songs {
			catalog.Add(ch.Name, song)
		}
		report.merge(chReport)
	}

	c.catalog = catalog
	c.report = report
	c.logger.Info().
		Strs("channels", lo.Map(c.channels, func(ch model.Channel, _ int) string { return ch.Name })).
		Int("channel_count", len(c.channels)).
		Int("unique_songs", catalog.Len()).
		Int("pages", len(report.Pages)).
		Int("skipped", report.Failed()).
		Msg("catalog extracted")

	return catalog, nil
}

// Catalog returns the snapshot built by the most recent ExtractAll.
// Before the first extraction it fails with model.ErrNotFound.
func (c *Client) Catalog() (*model.Catalog, error) {
	if c.catalog == nil {
		return nil, fmt.Errorf("catalog snapshot: %w", model.ErrNotFound)
	}
	return c.catalog, nil
}

// LastReport returns the merged traversal report from the most recent
// ExtractAll, or nil before the first extraction.
func (c *Client) LastReport() *Report {
	return c.report
}
