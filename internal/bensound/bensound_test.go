package bensound

import (
	"context"
	"errors"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	httpclient "github.com/velvetear/bensound-downloader/internal/http"
	"github.com/velvetear/bensound-downloader/internal/model"
)

var fixedNow = time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)

// blockSpec describes one song block of fixture HTML.
type blockSpec struct {
	title    string
	length   string
	desc     string
	slug     string
	download bool
	purchase bool
	license  string // inner HTML of the pop_license popup, "" for none
	noTitle  bool   // omit the title element to provoke a block failure
}

func blockHTML(b blockSpec) string {
	var sb strings.Builder
	sb.WriteString(`<div class="bloc_produit">`)
	if !b.noTitle {
		sb.WriteString(`<div class="titre"><p>` + b.title + `</p></div>`)
	}
	sb.WriteString(`<p class="totime">` + b.length + `</p>`)
	sb.WriteString(`<div class="description">` + b.desc + `</div>`)
	sb.WriteString(`<div class="img_mini"><a href="royalty-free-music/track/` + b.slug + `"><img src="bensound-img/` + b.slug + `.jpg"/></a></div>`)
	sb.WriteString(`<audio src="bensound-music/bensound-` + b.slug + `.mp3"></audio>`)
	if b.download {
		sb.WriteString(`<div class="bouton_download">whatever label</div>`)
	}
	if b.purchase {
		sb.WriteString(`<div class="bouton_purchase">BUY A LICENSE</div>`)
	}
	if b.license != "" {
		sb.WriteString(`<div class="pop_license">` + b.license + `</div>`)
	}
	sb.WriteString(`</div>`)
	return sb.String()
}

func listingPage(pagination []string, blocks ...blockSpec) string {
	var sb strings.Builder
	sb.WriteString(`<html><body><div class="bloc_cat">`)
	for _, b := range blocks {
		sb.WriteString(blockHTML(b))
	}
	sb.WriteString(`</div>`)
	if len(pagination) > 0 {
		sb.WriteString(`<div class="pagenavi">`)
		for _, href := range pagination {
			sb.WriteString(`<a class="page" href="` + href + `">page</a>`)
		}
		sb.WriteString(`</div>`)
	}
	sb.WriteString(`</body></html>`)
	return sb.String()
}

func rootPage(channels map[string]string) string {
	var sb strings.Builder
	sb.WriteString(`<html><body><div id="menu">`)
	sb.WriteString(`<a href="royalty-free-music">All</a>`)
	for name, href := range channels {
		sb.WriteString(`<a href="` + href + `">` + name + `</a>`)
	}
	sb.WriteString(`</div></body></html>`)
	return sb.String()
}

// fixtureSite serves canned pages and counts how often each is fetched.
type fixtureSite struct {
	mu    sync.Mutex
	pages map[string]string
	fails map[string]bool
	hits  map[string]int

	server *httptest.Server
}

func newFixtureSite(t *testing.T, pages map[string]string) *fixtureSite {
	t.Helper()
	site := &fixtureSite{
		pages: pages,
		fails: map[string]bool{},
		hits:  map[string]int{},
	}
	site.server = httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		site.mu.Lock()
		site.hits[r.URL.Path]++
		failed := site.fails[r.URL.Path]
		page, ok := site.pages[r.URL.Path]
		site.mu.Unlock()

		if failed {
			nethttp.Error(w, "boom", nethttp.StatusInternalServerError)
			return
		}
		if !ok {
			nethttp.NotFound(w, r)
			return
		}
		w.Write([]byte(page))
	}))
	t.Cleanup(site.server.Close)
	return site
}

func (s *fixtureSite) hitCount(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

func (s *fixtureSite) client() *Client {
	return New(Config{
		BaseURL: s.server.URL + "/",
		HTTP:    httpclient.NewClient(5 * time.Second),
		Now:     func() time.Time { return fixedNow },
	})
}

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parsing fixture HTML: %v", err)
	}
	return doc
}

func TestAbsoluteURL(t *testing.T) {
	tests := []struct {
		base string
		ref  string
		want string
	}{
		{"https://site/", "bensound-img/a.jpg", "https://site/bensound-img/a.jpg"},
		{"https://site", "bensound-img/a.jpg", "https://site/bensound-img/a.jpg"},
		{"https://site/", "/bensound-img/a.jpg", "https://site/bensound-img/a.jpg"},
		{"https://site/", "https://cdn/b.mp3", "https://cdn/b.mp3"},
		{"https://site/", "http://cdn/b.mp3", "http://cdn/b.mp3"},
	}

	for _, tt := range tests {
		if got := absoluteURL(tt.base, tt.ref); got != tt.want {
			t.Errorf("absoluteURL(%q, %q) = %q, want %q", tt.base, tt.ref, got, tt.want)
		}
	}
}

func TestParseChannels(t *testing.T) {
	html := `<html><body><div id="menu">` +
		`<a href="royalty-free-music">All</a>` +
		`<a href="royalty-free-music/jazz">Jazz</a>` +
		`<a href="royalty-free-music/rock">Rock</a>` +
		`</div></body></html>`

	channels, perr := parseChannels(parseDoc(t, html), "https://site/")
	if perr != nil {
		t.Fatalf("parseChannels() error = %v", perr)
	}

	if len(channels) != 2 {
		t.Fatalf("got %d channels, want 2 (the All entry is excluded)", len(channels))
	}
	if channels[0].Name != "Jazz" || channels[1].Name != "Rock" {
		t.Errorf("channel order = [%s, %s], want [Jazz, Rock]", channels[0].Name, channels[1].Name)
	}
	if channels[0].URL != "https://site/royalty-free-music/jazz" {
		t.Errorf("channel URL = %q, want resolved against base", channels[0].URL)
	}
}

func TestParseChannels_MissingMenu(t *testing.T) {
	_, perr := parseChannels(parseDoc(t, `<html><body><p>maintenance</p></body></html>`), "https://site/")
	if perr == nil {
		t.Fatal("parseChannels() error = nil, want ParseError for the missing menu")
	}
	if perr.Field != "navigation menu" || perr.Block != -1 {
		t.Errorf("ParseError = %+v, want page-level navigation menu failure", perr)
	}
}

func TestParseListing_Buttons(t *testing.T) {
	tests := []struct {
		name            string
		block           blockSpec
		wantDownload    bool
		wantPurchase    bool
		wantPurchaseURL string
	}{
		{
			name:         "download button present",
			block:        blockSpec{title: "A", length: "1:00", desc: "d", slug: "a", download: true},
			wantDownload: true,
		},
		{
			name:  "no buttons",
			block: blockSpec{title: "B", length: "1:00", desc: "d", slug: "b"},
		},
		{
			name: "purchase button present",
			block: blockSpec{
				title: "C", length: "1:00", desc: "d", slug: "c",
				purchase: true,
				license:  `<a href="https://site/licensing/c">buy</a>`,
			},
			wantPurchase:    true,
			wantPurchaseURL: "https://site/licensing/c",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parseDoc(t, listingPage(nil, tt.block))
			songs, skipped, perr := parseListing(doc, "https://site/page", "https://site/", fixedNow)
			if perr != nil {
				t.Fatalf("parseListing() page error = %v", perr)
			}
			if len(skipped) != 0 {
				t.Fatalf("parseListing() skipped %d blocks, want 0", len(skipped))
			}
			if len(songs) != 1 {
				t.Fatalf("parseListing() returned %d songs, want 1", len(songs))
			}

			song := songs[0]
			if song.ForDownload != tt.wantDownload {
				t.Errorf("ForDownload = %v, want %v", song.ForDownload, tt.wantDownload)
			}
			if song.ForPurchase != tt.wantPurchase {
				t.Errorf("ForPurchase = %v, want %v", song.ForPurchase, tt.wantPurchase)
			}
			if song.URLPurchase != tt.wantPurchaseURL {
				t.Errorf("URLPurchase = %q, want %q", song.URLPurchase, tt.wantPurchaseURL)
			}
		})
	}
}

func TestParseListing_MediaURLsResolved(t *testing.T) {
	doc := parseDoc(t, listingPage(nil, blockSpec{title: "A", length: "2:44", desc: "d", slug: "jazzcomedy"}))
	songs, _, perr := parseListing(doc, "https://site/page", "https://site/", fixedNow)
	if perr != nil || len(songs) != 1 {
		t.Fatalf("parseListing() songs=%d perr=%v", len(songs), perr)
	}

	song := songs[0]
	if song.URLImage != "https://site/bensound-img/jazzcomedy.jpg" {
		t.Errorf("URLImage = %q, want base-resolved path", song.URLImage)
	}
	if song.URLMP3 != "https://site/bensound-music/bensound-jazzcomedy.mp3" {
		t.Errorf("URLMP3 = %q, want base-resolved path", song.URLMP3)
	}
	if song.URLMain != "royalty-free-music/track/jazzcomedy" {
		t.Errorf("URLMain = %q, want as written in the document", song.URLMain)
	}
	if song.Modified != "2024-03-09" {
		t.Errorf("Modified = %q, want the injected clock's date", song.Modified)
	}
}

func TestParseListing_MalformedBlockSkipped(t *testing.T) {
	doc := parseDoc(t, listingPage(nil,
		blockSpec{noTitle: true, length: "1:00", desc: "broken", slug: "x"},
		blockSpec{title: "Survivor", length: "2:00", desc: "fine", slug: "y"},
	))

	songs, skipped, perr := parseListing(doc, "https://site/page", "https://site/", fixedNow)
	if perr != nil {
		t.Fatalf("parseListing() page error = %v", perr)
	}
	if len(skipped) != 1 {
		t.Fatalf("skipped %d blocks, want 1", len(skipped))
	}
	if skipped[0].Field != "title" || skipped[0].Block != 0 || skipped[0].Page != "https://site/page" {
		t.Errorf("ParseError = %+v, want title failure at block 0", skipped[0])
	}
	if len(songs) != 1 || songs[0].Title != "Survivor" {
		t.Errorf("surviving songs = %v, want just Survivor", len(songs))
	}
}

func TestParseListing_MissingContainer(t *testing.T) {
	_, _, perr := parseListing(parseDoc(t, `<html><body><p>no listing here</p></body></html>`), "https://site/page", "https://site/", fixedNow)
	if perr == nil {
		t.Fatal("parseListing() error = nil, want page-level ParseError")
	}
	if perr.Field != "song listing" || perr.Block != -1 {
		t.Errorf("ParseError = %+v, want page-level song listing failure", perr)
	}
}

func TestParseLicense(t *testing.T) {
	tests := []struct {
		name    string
		license string
		want    string
	}{
		{"no popup", "", "."},
		{"heading only", `<h1>Royalty free</h1>`, "Royalty free.."},
		{
			"heading and paragraph",
			`<h1>License</h1><p>Attribution required</p>`,
			"License. Attribution required..",
		},
		{
			"all three fragments",
			`<h1>License</h1><p>Attribution required</p><span class="nothis">web</span><span class="nothis">youtube</span>`,
			"License. Attribution required. web, youtube.",
		},
		{
			"captions only",
			`<span class="nothis">web</span><span class="nothis">youtube</span>`,
			"web, youtube.",
		},
		{
			"non-breaking spaces normalized",
			"<h1>Royalty free</h1>",
			"Royalty free..",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parseDoc(t, listingPage(nil, blockSpec{title: "T", length: "1:00", desc: "d", slug: "t", license: tt.license}))
			block := doc.Find(selectorBlocks).First()
			if got := parseLicense(block); got != tt.want {
				t.Errorf("parseLicense() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDiscoverChannels(t *testing.T) {
	site := newFixtureSite(t, map[string]string{
		"/": rootPage(map[string]string{"Jazz": "royalty-free-music/jazz"}),
	})
	client := site.client()

	channels, err := client.DiscoverChannels(context.Background())
	if err != nil {
		t.Fatalf("DiscoverChannels() error = %v", err)
	}
	if len(channels) != 1 || channels[0].Name != "Jazz" {
		t.Fatalf("channels = %v, want just Jazz (All excluded)", channels)
	}

	if _, err := client.Channel("Jazz"); err != nil {
		t.Errorf("Channel(\"Jazz\") error = %v", err)
	}
	if _, err := client.Channel("Nope"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("Channel(\"Nope\") error = %v, want ErrNotFound", err)
	}
}

func TestDiscoverChannels_MissingMenu(t *testing.T) {
	site := newFixtureSite(t, map[string]string{
		"/": `<html><body><p>down for maintenance</p></body></html>`,
	})

	_, err := site.client().DiscoverChannels(context.Background())
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("DiscoverChannels() error = %v, want *ParseError", err)
	}
}

func TestChannelSongs_PaginationCycle(t *testing.T) {
	// Pages 1 and 2 link to each other; the traversal must fetch each once.
	site := newFixtureSite(t, map[string]string{
		"/": rootPage(map[string]string{"Rock": "royalty-free-music/rock"}),
		"/royalty-free-music/rock": listingPage(
			[]string{"royalty-free-music/rock/2"},
			blockSpec{title: "First", length: "1:00", desc: "d", slug: "first"},
		),
		"/royalty-free-music/rock/2": listingPage(
			[]string{"royalty-free-music/rock"},
			blockSpec{title: "Second", length: "2:00", desc: "d", slug: "second"},
		),
	})

	songs, report, err := site.client().ChannelSongs(context.Background(), "Rock")
	if err != nil {
		t.Fatalf("ChannelSongs() error = %v", err)
	}

	if len(songs) != 2 || songs[0].Title != "First" || songs[1].Title != "Second" {
		t.Errorf("songs = %d in order %v, want [First, Second]", len(songs), songs)
	}
	if len(report.Pages) != 2 {
		t.Errorf("visited %d pages, want 2", len(report.Pages))
	}
	for _, path := range []string{"/royalty-free-music/rock", "/royalty-free-music/rock/2"} {
		if n := site.hitCount(path); n != 1 {
			t.Errorf("page %s fetched %d times, want exactly once", path, n)
		}
	}
}

func TestChannelSongs_FetchFailureSkipsPage(t *testing.T) {
	site := newFixtureSite(t, map[string]string{
		"/": rootPage(map[string]string{"Rock": "royalty-free-music/rock"}),
		"/royalty-free-music/rock": listingPage(
			[]string{"royalty-free-music/rock/2"},
			blockSpec{title: "Still Here", length: "1:00", desc: "d", slug: "here"},
		),
	})
	site.fails["/royalty-free-music/rock/2"] = true

	songs, report, err := site.client().ChannelSongs(context.Background(), "Rock")
	if err != nil {
		t.Fatalf("ChannelSongs() error = %v, traversal must continue past a bad page", err)
	}

	if len(songs) != 1 || songs[0].Title != "Still Here" {
		t.Errorf("songs from surviving pages = %d, want 1", len(songs))
	}
	if len(report.PageErrors) != 1 {
		t.Fatalf("PageErrors = %d, want 1", len(report.PageErrors))
	}
	if !errors.Is(report.PageErrors[0], httpclient.ErrBadStatus) {
		t.Errorf("PageError = %v, want wrapped ErrBadStatus", report.PageErrors[0])
	}
}

func TestChannelSongs_UnknownChannel(t *testing.T) {
	site := newFixtureSite(t, map[string]string{
		"/": rootPage(map[string]string{"Jazz": "royalty-free-music/jazz"}),
	})

	_, _, err := site.client().ChannelSongs(context.Background(), "Polka")
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("ChannelSongs(\"Polka\") error = %v, want ErrNotFound", err)
	}
}

// endToEndSite builds the two-channel fixture: Jazz has one page with a
// downloadable song and a purchasable one; Rock spans two pages, one new
// song plus a duplicate of Jazz's first.
func endToEndSite(t *testing.T) *fixtureSite {
	t.Helper()
	return newFixtureSite(t, map[string]string{
		"/": `<html><body><div id="menu">` +
			`<a href="royalty-free-music">All</a>` +
			`<a href="royalty-free-music/jazz">Jazz</a>` +
			`<a href="royalty-free-music/rock">Rock</a>` +
			`</div></body></html>`,
		"/royalty-free-music/jazz": listingPage(nil,
			blockSpec{title: "Jazz Comedy", length: "2:44", desc: "from Jazz", slug: "jazzcomedy", download: true},
			blockSpec{
				title: "Smooth Licensing", length: "3:10", desc: "pay me", slug: "smooth",
				purchase: true,
				license:  `<a href="https://site/licensing/smooth">buy</a><h1>License</h1><p>Attribution required</p>`,
			},
		),
		"/royalty-free-music/rock": listingPage(
			[]string{"royalty-free-music/rock/2"},
			blockSpec{title: "Rock Anthem", length: "4:01", desc: "loud", slug: "anthem", download: true},
		),
		"/royalty-free-music/rock/2": listingPage(nil,
			blockSpec{title: "Jazz Comedy", length: "2:44", desc: "from Rock", slug: "jazzcomedy", download: true},
		),
	})
}

func TestExtractAll_EndToEnd(t *testing.T) {
	client := endToEndSite(t).client()

	catalog, err := client.ExtractAll(context.Background())
	if err != nil {
		t.Fatalf("ExtractAll() error = %v", err)
	}

	if catalog.Len() != 3 {
		t.Fatalf("master list has %d songs, want 3 unique titles", catalog.Len())
	}
	wantTitles := []string{"Jazz Comedy", "Smooth Licensing", "Rock Anthem"}
	for i, want := range wantTitles {
		if catalog.Titles()[i] != want {
			t.Errorf("Titles()[%d] = %q, want %q", i, catalog.Titles()[i], want)
		}
	}

	// The duplicate collapses onto the record first seen in Jazz.
	dup, err := catalog.SongByTitle("Jazz Comedy")
	if err != nil {
		t.Fatalf("SongByTitle() error = %v", err)
	}
	if dup.Description != "from Jazz" {
		t.Errorf("duplicate owner description = %q, want the Jazz record", dup.Description)
	}

	jazz, err := catalog.Playlist("Jazz")
	if err != nil || len(jazz) != 2 {
		t.Fatalf("Jazz playlist = %v (err %v), want 2 titles", jazz, err)
	}
	rock, err := catalog.Playlist("Rock")
	if err != nil || len(rock) != 2 {
		t.Fatalf("Rock playlist = %v (err %v), want 2 titles", rock, err)
	}
	if rock[0] != "Rock Anthem" || rock[1] != "Jazz Comedy" {
		t.Errorf("Rock playlist order = %v, want page-visit then block order", rock)
	}

	// The purchasable song carries its purchase URL and assembled license.
	smooth, err := catalog.SongByTitle("Smooth Licensing")
	if err != nil {
		t.Fatalf("SongByTitle() error = %v", err)
	}
	if !smooth.ForPurchase || smooth.URLPurchase != "https://site/licensing/smooth" {
		t.Errorf("purchase fields = %v %q, want purchasable with URL", smooth.ForPurchase, smooth.URLPurchase)
	}
	if smooth.License != "License. Attribution required.." {
		t.Errorf("license = %q, want the two-fragment assembly", smooth.License)
	}

	// A fresh extraction replaces the snapshot wholesale.
	snapshot, err := client.Catalog()
	if err != nil || snapshot != catalog {
		t.Errorf("Catalog() = %v (err %v), want the latest snapshot", snapshot, err)
	}
	if report := client.LastReport(); report == nil || len(report.Pages) != 3 {
		t.Errorf("LastReport() pages = %v, want 3 visited pages", report)
	}
}

func TestChannelSongs_DiscoversWhenUnset(t *testing.T) {
	client := endToEndSite(t).client()

	// No DiscoverChannels call first; traversal must bootstrap discovery.
	songs, _, err := client.ChannelSongs(context.Background(), "Jazz")
	if err != nil {
		t.Fatalf("ChannelSongs() error = %v", err)
	}
	if len(songs) != 2 {
		t.Errorf("songs = %d, want 2", len(songs))
	}
}

func TestCatalog_BeforeExtraction(t *testing.T) {
	client := New(Config{})
	if _, err := client.Catalog(); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("Catalog() error = %v, want ErrNotFound before the first extraction", err)
	}
	if client.LastReport() != nil {
		t.Error("LastReport() before extraction should be nil")
	}
}
