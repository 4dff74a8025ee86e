package bensound

import (
	"errors"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/velvetear/bensound-downloader/internal/model"
)

// Selectors for the bensound.com markup. Listing pages are server-rendered:
// a div.bloc_cat container holds one div.bloc_produit (or bloc_produit1)
// per song, and div.pagenavi carries the links to the channel's other pages.
const (
	selectorMenu       = "div#menu"
	selectorListing    = "div.bloc_cat"
	selectorBlocks     = "div.bloc_produit, div.bloc_produit1"
	selectorPagination = "div.pagenavi a.page"

	selectorTitle       = "div.titre p"
	selectorLength      = "p.totime"
	selectorDescription = "div.description"
	selectorMainLink    = "div.img_mini a"
	selectorImage       = "div.img_mini img"
	selectorAudio       = "audio"
	selectorDownload    = "div.bouton_download"
	selectorPurchase    = "div.bouton_purchase"
	selectorLicense     = "div.pop_license"
	selectorCaptions    = "span.nothis"
)

// allChannelName is the navigation entry that aggregates every channel.
// It is skipped during discovery; traversing it would only produce
// duplicates of the real channels.
const allChannelName = "All"

// absoluteURL resolves a document reference against the site base by plain
// concatenation, which is how the site writes its relative media paths.
// References that already carry a scheme are returned unchanged.
func absoluteURL(base, ref string) string {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(ref, "/")
}

// parseChannels extracts the channel list from the navigation menu, in
// document order, skipping the aggregating "All" entry.
func parseChannels(doc *goquery.Document, baseURL string) ([]model.Channel, *ParseError) {
	menu := doc.Find(selectorMenu)
	if menu.Length() == 0 {
		return nil, &ParseError{Page: baseURL, Block: -1, Field: "navigation menu"}
	}

	var channels []model.Channel
	menu.Find("a").Each(func(_ int, a *goquery.Selection) {
		name := strings.TrimSpace(a.Text())
		href, ok := a.Attr("href")
		if !ok || name == "" || name == allChannelName {
			return
		}
		channels = append(channels, model.Channel{
			Name: name,
			URL:  absoluteURL(baseURL, href),
		})
	})
	return channels, nil
}

// parsePagination returns the page links advertised by a listing page,
// resolved to absolute URLs. Pages without a pagination element simply
// contribute no links.
func parsePagination(doc *goquery.Document, baseURL string) []string {
	var links []string
	doc.Find(selectorPagination).Each(func(_ int, a *goquery.Selection) {
		if href, ok := a.Attr("href"); ok {
			links = append(links, absoluteURL(baseURL, href))
		}
	})
	return links
}

// parseListing extracts every song block on a listing page.
//
// Blocks missing a required field are skipped and reported individually;
// a page without the listing container fails as a whole. The clock stamps
// each song's Modified date.
func parseListing(doc *goquery.Document, pageURL, baseURL string, now time.Time) ([]*model.Song, []*ParseError, *ParseError) {
	listing := doc.Find(selectorListing).First()
	if listing.Length() == 0 {
		return nil, nil, &ParseError{Page: pageURL, Block: -1, Field: "song listing"}
	}

	var (
		songs   []*model.Song
		skipped []*ParseError
	)
	listing.Find(selectorBlocks).Each(func(i int, block *goquery.Selection) {
		fields, perr := parseBlock(block, pageURL, baseURL, i)
		if perr != nil {
			skipped = append(skipped, perr)
			return
		}

		song, err := model.NewSong(fields, now)
		if err != nil {
			field := err.Error()
			var missing *model.MissingFieldError
			if errors.As(err, &missing) {
				field = missing.Field
			}
			skipped = append(skipped, &ParseError{Page: pageURL, Block: i, Field: field})
			return
		}
		songs = append(songs, song)
	})
	return songs, skipped, nil
}

// parseBlock scrapes the raw field set from one song block.
//
// The title, length, description and the three media references are
// required; the first one found missing fails the block. The download and
// purchase buttons are presence markers, and the license text is optional
// in all of its parts.
func parseBlock(block *goquery.Selection, pageURL, baseURL string, index int) (model.Fields, *ParseError) {
	var f model.Fields

	title := block.Find(selectorTitle)
	if title.Length() == 0 {
		return f, &ParseError{Page: pageURL, Block: index, Field: "title"}
	}
	f.Title = strings.TrimSpace(title.First().Text())

	length := block.Find(selectorLength)
	if length.Length() == 0 {
		return f, &ParseError{Page: pageURL, Block: index, Field: "length"}
	}
	f.Length = strings.TrimSpace(length.First().Text())

	description := block.Find(selectorDescription)
	if description.Length() == 0 {
		return f, &ParseError{Page: pageURL, Block: index, Field: "description"}
	}
	f.Description = strings.TrimSpace(description.First().Text())

	href, ok := block.Find(selectorMainLink).Attr("href")
	if !ok {
		return f, &ParseError{Page: pageURL, Block: index, Field: "url_main"}
	}
	f.URLMain = href

	imgSrc, ok := block.Find(selectorImage).Attr("src")
	if !ok {
		return f, &ParseError{Page: pageURL, Block: index, Field: "url_image"}
	}
	f.URLImage = absoluteURL(baseURL, imgSrc)

	audioSrc, ok := block.Find(selectorAudio).Attr("src")
	if !ok {
		return f, &ParseError{Page: pageURL, Block: index, Field: "url_mp3"}
	}
	f.URLMP3 = absoluteURL(baseURL, audioSrc)

	// Buttons are presence markers; their text does not matter.
	f.ForDownload = block.Find(selectorDownload).Length() > 0

	if block.Find(selectorPurchase).Length() > 0 {
		f.ForPurchase = true
		purchase, ok := block.Find(selectorLicense + " a").Attr("href")
		if !ok {
			return f, &ParseError{Page: pageURL, Block: index, Field: "url_purchase"}
		}
		f.URLPurchase = purchase
	}

	f.License = parseLicense(block)

	return f, nil
}

// parseLicense assembles the license text from the popup fragments: an
// optional heading, an optional paragraph and any caption spans. Each
// present fragment gets a trailing period, the captions are joined with
// commas, the fragments are joined with single spaces and trimmed, and a
// final period is appended unconditionally; a block without any license
// markup therefore yields ".". Non-breaking spaces are normalized.
func parseLicense(block *goquery.Selection) string {
	popup := block.Find(selectorLicense)

	var heading, paragraph string
	if h1 := popup.Find("h1"); h1.Length() > 0 {
		heading = strings.TrimSpace(h1.First().Text()) + "."
	}
	if p := popup.Find("p"); p.Length() > 0 {
		paragraph = strings.TrimSpace(p.First().Text()) + "."
	}

	var captions []string
	popup.Find(selectorCaptions).Each(func(_ int, span *goquery.Selection) {
		captions = append(captions, strings.TrimSpace(span.Text()))
	})

	license := strings.Join([]string{heading, paragraph, strings.Join(captions, ", ")}, " ")
	license = strings.TrimSpace(license)
	license = strings.ReplaceAll(license, " ", " ")
	return license + "."
}
