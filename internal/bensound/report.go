package bensound

import "fmt"

// ParseError reports a song block, or a whole page, that did not match
// the expected bensound markup.
//
// Block is the zero-based position of the song block within its page.
// A Block of -1 means the failure applies to the page itself, such as a
// missing listing container or navigation menu.
type ParseError struct {
	// Page is the URL of the page being parsed.
	Page string

	// Block is the block index within the page, or -1 for page-level failures.
	Block int

	// Field names the missing element or attribute, e.g. "title" or "url_mp3".
	Field string
}

func (e *ParseError) Error() string {
	if e.Block < 0 {
		return fmt.Sprintf("parse %s: missing %s", e.Page, e.Field)
	}
	return fmt.Sprintf("parse %s: block %d: missing %s", e.Page, e.Block, e.Field)
}

// PageError reports a page the traversal could not use at all, either
// because the fetch failed or because the page had no song listing.
type PageError struct {
	URL string
	Err error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("page %s: %v", e.URL, e.Err)
}

func (e *PageError) Unwrap() error { return e.Err }

// Report collects everything a traversal skipped over. Traversals never
// abort on a bad page or a malformed block; they record the failure here
// and move on with the remaining worklist.
type Report struct {
	// Pages lists every URL the traversal fetched (or tried to), in visit order.
	Pages []string

	// PageErrors lists pages that contributed no songs.
	PageErrors []*PageError

	// BlockErrors lists song blocks skipped because a required field was missing.
	BlockErrors []*ParseError
}

// Failed returns the total number of skipped pages and blocks.
func (r *Report) Failed() int {
	return len(r.PageErrors) + len(r.BlockErrors)
}

func (r *Report) merge(other *Report) {
	r.Pages = append(r.Pages, other.Pages...)
	r.PageErrors = append(r.PageErrors, other.PageErrors...)
	r.BlockErrors = append(r.BlockErrors, other.BlockErrors...)
}
