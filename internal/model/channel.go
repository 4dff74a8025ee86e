package model

// Channel is one music category from the bensound navigation menu,
// e.g. "Acoustic" or "Cinematic". The aggregating "All" entry is never
// represented as a Channel.
type Channel struct {
	// Name is the display name from the menu anchor.
	Name string `json:"name"`

	// URL is the channel's first listing page.
	URL string `json:"url"`
}
