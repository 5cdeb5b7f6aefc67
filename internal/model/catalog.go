package model

// ChannelRecord is one entry of the upstream channels.json resource
type ChannelRecord struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Country    string   `json:"country"`
	Categories []string `json:"categories"`
	Logo       string   `json:"logo"`
}

// StreamRecord is one entry of the upstream streams.json resource
type StreamRecord struct {
	Channel   string `json:"channel"`
	URL       string `json:"url"`
	UserAgent string `json:"user_agent"`
	Referrer  string `json:"referrer"`
}

// Channel is a catalog channel joined with exactly one playable stream
type Channel struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Country         string   `json:"country"`
	Categories      []string `json:"categories"`
	Logo            string   `json:"logo,omitempty"`
	StreamURL       string   `json:"stream_url"`
	StreamUserAgent string   `json:"stream_user_agent,omitempty"`
	StreamReferrer  string   `json:"stream_referrer,omitempty"`
}

// PrimaryCategory returns the first category of the channel, or "General" when it has none
func (c *Channel) PrimaryCategory() string {
	if len(c.Categories) > 0 {
		return c.Categories[0]
	}
	return "General"
}

// HasCategory reports whether id is one of the channel's categories
func (c *Channel) HasCategory(id string) bool {
	for _, category := range c.Categories {
		if category == id {
			return true
		}
	}
	return false
}

// Region is a named group of country codes
type Region struct {
	Code      string   `json:"code"`
	Name      string   `json:"name"`
	Countries []string `json:"countries"`
}

// Category is a channel category
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
