package domain

// Source represents a configured RSS/Atom feed endpoint
type Source struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	Category string `json:"category"`
}
