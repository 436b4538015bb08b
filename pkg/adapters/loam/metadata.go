package loam

// PageMetadata is the frontmatter of an instruction page.
type PageMetadata struct {
	ID    string `json:"id" mapstructure:"id"`
	Title string `json:"title" mapstructure:"title"`
	// Order sorts pages; ties fall back to the page ID.
	Order int `json:"order" mapstructure:"order"`
}
