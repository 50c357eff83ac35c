package capture

import "context"

// Page is the raw material an acquisition engine hands to the
// extraction pipeline.
type Page struct {
	// Content is the page payload: full HTML from a browser capture,
	// markdown/plain text from a text fetch
	Content string

	// Engine identifies which engine produced the content
	Engine string

	// IsHTML reports whether Content needs HTML cleaning before it can
	// be prompted
	IsHTML bool
}

// Acquirer fetches the content of a posting URL. Implementations map
// their transport failures into the extraction-error taxonomy.
type Acquirer interface {
	// Acquire fetches the page content for the given URL
	Acquire(ctx context.Context, url string) (*Page, error)

	// Engine returns the engine identifier
	Engine() string

	// Close releases engine resources
	Close() error
}
