package generate

import "context"

// Provider generates or edits a site's pages. Implementations sit behind
// POST /sites/generate so the server runs without an external backend.
type Provider interface {
	// Generate returns the changed pages and a chat message for the
	// conversation log. The pages are merged into the site, never assigned.
	Generate(ctx context.Context, req Request) (map[string]string, string, error)
}
