package pages

import (
	"reflect"
	"testing"
)

func TestInternalLinks(t *testing.T) {
	t.Parallel()

	doc := `<!DOCTYPE html><html><body>
		<a href="about.html">About</a>
		<a href="./contact">Contact</a>
		<a href="/about.html">About again</a>
		<a href="https://example.com">External</a>
		<a href="#top">Anchor</a>
		<a href="mailto:hi@example.com">Mail</a>
		<a href="javascript:void(0)">JS</a>
	</body></html>`

	got := InternalLinks(doc)
	want := []string{"about.html", "contact.html"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("InternalLinks = %v, want %v", got, want)
	}
}

func TestCollection_MissingLinks(t *testing.T) {
	t.Parallel()

	c := Collection{
		"index.html": `<!DOCTYPE html><html><body><a href="about.html">a</a><a href="team.html">t</a></body></html>`,
		"about.html": `<!DOCTYPE html><html><body><a href="index.html">home</a></body></html>`,
		"junk.html":  `<a href="ghost.html">not a document</a>`,
	}

	got := c.MissingLinks()
	if len(got) != 1 {
		t.Fatalf("MissingLinks = %v", got)
	}
	if !reflect.DeepEqual(got["index.html"], []string{"team.html"}) {
		t.Errorf("missing for index.html = %v", got["index.html"])
	}
}
