package pages

import (
	"strings"
	"testing"
)

const doc = "<!DOCTYPE html><html><body>%s</body></html>"

func page(body string) string {
	return strings.Replace(doc, "%s", body, 1)
}

func TestMerge_RetainsExistingKeys(t *testing.T) {
	t.Parallel()

	existing := Collection{
		"index.html": "A",
		"about.html": "B",
	}
	incoming := Collection{
		"index.html":   "A2",
		"contact.html": "C",
	}

	got := existing.Merge(incoming)

	want := Collection{
		"index.html":   "A2",
		"about.html":   "B",
		"contact.html": "C",
	}
	if len(got) != len(want) {
		t.Fatalf("merged collection has %d keys, want %d: %v", len(got), len(want), got)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("merged[%q] = %q, want %q", k, got[k], v)
		}
	}

	// The receiver must not be mutated.
	if existing["index.html"] != "A" || len(existing) != 2 {
		t.Errorf("Merge mutated the receiver: %v", existing)
	}
}

func TestMerge_OrderOfArrivalIsUnionPerKey(t *testing.T) {
	t.Parallel()

	base := Collection{"index.html": "A"}
	n1 := Collection{"about.html": "B"}
	n2 := Collection{"contact.html": "C"}

	ab := base.Merge(n1).Merge(n2)
	ba := base.Merge(n2).Merge(n1)

	for _, k := range []string{"index.html", "about.html", "contact.html"} {
		if ab[k] != ba[k] {
			t.Errorf("arrival order changed result for %q: %q vs %q", k, ab[k], ba[k])
		}
	}
}

func TestAvailable_FiltersAndSorts(t *testing.T) {
	t.Parallel()

	c := Collection{
		"zeta.html":    page("z"),
		"index.html":   page("i"),
		"about.html":   page("a"),
		"broken.html":  "<div>no doctype</div>",
		"partial.html": "",
	}

	got := c.Available()
	want := []string{"index.html", "about.html", "zeta.html"}
	if len(got) != len(want) {
		t.Fatalf("Available() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Available() = %v, want %v", got, want)
		}
	}
}

func TestResolveCurrent(t *testing.T) {
	t.Parallel()

	c := Collection{
		"index.html":  page("i"),
		"about.html":  page("a"),
		"broken.html": "garbage",
	}

	if got := c.ResolveCurrent("about.html"); got != "about.html" {
		t.Errorf("ResolveCurrent(about.html) = %q", got)
	}
	if got := c.ResolveCurrent("missing.html"); got != "index.html" {
		t.Errorf("ResolveCurrent(missing.html) = %q, want index.html", got)
	}
	// A key with no DOCTYPE must never be returned, even when requested.
	if got := c.ResolveCurrent("broken.html"); got != "index.html" {
		t.Errorf("ResolveCurrent(broken.html) = %q, want index.html", got)
	}

	empty := Collection{}
	if got := empty.ResolveCurrent("anything"); got != "index.html" {
		t.Errorf("ResolveCurrent on empty collection = %q, want index.html", got)
	}
}

func TestResolveCurrent_NoIndex(t *testing.T) {
	t.Parallel()

	c := Collection{"services.html": page("s")}
	if got := c.ResolveCurrent("missing.html"); got != "services.html" {
		t.Errorf("ResolveCurrent = %q, want services.html", got)
	}
}

func TestNormalizeKey(t *testing.T) {
	t.Parallel()

	cases := []struct{ in, want string }{
		{"about", "about.html"},
		{"/about.html", "about.html"},
		{"./contact", "contact.html"},
		{"Our Team", "our-team.html"},
		{"", "index.html"},
	}
	for _, tc := range cases {
		if got := NormalizeKey(tc.in); got != tc.want {
			t.Errorf("NormalizeKey(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCreateBlankPage_InheritsChrome(t *testing.T) {
	t.Parallel()

	index := `<!DOCTYPE html><html><head><style>body{margin:0}</style></head><body>` +
		`<nav><a href="index.html">Home</a></nav>` +
		`<main>welcome</main>` +
		`<footer><p>© Acme</p></footer>` +
		`</body></html>`
	c := Collection{"index.html": index}

	key, err := c.CreateBlankPage("Contact")
	if err != nil {
		t.Fatalf("CreateBlankPage: %v", err)
	}
	if key != "contact.html" {
		t.Errorf("key = %q, want contact.html", key)
	}

	html := c[key]
	if !IsDocument(html) {
		t.Fatalf("blank page is not a document: %q", html)
	}
	if !strings.Contains(html, `<nav><a href="index.html">Home</a></nav>`) {
		t.Errorf("nav not inherited verbatim:\n%s", html)
	}
	if !strings.Contains(html, `<footer><p>© Acme</p></footer>`) {
		t.Errorf("footer not inherited verbatim:\n%s", html)
	}
	if !strings.Contains(html, "<style>body{margin:0}</style>") {
		t.Errorf("styles not inherited:\n%s", html)
	}
	if !strings.Contains(html, "<h1>Contact</h1>") {
		t.Errorf("placeholder body section missing:\n%s", html)
	}
	if c["index.html"] != index {
		t.Errorf("CreateBlankPage altered index.html")
	}
}

func TestCreateBlankPage_MinimalShell(t *testing.T) {
	t.Parallel()

	c := Collection{}
	key, err := c.CreateBlankPage("About")
	if err != nil {
		t.Fatalf("CreateBlankPage: %v", err)
	}
	if !IsDocument(c[key]) {
		t.Errorf("minimal shell missing DOCTYPE: %q", c[key])
	}
}

func TestCreateBlankPage_Duplicate(t *testing.T) {
	t.Parallel()

	c := Collection{"contact.html": page("x")}
	if _, err := c.CreateBlankPage("Contact"); err == nil {
		t.Errorf("expected error creating duplicate page")
	}
}
