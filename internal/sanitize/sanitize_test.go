package sanitize

import (
	"strings"
	"testing"
)

func TestFixBrokenImages_PhotoPattern(t *testing.T) {
	t.Parallel()

	in := `<img src="photo-1522071820080-37f2cb85c41d-extra">`
	want := `<img src="https://images.unsplash.com/photo-1522071820080-37f2cb85c41d?w=800&h=600&fit=crop">`

	got := FixBrokenImages(in)
	if got != want {
		t.Errorf("FixBrokenImages = %q, want %q", got, want)
	}

	// Same input must always yield same output.
	if again := FixBrokenImages(in); again != got {
		t.Errorf("FixBrokenImages not deterministic: %q vs %q", again, got)
	}
}

func TestFixBrokenImages_NumericID(t *testing.T) {
	t.Parallel()

	got := FixBrokenImages(`<img src="1522071820080">`)
	want := `<img src="https://images.unsplash.com/photo-1522071820080?w=800&h=600&fit=crop">`
	if got != want {
		t.Errorf("FixBrokenImages = %q, want %q", got, want)
	}

	// Short numeric values are not image IDs.
	in := `<img src="12345">`
	if got := FixBrokenImages(in); strings.Contains(got, "unsplash") {
		t.Errorf("short numeric src rewritten to CDN: %q", got)
	}
}

func TestFixBrokenImages_CSSURL(t *testing.T) {
	t.Parallel()

	in := `<div style="background-image: url('photo-1522071820080-37f2cb85c41d-junk')">`
	got := FixBrokenImages(in)
	want := `url('https://images.unsplash.com/photo-1522071820080-37f2cb85c41d?w=800&h=600&fit=crop')`
	if !strings.Contains(got, want) {
		t.Errorf("css url not canonicalized: %q", got)
	}

	got = FixBrokenImages(`url(1522071820080)`)
	if !strings.Contains(got, "photo-1522071820080?w=800") {
		t.Errorf("numeric css url not canonicalized: %q", got)
	}
}

func TestFixBrokenImages_LeavesGoodReferences(t *testing.T) {
	t.Parallel()

	cases := []string{
		`<img src="https://example.com/a.png">`,
		`<img src="/assets/logo.svg">`,
		`<img src="./hero.jpg">`,
		`<img src="hero.jpg">`,
		`<img src="data:image/png;base64,AAAA">`,
		`<p>photo gallery</p>`,
	}
	for _, in := range cases {
		if got := FixBrokenImages(in); got != in {
			t.Errorf("FixBrokenImages(%q) = %q, want unchanged", in, got)
		}
	}
}

func TestFixBrokenImages_JunkSrcGetsPlaceholder(t *testing.T) {
	t.Parallel()

	got := FixBrokenImages(`<img src="some-broken-ref">`)
	if !strings.Contains(got, "placehold.co") {
		t.Errorf("junk src not redirected to placeholder: %q", got)
	}
}

func TestFixBrokenImages_EmptyInput(t *testing.T) {
	t.Parallel()

	if got := FixBrokenImages(""); got != "" {
		t.Errorf("FixBrokenImages(\"\") = %q, want empty", got)
	}
}

func TestInjectImageFallback(t *testing.T) {
	t.Parallel()

	doc := `<!DOCTYPE html><html><body><img src="a.jpg"></body></html>`
	got := InjectImageFallback(doc)

	if !strings.Contains(got, "avallon-img-fallback") {
		t.Fatalf("fallback script not injected: %q", got)
	}
	if !strings.Contains(got[:strings.Index(got, "</body>")], "MutationObserver") {
		t.Errorf("script injected after </body>")
	}

	// Injecting twice must not duplicate the script.
	again := InjectImageFallback(got)
	if strings.Count(again, "avallon-img-fallback") != 1 {
		t.Errorf("fallback script duplicated on re-injection")
	}
}

func TestInjectImageFallback_NoClosingTag(t *testing.T) {
	t.Parallel()

	in := `<div>fragment</div>`
	if got := InjectImageFallback(in); got != in {
		t.Errorf("fragment without closing tag modified: %q", got)
	}
}

func TestStripCodeFences(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name, in, want string
	}{
		{"fenced html", "```html\n<!DOCTYPE html><html></html>\n```", "<!DOCTYPE html><html></html>"},
		{"bare fence", "```\n<p>hi</p>\n```", "<p>hi</p>"},
		{"no fence", "<!DOCTYPE html><html></html>", "<!DOCTYPE html><html></html>"},
	}
	for _, tc := range cases {
		if got := StripCodeFences(tc.in); got != tc.want {
			t.Errorf("%s: StripCodeFences = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestCleanUserText(t *testing.T) {
	t.Parallel()

	got := CleanUserText(`make it pop <script>alert(1)</script>`)
	if strings.Contains(got, "<script>") {
		t.Errorf("markup survived CleanUserText: %q", got)
	}
	if !strings.Contains(got, "make it pop") {
		t.Errorf("plain text lost: %q", got)
	}
}

func TestInjectBeforeClose_Fallbacks(t *testing.T) {
	t.Parallel()

	if got := InjectBeforeClose("<html>x</html>", "<s/>"); got != "<html>x<s/></html>" {
		t.Errorf("html fallback: %q", got)
	}
	if got := InjectBeforeClose("no tags", "<s/>"); got != "no tags<s/>" {
		t.Errorf("append fallback: %q", got)
	}
}

func TestInjectBeforeClose_TagCaseInsensitive(t *testing.T) {
	t.Parallel()

	// HTML tags are case-insensitive; any casing of the closing tag must be
	// found, not fallen past.
	cases := []struct {
		in   string
		want string
	}{
		{"<html><Body>x</Body></html>", "<html><Body>x<s/></Body></html>"},
		{"<HTML><BODY>x</BODY></HTML>", "<HTML><BODY>x<s/></BODY></HTML>"},
		{"<Html>x</Html>", "<Html>x<s/></Html>"},
	}
	for _, tc := range cases {
		if got := InjectBeforeClose(tc.in, "<s/>"); got != tc.want {
			t.Errorf("InjectBeforeClose(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestInjectImageFallback_MixedCaseBody(t *testing.T) {
	t.Parallel()

	doc := `<!DOCTYPE html><html><Body><img src="a.jpg"></Body></html>`
	got := InjectImageFallback(doc)

	if !strings.Contains(got, "avallon-img-fallback") {
		t.Fatalf("fallback script not injected into mixed-case document: %q", got)
	}
	idx := strings.Index(got, "</Body>")
	if idx < 0 || !strings.Contains(got[:idx], "MutationObserver") {
		t.Errorf("script not placed before the closing body tag: %q", got)
	}
}
