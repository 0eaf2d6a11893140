package generate

import (
	"context"
	"fmt"
	"html"
	"strings"
)

// StaticProvider produces a deterministic starter site without calling any
// model. It backs offline development and tests.
type StaticProvider struct{}

// Generate implements Provider.
func (StaticProvider) Generate(_ context.Context, req Request) (map[string]string, string, error) {
	name := req.Name
	if name == "" {
		name = "My Website"
	}
	desc := req.Description
	if desc == "" {
		desc = "A brand new website."
	}

	out := map[string]string{
		"index.html": staticPage(name, "Home", fmt.Sprintf("<h1>%s</h1>\n<p>%s</p>",
			html.EscapeString(name), html.EscapeString(desc))),
		"about.html": staticPage(name, "About", fmt.Sprintf("<h1>About %s</h1>\n<p>Tell your visitors who you are.</p>",
			html.EscapeString(name))),
	}
	return out, fmt.Sprintf("I've created a starter site for %s with a home and about page.", name), nil
}

func staticPage(site, title, main string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	b.WriteString("<meta charset=\"utf-8\">\n")
	b.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
	fmt.Fprintf(&b, "<title>%s - %s</title>\n", html.EscapeString(title), html.EscapeString(site))
	b.WriteString("<style>\nbody { font-family: system-ui, sans-serif; margin: 0; color: #1a1a2e; }\n")
	b.WriteString("header { display: flex; justify-content: space-between; padding: 1rem 2rem; background: #16213e; }\n")
	b.WriteString("header a { color: #e8e8e8; text-decoration: none; margin-left: 1rem; }\n")
	b.WriteString("main { max-width: 720px; margin: 3rem auto; padding: 0 1rem; }\n")
	b.WriteString("footer { text-align: center; padding: 2rem; color: #888; }\n</style>\n")
	b.WriteString("</head>\n<body>\n<header>\n<nav>\n")
	b.WriteString("<a href=\"index.html\">Home</a>\n<a href=\"about.html\">About</a>\n")
	b.WriteString("</nav>\n</header>\n<main>\n")
	b.WriteString(main)
	b.WriteString("\n</main>\n<footer>\n")
	fmt.Fprintf(&b, "<p>&copy; %s</p>\n", html.EscapeString(site))
	b.WriteString("</footer>\n</body>\n</html>")
	return b.String()
}
