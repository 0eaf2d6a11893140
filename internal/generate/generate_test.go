package generate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/avallon-labs/avallon/internal/interfaces"
	"github.com/avallon-labs/avallon/internal/pages"
)

const validDoc = "<!DOCTYPE html><html><body>hi</body></html>"

func newBackend(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 2*time.Second, interfaces.NewTestLogger(false))
}

func TestClient_Generate(t *testing.T) {
	t.Parallel()

	var received Request
	c := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sites/generate" {
			t.Errorf("posted to %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		json.NewEncoder(w).Encode(Response{
			Success:        true,
			WebsiteContent: map[string]string{"index.html": validDoc},
			Message:        "done",
		})
	})

	stamp := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	got, msg, err := c.Generate(context.Background(), Request{
		Name:         "Bakery",
		Description:  "a bakery website",
		SiteID:       "s1",
		Mode:         "full",
		CurrentPages: pages.Collection{"index.html": "<!DOCTYPE html><html></html>"},
		History:      []Message{{Role: "user", Content: "hi", Timestamp: stamp}},
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if msg != "done" {
		t.Errorf("message = %q", msg)
	}
	if got["index.html"] != validDoc {
		t.Errorf("pages = %v", got)
	}
	// The full current map and ISO timestamps cross the wire.
	if len(received.CurrentPages) != 1 {
		t.Errorf("current page map not sent: %+v", received)
	}
	if !received.History[0].Timestamp.Equal(stamp) {
		t.Errorf("history timestamp = %v, want %v", received.History[0].Timestamp, stamp)
	}
}

func TestClient_ErrorField(t *testing.T) {
	t.Parallel()

	c := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Response{
			Error:          "model refused",
			WebsiteContent: map[string]string{"index.html": validDoc},
		})
	})

	if _, _, err := c.Generate(context.Background(), Request{}); err == nil {
		t.Fatalf("error field ignored")
	} else if !strings.Contains(err.Error(), "model refused") {
		t.Errorf("err = %v", err)
	}
}

func TestClient_EmptyContentIsHardFailure(t *testing.T) {
	t.Parallel()

	c := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Response{Success: true, WebsiteContent: map[string]string{}})
	})

	if _, _, err := c.Generate(context.Background(), Request{}); err != ErrNoContent {
		t.Errorf("err = %v, want ErrNoContent", err)
	}
}

func TestClient_Timeout(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, 50*time.Millisecond, interfaces.NewTestLogger(false))
	if _, _, err := c.Generate(context.Background(), Request{}); err == nil {
		t.Fatalf("slow backend did not time out")
	}
}

func TestClient_BadStatus(t *testing.T) {
	t.Parallel()

	c := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	if _, _, err := c.Generate(context.Background(), Request{}); err == nil {
		t.Fatalf("500 accepted")
	}
}

func TestClean(t *testing.T) {
	t.Parallel()

	got, err := Clean(map[string]string{
		"index.html":  "```html\n" + validDoc + "\n```",
		"About Us":    validDoc,
		"broken.html": "<div>no doctype</div>",
	})
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if got["index.html"] != validDoc {
		t.Errorf("fences not stripped: %q", got["index.html"])
	}
	if _, ok := got["about-us.html"]; !ok {
		t.Errorf("key not normalized: %v", got)
	}
	if _, ok := got["broken.html"]; ok {
		t.Errorf("DOCTYPE-less entry kept")
	}
}

func TestClean_AllInvalid(t *testing.T) {
	t.Parallel()

	if _, err := Clean(map[string]string{"a.html": "<div></div>"}); err != ErrNoContent {
		t.Errorf("err = %v, want ErrNoContent", err)
	}
}

func TestParseModelOutput(t *testing.T) {
	t.Parallel()

	jsonOut := `{"index.html": "<!DOCTYPE html><html></html>"}`
	got, err := parseModelOutput("```json\n" + jsonOut + "\n```")
	if err != nil {
		t.Fatalf("json output: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("pages = %v", got)
	}

	got, err = parseModelOutput(validDoc)
	if err != nil {
		t.Fatalf("bare document: %v", err)
	}
	if got["index.html"] != validDoc {
		t.Errorf("bare document not wrapped: %v", got)
	}

	if _, err := parseModelOutput("sorry, I cannot do that"); err == nil {
		t.Errorf("prose accepted as output")
	}
}

func TestStaticProvider(t *testing.T) {
	t.Parallel()

	var p StaticProvider
	first, msg, err := p.Generate(context.Background(), Request{Name: "Cafe", Description: "a cafe"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if msg == "" {
		t.Errorf("no chat message")
	}
	second, _, _ := p.Generate(context.Background(), Request{Name: "Cafe", Description: "a cafe"})
	if first["index.html"] != second["index.html"] {
		t.Errorf("static provider is not deterministic")
	}

	cleaned, err := Clean(first)
	if err != nil {
		t.Fatalf("static output fails cleaning: %v", err)
	}
	for _, name := range []string{"index.html", "about.html"} {
		if !pages.IsDocument(cleaned[name]) {
			t.Errorf("%s is not a full document", name)
		}
	}
	if !strings.Contains(first["index.html"], "Cafe") {
		t.Errorf("site name missing from output")
	}
}
