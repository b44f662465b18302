// Package web renders the songcart HTML pages.
//
// Each page is an embedded html/template set made of the shared layout plus one content template.
// Handlers in internal/server build a [Page] and hand it to [Renderer.Render]; nothing here touches storage.
//
// # Pages
//
//   - [PageCatalog]: genre listing with search, add-to-cart checkboxes and the submission form
//   - [PageCart]: cart contents with remove checkboxes and the checkout button
//   - [PageHistory]: purchased songs
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/url"

	"github.com/desertthunder/songcart/internal/models"
)

//go:embed templates/*.html
var templateFiles embed.FS

// PageName selects the content template of a page.
type PageName string

const (
	PageCatalog PageName = "catalog"
	PageCart    PageName = "cart"
	PageHistory PageName = "history"
)

// Page is the data every template renders from.
type Page struct {
	Title    string
	UserID   string
	Identity string // Email or id of the signed-in user, empty when anonymous
	Genre    string
	Artist   string
	Genres   []string
	Songs    []*models.Song
	Action   bool // Show selection checkboxes next to songs
}

// Query renders the user and genre as the query string carried between pages.
func (p Page) Query() template.URL {
	return template.URL(StateQuery(p.UserID, p.Genre))
}

// StateQuery encodes the userId and genre parameters handlers redirect back to.
func StateQuery(userID, genre string) string {
	v := url.Values{}
	if userID != "" {
		v.Set("userId", userID)
	}
	if genre != "" {
		v.Set("genre", genre)
	}
	return v.Encode()
}

// Renderer executes the embedded page templates.
type Renderer struct {
	pages map[PageName]*template.Template
}

// NewRenderer parses every page template.
func NewRenderer() (*Renderer, error) {
	r := &Renderer{pages: make(map[PageName]*template.Template)}

	for _, name := range []PageName{PageCatalog, PageCart, PageHistory} {
		t, err := template.ParseFS(templateFiles, "templates/layout.html", fmt.Sprintf("templates/%s.html", name))
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		r.pages[name] = t
	}

	return r, nil
}

// Render writes page name to w.
//
// Output is buffered so a template error never leaves a half-written response.
func (r *Renderer) Render(w io.Writer, name PageName, page Page) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", page); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}

	_, err := buf.WriteTo(w)
	return err
}
