package frontend

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"time"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

//go:embed all:assets
var assetFS embed.FS

const layoutTemplate = "layout.tmpl"

// PageView is the data every template receives.
type PageView struct {
	Title       string
	CurrentPath string
	Route       *Route
	Nav         []NavLink
	Form        ContactForm
	Year        int

	TelegramBotURL       string
	TelegramSupportURL   string
	TelegramCommunityURL string
	SupportEmail         string
}

// Shell renders the header, the page matching the current route and the footer.
type Shell struct {
	pages map[string]*template.Template
	empty *template.Template
	now   func() time.Time
}

func NewShell() (*Shell, error) {
	s := &Shell{
		pages: make(map[string]*template.Template, len(Routes)),
		now:   time.Now,
	}

	empty, err := template.New(layoutTemplate).ParseFS(templateFS, "templates/"+layoutTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	s.empty = empty

	for _, r := range Routes {
		t, err := template.New(layoutTemplate).ParseFS(templateFS, "templates/"+layoutTemplate, "templates/"+r.Page)
		if err != nil {
			return nil, fmt.Errorf("parse page %s: %w", r.Page, err)
		}
		s.pages[r.Path] = t
	}
	return s, nil
}

// Render writes the document for requestPath. Unknown paths get the shell with
// an empty main section and no active navigation link.
func (s *Shell) Render(w io.Writer, requestPath string, form ContactForm) error {
	current := CleanPath(requestPath)
	view := PageView{
		Title:                "SolSniper Pro",
		CurrentPath:          current,
		Nav:                  navigation(current),
		Form:                 form,
		Year:                 s.now().Year(),
		TelegramBotURL:       TelegramBotURL,
		TelegramSupportURL:   TelegramSupportURL,
		TelegramCommunityURL: TelegramCommunityURL,
		SupportEmail:         SupportEmail,
	}

	tmpl := s.empty
	if route, ok := Lookup(current); ok {
		view.Route = &route
		if route.Path != "/" {
			view.Title = route.Label + " | SolSniper Pro"
		}
		tmpl = s.pages[route.Path]
	}

	if err := tmpl.ExecuteTemplate(w, layoutTemplate, view); err != nil {
		return fmt.Errorf("render %s: %w", current, err)
	}
	return nil
}

// Assets returns the static asset tree (css, js) rooted at its top directory.
func Assets() fs.FS {
	sub, err := fs.Sub(assetFS, "assets")
	if err != nil {
		panic("frontend assets missing: " + err.Error())
	}
	return sub
}
