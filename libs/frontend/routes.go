// Package frontend renders the SolSniper Pro marketing pages and implements the
// contact form view that talks to the contact API.
package frontend

import (
	"path"
	"strings"
)

// Route maps a URL path to a page component.
type Route struct {
	Path  string
	Label string
	Page  string
}

// Routes is the fixed, ordered route table. Header navigation follows this order.
var Routes = []Route{
	{Path: "/", Label: "Home", Page: "home.tmpl"},
	{Path: "/features", Label: "Features", Page: "features.tmpl"},
	{Path: "/how-it-works", Label: "How It Works", Page: "how_it_works.tmpl"},
	{Path: "/community", Label: "Community", Page: "community.tmpl"},
	{Path: "/contact", Label: "Contact", Page: "contact.tmpl"},
}

const (
	TelegramBotURL       = "https://t.me/Raydi_Bot"
	TelegramSupportURL   = "https://t.me/ray_diu"
	TelegramCommunityURL = "https://t.me/SolSniperProCommunity"
	SupportEmail         = "contactsupport@raydi.com"
)

// Lookup resolves requestPath against the route table. Trailing slashes are
// ignored so "/features/" matches "/features".
func Lookup(requestPath string) (Route, bool) {
	cleaned := CleanPath(requestPath)
	for _, r := range Routes {
		if r.Path == cleaned {
			return r, true
		}
	}
	return Route{}, false
}

// CleanPath normalises a request path the way the route table stores paths.
func CleanPath(requestPath string) string {
	if requestPath == "" {
		return "/"
	}
	cleaned := path.Clean("/" + requestPath)
	if cleaned != "/" {
		cleaned = strings.TrimSuffix(cleaned, "/")
	}
	return cleaned
}

// NavLink is one header navigation entry.
type NavLink struct {
	Path   string
	Label  string
	Active bool
}

func navigation(currentPath string) []NavLink {
	links := make([]NavLink, 0, len(Routes))
	for _, r := range Routes {
		links = append(links, NavLink{Path: r.Path, Label: r.Label, Active: r.Path == currentPath})
	}
	return links
}
