package main

import (
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
)

const spaEntryDocument = "index.html"

// spaHandler serves pre-built assets in production. Public assets win over the
// front-end build; anything else outside /api/ gets the build's entry document.
func (a *App) spaHandler() gin.HandlerFunc {
	build := http.Dir(a.cfg.BuildDir)
	roots := []http.FileSystem{http.Dir(a.cfg.PublicDir), build}

	return func(c *gin.Context) {
		urlPath := c.Request.URL.Path
		if urlPath == "/api" || strings.HasPrefix(urlPath, "/api/") {
			notFoundHandler(c)
			return
		}
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			notFoundHandler(c)
			return
		}

		name := path.Clean("/" + urlPath)
		for _, root := range roots {
			if serveFromRoot(c, root, name) {
				return
			}
		}

		if serveFile(c, build, "/"+spaEntryDocument) {
			return
		}
		a.log.Error("spa entry document missing", "build_dir", a.cfg.BuildDir)
		notFoundHandler(c)
	}
}

func serveFromRoot(c *gin.Context, root http.FileSystem, name string) bool {
	if serveFile(c, root, name) {
		return true
	}
	return serveFile(c, root, path.Join(name, spaEntryDocument))
}

// serveFile writes name from root when it exists and is a regular file.
func serveFile(c *gin.Context, root http.FileSystem, name string) bool {
	f, err := root.Open(name)
	if err != nil {
		return false
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		return false
	}

	c.Status(http.StatusOK)
	http.ServeContent(c.Writer, c.Request, info.Name(), info.ModTime(), f)
	return true
}
