package frontend

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Build writes the production front-end into dir: index.html (the entry
// document), one <route>/index.html per route and the assets/ tree.
func Build(dir string) ([]string, error) {
	shell, err := NewShell()
	if err != nil {
		return nil, err
	}

	var written []string
	for _, r := range Routes {
		var buf bytes.Buffer
		if err := shell.Render(&buf, r.Path, ContactForm{}); err != nil {
			return written, err
		}

		rel := filepath.Join(strings.TrimPrefix(r.Path, "/"), "index.html")
		if err := writeBuildFile(dir, rel, buf.Bytes()); err != nil {
			return written, err
		}
		written = append(written, rel)
	}

	assets := Assets()
	err = fs.WalkDir(assets, ".", func(name string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() {
			return walkErr
		}
		content, err := fs.ReadFile(assets, name)
		if err != nil {
			return err
		}
		rel := filepath.Join("assets", filepath.FromSlash(name))
		if err := writeBuildFile(dir, rel, content); err != nil {
			return err
		}
		written = append(written, rel)
		return nil
	})
	if err != nil {
		return written, fmt.Errorf("copy assets: %w", err)
	}
	return written, nil
}

func writeBuildFile(dir, rel string, content []byte) error {
	full := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(full), err)
	}
	if err := os.WriteFile(full, content, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", full, err)
	}
	return nil
}
