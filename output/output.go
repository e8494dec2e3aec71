package output

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"charm.land/glamour/v2"

	"github.com/Gaurav-Gosain/websearch/search"
)

// Markdown formats one result as a markdown section.
func Markdown(r search.Result) string {
	var b strings.Builder

	title := r.Title
	if title == "" {
		title = r.ID
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	if r.ThumbnailURL != "" {
		fmt.Fprintf(&b, "![%s](%s)\n\n", title, r.ThumbnailURL)
	}
	if r.Description != "" {
		b.WriteString(r.Description)
		b.WriteString("\n\n")
	}

	fmt.Fprintf(&b, "- **Media:** <%s>\n", r.ContentURL)
	if r.PageURL != "" {
		fmt.Fprintf(&b, "- **Page:** <%s>\n", r.PageURL)
	}
	if r.Width > 0 && r.Height > 0 {
		fmt.Fprintf(&b, "- **Size:** %d×%d\n", r.Width, r.Height)
	}
	if r.MIMEType != "" {
		fmt.Fprintf(&b, "- **Type:** %s\n", r.MIMEType)
	}
	for _, l := range r.Links {
		if l == r.PageURL {
			continue
		}
		fmt.Fprintf(&b, "- <%s>\n", l)
	}
	return b.String()
}

// RenderTerminal renders results to w with glamour.
func RenderTerminal(w io.Writer, results []search.Result, style string, wordWrap int) error {
	if style == "" {
		style = "tokyo-night"
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(wordWrap),
	)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}

	for _, r := range results {
		rendered, err := renderer.Render(Markdown(r))
		if err != nil {
			return fmt.Errorf("rendering %s: %w", r.ID, err)
		}
		if _, err := io.WriteString(w, rendered); err != nil {
			return err
		}
	}
	return nil
}

// WriteJSON writes results as an indented JSON array.
func WriteJSON(w io.Writer, results []search.Result) error {
	if results == nil {
		results = []search.Result{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

// WriteFiles writes each result as a .md file in dir and reports every saved
// path on status. It returns the paths written.
func WriteFiles(results []search.Result, dir string, status io.Writer) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	paths := make([]string, 0, len(results))
	for i, r := range results {
		path := filepath.Join(dir, fmt.Sprintf("%03d-%s", i+1, urlToFilename(r.ContentURL)))
		if err := os.WriteFile(path, []byte(Markdown(r)), 0o644); err != nil {
			return paths, fmt.Errorf("writing %s: %w", path, err)
		}
		paths = append(paths, path)
		if status != nil {
			fmt.Fprintf(status, "Saved: %s\n", path)
		}
	}
	return paths, nil
}

// urlToFilename converts a media URL to a safe filename.
func urlToFilename(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Host == "" && u.Path == "") {
		return "result.md"
	}

	name := u.Host + strings.TrimSuffix(u.Path, filepath.Ext(u.Path))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_':
			return r
		}
		return '-'
	}, name)
	name = strings.Trim(name, "-")

	if len(name) > 80 {
		name = name[len(name)-80:]
	}
	if name == "" {
		name = "result"
	}
	return name + ".md"
}
