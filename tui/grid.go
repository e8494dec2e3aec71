package tui

import (
	"fmt"
	"net/url"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/Gaurav-Gosain/websearch/gallery"
	"github.com/Gaurav-Gosain/websearch/search"
)

const (
	mediaCellHeight = 4 // badge + title + host + gap
	listRowHeight   = 3 // title + meta + gap
	cellSpacing     = 1
)

// columnCount is the number of cells per row for a presentation.
func columnCount(p search.Presentation, columns int) int {
	if p == search.PresentationList {
		return 1
	}
	return max(1, columns)
}

// cellWidth splits width into columns cells separated by one blank column.
func cellWidth(width, columns int) int {
	return max(1, (width-(columns-1)*cellSpacing)/columns)
}

func rowHeight(p search.Presentation) int {
	if p == search.PresentationList {
		return listRowHeight
	}
	return mediaCellHeight
}

// cell is the pre-rendered plain text of one entry, already fitted to the
// cell width. Styling is applied at view time.
type cell struct {
	badge string
	title string
	meta  string
}

// grid is the renderer side of the gallery controller: it mirrors the entry
// list by applying edit scripts and caches one cell per entry.
type grid struct {
	entries []gallery.Entry
	cells   map[string]cell
	hasMore bool
	scripts int

	presentation search.Presentation
	columns      int
	width        int
	strings      Strings
}

func newGrid(p search.Presentation, columns int, s Strings) *grid {
	return &grid{
		cells:        make(map[string]cell),
		presentation: p,
		columns:      columns,
		strings:      s,
	}
}

func (g *grid) ApplyEditScript(s gallery.EditScript) {
	for _, d := range s.Deletions {
		delete(g.cells, g.entries[d].ID())
	}
	g.entries = s.Apply(g.entries)
	for _, ins := range s.Insertions {
		g.cells[ins.Item.ID()] = g.makeCell(ins.Item)
	}
	for _, u := range s.Updates {
		g.cells[u.Item.ID()] = g.makeCell(u.Item)
	}
	g.hasMore = s.HasMore
	g.scripts++
}

func (g *grid) cols() int { return columnCount(g.presentation, g.columns) }

func (g *grid) cellWidth() int { return cellWidth(max(1, g.width), g.cols()) }

func (g *grid) rows() int {
	c := g.cols()
	return (len(g.entries) + c - 1) / c
}

// visibleRange returns the first and last entry index shown when the view
// starts at rowOffset and has room for visibleRows rows. last is -1 when
// nothing is visible.
func (g *grid) visibleRange(rowOffset, visibleRows int) (first, last int) {
	c := g.cols()
	first = rowOffset * c
	last = min(len(g.entries), (rowOffset+visibleRows)*c) - 1
	if first > last {
		return first, -1
	}
	return first, last
}

func (g *grid) makeCell(e gallery.Entry) cell {
	r := e.Result
	w := g.cellWidth()

	title := r.Title
	if title == "" {
		title = r.ID
	}
	title = strings.Join(strings.Fields(title), " ")

	var meta []string
	if r.Width > 0 && r.Height > 0 {
		meta = append(meta, fmt.Sprintf("%d×%d", r.Width, r.Height))
	}
	if host := hostOf(r.PageURL, r.ContentURL); host != "" {
		meta = append(meta, host)
	}

	badge := "▣ " + g.strings.Images
	if r.Kind == search.KindGIFs || r.MIMEType == "image/gif" {
		badge = "◉ " + g.strings.GIFs
	}
	badge = fmt.Sprintf("%s #%d", badge, e.Index+1)

	return cell{
		badge: ansi.Truncate(badge, w, "…"),
		title: ansi.Truncate(title, w, "…"),
		meta:  ansi.Truncate(strings.Join(meta, " · "), w, "…"),
	}
}

func hostOf(urls ...string) string {
	for _, raw := range urls {
		if u, err := url.Parse(raw); err == nil && u.Host != "" {
			return strings.TrimPrefix(u.Host, "www.")
		}
	}
	return ""
}

// render draws rows [rowOffset, rowOffset+visibleRows) of the grid.
func (g *grid) render(t Theme, rowOffset, visibleRows, cursor int, selected map[string]bool) string {
	c := g.cols()
	w := g.cellWidth()
	gap := strings.Repeat(" ", cellSpacing)

	var b strings.Builder
	for row := rowOffset; row < min(g.rows(), rowOffset+visibleRows); row++ {
		var lines [][]string
		for col := 0; col < c; col++ {
			i := row*c + col
			if i >= len(g.entries) {
				break
			}
			e := g.entries[i]
			lines = append(lines, g.renderCell(t, g.cells[e.ID()], w, i == cursor, selected[e.ID()], e.Result.Kind))
		}

		height := rowHeight(g.presentation) - 1
		for l := 0; l < height; l++ {
			parts := make([]string, len(lines))
			for k := range lines {
				parts[k] = lines[k][l]
			}
			b.WriteString(strings.Join(parts, gap))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (g *grid) renderCell(t Theme, cl cell, w int, focused, selected bool, kind search.Kind) []string {
	fit := func(s lipgloss.Style, text string) string {
		return s.Render(text + strings.Repeat(" ", max(0, w-ansi.StringWidth(text))))
	}

	badgeStyle := t.Image
	if kind == search.KindGIFs {
		badgeStyle = t.GIF
	}
	titleStyle := t.Title
	switch {
	case focused:
		titleStyle = t.FocusedCell
	case selected:
		titleStyle = t.Selected
	}

	badge := cl.badge
	if selected {
		badge = ansi.Truncate("✓ "+badge, w, "…")
		badgeStyle = t.Selected
	}

	if g.presentation == search.PresentationList {
		return []string{
			fit(titleStyle, cl.title),
			fit(t.Meta, ansi.Truncate(badge+"  "+cl.meta, w, "…")),
		}
	}
	return []string{
		fit(badgeStyle, badge),
		fit(titleStyle, cl.title),
		fit(t.Meta, cl.meta),
	}
}
