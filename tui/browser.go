package tui

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textinput"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/glamour/v2"
	"charm.land/lipgloss/v2"
	"charm.land/log/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/Gaurav-Gosain/websearch/gallery"
	"github.com/Gaurav-Gosain/websearch/output"
	"github.com/Gaurav-Gosain/websearch/search"
)

const searchDebounce = 300 * time.Millisecond

// --- Messages ---

type (
	searchDebounceMsg struct{ seq int }
	searchDoneMsg     struct {
		seq  int
		coll *search.Collection
		err  error
	}
	glamourRenderedMsg struct {
		id       string
		rendered string
	}
)

// PresentationMsg swaps the theme and strings of a running browser.
type PresentationMsg struct {
	Theme   Theme
	Strings Strings
}

// --- Browser state ---

type browserState int

const (
	stateGrid browserState = iota
	statePager
)

type focusArea int

const (
	focusGrid focusArea = iota
	focusQuery
)

const (
	gridTopPadding    = 5 // blank + logo/tabs + query + blank + separator
	gridBottomPadding = 2 // status + help
	gridHPad          = 2
	pagerBarHeight    = 2 // progress line + info line
)

// Options configure a browser session.
type Options struct {
	Context context.Context
	Fetcher gallery.Fetcher
	Logger  *log.Logger

	Query string
	Mode  search.Kind
	// Sources maps each mode to the provider that serves it.
	Sources map[search.Kind]string
	Target  string
	Geo     *search.GeoPoint

	PageSize          int
	LoadMoreThreshold int
	Columns           int
	// Presentation overrides the layout the collection asks for.
	Presentation search.Presentation

	Theme   Theme
	Strings Strings
}

func (o *Options) defaults() {
	if o.Context == nil {
		o.Context = context.Background()
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	if o.Mode == "" {
		o.Mode = search.KindImages
	}
	if o.Columns <= 0 {
		o.Columns = 4
	}
	if o.Theme.Name == "" {
		o.Theme, _ = ThemeByName("tokyo-night")
	}
	if o.Strings.AppName == "" {
		o.Strings = DefaultStrings()
	}
}

// --- Model ---

// Model is the search panel: a query field, an Images/GIFs switch, the
// result grid and a detail pager.
type Model struct {
	opts    Options
	ctrl    *gallery.Controller
	grid    *grid
	theme   Theme
	strings Strings

	state  browserState
	focus  focusArea
	mode   search.Kind
	width  int
	height int

	query        textinput.Model
	spinner      spinner.Model
	debounceSeq  int
	searchSeq    int
	searching    bool
	cancelSearch context.CancelFunc
	err          error

	cursor    int
	rowOffset int
	selected  map[string]bool
	picked    []string // selection order

	// Pager view
	viewport    viewport.Model
	pagerInput  textinput.Model
	pagerSearch bool
	pagerQuery  string
	pagerID     string
	rendered    map[string]string

	// Pager search state
	matchLines []int
	matchIdx   int
	matchTotal int

	sent      []search.Result
	cancelled bool
}

// New builds a browser. The controller is created here and the grid is
// attached to it straight away.
func New(opts Options) Model {
	opts.defaults()

	ctrl := gallery.New(opts.Fetcher,
		gallery.WithContext(opts.Context),
		gallery.WithLogger(opts.Logger),
		gallery.WithPageSize(opts.PageSize),
	)
	presentation := opts.Presentation
	if presentation == "" {
		presentation = search.PresentationMedia
	}
	g := newGrid(presentation, opts.Columns, opts.Strings)
	ctrl.Attach(g)

	q := textinput.New()
	q.SetValue(opts.Query)
	q.CursorEnd()

	m := Model{
		opts:       opts,
		ctrl:       ctrl,
		grid:       g,
		mode:       opts.Mode,
		query:      q,
		pagerInput: textinput.New(),
		viewport:   viewport.New(),
		selected:   make(map[string]bool),
		rendered:   make(map[string]string),
	}
	m.applyPresentation(opts.Theme, opts.Strings)
	if strings.TrimSpace(opts.Query) == "" {
		m.focus = focusQuery
		m.query.Focus()
	}
	return m
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}
	if strings.TrimSpace(m.query.Value()) != "" {
		cmds = append(cmds, func() tea.Msg { return searchDebounceMsg{seq: 0} })
	}
	return tea.Batch(cmds...)
}

// UpdatePresentation swaps theme and strings and re-renders every cell.
func (m *Model) UpdatePresentation(t Theme, s Strings) tea.Cmd {
	m.applyPresentation(t, s)
	m.rendered = make(map[string]string)
	m.ctrl.Refresh()
	return m.spinner.Tick
}

func (m *Model) applyPresentation(t Theme, s Strings) {
	m.theme = t
	m.strings = s
	m.grid.strings = s

	m.spinner = spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(t.Spinner),
	)

	m.query.Prompt = "› "
	m.query.Placeholder = s.Placeholder
	qs := m.query.Styles()
	qs.Focused.Prompt = t.Prompt
	qs.Blurred.Prompt = t.Dim
	m.query.SetStyles(qs)

	m.pagerInput.Prompt = "Find: "
	ps := m.pagerInput.Styles()
	ps.Focused.Prompt = t.Prompt
	ps.Blurred.Prompt = t.Prompt
	m.pagerInput.SetStyles(ps)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		if m.state == statePager {
			return m, m.rerenderPager()
		}
		return m, m.maybeLoadMore()

	case tea.KeyPressMsg:
		if msg.String() == "ctrl+c" {
			m.cancel()
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case searchDebounceMsg:
		if msg.seq != m.debounceSeq {
			return m, nil
		}
		return m, m.startSearch()

	case searchDoneMsg:
		return m, m.finishSearch(msg)

	case gallery.PageLoadedMsg:
		if m.ctrl.Update(msg) {
			m.clampCursor()
			return m, m.maybeLoadMore()
		}
		return m, nil

	case PresentationMsg:
		return m, m.UpdatePresentation(msg.Theme, msg.Strings)

	case glamourRenderedMsg:
		m.rendered[msg.id] = msg.rendered
		if m.state == statePager && m.pagerID == msg.id {
			m.viewport.SetContent(msg.rendered)
			if m.pagerQuery != "" {
				m.findMatches()
			}
			m.viewport.GotoTop()
		}
		return m, nil
	}

	switch m.state {
	case statePager:
		return m.updatePager(msg)
	default:
		if m.focus == focusQuery {
			return m.updateQuery(msg)
		}
		return m.updateGrid(msg)
	}
}

func (m *Model) resize(w, h int) {
	m.width = w
	m.height = h
	m.grid.width = max(1, w-gridHPad*2)
	m.viewport.SetWidth(w)
	m.viewport.SetHeight(max(1, h-pagerBarHeight))
	m.rendered = make(map[string]string)
	m.ctrl.Refresh()
	m.ensureVisible()
}

// ══════════════════════════════════════════
// Searching
// ══════════════════════════════════════════

// source names the provider that serves mode k.
func (o Options) source(k search.Kind) string {
	if s, ok := o.Sources[k]; ok {
		return s
	}
	return "bing"
}

// firstPage is the request that starts a search for q.
func (o Options) firstPage(q string, k search.Kind) search.PageRequest {
	return search.PageRequest{
		SourceID: o.source(k),
		TargetID: o.Target,
		Query:    q,
		Geo:      o.Geo,
		Kind:     k,
		Limit:    o.PageSize,
	}
}

// startSearch issues the first page request for the current query and mode.
// Responses to earlier searches are dropped by sequence number.
func (m *Model) startSearch() tea.Cmd {
	m.searchSeq++
	if m.cancelSearch != nil {
		m.cancelSearch()
		m.cancelSearch = nil
	}

	q := strings.TrimSpace(m.query.Value())
	if q == "" {
		m.searching = false
		return nil
	}

	ctx, cancel := context.WithCancel(m.opts.Context)
	m.cancelSearch = cancel
	m.searching = true
	m.err = nil

	req := m.opts.firstPage(q, m.mode)
	m.opts.Logger.Debug("Searching", "source", req.SourceID, "query", q, "mode", m.mode)

	seq := m.searchSeq
	fetcher := m.opts.Fetcher
	return func() tea.Msg {
		coll, err := fetcher.FetchPage(ctx, req)
		return searchDoneMsg{seq: seq, coll: coll, err: err}
	}
}

func (m *Model) finishSearch(msg searchDoneMsg) tea.Cmd {
	if msg.seq != m.searchSeq {
		return nil
	}
	m.searching = false
	if m.cancelSearch != nil {
		m.cancelSearch()
		m.cancelSearch = nil
	}
	if msg.err != nil {
		m.err = msg.err
		m.opts.Logger.Warn("Search failed", "err", msg.err)
		return nil
	}
	if msg.coll == nil {
		return nil
	}

	if m.opts.Presentation == "" && msg.coll.Presentation != "" {
		m.grid.presentation = msg.coll.Presentation
	}
	if m.ctrl.SetResults(msg.coll) {
		m.cursor = 0
		m.rowOffset = 0
		m.selected = make(map[string]bool)
		m.picked = nil
	}
	return m.maybeLoadMore()
}

// switchMode flips between images and GIFs and searches again.
func (m *Model) switchMode() tea.Cmd {
	if m.mode == search.KindGIFs {
		m.mode = search.KindImages
	} else {
		m.mode = search.KindGIFs
	}
	return m.startSearch()
}

// maybeLoadMore asks for the next page once the last visible entry is
// within the threshold of the end of the list.
func (m *Model) maybeLoadMore() tea.Cmd {
	_, last := m.grid.visibleRange(m.rowOffset, m.visibleRows())
	if !shouldLoadMore(last, len(m.grid.entries), m.opts.LoadMoreThreshold, m.ctrl.HasMore()) {
		return nil
	}
	return m.ctrl.LoadMore()
}

func shouldLoadMore(lastVisible, count, threshold int, hasMore bool) bool {
	return hasMore && lastVisible >= 0 && lastVisible >= count-1-threshold
}

// ══════════════════════════════════════════
// Query field
// ══════════════════════════════════════════

func (m Model) updateQuery(msg tea.Msg) (tea.Model, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyPressMsg); ok {
		switch kmsg.String() {
		case "esc":
			m.focus = focusGrid
			m.query.Blur()
			return m, nil
		case "enter":
			m.focus = focusGrid
			m.query.Blur()
			m.debounceSeq++
			return m, m.startSearch()
		case "tab":
			return m, m.switchMode()
		}
	}

	var cmd tea.Cmd
	prev := m.query.Value()
	m.query, cmd = m.query.Update(msg)
	if m.query.Value() != prev {
		return m, tea.Batch(cmd, m.debounce())
	}
	return m, cmd
}

func (m *Model) debounce() tea.Cmd {
	m.debounceSeq++
	seq := m.debounceSeq
	return tea.Tick(searchDebounce, func(time.Time) tea.Msg {
		return searchDebounceMsg{seq: seq}
	})
}

// ══════════════════════════════════════════
// Grid
// ══════════════════════════════════════════

func (m Model) updateGrid(msg tea.Msg) (tea.Model, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return m, nil
	}

	cols := m.grid.cols()
	switch kmsg.String() {
	case "esc", "q":
		m.cancel()
		return m, tea.Quit
	case "enter":
		if m.send() {
			return m, tea.Quit
		}
		return m, nil
	case "/":
		m.focus = focusQuery
		m.query.CursorEnd()
		return m, m.query.Focus()
	case "tab", "shift+tab":
		return m, m.switchMode()
	case "t":
		return m, m.cycleTheme()
	case "m":
		return m, m.ctrl.LoadMore()
	case " ", "space":
		m.toggleSelected()
		return m, nil
	case "o":
		return m, m.openDetail(m.cursor)
	case "right", "l":
		m.moveCursor(1)
	case "left", "h":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(cols)
	case "up", "k":
		m.moveCursor(-cols)
	case "pgdown":
		m.moveCursor(cols * m.visibleRows())
	case "pgup":
		m.moveCursor(-cols * m.visibleRows())
	case "g", "home":
		m.cursor = 0
		m.rowOffset = 0
	case "G", "end":
		m.cursor = max(0, len(m.grid.entries)-1)
		m.ensureVisible()
	default:
		return m, nil
	}
	return m, m.maybeLoadMore()
}

func (m *Model) moveCursor(delta int) {
	n := len(m.grid.entries)
	if n == 0 {
		return
	}
	m.cursor = min(max(0, m.cursor+delta), n-1)
	m.ensureVisible()
}

func (m *Model) clampCursor() {
	m.cursor = min(m.cursor, max(0, len(m.grid.entries)-1))
	m.ensureVisible()
}

func (m *Model) ensureVisible() {
	row := m.cursor / m.grid.cols()
	vr := m.visibleRows()
	if row < m.rowOffset {
		m.rowOffset = row
	} else if row >= m.rowOffset+vr {
		m.rowOffset = row - vr + 1
	}
}

func (m Model) visibleRows() int {
	h := m.height
	if h == 0 {
		h = 24
	}
	avail := h - gridTopPadding - gridBottomPadding
	return max(1, avail/rowHeight(m.grid.presentation))
}

func (m *Model) toggleSelected() {
	if m.cursor >= len(m.grid.entries) {
		return
	}
	id := m.grid.entries[m.cursor].ID()
	if m.selected[id] {
		delete(m.selected, id)
		for i, p := range m.picked {
			if p == id {
				m.picked = append(m.picked[:i], m.picked[i+1:]...)
				break
			}
		}
		return
	}
	m.selected[id] = true
	m.picked = append(m.picked, id)
}

// send collects the selected results in selection order, or the focused
// one when nothing is selected. It reports false when there is nothing to
// send.
func (m *Model) send() bool {
	byID := make(map[string]search.Result, len(m.grid.entries))
	for _, e := range m.grid.entries {
		byID[e.ID()] = e.Result
	}

	var out []search.Result
	for _, id := range m.picked {
		if r, ok := byID[id]; ok {
			out = append(out, r)
		}
	}
	if len(out) == 0 && m.cursor < len(m.grid.entries) {
		out = append(out, m.grid.entries[m.cursor].Result)
	}
	if len(out) == 0 {
		return false
	}
	m.sent = out
	m.cancel()
	return true
}

func (m *Model) cancel() {
	if m.sent == nil {
		m.cancelled = true
	}
	if m.cancelSearch != nil {
		m.cancelSearch()
		m.cancelSearch = nil
	}
	m.ctrl.Cancel()
}

func (m *Model) cycleTheme() tea.Cmd {
	names := ThemeNames()
	next := names[0]
	for i, n := range names {
		if n == m.theme.Name {
			next = names[(i+1)%len(names)]
			break
		}
	}
	t, _ := ThemeByName(next)
	return m.UpdatePresentation(t, m.strings)
}

// ══════════════════════════════════════════
// Detail pager
// ══════════════════════════════════════════

func (m *Model) openDetail(idx int) tea.Cmd {
	if idx < 0 || idx >= len(m.grid.entries) {
		return nil
	}
	m.state = statePager
	m.pagerID = m.grid.entries[idx].ID()
	m.matchLines = nil
	m.matchIdx = 0
	m.matchTotal = 0

	if cached, ok := m.rendered[m.pagerID]; ok {
		m.viewport.SetContent(cached)
		m.viewport.GotoTop()
		return nil
	}

	m.viewport.SetContent(m.theme.Dim.Render("\n  " + m.strings.Rendering))
	return m.glamourCmd(m.grid.entries[idx].Result)
}

func (m Model) glamourCmd(r search.Result) tea.Cmd {
	md := output.Markdown(r)
	w := m.width
	style := m.theme.GlamourStyle
	return func() tea.Msg {
		ww := max(20, w-4)
		gr, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(ww),
		)
		if err != nil {
			return glamourRenderedMsg{id: r.ID, rendered: md}
		}
		out, err := gr.Render(md)
		if err != nil {
			return glamourRenderedMsg{id: r.ID, rendered: md}
		}
		return glamourRenderedMsg{id: r.ID, rendered: out}
	}
}

func (m *Model) rerenderPager() tea.Cmd {
	for _, e := range m.grid.entries {
		if e.ID() == m.pagerID {
			m.viewport.SetContent(m.theme.Dim.Render("\n  " + m.strings.Rendering))
			return m.glamourCmd(e.Result)
		}
	}
	m.state = stateGrid
	return nil
}

func (m Model) updatePager(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.pagerSearch {
		return m.updatePagerSearch(msg)
	}

	if kmsg, ok := msg.(tea.KeyPressMsg); ok {
		switch kmsg.String() {
		case "esc", "left", "h", "q":
			m.state = stateGrid
			m.clearSearch()
			return m, nil
		case " ", "space":
			m.toggleSelected()
			return m, nil
		case "g", "home":
			m.viewport.GotoTop()
			return m, nil
		case "G", "end":
			m.viewport.GotoBottom()
			return m, nil
		case "/":
			m.pagerSearch = true
			m.pagerInput.CursorEnd()
			return m, m.pagerInput.Focus()
		case "n":
			m.nextMatch()
			return m, nil
		case "N":
			m.prevMatch()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) updatePagerSearch(msg tea.Msg) (tea.Model, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyPressMsg); ok {
		switch kmsg.String() {
		case "esc":
			m.pagerSearch = false
			m.pagerInput.Blur()
			m.clearSearch()
			return m, nil
		case "enter":
			m.pagerSearch = false
			m.pagerInput.Blur()
			m.pagerQuery = m.pagerInput.Value()
			m.findMatches()
			if len(m.matchLines) > 0 {
				m.viewport.SetYOffset(m.matchLines[0])
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	prev := m.pagerInput.Value()
	m.pagerInput, cmd = m.pagerInput.Update(msg)
	if m.pagerInput.Value() != prev {
		m.pagerQuery = m.pagerInput.Value()
		m.findMatches()
	}
	return m, cmd
}

// refreshViewportContent marks matching lines in the gutter, starting from
// the unmarked render each time.
func (m *Model) refreshViewportContent() {
	original, ok := m.rendered[m.pagerID]
	if !ok {
		return
	}
	if m.pagerQuery == "" || m.matchTotal == 0 {
		m.viewport.SetContent(original)
		return
	}

	lines := strings.Split(original, "\n")
	current := -1
	if m.matchIdx < len(m.matchLines) {
		current = m.matchLines[m.matchIdx]
	}
	for _, i := range m.matchLines {
		if i >= len(lines) {
			break
		}
		if i == current {
			lines[i] = m.theme.CurrentMatchGutter + lines[i]
		} else {
			lines[i] = m.theme.MatchGutter + lines[i]
		}
	}
	m.viewport.SetContent(strings.Join(lines, "\n"))
}

func (m *Model) findMatches() {
	m.matchLines = nil
	m.matchIdx = 0
	m.matchTotal = 0

	if original, ok := m.rendered[m.pagerID]; ok && m.pagerQuery != "" {
		m.matchLines = matchingLines(original, m.pagerQuery)
		m.matchTotal = len(m.matchLines)
	}
	m.refreshViewportContent()
}

// matchingLines returns the line numbers of rendered whose visible text
// contains query, ignoring case.
func matchingLines(rendered, query string) []int {
	query = strings.ToLower(query)
	var out []int
	for i, line := range strings.Split(ansi.Strip(rendered), "\n") {
		if strings.Contains(strings.ToLower(line), query) {
			out = append(out, i)
		}
	}
	return out
}

func (m *Model) nextMatch() {
	if len(m.matchLines) == 0 {
		return
	}
	m.matchIdx = (m.matchIdx + 1) % len(m.matchLines)
	m.refreshViewportContent()
	m.viewport.SetYOffset(m.matchLines[m.matchIdx])
}

func (m *Model) prevMatch() {
	if len(m.matchLines) == 0 {
		return
	}
	m.matchIdx = (m.matchIdx - 1 + len(m.matchLines)) % len(m.matchLines)
	m.refreshViewportContent()
	m.viewport.SetYOffset(m.matchLines[m.matchIdx])
}

func (m *Model) clearSearch() {
	m.pagerQuery = ""
	m.pagerInput.SetValue("")
	m.matchLines = nil
	m.matchIdx = 0
	m.matchTotal = 0
	m.refreshViewportContent()
}

// ══════════════════════════════════════════
// Views
// ══════════════════════════════════════════

func (m Model) View() tea.View {
	var s string
	switch m.state {
	case statePager:
		s = m.pagerView()
	default:
		s = m.gridView()
	}
	v := tea.NewView(s)
	v.AltScreen = true
	return v
}

func (m Model) tabs() string {
	tab := func(label string, k search.Kind) string {
		if m.mode == k {
			return m.theme.ActiveTab.Render(label)
		}
		return m.theme.Tab.Render(label)
	}
	return tab(m.strings.Images, search.KindImages) + " " + tab(m.strings.GIFs, search.KindGIFs)
}

func (m Model) gridView() string {
	var b strings.Builder
	pad := strings.Repeat(" ", gridHPad)

	b.WriteString("\n")
	b.WriteString(pad)
	b.WriteString(m.theme.Logo.Render(m.strings.AppName))
	b.WriteString("  ")
	b.WriteString(m.tabs())
	if n := len(m.grid.entries); n > 0 {
		b.WriteString("  ")
		b.WriteString(m.theme.Count.Render(fmt.Sprintf("%d", n)))
		b.WriteString(m.theme.Dim.Render(" " + m.strings.Results))
		if len(m.picked) > 0 {
			b.WriteString(m.theme.Dim.Render(fmt.Sprintf("  •  %d %s", len(m.picked), m.strings.Selected)))
		}
	}
	b.WriteString("\n")
	b.WriteString(pad)
	b.WriteString(m.query.View())
	b.WriteString("\n\n")
	b.WriteString(pad)
	b.WriteString(m.theme.Subtle.Render(strings.Repeat("─", max(0, m.width-gridHPad*2))))
	b.WriteString("\n")

	body := ""
	switch {
	case len(m.grid.entries) > 0:
		body = m.grid.render(m.theme, m.rowOffset, m.visibleRows(), m.cursor, m.selected)
	case m.searching:
		body = "\n" + m.theme.Dim.Render(m.strings.Searching) + "\n"
	case strings.TrimSpace(m.query.Value()) == "":
		body = "\n" + m.theme.Dim.Render(m.strings.TypeToStart) + "\n"
	case m.err == nil:
		body = "\n" + m.theme.Dim.Render(m.strings.NoResults) + "\n"
	}
	lines := 0
	for _, line := range strings.SplitAfter(body, "\n") {
		if line == "" {
			continue
		}
		b.WriteString(pad)
		b.WriteString(line)
		lines++
	}

	h := m.height
	if h == 0 {
		h = 24
	}
	if avail := h - gridTopPadding - gridBottomPadding - lines; avail > 0 {
		b.WriteString(strings.Repeat("\n", avail))
	}

	b.WriteString(pad)
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(pad)
	if m.focus == focusQuery {
		b.WriteString(m.theme.Dim.Render(m.strings.QueryHelp))
	} else {
		b.WriteString(m.theme.Dim.Render(m.strings.Help))
	}
	return b.String()
}

func (m Model) statusLine() string {
	switch {
	case m.err != nil:
		return m.theme.Error.Render("✗ " + m.err.Error())
	case m.searching:
		return m.spinner.View() + " " + m.theme.Dim.Render(m.strings.Searching)
	case m.ctrl.Loading():
		return m.spinner.View() + " " + m.theme.Dim.Render(m.strings.LoadingMore)
	case len(m.grid.entries) > 0:
		more := ""
		if m.grid.hasMore {
			more = " +"
		}
		return m.theme.Dim.Render(fmt.Sprintf("%d/%d%s", m.cursor+1, len(m.grid.entries), more))
	}
	return ""
}

func (m Model) pagerView() string {
	var b strings.Builder
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	m.progressBarLine(&b)
	m.pagerInfoBar(&b)
	return b.String()
}

func (m Model) progressBarLine(b *strings.Builder) {
	pct := m.viewport.ScrollPercent()
	filled := min(int(math.Round(pct*float64(m.width))), m.width)
	empty := max(0, m.width-filled)
	b.WriteString(m.theme.ProgressFilled.Render(strings.Repeat("━", filled)))
	b.WriteString(m.theme.ProgressEmpty.Render(strings.Repeat("─", empty)))
	b.WriteString("\n")
}

func (m Model) pagerInfoBar(b *strings.Builder) {
	if m.pagerSearch {
		bar := "  " + m.pagerInput.View()
		if m.matchTotal > 0 {
			bar += m.theme.Dim.Render(fmt.Sprintf("  %d matches", m.matchTotal))
		} else if m.pagerQuery != "" {
			bar += m.theme.Dim.Render("  no matches")
		}
		pad := max(0, m.width-lipgloss.Width(bar))
		b.WriteString(m.theme.BarBg.Render(bar + strings.Repeat(" ", pad)))
		return
	}

	logo := m.theme.Logo.Render(m.strings.AppName)

	note := ""
	for _, e := range m.grid.entries {
		if e.ID() == m.pagerID {
			note = " " + e.Result.ContentURL + " "
			if m.selected[e.ID()] {
				note = " ✓" + note
			}
			break
		}
	}

	var matchInfo string
	if m.matchTotal > 0 {
		matchInfo = m.theme.BarMatch.Render(fmt.Sprintf(" %d/%d ", m.matchIdx+1, m.matchTotal))
	}

	helpParts := []string{m.strings.PagerHelp}
	if m.matchTotal > 0 {
		helpParts = append(helpParts, "n/N match")
	}
	helpParts = append(helpParts, "/ find", "space select")
	help := m.theme.BarHelp.Render(" " + strings.Join(helpParts, "  ") + " ")

	fixedW := lipgloss.Width(logo) + lipgloss.Width(matchInfo) + lipgloss.Width(help)
	noteMax := max(0, m.width-fixedW)
	if lipgloss.Width(note) > noteMax {
		if noteMax > 3 {
			note = ansi.Truncate(note, noteMax, "…")
		} else {
			note = ""
		}
	}
	note = m.theme.BarNote.Render(note)

	usedW := lipgloss.Width(logo) + lipgloss.Width(note) + lipgloss.Width(matchInfo) + lipgloss.Width(help)
	padding := m.theme.BarNote.Render(strings.Repeat(" ", max(0, m.width-usedW)))

	b.WriteString(logo)
	b.WriteString(note)
	b.WriteString(padding)
	b.WriteString(matchInfo)
	b.WriteString(help)
}

// Sent returns the results chosen with send, or nil.
func (m Model) Sent() []search.Result { return m.sent }

// Cancelled reports whether the user dismissed the panel without sending.
func (m Model) Cancelled() bool { return m.cancelled }

// Controller exposes the list controller backing the grid.
func (m Model) Controller() *gallery.Controller { return m.ctrl }
