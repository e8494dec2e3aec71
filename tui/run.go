package tui

import (
	"fmt"
	"io"
	stdlog "log"
	"os"

	tea "charm.land/bubbletea/v2"

	"github.com/Gaurav-Gosain/websearch/gallery"
	"github.com/Gaurav-Gosain/websearch/search"
)

// Outcome is how a browser session ended.
type Outcome struct {
	Sent      []search.Result
	Cancelled bool
	Query     string
	Mode      search.Kind
}

// IsTTY reports whether stderr is connected to a terminal.
func IsTTY() bool {
	fi, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// Run shows the search panel until the user sends or cancels.
func Run(opts Options) (Outcome, error) {
	m := New(opts)
	prog := tea.NewProgram(m)

	// Mute Go's standard logger and stderr while the alt screen is up so
	// library output (colly, resty) cannot corrupt it. Restore after.
	origStdlogOutput := stdlog.Writer()
	stdlog.SetOutput(io.Discard)
	origStderr := os.Stderr
	devNull, _ := os.Open(os.DevNull)
	if devNull != nil {
		os.Stderr = devNull
	}

	finalModel, err := prog.Run()

	os.Stderr = origStderr
	stdlog.SetOutput(origStdlogOutput)
	if devNull != nil {
		_ = devNull.Close()
	}

	if err != nil {
		return Outcome{}, fmt.Errorf("browser TUI error: %w", err)
	}

	fm := finalModel.(Model)
	return Outcome{
		Sent:      fm.Sent(),
		Cancelled: fm.Cancelled(),
		Query:     fm.query.Value(),
		Mode:      fm.mode,
	}, nil
}

// RunHeadless runs the search and up to pages-1 load-more rounds through a
// controller without a terminal UI, logging every edit script. It returns
// the deduplicated results.
func RunHeadless(opts Options, pages int) ([]search.Result, error) {
	opts.defaults()
	logger := opts.Logger

	ctrl := gallery.New(opts.Fetcher,
		gallery.WithContext(opts.Context),
		gallery.WithLogger(logger),
		gallery.WithPageSize(opts.PageSize),
	)

	var list []gallery.Entry
	ctrl.Attach(gallery.RendererFunc(func(s gallery.EditScript) {
		list = s.Apply(list)
		logger.Info("Results updated",
			"entries", s.Count,
			"inserted", len(s.Insertions),
			"deleted", len(s.Deletions),
			"more", s.HasMore,
		)
	}))

	req := opts.firstPage(opts.Query, opts.Mode)
	logger.Info("Searching", "source", req.SourceID, "query", req.Query, "mode", req.Kind, "pages", pages)

	coll, err := opts.Fetcher.FetchPage(opts.Context, req)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	ctrl.SetResults(coll)

	for page := 1; page < pages; page++ {
		cmd := ctrl.LoadMore()
		if cmd == nil {
			break
		}
		msg := cmd()
		if !ctrl.Update(msg) {
			if loaded, ok := msg.(gallery.PageLoadedMsg); ok && loaded.Err != nil {
				logger.Error("Load more failed", "err", loaded.Err)
			}
			break
		}
	}

	logger.Info("Search complete", "results", len(list))
	return ctrl.Results(), nil
}
