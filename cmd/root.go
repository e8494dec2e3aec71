package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"charm.land/log/v2"
	"github.com/spf13/cobra"

	"github.com/Gaurav-Gosain/websearch/config"
	"github.com/Gaurav-Gosain/websearch/output"
	"github.com/Gaurav-Gosain/websearch/search"
	"github.com/Gaurav-Gosain/websearch/tui"
)

type flags struct {
	ConfigPath string
	Mode       string
	Source     string
	Target     string
	Geo        string
	Theme      string
	PageSize   int
	Pages      int
	Columns    int
	List       bool
	OutputDir  string
	JSON       bool
	NoTUI      bool
	LogFile    string
	Verbose    bool
	WordWrap   int
}

func NewRootCmd() *cobra.Command {
	f := &flags{}

	cmd := &cobra.Command{
		Use:   "websearch [query...]",
		Short: "Search the web for images and GIFs from the terminal",
		Long:  "An interactive image and GIF search panel. Results load page by page as you scroll;\nselect the ones you want and send them to the terminal, a directory or JSON.",
		Example: `  # Browse image results
  websearch red panda

  # Search GIFs on Giphy (needs WEBSEARCH_GIPHY_API_KEY)
  websearch --mode gifs --source giphy dancing cat

  # Wikimedia Commons photos taken near a point
  websearch --source commons --geo 48.8584,2.2945 tower

  # Non-interactive: three pages as JSON
  websearch --no-tui --pages 3 --json aurora > aurora.json`,
		RunE: func(c *cobra.Command, args []string) error {
			return run(c.Context(), c, f, args)
		},
		// The query is positional; fang's completion and man subcommands
		// must not swallow it.
		Args:             cobra.ArbitraryArgs,
		TraverseChildren: true,
	}

	cmd.Flags().StringVarP(&f.ConfigPath, "config", "c", "", "Config file (default: $XDG_CONFIG_HOME/websearch/config.toml)")
	cmd.Flags().StringVarP(&f.Mode, "mode", "m", string(search.KindImages), "Initial tab: images or gifs")
	cmd.Flags().StringVarP(&f.Source, "source", "s", "", "Provider for the initial tab (bing, commons, giphy)")
	cmd.Flags().StringVarP(&f.Target, "target", "t", "", "Locale/market results are requested for, e.g. en-US")
	cmd.Flags().StringVar(&f.Geo, "geo", "", "Location hint as lat,long")
	cmd.Flags().StringVar(&f.Theme, "theme", "", "Theme: "+strings.Join(tui.ThemeNames(), ", "))
	cmd.Flags().IntVarP(&f.PageSize, "page-size", "n", 0, "Results per page")
	cmd.Flags().IntVarP(&f.Pages, "pages", "p", 1, "Pages to fetch in non-interactive mode")
	cmd.Flags().IntVar(&f.Columns, "columns", 0, "Grid columns")
	cmd.Flags().BoolVar(&f.List, "list", false, "Show results as a list instead of a grid")
	cmd.Flags().StringVarP(&f.OutputDir, "output-dir", "o", "", "Save sent results as .md files to directory")
	cmd.Flags().BoolVar(&f.JSON, "json", false, "Print sent results as JSON")
	cmd.Flags().BoolVar(&f.NoTUI, "no-tui", false, "Run without the interactive panel")
	cmd.Flags().StringVar(&f.LogFile, "log-file", "", "Write logs to file while the panel is open")
	cmd.Flags().BoolVarP(&f.Verbose, "verbose", "v", false, "Debug logging")
	cmd.Flags().IntVarP(&f.WordWrap, "word-wrap", "w", 80, "Word wrap width for terminal rendering")

	return cmd
}

func run(ctx context.Context, c *cobra.Command, f *flags, args []string) error {
	cfg, err := config.Load(f.ConfigPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	applyFlags(c, f, &cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	mode, err := parseMode(f.Mode)
	if err != nil {
		return err
	}
	geo, err := parseGeo(f.Geo)
	if err != nil {
		return err
	}
	theme, ok := tui.ThemeByName(cfg.Theme)
	if !ok {
		return fmt.Errorf("unknown theme %q (available: %s)", cfg.Theme, strings.Join(tui.ThemeNames(), ", "))
	}

	sources := map[search.Kind]string{
		search.KindImages: cfg.Sources.Images,
		search.KindGIFs:   cfg.Sources.GIFs,
	}
	if f.Source != "" {
		sources[mode] = f.Source
	}

	headless := f.NoTUI || !tui.IsTTY()
	logger, closeLog, err := newLogger(f, headless)
	if err != nil {
		return err
	}
	defer closeLog()

	registry, err := buildRegistry(cfg, logger)
	if err != nil {
		return err
	}
	for _, s := range sources {
		if !slices.Contains(registry.Sources(), s) {
			return fmt.Errorf("%w %q (available: %s)", search.ErrUnknownSource, s, strings.Join(registry.Sources(), ", "))
		}
	}

	var presentation search.Presentation
	if f.List {
		presentation = search.PresentationList
	}

	opts := tui.Options{
		Context:           ctx,
		Fetcher:           registry,
		Logger:            logger,
		Query:             collectQuery(args),
		Mode:              mode,
		Sources:           sources,
		Target:            cfg.Target,
		Geo:               geo,
		PageSize:          cfg.PageSize,
		LoadMoreThreshold: cfg.LoadMoreThreshold,
		Columns:           cfg.Columns,
		Presentation:      presentation,
		Theme:             theme,
		Strings:           tui.DefaultStrings(),
	}

	var results []search.Result
	if headless {
		if opts.Query == "" {
			return fmt.Errorf("%w; pass it as arguments or pipe via stdin", search.ErrEmptyQuery)
		}
		results, err = tui.RunHeadless(opts, max(1, f.Pages))
		if err != nil {
			return err
		}
	} else {
		outcome, err := tui.Run(opts)
		if err != nil {
			return err
		}
		if outcome.Cancelled {
			return nil
		}
		results = outcome.Sent
	}

	switch {
	case f.OutputDir != "":
		_, err := output.WriteFiles(results, f.OutputDir, os.Stderr)
		return err
	case f.JSON:
		return output.WriteJSON(os.Stdout, results)
	default:
		return output.RenderTerminal(os.Stdout, results, theme.GlamourStyle, f.WordWrap)
	}
}

// applyFlags lets explicitly set flags win over file and environment.
func applyFlags(c *cobra.Command, f *flags, cfg *config.Config) {
	changed := c.Flags().Changed
	if changed("target") {
		cfg.Target = f.Target
	}
	if changed("theme") {
		cfg.Theme = f.Theme
	}
	if changed("page-size") {
		cfg.PageSize = f.PageSize
	}
	if changed("columns") {
		cfg.Columns = f.Columns
	}
}

func newLogger(f *flags, headless bool) (*log.Logger, func(), error) {
	var w io.Writer = io.Discard
	closeFn := func() {}
	switch {
	case f.LogFile != "":
		file, err := os.OpenFile(f.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		w = file
		closeFn = func() { _ = file.Close() }
	case headless:
		w = os.Stderr
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: f.LogFile != "",
		Prefix:          "websearch",
	})
	logger.SetLevel(log.InfoLevel)
	if f.Verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger, closeFn, nil
}

func parseMode(s string) (search.Kind, error) {
	switch k := search.Kind(strings.ToLower(s)); k {
	case search.KindImages, search.KindGIFs:
		return k, nil
	}
	return "", fmt.Errorf("unknown mode %q (want images or gifs)", s)
}

func parseGeo(s string) (*search.GeoPoint, error) {
	if s == "" {
		return nil, nil
	}
	latStr, longStr, ok := strings.Cut(s, ",")
	if !ok {
		return nil, fmt.Errorf("invalid --geo %q: want lat,long", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil || lat < -90 || lat > 90 {
		return nil, fmt.Errorf("invalid latitude in --geo %q", s)
	}
	long, err := strconv.ParseFloat(strings.TrimSpace(longStr), 64)
	if err != nil || long < -180 || long > 180 {
		return nil, fmt.Errorf("invalid longitude in --geo %q", s)
	}
	return &search.GeoPoint{Latitude: lat, Longitude: long}, nil
}

// collectQuery joins the arguments, or reads the first non-empty stdin line
// when stdin is piped and no arguments were given.
func collectQuery(args []string) string {
	if q := strings.TrimSpace(strings.Join(args, " ")); q != "" {
		return q
	}

	stat, err := os.Stdin.Stat()
	if err != nil || (stat.Mode()&os.ModeCharDevice) != 0 {
		return ""
	}
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			return line
		}
	}
	return ""
}
