package tui

import (
	"image/color"
	"sort"

	"charm.land/lipgloss/v2"
)

// Palette is the set of colors a theme is built from.
type Palette struct {
	Fg      color.Color
	Accent  color.Color
	Accent2 color.Color
	Info    color.Color
	Ok      color.Color
	Warn    color.Color
	Err     color.Color
	Comment color.Color
	Dark    color.Color
	Surface color.Color
	Gutter  color.Color
}

// Theme holds the styles the browser renders with. It is injected and can be
// swapped at runtime with UpdatePresentation.
type Theme struct {
	Name string
	// GlamourStyle is the glamour standard style used for the detail pager.
	GlamourStyle string

	Logo        lipgloss.Style
	Count       lipgloss.Style
	Dim         lipgloss.Style
	Subtle      lipgloss.Style
	Tab         lipgloss.Style
	ActiveTab   lipgloss.Style
	Cell        lipgloss.Style
	FocusedCell lipgloss.Style
	Selected    lipgloss.Style
	Title       lipgloss.Style
	Meta        lipgloss.Style
	Image       lipgloss.Style
	GIF         lipgloss.Style
	Error       lipgloss.Style
	Spinner     lipgloss.Style
	Prompt      lipgloss.Style

	BarBg    lipgloss.Style
	BarNote  lipgloss.Style
	BarHelp  lipgloss.Style
	BarMatch lipgloss.Style

	ProgressFilled lipgloss.Style
	ProgressEmpty  lipgloss.Style

	MatchGutter        string
	CurrentMatchGutter string
}

// NewTheme derives every style from p.
func NewTheme(name, glamourStyle string, p Palette) Theme {
	return Theme{
		Name:         name,
		GlamourStyle: glamourStyle,

		Logo:        lipgloss.NewStyle().Foreground(p.Dark).Background(p.Accent).Bold(true).Padding(0, 1),
		Count:       lipgloss.NewStyle().Foreground(p.Info).Bold(true),
		Dim:         lipgloss.NewStyle().Foreground(p.Comment),
		Subtle:      lipgloss.NewStyle().Foreground(p.Gutter),
		Tab:         lipgloss.NewStyle().Foreground(p.Comment).Padding(0, 1),
		ActiveTab:   lipgloss.NewStyle().Foreground(p.Dark).Background(p.Accent2).Bold(true).Padding(0, 1),
		Cell:        lipgloss.NewStyle().Foreground(p.Fg),
		FocusedCell: lipgloss.NewStyle().Foreground(p.Accent).Bold(true),
		Selected:    lipgloss.NewStyle().Foreground(p.Ok).Bold(true),
		Title:       lipgloss.NewStyle().Foreground(p.Fg),
		Meta:        lipgloss.NewStyle().Foreground(p.Comment),
		Image:       lipgloss.NewStyle().Foreground(p.Info),
		GIF:         lipgloss.NewStyle().Foreground(p.Warn),
		Error:       lipgloss.NewStyle().Foreground(p.Err),
		Spinner:     lipgloss.NewStyle().Foreground(p.Accent),
		Prompt:      lipgloss.NewStyle().Foreground(p.Accent),

		BarBg:    lipgloss.NewStyle().Background(p.Dark),
		BarNote:  lipgloss.NewStyle().Foreground(p.Fg).Background(p.Dark),
		BarHelp:  lipgloss.NewStyle().Foreground(p.Fg).Background(p.Surface),
		BarMatch: lipgloss.NewStyle().Foreground(p.Accent2).Background(p.Dark).Bold(true),

		ProgressFilled: lipgloss.NewStyle().Foreground(p.Accent),
		ProgressEmpty:  lipgloss.NewStyle().Foreground(p.Surface),

		MatchGutter:        lipgloss.NewStyle().Foreground(p.Accent2).Render("▍"),
		CurrentMatchGutter: lipgloss.NewStyle().Foreground(p.Accent).Bold(true).Render("▍"),
	}
}

var themes = map[string]Theme{
	"tokyo-night": NewTheme("tokyo-night", "tokyo-night", Palette{
		Fg:      lipgloss.Color("#a9b1d6"),
		Accent:  lipgloss.Color("#7aa2f7"),
		Accent2: lipgloss.Color("#bb9af7"),
		Info:    lipgloss.Color("#7dcfff"),
		Ok:      lipgloss.Color("#9ece6a"),
		Warn:    lipgloss.Color("#e0af68"),
		Err:     lipgloss.Color("#f7768e"),
		Comment: lipgloss.Color("#565f89"),
		Dark:    lipgloss.Color("#1a1b26"),
		Surface: lipgloss.Color("#292e42"),
		Gutter:  lipgloss.Color("#3b4261"),
	}),
	"dracula": NewTheme("dracula", "dracula", Palette{
		Fg:      lipgloss.Color("#f8f8f2"),
		Accent:  lipgloss.Color("#bd93f9"),
		Accent2: lipgloss.Color("#ff79c6"),
		Info:    lipgloss.Color("#8be9fd"),
		Ok:      lipgloss.Color("#50fa7b"),
		Warn:    lipgloss.Color("#f1fa8c"),
		Err:     lipgloss.Color("#ff5555"),
		Comment: lipgloss.Color("#6272a4"),
		Dark:    lipgloss.Color("#282a36"),
		Surface: lipgloss.Color("#44475a"),
		Gutter:  lipgloss.Color("#44475a"),
	}),
	"light": NewTheme("light", "light", Palette{
		Fg:      lipgloss.Color("#343b58"),
		Accent:  lipgloss.Color("#34548a"),
		Accent2: lipgloss.Color("#5a4a78"),
		Info:    lipgloss.Color("#166775"),
		Ok:      lipgloss.Color("#485e30"),
		Warn:    lipgloss.Color("#8f5e15"),
		Err:     lipgloss.Color("#8c4351"),
		Comment: lipgloss.Color("#9699a3"),
		Dark:    lipgloss.Color("#d5d6db"),
		Surface: lipgloss.Color("#e9e9ed"),
		Gutter:  lipgloss.Color("#c4c8da"),
	}),
}

// ThemeByName looks up a built-in theme.
func ThemeByName(name string) (Theme, bool) {
	t, ok := themes[name]
	return t, ok
}

// ThemeNames lists the built-in themes in sorted order.
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for n := range themes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Strings is the user-facing text of the browser.
type Strings struct {
	AppName     string
	Images      string
	GIFs        string
	Placeholder string
	Searching   string
	LoadingMore string
	NoResults   string
	TypeToStart string
	Rendering   string
	Help        string
	QueryHelp   string
	PagerHelp   string
	Send        string
	Cancel      string
	Selected    string
	Results     string
}

func DefaultStrings() Strings {
	return Strings{
		AppName:     "websearch",
		Images:      "Images",
		GIFs:        "GIFs",
		Placeholder: "Search the web",
		Searching:   "Searching…",
		LoadingMore: "Loading more…",
		NoResults:   "No results.",
		TypeToStart: "Type a query to start searching.",
		Rendering:   "Rendering…",
		Help:        "←↑↓→ move  •  space select  •  o open  •  tab mode  •  / search  •  m more  •  t theme  •  enter send  •  esc cancel",
		QueryHelp:   "enter search  •  esc back",
		PagerHelp:   "esc back",
		Send:        "send",
		Cancel:      "cancel",
		Selected:    "selected",
		Results:     "results",
	}
}
