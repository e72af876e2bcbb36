// Package theme picks colors for the terminal feed and syntax styles for the HTML feed.
package theme

import (
	"html/template"
	"slices"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"

	"github.com/debemdeboas/the-feed/internal/cache"
	"github.com/debemdeboas/the-feed/internal/config"
)

// Palette is the set of terminal colors used by the feed view.
type Palette struct {
	Title   lipgloss.Color
	Accent  lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Border  lipgloss.Color
	Avatar  lipgloss.Color
	Warning lipgloss.Color
}

var palettes = map[string]Palette{
	config.DarkTheme: {
		Title:   lipgloss.Color("212"),
		Accent:  lipgloss.Color("63"),
		Text:    lipgloss.Color("252"),
		Muted:   lipgloss.Color("244"),
		Border:  lipgloss.Color("238"),
		Avatar:  lipgloss.Color("99"),
		Warning: lipgloss.Color("203"),
	},
	config.LightTheme: {
		Title:   lipgloss.Color("161"),
		Accent:  lipgloss.Color("25"),
		Text:    lipgloss.Color("235"),
		Muted:   lipgloss.Color("242"),
		Border:  lipgloss.Color("250"),
		Avatar:  lipgloss.Color("57"),
		Warning: lipgloss.Color("160"),
	},
}

// GetPalette returns the palette for theme, falling back to the default theme.
func GetPalette(theme string) Palette {
	if p, ok := palettes[theme]; ok {
		return p
	}
	return palettes[config.DefaultTheme]
}

func GetDefaultSyntaxTheme(theme string) string {
	if theme == config.LightTheme {
		return config.DefaultLightSyntaxTheme
	}
	return config.DefaultDarkSyntaxTheme
}

// GetSyntaxTheme returns the configured syntax style, or the default one for the UI theme.
func GetSyntaxTheme(ui config.UIConfig) string {
	if ui.SyntaxTheme != "" {
		return ui.SyntaxTheme
	}
	return GetDefaultSyntaxTheme(ui.Theme)
}

func GetSyntaxThemes() []string {
	styleNames := styles.Names()
	slices.Sort(styleNames)
	return styleNames
}

func GetFormatter() *html.Formatter {
	return html.New(
		html.WithClasses(true),
		html.TabWidth(4),
		html.WrapLongLines(true),
	)
}

func GenerateSyntaxCSS(style string) template.CSS {
	if css, ok := cache.GetSyntaxCSS(style); ok {
		return css
	}

	var buf strings.Builder
	s := styles.Get(style)

	bg := s.Get(chroma.Background)
	if !bg.Colour.IsSet() {
		// Pick a readable text color when the style doesn't supply one
		luminance := (0.299*float64(bg.Background.Red()) +
			0.587*float64(bg.Background.Green()) +
			0.114*float64(bg.Background.Blue())) / 255
		if luminance > 0.5 {
			buf.WriteString(".chroma { color: #181818; }\n")
		}
	}

	if err := GetFormatter().WriteCSS(&buf, s); err != nil {
		return ""
	}
	css := template.CSS(buf.String())
	cache.SetSyntaxCSS(style, css)
	return css
}
