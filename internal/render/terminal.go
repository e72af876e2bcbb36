// Package render turns a feed snapshot into something a person can look at: a lipgloss styled
// terminal view or a standalone HTML page. Both are pure functions of the snapshot.
package render

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/debemdeboas/the-feed/internal/config"
	"github.com/debemdeboas/the-feed/internal/feed"
	"github.com/debemdeboas/the-feed/internal/model"
	"github.com/debemdeboas/the-feed/internal/theme"
)

var renderLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	renderLogger = l
}

const EmptyFeedText = "No posts yet."

type Options struct {
	Title      string
	Theme      string
	Width      int
	DateFormat string
	// Location for created dates; nil means time.Local.
	Location *time.Location
}

func OptionsFromConfig(ui config.UIConfig) Options {
	return Options{
		Title:      ui.Title,
		Theme:      ui.Theme,
		Width:      ui.Width,
		DateFormat: ui.DateFormat,
	}
}

func (o Options) formatDate(ts model.Timestamp) string {
	if ts.IsZero() {
		return ""
	}
	loc := o.Location
	if loc == nil {
		loc = time.Local
	}
	layout := o.DateFormat
	if layout == "" {
		layout = time.DateTime
	}
	return ts.In(loc).Format(layout)
}

func SubmitLabel(mode feed.Mode) string {
	if mode == feed.Editing {
		return "Update Post"
	}
	return "Post"
}

type styles struct {
	title   lipgloss.Style
	card    lipgloss.Style
	label   lipgloss.Style
	text    lipgloss.Style
	muted   lipgloss.Style
	avatar  lipgloss.Style
	author  lipgloss.Style
	button  lipgloss.Style
	warning lipgloss.Style
}

func newStyles(o Options) styles {
	p := theme.GetPalette(o.Theme)
	width := o.Width
	if width <= 0 {
		width = 72
	}

	return styles{
		title:   lipgloss.NewStyle().Foreground(p.Title).Bold(true).MarginBottom(1),
		card:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(p.Border).Padding(0, 1).Width(width),
		label:   lipgloss.NewStyle().Foreground(p.Muted).Width(9),
		text:    lipgloss.NewStyle().Foreground(p.Text),
		muted:   lipgloss.NewStyle().Foreground(p.Muted),
		avatar:  lipgloss.NewStyle().Foreground(p.Avatar).Bold(true),
		author:  lipgloss.NewStyle().Foreground(p.Accent).Bold(true),
		button:  lipgloss.NewStyle().Foreground(p.Accent).Bold(true),
		warning: lipgloss.NewStyle().Foreground(p.Warning),
	}
}

// clean drops control characters other than newline and tab so post text cannot drive the
// terminal.
func clean(text string) string {
	return strings.Map(func(r rune) rune {
		if r != '\n' && r != '\t' && unicode.IsControl(r) {
			return -1
		}
		return r
	}, text)
}

// Terminal renders the draft form followed by the feed.
func Terminal(snap feed.Snapshot, o Options) string {
	s := newStyles(o)

	var b strings.Builder
	b.WriteString(s.title.Render(o.Title))
	b.WriteString("\n")
	b.WriteString(renderForm(snap, s))
	b.WriteString("\n")
	b.WriteString(renderFeed(snap.Posts, o, s))
	return b.String()
}

func renderForm(snap feed.Snapshot, s styles) string {
	d := snap.Draft

	author := s.text.Render(clean(d.Author))
	if snap.Mode == feed.Editing {
		author += " " + s.muted.Render("(locked)")
	}

	lines := []string{
		lipgloss.JoinHorizontal(lipgloss.Top, s.label.Render("Author"), author),
		lipgloss.JoinHorizontal(lipgloss.Top, s.label.Render("Content"), s.text.Render(clean(d.Content))),
		lipgloss.JoinHorizontal(lipgloss.Top, s.label.Render("Image"), s.text.Render(clean(d.ImageURL))),
	}

	buttons := s.button.Render("[ " + SubmitLabel(snap.Mode) + " ]")
	if snap.Mode == feed.Editing {
		buttons += " " + s.warning.Render("[ Cancel ]")
		lines = append(lines, s.muted.Render("Editing post "+clean(string(d.EditingID))))
	}
	lines = append(lines, buttons)

	return s.card.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func renderFeed(posts []model.Post, o Options, s styles) string {
	if len(posts) == 0 {
		return s.card.Render(s.muted.Render(EmptyFeedText))
	}

	cards := make([]string, 0, len(posts))
	for i, p := range posts {
		cards = append(cards, renderPost(i+1, p, o, s))
	}
	return lipgloss.JoinVertical(lipgloss.Left, cards...)
}

func renderPost(n int, p model.Post, o Options, s styles) string {
	header := lipgloss.JoinHorizontal(lipgloss.Top,
		s.avatar.Render("("+clean(p.Initial())+")"),
		" ",
		s.author.Render(clean(p.Author)),
	)
	if date := o.formatDate(p.CreatedDate); date != "" {
		header += s.muted.Render(" · " + date)
	}

	lines := []string{header, s.text.Render(clean(p.Content))}
	if p.ImageURL != "" {
		lines = append(lines, s.muted.Render("image: "+clean(p.ImageURL)))
	}
	lines = append(lines, s.muted.Render(fmt.Sprintf("#%d  id %s  · edit %d · delete %d", n, clean(string(p.ID)), n, n)))

	return s.card.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
