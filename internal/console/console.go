// Package console drives the feed controller from a line-oriented terminal session.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/debemdeboas/the-feed/internal/config"
	"github.com/debemdeboas/the-feed/internal/feed"
	"github.com/debemdeboas/the-feed/internal/model"
	"github.com/debemdeboas/the-feed/internal/render"
	"github.com/debemdeboas/the-feed/internal/theme"
)

var consoleLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	consoleLogger = l
}

const usage = `Commands:
  refresh              reload the feed
  author <text>        set the author
  content <text>       set the content
  image <url>          set the image URL
  post                 submit the draft
  edit <n|id>          edit a post
  cancel               stop editing
  delete <n|id>        delete a post
  show                 print the feed
  html [file]          write the feed as HTML
  help                 show this help
  quit                 exit`

type Options struct {
	View        render.Options
	SyntaxTheme string
}

func OptionsFromConfig(ui config.UIConfig) Options {
	return Options{
		View:        render.OptionsFromConfig(ui),
		SyntaxTheme: theme.GetSyntaxTheme(ui),
	}
}

type Console struct {
	ctrl *feed.Controller
	in   io.Reader
	out  io.Writer
	opts Options

	ctx    context.Context
	lines  chan string
	prompt lipgloss.Style
	warn   lipgloss.Style
}

func New(ctrl *feed.Controller, in io.Reader, out io.Writer, opts Options) *Console {
	p := theme.GetPalette(opts.View.Theme)
	return &Console{
		ctrl:   ctrl,
		in:     in,
		out:    out,
		opts:   opts,
		prompt: lipgloss.NewStyle().Foreground(p.Accent).Bold(true),
		warn:   lipgloss.NewStyle().Foreground(p.Warning),
	}
}

// Run loads the feed once and then processes commands until quit, end of input or ctx is done.
// The view is printed again every time the controller publishes a new snapshot.
func (c *Console) Run(ctx context.Context) error {
	sub := c.ctrl.Subscribe()
	defer sub.Close()

	c.ctx = ctx
	c.lines = make(chan string)
	go c.readLines()

	c.ctrl.Refresh(ctx)
	c.drain(sub.C)
	c.show(c.ctrl.Snapshot())
	c.writePrompt()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case snap, ok := <-sub.C:
			if !ok {
				return nil
			}
			c.show(snap)
			c.writePrompt()

		case line, ok := <-c.lines:
			if !ok {
				c.flush(sub.C)
				return nil
			}
			quit := c.handle(ctx, line)
			c.flush(sub.C)
			if quit {
				return nil
			}
			c.writePrompt()
		}
	}
}

func (c *Console) readLines() {
	defer close(c.lines)

	scanner := bufio.NewScanner(c.in)
	for scanner.Scan() {
		c.lines <- scanner.Text()
	}
	if err := scanner.Err(); err != nil {
		consoleLogger.Error().Err(err).Msg("Error reading input")
	}
}

// drain discards a pending snapshot.
func (c *Console) drain(ch <-chan feed.Snapshot) {
	select {
	case <-ch:
	default:
	}
}

// flush prints a pending snapshot, if any.
func (c *Console) flush(ch <-chan feed.Snapshot) {
	select {
	case snap, ok := <-ch:
		if ok {
			c.show(snap)
		}
	default:
	}
}

func (c *Console) show(snap feed.Snapshot) {
	fmt.Fprintln(c.out, render.Terminal(snap, c.opts.View))
}

func (c *Console) writePrompt() {
	fmt.Fprint(c.out, c.prompt.Render("> "))
}

func (c *Console) printError(format string, args ...any) {
	fmt.Fprintln(c.out, c.warn.Render(fmt.Sprintf(format, args...)))
}

// handle runs one command line and reports whether the session should end.
func (c *Console) handle(ctx context.Context, line string) bool {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	cmd = strings.ToLower(cmd)
	arg = strings.TrimSpace(arg)

	consoleLogger.Debug().Str("command", cmd).Msg("Handling command")

	switch cmd {
	case "":
	case "quit", "exit":
		return true
	case "help":
		fmt.Fprintln(c.out, usage)
	case "refresh":
		c.ctrl.Refresh(ctx)
	case "show":
		c.show(c.ctrl.Snapshot())
	case "author", "content", "image":
		c.setField(cmd, arg)
	case "post":
		c.ctrl.Submit(ctx)
	case "edit":
		if id, ok := c.resolve(arg); ok {
			c.ctrl.BeginEditByID(id)
		}
	case "cancel":
		c.ctrl.CancelEdit()
	case "delete":
		if id, ok := c.resolve(arg); ok {
			c.ctrl.DeleteOne(ctx, id, c.confirm)
		}
	case "html":
		c.writeHTML(arg)
	default:
		c.printError("unknown command %q, type help for a list", cmd)
	}
	return false
}

func (c *Console) setField(name, value string) {
	field, err := model.ParseDraftField(name)
	if err != nil {
		c.printError("%v", err)
		return
	}
	if field == model.FieldAuthor && c.ctrl.Snapshot().Mode == feed.Editing {
		c.printError("author cannot be changed while editing")
		return
	}
	c.ctrl.UpdateDraftField(field, value)
}

// resolve maps a 1-based position in the feed, or a post id, to a post id of the current list.
func (c *Console) resolve(arg string) (model.PostID, bool) {
	if arg == "" {
		c.printError("expected a post number or id")
		return "", false
	}

	posts := c.ctrl.Snapshot().Posts
	if n, err := strconv.Atoi(arg); err == nil && n >= 1 && n <= len(posts) {
		return posts[n-1].ID, true
	}
	if p, ok := c.ctrl.Post(model.PostID(arg)); ok {
		return p.ID, true
	}

	c.printError("no such post: %s", arg)
	return "", false
}

// confirm asks on the output and reads the answer from the next input line. End of input or a
// done session context counts as no.
func (c *Console) confirm(prompt string) bool {
	fmt.Fprint(c.out, c.prompt.Render(prompt+" [y/N] "))

	var answer string
	select {
	case <-c.ctx.Done():
		return false
	case line, ok := <-c.lines:
		if !ok {
			return false
		}
		answer = line
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func (c *Console) writeHTML(path string) {
	snap := c.ctrl.Snapshot()

	if path == "" {
		if err := render.HTML(c.out, snap, c.opts.View, c.opts.SyntaxTheme); err != nil {
			c.printError("error rendering HTML: %v", err)
		}
		return
	}

	f, err := os.Create(path)
	if err != nil {
		c.printError("error creating %s: %v", path, err)
		return
	}
	defer f.Close()

	if err := render.HTML(f, snap, c.opts.View, c.opts.SyntaxTheme); err != nil {
		c.printError("error rendering HTML: %v", err)
		return
	}
	consoleLogger.Info().Str("path", path).Int("posts", len(snap.Posts)).Msg("Wrote HTML feed")
	fmt.Fprintf(c.out, "wrote %s\n", path)
}
