package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	chromastyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	md_html "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/debemdeboas/the-feed/internal/cache"
	"github.com/debemdeboas/the-feed/internal/feed"
	"github.com/debemdeboas/the-feed/internal/model"
	"github.com/debemdeboas/the-feed/internal/theme"
	"github.com/debemdeboas/the-feed/internal/util"
)

//go:embed templates/*
var templates embed.FS

const templateFeed = "feed.html"

var (
	feedTemplate     *template.Template
	feedTemplateErr  error
	feedTemplateOnce sync.Once
)

func loadFeedTemplate() (*template.Template, error) {
	feedTemplateOnce.Do(func() {
		feedTemplate, feedTemplateErr = template.ParseFS(templates, "templates/"+templateFeed)
	})
	return feedTemplate, feedTemplateErr
}

type postView struct {
	ID       model.PostID
	Initial  string
	Author   string
	Date     string
	ISODate  string
	Content  template.HTML
	ImageURL string
}

type pageView struct {
	Title       string
	Theme       string
	SyntaxCSS   template.CSS
	Draft       model.Draft
	Editing     bool
	SubmitLabel string
	EmptyText   string
	Posts       []postView
}

// HTML writes a standalone page showing the draft form and the feed. Post content is rendered
// as markdown with raw HTML dropped; fenced code is highlighted with syntaxTheme.
func HTML(w io.Writer, snap feed.Snapshot, o Options, syntaxTheme string) error {
	tmpl, err := loadFeedTemplate()
	if err != nil {
		return fmt.Errorf("error parsing feed template: %w", err)
	}

	page := pageView{
		Title:       o.Title,
		Theme:       o.Theme,
		SyntaxCSS:   theme.GenerateSyntaxCSS(syntaxTheme),
		Draft:       snap.Draft,
		Editing:     snap.Mode == feed.Editing,
		SubmitLabel: SubmitLabel(snap.Mode),
		EmptyText:   EmptyFeedText,
		Posts:       make([]postView, 0, len(snap.Posts)),
	}

	for _, p := range snap.Posts {
		pv := postView{
			ID:       p.ID,
			Initial:  p.Initial(),
			Author:   p.Author,
			Date:     o.formatDate(p.CreatedDate),
			Content:  template.HTML(RenderContentCached([]byte(p.Content), syntaxTheme)),
			ImageURL: p.ImageURL,
		}
		if !p.CreatedDate.IsZero() {
			pv.ISODate = p.CreatedDate.UTC().Format(time.RFC3339)
		}
		page.Posts = append(page.Posts, pv)
	}

	return tmpl.Execute(w, page)
}

// RenderContentCached is RenderContent memoized by content hash and syntax style.
func RenderContentCached(md []byte, syntaxTheme string) []byte {
	hash := util.ContentHash(md)
	if html, ok := cache.GetRenderedContent(hash, syntaxTheme); ok {
		renderLogger.Debug().Str("content_hash", hash).Msg("Cache hit for rendered content")
		return html
	}

	html := RenderContent(md, syntaxTheme)
	cache.SetRenderedContent(hash, syntaxTheme, html)
	return html
}

// RenderContent renders post content as markdown. Raw HTML in the content is skipped and links or
// images whose URL is not http, https, mailto or relative are not emitted.
func RenderContent(md []byte, syntaxTheme string) []byte {
	opts := md_html.RendererOptions{
		Flags: md_html.CommonFlags | md_html.HrefTargetBlank | md_html.SkipHTML |
			md_html.Safelink | md_html.NofollowLinks | md_html.NoreferrerLinks,
		RenderNodeHook: func(w io.Writer, node ast.Node, entering bool) (ast.WalkStatus, bool) {
			if img, ok := node.(*ast.Image); ok && !isSafeURL(img.Destination) {
				return ast.SkipChildren, true
			}
			if code, ok := node.(*ast.CodeBlock); ok && entering {
				var lang string
				if info := code.Info; info != nil {
					lang = string(info)
				}
				fmt.Fprintf(w, "<div class=\"highlight\">%s</div>", HighlightCode(string(code.Literal), lang, syntaxTheme))
				return ast.GoToNext, true
			}
			return ast.GoToNext, false
		},
	}

	doc := parser.NewWithExtensions(
		parser.CommonExtensions | parser.HardLineBreak | parser.NoEmptyLineBeforeBlock,
	).Parse(markdown.NormalizeNewlines(md))

	renderer := md_html.NewRenderer(opts)
	renderer.IsSafeURLOverride = isSafeURL
	return markdown.Render(doc, renderer)
}

func isSafeURL(dest []byte) bool {
	u, err := url.Parse(strings.TrimSpace(string(dest)))
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "", "http", "https", "mailto":
		return true
	default:
		return false
	}
}

// HighlightCode formats code with chroma; on failure the code is returned HTML-escaped.
func HighlightCode(code, language, syntaxTheme string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return "<pre>" + template.HTMLEscapeString(code) + "</pre>"
	}

	var buf strings.Builder
	if err := theme.GetFormatter().Format(&buf, chromastyles.Get(syntaxTheme), iterator); err != nil {
		renderLogger.Warn().Err(err).Str("language", language).Msg("Error highlighting code")
		return "<pre>" + template.HTMLEscapeString(code) + "</pre>"
	}
	return buf.String()
}
