// Package render turns the body of a paper into the content of a page.
//
// Two backends are available. The Markdown backend is tried first: the body
// is normalized to Markdown, its math is guarded from the Markdown parser and
// restored afterwards. When it fails, or when the LaTeX backend is requested
// explicitly, the body is normalized to LaTeX and rendered by the LaTeX
// backend. After either path, math is typeset, the references are appended
// and the citation handlers are registered.
package render

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/hesusruiz/paperview/bibtex"
	"github.com/hesusruiz/paperview/citation"
	"github.com/hesusruiz/paperview/mathguard"
	"github.com/hesusruiz/paperview/normalize"
	"github.com/hesusruiz/paperview/page"
)

// DefaultAssetBase is where the stylesheets of the LaTeX backend are served from.
const DefaultAssetBase = "https://cdn.jsdelivr.net/npm/latex.js@0.12.6/dist/"

// Status messages of a successful render
const (
	StatusLoading       = "Loading paper…"
	StatusMarkdown      = "Rendered via Markdown"
	StatusLaTeXFallback = "Rendered via LaTeX fallback"
	StatusLaTeX         = "Rendered via LaTeX"
)

var (
	// ErrBackendUnavailable is returned when a backend is not configured.
	ErrBackendUnavailable = errors.New("markdown renderer is not available")

	// ErrAllBackendsFailed is returned when neither backend could render the paper.
	ErrAllBackendsFailed = errors.New("all renderers failed")
)

// Mode selects the backends tried.
type Mode int

const (
	// Auto tries Markdown first and falls back to LaTeX.
	Auto Mode = iota
	// ForceLaTeX skips the Markdown backend.
	ForceLaTeX
)

// ParseMode interprets the renderer option of a request or of the command line.
// "latexjs" and "latex" force the LaTeX backend, anything else means Auto.
func ParseMode(s string) Mode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "latexjs", "latex":
		return ForceLaTeX
	}
	return Auto
}

func (m Mode) String() string {
	if m == ForceLaTeX {
		return "latex"
	}
	return "auto"
}

// Backend names, as reported in results and metrics
const (
	BackendMarkdown = "markdown"
	BackendLaTeX    = "latex"
)

// MarkdownRenderer converts Markdown to HTML.
type MarkdownRenderer interface {
	Render(src string) (string, error)
}

// LaTeXRenderer converts LaTeX to HTML nodes.
type LaTeXRenderer interface {
	Render(src string) ([]*html.Node, error)

	// StylesAndScripts returns the elements the output needs in the head of
	// the page, with their URLs under base.
	StylesAndScripts(base string) []*html.Node
}

// Typesetter converts the math of a rendered subtree in place.
type Typesetter interface {
	Typeset(ctx context.Context, root *html.Node) error
}

// Request is the input of one render.
type Request struct {
	// Body of the document, without the preamble
	Body string

	// Entries of the bibliography, in file order. Nil when it could not be loaded.
	Entries []bibtex.Entry

	Mode Mode
}

// Result describes a successful render.
type Result struct {
	Backend  string
	Fallback bool
	Status   string

	// Order of the cited keys, and the references listed in the page
	Order      citation.Order
	References []citation.Resolved
}

// Selector renders with the Markdown backend and falls back to the LaTeX one.
// A nil Markdown renderer always fails, which makes every render a fallback.
type Selector struct {
	Markdown   MarkdownRenderer
	LaTeX      LaTeXRenderer
	Typesetter Typesetter

	// AssetBase is passed to LaTeXRenderer.StylesAndScripts
	AssetBase string

	Log     *zap.SugaredLogger
	Metrics *Metrics
}

// NewSelector returns a Selector with the default backends and typesetter.
func NewSelector(codeStyle string, log *zap.SugaredLogger) *Selector {
	return &Selector{
		Markdown:   NewMarkdown(codeStyle),
		LaTeX:      NewLaTeX(codeStyle),
		Typesetter: NewMathML(),
		AssetBase:  DefaultAssetBase,
		Log:        log,
	}
}

func (s *Selector) log() *zap.SugaredLogger {
	if s.Log == nil {
		return zap.NewNop().Sugar()
	}
	return s.Log
}

// Render puts the rendered body into the content of p and sets its status.
// On error the page is left for the caller to put in the error state.
func (s *Selector) Render(ctx context.Context, p *page.Page, req Request) (*Result, error) {
	start := time.Now()

	order := citation.Collect(req.Body)
	cites := citation.NewMap(order)

	res := &Result{Order: order}

	var mdErr error
	rendered := false

	if req.Mode != ForceLaTeX {
		out, err := s.renderMarkdown(req.Body, cites)
		if err == nil {
			err = p.SetContentHTML(out)
		}
		if err == nil {
			rendered = true
			res.Backend = BackendMarkdown
			res.Status = StatusMarkdown
		} else {
			mdErr = err
			s.log().Warnw("markdown render failed, trying LaTeX", "error", err)
			s.Metrics.fallback()
		}
	}

	if !rendered {
		nodes, err := s.renderLaTeX(req.Body, cites)
		if err != nil {
			s.Metrics.failure()
			if mdErr != nil {
				return nil, fmt.Errorf("%w: markdown: %v; latex: %w", ErrAllBackendsFailed, mdErr, err)
			}
			return nil, fmt.Errorf("latex renderer: %w", err)
		}

		p.AttachAssets(s.LaTeX.StylesAndScripts(s.assetBase()))
		p.SetContent(nodes)

		res.Backend = BackendLaTeX
		res.Fallback = mdErr != nil
		res.Status = StatusLaTeX
		if res.Fallback {
			res.Status = StatusLaTeXFallback
		}
	}
	p.SetStatus(res.Status)

	if s.Typesetter != nil {
		if err := s.Typesetter.Typeset(ctx, p.Content()); err != nil {
			s.Metrics.failure()
			return nil, fmt.Errorf("typesetting math: %w", err)
		}
	}

	if len(req.Entries) > 0 {
		res.References = References(req.Entries, order)
		if err := p.AppendContentHTML(RenderReferences(res.References)); err != nil {
			return nil, fmt.Errorf("adding references: %w", err)
		}
	}

	p.RegisterCitationHandlers(func(key string) string {
		return RenderDetail(key, Detail(res.References, key))
	})

	s.Metrics.rendered(res.Backend, time.Since(start))
	s.log().Debugw("paper rendered", "backend", res.Backend, "fallback", res.Fallback,
		"citations", len(order), "references", len(res.References))

	return res, nil
}

func (s *Selector) assetBase() string {
	if len(s.AssetBase) == 0 {
		return DefaultAssetBase
	}
	return s.AssetBase
}

// renderMarkdown runs the Markdown path. A panic of the backend is returned
// as an error.
func (s *Selector) renderMarkdown(body string, cites citation.Map) (out string, err error) {
	if s.Markdown == nil {
		return "", ErrBackendUnavailable
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("markdown renderer panicked: %v", r)
		}
	}()

	md := normalize.ToMarkdown(body, cites)
	guarded, guard := mathguard.Extract(md)

	out, err = s.Markdown.Render(guarded)
	if err != nil {
		return "", err
	}
	return guard.RestoreHTML(out), nil
}

func (s *Selector) renderLaTeX(body string, cites citation.Map) ([]*html.Node, error) {
	if s.LaTeX == nil {
		return nil, errors.New("latex renderer is not available")
	}
	return s.LaTeX.Render(normalize.ToLaTeX(body, cites))
}

// References selects the entries listed in the references section: the cited
// ones in citation order, or the whole bibliography in file order when the
// paper cites nothing.
func References(entries []bibtex.Entry, order citation.Order) []citation.Resolved {
	if len(order) == 0 {
		return citation.All(entries)
	}
	return citation.Filter(entries, order)
}

// Detail returns the entry shown in the detail panel for key, or nil when
// the bibliography has no entry for it.
func Detail(resolved []citation.Resolved, key string) *citation.Resolved {
	r, ok := citation.Lookup(resolved, key)
	if !ok || r.Stub {
		return nil
	}
	return r
}
