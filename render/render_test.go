package render

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hesusruiz/paperview/bibtex"
	"github.com/hesusruiz/paperview/page"
	"github.com/hesusruiz/paperview/source"
	"github.com/hesusruiz/paperview/texdom"
)

type panicMarkdown struct{}

func (panicMarkdown) Render(string) (string, error) {
	panic("boom")
}

type failingMarkdown struct{}

func (failingMarkdown) Render(string) (string, error) {
	return "", errors.New("cannot parse")
}

// mapSource serves files from memory. Missing files are not found.
type mapSource map[string]string

func (m mapSource) Fetch(_ context.Context, name string) (string, error) {
	if s, ok := m[name]; ok {
		return s, nil
	}
	return "", &source.StatusError{Code: 404}
}

func testSelector() *Selector {
	return &Selector{
		Markdown: NewMarkdown(""),
		LaTeX:    NewLaTeX(""),
		Log:      zap.NewNop().Sugar(),
	}
}

var entriesA = []bibtex.Entry{
	{Type: "article", CiteKey: "a", Fields: map[string]string{"title": "Paper A"}},
}

func TestScenarioMarkdown(t *testing.T) {
	p := page.New()
	s := testSelector()

	res, err := s.Render(context.Background(), p, Request{
		Body:    `\section{Intro}Hello \cite{a,b}.`,
		Entries: entriesA,
	})
	require.NoError(t, err)

	assert.Equal(t, BackendMarkdown, res.Backend)
	assert.False(t, res.Fallback)
	assert.Equal(t, StatusMarkdown, p.Status())
	assert.Equal(t, []string{"a", "b"}, []string(res.Order))

	require.Len(t, res.References, 2)
	assert.Equal(t, 1, res.References[0].Number)
	assert.True(t, res.References[1].Stub)

	content := p.ContentHTML()
	assert.Contains(t, content, `data-cite="a">[1]</a>; <a class="citation" href="#ref-b" data-cite="b">[2]</a>`)
	assert.Contains(t, content, `<li id="ref-a"><span class="ref-label">[1]</span> <span class="ref-title">Paper A</span></li>`)
	assert.Contains(t, content, `<li id="ref-b"><span class="ref-label">[2]</span> <span class="ref-title">b</span></li>`)

	assert.True(t, p.Click("a"))
	assert.Contains(t, p.PanelHTML(), "Paper A")
	assert.True(t, p.Click("b"))
	assert.Contains(t, p.PanelHTML(), "Reference not found")
}

func TestMarkdownPanicFallsBackToLaTeX(t *testing.T) {
	p := page.New()
	s := testSelector()
	s.Markdown = panicMarkdown{}

	res, err := s.Render(context.Background(), p, Request{Body: `\section{Intro}Hello \cite{a}.`, Entries: entriesA})
	require.NoError(t, err)

	assert.Equal(t, BackendLaTeX, res.Backend)
	assert.True(t, res.Fallback)
	assert.Equal(t, StatusLaTeXFallback, p.Status())
	assert.True(t, p.AssetsAttached())

	content := p.ContentHTML()
	assert.NotEmpty(t, content)
	assert.Contains(t, content, `<h2><span class="outline">1.</span> Intro</h2>`)
	assert.Contains(t, content, `<p>Hello <a class="citation" href="#ref-a" data-cite="a">[1]</a>.</p>`)
	assert.Contains(t, content, `<section class="references">`)
}

func TestFallbackReasons(t *testing.T) {
	tests := []struct {
		name     string
		markdown MarkdownRenderer
	}{
		{"Backend unavailable", nil},
		{"Backend error", failingMarkdown{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := page.New()
			s := testSelector()
			s.Markdown = tt.markdown

			res, err := s.Render(context.Background(), p, Request{Body: "Just text."})
			require.NoError(t, err)
			assert.True(t, res.Fallback)
			assert.Equal(t, StatusLaTeXFallback, p.Status())
			assert.Equal(t, "<p>Just text.</p>\n", p.ContentHTML())
		})
	}
}

func TestForceLaTeX(t *testing.T) {
	p := page.New()
	s := testSelector()
	s.Markdown = panicMarkdown{}

	res, err := s.Render(context.Background(), p, Request{Body: "Text.", Mode: ForceLaTeX})
	require.NoError(t, err)
	assert.False(t, res.Fallback)
	assert.Equal(t, StatusLaTeX, p.Status())
}

func TestAssetsAttachedOncePerPage(t *testing.T) {
	p := page.New()
	s := testSelector()

	for i := 0; i < 3; i++ {
		_, err := s.Render(context.Background(), p, Request{Body: "Text.", Mode: ForceLaTeX})
		require.NoError(t, err)
	}

	out, err := p.Bytes()
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(out), "css/base.css"))
}

func TestBothBackendsFail(t *testing.T) {
	p := page.New()
	s := testSelector()
	s.Markdown = failingMarkdown{}

	_, err := s.Render(context.Background(), p, Request{Body: "\\begin{quote} never closed"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAllBackendsFailed)

	var se *texdom.SyntaxError
	assert.True(t, errors.As(err, &se))
}

func TestAlignKeepsLineBreaks(t *testing.T) {
	p := page.New()
	s := testSelector()

	_, err := s.Render(context.Background(), p, Request{Body: "\\begin{align}\na &= b \\\\\nc &= d\n\\end{align}"})
	require.NoError(t, err)

	content := p.ContentHTML()
	assert.Equal(t, 1, strings.Count(content, `\[`))
	assert.Contains(t, content, "a &amp;= b \\\\\nc &amp;= d")
}

func TestMathSurvivesMarkdown(t *testing.T) {
	p := page.New()
	s := testSelector()

	_, err := s.Render(context.Background(), p, Request{Body: "If $a_1 < b_2$ and $*x*$ hold."})
	require.NoError(t, err)
	assert.Equal(t, "<p>If $a_1 &lt; b_2$ and $*x*$ hold.</p>\n", p.ContentHTML())
}

func TestLoad(t *testing.T) {
	src := mapSource{
		"core.tex": "\\documentclass{article}\n\\begin{document}\n\\section{Intro}Hello \\cite{a,b}.\n\\end{document}\n",
		"refs.bib": "@article{a,\n  title = {Paper A},\n  year = 2020\n}\n",
	}

	p := page.New()
	res, err := testSelector().Load(context.Background(), p, LoadOptions{
		Source:       src,
		Paper:        "core.tex",
		Bibliography: "refs.bib",
	})
	require.NoError(t, err)
	require.Len(t, res.References, 2)
	assert.Equal(t, "2020", res.References[0].Field("year"))
	assert.NotContains(t, p.ContentHTML(), "documentclass")
}

func TestLoadWithoutBibliography(t *testing.T) {
	src := mapSource{"core.tex": "\\begin{document}Hello \\cite{a}.\\end{document}"}

	p := page.New()
	res, err := testSelector().Load(context.Background(), p, LoadOptions{
		Source:       src,
		Paper:        "core.tex",
		Bibliography: "refs.bib",
	})
	require.NoError(t, err)
	assert.Empty(t, res.References)
	assert.Equal(t, StatusMarkdown, p.Status())
	assert.NotContains(t, p.ContentHTML(), "references")

	// The citation still opens the panel, with the not found placeholder
	assert.True(t, p.Click("a"))
	assert.Contains(t, p.PanelHTML(), "Reference not found")
}

func TestLoadPaperFailure(t *testing.T) {
	p := page.New()
	_, err := testSelector().Load(context.Background(), p, LoadOptions{
		Source: mapSource{},
		Paper:  "core.tex",
	})
	require.Error(t, err)

	assert.Equal(t, page.StatusFailed, p.Status())
	assert.Equal(t, `<div class="error">Could not load paper: request failed with status 404</div>`, p.ContentHTML())
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := testSelector()
	s.Metrics = NewMetrics(reg)
	s.Markdown = panicMarkdown{}

	_, err := s.Render(context.Background(), page.New(), Request{Body: "x"})
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(s.Metrics.renders.WithLabelValues(BackendLaTeX)))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.Metrics.fallbacks))
	assert.Equal(t, 0.0, testutil.ToFloat64(s.Metrics.failures))
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"latexjs": ForceLaTeX, "LaTeX": ForceLaTeX, "": Auto, "markdown": Auto} {
		assert.Equal(t, want, ParseMode(in), fmt.Sprintf("%q", in))
	}
}

func TestLoadReferences(t *testing.T) {
	src := mapSource{
		"core.tex": "\\begin{document}\\cite{b}\\end{document}",
		"refs.bib": "@misc{a,\n  title = {A}\n}\n@misc{b,\n  title = {B}\n}\n",
	}
	opts := LoadOptions{Source: src, Paper: "core.tex", Bibliography: "refs.bib"}

	resolved, err := testSelector().LoadReferences(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.Equal(t, "b", resolved[0].CiteKey)

	opts.Paper = "missing.tex"
	_, err = testSelector().LoadReferences(context.Background(), opts)
	assert.ErrorIs(t, err, source.ErrNotFound)
}
