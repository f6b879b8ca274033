// Package page holds the HTML page a paper is rendered into.
//
// A page has three regions: a status line (#paper-status), the content
// container (#paper-content) and the side panel showing the details of the
// selected citation (#citation-panel). A Page is built for each render and
// must not be shared between goroutines.
package page

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

//go:embed assets/page.html
var assetsFS embed.FS

const defaultTemplate = "assets/page.html"

// Identifiers of the page regions
const (
	StatusID  = "paper-status"
	ContentID = "paper-content"
	PanelID   = "citation-panel"
	DetailsID = "citation-details"
)

// Status messages
const (
	StatusFailed = "Failed to load paper"
)

// ErrMissingRegion is returned for a template without one of the page regions.
var ErrMissingRegion = errors.New("template is missing a page region")

// Page is an HTML document with the regions where a paper is rendered.
type Page struct {
	doc     *html.Node
	head    *html.Node
	title   *html.Node
	status  *html.Node
	content *html.Node
	panel   *html.Node
	details *html.Node

	assetsAttached bool

	// handlers invoked when a citation is selected, by citekey
	handlers map[string]func()
	detail   func(key string) string
}

// New returns a page built from the embedded default template.
func New() *Page {
	f, err := assetsFS.Open(defaultTemplate)
	if err != nil {
		panic(err)
	}
	defer f.Close()

	p, err := NewFromTemplate(f)
	if err != nil {
		panic(err)
	}
	return p
}

// NewFromTemplate parses a page template. The template must contain elements
// with the ids paper-status, paper-content and citation-panel. A container
// for the static citation details is added when missing.
func NewFromTemplate(r io.Reader) (*Page, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing page template: %w", err)
	}

	p := &Page{
		doc:      doc,
		head:     findElement(doc, atom.Head),
		title:    findElement(doc, atom.Title),
		status:   FindByID(doc, StatusID),
		content:  FindByID(doc, ContentID),
		panel:    FindByID(doc, PanelID),
		details:  FindByID(doc, DetailsID),
		handlers: map[string]func(){},
	}

	for id, n := range map[string]*html.Node{StatusID: p.status, ContentID: p.content, PanelID: p.panel} {
		if n == nil {
			return nil, fmt.Errorf("%w: #%s", ErrMissingRegion, id)
		}
	}

	if p.details == nil {
		p.details = element(atom.Div, "id", DetailsID, "hidden", "")
		body := findElement(doc, atom.Body)
		if body == nil {
			return nil, fmt.Errorf("%w: body", ErrMissingRegion)
		}
		body.AppendChild(p.details)
	}

	return p, nil
}

// SetTitle replaces the text of the title element, if the template has one.
func (p *Page) SetTitle(title string) {
	if p.title == nil {
		return
	}
	replaceChildren(p.title, text(title))
}

// SetStatus replaces the text of the status line.
func (p *Page) SetStatus(status string) {
	replaceChildren(p.status, text(status))
}

// Status returns the text of the status line.
func (p *Page) Status() string {
	return TextContent(p.status)
}

// Content returns the content container. Callers may modify its subtree.
func (p *Page) Content() *html.Node {
	return p.content
}

// SetContent replaces the children of the content container.
func (p *Page) SetContent(nodes []*html.Node) {
	replaceChildren(p.content, nodes...)
}

// SetContentHTML parses src and replaces the content with it.
func (p *Page) SetContentHTML(src string) error {
	nodes, err := ParseFragment(src)
	if err != nil {
		return err
	}
	p.SetContent(nodes)
	return nil
}

// AppendContentHTML parses src and adds it at the end of the content.
func (p *Page) AppendContentHTML(src string) error {
	nodes, err := ParseFragment(src)
	if err != nil {
		return err
	}
	for _, n := range nodes {
		p.content.AppendChild(n)
	}
	return nil
}

// ContentHTML renders the content container's children.
func (p *Page) ContentHTML() string {
	return InnerHTML(p.content)
}

// AttachAssets adds the nodes to the head of the page. It does so only once
// per page: later calls do nothing and return false.
func (p *Page) AttachAssets(nodes []*html.Node) bool {
	if p.assetsAttached {
		return false
	}
	p.assetsAttached = true

	parent := p.head
	if parent == nil {
		parent = p.content.Parent
	}
	for _, n := range nodes {
		parent.AppendChild(n)
	}
	return true
}

// AssetsAttached reports whether AttachAssets has been called.
func (p *Page) AssetsAttached() bool {
	return p.assetsAttached
}

// ShowError puts the page in the error state. Any partial content is removed.
func (p *Page) ShowError(err error) {
	p.SetStatus(StatusFailed)

	div := element(atom.Div, "class", "error")
	div.AppendChild(text("Could not load paper: " + err.Error()))
	replaceChildren(p.content, div)
}

// RegisterCitationHandlers installs one handler per cited key found in the
// content. A handler shows detail(key) in the citation panel.
func (p *Page) RegisterCitationHandlers(detail func(key string) string) {
	p.detail = detail
	p.handlers = map[string]func(){}

	for _, a := range FindAll(p.content, isCitationAnchor) {
		key, _ := Attr(a, "data-cite")
		if _, ok := p.handlers[key]; ok {
			continue
		}
		p.handlers[key] = func() {
			p.SetPanelHTML(detail(key))
		}
	}
}

// CitedKeys returns the keys with a registered handler, sorted.
func (p *Page) CitedKeys() []string {
	keys := make([]string, 0, len(p.handlers))
	for k := range p.handlers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Click simulates the selection of a citation. It reports whether a handler
// exists for the key.
func (p *Page) Click(key string) bool {
	h, ok := p.handlers[key]
	if !ok {
		return false
	}
	h()
	return true
}

// SetPanelHTML replaces the content of the citation panel. When src cannot be
// parsed it is shown as text.
func (p *Page) SetPanelHTML(src string) {
	nodes, err := ParseFragment(src)
	if err != nil {
		replaceChildren(p.panel, text(src))
		return
	}
	replaceChildren(p.panel, nodes...)
}

// PanelHTML renders the children of the citation panel.
func (p *Page) PanelHTML() string {
	return InnerHTML(p.panel)
}

// embedDetails writes a template element with the detail of each cited key,
// used by the script of the page to fill the panel on click.
func (p *Page) embedDetails() {
	var templates []*html.Node
	if p.detail != nil {
		for _, key := range p.CitedKeys() {
			tmpl := element(atom.Template, "data-detail-for", key)
			nodes, err := ParseFragment(p.detail(key))
			if err != nil {
				continue
			}
			for _, n := range nodes {
				tmpl.AppendChild(n)
			}
			templates = append(templates, tmpl)
		}
	}
	replaceChildren(p.details, templates...)
}

// Render writes the complete HTML document.
func (p *Page) Render(w io.Writer) error {
	p.embedDetails()
	return html.Render(w, p.doc)
}

// Bytes returns the complete HTML document.
func (p *Page) Bytes() ([]byte, error) {
	var b bytes.Buffer
	if err := p.Render(&b); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func isCitationAnchor(n *html.Node) bool {
	if n.Type != html.ElementNode || n.DataAtom != atom.A || !HasClass(n, "citation") {
		return false
	}
	key, ok := Attr(n, "data-cite")
	return ok && len(strings.TrimSpace(key)) > 0
}
