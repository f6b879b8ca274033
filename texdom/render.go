package texdom

import (
	"html"
	"strconv"
	"strings"

	"github.com/hesusruiz/paperview/highlight"
)

// renderHTML renders recursively to HTML this node and its children (if any)
func (n *Node) renderHTML(br *ByteRenderer, codeStyle string) {

	switch n.Type {

	case DocumentNode:
		n.renderChildren(br, codeStyle)

	case SectionNode:
		h := "h" + strconv.Itoa(n.Level+1)
		br.Render("<section")
		if len(n.Outline) > 0 {
			br.Render(` id="sec-`, strings.ReplaceAll(strings.TrimSuffix(n.Outline, "."), ".", "-"), `"`)
		}
		br.Renderln(">")

		br.Render("<", h, ">")
		if len(n.Outline) > 0 {
			br.Render(`<span class="outline">`, n.Outline, "</span> ")
		}
		br.Renderln(RenderInline(n.Title), "</", h, ">")

		n.renderChildren(br, codeStyle)
		br.Renderln("</section>")

	case ParagraphNode:
		br.Render("<p>")
		n.renderParagraphContent(br)
		br.Renderln("</p>")

	case ListNode:
		br.Renderln("<", n.Tag, ">")
		n.renderChildren(br, codeStyle)
		br.Renderln("</", n.Tag, ">")

	case ItemNode:
		n.renderItem(br, codeStyle)

	case BlockNode:
		br.Render("<", n.Tag)
		if len(n.Class) > 0 {
			br.Render(` class="`, html.EscapeString(n.Class), `"`)
		}
		br.Renderln(">")
		if len(n.Title) > 0 {
			br.Renderln(`<h3 class="`, html.EscapeString(n.Class), `-title">`, html.EscapeString(n.Title), "</h3>")
		}
		n.renderChildren(br, codeStyle)
		br.Renderln("</", n.Tag, ">")

	case VerbatimNode:
		br.Render(highlight.Block(n.Text, n.Lang, codeStyle))

	case MathNode:
		br.Renderln(`<div class="math display">`, html.EscapeString(n.Text), "</div>")

	case TableNode:
		br.Renderln(`<table class="tabular"><tbody>`)
		for _, row := range n.Rows {
			br.Render("<tr>")
			for _, cell := range row {
				br.Render("<td>", RenderInline(cell), "</td>")
			}
			br.Renderln("</tr>")
		}
		br.Renderln("</tbody></table>")
	}

}

func (n *Node) renderChildren(br *ByteRenderer, codeStyle string) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		c.renderHTML(br, codeStyle)
	}
}

func (n *Node) renderParagraphContent(br *ByteRenderer) {
	if len(n.Title) > 0 {
		br.Render(`<strong class="run-in">`, RenderInline(n.Title), "</strong>")
		if len(n.Text) > 0 {
			br.Render(" ")
		}
	}
	br.Render(RenderInline(n.Text))
}

// tight reports whether an item holds a single plain paragraph, which is
// rendered without the paragraph element.
func (n *Node) tight() bool {
	return n.FirstChild != nil && n.FirstChild == n.LastChild &&
		n.FirstChild.Type == ParagraphNode && len(n.FirstChild.Title) == 0
}

func (n *Node) renderItem(br *ByteRenderer, codeStyle string) {
	description := n.Parent != nil && n.Parent.Tag == "dl"

	if description {
		br.Renderln("<dt>", RenderInline(n.Title), "</dt>")
		br.Render("<dd>")
	} else {
		br.Render("<li>")
		if len(n.Title) > 0 {
			br.Render(`<span class="item-label">`, RenderInline(n.Title), "</span> ")
		}
	}

	if n.tight() {
		br.Render(RenderInline(n.FirstChild.Text))
	} else {
		br.Renderln()
		n.renderChildren(br, codeStyle)
	}

	if description {
		br.Renderln("</dd>")
	} else {
		br.Renderln("</li>")
	}
}
