package export

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/fumiama/go-docx"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Letter paper in portrait with 720 twip margins on every side.
const (
	pageWidth   = 12240
	pageHeight  = 15840
	pageMargin  = 720
	listIndent  = 360
	quoteIndent = 720
)

const (
	codeFont      = "Consolas"
	codeSize      = "20"
	quoteColor    = "404040"
	headingBefore = 240
	ruleMarker    = "* * *"
)

// Half-point sizes for h1..h6.
var headingSizes = []string{"32", "28", "26", "24", "22", "22"}

type runFormat struct {
	bold, italic, strike, code bool
	size, color                string
}

type blockCtx struct {
	indent int
	quote  bool
}

func (ctx blockCtx) format() runFormat {
	if ctx.quote {
		return runFormat{italic: true, color: quoteColor}
	}
	return runFormat{}
}

func newPara(ctx blockCtx) *docx.Paragraph {
	p := &docx.Paragraph{}
	if ctx.indent > 0 {
		properties(p).Ind = &docx.Ind{Left: ctx.indent}
	}
	return p
}

func properties(p *docx.Paragraph) *docx.ParagraphProperties {
	if p.Properties == nil {
		p.Properties = &docx.ParagraphProperties{}
	}
	return p.Properties
}

func addText(p *docx.Paragraph, s string, f runFormat) {
	if s == "" {
		return
	}
	r := p.AddText(s)
	for _, child := range r.Children {
		if t, ok := child.(*docx.Text); ok {
			t.XMLSpace = "preserve"
		}
	}
	if f.bold {
		r.Bold()
	}
	if f.italic {
		r.Italic()
	}
	if f.strike {
		r.Strike(true)
	}
	if f.code {
		r.Font(codeFont, codeFont, codeFont, "")
	}
	if f.size != "" {
		r.Size(f.size)
	}
	if f.color != "" {
		r.Color(f.color)
	}
}

// converter walks rendered HTML and appends the matching paragraphs and
// tables to doc in order.
type converter struct {
	doc *docx.Docx
}

func (c *converter) emit(p *docx.Paragraph) {
	c.doc.Document.Body.Items = append(c.doc.Document.Body.Items, p)
}

func (c *converter) blocks(n *html.Node, ctx blockCtx) {
	var loose *docx.Paragraph
	flush := func() {
		if loose != nil && len(loose.Children) > 0 {
			c.emit(loose)
		}
		loose = nil
	}

	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if isInline(child) {
			if loose == nil && isBlank(child) {
				continue
			}
			if loose == nil {
				loose = newPara(ctx)
			}
			c.inline(loose, child, ctx.format())
			continue
		}
		flush()
		c.block(child, ctx)
	}
	flush()
}

func (c *converter) block(n *html.Node, ctx blockCtx) {
	if n.Type != html.ElementNode {
		return
	}
	switch n.DataAtom {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		level, _ := strconv.Atoi(n.Data[1:])
		p := newPara(ctx)
		properties(p).Spacing = &docx.Spacing{Before: headingBefore}
		c.inlineChildren(p, n, runFormat{bold: true, size: headingSizes[level-1]})
		c.emit(p)
	case atom.P:
		p := newPara(ctx)
		c.inlineChildren(p, n, ctx.format())
		c.emit(p)
	case atom.Ul, atom.Ol:
		c.list(n, ctx)
	case atom.Pre:
		c.pre(n, ctx)
	case atom.Blockquote:
		c.blocks(n, blockCtx{indent: ctx.indent + quoteIndent, quote: true})
	case atom.Hr:
		p := newPara(ctx).Justification("center")
		addText(p, ruleMarker, runFormat{})
		c.emit(p)
	case atom.Table:
		c.table(n)
	default:
		c.blocks(n, ctx)
	}
}

func (c *converter) list(n *html.Node, ctx blockCtx) {
	ordered := n.DataAtom == atom.Ol
	num := 1
	if start, err := strconv.Atoi(attr(n, "start")); err == nil && ordered {
		num = start
	}
	itemCtx := blockCtx{indent: ctx.indent + listIndent, quote: ctx.quote}

	for li := n.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.DataAtom != atom.Li {
			continue
		}
		marker := "• "
		if ordered {
			marker = strconv.Itoa(num) + ". "
			num++
		}
		c.listItem(li, marker, itemCtx)
	}
}

// listItem writes the marker paragraph. The first <p> of a loose list item is
// merged into it; nested blocks follow at the item's indent.
func (c *converter) listItem(li *html.Node, marker string, ctx blockCtx) {
	p := newPara(ctx)
	addText(p, marker, ctx.format())
	merged := false

	for child := li.FirstChild; child != nil; child = child.NextSibling {
		if isInline(child) {
			if p == nil {
				if isBlank(child) {
					continue
				}
				p = newPara(ctx)
			}
			c.inline(p, child, ctx.format())
			continue
		}
		if p != nil && !merged && child.Type == html.ElementNode && child.DataAtom == atom.P {
			c.inlineChildren(p, child, ctx.format())
			merged = true
			continue
		}
		if p != nil {
			c.emit(p)
			p = nil
		}
		merged = true
		c.block(child, ctx)
	}
	if p != nil {
		c.emit(p)
	}
}

func (c *converter) pre(n *html.Node, ctx blockCtx) {
	text := strings.TrimRight(textContent(n), "\n")
	text = strings.ReplaceAll(text, "\t", "    ")
	for _, line := range strings.Split(text, "\n") {
		p := newPara(ctx)
		addText(p, line, runFormat{code: true, size: codeSize})
		c.emit(p)
	}
}

func (c *converter) table(n *html.Node) {
	var rows []*html.Node
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if child.Type != html.ElementNode {
				continue
			}
			if child.DataAtom == atom.Tr {
				rows = append(rows, child)
				continue
			}
			collect(child)
		}
	}
	collect(n)

	cols := 0
	for _, row := range rows {
		if count := len(cells(row)); count > cols {
			cols = count
		}
	}
	if cols == 0 {
		return
	}

	widths := make([]int64, cols)
	for i := range widths {
		widths[i] = int64((pageWidth - 2*pageMargin) / cols)
	}
	tbl := c.doc.AddTableTwips(make([]int64, len(rows)), widths, 0, nil)
	for i, row := range rows {
		rowCells := cells(row)
		for j, cell := range tbl.TableRows[i].TableCells {
			p := cell.AddParagraph()
			if j < len(rowCells) {
				c.inlineChildren(p, rowCells[j], runFormat{bold: rowCells[j].DataAtom == atom.Th})
			}
		}
	}
	// Word wants a paragraph between a table and whatever follows it.
	c.emit(&docx.Paragraph{})
}

func cells(row *html.Node) []*html.Node {
	var out []*html.Node
	for cell := row.FirstChild; cell != nil; cell = cell.NextSibling {
		if cell.Type == html.ElementNode && (cell.DataAtom == atom.Td || cell.DataAtom == atom.Th) {
			out = append(out, cell)
		}
	}
	return out
}

func (c *converter) inlineChildren(p *docx.Paragraph, n *html.Node, f runFormat) {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.inline(p, child, f)
	}
}

func (c *converter) inline(p *docx.Paragraph, n *html.Node, f runFormat) {
	switch n.Type {
	case html.TextNode:
		text := n.Data
		if !f.code {
			text = strings.ReplaceAll(text, "\n", " ")
		}
		addText(p, text, f)
		return
	case html.ElementNode:
	default:
		return
	}

	switch n.DataAtom {
	case atom.Strong, atom.B:
		f.bold = true
	case atom.Em, atom.I:
		f.italic = true
	case atom.Del, atom.S, atom.Strike:
		f.strike = true
	case atom.Code:
		f.code = true
	case atom.Br:
		p.AddText("\n")
		return
	case atom.Img:
		addText(p, attr(n, "alt"), f)
		return
	case atom.Input:
		if attr(n, "type") == "checkbox" {
			if hasAttr(n, "checked") {
				addText(p, "[x] ", f)
			} else {
				addText(p, "[ ] ", f)
			}
		}
		return
	}
	c.inlineChildren(p, n, f)
}

func isInline(n *html.Node) bool {
	switch n.Type {
	case html.TextNode:
		return true
	case html.ElementNode:
		switch n.DataAtom {
		case atom.A, atom.Strong, atom.B, atom.Em, atom.I, atom.Code, atom.Del, atom.S, atom.Strike,
			atom.Br, atom.Img, atom.Input, atom.Span, atom.Sub, atom.Sup, atom.U:
			return true
		}
	}
	return false
}

func isBlank(n *html.Node) bool {
	return n.Type == html.TextNode && strings.TrimSpace(n.Data) == ""
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		b.WriteString(textContent(child))
	}
	return b.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Body {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if body := findBody(child); body != nil {
			return body
		}
	}
	return nil
}

// HTMLToDOCX converts an HTML fragment into a DOCX package.
func HTMLToDOCX(src string) ([]byte, error) {
	root, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	body := findBody(root)
	if body == nil {
		return nil, fmt.Errorf("parse html: no body")
	}

	c := &converter{doc: docx.New().WithDefaultTheme()}
	c.blocks(body, blockCtx{})

	// the section properties close the body
	c.doc.Document.Body.Items = append(c.doc.Document.Body.Items, &docx.SectPr{
		PgSz: &docx.PgSz{W: pageWidth, H: pageHeight},
		PgMar: &docx.PgMar{
			Top:    pageMargin,
			Left:   pageMargin,
			Bottom: pageMargin,
			Right:  pageMargin,
			Header: pageMargin,
			Footer: pageMargin,
		},
	})

	var buf bytes.Buffer
	if _, err := c.doc.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write docx: %w", err)
	}
	return buf.Bytes(), nil
}
