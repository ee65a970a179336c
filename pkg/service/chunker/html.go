package chunker

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/Google-eCarbon/ecarbon/pkg/domain/model"
)

// DefaultChunkSize is the maximum character count of one content chunk.
const DefaultChunkSize = 1000

// majorTags are the structural tags that seed section chunks, in
// priority order.
var majorTags = []atom.Atom{
	atom.Header, atom.Nav, atom.Main, atom.Article,
	atom.Section, atom.Aside, atom.Footer,
}

// blockTags are the tags an oversized section is re-split at.
var blockTags = map[atom.Atom]bool{
	atom.P: true, atom.Li: true,
	atom.H1: true, atom.H2: true, atom.H3: true,
	atom.H4: true, atom.H5: true, atom.H6: true,
}

// HTMLChunker cuts an HTML document into text chunks along its
// structural tags. Sections exceeding ChunkSize are re-split at block
// elements and packed greedily; a single oversized block is hard-split
// at the character limit.
type HTMLChunker struct {
	ChunkSize int
}

// NewHTMLChunker creates an HTMLChunker with the default chunk size.
func NewHTMLChunker() *HTMLChunker {
	return &HTMLChunker{ChunkSize: DefaultChunkSize}
}

// ChunkHTML splits the document into content chunks. Empty input yields
// a single empty chunk, and a document with no usable sections yields
// one full_html chunk, so the result is never empty.
func (x *HTMLChunker) ChunkHTML(content string) ([]model.ContentChunk, error) {
	if content == "" {
		return []model.ContentChunk{{Text: "", Type: model.ChunkTypeEmpty}}, nil
	}

	root, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse HTML")
	}

	var chunks []model.ContentChunk
	for _, section := range majorSections(root) {
		text := textContent(section)
		if text == "" {
			continue
		}

		tag := section.Data
		if tag == "" {
			tag = "div"
		}

		if len([]rune(text)) > x.ChunkSize {
			for _, sub := range x.splitSection(section) {
				chunks = append(chunks, model.ContentChunk{
					Text: sub,
					Type: model.ChunkType(tag + "_sub"),
				})
			}
		} else {
			chunks = append(chunks, model.ContentChunk{
				Text: text,
				Type: model.ChunkType(tag),
			})
		}
	}

	if len(chunks) == 0 {
		full := []rune(textContent(root))
		if len(full) > x.ChunkSize {
			full = full[:x.ChunkSize]
		}
		chunks = append(chunks, model.ContentChunk{
			Text: string(full),
			Type: model.ChunkTypeFullHTML,
		})
	}

	return chunks, nil
}

// majorSections picks the nodes to chunk from: structural tags first,
// then top-level divs, then the body's element children.
func majorSections(root *html.Node) []*html.Node {
	var sections []*html.Node
	for _, tag := range majorTags {
		sections = append(sections, findAll(root, tag)...)
	}
	if len(sections) > 0 {
		return sections
	}

	body := findFirst(root, atom.Body)
	if body == nil {
		return nil
	}
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Div {
			sections = append(sections, c)
		}
	}
	if len(sections) > 0 {
		return sections
	}

	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			sections = append(sections, c)
		}
	}
	return sections
}

// splitSection re-splits an oversized section at block elements,
// packing consecutive blocks up to ChunkSize. A block larger than
// ChunkSize on its own is hard-split at the limit.
func (x *HTMLChunker) splitSection(section *html.Node) []string {
	var chunks []string
	var current []rune

	walk(section, func(n *html.Node) bool {
		if n.Type != html.ElementNode || !blockTags[n.DataAtom] {
			return true
		}
		text := []rune(textContent(n))
		if len(text) == 0 {
			return false
		}

		if len(current)+len(text) > x.ChunkSize {
			if len(current) > 0 {
				chunks = append(chunks, string(current))
				current = append(current[:0], text...)
			} else {
				for len(text) > x.ChunkSize {
					chunks = append(chunks, string(text[:x.ChunkSize]))
					text = text[x.ChunkSize:]
				}
				if len(text) > 0 {
					chunks = append(chunks, string(text))
				}
				current = current[:0]
			}
		} else {
			if len(current) > 0 {
				current = append(current, ' ')
			}
			current = append(current, text...)
		}
		return false
	})

	if len(current) > 0 {
		chunks = append(chunks, string(current))
	}

	for i := range chunks {
		chunks[i] = strings.TrimSpace(chunks[i])
	}
	return chunks
}

// textContent concatenates the trimmed text nodes under n.
func textContent(n *html.Node) string {
	var sb strings.Builder
	walk(n, func(c *html.Node) bool {
		switch c.Type {
		case html.TextNode:
			sb.WriteString(strings.TrimSpace(c.Data))
		case html.ElementNode:
			if c.DataAtom == atom.Script || c.DataAtom == atom.Style {
				return false
			}
		}
		return true
	})
	return sb.String()
}

// walk visits n and its descendants depth-first. fn returning false
// prunes the subtree below the visited node.
func walk(n *html.Node, fn func(*html.Node) bool) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if fn(c) {
			walk(c, fn)
		}
	}
}

func findAll(root *html.Node, tag atom.Atom) []*html.Node {
	var nodes []*html.Node
	walk(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom == tag {
			nodes = append(nodes, n)
			return false
		}
		return true
	})
	return nodes
}

func findFirst(root *html.Node, tag atom.Atom) *html.Node {
	var found *html.Node
	walk(root, func(n *html.Node) bool {
		if found != nil {
			return false
		}
		if n.Type == html.ElementNode && n.DataAtom == tag {
			found = n
			return false
		}
		return true
	})
	return found
}
