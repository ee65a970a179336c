package structure

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/Google-eCarbon/ecarbon/pkg/domain/model"
)

// semanticTags are the tags counted into SemanticTags.
var semanticTags = map[atom.Atom]string{
	atom.Header:  "header",
	atom.Nav:     "nav",
	atom.Main:    "main",
	atom.Article: "article",
	atom.Section: "section",
	atom.Aside:   "aside",
	atom.Footer:  "footer",
}

// Extract walks the HTML document once and collects the structural
// counts used for tag-based guideline relevance. It never fails on
// malformed markup; the parser repairs what it can.
func Extract(content string) (*model.StructureStats, error) {
	root, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse HTML")
	}

	stats := &model.StructureStats{
		SemanticTags: map[string]int{},
	}

	// Label targets are collected in the same pass; inputs are resolved
	// against them afterwards.
	labeledIDs := map[string]bool{}
	var inputIDs []string
	var wrappedInputs, bareInputs int

	var visit func(n *html.Node, inLabel bool)
	visit = func(n *html.Node, inLabel bool) {
		if n.Type == html.ElementNode {
			stats.TotalTags++

			if name, ok := semanticTags[n.DataAtom]; ok {
				stats.SemanticTags[name]++
			}

			switch n.DataAtom {
			case atom.Img:
				stats.TotalImages++
				if attr(n, "alt") != "" {
					stats.ImagesWithAlt++
				}
				if strings.EqualFold(attr(n, "loading"), "lazy") {
					stats.LazyImages++
				}

			case atom.A:
				stats.TotalLinks++
				if strings.TrimSpace(nodeText(n)) != "" || attr(n, "aria-label") != "" {
					stats.LinksWithText++
				}

			case atom.Form:
				stats.TotalForms++

			case atom.Input:
				if inLabel {
					wrappedInputs++
				} else if id := attr(n, "id"); id != "" {
					inputIDs = append(inputIDs, id)
				} else {
					bareInputs++
				}

			case atom.Label:
				if target := attr(n, "for"); target != "" {
					labeledIDs[target] = true
				}
				inLabel = true

			case atom.Script:
				stats.TotalScripts++
				if attr(n, "src") != "" {
					stats.ExternalScripts++
				} else {
					stats.InlineScripts++
				}

			case atom.Style:
				stats.TotalStyles++
				stats.InlineStyles++

			case atom.Link:
				if strings.EqualFold(attr(n, "rel"), "stylesheet") {
					stats.TotalStyles++
					stats.ExternalStyles++
				}

			case atom.Iframe:
				stats.TotalIframes++
			}

			if n.DataAtom != atom.Style && attr(n, "style") != "" {
				stats.InlineStyles++
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c, inLabel)
		}
	}
	visit(root, false)

	stats.InputsWithLabel = wrappedInputs
	for _, id := range inputIDs {
		if labeledIDs[id] {
			stats.InputsWithLabel++
		}
	}

	return stats, nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		} else if c.Type == html.ElementNode {
			sb.WriteString(nodeText(c))
		}
	}
	return sb.String()
}
