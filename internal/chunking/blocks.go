package chunking

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmtext "github.com/yuin/goldmark/text"
)

var blockParser = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
).Parser()

// splitBlocks splits text into its top-level markdown blocks (paragraphs,
// headings, code fences, lists), preserving source order. It is a narrower
// read of the reference markdown chunker's AST walk: it reports no document
// structure or relationships between blocks, only block boundaries for the
// Technical strategy, which needs to avoid splitting in the middle of a code
// fence or list.
func splitBlocks(text string) []string {
	source := []byte(text)
	doc := blockParser.Parse(gmtext.NewReader(source))

	var blocks []string
	child := doc.FirstChild()
	for child != nil {
		if seg := blockSegment(child, source); seg != "" {
			blocks = append(blocks, seg)
		}
		child = child.NextSibling()
	}
	if len(blocks) == 0 && text != "" {
		return []string{text}
	}
	return blocks
}

func blockSegment(node ast.Node, source []byte) string {
	start, end, ok := nodeSpan(node)
	if !ok || start < 0 || end > len(source) || start >= end {
		return ""
	}
	return string(source[start:end])
}

// nodeSpan finds the byte range covered by node, recursing into children for
// container nodes (lists, block quotes) that carry no Lines() of their own.
func nodeSpan(node ast.Node) (start, end int, ok bool) {
	if lines := node.Lines(); lines != nil && lines.Len() > 0 {
		return lines.At(0).Start, lines.At(lines.Len() - 1).Stop, true
	}
	child := node.FirstChild()
	for child != nil {
		if cs, ce, cok := nodeSpan(child); cok {
			if !ok || cs < start {
				start = cs
			}
			if ce > end {
				end = ce
			}
			ok = true
		}
		child = child.NextSibling()
	}
	return start, end, ok
}
