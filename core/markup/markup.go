// Package markup provides tree-queryable access to rendered chapter markup.
//
// The extraction engine depends only on the Node interface: descendant
// queries by XPath pattern, text content, and attribute access. The
// concrete implementation wraps antchfx/htmlquery over golang.org/x/net/html
// nodes; another markup dialect can be supported by supplying a different
// adapter.
package markup

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"golang.org/x/net/html"
)

// Node is the minimal traversal surface over one markup element.
type Node interface {
	// Query returns all descendants matching the XPath expression.
	Query(expr string) ([]Node, error)

	// QueryFirst returns the first descendant matching the XPath
	// expression, or nil when nothing matches.
	QueryFirst(expr string) (Node, error)

	// Text returns the concatenated text content of the node and its
	// descendants, whitespace-trimmed.
	Text() string

	// Attr returns the value of the named attribute, or "".
	Attr(name string) string

	// Name returns the element name.
	Name() string
}

// Document is the root node of a parsed markup tree.
type Document = Node

// htmlNode adapts an html.Node to the Node interface.
type htmlNode struct {
	node *html.Node
}

// Parse parses rendered HTML markup and returns the document root.
func Parse(data []byte) (Document, error) {
	root, err := htmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing markup: %w", err)
	}
	return &htmlNode{node: root}, nil
}

// Compile validates an XPath expression without evaluating it. Rule sets
// use it to fail fast on malformed patterns.
func Compile(expr string) error {
	if _, err := xpath.Compile(expr); err != nil {
		return fmt.Errorf("invalid xpath %q: %w", expr, err)
	}
	return nil
}

func (n *htmlNode) Query(expr string) ([]Node, error) {
	if err := Compile(expr); err != nil {
		return nil, err
	}
	nodes, err := htmlquery.QueryAll(n.node, expr)
	if err != nil {
		return nil, fmt.Errorf("xpath query failed: %w", err)
	}
	result := make([]Node, len(nodes))
	for i, hn := range nodes {
		result[i] = &htmlNode{node: hn}
	}
	return result, nil
}

func (n *htmlNode) QueryFirst(expr string) (Node, error) {
	if err := Compile(expr); err != nil {
		return nil, err
	}
	hn, err := htmlquery.Query(n.node, expr)
	if err != nil {
		return nil, fmt.Errorf("xpath query failed: %w", err)
	}
	if hn == nil {
		return nil, nil
	}
	return &htmlNode{node: hn}, nil
}

func (n *htmlNode) Text() string {
	return strings.TrimSpace(htmlquery.InnerText(n.node))
}

func (n *htmlNode) Attr(name string) string {
	return htmlquery.SelectAttr(n.node, name)
}

func (n *htmlNode) Name() string {
	if n.node.Type == html.ElementNode {
		return n.node.Data
	}
	return ""
}
