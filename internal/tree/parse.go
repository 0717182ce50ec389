package tree

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// ErrEmptyDocument is returned when a document has no elements.
var ErrEmptyDocument = errors.New("document has no elements")

// ParseXML decodes an XML document into a tree. Attributes are kept on their
// element, so Find treats them like child fields.
func ParseXML(r io.Reader) (*Node, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel
	dec.Entity = xml.HTMLEntity

	doc := &Node{Kind: DocumentNode}
	stack := []*Node{doc}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("failed to decode XML: %w", err)
		}

		parent := stack[len(stack)-1]

		switch t := tok.(type) {
		case xml.StartElement:
			el := Element(t.Name.Local)
			for _, a := range t.Attr {
				el.Attrs = append(el.Attrs, Attr{Name: a.Name.Local, Value: a.Value})
			}

			parent.Children = append(parent.Children, el)
			stack = append(stack, el)
		case xml.EndElement:
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if s := string(t); strings.TrimSpace(s) != "" {
				parent.Children = append(parent.Children, Text(s))
			}
		}
	}

	if len(Select(doc, func(*Node) bool { return true })) == 0 {
		return nil, ErrEmptyDocument
	}

	return doc, nil
}

// ParseXMLString is ParseXML over a string.
func ParseXMLString(s string) (*Node, error) {
	return ParseXML(strings.NewReader(s))
}

// ParseHTML parses an HTML document into a tree. Element names are lower-case;
// script, style and comment content is dropped.
func ParseHTML(r io.Reader) (*Node, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	return convertHTML(root), nil
}

// ParseHTMLString is ParseHTML over a string.
func ParseHTMLString(s string) (*Node, error) {
	return ParseHTML(bytes.NewReader([]byte(s)))
}

func convertHTML(h *html.Node) *Node {
	var n *Node

	switch h.Type {
	case html.DocumentNode:
		n = &Node{Kind: DocumentNode}
	case html.ElementNode:
		name := strings.ToLower(h.Data)
		if name == "script" || name == "style" || name == "noscript" {
			return nil
		}

		n = Element(name)
		for _, a := range h.Attr {
			n.Attrs = append(n.Attrs, Attr{Name: a.Key, Value: a.Val})
		}
	case html.TextNode:
		if strings.TrimSpace(h.Data) == "" {
			return nil
		}

		return Text(h.Data)
	default:
		return nil
	}

	for c := h.FirstChild; c != nil; c = c.NextSibling {
		if child := convertHTML(c); child != nil {
			n.Children = append(n.Children, child)
		}
	}

	return n
}
