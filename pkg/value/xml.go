package value

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// XMLNode is an XML element value.
type XMLNode struct {
	element *etree.Element
	text    string
}

// ParseXML parses text into an XMLNode wrapping the document's root element.
func ParseXML(text string) (*XMLNode, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(text); err != nil {
		return nil, fmt.Errorf("invalid XML: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("invalid XML: no root element")
	}
	return NewXMLNode(root), nil
}

// NewXMLNode wraps a copy of element.
func NewXMLNode(element *etree.Element) *XMLNode {
	el := element.Copy()
	doc := etree.NewDocument()
	doc.SetRoot(el)
	doc.Indent(etree.NoIndent)
	text, _ := doc.WriteToString()
	return &XMLNode{element: el, text: strings.TrimSpace(text)}
}

// Name returns the element's tag, including any namespace prefix.
func (x *XMLNode) Name() string {
	return x.element.FullTag()
}

// Attr returns the value of the named attribute.
func (x *XMLNode) Attr(name string) (string, bool) {
	attr := x.element.SelectAttr(name)
	if attr == nil {
		return "", false
	}
	return attr.Value, true
}

// Children returns the child elements in document order.
func (x *XMLNode) Children() []*XMLNode {
	elements := x.element.ChildElements()
	out := make([]*XMLNode, len(elements))
	for i, el := range elements {
		out[i] = NewXMLNode(el)
	}
	return out
}

// Text returns the element's trimmed character data.
func (x *XMLNode) Text() string {
	return strings.TrimSpace(x.element.Text())
}

func (x *XMLNode) String() string { return x.text }

func (*XMLNode) TypeName() string { return TypeXML }

func (x *XMLNode) Native() any { return x.text }

// Equal compares the canonical serialization of both elements.
func (x *XMLNode) Equal(other Value) bool {
	o, ok := other.(*XMLNode)
	return ok && o.text == x.text
}
