package widget

import (
	"strings"

	"golang.org/x/net/html"
)

// attrSelector equivale a [key] o [key="value"] cuando value no es nil
type attrSelector struct {
	key   string
	value *string
}

func hasAttr(key string) attrSelector {
	return attrSelector{key: key}
}

func attrEquals(key, value string) attrSelector {
	return attrSelector{key: key, value: &value}
}

func (s attrSelector) matches(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	for _, a := range n.Attr {
		if a.Namespace != "" || a.Key != s.key {
			continue
		}
		return s.value == nil || a.Val == *s.value
	}
	return false
}

// querySelector devuelve el primer descendiente (en orden de documento) que cumple el selector
func querySelector(root *html.Node, sel attrSelector) *html.Node {
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if sel.matches(c) {
			return c
		}
		if found := querySelector(c, sel); found != nil {
			return found
		}
	}
	return nil
}

// querySelectorAll devuelve todos los nodos que cumplen el selector, incluida la raíz
func querySelectorAll(root *html.Node, sel attrSelector) []*html.Node {
	var found []*html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if sel.matches(n) {
			found = append(found, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return found
}

func getAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, key, value string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: value})
}

// setTextContent reemplaza todos los hijos del nodo por un único nodo de texto
func setTextContent(n *html.Node, text string) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
	if text != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
}

func textContent(n *html.Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
