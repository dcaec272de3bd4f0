// pkg/decode/xmlnode.go
// Copyright(c) 2026 swimfuse contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package decode turns raw broker payloads into the tri-state partial
// updates the merge engine consumes. Every decoder here is
// namespace-agnostic: SWIM producers disagree on namespace prefixes
// release to release, so elements and attributes are matched by local
// name only, the same way a hand-rolled parser in the corpus walks
// loosely-schema'd tabular and XML input.
package decode

import (
	"encoding/xml"
	"io"
	"strings"
)

// node is a minimal parsed-XML tree: local element name, attributes
// keyed by local name, concatenated character data, and ordered
// children. Building the whole tree up front keeps the per-message-type
// decoders free of cursor/token bookkeeping; payloads here are single
// messages, never streamed megabyte feeds, so the cost is negligible.
type node struct {
	name     string
	attrs    map[string]string
	text     string
	children []*node
}

func localName(full string) string {
	if i := strings.LastIndexByte(full, ':'); i >= 0 {
		return full[i+1:]
	}
	if i := strings.LastIndexByte(full, '}'); i >= 0 {
		return full[i+1:]
	}
	return full
}

// parseXML reads r into a node tree rooted at the document element.
func parseXML(r io.Reader) (*node, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = false
	var root *node
	var stack []*node
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return root, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := &node{name: localName(t.Name.Local), attrs: make(map[string]string, len(t.Attr))}
			for _, a := range t.Attr {
				n.attrs[localName(a.Name.Local)] = a.Value
			}
			if len(stack) > 0 {
				top := stack[len(stack)-1]
				top.children = append(top.children, n)
			} else {
				root = n
			}
			stack = append(stack, n)
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text += string(t)
			}
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}
	return root, nil
}

// child returns the first direct child with the given local name.
func (n *node) child(name string) *node {
	if n == nil {
		return nil
	}
	for _, c := range n.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

// allChildren returns every direct child with the given local name.
func (n *node) allChildren(name string) []*node {
	if n == nil {
		return nil
	}
	var out []*node
	for _, c := range n.children {
		if c.name == name {
			out = append(out, c)
		}
	}
	return out
}

// path walks a dotted path of local names from n, returning the first
// match at each level, e.g. n.path("flightInfo.acType").
func (n *node) path(dotted string) *node {
	cur := n
	for _, part := range strings.Split(dotted, ".") {
		cur = cur.child(part)
		if cur == nil {
			return nil
		}
	}
	return cur
}

func (n *node) trimText() string {
	if n == nil {
		return ""
	}
	return strings.TrimSpace(n.text)
}

func (n *node) attr(name string) (string, bool) {
	if n == nil {
		return "", false
	}
	v, ok := n.attrs[name]
	return v, ok
}

func (n *node) isNil() bool {
	if n == nil {
		return false
	}
	v, ok := n.attr("nil")
	return ok && (v == "true" || v == "1")
}
