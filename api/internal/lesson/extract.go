package lesson

import (
	"bytes"
	"encoding/json"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

type metadata struct {
	title       string
	description string
}

// candidates in preference order, first non-empty wins per field
type signals struct {
	ldName, ldDesc       string
	ldAltName, ldAltDesc string
	ogTitle, ogDesc      string
	twTitle, twDesc      string
	metaDesc, titleTag   string
}

func extract(body []byte) (metadata, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return metadata{}, err
	}
	var s signals
	walk(doc, &s)
	return metadata{
		title:       first(s.ldName, s.ldAltName, s.ogTitle, s.twTitle, s.titleTag),
		description: first(s.ldDesc, s.ldAltDesc, s.ogDesc, s.twDesc, s.metaDesc),
	}, nil
}

func walk(n *html.Node, s *signals) {
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.Title:
			if s.titleTag == "" {
				s.titleTag = text(n)
			}
		case atom.Meta:
			meta(n, s)
		case atom.Script:
			if strings.EqualFold(attr(n, "type"), "application/ld+json") {
				ldJSON(text(n), s)
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, s)
	}
}

func meta(n *html.Node, s *signals) {
	key := strings.ToLower(strings.TrimSpace(attr(n, "property")))
	if key == "" {
		key = strings.ToLower(strings.TrimSpace(attr(n, "name")))
	}
	content := strings.TrimSpace(attr(n, "content"))
	if content == "" {
		return
	}
	switch key {
	case "og:title":
		setOnce(&s.ogTitle, content)
	case "og:description":
		setOnce(&s.ogDesc, content)
	case "twitter:title":
		setOnce(&s.twTitle, content)
	case "twitter:description":
		setOnce(&s.twDesc, content)
	case "description":
		setOnce(&s.metaDesc, content)
	}
}

// site-level nodes describe the publisher, not the lesson
var siteTypes = map[string]bool{
	"website":        true,
	"organization":   true,
	"breadcrumblist": true,
	"searchaction":   true,
	"person":         true,
	"imageobject":    true,
}

var pageTypes = map[string]bool{
	"webpage":          true,
	"article":          true,
	"learningresource": true,
	"course":           true,
}

// ldJSON reads name/headline and description from a JSON-LD block. Blocks
// may hold a single object, an array, or an @graph. Page nodes win over
// other typed nodes; site-level nodes are ignored.
func ldJSON(raw string, s *signals) {
	var v any
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &v); err != nil {
		return
	}
	var visit func(any)
	visit = func(v any) {
		switch t := v.(type) {
		case []any:
			for _, it := range t {
				visit(it)
			}
		case map[string]any:
			if g, ok := t["@graph"]; ok {
				visit(g)
			}
			page, site := nodeKind(t["@type"])
			if site {
				return
			}
			name, desc := &s.ldAltName, &s.ldAltDesc
			if page {
				name, desc = &s.ldName, &s.ldDesc
			}
			if n, _ := t["name"].(string); strings.TrimSpace(n) != "" {
				setOnce(name, n)
			} else if h, _ := t["headline"].(string); strings.TrimSpace(h) != "" {
				setOnce(name, h)
			}
			if d, _ := t["description"].(string); strings.TrimSpace(d) != "" {
				setOnce(desc, d)
			}
		}
	}
	visit(v)
}

// nodeKind classifies an @type value, which may be a string or a list.
func nodeKind(v any) (page, site bool) {
	var types []string
	switch t := v.(type) {
	case string:
		types = []string{t}
	case []any:
		for _, it := range t {
			if s, ok := it.(string); ok {
				types = append(types, s)
			}
		}
	}
	for _, typ := range types {
		typ = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(typ), "schema:"))
		if pageTypes[typ] {
			return true, false
		}
		if siteTypes[typ] {
			site = true
		}
	}
	return false, site
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func text(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return strings.TrimSpace(b.String())
}

func setOnce(dst *string, v string) {
	if *dst == "" {
		*dst = strings.TrimSpace(v)
	}
}

func first(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
