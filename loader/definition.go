// Package loader reads shared-mime-info style definition documents and feeds
// them into a database through the Sink interface.
//
// A definition document looks like:
//
//	<mime-info xmlns="http://www.freedesktop.org/standards/shared-mime-info">
//	  <mime-type type="image/svg+xml">
//	    <comment>SVG image</comment>
//	    <comment xml:lang="de">SVG-Bild</comment>
//	    <sub-class-of type="application/xml"/>
//	    <alias type="image/svg"/>
//	    <glob pattern="*.svg" weight="50"/>
//	    <magic priority="80">
//	      <match type="string" value="&lt;svg" offset="0:256"/>
//	    </magic>
//	  </mime-type>
//	</mime-info>
package loader

import (
	"fmt"
	"io"
	"strconv"

	"github.com/antchfx/xmlquery"

	"github.com/gobeaver/mimekit/globs"
	"github.com/gobeaver/mimekit/magic"
)

// Definition is one parsed mime-type element.
type Definition struct {
	Name              string
	Comment           string
	LocalizedComments map[string]string
	Icon              string
	GenericIcon       string
	Globs             []GlobDef
	Parents           []string
	Aliases           []string
	Magic             []MagicDef
}

// GlobDef is a glob element.
type GlobDef struct {
	Pattern       string
	Weight        int
	CaseSensitive bool
}

// MagicDef is a magic element: a priority and alternative match trees.
type MagicDef struct {
	Priority int
	Matches  []MatchDef
}

// MatchDef is a match element with its nested submatches.
type MatchDef struct {
	Type     string
	Value    string
	Offset   string
	Mask     string
	Children []MatchDef
}

// Rule converts the match tree into a magic rule. Unknown types and
// malformed offsets produce a rule that never matches.
func (m MatchDef) Rule() *magic.Rule {
	children := make([]*magic.Rule, 0, len(m.Children))
	for _, c := range m.Children {
		children = append(children, c.Rule())
	}
	typ, _ := magic.ParseRuleType(m.Type)
	start, end, err := magic.ParseOffset(m.Offset)
	if err != nil {
		start, end = -1, -1
	}
	return magic.NewRule(typ, m.Value, start, end, m.Mask, children...)
}

// Matcher converts the magic element into a matcher for typeName.
func (d MagicDef) Matcher(typeName string) *magic.Matcher {
	rules := make([]*magic.Rule, 0, len(d.Matches))
	for _, m := range d.Matches {
		rules = append(rules, m.Rule())
	}
	return magic.NewMatcher(typeName, d.Priority, rules...)
}

// Parse reads one definition document. Definitions are returned in document
// order. A document that is not well-formed, whose root is not mime-info, or
// that contains a mime-type without a type attribute is rejected as a whole.
func Parse(r io.Reader) ([]Definition, error) {
	doc, err := xmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing XML: %w", err)
	}

	root := firstElement(doc)
	if root == nil || root.Data != "mime-info" {
		return nil, &ParseError{Element: elementName(root), Message: "root element is not mime-info"}
	}

	var defs []Definition
	for n := root.FirstChild; n != nil; n = n.NextSibling {
		if n.Type != xmlquery.ElementNode || n.Data != "mime-type" {
			continue
		}
		def, err := parseMimeType(n)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func parseMimeType(n *xmlquery.Node) (Definition, error) {
	def := Definition{Name: n.SelectAttr("type")}
	if def.Name == "" {
		return def, &ParseError{Element: "mime-type", Message: "missing type attribute"}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != xmlquery.ElementNode {
			continue
		}
		switch c.Data {
		case "comment":
			if lang := langOf(c); lang != "" {
				if def.LocalizedComments == nil {
					def.LocalizedComments = make(map[string]string)
				}
				def.LocalizedComments[lang] = c.InnerText()
			} else {
				def.Comment = c.InnerText()
			}
		case "icon":
			def.Icon = c.SelectAttr("name")
		case "generic-icon":
			def.GenericIcon = c.SelectAttr("name")
		case "glob":
			def.Globs = append(def.Globs, GlobDef{
				Pattern:       c.SelectAttr("pattern"),
				Weight:        intAttr(c, "weight", globs.DefaultWeight),
				CaseSensitive: c.SelectAttr("case-sensitive") == "true",
			})
		case "sub-class-of":
			if p := c.SelectAttr("type"); p != "" {
				def.Parents = append(def.Parents, p)
			}
		case "alias":
			if a := c.SelectAttr("type"); a != "" {
				def.Aliases = append(def.Aliases, a)
			}
		case "magic":
			def.Magic = append(def.Magic, MagicDef{
				Priority: intAttr(c, "priority", magic.DefaultPriority),
				Matches:  parseMatches(c),
			})
		}
	}
	return def, nil
}

func parseMatches(n *xmlquery.Node) []MatchDef {
	var out []MatchDef
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != xmlquery.ElementNode || c.Data != "match" {
			continue
		}
		out = append(out, MatchDef{
			Type:     c.SelectAttr("type"),
			Value:    c.SelectAttr("value"),
			Offset:   c.SelectAttr("offset"),
			Mask:     c.SelectAttr("mask"),
			Children: parseMatches(c),
		})
	}
	return out
}

func firstElement(doc *xmlquery.Node) *xmlquery.Node {
	for n := doc.FirstChild; n != nil; n = n.NextSibling {
		if n.Type == xmlquery.ElementNode {
			return n
		}
	}
	return nil
}

func elementName(n *xmlquery.Node) string {
	if n == nil {
		return ""
	}
	return n.Data
}

func langOf(n *xmlquery.Node) string {
	for _, a := range n.Attr {
		if a.Name.Local == "lang" && a.Name.Space != "" {
			return a.Value
		}
	}
	return ""
}

// intAttr parses an integer attribute, returning def when it is missing or
// malformed.
func intAttr(n *xmlquery.Node, name string, def int) int {
	v, err := strconv.Atoi(n.SelectAttr(name))
	if err != nil {
		return def
	}
	return v
}
