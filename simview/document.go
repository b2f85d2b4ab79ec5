// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package simview

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// line is one laid-out text line. href is the first link on the line.
type line struct {
	text string
	href string
}

type document struct {
	url   string
	title string
	lines []line
}

// blockAtoms start a new line before and after their content.
var blockAtoms = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Br: true, atom.Li: true, atom.Tr: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Pre: true, atom.Blockquote: true, atom.Section: true, atom.Article: true,
	atom.Header: true, atom.Footer: true, atom.Ul: true, atom.Ol: true, atom.Table: true,
	atom.Form: true, atom.Hr: true,
}

// skipAtoms are never rendered.
var skipAtoms = map[atom.Atom]bool{
	atom.Script: true, atom.Style: true, atom.Head: true, atom.Noscript: true, atom.Template: true,
}

// parseHTML lays out src as lines of at most cols characters.
func parseHTML(src string, cols int) (title string, lines []line, err error) {
	root, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return "", nil, err
	}
	var (
		cur  strings.Builder
		href string
	)
	breakLine := func() {
		text := strings.Join(strings.Fields(cur.String()), " ")
		if text != "" {
			lines = append(lines, wrap(text, href, cols)...)
		}
		cur.Reset()
		href = ""
	}
	var walk func(n *html.Node, link string)
	walk = func(n *html.Node, link string) {
		if n.Type == html.ElementNode {
			if skipAtoms[n.DataAtom] {
				// The parser always moves <title> into <head>.
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					if c.Type == html.ElementNode && c.DataAtom == atom.Title && c.FirstChild != nil {
						title = strings.TrimSpace(c.FirstChild.Data)
					}
				}
				return
			}
			if n.DataAtom == atom.A {
				for _, a := range n.Attr {
					if a.Key == "href" {
						link = a.Val
					}
				}
			}
			if blockAtoms[n.DataAtom] {
				breakLine()
			}
		}
		if n.Type == html.TextNode {
			if strings.TrimSpace(n.Data) != "" && link != "" && href == "" {
				href = link
			}
			cur.WriteString(n.Data)
			cur.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, link)
		}
		if n.Type == html.ElementNode && blockAtoms[n.DataAtom] {
			breakLine()
		}
	}
	walk(root, "")
	breakLine()
	return title, lines, nil
}

// parseText lays out plain text, one line per source line.
func parseText(src string, cols int) []line {
	var lines []line
	for _, s := range strings.Split(strings.ReplaceAll(src, "\r\n", "\n"), "\n") {
		if s == "" {
			lines = append(lines, line{})
			continue
		}
		lines = append(lines, wrap(s, "", cols)...)
	}
	for len(lines) > 0 && lines[len(lines)-1].text == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// wrap splits text at word boundaries into lines of at most cols runes.
func wrap(text, href string, cols int) []line {
	if cols <= 0 {
		return []line{{text: text, href: href}}
	}
	var (
		out []line
		cur []rune
	)
	for _, w := range strings.Fields(text) {
		rw := []rune(w)
		if len(cur) > 0 && len(cur)+1+len(rw) > cols {
			out = append(out, line{text: string(cur), href: href})
			cur = cur[:0]
		}
		for len(rw) > cols {
			if len(cur) > 0 {
				out = append(out, line{text: string(cur), href: href})
				cur = cur[:0]
			}
			out = append(out, line{text: string(rw[:cols]), href: href})
			rw = rw[cols:]
		}
		if len(cur) > 0 {
			cur = append(cur, ' ')
		}
		cur = append(cur, rw...)
	}
	if len(cur) > 0 {
		out = append(out, line{text: string(cur), href: href})
	}
	return out
}
