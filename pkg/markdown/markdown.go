// Package markdown converts the HTML fragments stored in legacy text columns
// into Markdown.
package markdown

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var tagPattern = regexp.MustCompile(`(?i)</?[a-z][a-z0-9]*(\s[^>]*)?/?>`)

var whitespace = regexp.MustCompile(`\s+`)

// ContainsHTML reports whether s has at least one HTML tag.
func ContainsHTML(s string) bool {
	return tagPattern.MatchString(s)
}

// FromHTML converts an HTML fragment to Markdown. Text without tags is
// returned trimmed but otherwise untouched, so existing Markdown survives.
//
// Supported: p, br, b/strong, i/em, a, ul/ol/li, h1-h6, blockquote.
// Other tags are dropped and their text kept; script and style content is dropped.
func FromHTML(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	if !ContainsHTML(s) {
		return strings.TrimSpace(s)
	}

	out, err := convert(strings.NewReader(s))
	if err != nil {
		// The tokenizer only fails on read errors; a string reader never does.
		return strings.TrimSpace(s)
	}
	return out
}

// StripHTML removes tags, decodes entities and collapses whitespace. Used for
// internal names, which are plain text.
func StripHTML(s string) string {
	s = tagPattern.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

type list struct {
	ordered bool
	count   int
}

type converter struct {
	buf     []byte
	lists   []list
	links   []string
	skip    int
	inQuote int
}

func convert(r io.Reader) (string, error) {
	c := &converter{}
	z := html.NewTokenizer(r)
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				return strings.TrimSpace(string(c.buf)), nil
			}
			return "", fmt.Errorf("tokenize html: %w", z.Err())
		case html.TextToken:
			if c.skip == 0 {
				c.text(string(z.Text()))
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			c.start(tok, tt == html.SelfClosingTagToken)
		case html.EndTagToken:
			tok := z.Token()
			c.end(tok)
		}
	}
}

func (c *converter) start(tok html.Token, selfClosing bool) {
	switch tok.DataAtom {
	case atom.Script, atom.Style:
		if !selfClosing {
			c.skip++
		}
	case atom.Br:
		c.hardBreak()
	case atom.P, atom.Div:
		c.blockBreak()
	case atom.Blockquote:
		c.blockBreak()
		c.inQuote++
		c.write("> ")
	case atom.B, atom.Strong:
		c.write("**")
	case atom.I, atom.Em:
		c.write("*")
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		c.blockBreak()
		level := int(tok.Data[1] - '0')
		c.write(strings.Repeat("#", level) + " ")
	case atom.Ul, atom.Ol:
		if len(c.lists) == 0 {
			c.blockBreak()
		}
		c.lists = append(c.lists, list{ordered: tok.DataAtom == atom.Ol})
	case atom.Li:
		c.lineStart()
		indent := 0
		if len(c.lists) > 1 {
			indent = (len(c.lists) - 1) * 2
		}
		c.write(strings.Repeat(" ", indent))
		if n := len(c.lists); n > 0 && c.lists[n-1].ordered {
			c.lists[n-1].count++
			c.write(fmt.Sprintf("%d. ", c.lists[n-1].count))
		} else {
			c.write("- ")
		}
	case atom.A:
		href := ""
		for _, attr := range tok.Attr {
			if attr.Key == "href" {
				href = strings.TrimSpace(attr.Val)
			}
		}
		c.links = append(c.links, href)
		if href != "" {
			c.write("[")
		}
	}
}

func (c *converter) end(tok html.Token) {
	switch tok.DataAtom {
	case atom.Script, atom.Style:
		if c.skip > 0 {
			c.skip--
		}
	case atom.P, atom.Div, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		c.blockBreak()
	case atom.Blockquote:
		if c.inQuote > 0 {
			c.inQuote--
		}
		c.blockBreak()
	case atom.B, atom.Strong:
		c.trimTrailingSpace()
		c.write("**")
	case atom.I, atom.Em:
		c.trimTrailingSpace()
		c.write("*")
	case atom.Ul, atom.Ol:
		if n := len(c.lists); n > 0 {
			c.lists = c.lists[:n-1]
		}
		if len(c.lists) == 0 {
			c.blockBreak()
		}
	case atom.A:
		n := len(c.links)
		if n == 0 {
			return
		}
		href := c.links[n-1]
		c.links = c.links[:n-1]
		if href != "" {
			c.write("](" + href + ")")
		}
	}
}

// text writes s with whitespace runs collapsed to single spaces.
func (c *converter) text(s string) {
	s = whitespace.ReplaceAllString(s, " ")
	if s == "" {
		return
	}
	if c.atLineStart() || c.endsWith(' ') {
		s = strings.TrimLeft(s, " ")
	}
	c.write(s)
}

func (c *converter) hardBreak() {
	c.trimTrailingSpace()
	c.write("  \n")
	if c.inQuote > 0 {
		c.write("> ")
	}
}

func (c *converter) blockBreak() {
	c.buf = []byte(strings.TrimRight(string(c.buf), " \n"))
	if len(c.buf) > 0 {
		c.write("\n\n")
	}
}

func (c *converter) lineStart() {
	if !c.atLineStart() {
		c.trimTrailingSpace()
		c.write("\n")
	}
}

func (c *converter) atLineStart() bool {
	return len(c.buf) == 0 || c.endsWith('\n')
}

func (c *converter) endsWith(b byte) bool {
	return len(c.buf) > 0 && c.buf[len(c.buf)-1] == b
}

func (c *converter) trimTrailingSpace() {
	for len(c.buf) > 0 && c.buf[len(c.buf)-1] == ' ' {
		c.buf = c.buf[:len(c.buf)-1]
	}
}

func (c *converter) write(s string) {
	c.buf = append(c.buf, s...)
}
