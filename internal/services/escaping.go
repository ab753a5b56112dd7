package services

import (
	"html"
	"strings"
)

// htmlText builds a message for HTML parse mode. Every piece of dynamic
// text passed to it is escaped.
type htmlText struct {
	sb strings.Builder
}

func (h *htmlText) raw(s string) *htmlText {
	h.sb.WriteString(s)
	return h
}

func (h *htmlText) text(s string) *htmlText {
	h.sb.WriteString(html.EscapeString(s))
	return h
}

func (h *htmlText) bold(s string) *htmlText {
	return h.raw("<b>").text(s).raw("</b>")
}

func (h *htmlText) italic(s string) *htmlText {
	return h.raw("<i>").text(s).raw("</i>")
}

// wordList writes one line per word, each starting with marker.
func (h *htmlText) wordList(marker string, words []string, style func(*htmlText, string) *htmlText) *htmlText {
	for _, w := range words {
		h.raw("\n").raw(marker).raw(" ")
		style(h, w)
	}
	return h
}

func (h *htmlText) String() string {
	return h.sb.String()
}
