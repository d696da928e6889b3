// Package chunking splits outbound chat messages into pieces that fit the
// transport's length limit and strips markup for plain-text resends.
package chunking

import (
	"strings"
	"unicode/utf8"
)

// TelegramMessageLimit is the largest message Telegram accepts, in UTF-16
// code units.
const TelegramMessageLimit = 4096

// DefaultLimit leaves headroom below TelegramMessageLimit for entity parsing.
const DefaultLimit = 4000

// Length measures text the way Telegram does: in UTF-16 code units.
func Length(text string) int {
	n := 0
	for _, r := range text {
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	return n
}

// Split breaks text into chunks no longer than limit. It prefers paragraph
// boundaries, then line breaks, then sentence ends, then spaces, and only
// cuts inside a word when a single word exceeds the limit. Text within the
// limit is returned as a single chunk. Whitespace-only input yields nil.
func Split(text string, limit int) []string {
	if limit <= 0 {
		limit = DefaultLimit
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if Length(text) <= limit {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder
	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			chunks = append(chunks, s)
		}
		current.Reset()
	}
	add := func(piece, sep string) {
		if current.Len() > 0 && Length(current.String())+Length(sep)+Length(piece) > limit {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString(sep)
		}
		current.WriteString(piece)
	}

	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if Length(para) <= limit {
			add(para, "\n\n")
			continue
		}
		flush()
		for _, piece := range splitParagraph(para, limit) {
			add(piece, "\n")
		}
		flush()
	}
	flush()
	return chunks
}

// hardCut splits a single over-long word at rune boundaries.
func hardCut(word string, limit int) []string {
	var out []string
	for word != "" {
		end, n := 0, 0
		for end < len(word) {
			r, size := utf8.DecodeRuneInString(word[end:])
			w := 1
			if r >= 0x10000 {
				w = 2
			}
			if n+w > limit {
				break
			}
			n += w
			end += size
		}
		if end == 0 {
			_, end = utf8.DecodeRuneInString(word)
		}
		out = append(out, word[:end])
		word = word[end:]
	}
	return out
}
