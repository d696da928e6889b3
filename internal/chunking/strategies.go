package chunking

import (
	"strings"

	"github.com/neurosnap/sentences"
)

// splitParagraph splits one paragraph that exceeds limit. Each returned piece
// fits the limit.
func splitParagraph(para string, limit int) []string {
	var out []string
	for _, line := range strings.Split(para, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if Length(line) <= limit {
			out = append(out, line)
			continue
		}
		out = append(out, joinWithin(splitSentences(line, limit), " ", limit)...)
	}
	return out
}

// splitSentences tokenizes a line into sentences, further breaking any
// sentence longer than limit at spaces.
func splitSentences(line string, limit int) []string {
	tokenizer := sentences.NewSentenceTokenizer(sentences.NewStorage())

	var out []string
	for _, s := range tokenizer.Tokenize(line) {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		if Length(text) <= limit {
			out = append(out, text)
			continue
		}
		out = append(out, joinWithin(splitWords(text, limit), " ", limit)...)
	}
	if len(out) == 0 {
		return splitWords(line, limit)
	}
	return out
}

// splitWords breaks text at whitespace, cutting words longer than limit.
func splitWords(text string, limit int) []string {
	var out []string
	for _, w := range strings.Fields(text) {
		if Length(w) <= limit {
			out = append(out, w)
			continue
		}
		out = append(out, hardCut(w, limit)...)
	}
	return out
}

// joinWithin greedily packs pieces into strings of at most limit.
func joinWithin(pieces []string, sep string, limit int) []string {
	var out []string
	var current strings.Builder
	for _, p := range pieces {
		if current.Len() > 0 && Length(current.String())+Length(sep)+Length(p) > limit {
			out = append(out, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(sep)
		}
		current.WriteString(p)
	}
	if current.Len() > 0 {
		out = append(out, current.String())
	}
	return out
}
