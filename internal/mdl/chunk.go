package mdl

import (
	"strings"
	"sync"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

var sentenceTokenizer = sync.OnceValue(func() *sentences.DefaultSentenceTokenizer {
	tok, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		// The english training data is embedded in the package; this
		// only fails on a broken build.
		panic("initialize sentence tokenizer: " + err.Error())
	}
	return tok
})

// chunkText splits long description text into chunks of at most maxChars,
// on sentence boundaries where possible. Short text comes back as a
// single chunk; a single oversized sentence is kept whole rather than cut
// mid-sentence.
func chunkText(text string, maxChars int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if maxChars <= 0 || len(text) <= maxChars {
		return []string{text}
	}

	var (
		chunks  []string
		current strings.Builder
	)
	for _, s := range sentenceTokenizer().Tokenize(text) {
		sentence := strings.TrimSpace(s.Text)
		if sentence == "" {
			continue
		}
		if current.Len() > 0 && current.Len()+1+len(sentence) > maxChars {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(sentence)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}
