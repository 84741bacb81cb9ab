package chunker

import (
	"regexp"
	"strings"
)

// ChunkText splits text into overlapping fixed-size chunks. Sizes are in
// characters, not bytes, so a multi-byte character never splits across a
// chunk boundary. Each chunk is trimmed of surrounding whitespace and empty
// chunks are dropped. The start offset advances by chunkSize-overlap, so
// consecutive chunks share the last overlap characters of the previous chunk.
//
// If overlap >= chunkSize the advance step would not progress; in that case
// exactly one chunk is emitted.
func ChunkText(text string, chunkSize, overlap int) []string {
	if len(text) == 0 || chunkSize <= 0 {
		return nil
	}
	if overlap < 0 {
		overlap = 0
	}

	runes := []rune(text)

	var chunks []string
	start := 0
	for start < len(runes) {
		end := min(start+chunkSize, len(runes))
		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		// guard against a non-advancing window
		if chunkSize <= overlap {
			break
		}
		start += chunkSize - overlap
	}

	return chunks
}

var sentenceBoundary = regexp.MustCompile(`([.!?])\s+`)

// ChunkBySentences splits text at sentence-ending punctuation followed by
// whitespace, then greedily packs sentences into chunks of at most
// maxChunkSize characters. A single sentence longer than maxChunkSize becomes
// its own chunk.
func ChunkBySentences(text string, maxChunkSize int) []string {
	if len(text) == 0 || maxChunkSize <= 0 {
		return nil
	}

	sentences := splitSentences(text)

	var chunks []string
	var current strings.Builder
	for _, sentence := range sentences {
		if current.Len() > 0 && current.Len()+len(sentence)+1 > maxChunkSize {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(sentence)
	}
	if current.Len() > 0 {
		chunks = append(chunks, strings.TrimSpace(current.String()))
	}

	return chunks
}

func splitSentences(text string) []string {
	marked := sentenceBoundary.ReplaceAllString(text, "$1\x00")
	parts := strings.Split(marked, "\x00")

	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			sentences = append(sentences, p)
		}
	}
	return sentences
}
