package retrieval

import (
	"regexp"
	"strings"
)

// chunkSplitter breaks a query on newlines, sentence ends, and the
// conjunction "and".
var chunkSplitter = regexp.MustCompile(`\n|\.|\band\b`)

// minChunkLen drops fragments too short to carry a retrievable idea.
const minChunkLen = 8

// ChunkQuery splits a user query into retrievable fragments.
func ChunkQuery(query string) []string {
	var chunks []string
	for _, part := range chunkSplitter.Split(query, -1) {
		part = strings.TrimSpace(part)
		if len(part) > minChunkLen {
			chunks = append(chunks, part)
		}
	}
	return chunks
}

var tokenSplitter = regexp.MustCompile(`[^a-z0-9]+`)

// queryTokens lowercases and tokenizes a query for topic matching.
func queryTokens(query string) map[string]bool {
	tokens := map[string]bool{}
	for _, tok := range tokenSplitter.Split(strings.ToLower(query), -1) {
		if tok != "" {
			tokens[tok] = true
		}
	}
	return tokens
}

// topicMatches reports whether any token of the topic appears in the query
// token set.
func topicMatches(topic string, tokens map[string]bool) bool {
	for _, tok := range tokenSplitter.Split(strings.ToLower(topic), -1) {
		if tok != "" && tokens[tok] {
			return true
		}
	}
	return false
}
