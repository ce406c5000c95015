package jsonutil

import (
	"strings"

	"github.com/tidwall/gjson"
)

const codeFence = "```"

// ExtractJSON pulls the first valid JSON value out of a model reply. Fenced
// blocks win over bare values. Otherwise each '{' or '[' is tried in order and
// the first balanced value that parses is taken, so stray brackets in prose
// are skipped.
func ExtractJSON(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if block, ok := extractFromFence(raw); ok {
		return block, true
	}
	return extractBalanced(raw)
}

func extractFromFence(raw string) (string, bool) {
	start := strings.Index(raw, codeFence)
	if start == -1 {
		return "", false
	}
	rest := raw[start+len(codeFence):]
	end := strings.Index(rest, codeFence)
	if end == -1 {
		return "", false
	}
	block := strings.TrimLeft(rest[:end], "\r\n")
	if idx := strings.Index(block, "\n"); idx != -1 {
		// language tag such as "json"
		first := strings.TrimSpace(block[:idx])
		if first != "" && !strings.ContainsAny(first, "[{") {
			block = block[idx+1:]
		}
	}
	block = strings.TrimSpace(block)
	if block == "" {
		return "", false
	}
	if v, ok := extractBalanced(block); ok {
		return v, true
	}
	return block, true
}

func extractBalanced(raw string) (string, bool) {
	for offset := 0; offset < len(raw); {
		idx := strings.IndexAny(raw[offset:], "{[")
		if idx == -1 {
			return "", false
		}
		start := offset + idx
		if v, ok := balancedAt(raw, start); ok && gjson.Valid(v) {
			return v, true
		}
		offset = start + 1
	}
	return "", false
}

// balancedAt returns the bracket-balanced span opening at raw[start], ignoring
// brackets inside string literals.
func balancedAt(raw string, start int) (string, bool) {
	open := raw[start]
	closer := byte('}')
	if open == '[' {
		closer = ']'
	}
	depth := 0
	inString := false
	escape := false
	for i := start; i < len(raw); i++ {
		ch := raw[i]
		if inString {
			if escape {
				escape = false
				continue
			}
			if ch == '\\' {
				escape = true
				continue
			}
			if ch == '"' {
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case open:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return strings.TrimSpace(raw[start : i+1]), true
			}
		}
	}
	return "", false
}
