package parser

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SplitTopLevelArrayValues splits text of the form [v0,v1,...] into the
// text of its top level values without decoding them. Objects and arrays
// are returned intact; strings are returned unquoted.
func SplitTopLevelArrayValues(text string) ([]string, error) {
	tokens, err := splitTopLevel(text)
	if err != nil {
		return nil, err
	}

	for i, token := range tokens {
		tokens[i] = unquote(token)
	}
	return tokens, nil
}

// splitTopLevel returns the trimmed text of each top level value. Commas
// split only at depth zero outside of strings.
func splitTopLevel(text string) ([]string, error) {
	text = strings.TrimSpace(text)
	if len(text) < 2 || text[0] != '[' || text[len(text)-1] != ']' {
		return nil, fmt.Errorf("%w: not enclosed in brackets", ErrMalformedArray)
	}
	body := text[1 : len(text)-1]

	var (
		tokens   []string
		depth    int
		start    int
		inString bool
		escaped  bool
	)

	for i := 0; i < len(body); i++ {
		c := body[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("%w: unbalanced %q at %d", ErrMalformedArray, c, i+1)
			}
		case ',':
			if depth > 0 {
				continue
			}
			token := strings.TrimSpace(body[start:i])
			if token == "" {
				return nil, fmt.Errorf("%w: empty value at %d", ErrMalformedArray, i+1)
			}
			tokens = append(tokens, token)
			start = i + 1
		}
	}

	if inString {
		return nil, fmt.Errorf("%w: unterminated string", ErrMalformedArray)
	}
	if depth != 0 {
		return nil, fmt.Errorf("%w: unbalanced brackets", ErrMalformedArray)
	}

	last := strings.TrimSpace(body[start:])
	if last == "" {
		if len(tokens) > 0 {
			return nil, fmt.Errorf("%w: trailing comma", ErrMalformedArray)
		}
		return []string{}, nil
	}
	return append(tokens, last), nil
}

func unquote(token string) string {
	if len(token) < 2 || token[0] != '"' || token[len(token)-1] != '"' {
		return token
	}

	var s string
	if err := json.Unmarshal([]byte(token), &s); err != nil {
		return token[1 : len(token)-1]
	}
	return s
}
