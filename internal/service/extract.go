package service

// jsonObjectCandidates returns every balanced top-level {...} block in text,
// in order of appearance. Braces inside JSON string literals are ignored; an
// opening brace that never balances is skipped.
func jsonObjectCandidates(text string) []string {
	var out []string
	for i := 0; i < len(text); i++ {
		if text[i] != '{' {
			continue
		}
		end := matchBrace(text, i)
		if end < 0 {
			continue
		}
		out = append(out, text[i:end+1])
		i = end
	}
	return out
}

// matchBrace returns the index of the brace closing the one at start, or -1.
func matchBrace(text string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
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
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
