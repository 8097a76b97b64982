package judge

// ExtractJSONObject returns the first balanced brace-delimited substring of
// s. Models rarely return pure JSON; replies arrive wrapped in prose, code
// fences, or trailing commentary, so the caller gets the raw candidate
// object and decides whether it decodes. Braces inside JSON strings and
// escaped quotes do not count toward balance. Returns ok=false when s holds
// no opening brace or the braces never balance.
func ExtractJSONObject(s string) (string, bool) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if escaped {
			escaped = false
			continue
		}

		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			if start >= 0 {
				inString = !inString
			}
		case '{':
			if inString {
				continue
			}
			if start < 0 {
				start = i
			}
			depth++
		case '}':
			if inString || start < 0 {
				continue
			}
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}

	return "", false
}
