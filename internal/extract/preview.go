package extract

// Preview returns the first limit runes of text and whether anything was cut.
func Preview(text string, limit int) (string, bool) {
	if limit <= 0 {
		return "", text != ""
	}
	count := 0
	for i := range text {
		if count == limit {
			return text[:i], true
		}
		count++
	}
	return text, false
}
