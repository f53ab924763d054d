package store

import "strings"

// DeriveSlug turns a title into a URL-safe slug: lowercase, every run of
// characters outside [a-z0-9] collapsed to one hyphen, no leading or
// trailing hyphen. "Hello, World! 2024" becomes "hello-world-2024".
func DeriveSlug(title string) string {
	title = strings.ToLower(title)
	var b strings.Builder
	b.Grow(len(title))
	pending := false
	for _, r := range title {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pending && b.Len() > 0 {
				b.WriteByte('-')
			}
			pending = false
			b.WriteRune(r)
			continue
		}
		pending = true
	}
	return b.String()
}
