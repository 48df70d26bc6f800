package clip

import (
	"strings"
	"unicode"
)

// ArtifactName derives a download filename from a clip title: runs of
// non-alphanumeric characters collapse to a single dash, the result is
// lower-cased, and ext (including the dot) is appended. The extension must
// match the negotiated container, not a fixed one.
func ArtifactName(title, ext string) string {
	var b strings.Builder
	dash := false
	for _, r := range title {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}

	name := strings.Trim(b.String(), "-")
	if name == "" {
		name = "clip"
	}
	return name + ext
}
