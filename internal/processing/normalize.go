package processing

import "regexp"

var (
	decorations = regexp.MustCompile(`[*-]`)
	listMarker  = regexp.MustCompile(`\d+\.[ \t]+`)
	blankRun    = regexp.MustCompile(`[ \t]{2,}`)
)

// Normalize strips bullet decorations and numbered-list markers from model output.
// Line breaks are preserved; the extractor depends on them.
func Normalize(input string) string {
	if input == "" {
		return ""
	}
	out := decorations.ReplaceAllString(input, "")
	out = listMarker.ReplaceAllString(out, "")
	return blankRun.ReplaceAllString(out, " ")
}
