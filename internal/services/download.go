package services

import (
	"regexp"
	"strings"
)

var whitespaceRun = regexp.MustCompile(`[\s\p{Zs}]+`)

// DownloadFilename derives the saved file name from a solution title.
func DownloadFilename(title string) string {
	return "council-ai-" + whitespaceRun.ReplaceAllString(strings.ToLower(title), "-") + ".png"
}
