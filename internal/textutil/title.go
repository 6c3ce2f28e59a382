package textutil

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DisplayTextFromStem derives a human label from a file stem: underscores become
// spaces and every word is title-cased ("oak_log" -> "Oak Log").
func DisplayTextFromStem(stem string) string {
	spaced := strings.ReplaceAll(stem, "_", " ")
	return cases.Title(language.Und).String(spaced)
}
