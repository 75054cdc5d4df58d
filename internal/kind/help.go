package kind

import (
	"strings"

	"github.com/mitchellh/go-wordwrap"
)

// minHelpWidth keeps the kind list readable on very narrow terminals.
const minHelpWidth = 20

// HelpText describes the kinds flag and lists every valid kind name,
// wrapped to width columns.
func HelpText(width int) string {
	if width < minHelpWidth {
		width = minHelpWidth
	}
	return "Device kinds to match, comma separated. Possible values:\n\n" +
		wordwrap.WrapString(strings.Join(Names(), ", "), uint(width))
}
