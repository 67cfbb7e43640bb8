package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"round/internal/round"
)

// paletteColors maps the palette names used in identity colour classes to
// ANSI 256 colours.
var paletteColors = map[string]lipgloss.Color{
	"gray":    lipgloss.Color("245"),
	"amber":   lipgloss.Color("214"),
	"sky":     lipgloss.Color("39"),
	"emerald": lipgloss.Color("35"),
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	keyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(11)
	readyStyle = lipgloss.NewStyle().Foreground(paletteColors["emerald"]).Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(paletteColors["gray"])
)

// identityStyle colours a level the way the web client does, using the text
// colour named in the identity's colour class.
func identityStyle(identity round.Identity) lipgloss.Style {
	for _, class := range strings.Fields(identity.ColorClass) {
		if !strings.HasPrefix(class, "text-") {
			continue
		}
		parts := strings.Split(strings.TrimPrefix(class, "text-"), "-")
		if color, ok := paletteColors[parts[0]]; ok {
			return lipgloss.NewStyle().Foreground(color).Bold(true)
		}
	}
	return lipgloss.NewStyle()
}

func readinessStyle(readiness round.Readiness) lipgloss.Style {
	if readiness.Ready {
		return readyStyle
	}
	return mutedStyle
}
