package commands

import (
	"strings"

	"github.com/pterm/pterm"

	"git.home.luguber.info/inful/linklocal/internal/presets"
)

// PresetsCmd implements the 'presets' command.
type PresetsCmd struct{}

func (PresetsCmd) Run(g *Global, _ *CLI) error {
	data := pterm.TableData{{"Preset", "Extensions"}}
	for _, name := range presets.Names() {
		exts, _ := presets.Lookup(name)
		data = append(data, []string{name, strings.Join(exts, " ")})
	}
	return renderTable(g, data)
}
