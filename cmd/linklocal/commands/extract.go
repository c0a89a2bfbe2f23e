package commands

import (
	"encoding/json"
	"io"
	"os"

	"github.com/pterm/pterm"

	"git.home.luguber.info/inful/linklocal/internal/extract"
	ferrors "git.home.luguber.info/inful/linklocal/internal/foundation/errors"
)

// ExtractCmd implements the 'extract' command.
type ExtractCmd struct {
	File   string `arg:"" help:"Markdown file to scan, or - for stdin"`
	Format string `help:"Output format" enum:"text,json" default:"text"`
}

func (c *ExtractCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}

	text, err := readInput(c.File)
	if err != nil {
		return err
	}

	ex := extract.New(cfg.ActiveExtensions(), extract.Options{
		ExcludeImages: cfg.Extract.ExcludeImages,
		SkipCode:      cfg.Extract.SkipCode,
		HTMLImages:    cfg.Extract.HTMLImages,
	})
	links := ex.Extract(text)
	if links == nil {
		links = []extract.Link{}
	}

	if c.Format == "json" {
		enc := json.NewEncoder(g.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(links)
	}

	if len(links) == 0 {
		printf(g, "no downloadable links\n")
		return nil
	}
	data := pterm.TableData{{"Kind", "File name", "URL"}}
	for _, l := range links {
		data = append(data, []string{string(l.Kind), l.FileName, l.OriginalLink})
	}
	return renderTable(g, data)
}

func readInput(file string) (string, error) {
	var (
		data []byte
		err  error
	)
	if file == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to read input").
			WithContext("path", file).Build()
	}
	return string(data), nil
}
