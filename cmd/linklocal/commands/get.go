package commands

import (
	"context"
	"os/signal"
	"syscall"
)

// GetCmd implements the 'get' command.
type GetCmd struct {
	URL     string `arg:"" help:"URL to download"`
	Note    string `short:"n" help:"Note whose template variables name the download" type:"path"`
	Replace bool   `short:"r" help:"Rewrite occurrences of the URL in the note"`
}

func (c *GetCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	svc, err := root.newServices(g, cfg)
	if err != nil {
		return err
	}
	defer svc.close()

	_, err = svc.runner.Get(ctx, c.URL, svc.docPath(c.Note), c.Replace)
	return err
}
