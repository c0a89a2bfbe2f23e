package commands

import (
	"context"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/linklocal/internal/config"
)

// RunCmd implements the 'run' command.
type RunCmd struct {
	Scope string   `short:"s" help:"Document scope (currentFile, currentFolder, allFiles, changed); defaults to the configured scope"`
	File  string   `short:"f" help:"Current document for the currentFile and currentFolder scopes" type:"path"`
	Tasks []string `short:"t" help:"Tasks to enable (extract, download, replace); prerequisites are implied; defaults to the configured tasks" sep:","`
}

func (r *RunCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	if r.Scope != "" {
		if cfg.Scope, err = config.ParseScope(r.Scope); err != nil {
			return err
		}
	}
	if len(r.Tasks) > 0 {
		// Naming a later stage on the command line implies its prerequisites.
		var ts config.TaskSet
		for _, raw := range r.Tasks {
			t, err := config.ParseTask(raw)
			if err != nil {
				return err
			}
			if err := ts.Enable(t); err != nil {
				return err
			}
		}
		cfg.Tasks = ts.List()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	svc, err := root.newServices(g, cfg)
	if err != nil {
		return err
	}
	defer svc.close()

	_, err = svc.runScope(ctx, cfg.Scope, r.File)
	return err
}
