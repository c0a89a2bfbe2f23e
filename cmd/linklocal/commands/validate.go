package commands

import (
	"strings"

	"git.home.luguber.info/inful/linklocal/internal/config"
	"git.home.luguber.info/inful/linklocal/internal/util/sets"
)

// ValidateCmd implements the 'validate' command.
type ValidateCmd struct{}

func (ValidateCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	res := config.ValidateSettings(cfg)
	if !res.Valid {
		for _, msg := range res.Errors {
			printf(g, "✗ %s\n", msg)
		}
		return res.Err()
	}
	printf(g, "✓ configuration is valid\n")
	printf(g, "  tasks:      %s\n", joinTasks(cfg.TaskSet().List()))
	printf(g, "  scope:      %s\n", cfg.Scope)
	printf(g, "  extensions: %s\n", strings.Join(sets.Sorted(cfg.ActiveExtensions()), " "))
	printf(g, "  store:      %s/%s\n", cfg.StorePath, cfg.StoreFileName)
	return nil
}

func joinTasks(tasks []config.Task) string {
	names := make([]string, len(tasks))
	for i, t := range tasks {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
