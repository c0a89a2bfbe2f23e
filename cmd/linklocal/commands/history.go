package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pterm/pterm"

	ferrors "git.home.luguber.info/inful/linklocal/internal/foundation/errors"
	"git.home.luguber.info/inful/linklocal/internal/history"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	RunID string `name:"run" help:"Show the download attempts of this run"`
	Limit int    `short:"n" help:"Number of runs to list" default:"20"`
}

func (h *HistoryCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	dbPath := cfg.History.Path
	if !filepath.IsAbs(dbPath) {
		dbPath = filepath.Join(cfg.Vault, dbPath)
	}
	store, err := history.Open(dbPath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	if h.RunID != "" {
		return h.showRun(ctx, g, store)
	}

	runs, err := store.ListRuns(ctx, h.Limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		printf(g, "no runs recorded\n")
		return nil
	}
	data := pterm.TableData{{"Run", "Started", "Scope", "Status", "Links", "Downloaded", "Failed", "Rewritten"}}
	for _, r := range runs {
		data = append(data, []string{
			r.ID,
			r.StartedAt.Local().Format(time.DateTime),
			r.Scope,
			r.Status,
			strconv.Itoa(r.Summary.Links),
			strconv.Itoa(r.Summary.Downloaded),
			strconv.Itoa(r.Summary.Failed),
			strconv.Itoa(r.Summary.Rewritten),
		})
	}
	return renderTable(g, data)
}

func (h *HistoryCmd) showRun(ctx context.Context, g *Global, store *history.SQLiteStore) error {
	run, err := store.GetRun(ctx, h.RunID)
	if err != nil {
		return err
	}
	attempts, err := store.Attempts(ctx, run.ID)
	if err != nil {
		return err
	}
	printf(g, "Run %s (%s, %s)\n", run.ID, run.Scope, run.Status)
	if len(attempts) == 0 {
		printf(g, "no download attempts\n")
		return nil
	}
	data := pterm.TableData{{"Document", "URL", "Result", "Local path", "Duration"}}
	for _, a := range attempts {
		result := "ok"
		if !a.Success {
			result = a.Error
			if a.StatusCode != 0 {
				result = fmt.Sprintf("HTTP %d", a.StatusCode)
			}
		}
		data = append(data, []string{a.Document, a.URL, result, a.LocalPath, a.Duration.Round(time.Millisecond).String()})
	}
	return renderTable(g, data)
}

func renderTable(g *Global, data pterm.TableData) error {
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryInternal, "render table").Build()
	}
	printf(g, "%s\n", table)
	return nil
}
