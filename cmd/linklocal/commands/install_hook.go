package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	ferrors "git.home.luguber.info/inful/linklocal/internal/foundation/errors"
	"git.home.luguber.info/inful/linklocal/internal/gitscope"
)

// InstallHookCmd implements the 'install-hook' command.
type InstallHookCmd struct {
	Force bool   `help:"Overwrite existing hook without backup"`
	Dir   string `help:"Directory inside the repository" default:"." type:"path"`
}

const hookContent = `#!/usr/bin/env bash
# linklocal pre-commit hook - Localize links in changed notes
set -e

if ! command -v linklocal &> /dev/null; then
    echo "⚠️  linklocal not found in PATH"
    echo "   Install: go install git.home.luguber.info/inful/linklocal/cmd/linklocal@latest"
    echo "   Skipping link localization..."
    exit 0
fi

echo "🔗 Localizing links in changed notes..."

if ! linklocal run --scope changed --quiet; then
    echo ""
    echo "❌ Link localization failed"
    echo ""
    echo "To bypass this check (not recommended):"
    echo "  git commit --no-verify"
    echo ""
    exit 1
fi

# Rewritten notes and new attachments still need to be staged.
if ! git diff --quiet; then
    echo "ℹ️  Notes were rewritten. Review and stage them, then commit again."
    exit 1
fi
`

// Run executes the install-hook command.
func (cmd *InstallHookCmd) Run(g *Global, _ *CLI) error {
	gitDir, err := gitscope.GitDir(cmd.Dir)
	if err != nil {
		return err
	}

	hooksDir := filepath.Join(gitDir, "hooks")
	hookPath := filepath.Join(hooksDir, "pre-commit")

	if err := os.MkdirAll(hooksDir, 0o755); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create hooks directory").
			WithContext("path", hooksDir).Build()
	}

	// Backup existing hook unless --force
	if _, err := os.Stat(hookPath); err == nil && !cmd.Force {
		backupPath := fmt.Sprintf("%s.backup-%s", hookPath, time.Now().Format("20060102-150405"))
		printf(g, "📦 Backing up existing hook to: %s\n", backupPath)

		content, err := os.ReadFile(hookPath)
		if err != nil {
			return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to read existing hook").Build()
		}
		// #nosec G306 -- hooks must stay executable
		if err := os.WriteFile(backupPath, content, 0o755); err != nil {
			return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create backup").Build()
		}
	}

	// #nosec G306 -- hooks must be executable
	if err := os.WriteFile(hookPath, []byte(hookContent), 0o755); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write hook file").Build()
	}

	printf(g, "✅ Pre-commit hook installed successfully\n\n")
	printf(g, "The hook will:\n")
	printf(g, "  • Run automatically on 'git commit'\n")
	printf(g, "  • Localize links in changed notes only\n")
	printf(g, "  • Stop the commit when notes were rewritten so they can be staged\n\n")
	printf(g, "To uninstall:\n")
	printf(g, "  rm %s\n", hookPath)
	return nil
}
