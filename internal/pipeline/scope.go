package pipeline

import (
	"context"
	"path"

	"git.home.luguber.info/inful/linklocal/internal/config"
	ferrors "git.home.luguber.info/inful/linklocal/internal/foundation/errors"
	"git.home.luguber.info/inful/linklocal/internal/vault"
)

// ChangedFunc lists the changed markdown documents of the vault.
type ChangedFunc func() ([]string, error)

// ResolveScope returns the vault-relative documents a run should process.
// current is the document the user is working on; it is required for the
// currentFile and currentFolder scopes.
func ResolveScope(ctx context.Context, scope config.Scope, current string, l vault.Lister, changed ChangedFunc) ([]string, error) {
	switch scope {
	case config.ScopeCurrentFile, config.ScopeCurrentFolder:
		if current == "" {
			return nil, ferrors.ValidationError("a document is required for scope " + string(scope)).
				WithContext("scope", string(scope)).Build()
		}
		doc, err := vault.Clean(current)
		if err != nil {
			return nil, err
		}
		if scope == config.ScopeCurrentFile {
			return []string{doc}, nil
		}
		return l.ListMarkdown(ctx, path.Dir(doc), false)
	case config.ScopeAllFiles:
		return l.ListMarkdown(ctx, ".", true)
	case config.ScopeChanged:
		if changed == nil {
			return nil, ferrors.ConfigError("scope changed requires a git work tree").Build()
		}
		return changed()
	default:
		return nil, ferrors.ValidationError("invalid scope " + string(scope)).Build()
	}
}
