package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/linklocal/internal/config"
	"git.home.luguber.info/inful/linklocal/internal/vault"
)

func TestResolveScope(t *testing.T) {
	v := vault.NewMemVault()
	v.Put("index.md", "")
	v.Put("notes/a.md", "")
	v.Put("notes/b.md", "")
	v.Put("notes/deep/c.md", "")
	v.Put(".trash/old.md", "")
	v.Put("notes/image.png", "")
	ctx := context.Background()

	docs, err := ResolveScope(ctx, config.ScopeCurrentFile, "notes/a.md", v, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"notes/a.md"}, docs)

	docs, err = ResolveScope(ctx, config.ScopeCurrentFolder, "notes/a.md", v, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"notes/a.md", "notes/b.md"}, docs)

	docs, err = ResolveScope(ctx, config.ScopeAllFiles, "", v, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"index.md", "notes/a.md", "notes/b.md", "notes/deep/c.md"}, docs)

	docs, err = ResolveScope(ctx, config.ScopeChanged, "", v, func() ([]string, error) {
		return []string{"notes/b.md"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"notes/b.md"}, docs)
}

func TestResolveScope_Errors(t *testing.T) {
	v := vault.NewMemVault()
	ctx := context.Background()

	_, err := ResolveScope(ctx, config.ScopeCurrentFile, "", v, nil)
	assert.Error(t, err)
	_, err = ResolveScope(ctx, config.ScopeCurrentFile, "../outside.md", v, nil)
	assert.Error(t, err)
	_, err = ResolveScope(ctx, config.ScopeChanged, "", v, nil)
	assert.Error(t, err)
	_, err = ResolveScope(ctx, config.Scope("everything"), "", v, nil)
	assert.Error(t, err)
}
