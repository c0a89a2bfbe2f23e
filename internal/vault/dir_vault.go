package vault

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"

	ferrors "git.home.luguber.info/inful/linklocal/internal/foundation/errors"
)

// DirVault is a Vault rooted at a directory on the local filesystem.
type DirVault struct {
	root string
}

// NewDirVault returns a vault rooted at root, which must be an existing directory.
func NewDirVault(root string) (*DirVault, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "resolve vault root").Build()
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "vault root not accessible").
			WithContext("root", abs).
			Fatal().
			Build()
	}
	if !info.IsDir() {
		return nil, ferrors.FileSystemError("vault root is not a directory").WithContext("root", abs).Fatal().Build()
	}
	return &DirVault{root: abs}, nil
}

// Root returns the absolute root directory.
func (v *DirVault) Root() string { return v.root }

// Rel converts an absolute or working-directory-relative filesystem path
// into a vault path.
func (v *DirVault) Rel(fsPath string) (string, error) {
	abs, err := filepath.Abs(fsPath)
	if err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryFileSystem, "resolve path").Build()
	}
	rel, err := filepath.Rel(v.root, abs)
	if err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryFileSystem, "path outside vault").Build()
	}
	return Clean(filepath.ToSlash(rel))
}

func (v *DirVault) resolve(p string) (string, error) {
	c, err := Clean(p)
	if err != nil {
		return "", err
	}
	return filepath.Join(v.root, filepath.FromSlash(c)), nil
}

func (v *DirVault) Read(_ context.Context, p string) (string, error) {
	full, err := v.resolve(p)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(full) // #nosec G304 -- path confined to the vault root
	if err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryFileSystem, "read document").WithContext("path", p).Build()
	}
	return string(data), nil
}

func (v *DirVault) Write(_ context.Context, p string, content string) error {
	full, err := v.resolve(p)
	if err != nil {
		return err
	}
	if err := writeAtomic(full, []byte(content), 0o644); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "write document").WithContext("path", p).Build()
	}
	return nil
}

func (v *DirVault) MkdirAll(_ context.Context, dir string) error {
	full, err := v.resolve(dir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(full, 0o750); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "create directory").WithContext("path", dir).Build()
	}
	return nil
}

func (v *DirVault) WriteBinary(_ context.Context, p string, data []byte) error {
	full, err := v.resolve(p)
	if err != nil {
		return err
	}
	if err := writeAtomic(full, data, 0o644); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "write file").WithContext("path", p).Build()
	}
	return nil
}

// writeAtomic writes through a temporary file in the same directory so a
// successful return always means a complete file.
func writeAtomic(full string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(full), ".linklocal-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, full); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}

func (v *DirVault) ListMarkdown(ctx context.Context, dir string, recursive bool) ([]string, error) {
	start, err := v.resolve(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	err = filepath.WalkDir(start, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if p == start {
				return nil
			}
			if isHidden(d.Name()) || !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsMarkdown(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(v.root, p)
		if err != nil {
			return err
		}
		out = append(out, path.Clean(filepath.ToSlash(rel)))
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "list documents").WithContext("path", dir).Build()
	}
	sort.Strings(out)
	return out, nil
}
