package vault

import (
	"context"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	ferrors "git.home.luguber.info/inful/linklocal/internal/foundation/errors"
)

// Operation names used by MemVault.FailOn.
const (
	OpRead        = "read"
	OpWrite       = "write"
	OpMkdirAll    = "mkdir"
	OpWriteBinary = "write_binary"
)

// MemCalls counts MemVault method invocations.
type MemCalls struct {
	Read        int
	Write       int
	MkdirAll    int
	WriteBinary int
}

// MemVault is an in-memory Vault for tests. WriteBinary and Write require the
// parent directory to exist, like a real filesystem.
type MemVault struct {
	mu       sync.RWMutex
	files    map[string][]byte
	dirs     map[string]bool
	failures map[string]error
	calls    MemCalls
}

// NewMemVault returns an empty in-memory vault.
func NewMemVault() *MemVault {
	return &MemVault{
		files:    make(map[string][]byte),
		dirs:     map[string]bool{".": true},
		failures: make(map[string]error),
	}
}

// Put seeds a file, creating its parent directories.
func (m *MemVault) Put(p string, content string) {
	c, err := Clean(p)
	if err != nil {
		panic(err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[c] = []byte(content)
	m.addDirs(path.Dir(c))
}

// FailOn makes op on p return err.
func (m *MemVault) FailOn(op, p string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[op+":"+path.Clean(p)] = err
}

func (m *MemVault) failure(op, p string) error {
	if err, ok := m.failures[op+":"+p]; ok {
		return err
	}
	return nil
}

func (m *MemVault) addDirs(dir string) {
	for dir != "." && dir != "/" && dir != "" {
		m.dirs[dir] = true
		dir = path.Dir(dir)
	}
}

func (m *MemVault) Read(_ context.Context, p string) (string, error) {
	c, err := Clean(p)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.Read++
	if err := m.failure(OpRead, c); err != nil {
		return "", err
	}
	data, ok := m.files[c]
	if !ok {
		return "", ferrors.WrapError(os.ErrNotExist, ferrors.CategoryFileSystem, "read document").WithContext("path", c).Build()
	}
	return string(data), nil
}

func (m *MemVault) Write(_ context.Context, p string, content string) error {
	return m.write(OpWrite, p, []byte(content))
}

func (m *MemVault) WriteBinary(_ context.Context, p string, data []byte) error {
	return m.write(OpWriteBinary, p, append([]byte(nil), data...))
}

func (m *MemVault) write(op, p string, data []byte) error {
	c, err := Clean(p)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if op == OpWrite {
		m.calls.Write++
	} else {
		m.calls.WriteBinary++
	}
	if err := m.failure(op, c); err != nil {
		return err
	}
	if dir := path.Dir(c); !m.dirs[dir] {
		return ferrors.WrapError(os.ErrNotExist, ferrors.CategoryFileSystem, "parent directory missing").WithContext("path", c).Build()
	}
	m.files[c] = data
	return nil
}

func (m *MemVault) MkdirAll(_ context.Context, dir string) error {
	c, err := Clean(dir)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.MkdirAll++
	if err := m.failure(OpMkdirAll, c); err != nil {
		return err
	}
	m.addDirs(c)
	return nil
}

func (m *MemVault) ListMarkdown(_ context.Context, dir string, recursive bool) ([]string, error) {
	c, err := Clean(dir)
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []string
	for p := range m.files {
		if !IsMarkdown(p) || !under(c, p) {
			continue
		}
		rel := p
		if c != "." {
			rel = strings.TrimPrefix(p, c+"/")
		}
		parts := strings.Split(rel, "/")
		if !recursive && len(parts) > 1 {
			continue
		}
		hidden := false
		for _, part := range parts[:len(parts)-1] {
			if isHidden(part) {
				hidden = true
				break
			}
		}
		if !hidden {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out, nil
}

func under(dir, p string) bool {
	return dir == "." || strings.HasPrefix(p, dir+"/")
}

// File returns the stored bytes at p.
func (m *MemVault) File(p string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.files[path.Clean(p)]
	return data, ok
}

// HasDir reports whether dir was created.
func (m *MemVault) HasDir(dir string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dirs[path.Clean(dir)]
}

// Paths returns every stored file path, sorted.
func (m *MemVault) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.files))
	for p := range m.files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Calls returns the invocation counts so far.
func (m *MemVault) Calls() MemCalls {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls
}

func (m *MemVault) String() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return fmt.Sprintf("MemVault{files: %d, calls: %+v}", len(m.files), m.calls)
}
