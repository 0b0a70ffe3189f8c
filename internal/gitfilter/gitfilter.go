// Package gitfilter manages the nbstripout git clean filter: the
// filter.nbstripout.* and diff.ipynb.* entries in a git configuration
// store, plus the matching gitattributes lines. It is glue around the git
// command line; nothing here touches notebook content.
package gitfilter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// FilterName is the git filter registered by Install.
const FilterName = "nbstripout"

// Scope selects which git configuration store is used.
type Scope string

const (
	ScopeLocal  Scope = "local"
	ScopeGlobal Scope = "global"
	ScopeSystem Scope = "system"
)

// attrLines are the gitattributes entries Install maintains.
var attrLines = []string{
	"*.ipynb filter=nbstripout",
	"*.zpln filter=nbstripout",
	"*.ipynb diff=ipynb",
}

// attrPrefixes identify lines Uninstall removes again.
var attrPrefixes = []string{"*.ipynb filter", "*.zpln filter", "*.ipynb diff"}

// seam for tests
var commandContext = exec.CommandContext

// Option configures a Manager.
type Option func(*Manager)

// WithScope selects the git configuration scope (default local).
func WithScope(s Scope) Option {
	return func(m *Manager) {
		if s != "" {
			m.scope = s
		}
	}
}

// WithAttributesFile overrides the attributes file location.
func WithAttributesFile(path string) Option {
	return func(m *Manager) {
		m.attrFile = path
	}
}

// Manager installs, removes and inspects the clean filter in one git
// configuration scope.
type Manager struct {
	scope    Scope
	attrFile string
}

// New constructs a Manager using defaults.
func New(opts ...Option) *Manager {
	m := &Manager{scope: ScopeLocal}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Scope returns the configured scope.
func (m *Manager) Scope() Scope { return m.scope }

// Location describes where the filter lives, for status messages.
func (m *Manager) Location(ctx context.Context) string {
	switch m.scope {
	case ScopeSystem:
		return "system-wide"
	case ScopeGlobal:
		return "globally"
	default:
		if dir, err := m.gitDir(ctx); err == nil {
			return fmt.Sprintf("in repository %q", filepath.Dir(dir))
		}
		return "in the current repository"
	}
}

func (m *Manager) configArgs() []string {
	return []string{"config", "--" + string(m.scope)}
}

func (m *Manager) output(ctx context.Context, args ...string) (string, error) {
	cmd := commandContext(ctx, "git", args...)
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return strings.TrimSpace(string(out)), nil
}

// runQuiet runs git and ignores its exit status, for best-effort cleanup.
func (m *Manager) runQuiet(ctx context.Context, args ...string) {
	cmd := commandContext(ctx, "git", args...)
	_ = cmd.Run()
}

func (m *Manager) gitDir(ctx context.Context) (string, error) {
	dir, err := m.output(ctx, "rev-parse", "--git-dir")
	if err != nil {
		return "", err
	}
	return filepath.Abs(dir)
}

// Install registers the clean/smudge filter and the diff textconv, then
// adds the attribute lines. cleanCmd is the command git runs as the filter,
// normally the absolute path of this executable.
func (m *Manager) Install(ctx context.Context, cleanCmd string) error {
	cfg := m.configArgs()
	for _, kv := range [][2]string{
		{"filter.nbstripout.clean", cleanCmd},
		{"filter.nbstripout.smudge", "cat"},
		{"diff.ipynb.textconv", cleanCmd + " -t"},
	} {
		if _, err := m.output(ctx, append(cfg, kv[0], kv[1])...); err != nil {
			return installError(err)
		}
	}

	attrFile, err := m.attributesFile(ctx)
	if err != nil {
		return installError(err)
	}
	return ensureAttrLines(attrFile)
}

// Uninstall removes the filter configuration and the attribute lines.
// Missing configuration entries are not an error.
func (m *Manager) Uninstall(ctx context.Context) error {
	cfg := m.configArgs()
	m.runQuiet(ctx, append(cfg, "--unset", "filter.nbstripout.clean")...)
	m.runQuiet(ctx, append(cfg, "--unset", "filter.nbstripout.smudge")...)
	m.runQuiet(ctx, append(cfg, "--remove-section", "diff.ipynb")...)

	attrFile, err := m.attributesFile(ctx)
	if err != nil {
		return installError(err)
	}
	return removeAttrLines(attrFile)
}

// Info summarizes the installation for one scope.
type Info struct {
	Installed      bool   `json:"installed" yaml:"installed"`
	Location       string `json:"location" yaml:"location"`
	Clean          string `json:"clean,omitempty" yaml:"clean,omitempty"`
	Smudge         string `json:"smudge,omitempty" yaml:"smudge,omitempty"`
	Diff           string `json:"diff,omitempty" yaml:"diff,omitempty"`
	ExtraKeys      string `json:"extra_keys,omitempty" yaml:"extra_keys,omitempty"`
	Attributes     string `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	DiffAttributes string `json:"diff_attributes,omitempty" yaml:"diff_attributes,omitempty"`
}

// Status reports whether the filter is installed in this scope, and with
// what configuration.
func (m *Manager) Status(ctx context.Context) (Info, error) {
	info := Info{Location: m.Location(ctx)}

	clean, err := m.output(ctx, append(m.configArgs(), "filter.nbstripout.clean")...)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return info, fmt.Errorf("git is not on PATH: %w", err)
		}
		return info, nil // unset key: not installed
	}
	info.Clean = clean
	info.Smudge, _ = m.output(ctx, append(m.configArgs(), "filter.nbstripout.smudge")...)
	info.Diff, _ = m.output(ctx, append(m.configArgs(), "diff.ipynb.textconv")...)
	info.ExtraKeys, _ = m.output(ctx, append(m.configArgs(), "filter.nbstripout.extrakeys")...)

	if m.scope == ScopeLocal {
		info.Attributes, _ = m.output(ctx, "check-attr", "filter", "--", "*.ipynb")
		info.DiffAttributes, _ = m.output(ctx, "check-attr", "diff", "--", "*.ipynb")
		if strings.HasSuffix(info.Attributes, "unspecified") {
			return info, nil
		}
	} else if attrFile, err := m.attributesFile(ctx); err == nil {
		if data, err := os.ReadFile(attrFile); err == nil {
			info.Attributes = joinMatching(string(data), "filter")
			info.DiffAttributes = joinMatching(string(data), "diff")
		}
		if info.Attributes == "" {
			return info, nil
		}
	}

	info.Installed = true
	return info, nil
}

// ExtraKeys returns the space-separated key list configured as
// filter.nbstripout.extrakeys, or nil when unset.
func (m *Manager) ExtraKeys(ctx context.Context) []string {
	args := []string{"config"}
	if m.scope != ScopeLocal {
		args = append(args, "--"+string(m.scope))
	}
	out, err := m.output(ctx, append(args, "filter.nbstripout.extrakeys")...)
	if err != nil {
		return nil
	}
	return strings.Fields(out)
}

// attributesFile resolves which attributes file this scope writes to.
func (m *Manager) attributesFile(ctx context.Context) (string, error) {
	path := m.attrFile
	if path == "" {
		var err error
		switch m.scope {
		case ScopeSystem, ScopeGlobal:
			path, err = m.sharedAttributesFile(ctx)
		default:
			var dir string
			dir, err = m.gitDir(ctx)
			path = filepath.Join(dir, "info", "attributes")
		}
		if err != nil {
			return "", err
		}
	}

	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create attributes directory: %w", err)
		}
	}
	return path, nil
}

// sharedAttributesFile handles the global and system scopes: an explicit
// core.attributesFile wins, otherwise the conventional per-scope default.
func (m *Manager) sharedAttributesFile(ctx context.Context) (string, error) {
	if path, err := m.output(ctx, append(m.configArgs(), "core.attributesFile")...); err == nil && path != "" {
		return path, nil
	}

	if m.scope == ScopeGlobal {
		configDir := os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("resolve global attributes file: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
		return filepath.Join(configDir, "git", "attributes"), nil
	}

	dir, err := m.systemConfigDir(ctx)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "gitattributes"), nil
}

// systemConfigDir locates the directory of the system gitconfig by asking
// git where it reads it from.
func (m *Manager) systemConfigDir(ctx context.Context) (string, error) {
	out, err := m.output(ctx, "config", "--system", "--list", "--show-origin")
	if err != nil || out == "" {
		return "", fmt.Errorf("locate system gitconfig: %w", errors.Join(err, errors.New("no system configuration present")))
	}
	origin, _, _ := strings.Cut(out, "\t")
	origin = strings.TrimPrefix(strings.TrimSpace(origin), "file:")
	abs, err := filepath.Abs(filepath.Dir(origin))
	if err != nil {
		return "", err
	}
	return abs, nil
}

func installError(err error) error {
	if errors.Is(err, exec.ErrNotFound) {
		return fmt.Errorf("git is not on PATH: %w", err)
	}
	return err
}

// ensureAttrLines appends any missing filter/diff attribute lines.
func ensureAttrLines(path string) error {
	existing := ""
	if data, err := os.ReadFile(path); err == nil {
		existing = string(data)
	}

	var missing []string
	for _, line := range attrLines {
		pattern, _, _ := strings.Cut(line, "=")
		if !strings.Contains(existing, pattern) {
			missing = append(missing, line)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("write attributes file: %w", err)
	}
	defer f.Close()

	out := strings.Join(missing, "\n") + "\n"
	if existing != "" && !strings.HasSuffix(existing, "\n") {
		out = "\n" + out
	}
	if _, err := f.WriteString(out); err != nil {
		return fmt.Errorf("write attributes file: %w", err)
	}
	return nil
}

// removeAttrLines filters the managed attribute lines back out.
func removeAttrLines(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read attributes file: %w", err)
	}

	var kept []string
	for _, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
		managed := false
		for _, prefix := range attrPrefixes {
			if strings.HasPrefix(line, prefix) {
				managed = true
				break
			}
		}
		if !managed {
			kept = append(kept, line)
		}
	}

	out := strings.Join(kept, "\n")
	if out != "" {
		out += "\n"
	}
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		return fmt.Errorf("write attributes file: %w", err)
	}
	return nil
}

// joinMatching returns the attribute lines mentioning kind, joined.
func joinMatching(attrs, kind string) string {
	var matched []string
	for _, line := range strings.Split(attrs, "\n") {
		if strings.Contains(line, kind) {
			matched = append(matched, strings.TrimSpace(line))
		}
	}
	return strings.Join(matched, "\n")
}
