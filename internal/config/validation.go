package config

import (
	"fmt"
	"regexp"
	"strings"

	ferrors "git.home.luguber.info/inful/linklocal/internal/foundation/errors"
	"git.home.luguber.info/inful/linklocal/internal/presets"
	"git.home.luguber.info/inful/linklocal/internal/util/sets"
)

var extensionRe = regexp.MustCompile(`^\.[a-z0-9]+[a-z0-9-]*$`)

// ValidExtension reports whether ext (case-insensitive) looks like ".ext".
func ValidExtension(ext string) bool {
	return extensionRe.MatchString(strings.ToLower(ext))
}

// Result is the outcome of ValidateSettings. All problems are collected.
type Result struct {
	Valid  bool
	Errors []string
}

// Err returns nil for a valid result and a single validation error otherwise.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return ferrors.ValidationError("invalid settings: "+strings.Join(r.Errors, "; ")).
		WithContext("problems", len(r.Errors)).
		Build()
}

// ValidateSettings checks that the pipeline has a sane configuration before
// any document is touched.
func ValidateSettings(cfg *Config) Result {
	var errs []string

	if len(cfg.Tasks) == 0 {
		errs = append(errs, "at least one task must be selected")
	} else {
		errs = append(errs, ValidateTasks(cfg.Tasks)...)
	}

	for _, name := range cfg.PresetExtensions {
		if !presets.Known(name) {
			errs = append(errs, fmt.Sprintf("unknown extension preset %q", name))
		}
	}

	active := cfg.ActiveExtensions()
	if active.Len() == 0 {
		errs = append(errs, "at least one file extension must be selected or added")
	}
	var invalid []string
	for _, ext := range sets.Sorted(active) {
		if !ValidExtension(ext) {
			invalid = append(invalid, ext)
		}
	}
	if len(invalid) > 0 {
		errs = append(errs, fmt.Sprintf("invalid extension format: %s (extensions must start with a dot followed by letters, digits or hyphens)", strings.Join(invalid, ", ")))
	}

	if !cfg.Scope.Valid() {
		errs = append(errs, fmt.Sprintf("invalid scope %q", cfg.Scope))
	}

	if strings.TrimSpace(cfg.StorePath) == "" {
		errs = append(errs, "store path must not be empty")
	}
	if strings.TrimSpace(cfg.StoreFileName) == "" {
		errs = append(errs, "store file name must not be empty")
	}

	return Result{Valid: len(errs) == 0, Errors: errs}
}
