// Package config reads the environment variables spec.md §6 recognizes.
// Platform path discovery for the default library search path is named
// in spec.md §1 as an external collaborator; this package supplies only
// a short illustrative default per runtime.GOOS rather than an exhaustive
// KiCad-install prober, and always lets the env vars take precedence.
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Config holds every environment-driven setting the engine consults.
type Config struct {
	SymbolLibraryDirs    []string
	FootprintLibraryDirs []string
	ExternalCheckTool    string
	LogLevel             string
}

// Load reads the environment and fills in built-in defaults. It never
// fails on its own; callers decide whether an empty effective directory
// list is a startup failure (spec.md §6: exit code 1).
func Load() *Config {
	home, _ := os.UserHomeDir()

	cfg := &Config{
		SymbolLibraryDirs:    splitAndJoin(os.Getenv("SYMBOL_LIBRARY_DIRS"), defaultSymbolDirs(home)),
		FootprintLibraryDirs: splitAndJoin(os.Getenv("FOOTPRINT_LIBRARY_DIRS"), defaultFootprintDirs(home)),
		ExternalCheckTool:    os.Getenv("EXTERNAL_CHECK_TOOL"),
		LogLevel:             os.Getenv("LOG_LEVEL"),
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	return cfg
}

// splitAndJoin prepends the colon-separated env value ahead of the
// built-in defaults, per spec.md §6 ("prepended to the default search path").
func splitAndJoin(env string, defaults []string) []string {
	var out []string
	if env != "" {
		for _, p := range strings.Split(env, ":") {
			if p != "" {
				out = append(out, p)
			}
		}
	}
	return append(out, defaults...)
}

func defaultSymbolDirs(home string) []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{filepath.Join(home, "Library", "Application Support", "kicad", "symbols")}
	case "windows":
		return []string{filepath.Join(os.Getenv("APPDATA"), "kicad", "symbols")}
	default:
		return []string{
			filepath.Join(home, ".local", "share", "kicad", "symbols"),
			"/usr/share/kicad/symbols",
		}
	}
}

func defaultFootprintDirs(home string) []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{filepath.Join(home, "Library", "Application Support", "kicad", "footprints")}
	case "windows":
		return []string{filepath.Join(os.Getenv("APPDATA"), "kicad", "footprints")}
	default:
		return []string{
			filepath.Join(home, ".local", "share", "kicad", "footprints"),
			"/usr/share/kicad/footprints",
		}
	}
}

// HasUsableDirs reports whether at least one directory in dirs exists on
// disk, used to decide the spec.md §6 startup-failure exit code.
func HasUsableDirs(dirs []string) bool {
	for _, d := range dirs {
		if info, err := os.Stat(d); err == nil && info.IsDir() {
			return true
		}
	}
	return false
}
