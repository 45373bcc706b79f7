// Package libindex implements spec.md §4.2's SymbolLibraryIndex (and,
// via the same engine, the board-side footprint-library analog named in
// §4.8). It discovers library files across a search path, maps
// "library:symbol" names to the file that defines them without fully
// materializing every file, and memoizes parsed trees by absolute path +
// modification time — one of the two process-wide caches (pkg/pins holds
// the other).
package libindex

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mixelpixx/kicad-mcp-server/pkg/kerrors"
	"github.com/mixelpixx/kicad-mcp-server/pkg/logx"
	"github.com/mixelpixx/kicad-mcp-server/pkg/sx"
)

// cacheEntry holds a memoized parsed library tree.
type cacheEntry struct {
	tree    *sx.Node
	modTime time.Time
}

// layout abstracts the two concrete library shapes this system reads:
// a single-file-many-symbols schematic symbol library, and a
// one-footprint-per-file board footprint library (a ".pretty" directory).
// Each layout knows how to discover files and how to read the name set
// out of one. The name set is read from a fully parsed file: a library
// file is parsed whole the first time one of its names is looked up.
type layout interface {
	// discover walks dir and returns (libraryName, filePath) pairs.
	discover(dir string) []libraryFile
	// names extracts the symbol/footprint names defined in a parsed file.
	names(tree *sx.Node, libraryName string) []string
	// defTag is the list tag a single definition is stored under.
	defTag() string
}

type libraryFile struct {
	library string
	path    string
}

// Index is a process-wide, path-keyed cache over one library layout.
// Per spec.md §5, it needs no lock: every operation runs to completion
// within a single request, and requests are processed strictly in order.
type Index struct {
	kind       string // "symbol" or "footprint", for error messages
	searchDirs []string
	layout     layout

	scanned    bool
	libToPath  map[string]string // library name -> file (symbol) or dir (footprint)
	nameToFile map[string]string // "library:name" -> file actually holding it
	cache      map[string]cacheEntry
}

// NewSymbolIndex builds the SymbolLibraryIndex described in spec.md §4.2.
func NewSymbolIndex(searchDirs []string) *Index {
	return &Index{kind: "symbol", searchDirs: searchDirs, layout: symbolLayout{}}
}

// NewFootprintIndex builds the analogous index for board footprint
// libraries, per spec.md §4.8.
func NewFootprintIndex(searchDirs []string) *Index {
	return &Index{kind: "footprint", searchDirs: searchDirs, layout: footprintLayout{}}
}

func (ix *Index) ensureScanned() {
	if ix.scanned {
		return
	}
	ix.libToPath = map[string]string{}
	ix.nameToFile = map[string]string{}
	ix.cache = map[string]cacheEntry{}

	for _, dir := range ix.searchDirs {
		for _, lf := range ix.layout.discover(dir) {
			ix.libToPath[lf.library] = lf.path
		}
	}
	ix.scanned = true
	logx.L().WithFields(map[string]interface{}{"kind": ix.kind, "libraries": len(ix.libToPath)}).Debug("library index scanned")
}

// Locate returns the file path containing the named symbol/footprint.
func (ix *Index) Locate(library, symbol string) (string, error) {
	ix.ensureScanned()

	fqn := library + ":" + symbol
	if path, ok := ix.nameToFile[fqn]; ok {
		return path, nil
	}

	libPath, ok := ix.libToPath[library]
	if !ok {
		return "", ix.notFound(library, symbol)
	}

	names, path, err := ix.namesIn(library, libPath)
	if err != nil {
		return "", err
	}
	for _, n := range names {
		ix.nameToFile[library+":"+n] = path
	}
	if path, ok := ix.nameToFile[fqn]; ok {
		return path, nil
	}
	return "", ix.notFound(library, symbol)
}

// namesIn resolves the path(s) actually holding definitions for a
// library and extracts their names, touching the parse cache.
func (ix *Index) namesIn(library, libPath string) ([]string, string, error) {
	tree, err := ix.parseCached(libPath)
	if err != nil {
		return nil, "", err
	}
	return ix.layout.names(tree, library), libPath, nil
}

// parseCached parses libPath, reusing the cached tree unless the file's
// modification time has moved on (spec.md §4.2 caching rule).
func (ix *Index) parseCached(path string) (*sx.Node, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, kerrors.Wrap(kerrors.IOError, err, "stat %s", path)
	}
	if entry, ok := ix.cache[path]; ok && entry.modTime.Equal(info.ModTime()) {
		return entry.tree, nil
	}

	tree, err := sx.ReadFile(path)
	if err != nil {
		return nil, err
	}
	ix.cache[path] = cacheEntry{tree: tree, modTime: info.ModTime()}
	logx.L().WithField("path", path).Debug("library file parsed")
	return tree, nil
}

// ExtractDefinition returns a deep copy of the named SymbolDefinition
// (or FootprintDefinition) subtree, per spec.md §4.2.
func (ix *Index) ExtractDefinition(library, symbol string) (*sx.Node, error) {
	path, err := ix.Locate(library, symbol)
	if err != nil {
		return nil, err
	}
	tree, err := ix.parseCached(path)
	if err != nil {
		return nil, err
	}
	fqn := library + ":" + symbol
	for _, def := range sx.FindAll(tree, ix.layout.defTag()) {
		if name, err := sx.StringAt(def, 1); err == nil && matchesDefName(ix.kind, name, library, symbol, fqn) {
			return def.Clone(), nil
		}
	}
	return nil, ix.notFound(library, symbol)
}

// matchesDefName accounts for the two naming conventions: symbol
// definitions are named with their full "library:symbol" qualifier
// in-file, while a footprint file only names the bare footprint.
func matchesDefName(kind, defName, library, symbol, fqn string) bool {
	if kind == "footprint" {
		return defName == symbol || defName == fqn
	}
	return defName == fqn
}

// SearchByName does a case-insensitive substring search across all
// discovered names, optionally restricted to one library.
func (ix *Index) SearchByName(pattern string, library string) []string {
	ix.ensureScanned()
	pattern = strings.ToLower(pattern)

	var libs []string
	if library != "" {
		libs = []string{library}
	} else {
		for lib := range ix.libToPath {
			libs = append(libs, lib)
		}
	}
	sort.Strings(libs)

	var out []string
	for _, lib := range libs {
		libPath, ok := ix.libToPath[lib]
		if !ok {
			continue
		}
		names, _, err := ix.namesIn(lib, libPath)
		if err != nil {
			continue
		}
		for _, n := range names {
			if strings.Contains(strings.ToLower(n), pattern) {
				out = append(out, lib+":"+n)
			}
		}
	}
	sort.Strings(out)
	return out
}

// notFound builds a SymbolNotFound error, attaching the closest fuzzy
// match (edit distance <= 3) across every name this index has seen, per
// spec.md §7.
func (ix *Index) notFound(library, symbol string) error {
	err := kerrors.New(kerrors.SymbolNotFound, "no %s named %q in library %q", ix.kind, symbol, library)
	if suggestion, ok := ix.closestMatch(library, symbol); ok {
		err = err.WithSuggestion(suggestion)
	}
	return err
}

func (ix *Index) closestMatch(library, symbol string) (string, bool) {
	best := ""
	bestDist := 4 // strictly better than "within 3" threshold means <=3 qualifies
	for lib, path := range ix.libToPath {
		names, _, err := ix.namesIn(lib, path)
		if err != nil {
			continue
		}
		for _, n := range names {
			target := symbol
			candidate := n
			if lib != library {
				candidate = lib + ":" + n
				target = library + ":" + symbol
			}
			d := levenshtein(strings.ToLower(target), strings.ToLower(candidate))
			if d < bestDist {
				bestDist = d
				best = candidate
			}
		}
	}
	if best == "" || bestDist > 3 {
		return "", false
	}
	return best, true
}

// --- symbol library layout -------------------------------------------------

type symbolLayout struct{}

const symbolLibExt = ".kicad_sym"

func (symbolLayout) defTag() string { return "symbol" }

func (symbolLayout) discover(dir string) []libraryFile {
	var out []libraryFile
	entries, err := os.ReadDir(dir)
	if err != nil {
		return out
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), symbolLibExt) {
			continue
		}
		library := strings.TrimSuffix(e.Name(), symbolLibExt)
		out = append(out, libraryFile{library: library, path: filepath.Join(dir, e.Name())})
	}
	return out
}

func (symbolLayout) names(tree *sx.Node, _ string) []string {
	var out []string
	for _, def := range sx.FindAll(tree, "symbol") {
		if name, err := sx.StringAt(def, 1); err == nil {
			if _, sym, ok := splitFQN(name); ok {
				out = append(out, sym)
			} else {
				out = append(out, name)
			}
		}
	}
	return out
}

func splitFQN(fqn string) (library, symbol string, ok bool) {
	for i := 0; i < len(fqn); i++ {
		if fqn[i] == ':' {
			return fqn[:i], fqn[i+1:], true
		}
	}
	return "", "", false
}

// --- footprint library layout ---------------------------------------------

// footprintLayout treats each "<Library>.pretty" directory under a search
// root as one library, with one ".kicad_mod" file per footprint —
// KiCad's real on-disk convention, unlike the single-file symbol
// libraries above.
type footprintLayout struct{}

const (
	footprintLibSuffix = ".pretty"
	footprintFileExt   = ".kicad_mod"
)

func (footprintLayout) defTag() string { return "footprint" }

func (footprintLayout) discover(dir string) []libraryFile {
	var out []libraryFile
	entries, err := os.ReadDir(dir)
	if err != nil {
		return out
	}
	for _, e := range entries {
		if !e.IsDir() || !strings.HasSuffix(e.Name(), footprintLibSuffix) {
			continue
		}
		library := strings.TrimSuffix(e.Name(), footprintLibSuffix)
		libDir := filepath.Join(dir, e.Name())
		mods, err := os.ReadDir(libDir)
		if err != nil {
			continue
		}
		for _, m := range mods {
			if m.IsDir() || !strings.HasSuffix(m.Name(), footprintFileExt) {
				continue
			}
			out = append(out, libraryFile{library: library, path: filepath.Join(libDir, m.Name())})
		}
	}
	return out
}

// names for a footprint file is always a single entry: the file itself
// defines exactly one footprint.
func (footprintLayout) names(tree *sx.Node, _ string) []string {
	if name, err := sx.StringAt(tree, 1); err == nil {
		return []string{name}
	}
	return nil
}
