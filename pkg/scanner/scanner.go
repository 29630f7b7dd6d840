// Package scanner discovers the source files to analyze.
package scanner

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/panbanda/cyclo/pkg/ast"
	"github.com/panbanda/cyclo/pkg/config"
	"github.com/panbanda/cyclo/pkg/parser"
)

// ErrPathNotFound is returned when the analysis root does not exist.
var ErrPathNotFound = errors.New("path not found")

// DiscoveryError reports that the analysis root could not be walked.
type DiscoveryError struct {
	Path string
	Err  error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("discovering files in %s: %v", e.Path, e.Err)
}

func (e *DiscoveryError) Unwrap() error {
	return e.Err
}

// Scanner finds source files in a directory.
type Scanner struct {
	config    *config.Config
	languages map[ast.Language]bool
	dirs      map[string]bool
	onFile    func(path string)
}

// matcher applies gitignore patterns to paths relative to base.
type matcher struct {
	base string
	m    gitignore.Matcher
}

// NewScanner creates a new file scanner.
func NewScanner(cfg *config.Config) *Scanner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	s := &Scanner{
		config:    cfg,
		languages: make(map[ast.Language]bool, len(cfg.Languages)),
		dirs:      make(map[string]bool, len(cfg.Exclude.Dirs)),
	}
	for _, lang := range cfg.Languages {
		s.languages[ast.Language(strings.ToLower(lang))] = true
	}
	for _, dir := range cfg.Exclude.Dirs {
		s.dirs[dir] = true
	}
	return s
}

// OnFile registers fn to be called with each file as it is discovered.
func (s *Scanner) OnFile(fn func(path string)) *Scanner {
	s.onFile = fn
	return s
}

// findGitRoot finds the root of the git repository by looking for .git directory.
// Returns empty string if not in a git repository.
func findGitRoot(start string) string {
	dir := start
	for {
		gitDir := filepath.Join(dir, ".git")
		if info, err := os.Stat(gitDir); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadMatchers builds matchers from the configured patterns, which are
// relative to root, and from .gitignore files, which are relative to the
// repository root.
func (s *Scanner) loadMatchers(root string) []matcher {
	var matchers []matcher

	if len(s.config.Exclude.Patterns) > 0 {
		patterns := make([]gitignore.Pattern, 0, len(s.config.Exclude.Patterns))
		for _, p := range s.config.Exclude.Patterns {
			patterns = append(patterns, gitignore.ParsePattern(p, nil))
		}
		matchers = append(matchers, matcher{base: root, m: gitignore.NewMatcher(patterns)})
	}

	if s.config.Exclude.Gitignore {
		if gitRoot := findGitRoot(root); gitRoot != "" {
			if patterns, err := gitignore.ReadPatterns(osfs.New(gitRoot), nil); err == nil && len(patterns) > 0 {
				matchers = append(matchers, matcher{base: gitRoot, m: gitignore.NewMatcher(patterns)})
			}
		}
	}

	return matchers
}

func isExcluded(matchers []matcher, path string, isDir bool) bool {
	for _, m := range matchers {
		rel, err := filepath.Rel(m.base, path)
		if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
			continue
		}
		if m.m.Match(strings.Split(rel, string(filepath.Separator)), isDir) {
			return true
		}
	}
	return false
}

// Enabled reports whether path has the extension of an enabled language.
func (s *Scanner) Enabled(path string) bool {
	lang := parser.DetectLanguage(path)
	return lang != ast.LangUnknown && s.languages[lang]
}

// Scan returns the files to analyze under root in lexical walk order.
// A root that is a file is returned as-is when its language is enabled.
// Unreadable subdirectories are skipped; only a missing or unreadable root
// is an error.
func (s *Scanner) Scan(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &DiscoveryError{Path: root, Err: ErrPathNotFound}
		}
		return nil, &DiscoveryError{Path: root, Err: err}
	}

	if !info.IsDir() {
		if s.Enabled(root) {
			return []string{root}, nil
		}
		return []string{}, nil
	}

	files, err := s.ScanDir(root)
	if err != nil {
		return nil, &DiscoveryError{Path: root, Err: err}
	}
	return files, nil
}

// ScanDir recursively scans a directory for source files.
// Uses filepath.WalkDir for better performance (avoids stat calls).
// Validates that all paths stay within the root directory to prevent traversal attacks.
func (s *Scanner) ScanDir(root string) ([]string, error) {
	files := make([]string, 0, 256)

	// Resolve root to absolute path for security validation
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	// Resolve any symlinks in the root path
	absRoot, err = filepath.EvalSymlinks(absRoot)
	if err != nil {
		return nil, err
	}

	matchers := s.loadMatchers(absRoot)

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		relPath, _ := filepath.Rel(root, path)
		absPath := filepath.Join(absRoot, relPath)

		// Security: validate path stays within root (prevent symlink traversal)
		if d.Type()&fs.ModeSymlink != 0 {
			resolved, err := filepath.EvalSymlinks(path)
			if err != nil || !isWithinRoot(resolved, absRoot) {
				return nil
			}
		}

		if d.IsDir() {
			if path == root {
				return nil
			}
			if s.dirs[d.Name()] || isExcluded(matchers, absPath, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if !s.Enabled(path) || isExcluded(matchers, absPath, false) {
			return nil
		}
		files = append(files, path)
		if s.onFile != nil {
			s.onFile(path)
		}
		return nil
	})

	return files, walkErr
}

// isWithinRoot checks if a path is contained within the root directory.
// Returns false if the path escapes via symlinks or relative paths.
func isWithinRoot(path, root string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}

	absPath = filepath.Clean(absPath)
	root = filepath.Clean(root)

	// Add separator to prevent "/root2" matching "/root"
	return absPath == root || strings.HasPrefix(absPath, root+string(filepath.Separator))
}

// GroupByLanguage groups files by their detected language. Keys are sorted
// in the returned order slice.
func GroupByLanguage(files []string) (map[ast.Language][]string, []ast.Language) {
	groups := make(map[ast.Language][]string)
	for _, f := range files {
		lang := parser.DetectLanguage(f)
		if lang != ast.LangUnknown {
			groups[lang] = append(groups[lang], f)
		}
	}
	order := make([]ast.Language, 0, len(groups))
	for lang := range groups {
		order = append(order, lang)
	}
	slices.Sort(order)
	return groups, order
}
