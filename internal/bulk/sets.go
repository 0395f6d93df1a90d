// Package bulk implements keyword import and export: predefined set
// imports, CSV imports, and filtered exports with per-item outcome
// tracking.
package bulk

import (
	_ "embed"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

//go:embed builtin_sets.yaml
var builtinSets []byte

// SetKeyword is one candidate keyword inside a predefined set. Severity is
// optional; imports fall back to the request's default severity.
type SetKeyword struct {
	Text       string `yaml:"text"`
	Severity   string `yaml:"severity,omitempty"`
	ExactMatch bool   `yaml:"exact_match,omitempty"`
}

// KeywordSet is a named collection of candidate keywords.
type KeywordSet struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description,omitempty"`
	Keywords    []SetKeyword `yaml:"keywords"`
}

type setsFile struct {
	Sets []KeywordSet `yaml:"sets"`
}

// SetLibrary holds the predefined keyword sets: the built-in ones shipped
// with the binary plus any YAML files in a configured directory. Directory
// files are hot-reloaded when they change.
type SetLibrary struct {
	mu       sync.RWMutex
	sets     map[string]KeywordSet
	fileSets map[string][]string // file path -> set names it contributed
	dir      string
	watcher  *fsnotify.Watcher
}

// NewSetLibrary loads the built-in sets and, if dir is non-empty, every
// *.yaml file inside it. A missing directory is not an error; the service
// runs with the built-in sets alone.
func NewSetLibrary(dir string) (*SetLibrary, error) {
	l := &SetLibrary{
		sets:     make(map[string]KeywordSet),
		fileSets: make(map[string][]string),
		dir:      dir,
	}

	var f setsFile
	if err := yaml.Unmarshal(builtinSets, &f); err != nil {
		return nil, fmt.Errorf("failed to parse built-in keyword sets: %w", err)
	}
	for _, s := range f.Sets {
		l.sets[s.Name] = s
	}

	if dir == "" {
		return l, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return l, nil
		}
		return nil, fmt.Errorf("failed to read sets directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !isYAML(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := l.loadFile(path); err != nil {
			log.Printf("Skipping keyword set file %s: %v", path, err)
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch sets directory: %w", err)
	}
	l.watcher = watcher

	return l, nil
}

func isYAML(name string) bool {
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}

// loadFile parses one set file and registers its sets. A file may define a
// single set or a `sets:` list; a single set with no name takes the file
// stem.
func (l *SetLibrary) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var names []string

	var f setsFile
	if err := yaml.Unmarshal(data, &f); err == nil && len(f.Sets) > 0 {
		l.mu.Lock()
		for _, s := range f.Sets {
			if s.Name == "" {
				continue
			}
			l.sets[s.Name] = s
			names = append(names, s.Name)
		}
		l.mu.Unlock()
	} else {
		var s KeywordSet
		if err := yaml.Unmarshal(data, &s); err != nil {
			return err
		}
		if s.Name == "" {
			s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}
		if len(s.Keywords) == 0 {
			return fmt.Errorf("set %q has no keywords", s.Name)
		}
		l.mu.Lock()
		l.sets[s.Name] = s
		names = []string{s.Name}
		l.mu.Unlock()
	}

	l.mu.Lock()
	l.fileSets[path] = names
	l.mu.Unlock()

	log.Printf("Loaded keyword set file %s (%d sets)", path, len(names))
	return nil
}

// removeFile drops the sets a deleted file contributed.
func (l *SetLibrary) removeFile(path string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, name := range l.fileSets[path] {
		delete(l.sets, name)
	}
	delete(l.fileSets, path)
}

// Watch reloads set files as they change. It blocks until the watcher is
// closed; run it in a goroutine.
func (l *SetLibrary) Watch() {
	if l.watcher == nil {
		return
	}
	log.Printf("Watching keyword set directory: %s", l.dir)

	for {
		select {
		case event, ok := <-l.watcher.Events:
			if !ok {
				return
			}
			if !isYAML(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				// Small delay so the file write completes.
				time.Sleep(100 * time.Millisecond)
				if err := l.loadFile(event.Name); err != nil {
					log.Printf("Failed to reload keyword set file %s: %v", event.Name, err)
				}
			}
			if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				l.removeFile(event.Name)
			}
		case err, ok := <-l.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Keyword set watcher error: %v", err)
		}
	}
}

// Close stops the file watcher.
func (l *SetLibrary) Close() {
	if l.watcher != nil {
		l.watcher.Close()
	}
}

// Get returns the named set.
func (l *SetLibrary) Get(name string) (KeywordSet, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	s, ok := l.sets[name]
	return s, ok
}

// Names returns the loaded set names, sorted.
func (l *SetLibrary) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.sets))
	for name := range l.sets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
