package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/insectopedia/insectopedia/internal/core/ports/driven"
	"github.com/insectopedia/insectopedia/internal/logger"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// prompt describes a template users may override.
type prompt struct {
	text string

	// verbs is the number of %s placeholders the template must keep.
	verbs int
}

var builtinPrompts = map[string]prompt{
	driven.PromptAnswer: {text: driven.DefaultAnswerPrompt, verbs: 2},
}

const promptsReadme = `# InsectoPedia prompts

answer.txt is the template sent to the generative model with every question.
It takes two %s placeholders: the retrieved passages first, then the question.

Edit it to change how answers are phrased. A template that loses a
placeholder is ignored and the built-in one is used instead. Delete the file
to restore the default on the next run.
`

// PromptStore reads prompt templates from <dir>/<name>.txt.
//
// The directory and the default files are written on the first Load, never
// by the constructor. A template that cannot be read or that does not keep
// its placeholders is replaced by the built-in text.
type PromptStore struct {
	dir string

	setup    sync.Once
	setupErr error

	mu     sync.RWMutex
	loaded map[string]string
}

// NewPromptStore creates a prompt store over dir. An empty dir selects
// the prompts directory under DefaultDir.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		home, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(home, "prompts")
	}
	return &PromptStore{dir: dir, loaded: make(map[string]string)}, nil
}

// Dir returns the prompt directory.
func (s *PromptStore) Dir() string {
	return s.dir
}

// Load returns the template called name.
func (s *PromptStore) Load(name string) (string, error) {
	builtin, known := builtinPrompts[name]

	s.setup.Do(s.writeDefaults)
	if s.setupErr != nil {
		if known {
			return builtin.text, nil
		}
		return "", fmt.Errorf("prompt %q: %w", name, s.setupErr)
	}

	s.mu.RLock()
	text, ok := s.loaded[name]
	s.mu.RUnlock()
	if ok {
		return text, nil
	}

	text, err := s.read(name)
	switch {
	case err != nil && !known:
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	case err != nil:
		text = builtin.text
	case known && strings.Count(text, "%s") != builtin.verbs:
		logger.Warn("Prompt %s.txt must contain %d %%s placeholders, using the built-in prompt", name, builtin.verbs)
		text = builtin.text
	}

	s.mu.Lock()
	if prev, ok := s.loaded[name]; ok {
		text = prev
	} else {
		s.loaded[name] = text
	}
	s.mu.Unlock()
	return text, nil
}

// Reload forgets loaded templates so the next Load reads the files again.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.loaded = make(map[string]string)
	s.mu.Unlock()
}

func (s *PromptStore) path(name string) string {
	return filepath.Join(s.dir, name+".txt")
}

func (s *PromptStore) read(name string) (string, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// writeDefaults creates the directory, the built-in templates and a README.
// Existing files are left alone.
func (s *PromptStore) writeDefaults() {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		s.setupErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	files := map[string]string{filepath.Join(s.dir, "README.md"): promptsReadme}
	for name, p := range builtinPrompts {
		files[s.path(name)] = p.text
	}
	for path, content := range files {
		if err := writeIfMissing(path, content); err != nil {
			s.setupErr = err
			return
		}
	}
}

func writeIfMissing(path, content string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if errors.Is(err, fs.ErrExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}
