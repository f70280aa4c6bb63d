package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore serves answer prompts from editable files in a directory.
// A file that cannot be read, or that lost its placeholders, yields the
// built-in default. Files are re-read when their modification time changes,
// so a running server picks up edits.
type PromptStore struct {
	dir string

	seedOnce sync.Once
	seedErr  error

	mu    sync.Mutex
	cache map[string]cachedPrompt
}

type cachedPrompt struct {
	text    string
	modTime time.Time
}

var defaultPrompts = map[string]string{
	driven.PromptAnswerSystem: domain.DefaultAnswerSystemPrompt,
	driven.PromptAnswerUser:   domain.DefaultAnswerUserPrompt,
}

// requiredVerbs maps prompts to the number of %s placeholders they must keep.
var requiredVerbs = map[string]int{
	driven.PromptAnswerUser: domain.AnswerUserPromptVerbs,
}

// NewPromptStore creates a prompt store rooted at dir, or ~/.docqa/prompts
// when dir is empty. Nothing is written until the first Load.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(home, ".docqa", "prompts")
	}
	return &PromptStore{dir: dir, cache: make(map[string]cachedPrompt)}, nil
}

// Load returns the named prompt.
// Unknown names are an error unless a file with that name exists.
func (s *PromptStore) Load(name string) (string, error) {
	s.seedOnce.Do(s.seed)
	fallback, hasDefault := defaultPrompts[name]
	if s.seedErr != nil {
		if hasDefault {
			return fallback, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.seedErr)
	}

	text, err := s.read(name)
	if err != nil {
		if hasDefault {
			if !errors.Is(err, fs.ErrNotExist) {
				logger.Warn("prompt %s: %v; using the built-in default", name, err)
			}
			return fallback, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}
	return text, nil
}

// Reload drops every cached prompt.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	clear(s.cache)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.dir
}

func (s *PromptStore) path(name string) string {
	return filepath.Join(s.dir, name+".txt")
}

// read returns the file content, reusing the cached copy while the file's
// modification time is unchanged.
func (s *PromptStore) read(name string) (string, error) {
	info, err := os.Stat(s.path(name))
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	cached, ok := s.cache[name]
	s.mu.Unlock()
	if ok && cached.modTime.Equal(info.ModTime()) {
		return cached.text, nil
	}

	data, err := os.ReadFile(s.path(name))
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(string(data))
	if err := checkPlaceholders(name, text); err != nil {
		return "", err
	}

	s.mu.Lock()
	s.cache[name] = cachedPrompt{text: text, modTime: info.ModTime()}
	s.mu.Unlock()
	return text, nil
}

// seed creates the directory, the default prompt files and a README,
// leaving existing files alone.
func (s *PromptStore) seed() {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		s.seedErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}
	for name, content := range defaultPrompts {
		if err := writeIfMissing(s.path(name), content); err != nil {
			s.seedErr = fmt.Errorf("create default prompt %q: %w", name, err)
			return
		}
	}
	if err := writeIfMissing(filepath.Join(s.dir, "README.md"), promptsReadme); err != nil {
		s.seedErr = err
	}
}

func writeIfMissing(path, content string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if errors.Is(err, fs.ErrExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// checkPlaceholders rejects an edited prompt that lost its format verbs
// or gained directives Sprintf would garble.
func checkPlaceholders(name, prompt string) error {
	want, ok := requiredVerbs[name]
	if !ok {
		return nil
	}
	if err := domain.CheckPromptVerbs(prompt, want); err != nil {
		return fmt.Errorf("prompt %q: %w", name, err)
	}
	return nil
}

const promptsReadme = `# docqa Prompts

This directory contains the prompts used to generate answers from retrieved documents.

## Files

- ` + "`answer_system.txt`" + ` - System prompt for answer extraction
- ` + "`answer_user.txt`" + ` - Wraps the documents, prior conversation and question

## Customisation

Edit any file to customise answer generation. Edits apply to the next question,
including in a running server.

## Format Placeholders

` + "`answer_user.txt`" + ` must contain exactly three ` + "`%s`" + ` placeholders, filled in order with:
1. the retrieved documents
2. the prior conversation (empty when there is none)
3. the question

A file with the wrong number of placeholders is ignored and the default is used.
`
