// Package resources discovers and serves the static convention documents
// that skills embed verbatim into guidance.
//
// A convention document is a markdown file with YAML frontmatter carrying a
// name and a description; the body below the frontmatter is what gets
// embedded. Documents live flat in the configured directories, repo-local
// first, then user-global, and the first directory that defines a name wins.
// When a skill asks for a document that does not exist, the skill escalates
// in its guidance; this package only reports the miss.
package resources

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"
)

const docExt = ".md"

// Doc is one loaded convention document.
type Doc struct {
	// Name is the identifier skills request, from the frontmatter.
	Name string

	// Description is the one-line summary from the frontmatter.
	Description string

	// Body is the document content below the frontmatter, embedded verbatim.
	Body string

	// Path is where the document was loaded from.
	Path string
}

// Library locates convention documents across an ordered list of
// directories.
type Library struct {
	dirs []string
}

// Option configures a [Library].
type Option func(*Library) error

// WithDirs sets an explicit directory list, highest precedence first.
func WithDirs(dirs ...string) Option {
	return func(l *Library) error {
		l.dirs = dirs
		return nil
	}
}

// WithDefaultDirs installs the standard search order: the repo-local
// .cairn/conventions directory, then the user-global one.
func WithDefaultDirs() Option {
	return func(l *Library) error {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return errors.Wrap(err, "failed to get user home directory")
		}
		l.dirs = []string{
			filepath.Join(".cairn", "conventions"),
			filepath.Join(homeDir, ".cairn", "conventions"),
		}
		return nil
	}
}

// NewLibrary creates a [Library]. With no options it uses the default
// directories.
func NewLibrary(opts ...Option) (*Library, error) {
	l := &Library{}

	if len(opts) == 0 {
		opts = []Option{WithDefaultDirs()}
	}
	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}

	return l, nil
}

// All loads every document reachable from the configured directories, keyed
// by name. Earlier directories shadow later ones; unreadable or malformed
// files are skipped.
func (l *Library) All() (map[string]*Doc, error) {
	docs := make(map[string]*Doc)

	for _, dir := range l.dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), docExt) {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			doc, err := loadDoc(path)
			if err != nil {
				continue
			}
			if _, exists := docs[doc.Name]; !exists {
				docs[doc.Name] = doc
			}
		}
	}

	return docs, nil
}

// Get returns the named document or an error naming the miss.
func (l *Library) Get(name string) (*Doc, error) {
	docs, err := l.All()
	if err != nil {
		return nil, err
	}

	doc, exists := docs[name]
	if !exists {
		return nil, errors.Errorf("convention document %q not found", name)
	}
	return doc, nil
}

// Names returns the available document names, sorted.
func (l *Library) Names() ([]string, error) {
	docs, err := l.All()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(docs))
	for name := range docs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// loadDoc parses one markdown file's frontmatter and body.
func loadDoc(path string) (*Doc, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read convention document")
	}

	md := goldmark.New(
		goldmark.WithExtensions(meta.Meta),
	)

	var buf bytes.Buffer
	pctx := parser.NewContext()

	if err := md.Convert(content, &buf, parser.WithContext(pctx)); err != nil {
		return nil, errors.Wrap(err, "failed to parse markdown")
	}

	metaData := meta.Get(pctx)
	if metaData == nil {
		return nil, errors.New("missing frontmatter")
	}

	name, _ := metaData["name"].(string)
	description, _ := metaData["description"].(string)

	if name == "" {
		return nil, errors.New("document name is required in frontmatter")
	}
	if description == "" {
		return nil, errors.New("document description is required in frontmatter")
	}

	return &Doc{
		Name:        name,
		Description: description,
		Body:        extractBody(string(content)),
		Path:        path,
	}, nil
}

// extractBody strips the YAML frontmatter block and returns the content
// below it.
func extractBody(content string) string {
	if !strings.HasPrefix(content, "---") {
		return content
	}

	lines := strings.Split(content, "\n")
	frontmatterEnd := -1

	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			frontmatterEnd = i
			break
		}
	}

	if frontmatterEnd == -1 {
		return content
	}

	return strings.TrimLeft(strings.Join(lines[frontmatterEnd+1:], "\n"), "\n")
}
