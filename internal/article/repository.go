package article

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adrg/frontmatter"
)

// ErrNotFound reports a read of an article id with no file behind it.
var ErrNotFound = errors.New("article not found")

// Repository stores articles as <id>.md files in a single directory, the
// layout the blog's display layer reads.
type Repository struct {
	dir string
}

func NewRepository(dir string) (*Repository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating articles directory: %w", err)
	}
	return &Repository{dir: dir}, nil
}

// Path returns the on-disk path for an article id.
func (r *Repository) Path(id string) string {
	return filepath.Join(r.dir, id+".md")
}

// Save writes the article file, replacing any previous version.
func (r *Repository) Save(a *Article) error {
	if err := os.WriteFile(r.Path(a.ID), []byte(a.Render()), 0o644); err != nil {
		return fmt.Errorf("writing article %s: %w", a.ID, err)
	}
	return nil
}

// Delete removes the article file. A file already gone is not an error;
// deletion reconciliation must be idempotent.
func (r *Repository) Delete(id string) error {
	err := os.Remove(r.Path(id))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing article %s: %w", id, err)
	}
	return nil
}

// frontMatterFields mirrors the header this package writes. Tags are a
// comma-separated scalar in the file, not a YAML sequence.
type frontMatterFields struct {
	Title    string `yaml:"title"`
	Date     string `yaml:"date"`
	ReadTime string `yaml:"readTime"`
	Category string `yaml:"category"`
	Tags     string `yaml:"tags"`
}

// Read parses an article file back into an Article.
func (r *Repository) Read(id string) (*Article, error) {
	f, err := os.Open(r.Path(id))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("article %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("opening article %s: %w", id, err)
	}
	defer f.Close()

	var fields frontMatterFields
	body, err := frontmatter.Parse(f, &fields)
	if err != nil {
		return nil, fmt.Errorf("parsing front matter of %s: %w", id, err)
	}

	a := &Article{
		ID:       id,
		Title:    fields.Title,
		Date:     fields.Date,
		ReadTime: fields.ReadTime,
		Category: fields.Category,
		Body:     strings.TrimSpace(string(body)),
	}
	if fields.Tags != "" {
		for _, tag := range strings.Split(fields.Tags, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				a.Tags = append(a.Tags, tag)
			}
		}
	}
	return a, nil
}

// List reads every article in the directory, newest id first.
func (r *Repository) List() ([]*Article, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("reading articles directory: %w", err)
	}

	var articles []*Article
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".md")
		a, err := r.Read(id)
		if err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}

	sort.Slice(articles, func(i, j int) bool {
		return articles[i].ID > articles[j].ID
	})
	return articles, nil
}
