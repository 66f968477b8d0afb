package seed

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"libracatalog/internal/catalog"
	"libracatalog/internal/circulation"
	"libracatalog/internal/membership"
)

// File is the on-disk layout of a seed file.
type File struct {
	Items []ItemEntry `yaml:"items"`
	Users []UserEntry `yaml:"users"`
}

// ItemEntry describes one catalog item. Only the fields for its kind are read.
type ItemEntry struct {
	Kind        string `yaml:"kind"`
	Title       string `yaml:"title"`
	Author      string `yaml:"author"`
	ISBN        string `yaml:"isbn"`
	Genre       string `yaml:"genre"`
	IssueNumber string `yaml:"issue_number"`
	Duration    string `yaml:"duration"`
}

type UserEntry struct {
	Name string `yaml:"name"`
	ID   string `yaml:"id"`
}

// Loader reads a seed file and feeds it to a catalog manager.
type Loader struct {
	filePath string
}

func NewLoader(filePath string) *Loader {
	return &Loader{filePath: filePath}
}

// Load reads and parses the seed file.
func (l *Loader) Load() (File, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return File{}, fmt.Errorf("failed to read seed file: %w", err)
	}
	return Parse(data)
}

// Parse decodes seed YAML.
func Parse(data []byte) (File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("failed to parse seed yaml: %w", err)
	}
	return f, nil
}

// Apply adds every item and user in f to svc, in file order. It stops at
// the first entry that cannot be built or added.
func Apply(ctx context.Context, svc circulation.Service, f File) error {
	for i, entry := range f.Items {
		item, err := entry.toItem()
		if err != nil {
			return fmt.Errorf("seed item %d (%q): %w", i, entry.Title, err)
		}
		if _, err := svc.AddItem(ctx, item); err != nil {
			return fmt.Errorf("seed item %d (%q): %w", i, entry.Title, err)
		}
	}

	for i, entry := range f.Users {
		if _, err := svc.AddUser(ctx, membership.NewUser(entry.Name, entry.ID)); err != nil {
			return fmt.Errorf("seed user %d (%q): %w", i, entry.ID, err)
		}
	}

	return nil
}

func (e ItemEntry) toItem() (catalog.Item, error) {
	switch catalog.Kind(e.Kind) {
	case catalog.KindBook:
		genre, err := parseGenre(e.Genre)
		if err != nil {
			return catalog.Item{}, err
		}
		return catalog.NewBook(e.Title, e.Author, e.ISBN, genre), nil
	case catalog.KindMagazine:
		return catalog.NewMagazine(e.Title, e.Author, e.IssueNumber), nil
	case catalog.KindDVD:
		return catalog.NewDVD(e.Title, e.Author, e.Duration), nil
	default:
		return catalog.Item{}, fmt.Errorf("unknown item kind %q", e.Kind)
	}
}

// parseGenre accepts either a display name or the menu number.
func parseGenre(s string) (catalog.Genre, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return catalog.ParseGenre(n)
	}
	return catalog.ParseGenreName(s)
}

// FromFile loads the seed file at path into svc. An empty path is a no-op.
func FromFile(ctx context.Context, path string, svc circulation.Service) error {
	if path == "" {
		return nil
	}
	f, err := NewLoader(path).Load()
	if err != nil {
		return err
	}
	return Apply(ctx, svc, f)
}
