package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libracatalog/internal/catalog"
	"libracatalog/internal/circulation"
	"libracatalog/internal/logger"
	"libracatalog/pkg/eventstore"
)

const sample = `
items:
  - kind: Book
    title: Dune
    author: Herbert
    isbn: ISBN1
    genre: Science Fiction
  - kind: Book
    title: Emma
    author: Austen
    isbn: ISBN2
    genre: "0"
  - kind: Magazine
    title: Wired
    author: Conde Nast
    issue_number: "42"
  - kind: DVD
    title: Alien
    author: Scott
    duration: "117"
users:
  - name: Alice
    id: U1
  - name: Bob
    id: U2
`

func writeSeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newService() circulation.Service {
	return circulation.NewService(eventstore.NewEventStore(), logger.NewNop())
}

func TestLoadAndApply(t *testing.T) {
	f, err := NewLoader(writeSeed(t, sample)).Load()
	require.NoError(t, err)
	require.Len(t, f.Items, 4)
	require.Len(t, f.Users, 2)

	ctx := context.Background()
	svc := newService()
	require.NoError(t, Apply(ctx, svc, f))

	items := svc.Items(ctx)
	require.Len(t, items, 4)
	assert.Equal(t, []string{"Dune", "Emma", "Wired", "Alien"},
		[]string{items[0].Title, items[1].Title, items[2].Title, items[3].Title})

	dune, ok := items[0].Details.(catalog.BookDetails)
	require.True(t, ok)
	assert.Equal(t, catalog.ScienceFiction, dune.Genre)

	emma, ok := items[1].Details.(catalog.BookDetails)
	require.True(t, ok)
	assert.Equal(t, catalog.Fiction, emma.Genre)

	assert.Equal(t, catalog.KindMagazine, items[2].Type())
	assert.Equal(t, catalog.KindDVD, items[3].Type())

	_, ok = svc.GetUser(ctx, "U2")
	assert.True(t, ok)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := NewLoader(filepath.Join(t.TempDir(), "absent.yaml")).Load()
	assert.ErrorContains(t, err, "failed to read seed file")
}

func TestParseRejectsMalformedYAML(t *testing.T) {
	_, err := Parse([]byte("items: [unterminated"))
	assert.ErrorContains(t, err, "failed to parse seed yaml")
}

func TestApplyRejectsBadEntries(t *testing.T) {
	tests := []struct {
		name string
		file File
		want error
	}{
		{"bad genre", File{Items: []ItemEntry{{Kind: "Book", Title: "X", Genre: "Poetry"}}}, catalog.ErrInvalidGenre},
		{"genre out of range", File{Items: []ItemEntry{{Kind: "Book", Title: "X", Genre: "8"}}}, catalog.ErrInvalidGenre},
		{"missing title", File{Items: []ItemEntry{{Kind: "DVD"}}}, circulation.ErrMissingTitle},
		{"duplicate user", File{Users: []UserEntry{{Name: "A", ID: "U1"}, {Name: "B", ID: "U1"}}}, circulation.ErrDuplicateUser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Apply(context.Background(), newService(), tt.file)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	err := Apply(context.Background(), newService(), File{Items: []ItemEntry{{Kind: "Scroll", Title: "X"}}})
	assert.ErrorContains(t, err, "unknown item kind")
}

func TestFromFile(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	require.NoError(t, FromFile(ctx, "", svc))
	assert.Empty(t, svc.Items(ctx))

	require.NoError(t, FromFile(ctx, writeSeed(t, sample), svc))
	assert.Len(t, svc.Items(ctx), 4)
	assert.Len(t, svc.Users(ctx), 2)
}
