package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidGenre is returned when a genre selection is outside the known set.
var ErrInvalidGenre = errors.New("invalid genre")

// Genre classifies a book.
type Genre int

const (
	Fiction Genre = iota
	Adventure
	NonFiction
	Mystery
	ScienceFiction
	Fantasy
	Biography
	MagazineGenre
)

var genreNames = [...]string{
	Fiction:        "Fiction",
	Adventure:      "Adventure",
	NonFiction:     "Non-Fiction",
	Mystery:        "Mystery",
	ScienceFiction: "Science Fiction",
	Fantasy:        "Fantasy",
	Biography:      "Biography",
	MagazineGenre:  "Magazine",
}

// Genres lists every genre in selection order.
func Genres() []Genre {
	genres := make([]Genre, len(genreNames))
	for i := range genreNames {
		genres[i] = Genre(i)
	}
	return genres
}

// Valid reports whether g is one of the known genres.
func (g Genre) Valid() bool {
	return g >= Fiction && int(g) < len(genreNames)
}

func (g Genre) String() string {
	if !g.Valid() {
		return "Unknown"
	}
	return genreNames[g]
}

// ParseGenre converts a menu selection (0-7) into a Genre.
func ParseGenre(n int) (Genre, error) {
	g := Genre(n)
	if !g.Valid() {
		return 0, fmt.Errorf("%w: %d is not between 0 and %d", ErrInvalidGenre, n, len(genreNames)-1)
	}
	return g, nil
}

// ParseGenreName accepts a display name ("Science Fiction") or its
// snake_case form ("science_fiction"), case-insensitively.
func ParseGenreName(name string) (Genre, error) {
	key := normalizeGenre(name)
	for i, display := range genreNames {
		if normalizeGenre(display) == key {
			return Genre(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidGenre, name)
}

func normalizeGenre(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", "", "_", "", " ", "").Replace(s)
}
