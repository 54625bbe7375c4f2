package repo

import (
	"context"
	"strings"

	"gorm.io/gorm"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeClause goes after a LIKE placeholder built with ContainsPattern.
const EscapeClause = `ESCAPE '\'`

// Base carries the gorm connection shared by the catalog, wishlist and users
// repositories.
type Base struct {
	db *gorm.DB
}

func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the connection bound to ctx; a nil ctx yields the raw handle.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// Transaction runs fn inside a transaction bound to ctx.
func (b Base) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return b.DB(ctx).Transaction(fn)
}

// ContainsPattern turns free text into a LIKE pattern matching it anywhere,
// with wildcard characters in the text matched literally.
func ContainsPattern(text string) string {
	return "%" + likeEscaper.Replace(text) + "%"
}
