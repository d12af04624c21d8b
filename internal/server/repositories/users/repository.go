// Package users is the credential store adapter: it looks user records up
// by a closed set of columns and inserts new ones.
package users

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// Column selects the lookup key for FindBy. Only the columns declared here
// can ever reach a query.
type Column int

const (
	ColumnID Column = iota + 1
	ColumnEmail
)

func (c Column) String() string {
	switch c {
	case ColumnID:
		return "id"
	case ColumnEmail:
		return "email"
	default:
		return "unknown"
	}
}

// Valid reports whether c is one of the declared lookup columns.
func (c Column) Valid() bool {
	return c == ColumnID || c == ColumnEmail
}

// Repository is the store contract the authentication core consumes.
//
// FindBy returns common.ErrorNotFound when no record matches and wraps
// every I/O failure with common.ErrStore. Insert returns
// common.ErrAlreadyExists when the email is taken; uniqueness is enforced
// by the store, not by callers.
type Repository interface {
	FindBy(ctx context.Context, column Column, value any) (*models.User, error)
	Insert(ctx context.Context, user *models.User) (int64, error)
	SetBanned(ctx context.Context, id int64, banned bool) error
}
