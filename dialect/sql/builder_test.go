package sql

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syssam/veloxext/dialect"
)

func TestQuote(t *testing.T) {
	assert.Equal(t, `"customers"`, Quote(dialect.Postgres, "customers"))
	assert.Equal(t, `"shop"."customers"`, Quote(dialect.Postgres, "shop.customers"))
	assert.Equal(t, "`customers`", Quote(dialect.MySQL, "customers"))
	assert.Equal(t, "`we``ird`", Quote(dialect.MySQL, "we`ird"))
	assert.Equal(t, `"we""ird"`, Quote(dialect.SQLite, `we"ird`))
}

func TestPlaceholder(t *testing.T) {
	assert.Equal(t, "$3", Placeholder(dialect.Postgres, 3))
	assert.Equal(t, "?", Placeholder(dialect.MySQL, 3))
	assert.Equal(t, "?", Placeholder(dialect.SQLite, 1))
}

func TestEscape(t *testing.T) {
	assert.Equal(t, "secret", EscapeString("secret"))
	assert.Equal(t, "it''s", EscapeString("it's"))
	assert.Equal(t, `a\\b`, EscapeString(`a\b`))

	assert.Equal(t, "alice", EscapeLike("alice"))
	assert.Equal(t, "50!%!_off!!", EscapeLike("50%_off!"))

	assert.True(t, IsValidIdentifier("shop.customers"))
	assert.False(t, IsValidIdentifier("1abc"))
	assert.False(t, IsValidIdentifier("name; DROP"))
	assert.False(t, IsValidIdentifier(""))
}
