package roles

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505", ConstraintName: "roles_name_key"}
	assert.True(t, isUniqueViolation(dup))
	assert.True(t, isUniqueViolation(fmt.Errorf("create role: %w", dup)),
		"wrapped driver errors must still classify")

	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}),
		"other integrity violations are not conflicts")
	assert.False(t, isUniqueViolation(pgx.ErrNoRows))
	assert.False(t, isUniqueViolation(nil))
}
