package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errRecorded = errors.New("recorded")

type recordingDB struct {
	sql  string
	args []any
}

func (d *recordingDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	d.sql, d.args = sql, args
	return pgconn.CommandTag{}, errRecorded
}

func (d *recordingDB) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	d.sql, d.args = sql, args
	return nil, errRecorded
}

func (d *recordingDB) QueryRow(context.Context, string, ...any) pgx.Row {
	return nil
}

func TestPrincipalSearchMatchesLiterally(t *testing.T) {
	db := &recordingDB{}
	_, err := NewPrincipalRepository(db).List(context.Background(), PrincipalFilter{UsernameContains: "a_c%"})
	require.ErrorIs(t, err, errRecorded)

	assert.Contains(t, db.sql, "strpos(p.user_name, $2) > 0")
	assert.NotContains(t, db.sql, "LIKE")
	assert.Equal(t, "a_c%", db.args[1])
}

func TestTicketTitleSearchMatchesLiterally(t *testing.T) {
	db := &recordingDB{}
	_, err := NewTicketRepository(db).List(context.Background(), TicketFilter{TitleContains: " 50%_Off "})
	require.ErrorIs(t, err, errRecorded)

	assert.Contains(t, db.sql, "strpos(LOWER(t.title), $1) > 0")
	assert.NotContains(t, db.sql, "LIKE")
	require.Len(t, db.args, 1)
	assert.Equal(t, "50%_off", db.args[0])
}

func TestDuplicateMapsUniqueViolation(t *testing.T) {
	err := duplicate(&pgconn.PgError{Code: uniqueViolation, ConstraintName: "principals_user_name_key"})
	assert.ErrorIs(t, err, ErrDuplicate)

	other := &pgconn.PgError{Code: "23503"}
	assert.Same(t, other, duplicate(other))
	assert.NoError(t, duplicate(nil))
}
