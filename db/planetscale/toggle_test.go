package planetscale

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	mysqldriver "github.com/go-sql-driver/mysql"
	db2 "github.com/navbryce/next-social-be/db"
	"github.com/navbryce/next-social-be/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upper/db/v4"
	"github.com/upper/db/v4/adapter/mysql"
)

func newMockSession(t *testing.T) (db.Session, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	// the adapter resolves the schema name when binding
	mock.ExpectQuery(`SELECT DATABASE\(\) AS name`).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("social"))
	sess, err := mysql.New(sqlDB)
	require.NoError(t, err)
	return sess, mock
}

func dupEntry(key string) error {
	return &mysqldriver.MySQLError{Number: 1062, Message: fmt.Sprintf("Duplicate entry '1-2' for key '%s'", key)}
}

func TestResolveToggle(t *testing.T) {
	active, err := resolveToggle(true, nil)
	require.NoError(t, err)
	assert.True(t, active)

	active, err = resolveToggle(false, nil)
	require.NoError(t, err)
	assert.False(t, active)

	active, err = resolveToggle(false, fmt.Errorf("tx: %w", dupEntry("post_like.post_like_user_post")))
	require.NoError(t, err)
	assert.True(t, active)

	active, err = resolveToggle(false, fmt.Errorf("tx: %w", db2.ErrDuplicate))
	require.NoError(t, err)
	assert.True(t, active)

	deadlock := &mysqldriver.MySQLError{Number: 1213, Message: "Deadlock found"}
	active, err = resolveToggle(true, deadlock)
	assert.False(t, active)
	assert.ErrorIs(t, err, deadlock)
}

func TestToggleInteractionInsertsMissingEdge(t *testing.T) {
	sess, mock := newMockSession(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM post_like WHERE .* FOR UPDATE`).
		WithArgs(int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec("INSERT INTO .post_like.").
		WithArgs(int64(1), int64(2)).
		WillReturnResult(sqlmock.NewResult(10, 1))
	mock.ExpectCommit()

	active, err := getInteractionDB(sess).ToggleInteraction(context.Background(), model.InteractionLike, 1, 2)
	require.NoError(t, err)
	assert.True(t, active)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleInteractionDeletesExistingEdge(t *testing.T) {
	sess, mock := newMockSession(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM bookmark WHERE .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))
	mock.ExpectExec("DELETE FROM .bookmark.").
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	active, err := getInteractionDB(sess).ToggleInteraction(context.Background(), model.InteractionBookmark, 1, 2)
	require.NoError(t, err)
	assert.False(t, active)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleInteractionConcurrentInsertResolvesActive(t *testing.T) {
	sess, mock := newMockSession(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM repost WHERE .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec("INSERT INTO .repost.").
		WillReturnError(dupEntry("repost.repost_user_post"))
	mock.ExpectRollback()

	active, err := getInteractionDB(sess).ToggleInteraction(context.Background(), model.InteractionRepost, 1, 2)
	require.NoError(t, err)
	assert.True(t, active)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleInteractionPropagatesOtherErrors(t *testing.T) {
	sess, mock := newMockSession(t)
	failure := errors.New("connection reset")
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM post_like WHERE .* FOR UPDATE`).
		WillReturnError(failure)
	mock.ExpectRollback()

	active, err := getInteractionDB(sess).ToggleInteraction(context.Background(), model.InteractionLike, 1, 2)
	assert.ErrorIs(t, err, failure)
	assert.False(t, active)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleFollowConcurrentInsertResolvesActive(t *testing.T) {
	sess, mock := newMockSession(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT 1 FROM follow WHERE .* FOR UPDATE`).
		WithArgs(int64(3), int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))
	mock.ExpectExec("INSERT INTO .follow.").
		WillReturnError(dupEntry("PRIMARY"))
	mock.ExpectRollback()

	following, err := getFollowDB(sess).ToggleFollow(context.Background(), 3, 4)
	require.NoError(t, err)
	assert.True(t, following)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleFollowDeletesExistingEdge(t *testing.T) {
	sess, mock := newMockSession(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT 1 FROM follow WHERE .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectExec("DELETE FROM .follow.").
		WithArgs(int64(3), int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	following, err := getFollowDB(sess).ToggleFollow(context.Background(), 3, 4)
	require.NoError(t, err)
	assert.False(t, following)
	assert.NoError(t, mock.ExpectationsWereMet())
}
