package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/denhaven/breeder-backend/internal/model"
)

func newMockRepo(t *testing.T) (ClientThreadRepository, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gdb, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	return NewClientThreadRepository(gdb), mock
}

func TestClientThreadRepositoryNotReady(t *testing.T) {
	repo := NewClientThreadRepository(nil)
	ctx := context.Background()

	_, _, err := repo.ListByProvider(ctx, 1, ClientThreadFilter{})
	assert.ErrorIs(t, err, ErrDBNotReady)
	_, err = repo.FindByID(ctx, 1, 1)
	assert.ErrorIs(t, err, ErrDBNotReady)
	_, err = repo.UnreadCounts(ctx, []uint64{1})
	assert.ErrorIs(t, err, ErrDBNotReady)
	assert.ErrorIs(t, repo.MarkMessagesRead(ctx, 1, time.Now()), ErrDBNotReady)
}

func TestListByProviderExcludesDeletedAndArchived(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM .client_threads. WHERE provider_id = \? AND deleted_by_provider_at IS NULL AND archived_by_provider_at IS NULL`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(`SELECT \* FROM .client_threads. WHERE provider_id = \? AND deleted_by_provider_at IS NULL AND archived_by_provider_at IS NULL ORDER BY last_message_at DESC`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "provider_id", "client_uid", "subject"}).
			AddRow(3, 7, "client-a", "Puppy inquiry").
			AddRow(1, 7, "client-b", "Adult dog"))

	list, total, err := repo.ListByProvider(context.Background(), 7, ClientThreadFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, list, 2)
	assert.Equal(t, uint64(3), list[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListByProviderArchivedOnly(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM .client_threads. WHERE provider_id = \? AND deleted_by_provider_at IS NULL AND archived_by_provider_at IS NOT NULL`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT \* FROM .client_threads. WHERE provider_id = \? AND deleted_by_provider_at IS NULL AND archived_by_provider_at IS NOT NULL ORDER BY last_message_at DESC`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	list, total, err := repo.ListByProvider(context.Background(), 7, ClientThreadFilter{Archived: ArchivedOnly})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, list)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT \* FROM .client_threads. WHERE id = \? AND provider_id = \? AND deleted_by_provider_at IS NULL`).
		WithArgs(5, 7, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByID(context.Background(), 5, 7)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUnreadCountsGroupsPerThread(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT thread_id, COUNT\(\*\) AS cnt FROM .client_messages.`).
		WillReturnRows(sqlmock.NewRows([]string{"thread_id", "cnt"}).
			AddRow(1, 3).
			AddRow(4, 1))

	out, err := repo.UnreadCounts(context.Background(), []uint64{1, 2, 4})
	require.NoError(t, err)
	assert.Equal(t, int64(3), out[1])
	assert.Equal(t, int64(1), out[4])
	// threads with zero unread simply have no row
	assert.Zero(t, out[2])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUnreadCountsEmptyInputSkipsQuery(t *testing.T) {
	repo, mock := newMockRepo(t)

	out, err := repo.UnreadCounts(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, out)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateMessageStampsThreadInOneTransaction(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()
	secs := int64(90)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO .client_messages.`).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectExec(`UPDATE .client_threads. SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	msg := &model.ClientMessage{
		ThreadID:   4,
		SenderUID:  "prov-uid",
		SenderType: model.SenderTypeProvider,
		Body:       "hello",
		CreatedAt:  now,
	}
	reply := now
	err := repo.CreateMessage(context.Background(), msg, ThreadStamp{
		LastMessageAt:        now,
		FirstProviderReplyAt: &reply,
		ResponseTimeSeconds:  &secs,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(11), msg.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateMessageRollsBackOnStampFailure(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO .client_messages.`).
		WillReturnResult(sqlmock.NewResult(12, 1))
	mock.ExpectExec(`UPDATE .client_threads. SET`).
		WillReturnError(errors.New("deadlock"))
	mock.ExpectRollback()

	msg := &model.ClientMessage{ThreadID: 4, Body: "hello", SenderType: model.SenderTypeProvider}
	err := repo.CreateMessage(context.Background(), msg, ThreadStamp{LastMessageAt: time.Now().UTC()})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkMessagesReadOnlyTouchesClientMessages(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectExec(`UPDATE .client_messages. SET .read_at.=\? WHERE thread_id = \? AND sender_type = \? AND read_at IS NULL`).
		WithArgs(now, 4, model.SenderTypeClient).
		WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, repo.MarkMessagesRead(context.Background(), 4, now))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetArchivedGuardsReArchive(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	// archiving only touches threads that are not already archived, so a second
	// archive matches zero rows and the original timestamp survives
	mock.ExpectExec(`UPDATE .client_threads. SET .archived_by_provider_at.=\?,.updated_at.=\? WHERE id = \? AND archived_by_provider_at IS NULL`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), 9).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.SetArchived(context.Background(), 9, &now))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetArchivedNilUnarchives(t *testing.T) {
	repo, mock := newMockRepo(t)

	// gorm also touches updated_at on the same statement
	mock.ExpectExec(`UPDATE .client_threads. SET .archived_by_provider_at.=\?`).
		WithArgs(nil, sqlmock.AnyArg(), 9).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetArchived(context.Background(), 9, nil))
	require.NoError(t, mock.ExpectationsWereMet())
}
