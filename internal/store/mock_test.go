package store_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/tuimorrow/internal/store"
	"github.com/calvinalkan/tuimorrow/internal/task"
)

var errDiskIO = errors.New("disk I/O error")

func newMockStore(t *testing.T) (*store.Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	t.Cleanup(func() { _ = db.Close() })

	return store.NewFromDB(db, store.Options{OpTimeout: time.Second}), mock
}

func Test_InsertTask_Binds_Columns_Explicitly_When_Executed(t *testing.T) {
	t.Parallel()

	s, mock := newMockStore(t)

	tk := task.Task{
		Name:       "Report",
		ListName:   "Work",
		DueDate:    task.NewDate(2024, time.March, 15),
		CreateDate: task.NewDate(2024, time.January, 1),
	}

	mock.ExpectExec(`INSERT INTO Task \(name,list,createDate,dueDate\) VALUES \(\?,\?,\?,\?\)`).
		WithArgs("Report", "Work", "2024-01-01", "2024-03-15").
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, s.InsertTask(context.Background(), tk))
	require.NoError(t, mock.ExpectationsWereMet())
}

func Test_InsertTask_Classifies_Driver_Errors_When_Exec_Fails(t *testing.T) {
	t.Parallel()

	tk := task.Task{Name: "Report", ListName: "Work", DueDate: task.NewDate(2024, time.March, 15), CreateDate: task.NewDate(2024, time.January, 1)}

	t.Run("primary key conflict is a constraint violation", func(t *testing.T) {
		t.Parallel()

		s, mock := newMockStore(t)

		mock.ExpectExec(`INSERT INTO Task`).
			WillReturnError(sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintPrimaryKey})

		err := s.InsertTask(context.Background(), tk)
		require.Error(t, err)
		assert.ErrorIs(t, err, store.ErrConstraintViolation)
		assert.NotErrorIs(t, err, store.ErrStorageUnavailable)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("busy database is unavailable", func(t *testing.T) {
		t.Parallel()

		s, mock := newMockStore(t)

		mock.ExpectExec(`INSERT INTO Task`).
			WillReturnError(sqlite3.Error{Code: sqlite3.ErrBusy})

		err := s.InsertTask(context.Background(), tk)
		assert.ErrorIs(t, err, store.ErrStorageUnavailable)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("io failure is unavailable and keeps the cause", func(t *testing.T) {
		t.Parallel()

		s, mock := newMockStore(t)

		mock.ExpectExec(`INSERT INTO Task`).WillReturnError(errDiskIO)

		err := s.InsertTask(context.Background(), tk)
		assert.ErrorIs(t, err, store.ErrStorageUnavailable)
		assert.ErrorIs(t, err, errDiskIO)
		assert.Equal(t, store.ErrStorageUnavailable, store.KindOf(err))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func Test_QueryTasks_Binds_Filter_As_Parameter_When_Filter_Set(t *testing.T) {
	t.Parallel()

	s, mock := newMockStore(t)

	filter := "Work' OR '1'='1"

	mock.ExpectQuery(`SELECT name, list, CAST\(createDate AS TEXT\), CAST\(dueDate AS TEXT\) FROM Task WHERE list = \?`).
		WithArgs(filter).
		WillReturnRows(sqlmock.NewRows([]string{"name", "list", "createDate", "dueDate"}))

	got, err := s.QueryTasks(context.Background(), &filter)
	require.NoError(t, err)
	assert.Empty(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func Test_QueryTasks_Omits_Where_Clause_When_Filter_Nil(t *testing.T) {
	t.Parallel()

	s, mock := newMockStore(t)

	mock.ExpectQuery(`^SELECT name, list, CAST\(createDate AS TEXT\), CAST\(dueDate AS TEXT\) FROM Task$`).
		WillReturnRows(sqlmock.NewRows([]string{"name", "list", "createDate", "dueDate"}).
			AddRow("B", "Work", "2024-01-01", "2024-01-01").
			AddRow("A", "Home", "2024-01-01", "2024-01-02"))

	got, err := s.QueryTasks(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "B", got[0].Name)
	assert.Equal(t, task.NewDate(2024, time.January, 2), got[1].DueDate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func Test_QueryTasks_Returns_StorageUnavailable_When_Connection_Fails(t *testing.T) {
	t.Parallel()

	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT .* FROM Task`).WillReturnError(errDiskIO)

	_, err := s.QueryTasks(context.Background(), nil)
	assert.ErrorIs(t, err, store.ErrStorageUnavailable)
	require.NoError(t, mock.ExpectationsWereMet())
}

func Test_QueryTasks_Returns_StorageUnavailable_When_Row_Iteration_Fails(t *testing.T) {
	t.Parallel()

	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT .* FROM Task`).
		WillReturnRows(sqlmock.NewRows([]string{"name", "list", "createDate", "dueDate"}).
			AddRow("A", "Work", "2024-01-01", "2024-01-02").
			RowError(0, errDiskIO))

	_, err := s.QueryTasks(context.Background(), nil)
	assert.ErrorIs(t, err, store.ErrStorageUnavailable)
}

func Test_ListColor_Distinguishes_NotFound_From_Unavailable_When_Lookup_Fails(t *testing.T) {
	t.Parallel()

	t.Run("no row", func(t *testing.T) {
		t.Parallel()

		s, mock := newMockStore(t)

		mock.ExpectQuery(`SELECT color FROM List WHERE name = \?`).
			WithArgs("Nonexistent").
			WillReturnRows(sqlmock.NewRows([]string{"color"}))

		_, err := s.ListColor(context.Background(), "Nonexistent")
		assert.ErrorIs(t, err, store.ErrNotFound)
		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.NotErrorIs(t, err, store.ErrStorageUnavailable)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("driver failure", func(t *testing.T) {
		t.Parallel()

		s, mock := newMockStore(t)

		mock.ExpectQuery(`SELECT color FROM List WHERE name = \?`).
			WithArgs("Work").
			WillReturnError(errDiskIO)

		_, err := s.ListColor(context.Background(), "Work")
		assert.ErrorIs(t, err, store.ErrStorageUnavailable)
		assert.NotErrorIs(t, err, store.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func Test_EnsureSchema_Rolls_Back_When_Statement_Fails(t *testing.T) {
	t.Parallel()

	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS Task`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS List`).WillReturnError(errDiskIO)
	mock.ExpectRollback()

	err := s.EnsureSchema(context.Background())
	assert.ErrorIs(t, err, store.ErrStorageUnavailable)
	require.NoError(t, mock.ExpectationsWereMet())
}

func Test_Operations_Return_StorageUnavailable_When_Timed_Out(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	defer db.Close()

	s := store.NewFromDB(db, store.Options{OpTimeout: 20 * time.Millisecond})

	mock.ExpectQuery(`SELECT color FROM List`).
		WillDelayFor(time.Second).
		WillReturnRows(sqlmock.NewRows([]string{"color"}).AddRow("#000000"))

	_, err = s.ListColor(context.Background(), "Work")
	assert.ErrorIs(t, err, store.ErrStorageUnavailable)
}
