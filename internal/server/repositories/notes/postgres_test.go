package notes

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/videonotes/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestUpsert_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+notes\s*\(id,\s*video_id,\s*text,\s*timestamp,\s*created_at,\s*updated_at\).*ON\s+CONFLICT\s*\(id\)\s+DO\s+UPDATE`

	now := time.Now()
	mock.ExpectExec(q).
		WithArgs("n-1", "v-1", "hello", 12.5, now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Upsert(context.Background(), &models.Note{
		ID: "n-1", VideoID: "v-1", Text: "hello", Timestamp: 12.5, CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("Upsert error: %v", err)
	}
}

func TestUpsert_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT\s+INTO\s+notes`).
		WillReturnError(errors.New("db down"))

	err := repo.Upsert(context.Background(), &models.Note{ID: "n-1", VideoID: "v-1"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestDeleteAbsent_EmptyKeepDeletesAll(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^DELETE\s+FROM\s+notes\s+WHERE\s+video_id\s*=\s*\$1\s*$`

	mock.ExpectExec(q).
		WithArgs("v-1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.DeleteAbsent(context.Background(), "v-1", nil)
	if err != nil {
		t.Fatalf("DeleteAbsent error: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 deleted rows, got %d", n)
	}
}

func TestDeleteAbsent_KeepSet(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^DELETE\s+FROM\s+notes\s+WHERE\s+video_id\s*=\s*\$1\s+AND\s+id\s+NOT\s+IN\s*\(\$2,\s*\$3\)\s*$`

	mock.ExpectExec(q).
		WithArgs("v-1", "n-1", "n-2").
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := repo.DeleteAbsent(context.Background(), "v-1", []string{"n-1", "n-2"})
	if err != nil {
		t.Fatalf("DeleteAbsent error: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 deleted row, got %d", n)
	}
}

func TestListByVideo_OrderedByTimestamp(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,\s*video_id,\s*text,\s*timestamp,.*FROM\s+notes\s+WHERE\s+video_id\s*=\s*\$1\s+ORDER\s+BY\s+timestamp\s+ASC`

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "video_id", "text", "timestamp", "created_at", "updated_at"}).
		AddRow("n-1", "v-1", "first", 1.5, now, now).
		AddRow("n-2", "v-1", "second", 9.0, now, now)
	mock.ExpectQuery(q).
		WithArgs("v-1").
		WillReturnRows(rows)

	got, err := repo.ListByVideo(context.Background(), "v-1")
	if err != nil {
		t.Fatalf("ListByVideo error: %v", err)
	}
	if len(got) != 2 || got[0].Text != "first" || got[1].Text != "second" {
		t.Fatalf("unexpected notes: %+v", got)
	}
}
