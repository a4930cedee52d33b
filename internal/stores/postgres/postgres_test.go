package postgres

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"storefront/internal/stores/docstore"
)

func newMockConf(t *testing.T) (*Conf, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	conf, err := NewConf(db)
	require.NoError(t, err)
	return conf, mock
}

func TestCreateInsertsInsideTransaction(t *testing.T) {
	conf, mock := newMockConf(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO documents`).
		WithArgs(sqlmock.AnyArg(), "products", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	id, err := conf.Create(context.Background(), "products", docstore.Document{"title": "Mouse"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDFound(t *testing.T) {
	conf, mock := newMockConf(t)

	mock.ExpectQuery(`SELECT data`).
		WithArgs("products", "p1").
		WillReturnRows(sqlmock.NewRows([]string{"data"}).
			AddRow([]byte(`{"title":"Mouse","price":29.99}`)))

	doc, err := conf.GetByID(context.Background(), "products", "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", doc["id"])
	assert.Equal(t, "Mouse", doc["title"])
	assert.Equal(t, 29.99, doc["price"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDNotFound(t *testing.T) {
	conf, mock := newMockConf(t)

	mock.ExpectQuery(`SELECT data`).
		WithArgs("products", "missing").
		WillReturnError(sql.ErrNoRows)

	_, err := conf.GetByID(context.Background(), "products", "missing")
	require.ErrorIs(t, err, docstore.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateMergesJSONB(t *testing.T) {
	conf, mock := newMockConf(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE documents`).
		WithArgs("users", "u1", []byte(`{"address":"1 Main St"}`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := conf.Update(context.Background(), "users", "u1",
		docstore.Document{"address": "1 Main St"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateUnknownDocument(t *testing.T) {
	conf, mock := newMockConf(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE documents`).
		WithArgs("users", "missing", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := conf.Update(context.Background(), "users", "missing",
		docstore.Document{"address": "1 Main St"})
	require.ErrorIs(t, err, docstore.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteDocument(t *testing.T) {
	conf, mock := newMockConf(t)

	mock.ExpectExec(`DELETE FROM documents`).
		WithArgs("products", "p1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, conf.Delete(context.Background(), "products", "p1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryBuildsFilterAndOrdering(t *testing.T) {
	conf, mock := newMockConf(t)

	mock.ExpectQuery(`SELECT id, data FROM documents WHERE collection = \$1 AND data->>\$2 = \$3 ORDER BY data->>\$4 DESC`).
		WithArgs("orders", "userId", "u1", "createdAt").
		WillReturnRows(sqlmock.NewRows([]string{"id", "data"}).
			AddRow("o2", []byte(`{"userId":"u1","totalAmount":20}`)).
			AddRow("o1", []byte(`{"userId":"u1","totalAmount":10}`)))

	docs, err := conf.Query(context.Background(), "orders",
		[]docstore.Filter{{Field: "userId", Value: "u1"}},
		&docstore.Ordering{Field: "createdAt", Desc: true})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "o2", docs[0]["id"])
	assert.Equal(t, "o1", docs[1]["id"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryWithoutFilters(t *testing.T) {
	conf, mock := newMockConf(t)

	mock.ExpectQuery(`SELECT id, data FROM documents WHERE collection = \$1`).
		WithArgs("products").
		WillReturnRows(sqlmock.NewRows([]string{"id", "data"}))

	docs, err := conf.Query(context.Background(), "products", nil, nil)
	require.NoError(t, err)
	assert.Empty(t, docs)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewConfRequiresDB(t *testing.T) {
	_, err := NewConf(nil)
	require.Error(t, err)
}
