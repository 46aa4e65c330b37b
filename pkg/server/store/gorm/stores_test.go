package gorm

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/doodlesbykumbi/backoffice-audit/pkg/server/store"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	gormDB, err := gorm.Open(
		postgres.New(postgres.Config{
			Conn:                 mockDB,
			PreferSimpleProtocol: true,
		}),
		&gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		},
	)
	require.NoError(t, err)
	return gormDB, mock
}

func TestUsersStore_GetUserByID(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewUsersStore(db)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE id = \$1`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}).
			AddRow(7, "Alice", "alice@example.com"))

	user, err := s.GetUserByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 7, user.ID)
	assert.Equal(t, "Alice", user.Name)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUsersStore_GetUserByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewUsersStore(db)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE id = \$1`).
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}))

	user, err := s.GetUserByID(context.Background(), 99)
	assert.Nil(t, user)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestMembersStore_GetMembersByIDs(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewMembersStore(db)

	mock.ExpectQuery(`SELECT \* FROM "members" WHERE id IN \(\$1,\$2\)`).
		WithArgs(1, 2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}).
			AddRow(1, "Bob", "bob@example.com"))

	members, err := s.GetMembersByIDs(context.Background(), []int{1, 2, 1})
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "Bob", members[1].Name)
	_, ok := members[2]
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMembersStore_GetMembersByIDs_Empty(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewMembersStore(db)

	members, err := s.GetMembersByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, members)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserGroupsStore_GetUserGroupsByIDs(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewUserGroupsStore(db)

	mock.ExpectQuery(`SELECT \* FROM "user_groups" WHERE id IN \(\$1\)`).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "alias", "allowed_sections", "permissions"}).
			AddRow(3, "Editors", "editors", "{content,media}", "{C,U}"))

	groups, err := s.GetUserGroupsByIDs(context.Background(), []int{3})
	require.NoError(t, err)
	require.Contains(t, groups, 3)
	assert.Equal(t, "Editors", groups[3].Name)
	assert.Equal(t, []string{"content", "media"}, []string(groups[3].AllowedSections))
	assert.Equal(t, []string{"C", "U"}, []string(groups[3].Permissions))
}

func TestUserGroupsStore_GetUserGroupByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewUserGroupsStore(db)

	mock.ExpectQuery(`SELECT \* FROM "user_groups" WHERE id = \$1`).
		WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "alias"}))

	_, err := s.GetUserGroupByID(context.Background(), 4)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestEntitiesStore_GetEntitiesByIDs(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewEntitiesStore(db)

	mock.ExpectQuery(`SELECT \* FROM "entities" WHERE id IN \(\$1\)`).
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(10, "Home"))

	entities, err := s.GetEntitiesByIDs(context.Background(), []int{10})
	require.NoError(t, err)
	assert.Equal(t, "Home", entities[10].Name)
}

func TestEntriesStore_ListEntries(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewEntriesStore(db)

	mock.ExpectQuery(`SELECT \* FROM "audit_entries" WHERE event_type = \$1 ORDER BY id DESC LIMIT 5`).
		WithArgs("umbraco/user/save").
		WillReturnRows(sqlmock.NewRows([]string{"id", "performing_user_id", "event_type", "event_details"}).
			AddRow(2, 7, "umbraco/user/save", "updating Name"))

	entries, err := s.ListEntries(context.Background(), store.EntryFilter{EventType: "umbraco/user/save", Limit: 5})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "updating Name", entries[0].EventDetails)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthStore_CheckConnectivity(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewHealthStore(db)

	mock.ExpectExec(`SELECT 1`).WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, s.CheckConnectivity(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
