package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomTestDBName(t *testing.T) {
	name := randomTestDBName()
	assert.True(t, isTempDB(name))
	assert.Equal(t, len(TestDBPrefix)+TestDBNameCharLength, len(name))
	assert.Equal(t, strings.ToLower(name), name)
}

func TestIsTempDB(t *testing.T) {
	assert.False(t, isTempDB("streemza"))
	assert.True(t, isTempDB("testonlydb_abcdefgh"))
}

func TestCreateTempDBMigratesTables(t *testing.T) {
	db, name := CreateTempDB(t)
	require.True(t, isTempDB(name))

	exists, err := IsDatabaseExist(name)
	require.NoError(t, err)
	assert.True(t, exists)

	for _, table := range []string{"users", "videos", "comments", "notifications"} {
		assert.Truef(t, db.Migrator().HasTable(table), "missing table %s", table)
	}
}

func TestDropTempDBRefusesRealDatabase(t *testing.T) {
	err := dropTempDB("streemza")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refuse to drop")
}

func TestCredentialsForAdminDatabase(t *testing.T) {
	t.Setenv("DEFAULT_DB_NAME", "postgres")
	t.Setenv("DEFAULT_DB_USER", "admin")
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_PASS", "")
	t.Setenv("DB_HOST", "db.local")
	t.Setenv("DB_PORT", "5432")

	assert.Equal(t, "admin", credentialsFor("postgres").user)
	assert.Equal(t, "app", credentialsFor("streemza").user)
	assert.Equal(
		t,
		"host=db.local user=app password= dbname=streemza port=5432 sslmode=disable",
		credentialsFor("streemza").dsn("streemza"),
	)
}
