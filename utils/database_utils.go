// database_utils holds the postgres connection and migration helpers shared by
// the api server and the store tests. Nothing here knows about engagement
// rules; it only opens, creates, migrates and drops databases.
package utils

import (
	"fmt"
	"math/rand"
	"os"
	"strings"
	"testing"

	"github.com/murtaza309/streemza/model"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	TestDBPrefix         = "testonlydb_"
	TestDBNameCharLength = 8
)

const alphabet = "abcdefghijklmnopqrstuvwxyz"

// pgCredentials is where a connection string is assembled from. The admin
// database ("DEFAULT_DB_NAME") has its own user, used to create and drop the
// temp databases of tests.
type pgCredentials struct {
	host     string
	port     string
	user     string
	password string
}

func credentialsFor(dbName string) pgCredentials {
	c := pgCredentials{
		host:     os.Getenv("DB_HOST"),
		port:     os.Getenv("DB_PORT"),
		user:     os.Getenv("DB_USER"),
		password: os.Getenv("DB_PASS"),
	}
	if dbName == os.Getenv("DEFAULT_DB_NAME") {
		c.user = os.Getenv("DEFAULT_DB_USER")
		c.password = os.Getenv("DEFAULT_DB_PASS")
	}
	return c
}

func (c pgCredentials) dsn(dbName string) string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.host, c.user, c.password, dbName, c.port,
	)
}

// RandomAlphabetString returns a lower case string of length n.
func RandomAlphabetString(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[rand.Intn(len(alphabet))]
	}
	return string(b)
}

func isTempDB(dbName string) bool {
	return strings.HasPrefix(dbName, TestDBPrefix)
}

func randomTestDBName() string {
	return TestDBPrefix + RandomAlphabetString(TestDBNameCharLength)
}

// GetDBConnection connects to the application database named by DB_NAME.
func GetDBConnection() (*gorm.DB, error) {
	return GetCustomizedConnection(os.Getenv("DB_NAME"))
}

// GetDefaultDBConnection connects to the admin database, used to manage the
// others.
func GetDefaultDBConnection() (*gorm.DB, error) {
	return GetCustomizedConnection(os.Getenv("DEFAULT_DB_NAME"))
}

func GetCustomizedConnection(dbName string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(credentialsFor(dbName).dsn(dbName)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "connect to database %s", dbName)
	}
	return db, nil
}

func closeConnection(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// CreateTempDB creates a migrated database with a random "testonlydb_" name
// and drops it when the test finishes. The test is skipped when DB_HOST is
// not configured.
//
// A test killed by timeout or Ctrl+C leaves its database behind; drop those
// by prefix by hand.
func CreateTempDB(t *testing.T) (*gorm.DB, string) {
	t.Helper()
	if os.Getenv("DB_HOST") == "" {
		t.Skip("DB_HOST not set, skipping postgres backed test")
	}
	admin, err := GetDefaultDBConnection()
	require.NoError(t, err)
	defer closeConnection(admin)

	dbName := randomTestDBName()
	require.NoError(t, admin.Exec("CREATE DATABASE "+dbName).Error, "create temp db %s", dbName)

	db, err := GetCustomizedConnection(dbName)
	require.NoError(t, err)
	DatabaseSetupAndMigration(db)

	t.Cleanup(func() {
		// Open connections block DROP DATABASE, so close ours first.
		closeConnection(db)
		if err := dropTempDB(dbName); err != nil {
			t.Logf("fail to drop temp db %s: %s", dbName, err)
		}
	})
	return db, dbName
}

// dropTempDB drops a temp database by name. Dropping a database that does not
// exist is not an error.
func dropTempDB(dbName string) error {
	if !isTempDB(dbName) {
		return errors.Errorf("refuse to drop non-test database %s", dbName)
	}
	admin, err := GetDefaultDBConnection()
	if err != nil {
		return err
	}
	defer closeConnection(admin)
	return admin.Exec("DROP DATABASE IF EXISTS " + dbName).Error
}

// DatabaseSetupAndMigration creates or updates the tables of all entities.
func DatabaseSetupAndMigration(db *gorm.DB) {
	err := db.AutoMigrate(&model.User{}, &model.Video{}, &model.Comment{}, &model.Notification{})
	if err != nil {
		panic("failed to migrate database: " + err.Error())
	}
}

// IsDatabaseExist returns true on DB exist, returns false on not exist or error
func IsDatabaseExist(dbName string) (bool, error) {
	admin, err := GetDefaultDBConnection()
	if err != nil {
		return false, err
	}
	defer closeConnection(admin)

	var exists bool
	res := admin.Raw("SELECT TRUE FROM pg_catalog.pg_database WHERE lower(datname) = lower(?) limit 1;", dbName).Scan(&exists)
	if res.Error != nil {
		return false, res.Error
	}
	return exists, nil
}
