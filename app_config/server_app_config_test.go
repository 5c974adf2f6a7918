package app_config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadServerAppConfigDefaults(t *testing.T) {
	c, err := LoadServerAppConfig([]byte(""))
	require.NoError(t, err)
	assert.Equal(t, ":8080", c.SERVER_ADDR)
	assert.Equal(t, StoreDriverPostgres, c.STORE_DRIVER)
	assert.Equal(t, MediaDriverLocal, c.MEDIA_DRIVER)
	assert.Equal(t, 72, c.TOKEN_TTL_HOURS)
	assert.False(t, c.SERIALIZE_REACTIONS)
}

func TestLoadServerAppConfig(t *testing.T) {
	c, err := LoadServerAppConfig([]byte(`
SERVER_ADDR: ":5000"
CORS_ALLOW_ORIGINS:
  - "http://localhost:3000"
STORE_DRIVER: mongo
MEDIA_DRIVER: s3
MEDIA_S3_BUCKET: streemza-media
REDIS_RELAY_ENABLED: true
SERIALIZE_REACTIONS: true
`))
	require.NoError(t, err)
	assert.Equal(t, ":5000", c.SERVER_ADDR)
	assert.Equal(t, []string{"http://localhost:3000"}, c.CORS_ALLOW_ORIGINS)
	assert.Equal(t, StoreDriverMongo, c.STORE_DRIVER)
	assert.Equal(t, "streemza-media", c.MEDIA_S3_BUCKET)
	assert.True(t, c.REDIS_RELAY_ENABLED)
	assert.True(t, c.SERIALIZE_REACTIONS)
}

func TestLoadServerAppConfigRejectsInvalid(t *testing.T) {
	for _, doc := range []string{
		"STORE_DRIVER: sqlite",
		"MEDIA_DRIVER: ftp",
		"MEDIA_DRIVER: s3",
		"TOKEN_TTL_HOURS: 0",
		"UNKNOWN_KEY: 1",
		"SERVER_ADDR: [",
	} {
		_, err := LoadServerAppConfig([]byte(doc))
		assert.Error(t, err, doc)
	}
}
