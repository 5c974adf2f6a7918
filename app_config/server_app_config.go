package app_config

import (
	"io/ioutil"
	"log"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMongo    = "mongo"
	StoreDriverMemory   = "memory"

	MediaDriverLocal = "local"
	MediaDriverS3    = "s3"
)

// This is the app config for the api server. Secrets (database credentials,
// JWT_SECRET, MONGO_URI) are read from env instead.
type ServerAppConfig struct {
	// Address the HTTP server listens on.
	SERVER_ADDR string `yaml:"SERVER_ADDR"`
	// Origins allowed by CORS. Empty allows every origin.
	CORS_ALLOW_ORIGINS []string `yaml:"CORS_ALLOW_ORIGINS"`

	// One of postgres, mongo, memory.
	STORE_DRIVER   string `yaml:"STORE_DRIVER"`
	MONGO_DATABASE string `yaml:"MONGO_DATABASE"`

	// One of local, s3.
	MEDIA_DRIVER     string `yaml:"MEDIA_DRIVER"`
	MEDIA_LOCAL_ROOT string `yaml:"MEDIA_LOCAL_ROOT"`
	// Prefix of the URLs media is served from. For the local driver this is
	// also the route the server mounts the media root at.
	MEDIA_URL_PREFIX string `yaml:"MEDIA_URL_PREFIX"`
	MEDIA_S3_BUCKET  string `yaml:"MEDIA_S3_BUCKET"`
	MEDIA_S3_REGION  string `yaml:"MEDIA_S3_REGION"`

	// Relay live notifications through redis so that every replica can push
	// to its own websocket connections.
	REDIS_RELAY_ENABLED bool   `yaml:"REDIS_RELAY_ENABLED"`
	REDIS_RELAY_CHANNEL string `yaml:"REDIS_RELAY_CHANNEL"`

	// Datadog agent address. Metrics are discarded when empty.
	STATSD_ADDR       string `yaml:"STATSD_ADDR"`
	TRACING_ENABLED   bool   `yaml:"TRACING_ENABLED"`
	PROFILING_ENABLED bool   `yaml:"PROFILING_ENABLED"`

	// Run like, unlike and subscribe on the same video or creator one at a
	// time within this process.
	SERIALIZE_REACTIONS bool `yaml:"SERIALIZE_REACTIONS"`

	TOKEN_TTL_HOURS int `yaml:"TOKEN_TTL_HOURS"`
}

func defaultServerAppConfig() ServerAppConfig {
	return ServerAppConfig{
		SERVER_ADDR:      ":8080",
		STORE_DRIVER:     StoreDriverPostgres,
		MONGO_DATABASE:   "streemza",
		MEDIA_DRIVER:     MediaDriverLocal,
		MEDIA_LOCAL_ROOT: "uploads",
		MEDIA_URL_PREFIX: "/uploads",
		MEDIA_S3_REGION:  "us-west-1",
		TOKEN_TTL_HOURS:  72,
	}
}

// LoadServerAppConfig decodes a yaml document on top of the defaults and
// validates the result.
func LoadServerAppConfig(data []byte) (ServerAppConfig, error) {
	c := defaultServerAppConfig()
	if err := yaml.UnmarshalStrict(data, &c); err != nil {
		return c, errors.Wrap(err, "decode server app config")
	}

	switch c.STORE_DRIVER {
	case StoreDriverPostgres, StoreDriverMongo, StoreDriverMemory:
	default:
		return c, errors.Errorf("unknown STORE_DRIVER %q", c.STORE_DRIVER)
	}
	switch c.MEDIA_DRIVER {
	case MediaDriverLocal:
	case MediaDriverS3:
		if c.MEDIA_S3_BUCKET == "" {
			return c, errors.New("MEDIA_S3_BUCKET is required by the s3 media driver")
		}
	default:
		return c, errors.Errorf("unknown MEDIA_DRIVER %q", c.MEDIA_DRIVER)
	}
	if c.TOKEN_TTL_HOURS <= 0 {
		return c, errors.New("TOKEN_TTL_HOURS must be positive")
	}
	return c, nil
}

func ParseServerAppConfig(path string) ServerAppConfig {
	yamlFile, err := ioutil.ReadFile(path)
	if err != nil {
		log.Fatal("yamlFile. get err: ", err.Error())
	}
	c, err := LoadServerAppConfig(yamlFile)
	if err != nil {
		log.Fatal("Unmarshal: ", err)
	}
	return c
}
