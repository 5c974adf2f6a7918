package log

import (
	"os"
	"time"

	ddhook "github.com/bin3377/logrus-datadog-hook"
	"github.com/murtaza309/streemza/utils/dotenv"
	"github.com/murtaza309/streemza/utils/flag"
	"github.com/sirupsen/logrus"
)

const (
	datadogUSHost    = "http-intake.logs.datadoghq.com"
	syncFrequencySec = 30
	syncRetry        = 3
)

// global accessible logger
var (
	logger *logrus.Logger
	Log    *logrus.Entry
)

// Tests have no main to call InitLogger, without this Log would be nil.
func init() {
	InitLogger()
}

// levelFromEnv reads LOG_LEVEL, falling back to info on empty or unknown
// values.
func levelFromEnv() logrus.Level {
	level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// InitLogger rebuilds Log from the current flags and env. main calls it again
// once flags are parsed and .env files loaded.
func InitLogger() {
	logger = logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(levelFromEnv())

	isProd := dotenv.IsProdEnv()
	if isProd {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	// Ship to Datadog only from production, and only with an API key.
	if apiKey := os.Getenv("DD_API_KEY"); isProd && apiKey != "" {
		logger.Hooks.Add(ddhook.NewHook(
			datadogUSHost,
			apiKey,
			syncFrequencySec*time.Second,
			syncRetry,
			logrus.InfoLevel,
			&logrus.JSONFormatter{},
			ddhook.Options{},
		))
	}

	Log = logger.WithFields(logrus.Fields{
		"service":        *flag.ServiceName,
		"env":            dotenv.GetEnv(),
		"is_development": !isProd,
	})
}
