package utils

import (
	"github.com/murtaza309/streemza/utils/dotenv"
	Logger "github.com/murtaza309/streemza/utils/log"
	"github.com/sirupsen/logrus"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

// StartTracer starts the Datadog tracer for serviceName. Spans are sent to
// the local agent; without an agent they are dropped.
func StartTracer(serviceName string) {
	tracer.Start(
		tracer.WithService(serviceName),
		tracer.WithEnv(dotenv.GetEnv()),
	)

	Logger.Log.WithFields(
		logrus.Fields{"env": dotenv.GetEnv()},
	).Info("tracer initialized")
}

// Stop tracer, OK to be closed multiple times
func CloseTracer() {
	tracer.Stop()
}
