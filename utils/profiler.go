package utils

import (
	"github.com/murtaza309/streemza/utils/dotenv"
	Logger "github.com/murtaza309/streemza/utils/log"
	"gopkg.in/DataDog/dd-trace-go.v1/profiler"
)

// StartProfiler starts the Datadog continuous profiler for serviceName.
func StartProfiler(serviceName string) error {
	err := profiler.Start(
		profiler.WithService(serviceName),
		profiler.WithEnv(dotenv.GetEnv()),
		profiler.WithProfileTypes(
			profiler.CPUProfile,
			profiler.HeapProfile,
			// The profiles below are disabled by
			// default to keep overhead low, but
			// can be enabled as needed.
			// profiler.BlockProfile,
			// profiler.MutexProfile,
			// profiler.GoroutineProfile,
		),
	)
	if err != nil {
		return err
	}
	Logger.Log.Info("profiler initialized")
	return nil
}

// Stop profiler, OK to be closed multiple times
func CloseProfiler() {
	profiler.Stop()
}
