/*
flag Package set up cli flags shared across binaries

Usage:

	Call ParseFlags once at the top of main. Tests never call it, so every
	flag must have a usable default.
*/

package flag

import (
	"flag"
)

const (
	APIServer = "api_server"
)

var (
	ServiceName   *string
	BypassAuth    *bool
	AppConfigPath *string
)

func init() {
	ServiceName = flag.String("service", APIServer, "service name reported to logs, traces and metrics")
	BypassAuth = flag.Bool("bypass_auth", false, "trust the userId in request bodies instead of requiring a JWT")
	AppConfigPath = flag.String("app_config_path", "cmd/server/config.yaml", "path to the server app config")
}

func ParseFlags() {
	if !flag.Parsed() {
		flag.Parse()
	}
}
