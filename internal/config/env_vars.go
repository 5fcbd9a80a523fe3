package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	portKey      = "port"
	appNameKey   = "app_name"
	envKey       = "env"
	logLevelKey  = "log_level"
	logFormatKey = "log_format"
)

// Keys bound to command line flags.
const (
	PortKey      = portKey
	LogLevelKey  = logLevelKey
	LogFormatKey = logFormatKey
)

type EnvVars struct {
	v *viper.Viper
}

func (e EnvVars) GetPort() string {
	port := e.v.GetString(portKey)
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (e EnvVars) GetAppName() string {
	return e.v.GetString(appNameKey)
}

func (e EnvVars) GetEnv() string {
	return strings.ToUpper(e.v.GetString(envKey))
}

func (e EnvVars) GetLogLevel() string {
	return e.v.GetString(logLevelKey)
}

func (e EnvVars) GetLogFormat() string {
	return e.v.GetString(logFormatKey)
}
