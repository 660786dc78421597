package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// CHAT_HTTP_URL is the base url of a running server, e.g. http://localhost:3001
	HTTPURL  string `envconfig:"CHAT_HTTP_URL"`
	WSURL    string `envconfig:"CHAT_WS_URL"`
	GrpcAddr string `envconfig:"CHAT_GRPC_ADDR"`
	// E2E_DEBUG_JSON allows dumping full gRPC request/response bodies as JSON
	DebugJSON bool `envconfig:"E2E_DEBUG_JSON" default:"false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
