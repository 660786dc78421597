package internal

import (
	"fmt"
	"os"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Host        string `env:"HOST,default=0.0.0.0"`
	Port        int    `env:"PORT,default=3001" validate:"min=1,max=65535"`
	GrpcPort    int    `env:"GRPC_PORT,default=3002" validate:"min=1,max=65535,nefield=Port"`
	FrontendURL string `env:"FRONTEND_URL,default=*" validate:"required"`
	BaseURL     string `env:"BASE_URL,default=http://localhost:5173" validate:"required,url"`

	BadgerFilepath string `env:"BADGER_FILEPATH,required=true" validate:"required"`
	LogLevel       string `env:"LOG_LEVEL,default=INFO" validate:"oneof=DEBUG INFO WARN ERROR debug info warn error"`

	HistoryLimit    int           `env:"HISTORY_LIMIT,default=50" validate:"min=1"`
	HistoryMaxLimit int           `env:"HISTORY_MAX_LIMIT,default=200" validate:"gtefield=HistoryLimit"`
	StoreTimeout    time.Duration `env:"STORE_TIMEOUT,default=2s" validate:"gt=0"`

	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=64" validate:"min=1"`
	BufferSize           int           `env:"BUFFER_SIZE,default=1024" validate:"min=1"`
	SinkTimeout          time.Duration `env:"SINK_TIMEOUT,default=1s" validate:"gt=0"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,default=1s" validate:"gt=0"`
	GCInterval           time.Duration `env:"GC_INTERVAL,default=10m" validate:"gt=0"`
	HealthInterval       time.Duration `env:"HEALTH_INTERVAL,default=15s" validate:"gt=0"`

	PingInterval   time.Duration `env:"PING_INTERVAL,default=25s" validate:"gt=0"`
	WriteTimeout   time.Duration `env:"WRITE_TIMEOUT,default=10s" validate:"gt=0"`
	MaxMessageSize int64         `env:"MAX_MESSAGE_SIZE,default=65536" validate:"min=512"`

	LegacyBroadcastAll bool `env:"LEGACY_BROADCAST_ALL,default=false"`
}

// LoadConfig reads the optional .env file, then the environment.
// Variables already set in the environment win over the file.
func LoadConfig(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return Config{}, fmt.Errorf("loading %s: %w", file, err)
		}
	}

	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return Config{}, err
	}
	if err := validator.New().Struct(config); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}
