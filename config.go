package fanout

import (
	"github.com/caarlos0/env/v6"
	"github.com/pkg/errors"
)

// EnvPrefix prefixes every environment variable read by LoadConfig.
const EnvPrefix = "FANOUT_"

// Config controls how payloads are detected and answered. It is read once
// at startup and never changes afterwards.
type Config struct {
	// Export names the function to serve when several are registered.
	Export string `env:"EXPORT"`

	// LogLevel is a logrus level name.
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	AdvancedEventHandling AdvancedEventHandling `envPrefix:"ADVANCED_EVENT_HANDLING_"`
}

// AdvancedEventHandling configures batch detection and partial batch
// responses.
type AdvancedEventHandling struct {
	// Enabled turns shape detection on. When off, every payload is decoded
	// directly into the function's input.
	Enabled bool `env:"ENABLED" envDefault:"true"`

	SQS         FailureReporting `envPrefix:"SQS_"`
	Kinesis     FailureReporting `envPrefix:"KINESIS_"`
	DynamoDB    FailureReporting `envPrefix:"DYNAMODB_"`
	CloudEvents FailureReporting `envPrefix:"CLOUDEVENTS_"`
}

// FailureReporting configures the partial batch response of one source.
type FailureReporting struct {
	// ReportBatchItemFailures writes a batchItemFailures response. When off,
	// nothing is written and the platform treats the batch as a whole.
	ReportBatchItemFailures bool `env:"REPORT_BATCH_ITEM_FAILURES" envDefault:"true"`
}

// LoadConfig resolves the config from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, errors.Wrap(err, "parse config from environment")
	}
	return cfg, nil
}

// DefaultConfig returns the config with every default applied and nothing
// read from the environment.
func DefaultConfig() Config {
	var cfg Config
	// Defaults come from the struct tags and cannot fail to parse.
	_ = env.Parse(&cfg, env.Options{Environment: map[string]string{}})
	return cfg
}
