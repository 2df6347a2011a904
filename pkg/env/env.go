package env

import (
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"github.com/reformlab/reformer/pkg/log"
)

var variables = new(Environment)

// Process the environment variables set for reformer.
func Process() error {
	if err := envconfig.Process("reformer", variables); err != nil {
		return errors.Wrap(err, "failed to process environment variables")
	}

	// set the log level
	if err := log.SetLevel(variables.LogLevel); err != nil {
		return errors.Wrap(err, "failed to set log level")
	}

	return nil
}

// Variables returns the processed environment variables.
func Variables() Environment {
	return *variables
}

// Environment defines the environment variables used
// by reformer.
type Environment struct {
	LogLevel     string `default:"info" split_words:"true"`
	Port         int    `default:"8080"`
	DatabaseType string `default:"postgres" split_words:"true"`
	DatabaseDSN  string `default:"host=postgres user=postgres password=postgres dbname=reformer port=5432 sslmode=disable" split_words:"true"`
	// DatabaseDSNRef overrides DatabaseDSN with a secret:// reference.
	DatabaseDSNRef string `default:"" split_words:"true"`

	Engine       string        `default:"equilib"`
	SolveTimeout time.Duration `default:"300s" split_words:"true"`
	BatchSize    int           `default:"100" split_words:"true"`
	BatchPause   time.Duration `default:"5s" split_words:"true"`
	MaxFailures  int           `default:"5" split_words:"true"`
	Workers      int           `default:"1"`
	CacheDir     string        `default:"" split_words:"true"`

	FeedRate   float64 `default:"100" split_words:"true"`
	MaxBiooils int     `default:"30" split_words:"true"`

	ModelDir         string          `default:"" split_words:"true"`
	ModelGitSources  RegistrySources `default:"" split_words:"true"`
	ModelGitInterval time.Duration   `default:"5m" split_words:"true"`
	ModelGitOnce     bool            `default:"false" split_words:"true"`

	SweepSchedule string `default:"" split_words:"true"`
	SweepInput    string `default:"" split_words:"true"`
	SweepModel    string `default:"" split_words:"true"`

	ExportTransport string        `default:"" split_words:"true"`
	ExportPath      string        `default:"" split_words:"true"`
	ExportURL       string        `default:"" split_words:"true"`
	ExportHeaders   string        `default:"" split_words:"true"`
	ExportTimeout   time.Duration `default:"10s" split_words:"true"`

	SecretFileDir         string `default:"" split_words:"true"`
	SecretVaultAddr       string `default:"" split_words:"true"`
	SecretVaultToken      string `default:"" split_words:"true"`
	SecretVaultNamespace  string `default:"" split_words:"true"`
	SecretVaultCACert     string `default:"" split_words:"true"`
	SecretVaultSkipVerify bool   `default:"false" split_words:"true"`
}
