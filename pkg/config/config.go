package config

import (
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/iancoleman/strcase"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const (
	configFileENV     = "CONFIG_FILE"
	defaultConfigFile = "/config/shoka.yaml"
)

type Config struct {
	DatabaseBusyTimeout       time.Duration `koanf:"database_busy_timeout" json:"database_busy_timeout" default:"5s"`
	DatabaseConnectRetryCount int           `koanf:"database_connect_retry_count" json:"database_connect_retry_count" default:"5"`
	DatabaseConnectRetryDelay time.Duration `koanf:"database_connect_retry_delay" json:"database_connect_retry_delay" default:"2s"`
	DatabaseDebug             bool          `koanf:"database_debug" json:"database_debug"`
	DatabaseFilePath          string        `koanf:"database_file_path" json:"database_file_path" validate:"required"`
	DatabaseMaxRetries        int           `koanf:"database_max_retries" json:"database_max_retries" default:"5"`
	MetadataProviders         []string      `koanf:"metadata_providers" json:"metadata_providers" default:"[\"filename\",\"sidecar\",\"plugins\"]" validate:"dive,oneof=filename sidecar plugins"`
	PluginDir                 string        `koanf:"plugin_dir" json:"plugin_dir" default:"/config/plugins"`
	ServerHost                string        `koanf:"server_host" json:"server_host" default:"0.0.0.0"`
	ServerPort                int           `koanf:"server_port" json:"server_port" default:"3689"`
	WorkerProcesses           int           `koanf:"worker_processes" json:"worker_processes" default:"2" validate:"min=1"`
}

// New loads the configuration. Values are layered as struct defaults, then
// the YAML file named by CONFIG_FILE, then environment variables.
func New() (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, errors.WithStack(err)
	}

	k := koanf.New(".")

	path := os.Getenv(configFileENV)
	if path == "" {
		path = defaultConfigFile
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "failed to load config file %s", path)
		}
	}

	known := knownKeys()
	err := k.Load(env.Provider("", ".", func(s string) string {
		key := strings.ToLower(s)
		if _, ok := known[key]; !ok {
			return ""
		}
		return key
	}), nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if k.Exists("metadata_providers") {
		cfg.MetadataProviders = nil
	}

	err = k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			Result:           cfg,
			TagName:          "koanf",
			WeaklyTypedInput: true,
		},
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// NewForTest returns a configuration suitable for tests and never touches the
// environment or the filesystem.
func NewForTest() *Config {
	cfg := &Config{}
	_ = defaults.Set(cfg)
	cfg.DatabaseFilePath = ":memory:"
	cfg.ServerHost = "127.0.0.1"
	cfg.PluginDir = ""
	return cfg
}

func validate(cfg *Config) error {
	err := validator.New().Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.WithStack(err)
	}

	for _, fe := range verrs {
		key := toSnakeCase(fe.StructField())
		if fe.Tag() == "required" {
			return errors.Errorf("missing required config: %s (%s)", strings.ToUpper(key), key)
		}
		return errors.Errorf("invalid config value for %s (%s): %v", strings.ToUpper(key), key, fe.Value())
	}

	return errors.WithStack(err)
}

// knownKeys lists the koanf keys of Config so that unrelated environment
// variables never reach the decoder.
func knownKeys() map[string]struct{} {
	keys := map[string]struct{}{}
	t := reflect.TypeOf(Config{})
	for i := 0; i < t.NumField(); i++ {
		keys[toSnakeCase(t.Field(i).Name)] = struct{}{}
	}
	return keys
}

func toSnakeCase(s string) string {
	return strcase.ToSnake(s)
}
