package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-go-golems/jobbot/pkg/api"
	"github.com/go-go-golems/jobbot/pkg/redisstream"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	AppName        = "jobbot"
	EnvPrefix      = "JOBBOT"
	DefaultBaseURL = "http://localhost:8000"
)

// Settings is the resolved configuration shared by all commands.
type Settings struct {
	BaseURL      string `mapstructure:"base-url"`
	APIPrefix    string `mapstructure:"api-prefix"`
	SessionID    string `mapstructure:"session-id"`
	TranscriptDB string `mapstructure:"transcript-db"`
	NoTranscript bool   `mapstructure:"no-transcript"`

	Redis redisstream.Settings `mapstructure:",squash"`
}

// AddFlags registers the shared persistent flags. The --config and --log-*
// flags come from clay.InitViper.
func AddFlags(fs *pflag.FlagSet) {
	fs.String("base-url", DefaultBaseURL, "Booking service base URL")
	fs.String("api-prefix", api.DefaultAPIPrefix, "Path prefix of the booking API")
	fs.String("session-id", "", "Reuse a session identifier instead of generating one")
	fs.String("transcript-db", "", "SQLite transcript file (default $HOME/.jobbot/transcripts.db)")
	fs.Bool("no-transcript", false, "Do not record the chat transcript")

	fs.Bool("redis-enabled", false, "Carry transcript events over Redis Streams")
	fs.String("redis-addr", redisstream.DefaultAddr, "Redis address host:port")
	fs.String("redis-stream", redisstream.DefaultStream, "Redis stream name")
	fs.String("redis-group", redisstream.DefaultGroup, "Redis consumer group")
	fs.String("redis-consumer", redisstream.DefaultConsumer, "Redis consumer name")
}

// InitViper binds the parsed flags and JOBBOT_* environment variables into v.
// clay.InitViper already searched the default config locations; an explicit
// --config is read here because it is only known after flag parsing.
func InitViper(v *viper.Viper, fs *pflag.FlagSet) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return errors.Wrap(err, "bind flags")
	}

	file := v.GetString("config")
	if file == "" || file == v.ConfigFileUsed() {
		return nil
	}
	v.SetConfigFile(file)
	if err := v.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "read config %s", file)
	}
	return nil
}

// Load decodes v into Settings and fills derived defaults.
func Load(v *viper.Viper) (Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, errors.Wrap(err, "decode settings")
	}
	s.BaseURL = strings.TrimSpace(s.BaseURL)
	if s.BaseURL == "" {
		return Settings{}, errors.New("base-url is required")
	}
	if s.APIPrefix == "" {
		s.APIPrefix = api.DefaultAPIPrefix
	}
	if s.TranscriptDB == "" && !s.NoTranscript {
		dir, err := DefaultDir()
		if err != nil {
			return Settings{}, err
		}
		s.TranscriptDB = filepath.Join(dir, "transcripts.db")
	}
	s.Redis = s.Redis.WithDefaults()
	return s, nil
}

// DefaultDir is $HOME/.jobbot.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "resolve home directory")
	}
	return filepath.Join(home, "."+AppName), nil
}

// ClientOptions turns the settings into gateway options.
func (s Settings) ClientOptions() []api.ClientOption {
	ret := []api.ClientOption{api.WithAPIPrefix(s.APIPrefix)}
	if s.SessionID != "" {
		ret = append(ret, api.WithSessionID(s.SessionID))
	}
	return ret
}
