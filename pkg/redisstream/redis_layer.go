package redisstream

// Settings holds Redis Streams transport configuration for the transcript bus.
type Settings struct {
	Enabled  bool   `mapstructure:"redis-enabled"`
	Addr     string `mapstructure:"redis-addr"`
	Stream   string `mapstructure:"redis-stream"`
	Group    string `mapstructure:"redis-group"`
	Consumer string `mapstructure:"redis-consumer"`
}

const (
	DefaultAddr     = "localhost:6379"
	DefaultStream   = "jobbot.transcript"
	DefaultGroup    = "jobbot-transcript"
	DefaultConsumer = "jobbot-1"
)

// WithDefaults fills empty fields.
func (s Settings) WithDefaults() Settings {
	if s.Addr == "" {
		s.Addr = DefaultAddr
	}
	if s.Stream == "" {
		s.Stream = DefaultStream
	}
	if s.Group == "" {
		s.Group = DefaultGroup
	}
	if s.Consumer == "" {
		s.Consumer = DefaultConsumer
	}
	return s
}
