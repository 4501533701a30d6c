package logging

import (
	"io"

	clay "github.com/go-go-golems/clay/pkg"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// InitLogger configures log.Logger from the --log-* flags that clay bound into
// viper. With quiet set, output is dropped unless --log-file is given.
func InitLogger(quiet bool) error {
	if err := clay.InitLogger(); err != nil {
		return errors.Wrap(err, "init logger")
	}
	log.Logger = Quiet(log.Logger, viper.GetString("log-file"), quiet)
	return nil
}

// Quiet returns l unchanged when a log file is configured or quiet is off.
// Full-screen UIs use it so log lines never land on the terminal.
func Quiet(l zerolog.Logger, logFile string, quiet bool) zerolog.Logger {
	if !quiet || logFile != "" {
		return l
	}
	return l.Output(io.Discard)
}
