package logging

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	LevelKey   = "log.level"
	FormatKey  = "log.format"
	NoColorKey = "log.no_color"
)

// Options overrides the viper-bound logging settings.
// Pass nil to Init to resolve everything from viper.
type Options struct {
	Level   string
	Format  string
	NoColor bool
}

// InitDefault sets up a console logger before flags and config are parsed,
// so early startup messages are readable.
func InitDefault() {
	log.Logger = log.Output(consoleWriter(false)).Level(zerolog.InfoLevel)
}

// Init configures the global logger from the resolved options.
func Init(opts *Options) {
	if opts == nil {
		opts = &Options{
			Level:   viper.GetString(LevelKey),
			Format:  viper.GetString(FormatKey),
			NoColor: viper.GetBool(NoColorKey),
		}
	}

	level, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	switch opts.Format {
	case "json":
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger().Level(level)
	default:
		log.Logger = log.Output(consoleWriter(opts.NoColor)).Level(level)
	}
}

func consoleWriter(noColor bool) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.Kitchen,
		NoColor:    noColor,
	}
}
