package logx

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/storefront-poc-v1/server/internal/core"
)

var DefaultLoggerOpts = &LoggerOpts{
	Environment: core.Development,
	Service:     "storefront",
}

type LoggerOpts struct {
	Environment core.Environment
	Service     string
	// Output overrides the destination; stdout (production) or a console writer otherwise.
	Output io.Writer
}

func safe(otps ...LoggerOpts) *LoggerOpts {
	if len(otps) == 0 {
		return DefaultLoggerOpts
	}
	return &otps[0]
}

func Init(otps ...LoggerOpts) {
	o := safe(otps...)

	if o.Environment == core.Production {
		out := o.Output
		if out == nil {
			out = os.Stdout
		}
		log.Logger = zerolog.New(out).With().Timestamp().Str("service", o.Service).Logger()
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
		return
	}

	out := o.Output
	if out == nil {
		out = zerolog.NewConsoleWriter()
	}
	log.Logger = zerolog.New(out).With().Timestamp().Caller().Str("service", o.Service).Logger()
	if o.Environment == core.Testing {
		log.Logger = log.Logger.Level(zerolog.WarnLevel)
		return
	}
	log.Logger = log.Logger.Level(zerolog.DebugLevel)
}

func Debug() *zerolog.Event {
	return log.Debug()
}

func Info() *zerolog.Event {
	return log.Info()
}

func Warn() *zerolog.Event {
	return log.Warn()
}

func Error() *zerolog.Event {
	return log.Error()
}

func Fatal() *zerolog.Event {
	return log.Fatal()
}
