package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"neon-tycoon/internal/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	mu     sync.RWMutex
	output io.Writer = os.Stdout
	file   *rotatingFile
)

// Init configures the global zerolog logger. With LOG_FILE set, entries go
// to stdout and to a file rotated at LOG_MAX_MB.
func Init(cfg config.LogConfig) {
	level := zerolog.InfoLevel
	if v := strings.TrimSpace(cfg.Level); v != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(v)); err == nil {
			level = parsed
		}
	}

	var sink io.Writer = os.Stdout
	var fileErr error
	mu.Lock()
	if file != nil {
		_ = file.Close()
		file = nil
	}
	if cfg.File != "" {
		w, err := openRotatingFile(cfg.File, cfg.MaxMB)
		if err != nil {
			fileErr = err
		} else {
			file = w
			sink = io.MultiWriter(os.Stdout, w)
		}
	}
	output = sink
	mu.Unlock()

	var console io.Writer = sink
	if cfg.Pretty {
		console = zerolog.ConsoleWriter{Out: sink}
	}

	zerolog.SetGlobalLevel(level)
	ctx := zerolog.New(console).With().Timestamp()
	if cfg.Service != "" {
		ctx = ctx.Str("service", cfg.Service)
	}
	logger := ctx.Logger()
	if cfg.SampleEvery > 1 {
		logger = logger.Sample(&zerolog.BasicSampler{N: uint32(cfg.SampleEvery)})
	}
	log.Logger = logger

	if fileErr != nil {
		log.Warn().Err(fileErr).Str("path", cfg.File).Msg("log file unavailable; logging to stdout only")
	}
}

// Writer is the raw sink behind the global logger, for loggers that are
// not zerolog.
func Writer() io.Writer {
	mu.RLock()
	defer mu.RUnlock()
	return output
}

// Close flushes and closes the log file, if any.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	output = os.Stdout
	if file == nil {
		return nil
	}
	err := file.Close()
	file = nil
	return err
}
