package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"storefront/internal/config"

	"github.com/rs/zerolog"
)

// Sink stores a finished archive object under key and returns where it went.
type Sink interface {
	Put(ctx context.Context, key string, body []byte) (string, error)
}

// fileSink implements Sink on the local file system.
type fileSink struct {
	dir    string
	logger zerolog.Logger
}

// NewFileSink creates a sink writing archives below dir.
func NewFileSink(dir string, logger zerolog.Logger) Sink {
	return &fileSink{
		dir:    dir,
		logger: logger.With().Str("component", "archive-file-sink").Logger(),
	}
}

func (s *fileSink) Put(_ context.Context, key string, body []byte) (string, error) {
	path := filepath.Join(s.dir, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		s.logger.Error().Err(err).Str("path", path).Msg("failed to create archive directory")
		return "", fmt.Errorf("failed to create archive directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		s.logger.Error().Err(err).Str("path", path).Msg("failed to write archive file")
		return "", fmt.Errorf("failed to write archive file %s: %w", path, err)
	}

	s.logger.Info().
		Str("path", path).
		Int("bytes", len(body)).
		Msg("archive written to local file system")

	return path, nil
}

// fallbackSink tries S3 first, then falls back to the local file system.
type fallbackSink struct {
	s3Sink    Sink
	fileSink  Sink
	s3Prefix  string
	s3Enabled bool
	logger    zerolog.Logger
}

// NewFallbackSink creates a sink that writes to S3 when enabled and falls
// back to the file sink when S3 is disabled or the upload fails.
// For S3 the key is prefixed with s3Prefix; locally it is used as-is.
func NewFallbackSink(s3Sink, fileSink Sink, s3Prefix string, s3Enabled bool, logger zerolog.Logger) Sink {
	return &fallbackSink{
		s3Sink:    s3Sink,
		fileSink:  fileSink,
		s3Prefix:  s3Prefix,
		s3Enabled: s3Enabled,
		logger:    logger.With().Str("component", "archive-fallback-sink").Logger(),
	}
}

func (s *fallbackSink) Put(ctx context.Context, key string, body []byte) (string, error) {
	if s.s3Enabled && s.s3Sink != nil {
		s3Key := s.s3Prefix + key

		location, err := s.s3Sink.Put(ctx, s3Key, body)
		if err == nil {
			return location, nil
		}

		s.logger.Warn().
			Err(err).
			Str("s3_key", s3Key).
			Msg("failed to upload archive to S3, falling back to local file system")
	} else {
		s.logger.Debug().
			Bool("s3_enabled", s.s3Enabled).
			Bool("has_s3_sink", s.s3Sink != nil).
			Msg("S3 disabled or not configured, using local file system")
	}

	return s.fileSink.Put(ctx, key, body)
}

// NewSinkFromConfig builds the archive sink described by cfg. When the S3
// client cannot be created the local file system is used alone.
func NewSinkFromConfig(ctx context.Context, cfg config.ArchiveConfig, logger zerolog.Logger) Sink {
	fileSink := NewFileSink(cfg.LocalDir, logger)
	if !cfg.S3Enabled {
		logger.Info().Str("dir", cfg.LocalDir).Msg("using local file system for audit archives (S3 disabled)")
		return NewFallbackSink(nil, fileSink, cfg.Prefix, false, logger)
	}

	s3Sink, err := NewS3Sink(ctx, cfg.Bucket, cfg.Region, logger)
	if err != nil {
		logger.Warn().
			Err(err).
			Msg("failed to initialise S3 sink, falling back to local file system only")
		return NewFallbackSink(nil, fileSink, cfg.Prefix, false, logger)
	}

	return NewFallbackSink(s3Sink, fileSink, cfg.Prefix, true, logger)
}
