package progresslog

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.trai.ch/goalkeeper/internal/core/domain"
	"go.trai.ch/goalkeeper/internal/core/ports"
	"go.trai.ch/zerr"
)

// Sink stores progress log chunks by log name.
type Sink interface {
	Append(ctx context.Context, name string, data []byte) error
	// Close marks the log complete. No chunks follow.
	Close(ctx context.Context, name string) error
}

// FileSink appends logs to files below a directory. The log name is used as
// the relative path with a .log extension.
type FileSink struct {
	dir string
	mu  sync.Mutex
}

// NewFileSink creates a FileSink rooted at dir.
func NewFileSink(dir string) *FileSink {
	return &FileSink{dir: filepath.Clean(dir)}
}

// Path returns the file a log name is written to.
func (s *FileSink) Path(name string) string {
	return filepath.Join(s.dir, filepath.FromSlash(name)+".log")
}

// Append writes data to the end of the log file.
func (s *FileSink) Append(_ context.Context, name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.Path(name)
	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create log directory"), "path", path)
	}
	//nolint:gosec // Path segments are sanitized by domain.ProgressLogPath
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, domain.FilePerm)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to open log file"), "path", path)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return zerr.With(zerr.Wrap(err, "failed to write log file"), "path", path)
	}
	return f.Close()
}

// Close is a no-op; file logs are complete once the last chunk is written.
func (s *FileSink) Close(context.Context, string) error {
	return nil
}

// RedisSink appends logs to redis streams so other replicas and UIs can tail them.
//
// Each log is a stream under:
//
//	<prefix>log:<name>
//
// Chunks carry a "data" field; the final entry carries "closed".
type RedisSink struct {
	client *redis.Client
	prefix string
}

// NewRedisSink creates a RedisSink.
func NewRedisSink(client *redis.Client, prefix string) *RedisSink {
	return &RedisSink{client: client, prefix: prefix}
}

// StreamKey returns the stream a log name is written to.
func (s *RedisSink) StreamKey(name string) string {
	return s.prefix + "log:" + name
}

// Append adds a chunk entry to the log stream.
func (s *RedisSink) Append(ctx context.Context, name string, data []byte) error {
	err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.StreamKey(name),
		Values: map[string]any{"data": string(data)},
	}).Err()
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to append log stream"), "stream", s.StreamKey(name))
	}
	return nil
}

// Close adds the closing entry to the log stream.
func (s *RedisSink) Close(ctx context.Context, name string) error {
	err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.StreamKey(name),
		Values: map[string]any{"closed": "true"},
	}).Err()
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to close log stream"), "stream", s.StreamKey(name))
	}
	return nil
}

// ConsoleSink forwards log lines to the process logger.
type ConsoleSink struct {
	logger ports.Logger
}

// NewConsoleSink creates a ConsoleSink.
func NewConsoleSink(logger ports.Logger) *ConsoleSink {
	return &ConsoleSink{logger: logger}
}

// Append logs every line of data prefixed with the goal part of the log name.
func (s *ConsoleSink) Append(_ context.Context, name string, data []byte) error {
	prefix := shortName(name)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), len(data)+1)
	for scanner.Scan() {
		s.logger.Info("[" + prefix + "] " + scanner.Text())
	}
	return scanner.Err()
}

// Close is a no-op.
func (s *ConsoleSink) Close(context.Context, string) error {
	return nil
}

// shortName keeps the environment and goal name segments of a log path.
func shortName(name string) string {
	parts := strings.Split(name, "/")
	if len(parts) < 6 {
		return name
	}
	return parts[4] + "/" + parts[5]
}
