package audit

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// LogSink writes each entry as a single JSON line through a standard logger.
type LogSink struct {
	logger *log.Logger
}

var _ Sink = (*LogSink)(nil)

// NewLogSink creates a sink writing JSON entries to w.
func NewLogSink(w io.Writer) *LogSink {
	return &LogSink{logger: log.New(w, "audit: ", log.LstdFlags)}
}

func (s *LogSink) Write(e Entry) {
	payload, err := json.Marshal(e)
	if err != nil {
		s.logger.Printf("WARNING: failed to marshal audit entry %s: %v", e.ID, err)
		return
	}
	s.logger.Print(string(payload))
}

// RedisSink appends entries to a Redis stream so they can be consumed by an
// external collector. Delivery is best-effort: a failed XADD is logged and
// dropped rather than surfaced to the tool path.
type RedisSink struct {
	rdb     *redis.Client
	stream  string
	timeout time.Duration
}

var _ Sink = (*RedisSink)(nil)

// NewRedisSink creates a sink appending to the named stream.
func NewRedisSink(rdb *redis.Client, stream string) *RedisSink {
	return &RedisSink{rdb: rdb, stream: stream, timeout: 2 * time.Second}
}

func (s *RedisSink) Write(e Entry) {
	payload, err := json.Marshal(e)
	if err != nil {
		log.Printf("WARNING: failed to marshal audit entry %s: %v", e.ID, err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	err = s.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]any{"entry": string(payload)},
	}).Err()
	if err != nil {
		log.Printf("WARNING: failed to append audit entry %s to stream %s: %v", e.ID, s.stream, err)
	}
}
