package ingest

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix is the key prefix scanned when none is configured.
// Datasets are stored as one set per pass: parkgraph:pass:<id> -> {lots}.
const DefaultRedisPrefix = "parkgraph:pass:"

// RedisSource reads a dictionary-shaped dataset out of Redis. Keys under the
// prefix name passes; set members are the lots the pass grants. Like the SQL
// sources it only ever reads.
type RedisSource struct {
	client *redis.Client
	prefix string
}

// NewRedisSource creates a source over an existing client. An empty prefix
// selects DefaultRedisPrefix.
func NewRedisSource(client *redis.Client, prefix string) *RedisSource {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisSource{client: client, prefix: prefix}
}

func (s *RedisSource) Name() string {
	return "redis:" + s.prefix
}

func (s *RedisSource) Records(ctx context.Context) ([]Record, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan redis source: %w", err)
	}
	// SCAN order is unspecified; sort so repeated loads are identical.
	sort.Strings(keys)

	var records []Record
	line := 0
	for _, key := range keys {
		pass := strings.TrimPrefix(key, s.prefix)
		lots, err := s.client.SMembers(ctx, key).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to read redis key %s: %w", key, err)
		}
		sort.Strings(lots)
		if len(lots) == 0 {
			line++
			records = append(records, Record{PassID: pass, Origin: s.Name(), Line: line})
			continue
		}
		for _, lot := range lots {
			line++
			records = append(records, Record{
				PassID: pass,
				LotID:  lot,
				Origin: s.Name(),
				Line:   line,
			})
		}
	}
	return records, nil
}
