package store

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"

	corestore "github.com/kilianp07/crewsched/core/store"
)

// maxLine bounds a single record; rosters of large catalogs exceed the
// scanner default.
const maxLine = 4 << 20

// RotatingJSONLStore stores run records in a JSONL file with automatic rotation.
type RotatingJSONLStore struct {
	mu     sync.Mutex
	logger *lumberjack.Logger
	path   string
}

// NewRotatingJSONLStore creates a store with rotation options in megabytes and days.
func NewRotatingJSONLStore(path string, maxSizeMB, maxBackups, maxAgeDays int) (*RotatingJSONLStore, error) {
	lj := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		Compress:   false,
	}
	// ensure directory exists
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return &RotatingJSONLStore{logger: lj, path: path}, nil
}

// Append writes the record and triggers rotation if needed.
func (s *RotatingJSONLStore) Append(ctx context.Context, rec corestore.RunRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return json.NewEncoder(s.logger).Encode(rec)
}

// Query reads all log files including rotated ones. Malformed lines are
// skipped.
func (s *RotatingJSONLStore) Query(ctx context.Context, q corestore.RunQuery) ([]corestore.RunRecord, error) {
	// lumberjack backups are named <name>-<timestamp><ext>
	ext := filepath.Ext(s.path)
	files, err := filepath.Glob(strings.TrimSuffix(s.path, ext) + "*" + ext)
	if err != nil {
		return nil, err
	}
	var res []corestore.RunRecord
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		recs, err := readRecords(f, q)
		if err != nil {
			continue
		}
		res = append(res, recs...)
	}
	sort.SliceStable(res, func(i, j int) bool { return res[i].Timestamp.Before(res[j].Timestamp) })
	return corestore.Tail(res, q.Limit), nil
}

func readRecords(path string, q corestore.RunQuery) ([]corestore.RunRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	var res []corestore.RunRecord
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), maxLine)
	for scanner.Scan() {
		var r corestore.RunRecord
		if err := json.Unmarshal(scanner.Bytes(), &r); err != nil {
			continue
		}
		if q.Match(r) {
			res = append(res, r)
		}
	}
	return res, scanner.Err()
}

// Close closes the underlying writer.
func (s *RotatingJSONLStore) Close() error {
	return s.logger.Close()
}
