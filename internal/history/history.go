// Package history records completed hands as JSON lines, one file per
// table. Records survive restarts: a recorder reopening an existing
// file keeps its contents and continues the sequence.
package history

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/pokertable/internal/fileutil"
	"github.com/lox/pokertable/internal/game"
)

// HandRecord is one completed hand. View carries the module's public
// projection at hand end, so the board, final stacks and hand number
// travel with the record without the recorder knowing the game.
type HandRecord struct {
	TableID   string         `json:"tableId"`
	Seq       uint64         `json:"seq"`
	Timestamp time.Time      `json:"timestamp"`
	Winners   []string       `json:"winners"`
	Awards    map[string]int `json:"awards,omitempty"`
	Summary   string         `json:"summary"`
	View      any            `json:"view,omitempty"`
}

// Config configures a recorder.
type Config struct {
	// Dir is the directory holding history files.
	Dir string
	// TableID names the file: <Dir>/<TableID>.jsonl.
	TableID string
	// FlushHands rewrites the file every N records. Default 1.
	FlushHands int
	// Clock supplies record timestamps. Default is the real clock.
	Clock quartz.Clock
}

// Recorder appends hand records for a single table. The file is
// rewritten atomically on flush so readers never see a torn line.
// A nil *Recorder is a no-op, allowing history to stay optional.
type Recorder struct {
	cfg    Config
	logger *log.Logger
	clock  quartz.Clock
	path   string

	mu      sync.Mutex
	lines   [][]byte
	pending int
	seq     uint64
	closed  bool
}

// NewRecorder opens (or resumes) the history file for a table.
func NewRecorder(cfg Config, logger *log.Logger) (*Recorder, error) {
	if cfg.TableID == "" {
		return nil, errors.New("history: TableID is required")
	}
	if cfg.Dir == "" {
		return nil, errors.New("history: Dir is required")
	}
	if cfg.FlushHands <= 0 {
		cfg.FlushHands = 1
	}
	if cfg.Clock == nil {
		cfg.Clock = quartz.NewReal()
	}

	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("history: create dir: %w", err)
	}

	r := &Recorder{
		cfg:    cfg,
		logger: logger.WithPrefix("history"),
		clock:  cfg.Clock,
		path:   filepath.Join(cfg.Dir, cfg.TableID+".jsonl"),
	}
	if err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

// load reads any existing records so a restart keeps appending.
func (r *Recorder) load() error {
	f, err := os.Open(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("history: open %s: %w", r.path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		r.lines = append(r.lines, append([]byte(nil), line...))
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("history: read %s: %w", r.path, err)
	}
	r.seq = uint64(len(r.lines))
	return nil
}

// Path returns the file this recorder writes.
func (r *Recorder) Path() string {
	if r == nil {
		return ""
	}
	return r.path
}

// Record appends one completed hand. The view should be the public
// projection at hand end.
func (r *Recorder) Record(res *game.Result, view any) error {
	if r == nil || res == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return errors.New("history: recorder is closed")
	}

	r.seq++
	rec := HandRecord{
		TableID:   r.cfg.TableID,
		Seq:       r.seq,
		Timestamp: r.clock.Now(),
		Winners:   res.Winners,
		Awards:    res.Awards,
		Summary:   res.Summary,
		View:      view,
	}
	line, err := json.Marshal(rec)
	if err != nil {
		r.seq--
		return fmt.Errorf("history: marshal record: %w", err)
	}

	r.lines = append(r.lines, line)
	r.pending++
	if r.pending >= r.cfg.FlushHands {
		return r.flushLocked()
	}
	return nil
}

// Flush rewrites the file with every record so far.
func (r *Recorder) Flush() error {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.flushLocked()
}

func (r *Recorder) flushLocked() error {
	if r.pending == 0 {
		return nil
	}

	var buf bytes.Buffer
	for _, line := range r.lines {
		buf.Write(line)
		buf.WriteByte('\n')
	}
	if err := fileutil.WriteFileAtomic(r.path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("history: write %s: %w", r.path, err)
	}
	r.pending = 0
	r.logger.Debug("flushed hand history", "path", r.path, "hands", len(r.lines))
	return nil
}

// Close flushes outstanding records and stops the recorder.
func (r *Recorder) Close() error {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	return r.flushLocked()
}

// Hands returns the number of recorded hands.
func (r *Recorder) Hands() uint64 {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seq
}
