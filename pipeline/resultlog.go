package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// ResultLog writes one JSON object per line while the pipeline runs: a
// start entry, one entry per executed stage, and a finish entry. Lines that
// were written survive a killed job, so downstream tooling can read partial
// runs.
//
// All methods are safe to call on a nil *ResultLog and do nothing.
type ResultLog struct {
	mu      sync.Mutex
	file    *os.File
	encoder *json.Encoder
	err     error
}

type resultStartEntry struct {
	Type       string `json:"type"`
	RunID      string `json:"run_id"`
	StageCount int    `json:"stage_count"`
	Timestamp  string `json:"timestamp"`
}

type resultStageEntry struct {
	Type       string `json:"type"`
	Index      int    `json:"index"`
	Name       string `json:"name"`
	Success    bool   `json:"success"`
	Reason     string `json:"reason,omitempty"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

type resultFinishEntry struct {
	Type       string   `json:"type"`
	RunID      string   `json:"run_id"`
	State      string   `json:"state"`
	Success    bool     `json:"success"`
	Failed     []string `json:"failed,omitempty"`
	DurationMS int64    `json:"duration_ms"`
}

// NewResultLog creates (or truncates) the file at path.
func NewResultLog(path string) (*ResultLog, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating result log %s: %w", path, err)
	}
	return &ResultLog{file: file, encoder: json.NewEncoder(file)}, nil
}

// Close closes the underlying file and returns the first write error, if any.
func (l *ResultLog) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.file.Close(); err != nil && l.err == nil {
		l.err = err
	}
	return l.err
}

func (l *ResultLog) writeStart(runID string, stageCount int) {
	if l == nil {
		return
	}
	l.write(resultStartEntry{
		Type:       "start",
		RunID:      runID,
		StageCount: stageCount,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	})
}

func (l *ResultLog) writeStage(index int, o StageOutcome) {
	if l == nil {
		return
	}
	entry := resultStageEntry{
		Type:       "stage",
		Index:      index,
		Name:       o.Name,
		Success:    o.Success,
		Reason:     o.Reason,
		DurationMS: o.Duration.Milliseconds(),
	}
	if o.Err != nil && !o.Success {
		entry.Error = o.Err.Error()
	}
	l.write(entry)
}

func (l *ResultLog) writeFinish(run *Run) {
	if l == nil {
		return
	}
	entry := resultFinishEntry{
		Type:       "finish",
		RunID:      run.ID,
		State:      run.State.String(),
		Success:    run.Success(),
		DurationMS: run.Duration().Milliseconds(),
	}
	for _, f := range run.Failures() {
		entry.Failed = append(entry.Failed, f.Name)
	}
	l.write(entry)
}

func (l *ResultLog) write(entry any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.encoder.Encode(entry); err != nil && l.err == nil {
		l.err = fmt.Errorf("writing result log: %w", err)
	}
}
