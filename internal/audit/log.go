// Package audit keeps an append-only JSONL record of sanitize calls. Records
// carry fingerprints and counts only; neither the submitted nor the sanitized
// text is ever written.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"github.com/prompt-sanitizer/host/internal/types"
)

type CallRecord struct {
	Timestamp     time.Time        `json:"timestamp"`
	CallID        string           `json:"call_id"`
	Source        string           `json:"source"`
	TextFP        string           `json:"text_fp"`
	TextBytes     int              `json:"text_bytes"`
	Mode          string           `json:"mode"`
	Strategy      string           `json:"strategy"`
	TotalFindings int              `json:"total_findings"`
	ByCategory    map[string]int   `json:"by_category"`
	HighRisk      int              `json:"high_risk_count"`
	MediumRisk    int              `json:"medium_risk_count"`
	LowRisk       int              `json:"low_risk_count"`
	RiskScore     int              `json:"risk_score"`
	EngineVersion string           `json:"engine_version"`
	Duration      string           `json:"duration"`
	TopFindings   []FindingSummary `json:"top_findings,omitempty"`
}

// FindingSummary locates a finding without its content.
type FindingSummary struct {
	Type  string `json:"type"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Risk  int    `json:"risk"`
}

type AuditLog struct {
	logPath string
}

// NewAuditLog opens the log at path. The file is created on first write.
func NewAuditLog(path string) *AuditLog {
	return &AuditLog{logPath: path}
}

// Path returns the log file location.
func (a *AuditLog) Path() string { return a.logPath }

// LoadHistory returns records newest first. Reading stops at the first
// record that does not parse.
func (a *AuditLog) LoadHistory() ([]CallRecord, error) {
	f, err := os.Open(a.logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	var records []CallRecord
	decoder := json.NewDecoder(f)
	for decoder.More() {
		var record CallRecord
		if err := decoder.Decode(&record); err != nil {
			break
		}
		records = append(records, record)
	}

	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

func (a *AuditLog) LogCall(record CallRecord) error {
	if record.CallID == "" {
		record.CallID = uuid.NewString()
	}
	if dir := filepath.Dir(a.logPath); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create audit log dir: %w", err)
		}
	}

	// Owner-only: records describe what was found in user prompts.
	f, err := os.OpenFile(a.logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	if err := encoder.Encode(record); err != nil {
		return fmt.Errorf("failed to write audit record: %w", err)
	}
	return nil
}

// Fingerprint identifies text without storing it.
func Fingerprint(text string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(text))
}

// CreateCallRecord summarises one completed call.
func CreateCallRecord(source string, req types.Request, resp types.Response, duration time.Duration) CallRecord {
	top := make([]FindingSummary, 0, 10)
	sorted := append([]types.Finding(nil), resp.Findings...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Risk > sorted[j].Risk })
	for i, f := range sorted {
		if i >= 10 {
			break
		}
		top = append(top, FindingSummary{Type: f.Type, Start: f.Start, End: f.End, Risk: f.Risk})
	}

	return CallRecord{
		Timestamp:     time.Now(),
		Source:        source,
		TextFP:        Fingerprint(req.Text),
		TextBytes:     len(req.Text),
		Mode:          string(req.Mode),
		Strategy:      string(req.Strategy),
		TotalFindings: resp.Stats.TotalFindings,
		ByCategory:    resp.Stats.ByCategory,
		HighRisk:      resp.Stats.HighRiskCount,
		MediumRisk:    resp.Stats.MediumRiskCount,
		LowRisk:       resp.Stats.LowRiskCount,
		RiskScore:     resp.RiskScore,
		EngineVersion: resp.Version,
		Duration:      duration.String(),
		TopFindings:   top,
	}
}
