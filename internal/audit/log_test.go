package audit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prompt-sanitizer/host/internal/types"
)

func sample() (types.Request, types.Response) {
	req := types.Request{Text: "call 13812345678 or mail a@b.cn", Mode: types.ModeSanitize, Strategy: types.StrategyRedact}
	resp := types.Response{
		SanitizedText: "call [PHONE] or mail [EMAIL]",
		Findings: []types.Finding{
			{Type: "email", Start: 25, End: 31, Risk: 50, ReplacementPreview: "a@b.cn"},
			{Type: "phone", Start: 5, End: 16, Risk: 80, ReplacementPreview: "138***678"},
		},
		Stats:     types.Stats{TotalFindings: 2, ByCategory: map[string]int{"phone": 1, "email": 1}, HighRiskCount: 1, MediumRiskCount: 1},
		RiskScore: 69,
		Version:   "0.1.0",
	}
	return req, resp
}

func TestCreateCallRecord(t *testing.T) {
	req, resp := sample()
	rec := CreateCallRecord("stdin", req, resp, 1500*time.Millisecond)

	assert.Equal(t, Fingerprint(req.Text), rec.TextFP)
	assert.Len(t, rec.TextFP, 16)
	assert.Equal(t, len(req.Text), rec.TextBytes)
	assert.Equal(t, 2, rec.TotalFindings)
	assert.Equal(t, 69, rec.RiskScore)
	assert.Equal(t, "1.5s", rec.Duration)
	require.Len(t, rec.TopFindings, 2)
	assert.Equal(t, "phone", rec.TopFindings[0].Type, "highest risk first")
	assert.Equal(t, "email", resp.Findings[0].Type, "input order untouched")
}

func TestLogCall_NeverStoresText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "audit.jsonl")
	log := NewAuditLog(path)
	req, resp := sample()
	require.NoError(t, log.LogCall(CreateCallRecord("stdin", req, resp, time.Second)))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	for _, secret := range []string{"13812345678", "a@b.cn", "138***678", "[PHONE]"} {
		assert.NotContains(t, string(raw), secret)
	}
	st, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), st.Mode().Perm())
}

func TestLoadHistory_NewestFirst(t *testing.T) {
	log := NewAuditLog(filepath.Join(t.TempDir(), "audit.jsonl"))
	req, resp := sample()
	for _, src := range []string{"first", "second", "third"} {
		require.NoError(t, log.LogCall(CreateCallRecord(src, req, resp, time.Second)))
	}

	records, err := log.LoadHistory()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "third", records[0].Source)
	assert.Equal(t, "first", records[2].Source)
	assert.NotEmpty(t, records[0].CallID)
	assert.NotEqual(t, records[0].CallID, records[1].CallID)
}

func TestLoadHistory_StopsAtCorruptRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	log := NewAuditLog(path)
	req, resp := sample()
	require.NoError(t, log.LogCall(CreateCallRecord("ok", req, resp, time.Second)))
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o600)
	require.NoError(t, err)
	_, err = f.WriteString(strings.Repeat("{", 3) + "\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	records, err := log.LoadHistory()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "ok", records[0].Source)
}

func TestLoadHistory_Missing(t *testing.T) {
	_, err := NewAuditLog(filepath.Join(t.TempDir(), "none.jsonl")).LoadHistory()
	assert.Error(t, err)
}
