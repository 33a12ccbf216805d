package report

import (
	"encoding/json"
	"io"

	"github.com/prompt-sanitizer/host/internal/types"
)

type sarif struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type sarifResult struct {
	RuleID     string          `json:"ruleId"`
	Level      string          `json:"level"`
	Message    sarifMessage    `json:"message"`
	Locations  []sarifLoc      `json:"locations"`
	Properties sarifProperties `json:"properties"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLoc struct {
	PhysicalLocation sarifPhys `json:"physicalLocation"`
}

type sarifPhys struct {
	ArtifactLocation sarifArt    `json:"artifactLocation"`
	Region           sarifRegion `json:"region"`
}

type sarifArt struct {
	URI string `json:"uri"`
}

// Offsets are byte offsets into the submitted text, as the engine reports them.
type sarifRegion struct {
	ByteOffset int `json:"byteOffset"`
	ByteLength int `json:"byteLength"`
}

type sarifProperties struct {
	Risk        int     `json:"risk"`
	Confidence  float64 `json:"confidence"`
	Replacement string  `json:"replacement"`
}

func bucketToLevel(risk int) string {
	switch Bucket(risk) {
	case "high":
		return "error"
	case "medium":
		return "warning"
	default:
		return "note"
	}
}

// WriteSARIF writes the findings of resp as SARIF 2.1.0. uri names the
// sanitized input.
func WriteSARIF(w io.Writer, uri string, resp types.Response) error {
	run := sarifRun{
		Tool:    sarifTool{Driver: sarifDriver{Name: "prompt-sanitizer", Version: resp.Version}},
		Results: []sarifResult{},
	}
	for _, f := range resp.Findings {
		msg := f.Reason
		if msg == "" {
			msg = f.Type + " detected"
		}
		run.Results = append(run.Results, sarifResult{
			RuleID:  f.Type,
			Level:   bucketToLevel(f.Risk),
			Message: sarifMessage{Text: msg},
			Locations: []sarifLoc{{
				PhysicalLocation: sarifPhys{
					ArtifactLocation: sarifArt{URI: uri},
					Region:           sarifRegion{ByteOffset: f.Start, ByteLength: f.End - f.Start},
				},
			}},
			Properties: sarifProperties{Risk: f.Risk, Confidence: f.Confidence, Replacement: f.Replacement},
		})
	}
	doc := sarif{
		Version: "2.1.0",
		Schema:  "https://json.schemastore.org/sarif-2.1.0.json",
		Runs:    []sarifRun{run},
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
