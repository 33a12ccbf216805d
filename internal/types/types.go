package types

// Mode selects whether the engine only annotates findings or also rewrites text.
// The value set is owned by the engine; the bridge passes it through unchanged.
type Mode string

// Strategy selects how the engine builds replacement text.
type Strategy string

// Level selects detection strictness.
type Level string

// SemanticMode toggles the engine's semantic detection pass.
type SemanticMode string

// Values understood by the reference engine. Other values are forwarded as-is.
const (
	ModeAnnotate Mode = "annotate"
	ModeSanitize Mode = "sanitize"

	StrategyMask      Strategy = "mask"
	StrategyRedact    Strategy = "redact"
	StrategyPseudonym Strategy = "pseudonym"

	LevelLenient  Level = "lenient"
	LevelStandard Level = "standard"
	LevelStrict   Level = "strict"

	SemanticOff SemanticMode = "off"
	SemanticOn  SemanticMode = "on"
)

// Request is one analysis job sent to the engine.
type Request struct {
	Text              string       `json:"text"`
	Mode              Mode         `json:"mode"`
	Strategy          Strategy     `json:"strategy"`
	Level             Level        `json:"level"`
	EnabledCategories []string     `json:"enabled_categories"`
	Allowlist         []string     `json:"allowlist"`
	SemanticMode      SemanticMode `json:"semantic_mode"`
}

// Finding is one sensitive span detected in Request.Text. Start and End are
// half-open offsets; Confidence is in [0,1]; Risk uses the engine's scale.
type Finding struct {
	Type               string  `json:"type"`
	Start              int     `json:"start"`
	End                int     `json:"end"`
	Confidence         float64 `json:"confidence"`
	Risk               int     `json:"risk"`
	Replacement        string  `json:"replacement"`
	ReplacementPreview string  `json:"replacement_preview"`
	Reason             string  `json:"reason"`
}

// Stats summarises Findings. The risk buckets are assigned by the engine.
type Stats struct {
	TotalFindings   int            `json:"total_findings"`
	ByCategory      map[string]int `json:"by_category"`
	HighRiskCount   int            `json:"high_risk_count"`
	MediumRiskCount int            `json:"medium_risk_count"`
	LowRiskCount    int            `json:"low_risk_count"`
}

// Response is the engine result for one Request. Findings keep engine order.
type Response struct {
	SanitizedText string    `json:"sanitized_text"`
	Findings      []Finding `json:"findings"`
	Stats         Stats     `json:"stats"`
	RiskScore     int       `json:"risk_score"`
	Version       string    `json:"version"`
}
