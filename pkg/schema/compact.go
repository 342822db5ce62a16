package schema

// ============================================================================
// Schema Compatto per LLM
// ============================================================================
// Stesse informazioni di Analysis con chiavi brevi e valori stringa:
// pensato per essere incollato in un prompt.

// CompactAnalysis è la struttura root dell'output compatto.
type CompactAnalysis struct {
	Meta  *CompactMeta      `json:"m"`
	Decls map[string]string `json:"d,omitempty"` // nome → "kind:line"
	Calls []string          `json:"c,omitempty"` // "caller>callee" o "caller>callee*N"
	Tags  map[string]string `json:"t,omitempty"` // nome → "async,io"
	Entry []string          `json:"e,omitempty"`
	Leaf  []string          `json:"l,omitempty"`
	Find  []string          `json:"f,omitempty"` // "S:..." stile, "R:..." refactor
	Iss   []CompactIssue    `json:"iss"`
}

// CompactIssue rappresenta un problema rilevato durante l'analisi.
type CompactIssue struct {
	Sev string `json:"s"` // severity: error|warning|info
	Msg string `json:"m"` // message
}

// CompactMeta contiene metadata minimali.
type CompactMeta struct {
	Ver  string `json:"v"` // analyzer version
	Lang string `json:"l"` // language
	Mod  string `json:"mod"`
	Dur  int64  `json:"d"` // duration_ms
}
