package store

// Passage is one retrieved piece of evidence with its provenance.
type Passage struct {
	FileId  string  `json:"fileId"`
	Title   string  `json:"title"`
	Page    int     `json:"page"`
	BlockId int     `json:"blockId"`
	Content string  `json:"content"`
	Score   float32 `json:"score"`
}

// Session represents the active chat session working state in memory
type Session struct {
	ID          string `json:"id"` // ChatSessionID
	UserID      string `json:"user_id"`
	ApartmentID string `json:"apartment_id"`
	Mode        string `json:"mode"` // "SIMILARITY" | "FULL_CONTEXT" - retrieval mode for the session

	// Passages retrieved for the most recent turn, kept so a follow-up
	// question can be answered without re-retrieving.
	LastPassages []Passage `json:"last_passages"`

	// Metadata for last interaction
	LastQuery string `json:"last_query"`
}

const (
	// Retrieval modes
	ModeSimilarity  = "SIMILARITY"
	ModeFullContext = "FULL_CONTEXT"
)
