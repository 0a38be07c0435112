package domain

// AgentResponse is the envelope produced exactly once per agent run.
// Transaction carries the record for single-record actions, Transactions the
// result set for SEARCH / CLEAR_SEARCH. A terminal response always carries
// either a populated result or a non-empty ErrorMessage.
type AgentResponse struct {
	Action       Action        `json:"action"`
	Transaction  *Transaction  `json:"transaction,omitempty"`
	Transactions []Transaction `json:"transactions,omitempty"`
	ErrorMessage string        `json:"errorMessage,omitempty"`
}
