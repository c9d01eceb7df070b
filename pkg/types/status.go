package types

// Status is the execution status of a submitted quote.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
	StatusRefunded   Status = "REFUNDED"
)

// Terminal reports whether the status ends the lifecycle. Polling must stop
// on the first terminal status.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusRefunded:
		return true
	default:
		return false
	}
}

// OperationReceipt is the on-chain outcome of one chain operation.
type OperationReceipt struct {
	Chain       string `json:"chain,omitempty"`
	Hash        string `json:"hash"`
	ExplorerURL string `json:"explorerUrl,omitempty"`
}

// QuoteStatus is the execution status for a quote id. Each poll response
// fully replaces the previous one.
type QuoteStatus struct {
	QuoteID                    string             `json:"quoteId"`
	Status                     Status             `json:"status"`
	OriginChainOperations      []OperationReceipt `json:"originChainOperations,omitempty"`
	DestinationChainOperations []OperationReceipt `json:"destinationChainOperations,omitempty"`
}
