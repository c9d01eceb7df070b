package types

// Transaction is one settled or in-flight swap from the history endpoint.
type Transaction struct {
	QuoteID          string      `json:"quoteId"`
	Status           Status      `json:"status"`
	Timestamp        int64       `json:"timestamp"`
	OriginToken      TokenAmount `json:"originToken"`
	DestinationToken TokenAmount `json:"destinationToken"`
	Recipient        string      `json:"recipient,omitempty"`
}

// TransactionPage is a page of history with an opaque continuation token.
type TransactionPage struct {
	Transactions []Transaction `json:"transactions"`
	Continuation string        `json:"continuation,omitempty"`
}
