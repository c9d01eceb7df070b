package types

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// SwapRequest represents a user's swap command
type SwapRequest struct {
	Amount        string
	SourceAsset   string
	DestAsset     string
	RecipientAddr string
}

// Account identifies the smart account a quote is issued for. The account
// address is predicted from the session/admin key pair before deployment.
type Account struct {
	SessionAddress string `json:"sessionAddress"`
	AdminAddress   string `json:"adminAddress"`
	AccountAddress string `json:"accountAddress,omitempty"`
}

// TokenAmount is one side of a quote: an aggregated asset and an amount in
// base units, with the backend's fiat valuation attached.
type TokenAmount struct {
	AggregatedAssetID string     `json:"aggregatedAssetId"`
	Amount            string     `json:"amount"`
	AssetType         string     `json:"assetType,omitempty"`
	FiatValue         *FiatValue `json:"fiatValue,omitempty"`
}

// Quote is a time-boxed, backend-signed offer. It is immutable: a re-request
// produces a new Quote and the old one is discarded, never mutated.
type Quote struct {
	ID                        string           `json:"id"`
	Account                   Account          `json:"account"`
	OriginToken               TokenAmount      `json:"originToken"`
	DestinationToken          TokenAmount      `json:"destinationToken"`
	ExpirationTimestamp       int64            `json:"expirationTimestamp"`
	OriginChainsOperations    []ChainOperation `json:"originChainsOperations"`
	DestinationChainOperation *ChainOperation  `json:"destinationChainOperation,omitempty"`
	TamperProofSignature      string           `json:"tamperProofSignature"`
}

// Expired reports whether the quote's expiry timestamp has passed.
func (q *Quote) Expired(now time.Time) bool {
	return now.UnixMilli() > q.ExpirationTimestamp*1000
}

// Clone returns a deep copy of the quote. Signing works on a copy so the
// original quote stays untouched for retries.
func (q *Quote) Clone() *Quote {
	cp := *q
	cp.OriginChainsOperations = make([]ChainOperation, len(q.OriginChainsOperations))
	for i := range q.OriginChainsOperations {
		cp.OriginChainsOperations[i] = *q.OriginChainsOperations[i].clone()
	}
	if q.DestinationChainOperation != nil {
		cp.DestinationChainOperation = q.DestinationChainOperation.clone()
	}
	return &cp
}

// SignedQuote is a Quote whose chain operations all carry wallet signatures.
// It is derived once per execution attempt and never persisted.
type SignedQuote struct {
	Quote
}

// OperationKind discriminates the chain family of a ChainOperation.
type OperationKind string

const (
	OperationEVM    OperationKind = "evm"
	OperationSolana OperationKind = "solana"
)

// ChainOperation is one unsigned (then signed) transaction-like payload
// targeting a specific chain. Exactly one of EVM or Solana is set; the wire
// encoding is discriminated by the "type" field.
type ChainOperation struct {
	EVM    *EVMOperation
	Solana *SolanaOperation
}

// Kind returns the chain family of the operation.
func (op *ChainOperation) Kind() OperationKind {
	if op.Solana != nil {
		return OperationSolana
	}
	return OperationEVM
}

func (op *ChainOperation) clone() *ChainOperation {
	cp := ChainOperation{}
	if op.EVM != nil {
		evm := *op.EVM
		cp.EVM = &evm
	}
	if op.Solana != nil {
		sol := *op.Solana
		cp.Solana = &sol
	}
	return &cp
}

// UnmarshalJSON decodes the tagged union, validating the payload against a
// known chain family at the API boundary.
func (op *ChainOperation) UnmarshalJSON(data []byte) error {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("chain operation: %w", err)
	}

	switch probe.Type {
	case "solana":
		var sol SolanaOperation
		if err := json.Unmarshal(data, &sol); err != nil {
			return fmt.Errorf("solana operation: %w", err)
		}
		if sol.DataToSign == "" {
			return fmt.Errorf("solana operation missing dataToSign")
		}
		op.Solana = &sol
		op.EVM = nil
		return nil
	case "", "evm":
		var evm EVMOperation
		if err := json.Unmarshal(data, &evm); err != nil {
			return fmt.Errorf("evm operation: %w", err)
		}
		if evm.UserOp.Sender == "" {
			return fmt.Errorf("evm operation missing userOp.sender")
		}
		op.EVM = &evm
		op.Solana = nil
		return nil
	default:
		return fmt.Errorf("unknown chain operation type %q", probe.Type)
	}
}

// MarshalJSON encodes whichever variant is set.
func (op ChainOperation) MarshalJSON() ([]byte, error) {
	if op.Solana != nil {
		return json.Marshal(op.Solana)
	}
	if op.EVM != nil {
		return json.Marshal(op.EVM)
	}
	return nil, fmt.Errorf("empty chain operation")
}

// Signed reports whether the operation already carries a real signature.
func (op *ChainOperation) Signed() bool {
	if op.Solana != nil {
		return op.Solana.Signed()
	}
	if op.EVM != nil {
		return op.EVM.UserOp.Signature != "" && op.EVM.UserOp.Signature != "0x"
	}
	return false
}

// EVMOperation is an unsigned ERC-4337 user operation together with the
// EIP-712 payload the wallet must sign.
type EVMOperation struct {
	Type            string             `json:"type,omitempty"`
	Chain           string             `json:"chain,omitempty"` // CAIP-2, e.g. "eip155:1"
	UserOp          UserOperation      `json:"userOp"`
	TypedDataToSign apitypes.TypedData `json:"typedDataToSign"`
	AssetType       string             `json:"assetType,omitempty"`
	Amount          string             `json:"amount,omitempty"`
}

// UserOperation is the embedded ERC-4337 struct the signature is written into.
type UserOperation struct {
	Sender               string `json:"sender"`
	Nonce                string `json:"nonce"`
	CallData             string `json:"callData"`
	CallGasLimit         string `json:"callGasLimit,omitempty"`
	VerificationGasLimit string `json:"verificationGasLimit,omitempty"`
	PreVerificationGas   string `json:"preVerificationGas,omitempty"`
	MaxFeePerGas         string `json:"maxFeePerGas,omitempty"`
	MaxPriorityFeePerGas string `json:"maxPriorityFeePerGas,omitempty"`
	PaymasterAndData     string `json:"paymasterAndData,omitempty"`
	Signature            string `json:"signature,omitempty"`
}

// SolanaOperation carries a base64-encoded serialized versioned-transaction
// message. Before signing, the backend fills the signature slot with a base58
// all-ones placeholder.
type SolanaOperation struct {
	Type       string `json:"type"`
	Chain      string `json:"chain,omitempty"` // CAIP-2, e.g. "solana:mainnet"
	DataToSign string `json:"dataToSign"`
	FeePayer   string `json:"feePayer,omitempty"`
	Signature  string `json:"signature,omitempty"`
}

// Signed reports whether the operation carries a non-placeholder signature.
func (s *SolanaOperation) Signed() bool {
	if s.Signature == "" {
		return false
	}
	return strings.Trim(s.Signature, "1") != ""
}

// QuoteRequest is the body for POST /api/quotes/swap-quote. Amounts are base
// units at the origin asset's decimal precision.
type QuoteRequest struct {
	From QuoteOrigin      `json:"from"`
	To   QuoteDestination `json:"to"`
}

// QuoteOrigin is the from-side of a quote request.
type QuoteOrigin struct {
	Account           Account `json:"account"`
	AggregatedAssetID string  `json:"asset"`
	Amount            string  `json:"amount"`
}

// QuoteDestination is the to-side of a quote request.
type QuoteDestination struct {
	AggregatedAssetID string `json:"asset"`
	Recipient         string `json:"recipient,omitempty"`
}
