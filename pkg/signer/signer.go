// Package signer turns a quote's unsigned chain operations into signed ones.
// Operations are signed strictly in sequence because the backend may encode
// nonce/ordering dependencies between them.
package signer

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/gagliardetto/solana-go"

	"omniswap/pkg/types"
)

// Wallet is the capability surface the adapters need from the key holder.
type Wallet interface {
	SignTypedData(td apitypes.TypedData) (string, error)
	SignSolanaMessage(message []byte) (solana.Signature, error)
}

// SignQuote signs every origin chain operation in array order, then the
// destination operation if present. The input quote is never mutated; the
// signed copy is returned.
func SignQuote(ctx context.Context, w Wallet, quote *types.Quote) (*types.SignedQuote, error) {
	cp := quote.Clone()

	for i := range cp.OriginChainsOperations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := SignOperation(w, &cp.OriginChainsOperations[i]); err != nil {
			return nil, fmt.Errorf("failed to sign origin operation %d: %w", i, err)
		}
	}

	if cp.DestinationChainOperation != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := SignOperation(w, cp.DestinationChainOperation); err != nil {
			return nil, fmt.Errorf("failed to sign destination operation: %w", err)
		}
	}

	return &types.SignedQuote{Quote: *cp}, nil
}

// SignOperation signs a single chain operation in place. Operations that
// already carry a non-placeholder signature pass through unchanged.
func SignOperation(w Wallet, op *types.ChainOperation) error {
	if op.Signed() {
		return nil
	}

	switch op.Kind() {
	case types.OperationSolana:
		return signSolanaOperation(w, op.Solana)
	case types.OperationEVM:
		return signEVMOperation(w, op.EVM)
	default:
		return fmt.Errorf("unknown operation kind %q", op.Kind())
	}
}
