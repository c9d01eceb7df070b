package signer

import (
	"encoding/base64"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"

	"omniswap/pkg/types"
)

// signSolanaOperation decodes the base64 versioned-transaction message,
// validates it, signs the raw message bytes, and stores the signature in
// base58.
func signSolanaOperation(w Wallet, op *types.SolanaOperation) error {
	if op == nil {
		return fmt.Errorf("nil solana operation")
	}

	raw, err := base64.StdEncoding.DecodeString(op.DataToSign)
	if err != nil {
		return fmt.Errorf("failed to decode message: %w", err)
	}

	var msg solana.Message
	if err := msg.UnmarshalWithDecoder(bin.NewBinDecoder(raw)); err != nil {
		return fmt.Errorf("failed to parse transaction message: %w", err)
	}
	if len(msg.AccountKeys) == 0 {
		return fmt.Errorf("transaction message has no account keys")
	}

	// The signature covers the serialized message exactly as received.
	sig, err := w.SignSolanaMessage(raw)
	if err != nil {
		return fmt.Errorf("message signing failed: %w", err)
	}

	op.Signature = base58.Encode(sig[:])
	return nil
}
