package signer

import (
	"fmt"

	"omniswap/pkg/types"
)

// signEVMOperation signs the operation's EIP-712 payload and writes the
// signature into the embedded user operation.
func signEVMOperation(w Wallet, op *types.EVMOperation) error {
	if op == nil {
		return fmt.Errorf("nil evm operation")
	}
	sig, err := w.SignTypedData(op.TypedDataToSign)
	if err != nil {
		return fmt.Errorf("typed-data signing failed: %w", err)
	}
	op.UserOp.Signature = sig
	return nil
}
