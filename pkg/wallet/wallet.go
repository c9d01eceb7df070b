// Package wallet holds the session key material used to sign chain
// operations. The EVM secp256k1 key signs EIP-712 payloads for the smart
// account; the Solana ed25519 key signs serialized transaction messages.
package wallet

import (
	"crypto/ecdsa"
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/gagliardetto/solana-go"

	"omniswap/pkg/types"
)

// Wallet is the signing-capable session wallet. The key material and the
// derived addresses are read-only after construction; only the predicted
// account address is set later, once per session.
type Wallet struct {
	evmKey *ecdsa.PrivateKey
	solKey solana.PrivateKey

	adminAddress string

	mu        sync.RWMutex
	predicted string
}

// New builds a wallet from a hex-encoded EVM session key, an optional
// base58-encoded Solana key, and the admin address of the smart account.
func New(evmKeyHex, solanaKeyBase58, adminAddress string) (*Wallet, error) {
	if evmKeyHex == "" {
		return nil, fmt.Errorf("session key not configured")
	}
	evmKey, err := crypto.HexToECDSA(strings.TrimPrefix(evmKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid session key: %w", err)
	}

	w := &Wallet{evmKey: evmKey, adminAddress: adminAddress}

	if solanaKeyBase58 != "" {
		solKey, err := solana.PrivateKeyFromBase58(solanaKeyBase58)
		if err != nil {
			return nil, fmt.Errorf("invalid solana key: %w", err)
		}
		w.solKey = solKey
	}

	if w.adminAddress == "" {
		w.adminAddress = w.Address().Hex()
	}
	return w, nil
}

// Address returns the EVM session address.
func (w *Wallet) Address() common.Address {
	return crypto.PubkeyToAddress(w.evmKey.PublicKey)
}

// SolanaAddress returns the Solana public key, or false when no Solana key
// is configured.
func (w *Wallet) SolanaAddress() (solana.PublicKey, bool) {
	if w.solKey == nil {
		return solana.PublicKey{}, false
	}
	return w.solKey.PublicKey(), true
}

// SetPredictedAddress records the backend-predicted smart-account address.
func (w *Wallet) SetPredictedAddress(addr string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.predicted = addr
}

// PredictedAddress returns the smart-account address, if already predicted.
func (w *Wallet) PredictedAddress() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.predicted
}

// Account returns the account tuple quotes are requested for.
func (w *Wallet) Account() types.Account {
	return types.Account{
		SessionAddress: w.Address().Hex(),
		AdminAddress:   w.adminAddress,
		AccountAddress: w.PredictedAddress(),
	}
}

// SignTypedData hashes an EIP-712 payload and returns the 65-byte signature
// hex-encoded with the legacy 27/28 recovery id.
func (w *Wallet) SignTypedData(td apitypes.TypedData) (string, error) {
	digest, _, err := apitypes.TypedDataAndHash(td)
	if err != nil {
		return "", fmt.Errorf("failed to hash typed data: %w", err)
	}
	sig, err := crypto.Sign(digest, w.evmKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign typed data: %w", err)
	}
	sig[64] += 27
	return hexutil.Encode(sig), nil
}

// SignSolanaMessage signs raw serialized transaction-message bytes.
func (w *Wallet) SignSolanaMessage(message []byte) (solana.Signature, error) {
	if w.solKey == nil {
		return solana.Signature{}, fmt.Errorf("solana key not configured")
	}
	sig, err := w.solKey.Sign(message)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to sign message: %w", err)
	}
	return sig, nil
}
