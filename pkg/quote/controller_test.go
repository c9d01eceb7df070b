package quote

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"omniswap/pkg/types"
)

type fakeService struct {
	mu       sync.Mutex
	quoteFn  func(ctx context.Context, req types.QuoteRequest) (*types.Quote, error)
	execErr  error
	executed []*types.SignedQuote
	statusFn StatusFunc
	requests []types.QuoteRequest
}

func (s *fakeService) SwapQuote(ctx context.Context, req types.QuoteRequest) (*types.Quote, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	fn := s.quoteFn
	s.mu.Unlock()
	return fn(ctx, req)
}

func (s *fakeService) ExecuteQuote(ctx context.Context, signed *types.SignedQuote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.executed = append(s.executed, signed)
	return s.execErr
}

func (s *fakeService) ExecutionStatus(ctx context.Context, quoteID string) (*types.QuoteStatus, error) {
	return s.statusFn(ctx, quoteID)
}

func (s *fakeService) requestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

type countingWallet struct {
	mu         sync.Mutex
	typedCalls int
}

func (w *countingWallet) SignTypedData(td apitypes.TypedData) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.typedCalls++
	return "0xsig", nil
}

func (w *countingWallet) SignSolanaMessage(message []byte) (solana.Signature, error) {
	return solana.Signature{}, nil
}

func (w *countingWallet) calls() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.typedCalls
}

func testInput() Input {
	return Input{
		FromAsset: types.Asset{AggregatedAssetID: "ob:usdc", Symbol: "USDC", Decimals: 6},
		ToAsset:   types.Asset{AggregatedAssetID: "ob:eth", Symbol: "ETH", Decimals: 18},
		Amount:    "10",
		Account:   types.Account{SessionAddress: "0xsession", AdminAddress: "0xadmin"},
	}
}

func liveQuote(id string, expiry int64) *types.Quote {
	return &types.Quote{
		ID:                  id,
		ExpirationTimestamp: expiry,
		OriginChainsOperations: []types.ChainOperation{
			{EVM: &types.EVMOperation{UserOp: types.UserOperation{Sender: "0xsender"}}},
		},
	}
}

func futureExpiry() int64 {
	return time.Now().Add(time.Hour).Unix()
}

func TestRequestQuoteSuccess(t *testing.T) {
	svc := &fakeService{
		quoteFn: func(ctx context.Context, req types.QuoteRequest) (*types.Quote, error) {
			return liveQuote("q-1", futureExpiry()), nil
		},
	}

	var quoted []*types.Quote
	c := NewController(svc, &countingWallet{},
		WithOnQuote(func(q *types.Quote) { quoted = append(quoted, q) }),
	)
	defer c.ResetQuote()

	q, err := c.RequestQuote(context.Background(), testInput())
	require.NoError(t, err)
	assert.Equal(t, "q-1", q.ID)
	assert.Equal(t, StateQuoted, c.State())
	require.Len(t, quoted, 1)

	// Amounts go over the wire in base units.
	require.Equal(t, 1, svc.requestCount())
	assert.Equal(t, "10000000", svc.requests[0].From.Amount)
	assert.Equal(t, "ob:usdc", svc.requests[0].From.AggregatedAssetID)
	assert.Equal(t, "ob:eth", svc.requests[0].To.AggregatedAssetID)
}

func TestRequestQuoteValidation(t *testing.T) {
	svc := &fakeService{
		quoteFn: func(ctx context.Context, req types.QuoteRequest) (*types.Quote, error) {
			t.Fatal("backend must not be called on invalid input")
			return nil, nil
		},
	}

	c := NewController(svc, &countingWallet{})

	in := testInput()
	in.Account.SessionAddress = ""
	_, err := c.RequestQuote(context.Background(), in)
	require.Error(t, err)
	assert.Error(t, c.Err())

	in = testInput()
	in.Amount = "0"
	_, err = c.RequestQuote(context.Background(), in)
	require.Error(t, err)

	in = testInput()
	in.Amount = "1.1234567" // beyond USDC precision
	_, err = c.RequestQuote(context.Background(), in)
	require.Error(t, err)

	noWallet := NewController(svc, nil)
	_, err = noWallet.RequestQuote(context.Background(), testInput())
	require.ErrorIs(t, err, ErrWalletRequired)
}

func TestRequestQuoteBackendError(t *testing.T) {
	backendErr := errors.New("no route found")
	svc := &fakeService{
		quoteFn: func(ctx context.Context, req types.QuoteRequest) (*types.Quote, error) {
			return nil, backendErr
		},
	}

	c := NewController(svc, &countingWallet{})
	_, err := c.RequestQuote(context.Background(), testInput())
	require.ErrorIs(t, err, backendErr)
	assert.Equal(t, StateIdle, c.State())
	assert.Nil(t, c.Quote())
	assert.ErrorIs(t, c.Err(), backendErr)
}

func TestStaleResponseDiscarded(t *testing.T) {
	firstEntered := make(chan struct{})
	release := make(chan struct{})

	var calls int
	var mu sync.Mutex
	svc := &fakeService{}
	svc.quoteFn = func(ctx context.Context, req types.QuoteRequest) (*types.Quote, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			close(firstEntered)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-release:
			}
			return liveQuote("stale", futureExpiry()), nil
		}
		return liveQuote("fresh", futureExpiry()), nil
	}

	c := NewController(svc, &countingWallet{})
	defer c.ResetQuote()

	firstResult := make(chan error, 1)
	go func() {
		_, err := c.RequestQuote(context.Background(), testInput())
		firstResult <- err
	}()

	select {
	case <-firstEntered:
	case <-time.After(time.Second):
		t.Fatal("first request never reached the backend")
	}

	// A newer request lands while the first is still in flight.
	q, err := c.RequestQuote(context.Background(), testInput())
	require.NoError(t, err)
	assert.Equal(t, "fresh", q.ID)

	close(release)
	select {
	case err := <-firstResult:
		require.ErrorIs(t, err, ErrSuperseded)
	case <-time.After(time.Second):
		t.Fatal("first request never returned")
	}

	// The stale response did not overwrite the live quote.
	assert.Equal(t, "fresh", c.Quote().ID)
	assert.Equal(t, StateQuoted, c.State())
}

func TestExecuteQuoteWithoutQuote(t *testing.T) {
	c := NewController(&fakeService{}, &countingWallet{})
	_, err := c.ExecuteQuote(context.Background())
	require.ErrorIs(t, err, ErrNoQuote)
}

func TestExecuteQuoteExpiredFailsFast(t *testing.T) {
	svc := &fakeService{
		quoteFn: func(ctx context.Context, req types.QuoteRequest) (*types.Quote, error) {
			return liveQuote("q-1", futureExpiry()), nil
		},
	}

	w := &countingWallet{}
	c := NewController(svc, w,
		// The quote's hour-long validity has passed by execution time.
		WithClock(func() time.Time { return time.Now().Add(2 * time.Hour) }),
	)
	defer c.ResetQuote()

	_, err := c.RequestQuote(context.Background(), testInput())
	require.NoError(t, err)

	_, err = c.ExecuteQuote(context.Background())
	require.ErrorIs(t, err, ErrQuoteExpired)
	// The signer was never touched.
	assert.Equal(t, 0, w.calls())
	assert.Empty(t, svc.executed)
}

func TestExecuteQuoteHappyPath(t *testing.T) {
	svc := &fakeService{
		quoteFn: func(ctx context.Context, req types.QuoteRequest) (*types.Quote, error) {
			return liveQuote("q-1", futureExpiry()), nil
		},
		statusFn: func(ctx context.Context, quoteID string) (*types.QuoteStatus, error) {
			return &types.QuoteStatus{QuoteID: quoteID, Status: types.StatusCompleted}, nil
		},
	}

	var completions int
	c := NewController(svc, &countingWallet{},
		WithPolling(time.Millisecond, 10),
		WithOnComplete(func(st *types.QuoteStatus) { completions++ }),
	)
	defer c.ResetQuote()

	_, err := c.RequestQuote(context.Background(), testInput())
	require.NoError(t, err)

	status, err := c.ExecuteQuote(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.StatusCompleted, status.Status)
	assert.Equal(t, StateCompleted, c.State())
	assert.Equal(t, 1, completions)

	// The submitted copy is signed; the live quote stays unsigned.
	require.Len(t, svc.executed, 1)
	assert.Equal(t, "0xsig", svc.executed[0].OriginChainsOperations[0].EVM.UserOp.Signature)
	assert.Empty(t, c.Quote().OriginChainsOperations[0].EVM.UserOp.Signature)
}

func TestExecuteQuoteSubmitFailureKeepsQuote(t *testing.T) {
	svc := &fakeService{
		quoteFn: func(ctx context.Context, req types.QuoteRequest) (*types.Quote, error) {
			return liveQuote("q-1", futureExpiry()), nil
		},
		execErr: errors.New("execution rejected"),
	}

	c := NewController(svc, &countingWallet{})
	defer c.ResetQuote()

	_, err := c.RequestQuote(context.Background(), testInput())
	require.NoError(t, err)

	_, err = c.ExecuteQuote(context.Background())
	require.Error(t, err)

	// Still-valid quote survives for a retry.
	assert.Equal(t, StateQuoted, c.State())
	require.NotNil(t, c.Quote())
	assert.Equal(t, "q-1", c.Quote().ID)
}

func TestResetQuote(t *testing.T) {
	svc := &fakeService{
		quoteFn: func(ctx context.Context, req types.QuoteRequest) (*types.Quote, error) {
			return liveQuote("q-1", futureExpiry()), nil
		},
	}

	c := NewController(svc, &countingWallet{})
	_, err := c.RequestQuote(context.Background(), testInput())
	require.NoError(t, err)

	c.ResetQuote()
	assert.Equal(t, StateIdle, c.State())
	assert.Nil(t, c.Quote())
	assert.Nil(t, c.Status())
	assert.NoError(t, c.Err())
}

func TestToggleDirection(t *testing.T) {
	svc := &fakeService{
		quoteFn: func(ctx context.Context, req types.QuoteRequest) (*types.Quote, error) {
			return liveQuote("q-1", futureExpiry()), nil
		},
	}

	c := NewController(svc, &countingWallet{})
	_, err := c.RequestQuote(context.Background(), testInput())
	require.NoError(t, err)

	in := c.ToggleDirection()
	assert.Equal(t, "ob:eth", in.FromAsset.AggregatedAssetID)
	assert.Equal(t, "ob:usdc", in.ToAsset.AggregatedAssetID)
	assert.Empty(t, in.Amount)
	assert.Equal(t, StateIdle, c.State())
	assert.Nil(t, c.Quote())
}

func TestScheduleRequestDebounces(t *testing.T) {
	svc := &fakeService{
		quoteFn: func(ctx context.Context, req types.QuoteRequest) (*types.Quote, error) {
			return liveQuote("q-1", futureExpiry()), nil
		},
	}

	c := NewController(svc, &countingWallet{}, WithDebounce(10*time.Millisecond))
	defer c.ResetQuote()

	for i := 0; i < 5; i++ {
		c.ScheduleRequest(context.Background(), testInput())
	}

	assert.Eventually(t, func() bool { return svc.requestCount() == 1 },
		time.Second, 5*time.Millisecond)

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 1, svc.requestCount())
}

func TestExpiryRerequestsSameInput(t *testing.T) {
	var mu sync.Mutex
	var issued int
	svc := &fakeService{}
	svc.quoteFn = func(ctx context.Context, req types.QuoteRequest) (*types.Quote, error) {
		mu.Lock()
		defer mu.Unlock()
		issued++
		if issued == 1 {
			// First quote expires almost immediately.
			return liveQuote("q-1", time.Now().Unix()+1), nil
		}
		return liveQuote("q-2", futureExpiry()), nil
	}

	var quoted []string
	var qmu sync.Mutex
	c := NewController(svc, &countingWallet{},
		WithOnQuote(func(q *types.Quote) {
			qmu.Lock()
			quoted = append(quoted, q.ID)
			qmu.Unlock()
		}),
	)
	defer c.ResetQuote()

	_, err := c.RequestQuote(context.Background(), testInput())
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		qmu.Lock()
		defer qmu.Unlock()
		return len(quoted) == 2
	}, 5*time.Second, 50*time.Millisecond, "expiry should trigger a re-request")

	qmu.Lock()
	assert.Equal(t, []string{"q-1", "q-2"}, quoted)
	qmu.Unlock()
	assert.Equal(t, "q-2", c.Quote().ID)
	assert.Equal(t, StateQuoted, c.State())

	// Same parameters were reused.
	svc.mu.Lock()
	assert.Equal(t, "10000000", svc.requests[1].From.Amount)
	svc.mu.Unlock()
}
