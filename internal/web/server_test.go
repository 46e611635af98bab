package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/antonkovalev/tradesim/internal/domain"
)

type stubTrader struct {
	pos *domain.Position
	err error

	gotAccount string
	gotAsset   string
	gotTier    domain.RiskTier
	gotStake   decimal.Decimal
}

func (s *stubTrader) TryOpen(_ context.Context, accountID, assetAddress string, tier domain.RiskTier,
	stake decimal.Decimal, _ domain.EntryFilters) (*domain.Position, error) {
	s.gotAccount = accountID
	s.gotAsset = assetAddress
	s.gotTier = tier
	s.gotStake = stake
	if s.err != nil {
		return nil, s.err
	}
	return s.pos, nil
}

type stubAccounts struct {
	accounts map[string]*domain.Account
	err      error
}

func (s *stubAccounts) GetOrCreate(_ context.Context, id string) (*domain.Account, error) {
	if s.err != nil {
		return nil, s.err
	}
	account, ok := s.accounts[id]
	if !ok {
		account = domain.NewAccount(id)
		s.accounts[id] = account
	}
	return account, nil
}

func (s *stubAccounts) Deposit(_ context.Context, id string, amount decimal.Decimal) (*domain.Account, error) {
	account, err := s.GetOrCreate(context.Background(), id)
	if err != nil {
		return nil, err
	}
	if err := account.Deposit(amount); err != nil {
		return nil, err
	}
	return account, nil
}

func newTestServer(trader *stubTrader, accounts *stubAccounts) *Server {
	return NewServer(":0", trader, accounts, nil, zap.NewNop())
}

func doJSON(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	s := newTestServer(&stubTrader{}, &stubAccounts{accounts: map[string]*domain.Account{}})
	rec := doJSON(t, s.Handler(), http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestGetAccountProvisionsLazily(t *testing.T) {
	accounts := &stubAccounts{accounts: map[string]*domain.Account{}}
	s := newTestServer(&stubTrader{}, accounts)

	rec := doJSON(t, s.Handler(), http.MethodGet, "/api/account/user-1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got domain.Account
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "user-1", got.ID)
	require.Equal(t, "unknown", got.Email)
	require.True(t, got.Funds.IsZero())
}

func TestDeposit(t *testing.T) {
	accounts := &stubAccounts{accounts: map[string]*domain.Account{}}
	s := newTestServer(&stubTrader{}, accounts)

	rec := doJSON(t, s.Handler(), http.MethodPost, "/api/deposit",
		`{"user_id":"user-1","amount":"250.5"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got domain.Account
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.True(t, got.Funds.Equal(decimal.RequireFromString("250.5")))
}

func TestDepositRejectsBadInput(t *testing.T) {
	s := newTestServer(&stubTrader{}, &stubAccounts{accounts: map[string]*domain.Account{}})

	for name, body := range map[string]string{
		"not json":     `{`,
		"missing user": `{"amount":"10"}`,
		"zero amount":  `{"user_id":"u","amount":"0"}`,
		"negative":     `{"user_id":"u","amount":"-5"}`,
	} {
		t.Run(name, func(t *testing.T) {
			rec := doJSON(t, s.Handler(), http.MethodPost, "/api/deposit", body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestTradeOpensPosition(t *testing.T) {
	snap := domain.MarketSnapshot{
		Symbol:         "BTC",
		EntryPrice:     decimal.NewFromInt(100),
		EntryVolume:    decimal.NewFromInt(5000),
		EntryLiquidity: decimal.NewFromInt(20000),
		EntryHolders:   300,
	}
	pos, err := domain.NewPosition("BTC", domain.RiskMedium, decimal.NewFromInt(100), snap, time.Now())
	require.NoError(t, err)

	trader := &stubTrader{pos: pos}
	s := newTestServer(trader, &stubAccounts{accounts: map[string]*domain.Account{}})

	rec := doJSON(t, s.Handler(), http.MethodPost, "/api/trade",
		`{"user_id":"user-1","asset":"BTC","risk_level":"medium","bid_amount":"100"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	require.Equal(t, "user-1", trader.gotAccount)
	require.Equal(t, "BTC", trader.gotAsset)
	require.Equal(t, domain.RiskMedium, trader.gotTier)
	require.True(t, trader.gotStake.Equal(decimal.NewFromInt(100)))

	var got domain.Position
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, pos.ID, got.ID)
	require.Equal(t, domain.StatusOpen, got.Status)
}

func TestTradeErrorMapping(t *testing.T) {
	for name, tc := range map[string]struct {
		err  error
		want int
	}{
		"insufficient funds": {err: domain.ErrInsufficientFunds, want: http.StatusBadRequest},
		"entry conditions":   {err: domain.ErrEntryConditionsNotMet, want: http.StatusBadRequest},
		"snapshot down":      {err: domain.ErrSnapshotUnavailable, want: http.StatusBadGateway},
	} {
		t.Run(name, func(t *testing.T) {
			s := newTestServer(&stubTrader{err: tc.err}, &stubAccounts{accounts: map[string]*domain.Account{}})
			rec := doJSON(t, s.Handler(), http.MethodPost, "/api/trade",
				`{"user_id":"user-1","asset":"BTC","risk_level":"low","bid_amount":"100"}`)
			require.Equal(t, tc.want, rec.Code)

			var resp errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			require.NotEmpty(t, resp.Error)
		})
	}
}

func TestTradeRejectsUnknownTier(t *testing.T) {
	s := newTestServer(&stubTrader{}, &stubAccounts{accounts: map[string]*domain.Account{}})
	rec := doJSON(t, s.Handler(), http.MethodPost, "/api/trade",
		`{"user_id":"user-1","asset":"BTC","risk_level":"extreme","bid_amount":"100"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
