package clients

import (
	"context"
	"crypto/ecdsa"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	hyperliquid "github.com/sonirico/go-hyperliquid"
)

// HyperliquidClient wraps the exchange handle the SDK hangs the Info API off.
type HyperliquidClient struct {
	exchange    *hyperliquid.Exchange
	accountAddr string
}

// NewHyperliquidClient derives the account address from the
// HYPERLIQUID_PRIVATE_KEY hex key and builds the exchange client against
// baseURL (the SDK's mainnet URL when empty).
func NewHyperliquidClient(ctx context.Context, baseURL string) (*HyperliquidClient, error) {
	key := strings.TrimPrefix(strings.TrimPrefix(os.Getenv("HYPERLIQUID_PRIVATE_KEY"), "0x"), "0X")
	if key == "" {
		return nil, errors.New("HYPERLIQUID_PRIVATE_KEY is not set")
	}

	privateKey, err := crypto.HexToECDSA(key)
	if err != nil {
		return nil, errors.Wrap(err, "invalid hyperliquid private key")
	}

	pub, ok := privateKey.Public().(*ecdsa.PublicKey)
	if !ok {
		return nil, errors.New("failed to cast public key to ECDSA")
	}
	accountAddr := crypto.PubkeyToAddress(*pub).Hex()

	ex := hyperliquid.NewExchange(ctx, privateKey, baseURL, nil, "", accountAddr, nil)
	return &HyperliquidClient{exchange: ex, accountAddr: accountAddr}, nil
}

// Info returns the read-only market data API.
func (c *HyperliquidClient) Info() *hyperliquid.Info { return c.exchange.Info() }

// AccountAddress returns the address derived from the private key.
func (c *HyperliquidClient) AccountAddress() string { return c.accountAddr }
