// Package clients builds the exchange SDK clients used by the market data
// providers. API credentials come from the environment; public market data
// works without them.
package clients

import (
	"os"

	"github.com/adshao/go-binance/v2"
)

// NewBinanceClient creates a Binance client from BINANCE_API_KEY and
// BINANCE_API_SECRET. Empty credentials still serve public endpoints.
func NewBinanceClient() *binance.Client {
	return binance.NewClient(os.Getenv("BINANCE_API_KEY"), os.Getenv("BINANCE_API_SECRET"))
}
