package clients

import (
	"os"

	"github.com/hirokisan/bybit/v2"
)

// NewBybitClient creates a Bybit client from BYBIT_API_KEY and
// BYBIT_API_SECRET. Spot tickers are public and work unauthenticated.
func NewBybitClient() *bybit.Client {
	return bybit.NewClient().WithAuth(os.Getenv("BYBIT_API_KEY"), os.Getenv("BYBIT_API_SECRET"))
}
