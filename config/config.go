// Package config loads the simulator configuration from a yaml file or
// command line flags.
package config

import (
	"flag"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/antonkovalev/tradesim/internal/domain"
)

// Config is the fully parsed runtime configuration.
type Config struct {
	ListenAddr string
	// TLSDomains enables automatic ACME certificates when non-empty.
	TLSDomains  []string
	TLSCacheDir string

	// Provider selects the market data source: fallback, binance, bybit
	// or hyperliquid.
	Provider string
	// QuoteAsset appended to asset symbols when querying exchanges.
	QuoteAsset string
	// FallbackBasePrice center of the synthetic price band.
	FallbackBasePrice decimal.Decimal

	SweepInterval time.Duration
	FetchTimeout  time.Duration
	SweepWorkers  int

	WALDir string

	Tiers domain.TierPolicies
}

// ConfigTmp is the yaml shape of Config. The setup wizard marshals it when
// generating a config file.
type ConfigTmp struct {
	ListenAddr  string   `yaml:"listen_addr,omitempty"`
	TLSDomains  []string `yaml:"tls_domains,omitempty"`
	TLSCacheDir string   `yaml:"tls_cache_dir,omitempty"`

	Provider          string `yaml:"provider,omitempty"`
	QuoteAsset        string `yaml:"quote_asset,omitempty"`
	FallbackBasePrice string `yaml:"fallback_base_price,omitempty"`

	SweepInterval time.Duration `yaml:"sweep_interval,omitempty"`
	FetchTimeout  time.Duration `yaml:"fetch_timeout,omitempty"`
	SweepWorkers  int           `yaml:"sweep_workers,omitempty"`

	WALDir string `yaml:"wal_dir,omitempty"`

	Tiers map[string]TierTmp `yaml:"tiers,omitempty"`
}

// TierTmp overrides a single tier's thresholds in yaml. Empty fields keep
// the defaults.
type TierTmp struct {
	ProfitTargetPct  string        `yaml:"profit_target_pct,omitempty"`
	StopLossPct      string        `yaml:"stop_loss_pct,omitempty"`
	VolumeSpikePct   string        `yaml:"volume_spike_pct,omitempty"`
	LiquidityDropPct string        `yaml:"liquidity_drop_pct,omitempty"`
	MinHold          time.Duration `yaml:"min_hold,omitempty"`
}

// Default returns the configuration used when nothing is provided.
func Default() Config {
	return Config{
		ListenAddr:        ":8080",
		Provider:          "fallback",
		QuoteAsset:        "USDT",
		FallbackBasePrice: decimal.NewFromInt(100),
		SweepInterval:     10 * time.Second,
		FetchTimeout:      5 * time.Second,
		SweepWorkers:      8,
		WALDir:            "wal",
		TLSCacheDir:       "cert-cache",
		Tiers:             domain.DefaultTierPolicies(),
	}
}

// Get reads configuration from the --config yaml file when given, otherwise
// from the remaining command line flags.
func Get() (Config, error) {
	configPath := flag.String("config", "", "path to yaml config")
	listen := flag.String("listen", ":8080", "address the api server listens on")
	provider := flag.String("provider", "fallback", "market data provider: fallback, binance, bybit or hyperliquid")
	walDir := flag.String("waldir", "wal", "directory for the account write-ahead log")
	sweepInterval := flag.Duration("sweepinterval", 10*time.Second, "interval between sweep passes")
	flag.Parse()

	if *configPath != "" {
		return fromYaml(*configPath)
	}

	cfg := Default()
	cfg.ListenAddr = *listen
	cfg.Provider = *provider
	cfg.WALDir = *walDir
	cfg.SweepInterval = *sweepInterval
	return cfg, cfg.validate()
}

func fromYaml(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "failed to read config %s", path)
	}
	return Parse(raw)
}

// Parse decodes yaml config bytes, filling omitted fields with defaults.
func Parse(raw []byte) (Config, error) {
	var tmp ConfigTmp
	if err := yaml.Unmarshal(raw, &tmp); err != nil {
		return Config{}, errors.Wrap(err, "failed to parse yaml config")
	}

	cfg := Default()
	if tmp.ListenAddr != "" {
		cfg.ListenAddr = tmp.ListenAddr
	}
	if len(tmp.TLSDomains) > 0 {
		cfg.TLSDomains = tmp.TLSDomains
	}
	if tmp.TLSCacheDir != "" {
		cfg.TLSCacheDir = tmp.TLSCacheDir
	}
	if tmp.Provider != "" {
		cfg.Provider = tmp.Provider
	}
	if tmp.QuoteAsset != "" {
		cfg.QuoteAsset = tmp.QuoteAsset
	}
	if tmp.FallbackBasePrice != "" {
		price, err := decimal.NewFromString(tmp.FallbackBasePrice)
		if err != nil {
			return Config{}, errors.Wrap(err, "incorrect 'fallback_base_price' param in yaml config")
		}
		cfg.FallbackBasePrice = price
	}
	if tmp.SweepInterval > 0 {
		cfg.SweepInterval = tmp.SweepInterval
	}
	if tmp.FetchTimeout > 0 {
		cfg.FetchTimeout = tmp.FetchTimeout
	}
	if tmp.SweepWorkers > 0 {
		cfg.SweepWorkers = tmp.SweepWorkers
	}
	if tmp.WALDir != "" {
		cfg.WALDir = tmp.WALDir
	}

	for name, override := range tmp.Tiers {
		tier, err := domain.ParseRiskTier(name)
		if err != nil {
			return Config{}, errors.Wrapf(err, "incorrect tier name %q in yaml config", name)
		}
		policy := cfg.Tiers[tier]
		if err := applyTierOverride(&policy, override); err != nil {
			return Config{}, errors.Wrapf(err, "incorrect tier %q in yaml config", name)
		}
		cfg.Tiers[tier] = policy
	}

	return cfg, cfg.validate()
}

func applyTierOverride(policy *domain.TierPolicy, override TierTmp) error {
	set := func(dst *decimal.Decimal, raw, field string) error {
		if raw == "" {
			return nil
		}
		value, err := decimal.NewFromString(raw)
		if err != nil {
			return errors.Wrapf(err, "incorrect %q param", field)
		}
		*dst = value
		return nil
	}
	if err := set(&policy.ProfitTargetPct, override.ProfitTargetPct, "profit_target_pct"); err != nil {
		return err
	}
	if err := set(&policy.StopLossPct, override.StopLossPct, "stop_loss_pct"); err != nil {
		return err
	}
	if err := set(&policy.VolumeSpikePct, override.VolumeSpikePct, "volume_spike_pct"); err != nil {
		return err
	}
	if err := set(&policy.LiquidityDropPct, override.LiquidityDropPct, "liquidity_drop_pct"); err != nil {
		return err
	}
	if override.MinHold > 0 {
		policy.MinHold = override.MinHold
	}
	return nil
}

func (c Config) validate() error {
	switch c.Provider {
	case "fallback", "binance", "bybit", "hyperliquid":
	default:
		return errors.Errorf("unknown provider %q", c.Provider)
	}
	if c.ListenAddr == "" {
		return errors.New("listen address must not be empty")
	}
	if c.SweepInterval <= 0 {
		return errors.New("sweep interval must be positive")
	}
	if c.FetchTimeout <= 0 {
		return errors.New("fetch timeout must be positive")
	}
	if c.SweepWorkers <= 0 {
		return errors.New("sweep workers must be positive")
	}
	if !c.FallbackBasePrice.GreaterThan(decimal.Zero) {
		return errors.New("fallback base price must be positive")
	}
	return c.Tiers.Validate()
}
