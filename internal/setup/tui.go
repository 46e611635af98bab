// Package setup implements the interactive configuration wizard.
package setup

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/antonkovalev/tradesim/config"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1).
			MarginBottom(0)
)

// RunTUI launches the terminal configuration wizard and writes the result
// to config.gen.yaml.
func RunTUI() error {
	var (
		provider      string
		listenAddr    string
		quoteAsset    string
		basePriceStr  string
		sweepInterval string
		fetchTimeout  string
		walDir        string
		confirm       bool
	)

	// defaults
	listenAddr = ":8080"
	quoteAsset = "USDT"
	basePriceStr = "100"
	sweepInterval = "10s"
	fetchTimeout = "5s"
	walDir = "wal"

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("TRADESIM CONFIG WIZARD"))
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Let's get your simulator configured.\n"))

	fmt.Println(stepStyle.Render("STEP 1: MARKET DATA"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Choose your market data provider").
				Options(
					huh.NewOption("Synthetic prices (no network)", "fallback"),
					huh.NewOption("Binance", "binance"),
					huh.NewOption("Bybit", "bybit"),
					huh.NewOption("Hyperliquid", "hyperliquid"),
				).
				Value(&provider),
		),
	).Run()
	if err != nil {
		return err
	}

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("TRADESIM CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 2: PROVIDER SETTINGS"))
	providerFields := []huh.Field{}
	if provider == "fallback" {
		providerFields = append(providerFields, huh.NewInput().
			Title("Base Price").
			Description("Center of the synthetic price band").
			Value(&basePriceStr).
			Validate(validatePositiveDecimal))
	} else {
		providerFields = append(providerFields, huh.NewInput().
			Title("Quote Asset").
			Description("Appended to asset symbols when querying the exchange (e.g. USDT)").
			Value(&quoteAsset))
	}
	if err := huh.NewForm(huh.NewGroup(providerFields...)).Run(); err != nil {
		return err
	}

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("TRADESIM CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 3: TIMING"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Sweep Interval").
				Description("How often open positions are re-evaluated (e.g. 10s, 1m)").
				Value(&sweepInterval).
				Validate(validateDuration),
			huh.NewInput().
				Title("Fetch Timeout").
				Description("Per-asset market data timeout (e.g. 5s)").
				Value(&fetchTimeout).
				Validate(validateDuration),
		),
	).Run()
	if err != nil {
		return err
	}

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("TRADESIM CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 4: SERVER"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Listen Address").
				Description("Address the API server binds to (e.g. :8080)").
				Value(&listenAddr).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("listen address cannot be empty")
					}
					return nil
				}),
			huh.NewInput().
				Title("WAL Directory").
				Description("Where account state is persisted").
				Value(&walDir),
		),
	).Run()
	if err != nil {
		return err
	}

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("TRADESIM CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("FINAL CONFIRMATION"))

	summary := fmt.Sprintf(
		"Provider: %s\nListen: %s\nSweep Interval: %s\nFetch Timeout: %s\nWAL Dir: %s\n",
		provider, listenAddr, sweepInterval, fetchTimeout, walDir,
	)
	fmt.Println(lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1).Render(summary))

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save Configuration?").
				Affirmative("Yes, save and start").
				Negative("No, exit").
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return err
	}
	if !confirm {
		return fmt.Errorf("setup cancelled by user")
	}

	interval, _ := time.ParseDuration(sweepInterval)
	timeout, _ := time.ParseDuration(fetchTimeout)

	cfgTmp := config.ConfigTmp{
		ListenAddr:    listenAddr,
		Provider:      provider,
		SweepInterval: interval,
		FetchTimeout:  timeout,
		WALDir:        walDir,
	}
	if provider == "fallback" {
		cfgTmp.FallbackBasePrice = basePriceStr
	} else {
		cfgTmp.QuoteAsset = quoteAsset
	}

	data, err := yaml.Marshal(cfgTmp)
	if err != nil {
		return fmt.Errorf("failed to generate yaml: %w", err)
	}

	filename := "config.gen.yaml"
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to save config file: %w", err)
	}

	fmt.Println(lipgloss.NewStyle().Foreground(special).Render(fmt.Sprintf("\n✓ Configuration saved to %s\nStarting simulator...", filename)))
	time.Sleep(1500 * time.Millisecond)
	return nil
}

func validateDuration(s string) error {
	_, err := time.ParseDuration(s)
	return err
}

func validatePositiveDecimal(s string) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("must be a valid number")
	}
	if d.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("must be positive")
	}
	return nil
}
