package config

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Platform names accepted by the pricer factory.
const (
	PlatformStatic      = "static"
	PlatformBinance     = "binance"
	PlatformBybit       = "bybit"
	PlatformHyperliquid = "hyperliquid"
)

// Config holds all application configuration.
type Config struct {
	// Platform selects the price source: static, binance, bybit or hyperliquid.
	Platform string
	// InitialDeposit funds the account at startup.
	InitialDeposit decimal.Decimal
	// ListenAddr is the web UI listen address.
	ListenAddr string
	// Prices overrides the static price table (static platform only).
	Prices map[string]decimal.Decimal
	// TLSDomains enables automatic TLS for the given domains when non-empty.
	TLSDomains []string
	// TLSCacheDir is where issued certificates are cached.
	TLSCacheDir string
	// Interactive runs the terminal session instead of the web server.
	Interactive bool
}

type configTmp struct {
	Platform       string            `yaml:"platform"`
	InitialDeposit string            `yaml:"initial_deposit"`
	ListenAddr     string            `yaml:"listen_addr"`
	Prices         map[string]string `yaml:"prices,omitempty"`
	TLSDomains     []string          `yaml:"tls_domains,omitempty"`
	TLSCacheDir    string            `yaml:"tls_cache_dir,omitempty"`
}

// Get loads configuration from a yaml file when --config is provided,
// otherwise from the remaining command-line flags.
func Get() (Config, error) {
	configPath := flag.String("config", "", "path to yaml config")
	platform := flag.String("platform", PlatformStatic, "price source: static, binance, bybit or hyperliquid")
	deposit := flag.String("deposit", "1000", "initial deposit")
	listen := flag.String("listen", ":8080", "web UI listen address")
	interactive := flag.Bool("interactive", false, "run the interactive terminal session instead of the web server")
	flag.Parse()

	if *configPath != "" {
		cfg, err := getYaml(*configPath)
		if err != nil {
			return Config{}, err
		}
		cfg.Interactive = *interactive
		return cfg, nil
	}

	initialDeposit, err := decimal.NewFromString(*deposit)
	if err != nil {
		return Config{}, fmt.Errorf("invalid --deposit provided, --deposit=%s", *deposit)
	}

	cfg := Config{
		Platform:       *platform,
		InitialDeposit: initialDeposit,
		ListenAddr:     *listen,
		Interactive:    *interactive,
	}
	return cfg, cfg.validate()
}

func getYaml(path string) (Config, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var tmp configTmp
	if err := yaml.Unmarshal(f, &tmp); err != nil {
		return Config{}, err
	}
	return fromTmp(tmp)
}

func fromTmp(tmp configTmp) (Config, error) {
	cfg := Config{
		Platform:    tmp.Platform,
		ListenAddr:  tmp.ListenAddr,
		TLSDomains:  tmp.TLSDomains,
		TLSCacheDir: tmp.TLSCacheDir,
	}
	if cfg.Platform == "" {
		cfg.Platform = PlatformStatic
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}

	if tmp.InitialDeposit == "" {
		tmp.InitialDeposit = "1000"
	}
	initialDeposit, err := decimal.NewFromString(tmp.InitialDeposit)
	if err != nil {
		return Config{}, fmt.Errorf("invalid initial_deposit %q: %w", tmp.InitialDeposit, err)
	}
	cfg.InitialDeposit = initialDeposit

	if len(tmp.Prices) > 0 {
		cfg.Prices = make(map[string]decimal.Decimal, len(tmp.Prices))
		for symbol, raw := range tmp.Prices {
			price, err := decimal.NewFromString(raw)
			if err != nil {
				return Config{}, fmt.Errorf("invalid price for %s: %q", symbol, raw)
			}
			cfg.Prices[strings.ToUpper(strings.TrimSpace(symbol))] = price
		}
	}

	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.Platform {
	case PlatformStatic, PlatformBinance, PlatformBybit, PlatformHyperliquid:
	default:
		return fmt.Errorf("unsupported platform %q", c.Platform)
	}
	if c.InitialDeposit.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("initial_deposit must be positive, got %s", c.InitialDeposit)
	}
	if len(c.Prices) > 0 && c.Platform != PlatformStatic {
		return fmt.Errorf("prices table is only valid for the static platform")
	}
	for symbol, price := range c.Prices {
		if price.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("price for %s must be positive, got %s", symbol, price)
		}
	}
	return nil
}
