package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/virmuran/ProcessDesignPro/internal/balance"
	"github.com/virmuran/ProcessDesignPro/internal/store"
)

// EnvPrefix prefixes every environment override, e.g. PROCDESIGN_DATABASE_PATH.
const EnvPrefix = "PROCDESIGN"

// DatabaseConfig holds project database configuration
type DatabaseConfig struct {
	Path          string `mapstructure:"path"`
	BusyTimeoutMS int    `mapstructure:"busy_timeout_ms"`
	OpenRetries   uint64 `mapstructure:"open_retries"`
}

// BalanceConfig holds the per-unit calculator constants
type BalanceConfig struct {
	MassTolerancePercent float64 `mapstructure:"mass_tolerance_percent"`
	HeatLossFraction     float64 `mapstructure:"heat_loss_fraction"`
	ReferenceTemperature float64 `mapstructure:"reference_temperature"` // °C
	HeatAbsTolerance     float64 `mapstructure:"heat_abs_tolerance"`    // kW
}

// PinchConfig holds pinch analysis configuration
type PinchConfig struct {
	DeltaTMin float64 `mapstructure:"delta_t_min"`
}

// EconomicsConfig holds heat integration prices
type EconomicsConfig struct {
	HotUtilityCost     float64 `mapstructure:"hot_utility_cost"`      // per GJ
	ColdUtilityCost    float64 `mapstructure:"cold_utility_cost"`     // per GJ
	CapitalCostPerArea float64 `mapstructure:"capital_cost_per_area"` // per m²
	AnnualHours        float64 `mapstructure:"annual_hours"`
}

// WaterConfig holds water reuse prices and limits
type WaterConfig struct {
	CostPerM3                float64            `mapstructure:"cost_per_m3"`
	TreatmentCostPerM3       float64            `mapstructure:"treatment_cost_per_m3"`
	InvestmentPerOpportunity float64            `mapstructure:"investment_per_opportunity"`
	ReuseLimits              map[string]float64 `mapstructure:"reuse_limits"` // contaminant → max mg/L
}

// CalcCacheConfig toggles the calculation result cache
type CalcCacheConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Config holds the configuration of the procdesign command
type Config struct {
	Debug     bool            `mapstructure:"debug"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Balance   BalanceConfig   `mapstructure:"balance"`
	Pinch     PinchConfig     `mapstructure:"pinch"`
	Economics EconomicsConfig `mapstructure:"economics"`
	Water     WaterConfig     `mapstructure:"water"`
	CalcCache CalcCacheConfig `mapstructure:"calc_cache"`
}

// Load reads configuration from an optional YAML file, .env overlays under
// envPath and PROCDESIGN_ environment variables, in increasing precedence.
// A missing config.yaml in the search paths is not an error; an explicitly
// named configFile that cannot be read is.
func Load(configFile string, envPath string) (*Config, error) {
	v := configureViper("procdesign", configFile, envPath)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when nothing is configured.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults are static; decoding them cannot fail.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	bp := balance.DefaultParams()
	ep := balance.DefaultEconomicParams()
	wp := balance.DefaultWaterParams()
	so := store.DefaultOptions()

	v.SetDefault("debug", false)
	v.SetDefault("database.path", "project.db")
	v.SetDefault("database.busy_timeout_ms", int(so.BusyTimeout/time.Millisecond))
	v.SetDefault("database.open_retries", so.OpenRetries)
	v.SetDefault("balance.mass_tolerance_percent", bp.MassTolerance)
	v.SetDefault("balance.heat_loss_fraction", bp.HeatLossFraction)
	v.SetDefault("balance.reference_temperature", bp.ReferenceTemperature)
	v.SetDefault("balance.heat_abs_tolerance", bp.HeatAbsTolerance)
	v.SetDefault("pinch.delta_t_min", balance.DefaultDeltaTMin)
	v.SetDefault("economics.hot_utility_cost", ep.HotUtilityCost)
	v.SetDefault("economics.cold_utility_cost", ep.ColdUtilityCost)
	v.SetDefault("economics.capital_cost_per_area", ep.CapitalCostPerArea)
	v.SetDefault("economics.annual_hours", ep.AnnualHours)
	v.SetDefault("water.cost_per_m3", wp.WaterCost)
	v.SetDefault("water.treatment_cost_per_m3", wp.TreatmentCost)
	v.SetDefault("water.investment_per_opportunity", wp.InvestmentPerOpportunity)
	limits := make(map[string]any, len(wp.ReuseLimits))
	for name, limit := range wp.ReuseLimits {
		limits[strings.ToLower(name)] = limit
	}
	v.SetDefault("water.reuse_limits", limits)
	v.SetDefault("calc_cache.enabled", true)
}

// Validate rejects values no calculator can work with.
func (c *Config) Validate() error {
	switch {
	case c.Database.Path == "":
		return errors.New("database.path is required")
	case c.Database.BusyTimeoutMS < 0:
		return fmt.Errorf("database.busy_timeout_ms must be >= 0, got %d", c.Database.BusyTimeoutMS)
	case c.Balance.MassTolerancePercent < 0:
		return fmt.Errorf("balance.mass_tolerance_percent must be >= 0, got %g", c.Balance.MassTolerancePercent)
	case c.Balance.HeatLossFraction < 0 || c.Balance.HeatLossFraction >= 1:
		return fmt.Errorf("balance.heat_loss_fraction must be in [0, 1), got %g", c.Balance.HeatLossFraction)
	case c.Balance.HeatAbsTolerance < 0:
		return fmt.Errorf("balance.heat_abs_tolerance must be >= 0, got %g", c.Balance.HeatAbsTolerance)
	case c.Pinch.DeltaTMin < 0:
		return fmt.Errorf("pinch.delta_t_min must be >= 0, got %g", c.Pinch.DeltaTMin)
	case c.Economics.AnnualHours <= 0:
		return fmt.Errorf("economics.annual_hours must be > 0, got %g", c.Economics.AnnualHours)
	}
	for name, limit := range c.Water.ReuseLimits {
		if limit < 0 {
			return fmt.Errorf("water.reuse_limits.%s must be >= 0, got %g", name, limit)
		}
	}
	return nil
}

// BalanceParams returns the calculator constants.
func (c *Config) BalanceParams() balance.Params {
	return balance.Params{
		MassTolerance:        c.Balance.MassTolerancePercent,
		HeatLossFraction:     c.Balance.HeatLossFraction,
		ReferenceTemperature: c.Balance.ReferenceTemperature,
		HeatAbsTolerance:     c.Balance.HeatAbsTolerance,
	}
}

// EconomicParams returns the heat integration prices.
func (c *Config) EconomicParams() balance.EconomicParams {
	return balance.EconomicParams{
		HotUtilityCost:     c.Economics.HotUtilityCost,
		ColdUtilityCost:    c.Economics.ColdUtilityCost,
		CapitalCostPerArea: c.Economics.CapitalCostPerArea,
		AnnualHours:        c.Economics.AnnualHours,
	}
}

// WaterParams returns the water prices and reuse limits. Viper folds keys to
// lower case, so contaminant names are restored to their upper-case form.
func (c *Config) WaterParams() balance.WaterParams {
	limits := make(map[string]float64, len(c.Water.ReuseLimits))
	for name, limit := range c.Water.ReuseLimits {
		limits[strings.ToUpper(name)] = limit
	}
	return balance.WaterParams{
		WaterCost:                c.Water.CostPerM3,
		TreatmentCost:            c.Water.TreatmentCostPerM3,
		InvestmentPerOpportunity: c.Water.InvestmentPerOpportunity,
		ReuseLimits:              limits,
	}
}

// StoreOptions returns the options for opening the project database.
func (c *Config) StoreOptions() store.Options {
	return store.Options{
		BusyTimeout: time.Duration(c.Database.BusyTimeoutMS) * time.Millisecond,
		OpenRetries: c.Database.OpenRetries,
	}
}

func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	loadEnv(envPath, service)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		v.AddConfigPath("config/")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindAllEnvVars(v)
	return v
}

// keys lists every scalar key so Unmarshal sees environment overrides.
// water.reuse_limits is a map and is configured through the file only.
var keys = []string{
	"debug",
	// Database
	"database.path",
	"database.busy_timeout_ms",
	"database.open_retries",
	// Balance
	"balance.mass_tolerance_percent",
	"balance.heat_loss_fraction",
	"balance.reference_temperature",
	"balance.heat_abs_tolerance",
	// Pinch
	"pinch.delta_t_min",
	// Economics
	"economics.hot_utility_cost",
	"economics.cold_utility_cost",
	"economics.capital_cost_per_area",
	"economics.annual_hours",
	// Water
	"water.cost_per_m3",
	"water.treatment_cost_per_m3",
	"water.investment_per_opportunity",
	// Cache
	"calc_cache.enabled",
}

func bindAllEnvVars(v *viper.Viper) {
	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

func loadEnv(envPath string, service string) {
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		// Overload lets later files override earlier ones
		_ = godotenv.Overload(filepath.Join(envPath, envFile))
	}
}
