package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const (
	// DatadirKey is the local data directory to store the internal state of daemon
	DatadirKey = "DATADIR"
	// LogLevelKey are the different logging levels. For reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// LogFileKey enables logging to a rotated file under datadir in addition
	// to stdout.
	LogFileKey = "LOG_FILE"
	// HTTPListeningPortKey is the port where the REST interface will listen on
	HTTPListeningPortKey = "HTTP_LISTENING_PORT"
	// OperatorListeningPortKey is the port where the gRPC health service will listen on
	OperatorListeningPortKey = "OPERATOR_LISTENING_PORT"
	// DBTypeKey is used to switch database type between those supported
	DBTypeKey = "DB_TYPE"
	// StatsIntervalKey defines interval for printing basic statistics, 0 disables them
	StatsIntervalKey = "STATS_INTERVAL"

	// MainEngineURLKey is the JSON-RPC endpoint of the engine trading the
	// intermediate currency against the quote currencies.
	MainEngineURLKey      = "MAIN_ENGINE_URL"
	MainEngineUserKey     = "MAIN_ENGINE_USER"
	MainEnginePasswordKey = "MAIN_ENGINE_PASSWORD"
	// HopEngineURLKey is the JSON-RPC endpoint of the engine trading the base
	// currencies against the intermediate one.
	HopEngineURLKey      = "HOP_ENGINE_URL"
	HopEngineUserKey     = "HOP_ENGINE_USER"
	HopEnginePasswordKey = "HOP_ENGINE_PASSWORD"
	// DirectEngineURLKey is the engine serving direct books and single leg
	// orders, if not set the main engine is used.
	DirectEngineURLKey      = "DIRECT_ENGINE_URL"
	DirectEngineUserKey     = "DIRECT_ENGINE_USER"
	DirectEnginePasswordKey = "DIRECT_ENGINE_PASSWORD"
	// EngineRequestTimeoutKey bounds every single call to a trading engine
	EngineRequestTimeoutKey = "ENGINE_REQUEST_TIMEOUT"
	// EngineRateLimitKey is the max number of requests per second to each engine
	EngineRateLimitKey = "ENGINE_RATE_LIMIT"

	// IntermediateCurrencyKey is the privacy asset private orders are routed through
	IntermediateCurrencyKey = "INTERMEDIATE_CURRENCY"
	// SlippageFactorKey is the multiplier applied to the best ask to get the price ceiling of a leg
	SlippageFactorKey = "SLIPPAGE_FACTOR"
	// DexFeePercentKey is the percentage fee charged by engines on every leg
	DexFeePercentKey = "DEX_FEE_PERCENT"
	// NetworkFeeKey is the default flat fee, in quote currency, of every leg
	NetworkFeeKey = "NETWORK_FEE"
	// NetworkFeesKey overrides the network fee per currency, ie. USDT:0.5,XMR:0.0001
	NetworkFeesKey = "NETWORK_FEES"

	// PollIntervalKey is the interval between balance and leg status polls
	PollIntervalKey = "POLL_INTERVAL"
	// StageTimeoutKey bounds the balance polling stages of a private order
	StageTimeoutKey = "STAGE_TIMEOUT"
	// FinalLegTimeoutKey bounds the wait for the final leg to settle
	FinalLegTimeoutKey = "FINAL_LEG_TIMEOUT"
	// LegTrackerIntervalKey is the interval between leg status syncs with engines
	LegTrackerIntervalKey = "LEG_TRACKER_INTERVAL"
	// OrderBookCacheTTLKey is the time order books are served from cache, 0 disables the cache
	OrderBookCacheTTLKey = "ORDERBOOK_CACHE_TTL"

	// WebhooksKey is a list of ACTION|endpoint[|secret] webhooks registered at startup
	WebhooksKey = "WEBHOOKS"
	// WebhookTimeoutKey bounds every webhook request
	WebhookTimeoutKey = "WEBHOOK_TIMEOUT"

	DbLocation      = "db"
	LogLocation     = "log"
	StatsLocation   = "stats"
	LogFile         = "privswapd.log"
	DBTypeBadger    = "badger"
	DBTypeInMemory  = "inmemory"
	envFile         = ".env"
	listSeparator   = ","
	webhookSplitter = "|"
	feeSplitter     = ":"
)

var (
	vip            *viper.Viper
	defaultDatadir = btcutil.AppDataDir("privswapd", false)
)

// Webhook is a webhook registered from the configuration.
type Webhook struct {
	Action   string
	Endpoint string
	Secret   string
}

// InitConfig loads the .env file, if any, and reads the configuration from
// the environment, vars are prefixed by PRIVSWAP_.
func InitConfig() error {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("error while loading %s file: %s", envFile, err)
	}

	vip = viper.New()
	vip.SetEnvPrefix("PRIVSWAP")
	vip.AutomaticEnv()

	vip.SetDefault(DatadirKey, defaultDatadir)
	vip.SetDefault(LogLevelKey, 4)
	vip.SetDefault(LogFileKey, false)
	vip.SetDefault(HTTPListeningPortKey, 8089)
	vip.SetDefault(OperatorListeningPortKey, 9000)
	vip.SetDefault(DBTypeKey, DBTypeBadger)
	vip.SetDefault(StatsIntervalKey, 0)
	vip.SetDefault(EngineRequestTimeoutKey, "30s")
	vip.SetDefault(EngineRateLimitKey, 10)
	vip.SetDefault(IntermediateCurrencyKey, "XMR")
	vip.SetDefault(SlippageFactorKey, "1.02")
	vip.SetDefault(DexFeePercentKey, "0.15")
	vip.SetDefault(NetworkFeeKey, "0")
	vip.SetDefault(NetworkFeesKey, "")
	vip.SetDefault(PollIntervalKey, "1s")
	vip.SetDefault(StageTimeoutKey, "30m")
	vip.SetDefault(FinalLegTimeoutKey, "2h")
	vip.SetDefault(LegTrackerIntervalKey, "2s")
	vip.SetDefault(OrderBookCacheTTLKey, "2s")
	vip.SetDefault(WebhooksKey, "")
	vip.SetDefault(WebhookTimeoutKey, "15s")

	if err := validate(); err != nil {
		return fmt.Errorf("error while validating config: %s", err)
	}

	if err := initDatadir(); err != nil {
		return fmt.Errorf("error while creating datadir: %s", err)
	}

	return nil
}

func GetString(key string) string {
	return vip.GetString(key)
}

func GetInt(key string) int {
	return vip.GetInt(key)
}

func GetDuration(key string) time.Duration {
	return vip.GetDuration(key)
}

func GetBool(key string) bool {
	return vip.GetBool(key)
}

// GetDecimal returns the value of key, validate makes sure it's a valid
// decimal.
func GetDecimal(key string) decimal.Decimal {
	d, _ := decimal.NewFromString(GetString(key))
	return d
}

func GetDatadir() string {
	return GetString(DatadirKey)
}

// GetNetworkFees returns the per currency network fees.
func GetNetworkFees() map[string]decimal.Decimal {
	fees, _ := parseNetworkFees(GetString(NetworkFeesKey))
	return fees
}

// GetWebhooks returns the webhooks to register at startup.
func GetWebhooks() []Webhook {
	hooks, _ := parseWebhooks(GetString(WebhooksKey))
	return hooks
}

func validate() error {
	datadir := GetString(DatadirKey)
	if len(datadir) <= 0 {
		return fmt.Errorf("missing datadir")
	}

	if GetString(MainEngineURLKey) == "" {
		return fmt.Errorf("missing main engine url")
	}
	if GetString(HopEngineURLKey) == "" {
		return fmt.Errorf("missing intermediate-hop engine url")
	}
	if GetString(MainEngineURLKey) == GetString(HopEngineURLKey) {
		return fmt.Errorf("main and intermediate-hop engines must differ")
	}

	if dbType := GetString(DBTypeKey); dbType != DBTypeBadger && dbType != DBTypeInMemory {
		return fmt.Errorf("unsupported db type %s", dbType)
	}

	for _, key := range []string{SlippageFactorKey, DexFeePercentKey, NetworkFeeKey} {
		if _, err := decimal.NewFromString(GetString(key)); err != nil {
			return fmt.Errorf("%s must be a decimal number", key)
		}
	}
	if GetDecimal(SlippageFactorKey).LessThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("%s must be at least 1", SlippageFactorKey)
	}
	if _, err := parseNetworkFees(GetString(NetworkFeesKey)); err != nil {
		return err
	}
	if _, err := parseWebhooks(GetString(WebhooksKey)); err != nil {
		return err
	}

	for _, key := range []string{
		EngineRequestTimeoutKey, PollIntervalKey, StageTimeoutKey,
		FinalLegTimeoutKey, LegTrackerIntervalKey, WebhookTimeoutKey,
	} {
		if GetDuration(key) <= 0 {
			return fmt.Errorf("%s must be a positive duration", key)
		}
	}
	if GetDuration(OrderBookCacheTTLKey) < 0 {
		return fmt.Errorf("%s must not be negative", OrderBookCacheTTLKey)
	}
	return nil
}

func initDatadir() error {
	datadir := GetDatadir()
	if err := makeDirectoryIfNotExists(filepath.Join(datadir, DbLocation)); err != nil {
		return err
	}
	if GetBool(LogFileKey) {
		if err := makeDirectoryIfNotExists(filepath.Join(datadir, LogLocation)); err != nil {
			return err
		}
	}
	if GetInt(StatsIntervalKey) > 0 {
		if err := makeDirectoryIfNotExists(filepath.Join(datadir, StatsLocation)); err != nil {
			return err
		}
	}
	return nil
}

func parseNetworkFees(value string) (map[string]decimal.Decimal, error) {
	fees := make(map[string]decimal.Decimal)
	for _, entry := range splitList(value) {
		parts := strings.Split(entry, feeSplitter)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid network fee %q, must be CURRENCY:fee", entry)
		}
		fee, err := decimal.NewFromString(strings.TrimSpace(parts[1]))
		if err != nil || fee.IsNegative() {
			return nil, fmt.Errorf("invalid network fee %q", entry)
		}
		fees[strings.ToUpper(strings.TrimSpace(parts[0]))] = fee
	}
	return fees, nil
}

func parseWebhooks(value string) ([]Webhook, error) {
	hooks := make([]Webhook, 0)
	for _, entry := range splitList(value) {
		parts := strings.Split(entry, webhookSplitter)
		if len(parts) < 2 || len(parts) > 3 {
			return nil, fmt.Errorf(
				"invalid webhook %q, must be ACTION|endpoint[|secret]", entry,
			)
		}
		hook := Webhook{Action: parts[0], Endpoint: parts[1]}
		if len(parts) == 3 {
			hook.Secret = parts[2]
		}
		hooks = append(hooks, hook)
	}
	return hooks, nil
}

func splitList(value string) []string {
	list := make([]string, 0)
	for _, entry := range strings.Split(value, listSeparator) {
		if entry = strings.TrimSpace(entry); entry != "" {
			list = append(list, entry)
		}
	}
	return list
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}
