package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) string {
	datadir := t.TempDir()
	t.Setenv("PRIVSWAP_DATADIR", datadir)
	t.Setenv("PRIVSWAP_MAIN_ENGINE_URL", "http://localhost:7783")
	t.Setenv("PRIVSWAP_HOP_ENGINE_URL", "http://localhost:7784")
	return datadir
}

func TestInitConfig(t *testing.T) {
	datadir := setBaseEnv(t)
	t.Setenv("PRIVSWAP_NETWORK_FEES", "usdt:0.5, XMR:0.0001")
	t.Setenv("PRIVSWAP_WEBHOOKS", "*|http://localhost/all,PRIVATE_ORDER_FAILED|http://localhost/failed|secret")
	t.Setenv("PRIVSWAP_STAGE_TIMEOUT", "10m")
	t.Setenv("PRIVSWAP_LOG_FILE", "true")

	require.NoError(t, InitConfig())

	require.Equal(t, datadir, GetDatadir())
	require.DirExists(t, filepath.Join(datadir, DbLocation))
	require.DirExists(t, filepath.Join(datadir, LogLocation))
	require.Equal(t, "XMR", GetString(IntermediateCurrencyKey))
	require.Equal(t, DBTypeBadger, GetString(DBTypeKey))
	require.Equal(t, 10*time.Minute, GetDuration(StageTimeoutKey))
	require.Equal(t, 2*time.Hour, GetDuration(FinalLegTimeoutKey))
	require.True(t, GetDecimal(SlippageFactorKey).Equal(decimal.RequireFromString("1.02")))

	fees := GetNetworkFees()
	require.Len(t, fees, 2)
	require.Equal(t, "0.5", fees["USDT"].String())
	require.Equal(t, "0.0001", fees["XMR"].String())

	require.Equal(t, []Webhook{
		{Action: "*", Endpoint: "http://localhost/all"},
		{Action: "PRIVATE_ORDER_FAILED", Endpoint: "http://localhost/failed", Secret: "secret"},
	}, GetWebhooks())
}

func TestInitConfigFailure(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing main engine", map[string]string{"PRIVSWAP_MAIN_ENGINE_URL": ""}},
		{"same engines", map[string]string{"PRIVSWAP_HOP_ENGINE_URL": "http://localhost:7783"}},
		{"unknown db", map[string]string{"PRIVSWAP_DB_TYPE": "pg"}},
		{"low slippage", map[string]string{"PRIVSWAP_SLIPPAGE_FACTOR": "0.9"}},
		{"invalid fee", map[string]string{"PRIVSWAP_DEX_FEE_PERCENT": "much"}},
		{"invalid network fees", map[string]string{"PRIVSWAP_NETWORK_FEES": "USDT=1"}},
		{"negative network fee", map[string]string{"PRIVSWAP_NETWORK_FEES": "USDT:-1"}},
		{"invalid webhook", map[string]string{"PRIVSWAP_WEBHOOKS": "http://localhost/hook"}},
		{"zero timeout", map[string]string{"PRIVSWAP_STAGE_TIMEOUT": "0s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setBaseEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			require.Error(t, InitConfig())
		})
	}
}
