// The Licensed Work is (c) 2022 Sygma
// SPDX-License-Identifier: LGPL-3.0-only

package config

import (
	"fmt"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/ethereum/go-ethereum/common"
	"github.com/imdario/mergo"
	"github.com/spf13/viper"

	"github.com/sprintertech/sprinter-bridge/auth"
	"github.com/sprintertech/sprinter-bridge/fees"
)

const configEnvName = "BRIDGE_CONFIG"

type RawBridgeConfig struct {
	Id                        string `mapstructure:"id" default:"bridge"`
	LocalChainId              uint64 `mapstructure:"localChainId"`
	ApiAddr                   string `mapstructure:"apiAddr" default:":8080"`
	HealthPort                uint16 `mapstructure:"healthPort" default:"9001"`
	LogLevel                  string `mapstructure:"logLevel" default:"info"`
	Env                       string `mapstructure:"env" default:"dev"`
	MaxPayloadSize            int    `mapstructure:"maxPayloadSize" default:"65536"`
	OpenTelemetryCollectorURL string `mapstructure:"opentelemetryCollectorURL"`
}

type RawChainConfig struct {
	Id       uint64   `mapstructure:"id"`
	Name     string   `mapstructure:"name"`
	Relayers []string `mapstructure:"relayers"`
}

type RawAssetConfig struct {
	Address           string `mapstructure:"address"`
	Symbol            string `mapstructure:"symbol"`
	Wrapped           bool   `mapstructure:"wrapped"`
	NativeChainId     uint64 `mapstructure:"nativeChainId"`
	MaxTransferAmount string `mapstructure:"maxTransferAmount"`
	DailyLimit        string `mapstructure:"dailyLimit"`
}

type RawUserLimitConfig struct {
	Address                string `mapstructure:"address"`
	Enabled                bool   `mapstructure:"enabled" default:"true"`
	MaxPerTransfer         string `mapstructure:"maxPerTransfer"`
	DailyLimit             string `mapstructure:"dailyLimit"`
	WeeklyLimit            string `mapstructure:"weeklyLimit"`
	LargeTransferThreshold string `mapstructure:"largeTransferThreshold"`
	CooldownSeconds        uint64 `mapstructure:"cooldownSeconds"`
}

type RawLimitsConfig struct {
	GlobalDailyLimit string               `mapstructure:"globalDailyLimit"`
	Users            []RawUserLimitConfig `mapstructure:"users"`
}

type RawFeeConfig struct {
	RateBps uint64 `mapstructure:"rateBps"`
	Sink    string `mapstructure:"sink"`
}

type RawAdminConfig struct {
	Address string   `mapstructure:"address"`
	Actions []string `mapstructure:"actions"`
}

type RawConfig struct {
	BridgeConfig RawBridgeConfig  `mapstructure:"bridge"`
	Chains       []RawChainConfig `mapstructure:"chains"`
	Assets       []RawAssetConfig `mapstructure:"assets"`
	Limits       RawLimitsConfig  `mapstructure:"limits"`
	Fees         RawFeeConfig     `mapstructure:"fees"`
	Admins       []RawAdminConfig `mapstructure:"admins"`
}

func (c *RawConfig) Validate() error {
	if c.BridgeConfig.LocalChainId == 0 {
		return fmt.Errorf("required field bridge.LocalChainId empty")
	}

	for _, chain := range c.Chains {
		if chain.Id == 0 {
			return fmt.Errorf("required field chain.Id empty for chain %s", chain.Name)
		}
		if chain.Id == c.BridgeConfig.LocalChainId {
			return fmt.Errorf("chain %d is the local chain and cannot be a transfer destination", chain.Id)
		}
		for _, relayer := range chain.Relayers {
			if !common.IsHexAddress(relayer) {
				return fmt.Errorf("invalid relayer address %s for chain %d", relayer, chain.Id)
			}
		}
	}

	for _, asset := range c.Assets {
		if !common.IsHexAddress(asset.Address) {
			return fmt.Errorf("invalid asset address %s", asset.Address)
		}
		if asset.Symbol == "" {
			return fmt.Errorf("required field asset.Symbol empty for asset %s", asset.Address)
		}
		if asset.Wrapped && asset.NativeChainId == 0 {
			return fmt.Errorf("required field asset.NativeChainId empty for wrapped asset %s", asset.Address)
		}
	}

	if c.Fees.RateBps > fees.MaxFeeBps {
		return fmt.Errorf("fee rate %d bps exceeds maximum of %d", c.Fees.RateBps, fees.MaxFeeBps)
	}
	if c.Fees.RateBps > 0 && !common.IsHexAddress(c.Fees.Sink) {
		return fmt.Errorf("required field fees.Sink empty with non-zero fee rate")
	}

	for _, admin := range c.Admins {
		if !common.IsHexAddress(admin.Address) {
			return fmt.Errorf("invalid admin address %s", admin.Address)
		}
		for _, action := range admin.Actions {
			if _, ok := knownActions[action]; !ok {
				return fmt.Errorf("unknown action %s for admin %s", action, admin.Address)
			}
		}
	}
	return nil
}

var knownActions = map[string]auth.Action{
	string(auth.ActionManageChains):   auth.ActionManageChains,
	string(auth.ActionManageRelayers): auth.ActionManageRelayers,
	string(auth.ActionManageLimits):   auth.ActionManageLimits,
	string(auth.ActionManageFees):     auth.ActionManageFees,
	string(auth.ActionManageAssets):   auth.ActionManageAssets,
}

type BridgeConfig struct {
	Id                        string
	LocalChainId              uint64
	ApiAddr                   string
	HealthPort                uint16
	LogLevel                  string
	Env                       string
	MaxPayloadSize            int
	OpenTelemetryCollectorURL string
}

type ChainConfig struct {
	Id       uint64
	Name     string
	Relayers []common.Address
}

type AssetConfig struct {
	Address           common.Address
	Symbol            string
	Wrapped           bool
	NativeChainId     uint64
	MaxTransferAmount *big.Int
	DailyLimit        *big.Int
}

type UserLimitConfig struct {
	Address                common.Address
	Enabled                bool
	MaxPerTransfer         *big.Int
	DailyLimit             *big.Int
	WeeklyLimit            *big.Int
	LargeTransferThreshold *big.Int
	CooldownPeriod         time.Duration
}

type LimitsConfig struct {
	GlobalDailyLimit *big.Int
	Users            []UserLimitConfig
}

type FeeConfig struct {
	RateBps uint64
	Sink    common.Address
}

type AdminConfig struct {
	Address common.Address
	Actions []auth.Action
}

type Config struct {
	BridgeConfig BridgeConfig
	Chains       []ChainConfig
	Assets       []AssetConfig
	Limits       LimitsConfig
	Fees         FeeConfig
	Admins       []AdminConfig
}

// GetConfigFromFile reads configuration from a file at path. Fields not set
// in the file are filled from base when provided.
func GetConfigFromFile(path string, base *RawConfig) (*Config, error) {
	rawConfig := RawConfig{}

	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}
	if err := viper.Unmarshal(&rawConfig); err != nil {
		return nil, err
	}

	return processRawConfig(rawConfig, base)
}

// GetConfigFromENV reads JSON configuration from the BRIDGE_CONFIG
// environment variable. Fields not set there are filled from base when
// provided.
func GetConfigFromENV(base *RawConfig) (*Config, error) {
	data := os.Getenv(configEnvName)
	if data == "" {
		return nil, fmt.Errorf("environment variable %s empty", configEnvName)
	}

	rawConfig := RawConfig{}
	v := viper.New()
	v.SetConfigType("json")
	if err := v.ReadConfig(strings.NewReader(data)); err != nil {
		return nil, err
	}
	if err := v.Unmarshal(&rawConfig); err != nil {
		return nil, err
	}

	return processRawConfig(rawConfig, base)
}

func processRawConfig(rawConfig RawConfig, base *RawConfig) (*Config, error) {
	if base != nil {
		if err := mergo.Merge(&rawConfig, *base); err != nil {
			return nil, err
		}
	}
	if err := defaults.Set(&rawConfig); err != nil {
		return nil, err
	}
	if err := rawConfig.Validate(); err != nil {
		return nil, err
	}

	config := &Config{
		BridgeConfig: BridgeConfig{
			Id:                        rawConfig.BridgeConfig.Id,
			LocalChainId:              rawConfig.BridgeConfig.LocalChainId,
			ApiAddr:                   rawConfig.BridgeConfig.ApiAddr,
			HealthPort:                rawConfig.BridgeConfig.HealthPort,
			LogLevel:                  rawConfig.BridgeConfig.LogLevel,
			Env:                       rawConfig.BridgeConfig.Env,
			MaxPayloadSize:            rawConfig.BridgeConfig.MaxPayloadSize,
			OpenTelemetryCollectorURL: rawConfig.BridgeConfig.OpenTelemetryCollectorURL,
		},
		Fees: FeeConfig{
			RateBps: rawConfig.Fees.RateBps,
			Sink:    common.HexToAddress(rawConfig.Fees.Sink),
		},
	}

	for _, chain := range rawConfig.Chains {
		relayers := make([]common.Address, 0, len(chain.Relayers))
		for _, relayer := range chain.Relayers {
			relayers = append(relayers, common.HexToAddress(relayer))
		}
		config.Chains = append(config.Chains, ChainConfig{
			Id:       chain.Id,
			Name:     chain.Name,
			Relayers: relayers,
		})
	}

	for _, asset := range rawConfig.Assets {
		maxTransfer, err := parseAmount("asset.MaxTransferAmount", asset.MaxTransferAmount)
		if err != nil {
			return nil, err
		}
		dailyLimit, err := parseAmount("asset.DailyLimit", asset.DailyLimit)
		if err != nil {
			return nil, err
		}
		config.Assets = append(config.Assets, AssetConfig{
			Address:           common.HexToAddress(asset.Address),
			Symbol:            asset.Symbol,
			Wrapped:           asset.Wrapped,
			NativeChainId:     asset.NativeChainId,
			MaxTransferAmount: maxTransfer,
			DailyLimit:        dailyLimit,
		})
	}

	globalLimit, err := parseAmount("limits.GlobalDailyLimit", rawConfig.Limits.GlobalDailyLimit)
	if err != nil {
		return nil, err
	}
	config.Limits.GlobalDailyLimit = globalLimit
	for _, user := range rawConfig.Limits.Users {
		if !common.IsHexAddress(user.Address) {
			return nil, fmt.Errorf("invalid user address %s", user.Address)
		}
		limits := UserLimitConfig{
			Address: common.HexToAddress(user.Address),
			Enabled: user.Enabled,
			// nolint:gosec
			CooldownPeriod: time.Duration(user.CooldownSeconds) * time.Second,
		}
		if limits.MaxPerTransfer, err = parseAmount("user.MaxPerTransfer", user.MaxPerTransfer); err != nil {
			return nil, err
		}
		if limits.DailyLimit, err = parseAmount("user.DailyLimit", user.DailyLimit); err != nil {
			return nil, err
		}
		if limits.WeeklyLimit, err = parseAmount("user.WeeklyLimit", user.WeeklyLimit); err != nil {
			return nil, err
		}
		if limits.LargeTransferThreshold, err = parseAmount("user.LargeTransferThreshold", user.LargeTransferThreshold); err != nil {
			return nil, err
		}
		config.Limits.Users = append(config.Limits.Users, limits)
	}

	for _, admin := range rawConfig.Admins {
		actions := make([]auth.Action, 0, len(admin.Actions))
		for _, action := range admin.Actions {
			actions = append(actions, knownActions[action])
		}
		config.Admins = append(config.Admins, AdminConfig{
			Address: common.HexToAddress(admin.Address),
			Actions: actions,
		})
	}

	return config, nil
}

// Amounts are configured as base-10 strings to stay exact above 2^53.
func parseAmount(field string, value string) (*big.Int, error) {
	if value == "" {
		return nil, nil
	}

	amount, ok := new(big.Int).SetString(value, 10)
	if !ok || amount.Sign() < 0 {
		return nil, fmt.Errorf("field %s is not a valid amount: %s", field, value)
	}
	return amount, nil
}
