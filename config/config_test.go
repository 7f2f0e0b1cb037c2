// The Licensed Work is (c) 2022 Sygma
// SPDX-License-Identifier: LGPL-3.0-only

package config_test

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/suite"

	"github.com/sprintertech/sprinter-bridge/auth"
	"github.com/sprintertech/sprinter-bridge/config"
)

func validRawConfig() config.RawConfig {
	return config.RawConfig{
		BridgeConfig: config.RawBridgeConfig{
			LocalChainId: 1,
		},
		Chains: []config.RawChainConfig{
			{
				Id:       10,
				Name:     "optimism",
				Relayers: []string{"0x5c7BCd6E7De5423a257D81B442095A1a6ced35C6"},
			},
		},
		Assets: []config.RawAssetConfig{
			{
				Address:           "0xd606A00c1A39dA53EA7Bb3Ab570BBE40b156EB66",
				Symbol:            "WETH",
				MaxTransferAmount: "1000000000000000000000",
			},
		},
		Fees: config.RawFeeConfig{
			RateBps: 25,
			Sink:    "0x3F9289Cb0b5E4d22b05052Af81A02aC95f08C19A",
		},
		Admins: []config.RawAdminConfig{
			{
				Address: "0x5c7BCd6E7De5423a257D81B442095A1a6ced35C6",
				Actions: []string{"manage-chains", "manage-limits"},
			},
		},
	}
}

type ValidateTestSuite struct {
	suite.Suite
}

func TestRunValidateTestSuite(t *testing.T) {
	suite.Run(t, new(ValidateTestSuite))
}

func (s *ValidateTestSuite) Test_ValidConfig() {
	rawConfig := validRawConfig()

	s.Nil(rawConfig.Validate())
}

func (s *ValidateTestSuite) Test_MissingLocalChainId() {
	rawConfig := validRawConfig()
	rawConfig.BridgeConfig.LocalChainId = 0

	s.NotNil(rawConfig.Validate())
}

func (s *ValidateTestSuite) Test_LocalChainListedAsDestination() {
	rawConfig := validRawConfig()
	rawConfig.Chains[0].Id = 1

	s.NotNil(rawConfig.Validate())
}

func (s *ValidateTestSuite) Test_InvalidRelayerAddress() {
	rawConfig := validRawConfig()
	rawConfig.Chains[0].Relayers = []string{"not an address"}

	s.NotNil(rawConfig.Validate())
}

func (s *ValidateTestSuite) Test_InvalidAssetAddress() {
	rawConfig := validRawConfig()
	rawConfig.Assets[0].Address = "0xzz"

	s.NotNil(rawConfig.Validate())
}

func (s *ValidateTestSuite) Test_WrappedAssetWithoutNativeChain() {
	rawConfig := validRawConfig()
	rawConfig.Assets[0].Wrapped = true
	rawConfig.Assets[0].NativeChainId = 0

	s.NotNil(rawConfig.Validate())
}

func (s *ValidateTestSuite) Test_FeeRateOverMaximum() {
	rawConfig := validRawConfig()
	rawConfig.Fees.RateBps = 1001

	s.NotNil(rawConfig.Validate())
}

func (s *ValidateTestSuite) Test_FeeRateWithoutSink() {
	rawConfig := validRawConfig()
	rawConfig.Fees.Sink = ""

	s.NotNil(rawConfig.Validate())
}

func (s *ValidateTestSuite) Test_UnknownAdminAction() {
	rawConfig := validRawConfig()
	rawConfig.Admins[0].Actions = []string{"manage-everything"}

	s.NotNil(rawConfig.Validate())
}

type GetConfigTestSuite struct {
	suite.Suite
}

func TestRunGetConfigTestSuite(t *testing.T) {
	suite.Run(t, new(GetConfigTestSuite))
}

func (s *GetConfigTestSuite) Test_GetConfigFromFile_InvalidPath() {
	_, err := config.GetConfigFromFile("invalid", nil)

	s.NotNil(err)
}

func (s *GetConfigTestSuite) Test_GetConfigFromFile_DefaultsApplied() {
	data := `
bridge:
  localChainId: 1
chains:
  - id: 10
    name: optimism
    relayers:
      - "0x5c7BCd6E7De5423a257D81B442095A1a6ced35C6"
`
	path := filepath.Join(s.T().TempDir(), "config.yaml")
	s.Nil(os.WriteFile(path, []byte(data), 0o600))

	cfg, err := config.GetConfigFromFile(path, nil)

	s.Nil(err)
	s.Equal("bridge", cfg.BridgeConfig.Id)
	s.Equal(":8080", cfg.BridgeConfig.ApiAddr)
	s.Equal(uint16(9001), cfg.BridgeConfig.HealthPort)
	s.Equal("info", cfg.BridgeConfig.LogLevel)
	s.Equal(65536, cfg.BridgeConfig.MaxPayloadSize)
	s.Equal(uint64(10), cfg.Chains[0].Id)
	s.Equal(
		[]common.Address{common.HexToAddress("0x5c7BCd6E7De5423a257D81B442095A1a6ced35C6")},
		cfg.Chains[0].Relayers,
	)
}

func (s *GetConfigTestSuite) Test_GetConfigFromFile_InvalidAmount() {
	data := `
bridge:
  localChainId: 1
assets:
  - address: "0xd606A00c1A39dA53EA7Bb3Ab570BBE40b156EB66"
    symbol: WETH
    maxTransferAmount: "-100"
`
	path := filepath.Join(s.T().TempDir(), "config.yaml")
	s.Nil(os.WriteFile(path, []byte(data), 0o600))

	_, err := config.GetConfigFromFile(path, nil)

	s.NotNil(err)
}

func (s *GetConfigTestSuite) Test_GetConfigFromENV_EmptyVariable() {
	s.T().Setenv("BRIDGE_CONFIG", "")

	_, err := config.GetConfigFromENV(nil)

	s.NotNil(err)
}

func (s *GetConfigTestSuite) Test_GetConfigFromENV_ValidConfig() {
	s.T().Setenv("BRIDGE_CONFIG", `{
		"bridge": {"localChainId": 1, "logLevel": "debug"},
		"fees": {"rateBps": 25, "sink": "0x3F9289Cb0b5E4d22b05052Af81A02aC95f08C19A"},
		"limits": {
			"globalDailyLimit": "1000000",
			"users": [{
				"address": "0xd606A00c1A39dA53EA7Bb3Ab570BBE40b156EB66",
				"dailyLimit": "1000",
				"cooldownSeconds": 1800
			}]
		},
		"admins": [{
			"address": "0x5c7BCd6E7De5423a257D81B442095A1a6ced35C6",
			"actions": ["manage-fees"]
		}]
	}`)

	cfg, err := config.GetConfigFromENV(nil)

	s.Nil(err)
	s.Equal("debug", cfg.BridgeConfig.LogLevel)
	s.Equal(uint64(25), cfg.Fees.RateBps)
	s.Equal(common.HexToAddress("0x3F9289Cb0b5E4d22b05052Af81A02aC95f08C19A"), cfg.Fees.Sink)
	s.Equal(big.NewInt(1000000), cfg.Limits.GlobalDailyLimit)

	user := cfg.Limits.Users[0]
	s.True(user.Enabled)
	s.Equal(big.NewInt(1000), user.DailyLimit)
	s.Nil(user.WeeklyLimit)
	s.Equal(30*time.Minute, user.CooldownPeriod)

	s.Equal([]auth.Action{auth.ActionManageFees}, cfg.Admins[0].Actions)
}

func (s *GetConfigTestSuite) Test_GetConfigFromENV_BaseFillsMissingFields() {
	s.T().Setenv("BRIDGE_CONFIG", `{"bridge": {"localChainId": 1}}`)
	base := &config.RawConfig{
		Chains: []config.RawChainConfig{
			{Id: 10, Name: "optimism"},
		},
	}

	cfg, err := config.GetConfigFromENV(base)

	s.Nil(err)
	s.Equal(uint64(1), cfg.BridgeConfig.LocalChainId)
	s.Equal("optimism", cfg.Chains[0].Name)
}
