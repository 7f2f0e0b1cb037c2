// The Licensed Work is (c) 2022 Sygma
// SPDX-License-Identifier: LGPL-3.0-only

package app

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"github.com/sygmaprotocol/sygma-core/observability"
	"github.com/sygmaprotocol/sygma-core/store/lvldb"

	"github.com/sprintertech/sprinter-bridge/api"
	"github.com/sprintertech/sprinter-bridge/api/handlers"
	"github.com/sprintertech/sprinter-bridge/auth"
	"github.com/sprintertech/sprinter-bridge/cache"
	"github.com/sprintertech/sprinter-bridge/config"
	"github.com/sprintertech/sprinter-bridge/custody"
	"github.com/sprintertech/sprinter-bridge/events"
	"github.com/sprintertech/sprinter-bridge/fees"
	"github.com/sprintertech/sprinter-bridge/health"
	"github.com/sprintertech/sprinter-bridge/message"
	"github.com/sprintertech/sprinter-bridge/metrics"
	"github.com/sprintertech/sprinter-bridge/ratelimit"
	"github.com/sprintertech/sprinter-bridge/registry"
	"github.com/sprintertech/sprinter-bridge/replay"
	"github.com/sprintertech/sprinter-bridge/store"
	"github.com/sprintertech/sprinter-bridge/transfer"
)

var Version string

// bootstrapCaller seeds configured chains, relayers and limits through the
// same capability-gated paths admins use at runtime. Its grants are revoked
// before the API starts serving.
var bootstrapCaller = common.BytesToAddress([]byte("bootstrap"))

func Run() error {
	var err error

	configFlag := viper.GetString(config.ConfigFlagName)
	configURL := viper.GetString("config-url")

	var baseConfig *config.RawConfig
	if configURL != "" {
		baseConfig, err = config.GetSharedConfigFromNetwork(configURL)
		panicOnError(err)
	}

	var configuration *config.Config
	if strings.ToLower(configFlag) == "env" {
		configuration, err = config.GetConfigFromENV(baseConfig)
		panicOnError(err)
	} else {
		configuration, err = config.GetConfigFromFile(configFlag, baseConfig)
		panicOnError(err)
	}

	logLevel, err := zerolog.ParseLevel(configuration.BridgeConfig.LogLevel)
	panicOnError(err)
	observability.ConfigureLogger(logLevel, os.Stdout)

	log.Info().Msg("Successfully loaded configuration")

	go health.StartHealthEndpoint(configuration.BridgeConfig.HealthPort)

	db, err := lvldb.NewLvlDB(viper.GetString(config.BlockstoreFlagName))
	panicOnError(err)

	mp, err := observability.InitMetricProvider(context.Background(), configuration.BridgeConfig.OpenTelemetryCollectorURL)
	panicOnError(err)
	defer func() {
		if err := mp.Shutdown(context.Background()); err != nil {
			log.Error().Msgf("Error shutting down meter provider: %v", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bridgeMetrics, err := metrics.NewBridgeMetrics(
		mp.Meter("bridge-metric-provider"),
		configuration.BridgeConfig.Env,
		configuration.BridgeConfig.Id)
	panicOnError(err)

	publisher := events.NewPublisher()

	capabilities := auth.NewStaticCapabilities()
	for _, admin := range configuration.Admins {
		capabilities.Grant(admin.Address, admin.Actions...)
	}
	bootstrapActions := []auth.Action{
		auth.ActionManageChains,
		auth.ActionManageRelayers,
		auth.ActionManageLimits,
	}
	capabilities.Grant(bootstrapCaller, bootstrapActions...)

	chainRegistry := registry.NewChainRegistry(configuration.BridgeConfig.LocalChainId, capabilities, publisher)
	for _, chain := range configuration.Chains {
		panicOnError(chainRegistry.AddChain(bootstrapCaller, chain.Id))
		for _, relayer := range chain.Relayers {
			panicOnError(chainRegistry.AuthorizeRelayer(bootstrapCaller, chain.Id, relayer))
		}
		log.Info().Uint64("chain", chain.Id).Msgf("Registered chain %s with %d relayers", chain.Name, len(chain.Relayers))
	}

	limiter := ratelimit.NewLimiter(configuration.Limits.GlobalDailyLimit, capabilities, publisher)
	assets := make(map[common.Address]transfer.AssetConfig)
	for _, asset := range configuration.Assets {
		assets[asset.Address] = transfer.AssetConfig{
			Symbol:        asset.Symbol,
			Wrapped:       asset.Wrapped,
			NativeChainID: asset.NativeChainId,
		}
		if asset.MaxTransferAmount != nil || asset.DailyLimit != nil {
			panicOnError(limiter.SetAssetLimit(bootstrapCaller, asset.Address, ratelimit.AssetLimit{
				MaxTransferAmount: asset.MaxTransferAmount,
				DailyLimit:        asset.DailyLimit,
			}))
		}
	}
	for _, user := range configuration.Limits.Users {
		panicOnError(limiter.SetUserLimits(bootstrapCaller, user.Address, ratelimit.UserLimits{
			Enabled:                user.Enabled,
			MaxPerTransfer:         user.MaxPerTransfer,
			DailyLimit:             user.DailyLimit,
			WeeklyLimit:            user.WeeklyLimit,
			LargeTransferThreshold: user.LargeTransferThreshold,
			CooldownPeriod:         user.CooldownPeriod,
		}))
	}
	for _, action := range bootstrapActions {
		capabilities.Revoke(bootstrapCaller, action)
	}

	feeCalculator, err := fees.NewCalculator(configuration.Fees.RateBps, configuration.Fees.Sink, capabilities, publisher)
	panicOnError(err)

	tokenCustody := custody.NewLedger()
	authenticator := auth.NewECDSAAuthenticator()
	replayGuard := replay.NewGuard(db)

	transferOrchestrator, err := transfer.NewOrchestrator(
		chainRegistry,
		limiter,
		feeCalculator,
		tokenCustody,
		authenticator,
		replayGuard,
		store.NewTransferStore(db),
		store.NewNonceStore(db, "transfers"),
		assets,
		capabilities,
		bridgeMetrics,
		publisher)
	panicOnError(err)

	messageOrchestrator, err := message.NewOrchestrator(
		chainRegistry,
		authenticator,
		replayGuard,
		store.NewMessageStore(db),
		store.NewNonceStore(db, "messages"),
		configuration.BridgeConfig.MaxPayloadSize,
		bridgeMetrics,
		publisher)
	panicOnError(err)

	statusCache := cache.NewStatusCache()
	defer statusCache.Stop()

	transfersHandler := handlers.NewTransfersHandler(transferOrchestrator)
	messagesHandler := handlers.NewMessagesHandler(messageOrchestrator)
	statusHandler := handlers.NewStatusHandler(transferOrchestrator, messageOrchestrator, chainRegistry, limiter, statusCache)
	adminHandler := handlers.NewAdminHandler(chainRegistry, limiter, feeCalculator, transferOrchestrator)
	go api.Serve(ctx, configuration.BridgeConfig.ApiAddr, transfersHandler, messagesHandler, statusHandler, adminHandler)

	sysErr := make(chan os.Signal, 1)
	signal.Notify(sysErr,
		syscall.SIGTERM,
		syscall.SIGINT,
		syscall.SIGHUP,
		syscall.SIGQUIT)

	log.Info().Msgf("Started bridge: %s on chain %d. Version: v%s", configuration.BridgeConfig.Id, configuration.BridgeConfig.LocalChainId, Version)

	sig := <-sysErr
	log.Info().Msgf("terminating got ` [%v] signal", sig)
	return nil
}

func panicOnError(err error) {
	if err != nil {
		panic(err)
	}
}
