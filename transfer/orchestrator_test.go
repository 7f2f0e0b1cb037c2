// The Licensed Work is (c) 2022 Sygma
// SPDX-License-Identifier: LGPL-3.0-only

package transfer_test

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/suite"
	"go.opentelemetry.io/otel"
	"go.uber.org/mock/gomock"

	"github.com/sprintertech/sprinter-bridge/auth"
	"github.com/sprintertech/sprinter-bridge/custody"
	mock_custody "github.com/sprintertech/sprinter-bridge/custody/mock"
	"github.com/sprintertech/sprinter-bridge/events"
	"github.com/sprintertech/sprinter-bridge/fees"
	"github.com/sprintertech/sprinter-bridge/metrics"
	"github.com/sprintertech/sprinter-bridge/ratelimit"
	"github.com/sprintertech/sprinter-bridge/registry"
	"github.com/sprintertech/sprinter-bridge/replay"
	"github.com/sprintertech/sprinter-bridge/store"
	"github.com/sprintertech/sprinter-bridge/transfer"
	"github.com/sprintertech/sprinter-bridge/types"
)

const localChainID = uint64(1)
const remoteChainID = uint64(10)

type OrchestratorTestSuite struct {
	suite.Suite

	admin        common.Address
	sender       common.Address
	recipient    common.Address
	sink         common.Address
	nativeAsset  common.Address
	wrappedAsset common.Address

	relayerKey *ecdsa.PrivateKey
	relayer    common.Address

	capabilities *auth.StaticCapabilities
	registry     *registry.ChainRegistry
	limiter      *ratelimit.Limiter
	ledger       *custody.Ledger
	metrics      *metrics.BridgeMetrics

	orchestrator *transfer.Orchestrator
}

func TestRunOrchestratorTestSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorTestSuite))
}

func (s *OrchestratorTestSuite) SetupTest() {
	s.admin = common.HexToAddress("0x5c7BCd6E7De5423a257D81B442095A1a6ced35C6")
	s.sender = common.HexToAddress("0xd606A00c1A39dA53EA7Bb3Ab570BBE40b156EB66")
	s.recipient = common.HexToAddress("0x02")
	s.sink = common.HexToAddress("0x03")
	s.nativeAsset = common.HexToAddress("0x4200000000000000000000000000000000000006")
	s.wrappedAsset = common.HexToAddress("0x05")

	var err error
	s.relayerKey, err = crypto.GenerateKey()
	s.Nil(err)
	s.relayer = crypto.PubkeyToAddress(s.relayerKey.PublicKey)

	s.capabilities = auth.NewStaticCapabilities()
	s.capabilities.Grant(s.admin,
		auth.ActionManageChains,
		auth.ActionManageRelayers,
		auth.ActionManageLimits,
		auth.ActionManageAssets)

	publisher := events.NewPublisher()
	s.registry = registry.NewChainRegistry(localChainID, s.capabilities, publisher)
	s.Nil(s.registry.AddChain(s.admin, remoteChainID))
	s.Nil(s.registry.AuthorizeRelayer(s.admin, remoteChainID, s.relayer))

	s.limiter = ratelimit.NewLimiter(nil, s.capabilities, publisher)
	s.ledger = custody.NewLedger()

	s.metrics, err = metrics.NewBridgeMetrics(otel.Meter("test"), "test", "test")
	s.Nil(err)

	s.orchestrator = s.newOrchestrator(s.ledger)
}

func (s *OrchestratorTestSuite) newOrchestrator(tokenCustody custody.TokenCustody) *transfer.Orchestrator {
	feeCalculator, err := fees.NewCalculator(25, s.sink, s.capabilities, events.NewPublisher())
	s.Nil(err)

	db := store.NewMemoryKV()
	orchestrator, err := transfer.NewOrchestrator(
		s.registry,
		s.limiter,
		feeCalculator,
		tokenCustody,
		auth.NewECDSAAuthenticator(),
		replay.NewGuard(db),
		store.NewTransferStore(db),
		store.NewNonceStore(db, "transfers"),
		map[common.Address]transfer.AssetConfig{
			s.nativeAsset:  {Symbol: "WETH"},
			s.wrappedAsset: {Symbol: "spUSDC", Wrapped: true, NativeChainID: remoteChainID},
		},
		s.capabilities,
		s.metrics,
		events.NewPublisher(),
	)
	s.Nil(err)
	return orchestrator
}

func (s *OrchestratorTestSuite) signedClaim(asset common.Address, amount int64, key *ecdsa.PrivateKey) (*auth.TransferClaim, []byte) {
	claim := &auth.TransferClaim{
		TransferID:  common.HexToHash("0xaa"),
		Sender:      s.sender,
		Recipient:   s.recipient,
		Asset:       asset,
		Amount:      big.NewInt(amount),
		Source:      remoteChainID,
		Destination: localChainID,
	}
	proof, err := auth.SignClaim(claim, key)
	s.Nil(err)
	return claim, proof
}

func (s *OrchestratorTestSuite) Test_InitiateTransfer_Validation() {
	ctx := context.Background()

	_, err := s.orchestrator.InitiateTransfer(ctx, common.Address{}, s.recipient, s.nativeAsset, big.NewInt(1), remoteChainID)
	s.Equal(types.KindValidation, types.Kind(err))

	_, err = s.orchestrator.InitiateTransfer(ctx, s.sender, common.Address{}, s.nativeAsset, big.NewInt(1), remoteChainID)
	s.Equal(types.KindValidation, types.Kind(err))

	_, err = s.orchestrator.InitiateTransfer(ctx, s.sender, s.recipient, s.nativeAsset, big.NewInt(0), remoteChainID)
	s.Equal(types.KindValidation, types.Kind(err))

	_, err = s.orchestrator.InitiateTransfer(ctx, s.sender, s.recipient, s.nativeAsset, nil, remoteChainID)
	s.Equal(types.KindValidation, types.Kind(err))

	_, err = s.orchestrator.InitiateTransfer(ctx, s.sender, s.recipient, s.nativeAsset, big.NewInt(1), 137)
	s.Equal(types.KindValidation, types.Kind(err))

	_, err = s.orchestrator.InitiateTransfer(ctx, s.sender, s.recipient, common.HexToAddress("0x99"), big.NewInt(1), remoteChainID)
	s.Equal(types.KindValidation, types.Kind(err))
}

func (s *OrchestratorTestSuite) Test_InitiateTransfer_ExceedsMaxTransferAmount() {
	s.Nil(s.limiter.SetAssetLimit(s.admin, s.nativeAsset, ratelimit.AssetLimit{
		MaxTransferAmount: big.NewInt(100),
	}))
	s.ledger.Credit(s.nativeAsset, s.sender, big.NewInt(1000))

	_, err := s.orchestrator.InitiateTransfer(context.Background(), s.sender, s.recipient, s.nativeAsset, big.NewInt(101), remoteChainID)

	s.Equal(types.KindValidation, types.Kind(err))
	s.Equal(int64(1000), s.ledger.Balance(s.nativeAsset, s.sender).Int64())
}

func (s *OrchestratorTestSuite) Test_InitiateTransfer_RateLimited() {
	s.Nil(s.limiter.SetGlobalLimit(s.admin, big.NewInt(100)))
	s.ledger.Credit(s.nativeAsset, s.sender, big.NewInt(1000))

	_, err := s.orchestrator.InitiateTransfer(context.Background(), s.sender, s.recipient, s.nativeAsset, big.NewInt(200), remoteChainID)

	s.Equal(types.KindRateLimit, types.Kind(err))
	// no custody mutation on a rejected transfer
	s.Equal(int64(1000), s.ledger.Balance(s.nativeAsset, s.sender).Int64())
	s.Equal(int64(0), s.ledger.LockedBalance(s.nativeAsset).Int64())
}

func (s *OrchestratorTestSuite) Test_InitiateTransfer_Native_LocksNetAndRoutesFee() {
	s.ledger.Credit(s.nativeAsset, s.sender, big.NewInt(10000))

	id, err := s.orchestrator.InitiateTransfer(context.Background(), s.sender, s.recipient, s.nativeAsset, big.NewInt(10000), remoteChainID)

	s.Nil(err)
	s.Equal(int64(0), s.ledger.Balance(s.nativeAsset, s.sender).Int64())
	s.Equal(int64(9975), s.ledger.LockedBalance(s.nativeAsset).Int64())
	s.Equal(int64(25), s.ledger.Balance(s.nativeAsset, s.sink).Int64())

	record, err := s.orchestrator.Transfer(id)
	s.Nil(err)
	s.Equal(types.TransferStatusPending, record.Status)
	s.Equal(int64(10000), record.Amount.Int64())
	s.Equal(int64(25), record.Fee.Int64())
	s.Equal(localChainID, record.Source)
	s.Equal(remoteChainID, record.Destination)
}

func (s *OrchestratorTestSuite) Test_InitiateTransfer_Wrapped_Burns() {
	s.ledger.Credit(s.wrappedAsset, s.sender, big.NewInt(10000))

	_, err := s.orchestrator.InitiateTransfer(context.Background(), s.sender, s.recipient, s.wrappedAsset, big.NewInt(10000), remoteChainID)

	s.Nil(err)
	// net is burned, only the fee lands in custody before payout
	s.Equal(int64(0), s.ledger.Balance(s.wrappedAsset, s.sender).Int64())
	s.Equal(int64(0), s.ledger.LockedBalance(s.wrappedAsset).Int64())
	s.Equal(int64(25), s.ledger.Balance(s.wrappedAsset, s.sink).Int64())
}

func (s *OrchestratorTestSuite) Test_InitiateTransfer_UniqueIDs() {
	s.ledger.Credit(s.nativeAsset, s.sender, big.NewInt(2000))

	first, err := s.orchestrator.InitiateTransfer(context.Background(), s.sender, s.recipient, s.nativeAsset, big.NewInt(1000), remoteChainID)
	s.Nil(err)
	second, err := s.orchestrator.InitiateTransfer(context.Background(), s.sender, s.recipient, s.nativeAsset, big.NewInt(1000), remoteChainID)
	s.Nil(err)

	s.NotEqual(first, second)
}

func (s *OrchestratorTestSuite) Test_InitiateTransfer_CustodyFailureRefundsReservation() {
	ctrl := gomock.NewController(s.T())
	mockCustody := mock_custody.NewMockTokenCustody(ctrl)
	mockCustody.EXPECT().
		Lock(gomock.Any(), s.nativeAsset, gomock.Any(), s.sender).
		Return(context.DeadlineExceeded)
	orchestrator := s.newOrchestrator(mockCustody)
	s.Nil(s.limiter.SetGlobalLimit(s.admin, big.NewInt(1000)))

	_, err := orchestrator.InitiateTransfer(context.Background(), s.sender, s.recipient, s.nativeAsset, big.NewInt(1000), remoteChainID)

	s.Equal(types.KindCustody, types.Kind(err))
	// the reservation was backed out, full capacity is available again
	s.Nil(s.limiter.Reserve(s.nativeAsset, s.sender, big.NewInt(1000), time.Now()))
}

func (s *OrchestratorTestSuite) Test_CompleteTransfer_Success() {
	// funds locked on a previous outbound leg
	s.ledger.Credit(s.nativeAsset, s.admin, big.NewInt(500))
	s.Nil(s.ledger.Lock(context.Background(), s.nativeAsset, big.NewInt(500), s.admin))

	claim, proof := s.signedClaim(s.nativeAsset, 500, s.relayerKey)
	err := s.orchestrator.CompleteTransfer(context.Background(), claim, proof)

	s.Nil(err)
	s.Equal(int64(500), s.ledger.Balance(s.nativeAsset, s.recipient).Int64())
	s.Equal(int64(0), s.ledger.LockedBalance(s.nativeAsset).Int64())

	status, err := s.orchestrator.TransferStatus(claim.TransferID)
	s.Nil(err)
	s.Equal(types.TransferStatusCompleted, status)
}

func (s *OrchestratorTestSuite) Test_CompleteTransfer_Replay() {
	s.ledger.Credit(s.nativeAsset, s.admin, big.NewInt(1000))
	s.Nil(s.ledger.Lock(context.Background(), s.nativeAsset, big.NewInt(1000), s.admin))

	claim, proof := s.signedClaim(s.nativeAsset, 500, s.relayerKey)
	s.Nil(s.orchestrator.CompleteTransfer(context.Background(), claim, proof))

	err := s.orchestrator.CompleteTransfer(context.Background(), claim, proof)

	s.Equal(types.KindReplay, types.Kind(err))
	// the second attempt must not release funds again
	s.Equal(int64(500), s.ledger.Balance(s.nativeAsset, s.recipient).Int64())
}

func (s *OrchestratorTestSuite) Test_CompleteTransfer_UntrustedSigner() {
	otherKey, err := crypto.GenerateKey()
	s.Nil(err)

	claim, proof := s.signedClaim(s.nativeAsset, 500, otherKey)
	err = s.orchestrator.CompleteTransfer(context.Background(), claim, proof)

	s.Equal(types.KindAuthorization, types.Kind(err))
}

func (s *OrchestratorTestSuite) Test_CompleteTransfer_TamperedClaim() {
	claim, proof := s.signedClaim(s.nativeAsset, 500, s.relayerKey)
	claim.Amount = big.NewInt(5000)

	err := s.orchestrator.CompleteTransfer(context.Background(), claim, proof)

	s.Equal(types.KindAuthorization, types.Kind(err))
}

func (s *OrchestratorTestSuite) Test_CompleteTransfer_WrongDestination() {
	claim := &auth.TransferClaim{
		TransferID:  common.HexToHash("0xaa"),
		Sender:      s.sender,
		Recipient:   s.recipient,
		Asset:       s.nativeAsset,
		Amount:      big.NewInt(500),
		Source:      remoteChainID,
		Destination: 137,
	}
	proof, err := auth.SignClaim(claim, s.relayerKey)
	s.Nil(err)

	err = s.orchestrator.CompleteTransfer(context.Background(), claim, proof)

	s.Equal(types.KindValidation, types.Kind(err))
}

func (s *OrchestratorTestSuite) Test_CompleteTransfer_UnknownAsset() {
	claim, proof := s.signedClaim(common.HexToAddress("0x99"), 500, s.relayerKey)

	err := s.orchestrator.CompleteTransfer(context.Background(), claim, proof)

	s.Equal(types.KindValidation, types.Kind(err))
}

func (s *OrchestratorTestSuite) Test_CompleteTransfer_Wrapped_Mints() {
	claim, proof := s.signedClaim(s.wrappedAsset, 500, s.relayerKey)

	err := s.orchestrator.CompleteTransfer(context.Background(), claim, proof)

	s.Nil(err)
	s.Equal(int64(500), s.ledger.Balance(s.wrappedAsset, s.recipient).Int64())
}

func (s *OrchestratorTestSuite) Test_CompleteTransfer_CustodyFailureKeepsRetryable() {
	// nothing locked yet, the release fails
	claim, proof := s.signedClaim(s.nativeAsset, 500, s.relayerKey)
	err := s.orchestrator.CompleteTransfer(context.Background(), claim, proof)
	s.Equal(types.KindCustody, types.Kind(err))

	status, err := s.orchestrator.TransferStatus(claim.TransferID)
	s.Nil(err)
	s.Equal(types.TransferStatusNone, status)

	// once funds are in custody the same claim settles
	s.ledger.Credit(s.nativeAsset, s.admin, big.NewInt(500))
	s.Nil(s.ledger.Lock(context.Background(), s.nativeAsset, big.NewInt(500), s.admin))

	s.Nil(s.orchestrator.CompleteTransfer(context.Background(), claim, proof))
	s.Equal(int64(500), s.ledger.Balance(s.nativeAsset, s.recipient).Int64())
}

func (s *OrchestratorTestSuite) Test_EnsureWrappedAsset_MissingCapability() {
	_, err := s.orchestrator.EnsureWrappedAsset(
		context.Background(),
		s.sender,
		common.HexToAddress("0x99"),
		remoteChainID,
		custody.WrappedMetadata{Name: "Wrapped Token", Symbol: "spTOK", Decimals: 18},
	)

	s.Equal(types.KindAuthorization, types.Kind(err))
}

func (s *OrchestratorTestSuite) Test_EnsureWrappedAsset_UnsupportedChain() {
	_, err := s.orchestrator.EnsureWrappedAsset(
		context.Background(),
		s.admin,
		common.HexToAddress("0x99"),
		137,
		custody.WrappedMetadata{Name: "Wrapped Token", Symbol: "spTOK", Decimals: 18},
	)

	s.Equal(types.KindValidation, types.Kind(err))
}

func (s *OrchestratorTestSuite) Test_EnsureWrappedAsset_Success() {
	nativeAsset := common.HexToAddress("0x99")

	wrapped, err := s.orchestrator.EnsureWrappedAsset(
		context.Background(),
		s.admin,
		nativeAsset,
		remoteChainID,
		custody.WrappedMetadata{Name: "Wrapped Token", Symbol: "spTOK", Decimals: 18},
	)
	s.Nil(err)
	s.NotEqual(common.Address{}, wrapped)

	// the new asset is registered for custody routing
	claim, proof := s.signedClaim(wrapped, 500, s.relayerKey)
	s.Nil(s.orchestrator.CompleteTransfer(context.Background(), claim, proof))
	s.Equal(int64(500), s.ledger.Balance(wrapped, s.recipient).Int64())

	_, err = s.orchestrator.EnsureWrappedAsset(
		context.Background(),
		s.admin,
		nativeAsset,
		remoteChainID,
		custody.WrappedMetadata{Name: "Wrapped Token", Symbol: "spTOK", Decimals: 18},
	)
	s.Equal(types.KindValidation, types.Kind(err))
}
