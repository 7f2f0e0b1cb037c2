// The Licensed Work is (c) 2022 Sygma
// SPDX-License-Identifier: LGPL-3.0-only

package store_test

import (
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/suite"

	"github.com/sprintertech/sprinter-bridge/store"
	"github.com/sprintertech/sprinter-bridge/types"
)

type StoreTestSuite struct {
	suite.Suite

	db *store.MemoryKV
}

func TestRunStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func (s *StoreTestSuite) SetupTest() {
	s.db = store.NewMemoryKV()
}

func (s *StoreTestSuite) Test_TransferStore_NotFound() {
	transfers := store.NewTransferStore(s.db)

	_, err := transfers.Transfer(common.HexToHash("0x01"))

	s.True(errors.Is(err, types.ErrTransferNotFound))
	s.Equal(types.KindNotFound, types.Kind(err))
}

func (s *StoreTestSuite) Test_TransferStore_Roundtrip() {
	transfers := store.NewTransferStore(s.db)
	record := &types.TransferRecord{
		ID:          common.HexToHash("0x01"),
		Sender:      common.HexToAddress("0x02"),
		Recipient:   common.HexToAddress("0x03"),
		Asset:       common.HexToAddress("0x04"),
		Amount:      big.NewInt(1000),
		Fee:         big.NewInt(5),
		Source:      1,
		Destination: 10,
		Status:      types.TransferStatusPending,
		CreatedAt:   time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		UpdatedAt:   time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	s.Nil(transfers.StoreTransfer(record))

	stored, err := transfers.Transfer(record.ID)
	s.Nil(err)
	s.Equal(record, stored)
}

func (s *StoreTestSuite) Test_TransferStatus_NoneForUnknown() {
	transfers := store.NewTransferStore(s.db)

	status, err := transfers.TransferStatus(common.HexToHash("0x01"))

	s.Nil(err)
	s.Equal(types.TransferStatusNone, status)
}

func (s *StoreTestSuite) Test_MessageStore_NotFound() {
	messages := store.NewMessageStore(s.db)

	_, err := messages.Message(common.HexToHash("0x01"))

	s.True(errors.Is(err, types.ErrMessageNotFound))
}

func (s *StoreTestSuite) Test_MessageStore_Roundtrip() {
	messages := store.NewMessageStore(s.db)
	record := &types.MessageRecord{
		ID:          common.HexToHash("0x01"),
		Sender:      common.HexToAddress("0x02"),
		Recipient:   common.HexToAddress("0x03"),
		Payload:     []byte{0xde, 0xad, 0xbe, 0xef},
		Source:      10,
		Destination: 1,
		Status:      types.MessageStatusDelivered,
		CreatedAt:   time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		UpdatedAt:   time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	s.Nil(messages.StoreMessage(record))

	stored, err := messages.Message(record.ID)
	s.Nil(err)
	s.Equal(record, stored)

	status, err := messages.MessageStatus(record.ID)
	s.Nil(err)
	s.Equal(types.MessageStatusDelivered, status)
}

func (s *StoreTestSuite) Test_NonceStore_Monotonic() {
	nonces := store.NewNonceStore(s.db, "transfers")

	for i := uint64(0); i < 5; i++ {
		nonce, err := nonces.Next()
		s.Nil(err)
		s.Equal(i, nonce)
	}
}

func (s *StoreTestSuite) Test_NonceStore_SurvivesRestart() {
	nonces := store.NewNonceStore(s.db, "transfers")
	_, err := nonces.Next()
	s.Nil(err)
	_, err = nonces.Next()
	s.Nil(err)

	// a new instance over the same db resumes, it never reissues
	reopened := store.NewNonceStore(s.db, "transfers")
	nonce, err := reopened.Next()
	s.Nil(err)
	s.Equal(uint64(2), nonce)
}

func (s *StoreTestSuite) Test_NonceStore_ScopedCounters() {
	transferNonces := store.NewNonceStore(s.db, "transfers")
	messageNonces := store.NewNonceStore(s.db, "messages")

	_, err := transferNonces.Next()
	s.Nil(err)

	nonce, err := messageNonces.Next()
	s.Nil(err)
	s.Equal(uint64(0), nonce)
}
