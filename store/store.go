// The Licensed Work is (c) 2022 Sygma
// SPDX-License-Identifier: LGPL-3.0-only

package store

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/syndtr/goleveldb/leveldb"

	"github.com/sprintertech/sprinter-bridge/types"
)

// KeyValueReaderWriter is satisfied by the sygma-core leveldb store used in
// production and by MemoryKV in tests and devnet mode.
type KeyValueReaderWriter interface {
	GetByKey(key []byte) ([]byte, error)
	SetByKey(key []byte, value []byte) error
}

const (
	transferPrefix = "transfer:"
	messagePrefix  = "message:"
	noncePrefix    = "nonce:"
)

// TransferStore persists transfer records keyed by transfer ID. Records are
// append-only; callers only ever move a record forward along its lifecycle.
type TransferStore struct {
	db KeyValueReaderWriter
}

func NewTransferStore(db KeyValueReaderWriter) *TransferStore {
	return &TransferStore{db: db}
}

func (s *TransferStore) StoreTransfer(record *types.TransferRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	return s.db.SetByKey(transferKey(record.ID), data)
}

func (s *TransferStore) Transfer(id common.Hash) (*types.TransferRecord, error) {
	data, err := s.db.GetByKey(transferKey(id))
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, types.ErrTransferNotFound
	}
	if err != nil {
		return nil, err
	}

	record := &types.TransferRecord{}
	if err := json.Unmarshal(data, record); err != nil {
		return nil, err
	}
	return record, nil
}

// TransferStatus returns TransferStatusNone for unknown IDs.
func (s *TransferStore) TransferStatus(id common.Hash) (types.TransferStatus, error) {
	record, err := s.Transfer(id)
	if errors.Is(err, types.ErrTransferNotFound) {
		return types.TransferStatusNone, nil
	}
	if err != nil {
		return types.TransferStatusNone, err
	}
	return record.Status, nil
}

type MessageStore struct {
	db KeyValueReaderWriter
}

func NewMessageStore(db KeyValueReaderWriter) *MessageStore {
	return &MessageStore{db: db}
}

func (s *MessageStore) StoreMessage(record *types.MessageRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	return s.db.SetByKey(messageKey(record.ID), data)
}

func (s *MessageStore) Message(id common.Hash) (*types.MessageRecord, error) {
	data, err := s.db.GetByKey(messageKey(id))
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, types.ErrMessageNotFound
	}
	if err != nil {
		return nil, err
	}

	record := &types.MessageRecord{}
	if err := json.Unmarshal(data, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *MessageStore) MessageStatus(id common.Hash) (types.MessageStatus, error) {
	record, err := s.Message(id)
	if errors.Is(err, types.ErrMessageNotFound) {
		return types.MessageStatusNone, nil
	}
	if err != nil {
		return types.MessageStatusNone, err
	}
	return record.Status, nil
}

// NonceStore hands out a strictly increasing counter persisted alongside
// the records it identifies. Used for collision-resistant ID generation.
type NonceStore struct {
	mu  sync.Mutex
	db  KeyValueReaderWriter
	key []byte
}

func NewNonceStore(db KeyValueReaderWriter, scope string) *NonceStore {
	return &NonceStore{
		db:  db,
		key: []byte(noncePrefix + scope),
	}
}

// Next returns the current nonce and advances the counter.
func (s *NonceStore) Next() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var nonce uint64
	data, err := s.db.GetByKey(s.key)
	if err != nil && !errors.Is(err, leveldb.ErrNotFound) {
		return 0, err
	}
	if err == nil {
		nonce = binary.BigEndian.Uint64(data)
	}

	next := make([]byte, 8)
	binary.BigEndian.PutUint64(next, nonce+1)
	if err := s.db.SetByKey(s.key, next); err != nil {
		return 0, err
	}

	return nonce, nil
}

func transferKey(id common.Hash) []byte {
	return append([]byte(transferPrefix), id.Bytes()...)
}

func messageKey(id common.Hash) []byte {
	return append([]byte(messagePrefix), id.Bytes()...)
}
