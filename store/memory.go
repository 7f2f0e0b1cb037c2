// The Licensed Work is (c) 2022 Sygma
// SPDX-License-Identifier: LGPL-3.0-only

package store

import (
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
)

// MemoryKV is an in-memory KeyValueReaderWriter used by tests and devnet
// mode. Missing keys return leveldb.ErrNotFound to match the production
// store.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string][]byte)}
}

func (kv *MemoryKV) GetByKey(key []byte) ([]byte, error) {
	kv.mu.RLock()
	defer kv.mu.RUnlock()

	value, ok := kv.data[string(key)]
	if !ok {
		return nil, leveldb.ErrNotFound
	}
	return value, nil
}

func (kv *MemoryKV) SetByKey(key []byte, value []byte) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	kv.data[string(key)] = stored
	return nil
}
