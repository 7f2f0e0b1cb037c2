// The Licensed Work is (c) 2022 Sygma
// SPDX-License-Identifier: LGPL-3.0-only

package replay

import (
	"errors"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/syndtr/goleveldb/leveldb"

	"github.com/sprintertech/sprinter-bridge/store"
	"github.com/sprintertech/sprinter-bridge/types"
)

const processedPrefix = "processed:"

// Guard tracks identifiers that have already been processed. Once marked,
// an identifier is rejected permanently. Lock serializes concurrent
// relayer submissions racing on the same identifier so that exactly one
// caller wins the check-then-mark sequence.
type Guard struct {
	db    store.KeyValueReaderWriter
	locks [256]sync.Mutex
}

func NewGuard(db store.KeyValueReaderWriter) *Guard {
	return &Guard{db: db}
}

// Lock acquires the serialization point for the given identifier and
// returns the release function. Callers hold it across the whole
// check-mutate-mark sequence the guard protects.
func (g *Guard) Lock(id common.Hash) func() {
	m := &g.locks[id[0]]
	m.Lock()
	return m.Unlock
}

func (g *Guard) IsProcessed(id common.Hash) (bool, error) {
	_, err := g.db.GetByKey(processedKey(id))
	if errors.Is(err, leveldb.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (g *Guard) MarkProcessed(id common.Hash) error {
	processed, err := g.IsProcessed(id)
	if err != nil {
		return err
	}
	if processed {
		return &types.ReplayError{ID: id}
	}

	return g.db.SetByKey(processedKey(id), []byte{1})
}

func processedKey(id common.Hash) []byte {
	return append([]byte(processedPrefix), id.Bytes()...)
}
