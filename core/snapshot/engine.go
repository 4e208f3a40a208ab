// Copyright (C) 2023 Gobalsky Labs Limited
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package snapshot

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"code.vegaprotocol.io/marketplace/core/types"
	"code.vegaprotocol.io/marketplace/libs/crypto"
	"code.vegaprotocol.io/marketplace/logging"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

const (
	snapshotPrefix = "snapshot/"
	latestKey      = "latest"
)

var (
	ErrNoSnapshot           = errors.New("no snapshot available")
	ErrSnapshotHashMismatch = errors.New("snapshot hash does not match its payloads")
)

// Payload is the state of one provider key.
type Payload struct {
	Namespace types.SnapshotNamespace `json:"namespace"`
	Key       string                  `json:"key"`
	Data      []byte                  `json:"data"`
}

// Snapshot is what is stored for every version.
type Snapshot struct {
	Version  uint64     `json:"version"`
	Hash     string     `json:"hash"`
	Payloads []*Payload `json:"payloads"`
}

// Info describes a stored snapshot.
type Info struct {
	Version uint64
	Hash    string
}

// Engine collects the state of every registered provider, hashes it and
// stores it in a leveldb database.
type Engine struct {
	log *logging.Logger
	cfg Config
	db  *leveldb.DB

	providers  []types.StateProvider
	namespaces map[types.SnapshotNamespace]types.StateProvider

	version uint64
	hash    []byte
}

// New opens the snapshot database, the numbering of new snapshots
// continues from the latest one stored.
func New(log *logging.Logger, cfg Config) (*Engine, error) {
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())

	path, err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	var db *leveldb.DB
	if cfg.Storage == memDB {
		db, err = leveldb.Open(storage.NewMemStorage(), nil)
	} else {
		db, err = leveldb.OpenFile(path, &opt.Options{
			Filter: filter.NewBloomFilter(10),
		})
	}
	if err != nil {
		return nil, errors.Wrap(err, "could not open snapshot database")
	}

	e := &Engine{
		log:        log,
		cfg:        cfg,
		db:         db,
		namespaces: map[types.SnapshotNamespace]types.StateProvider{},
	}

	snap, err := e.latest()
	if err != nil && !errors.Is(err, ErrNoSnapshot) {
		_ = db.Close()
		return nil, err
	}
	if snap != nil {
		e.version = snap.Version
		e.hash, _ = hex.DecodeString(snap.Hash)
	}
	return e, nil
}

// ReloadConf updates the internal configuration.
func (e *Engine) ReloadConf(cfg Config) {
	e.log.Info("reloading configuration")
	if e.log.GetLevel() != cfg.Level.Get() {
		e.log.Info("updating log level",
			logging.String("old", e.log.GetLevelString()),
			logging.String("new", cfg.Level.String()),
		)
		e.log.SetLevel(cfg.Level.Get())
	}
	if cfg.KeepRecent > 0 {
		e.cfg.KeepRecent = cfg.KeepRecent
	}
}

// AddProviders registers the state providers included in every snapshot.
func (e *Engine) AddProviders(provs ...types.StateProvider) {
	for _, p := range provs {
		ns := p.Namespace()
		if _, ok := e.namespaces[ns]; ok {
			e.log.Panic("snapshot provider namespace registered twice",
				logging.String("namespace", ns.String()))
		}
		e.namespaces[ns] = p
		e.providers = append(e.providers, p)
	}
}

// Info returns the version and hash of the latest snapshot taken or loaded.
func (e *Engine) Info() (uint64, []byte) {
	return e.version, e.hash
}

// Snapshot takes a new snapshot of every provider and returns its hash.
func (e *Engine) Snapshot(_ context.Context) ([]byte, error) {
	payloads, err := e.collect()
	if err != nil {
		return nil, err
	}
	hash := hashPayloads(payloads)

	snap := &Snapshot{
		Version:  e.version + 1,
		Hash:     hex.EncodeToString(hash),
		Payloads: payloads,
	}
	buf, err := json.Marshal(snap)
	if err != nil {
		return nil, errors.Wrap(err, "could not encode snapshot")
	}

	batch := new(leveldb.Batch)
	batch.Put(versionKey(snap.Version), buf)
	batch.Put([]byte(latestKey), versionKey(snap.Version))
	if snap.Version > uint64(e.cfg.KeepRecent) {
		batch.Delete(versionKey(snap.Version - uint64(e.cfg.KeepRecent)))
	}
	if err := e.db.Write(batch, nil); err != nil {
		return nil, errors.Wrap(err, "could not save snapshot")
	}

	e.version, e.hash = snap.Version, hash
	e.log.Info("snapshot taken",
		logging.Uint64("version", snap.Version),
		logging.String("hash", snap.Hash),
		logging.Int("payloads", len(payloads)),
	)
	return hash, nil
}

func (e *Engine) collect() ([]*Payload, error) {
	payloads := []*Payload{}
	for _, p := range e.sortedProviders() {
		ns := p.Namespace()
		keys := append([]string{}, p.Keys()...)
		sort.Strings(keys)
		for _, k := range keys {
			data, err := p.GetState(k)
			if err != nil {
				return nil, errors.Wrapf(err, "could not get state for %s", ns.SnapshotKey(k))
			}
			payloads = append(payloads, &Payload{
				Namespace: ns,
				Key:       k,
				Data:      data,
			})
		}
	}
	return payloads, nil
}

func (e *Engine) sortedProviders() []types.StateProvider {
	provs := append([]types.StateProvider{}, e.providers...)
	sort.SliceStable(provs, func(i, j int) bool {
		return provs[i].Namespace() < provs[j].Namespace()
	})
	return provs
}

// List returns the stored snapshots, oldest first.
func (e *Engine) List() ([]Info, error) {
	iter := e.db.NewIterator(util.BytesPrefix([]byte(snapshotPrefix)), nil)
	defer iter.Release()

	infos := []Info{}
	for iter.Next() {
		snap := &Snapshot{}
		if err := json.Unmarshal(iter.Value(), snap); err != nil {
			return nil, errors.Wrapf(err, "could not decode snapshot %s", iter.Key())
		}
		infos = append(infos, Info{Version: snap.Version, Hash: snap.Hash})
	}
	if err := iter.Error(); err != nil {
		return nil, errors.Wrap(err, "could not list snapshots")
	}
	return infos, nil
}

// LoadLatest restores every provider from the latest stored snapshot.
// It returns false when there is nothing to load.
func (e *Engine) LoadLatest(ctx context.Context) (bool, error) {
	snap, err := e.latest()
	if errors.Is(err, ErrNoSnapshot) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	hash := hashPayloads(snap.Payloads)
	if hex.EncodeToString(hash) != snap.Hash {
		return false, errors.Wrapf(ErrSnapshotHashMismatch, "version %d", snap.Version)
	}

	for _, pl := range snap.Payloads {
		p, ok := e.namespaces[pl.Namespace]
		if !ok {
			return false, errors.Wrapf(types.ErrInvalidSnapshotNamespace, "namespace %q", pl.Namespace)
		}
		if err := p.LoadState(ctx, pl.Key, pl.Data); err != nil {
			return false, errors.Wrapf(err, "could not load state for %s", pl.Namespace.SnapshotKey(pl.Key))
		}
	}

	e.version, e.hash = snap.Version, hash
	e.log.Info("snapshot loaded",
		logging.Uint64("version", snap.Version),
		logging.String("hash", snap.Hash),
	)
	return true, nil
}

func (e *Engine) latest() (*Snapshot, error) {
	key, err := e.db.Get([]byte(latestKey), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, errors.Wrap(err, "could not read latest snapshot version")
	}
	buf, err := e.db.Get(key, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read snapshot %s", key)
	}
	snap := &Snapshot{}
	if err := json.Unmarshal(buf, snap); err != nil {
		return nil, errors.Wrapf(err, "could not decode snapshot %s", key)
	}
	return snap, nil
}

func (e *Engine) Close() error {
	return e.db.Close()
}

func versionKey(v uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", snapshotPrefix, v))
}

func hashPayloads(payloads []*Payload) []byte {
	var buf bytes.Buffer
	for _, pl := range payloads {
		buf.WriteString(pl.Namespace.SnapshotKey(pl.Key))
		buf.Write(pl.Data)
	}
	return crypto.Hash(buf.Bytes())
}
