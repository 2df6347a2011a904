// Package cache memoizes solved cases in an embedded Badger store, so a
// repeated or resumed pass can skip the engine for work already done.
// Entries are scoped by the model checksum: changing the model strands
// every prior result.
package cache

import (
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/pkg/errors"
	"github.com/reformlab/reformer/internal/simulator"
	"github.com/reformlab/reformer/pkg/bytes"
	"github.com/vmihailenco/msgpack/v5"
)

var (
	// Prefix names to distinguish between cached results and counters.
	prefixResults  = []byte{0x0}
	prefixCounters = []byte{0x1}

	// ErrMiss is returned when no result is cached for a case.
	ErrMiss = errors.New("not cached")
)

// Store wraps the Badger handle behind the two operations the driver
// needs: look a case up before solving, record it after.
type Store struct {
	// conn is the underlying handle to the db.
	conn *badger.DB

	// The path to the Badger database directory.
	path string

	ttl time.Duration

	vlogTicker          *time.Ticker // runs every 1m, check size of vlog and run GC conditionally.
	mandatoryVlogTicker *time.Ticker // runs every 10m, we always run vlog GC.
}

// Options contains all the configuration used to open the Badger db.
type Options struct {
	// Path is the directory path to the Badger db to use.
	Path string

	// BadgerOptions contains any specific Badger options you might
	// want to specify.
	BadgerOptions *badger.Options

	// NoSync causes the database to skip fsync calls after each
	// write. Acceptable here: a lost entry only costs one re-solve.
	NoSync bool

	// TTL expires cached results after the given duration. Zero
	// keeps them forever.
	TTL time.Duration

	// ValueLogGC enables a periodic goroutine that does a garbage
	// collection of the value log while the underlying Badger is online.
	ValueLogGC bool

	// GCInterval is the interval between conditionally running the garbage
	// collection process, based on the size of the vlog. By default, runs every 1m.
	GCInterval time.Duration

	// MandatoryGCInterval is the interval between mandatory runs of the
	// garbage collection process. By default, runs every 10m.
	MandatoryGCInterval time.Duration

	// GCThreshold sets threshold in bytes for the vlog size to be included in the
	// garbage collection cycle. By default, 1GB.
	GCThreshold int64
}

// Open takes a directory path and returns a connected result cache with
// default options.
func Open(path string) (*Store, error) {
	return New(Options{Path: path})
}

// New uses the supplied options to open the Badger db and prepare it for
// use as a result cache.
func New(options Options) (*Store, error) {
	if options.BadgerOptions == nil {
		defaultOpts := badger.DefaultOptions(options.Path).WithLogger(&storeLogger{})
		options.BadgerOptions = &defaultOpts
	}
	options.BadgerOptions.SyncWrites = !options.NoSync

	handle, err := badger.Open(*options.BadgerOptions)
	if err != nil {
		return nil, err
	}

	store := &Store{
		conn: handle,
		path: options.Path,
		ttl:  options.TTL,
	}

	if options.ValueLogGC {
		var gcInterval time.Duration
		var mandatoryGCInterval time.Duration
		var threshold int64

		if gcInterval = 1 * time.Minute; options.GCInterval != 0 {
			gcInterval = options.GCInterval
		}
		if mandatoryGCInterval = 10 * time.Minute; options.MandatoryGCInterval != 0 {
			mandatoryGCInterval = options.MandatoryGCInterval
		}
		if threshold = int64(1 << 30); options.GCThreshold != 0 {
			threshold = options.GCThreshold
		}

		store.vlogTicker = time.NewTicker(gcInterval)
		store.mandatoryVlogTicker = time.NewTicker(mandatoryGCInterval)
		go store.runVlogGC(handle, threshold)
	}

	return store, nil
}

func (s *Store) runVlogGC(db *badger.DB, threshold int64) {
	// Get initial size on start.
	_, lastVlogSize := db.Size()

	runGC := func() {
		var err error
		for err == nil {
			// If a GC is successful, immediately run it again.
			err = db.RunValueLogGC(0.7)
		}
		_, lastVlogSize = db.Size()
	}

	for {
		select {
		case <-s.vlogTicker.C:
			_, currentVlogSize := db.Size()
			if currentVlogSize < lastVlogSize+threshold {
				continue
			}
			runGC()
		case <-s.mandatoryVlogTicker.C:
			runGC()
		}
	}
}

// Close is used to gracefully close the DB connection.
func (s *Store) Close() error {
	if s.vlogTicker != nil {
		s.vlogTicker.Stop()
	}
	if s.mandatoryVlogTicker != nil {
		s.mandatoryVlogTicker.Stop()
	}
	return s.conn.Close()
}

func resultKey(model, caseKey string) []byte {
	key := make([]byte, 0, len(prefixResults)+len(model)+1+len(caseKey))
	key = append(key, prefixResults...)
	key = append(key, model...)
	key = append(key, '|')
	key = append(key, caseKey...)
	return key
}

// Get looks up the cached result for a case under the given model
// checksum. Absent or expired entries return ErrMiss.
func (s *Store) Get(model, caseKey string) (*simulator.Result, error) {
	result := new(simulator.Result)
	err := s.conn.View(func(tx *badger.Txn) error {
		item, err := tx.Get(resultKey(model, caseKey))
		if err != nil {
			switch err {
			case badger.ErrKeyNotFound:
				return ErrMiss
			default:
				return err
			}
		}
		val, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		return msgpack.Unmarshal(val, result)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Put records a solved case under the given model checksum.
func (s *Store) Put(model, caseKey string, result *simulator.Result) error {
	buf, err := msgpack.Marshal(result)
	if err != nil {
		return err
	}
	return s.conn.Update(func(tx *badger.Txn) error {
		entry := badger.NewEntry(resultKey(model, caseKey), buf)
		if s.ttl > 0 {
			entry = entry.WithTTL(s.ttl)
		}
		return tx.SetEntry(entry)
	})
}

// DropModel deletes every cached result recorded under the given model
// checksum, reclaiming space after a model change.
func (s *Store) DropModel(model string) error {
	prefix := resultKey(model, "")

	// we manage the transaction manually in order to avoid ErrTxnTooBig errors
	tx := s.conn.NewTransaction(true)
	it := tx.NewIterator(badger.IteratorOptions{
		PrefetchValues: false,
		Reverse:        false,
	})

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		key := it.Item().KeyCopy(nil)
		if err := tx.Delete(key); err != nil {
			if err == badger.ErrTxnTooBig {
				it.Close()
				if err = tx.Commit(); err != nil {
					return err
				}
				return s.DropModel(model)
			}
			return err
		}
	}
	it.Close()
	return tx.Commit()
}

// Entries counts the cached results across all models.
func (s *Store) Entries() (uint64, error) {
	var count uint64
	err := s.conn.View(func(tx *badger.Txn) error {
		it := tx.NewIterator(badger.IteratorOptions{
			PrefetchValues: false,
			Reverse:        false,
		})
		defer it.Close()

		for it.Seek(prefixResults); it.ValidForPrefix(prefixResults); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func counterKey(name string) []byte {
	return append(append([]byte{}, prefixCounters...), name...)
}

// Bump atomically increments the named counter and returns its new value.
// The driver keeps its lifetime solve and hit tallies here so they survive
// restarts.
func (s *Store) Bump(name string) (uint64, error) {
	var value uint64
	err := s.conn.Update(func(tx *badger.Txn) error {
		var buf []byte
		item, err := tx.Get(counterKey(name))
		switch err {
		case nil:
			if buf, err = item.ValueCopy(nil); err != nil {
				return err
			}
		case badger.ErrKeyNotFound:
		default:
			return err
		}

		buf = bytes.Increment(buf)
		value = bytes.ToUint64(buf)
		return tx.Set(counterKey(name), buf)
	})
	if err != nil {
		return 0, err
	}
	return value, nil
}

// Counter reads the named counter, zero when it was never bumped.
func (s *Store) Counter(name string) (uint64, error) {
	var value uint64
	err := s.conn.View(func(tx *badger.Txn) error {
		item, err := tx.Get(counterKey(name))
		switch err {
		case nil:
		case badger.ErrKeyNotFound:
			return nil
		default:
			return err
		}
		val, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		value = bytes.ToUint64(val)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return value, nil
}
