package kv

import (
	"sort"
	"strings"
	"sync"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/flowkit/flowkit/apperr"
	"github.com/flowkit/flowkit/logger"
)

// Badger is a Store backed by an embedded github.com/dgraph-io/badger/v4
// database. Buffers live in memory while a run is active; Flush persists
// the current contents of a path's buffer to disk, and Open(ModeRead)
// transparently loads from disk on a cache miss.
type Badger struct {
	db  *badger.DB
	log *logger.Logger

	mu      sync.Mutex
	buffers map[string]*Buffer
}

// NewBadger opens (creating if absent) a badger database at dir.
func NewBadger(dir string) (*Badger, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Badger{
		db:      db,
		log:     logger.Get("kv.badger"),
		buffers: make(map[string]*Buffer),
	}, nil
}

// Open implements Store.
func (b *Badger) Open(path string, mode Mode) (*Buffer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if buf, ok := b.buffers[path]; ok && mode != ModeWrite {
		return buf, nil
	}

	switch mode {
	case ModeRead:
		data, err := b.loadLocked(path)
		if err != nil {
			return nil, err
		}
		buf := NewBuffer(data)
		b.buffers[path] = buf
		return buf, nil
	case ModeWrite:
		buf := NewBuffer(nil)
		b.buffers[path] = buf
		return buf, nil
	case ModeAppend:
		data, err := b.loadLocked(path)
		if err != nil && !isNotFound(err) {
			return nil, err
		}
		buf := NewBuffer(data)
		b.buffers[path] = buf
		return buf, nil
	default:
		buf := NewBuffer(nil)
		b.buffers[path] = buf
		return buf, nil
	}
}

func (b *Badger) loadLocked(path string) ([]byte, error) {
	var data []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(path))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return notFound(path)
			}
			return err
		}
		return item.Value(func(val []byte) error {
			data = append(data, val...)
			return nil
		})
	})
	return data, err
}

func isNotFound(err error) bool {
	return apperr.Is(err, apperr.ErrCodeNotFound)
}

// Flush implements Store: writes path's current in-memory contents to the
// badger database.
func (b *Badger) Flush(path string) error {
	b.mu.Lock()
	buf, ok := b.buffers[path]
	b.mu.Unlock()
	if !ok {
		return notFound(path)
	}
	data := buf.Bytes()
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(path), data)
	})
}

// Listdir implements Store: merges in-memory paths with on-disk keys.
func (b *Badger) Listdir(prefix string) ([]string, error) {
	seen := make(map[string]struct{})

	b.mu.Lock()
	for path := range b.buffers {
		if strings.HasPrefix(path, prefix) {
			seen[path] = struct{}{}
		}
	}
	b.mu.Unlock()

	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
			seen[string(it.Item().KeyCopy(nil))] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(seen))
	for path := range seen {
		out = append(out, path)
	}
	sort.Strings(out)
	return out, nil
}

// Destroy implements Store: closes the underlying database.
func (b *Badger) Destroy() error {
	b.mu.Lock()
	b.buffers = make(map[string]*Buffer)
	b.mu.Unlock()
	return b.db.Close()
}

var _ Store = (*Badger)(nil)
