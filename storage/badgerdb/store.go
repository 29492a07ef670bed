// Package badgerdb keeps users, teachers and sessions in an embedded BadgerDB.
//
// Values are JSON records. Keys:
//
//	user:<id>          user record
//	user_email:<email> user id
//	teacher:<id>       teacher record
//	session:<id>       session record, roster included
//
// IDs are zero padded so prefix iteration returns records in ID order.
package badgerdb

import (
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/jrsteele09/go-yoga-server/internal/errors"
)

const (
	userPrefix      = "user:"
	userEmailPrefix = "user_email:"
	teacherPrefix   = "teacher:"
	sessionPrefix   = "session:"

	seqBandwidth = 100
)

// Store owns the badger handle and the ID sequences.
type Store struct {
	db         *badger.DB
	userSeq    *badger.Sequence
	teacherSeq *badger.Sequence
	sessionSeq *badger.Sequence
}

// Open opens (or creates) a store in folder. An empty folder opens an in-memory store.
func Open(folder string) (*Store, error) {
	opts := badger.DefaultOptions(folder).WithLoggingLevel(badger.ERROR)
	if folder == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("[badgerdb.Open] %w", err)
	}

	s := &Store{db: db}
	for key, seq := range map[string]**badger.Sequence{
		"seq:user":    &s.userSeq,
		"seq:teacher": &s.teacherSeq,
		"seq:session": &s.sessionSeq,
	} {
		if *seq, err = db.GetSequence([]byte(key), seqBandwidth); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("[badgerdb.Open] sequence %s: %w", key, err)
		}
	}
	return s, nil
}

// Close releases the sequences and closes the database.
func (s *Store) Close() error {
	for _, seq := range []*badger.Sequence{s.userSeq, s.teacherSeq, s.sessionSeq} {
		if seq != nil {
			_ = seq.Release()
		}
	}
	return s.db.Close()
}

func (s *Store) Users() *UserRepo {
	return &UserRepo{store: s}
}

func (s *Store) Teachers() *TeacherRepo {
	return &TeacherRepo{store: s}
}

func (s *Store) Sessions() *SessionRepo {
	return &SessionRepo{store: s}
}

// nextID hands out IDs starting at 1; badger sequences start at 0.
func nextID(seq *badger.Sequence) (int64, error) {
	n, err := seq.Next()
	if err != nil {
		return 0, err
	}
	return int64(n) + 1, nil
}

func idKey(prefix string, id int64) []byte {
	return []byte(fmt.Sprintf("%s%020d", prefix, id))
}

func getJSON(txn *badger.Txn, key []byte, dst any) error {
	item, err := txn.Get(key)
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, dst)
	})
}

func setJSON(txn *badger.Txn, key []byte, src any) error {
	data, err := json.Marshal(src)
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	return txn.Set(key, data)
}

// scanJSON decodes every value under prefix, in key order.
func scanJSON[T any](txn *badger.Txn, prefix string) ([]*T, error) {
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	var out []*T
	p := []byte(prefix)
	for it.Seek(p); it.ValidForPrefix(p); it.Next() {
		v := new(T)
		if err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		}); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// notFound converts badger's missing-key error into ErrNotFound.
func notFound(err error, format string, args ...any) error {
	if errors.Is(err, badger.ErrKeyNotFound) {
		return errors.Wrapf(errors.ErrNotFound, format, args...)
	}
	return err
}
