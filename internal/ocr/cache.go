package ocr

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/pierrec/lz4/v4"
)

// TextCache stores extraction results keyed by file content hash.
type TextCache interface {
	Get(key string) (ExtractionResult, bool, error)
	Put(key string, res ExtractionResult) error
}

// BadgerCache keeps lz4-compressed results in a badger store with a TTL.
type BadgerCache struct {
	db  *badger.DB
	ttl time.Duration
}

type cacheEntry struct {
	Text     string   `json:"text"`
	Pages    int      `json:"pages"`
	Source   string   `json:"source"`
	Method   string   `json:"method"`
	Warnings []string `json:"warnings,omitempty"`
}

// OpenBadgerCache opens (or creates) the cache under dir. An empty dir opens
// an in-memory store.
func OpenBadgerCache(dir string, ttl time.Duration) (*BadgerCache, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open text cache: %w", err)
	}
	return &BadgerCache{db: db, ttl: ttl}, nil
}

func (c *BadgerCache) Close() error {
	return c.db.Close()
}

func (c *BadgerCache) Get(key string) (ExtractionResult, bool, error) {
	var raw []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ExtractionResult{}, false, nil
	}
	if err != nil {
		return ExtractionResult{}, false, err
	}

	plain, err := decompress(raw)
	if err != nil {
		return ExtractionResult{}, false, err
	}
	var e cacheEntry
	if err := json.Unmarshal(plain, &e); err != nil {
		return ExtractionResult{}, false, fmt.Errorf("decode cache entry: %w", err)
	}
	return ExtractionResult{
		Text:       e.Text,
		Pages:      e.Pages,
		SourceType: e.Source,
		Method:     e.Method,
		Warnings:   e.Warnings,
	}, true, nil
}

func (c *BadgerCache) Put(key string, res ExtractionResult) error {
	b, err := json.Marshal(cacheEntry{
		Text:     res.Text,
		Pages:    res.Pages,
		Source:   res.SourceType,
		Method:   res.Method,
		Warnings: res.Warnings,
	})
	if err != nil {
		return err
	}
	packed, err := compress(b)
	if err != nil {
		return err
	}
	return c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), packed)
		if c.ttl > 0 {
			entry = entry.WithTTL(c.ttl)
		}
		return txn.SetEntry(entry)
	})
}

func compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("lz4 write: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("lz4 close: %w", err)
	}
	return buf.Bytes(), nil
}

func decompress(data []byte) ([]byte, error) {
	out, err := io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
	if err != nil {
		return nil, fmt.Errorf("lz4 read: %w", err)
	}
	return out, nil
}

// contentKey is "pdf-text:" + sha256 of the file bytes.
func contentKey(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return "pdf-text:" + hex.EncodeToString(h.Sum(nil)), nil
}
