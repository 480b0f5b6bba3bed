package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/david-revell/rag-agent/internal/port"
)

var bucketEmbeddings = []byte("embeddings")

// CachedEmbedder wraps another embedder with a BoltDB cache keyed by
// model and text, so an unchanged corpus is not re-embedded on every
// start. Only provider responses are cached; the corpus index itself
// is always rebuilt from the source documents.
type CachedEmbedder struct {
	inner port.Embedder
	db    *bbolt.DB
}

// NewCachedEmbedder opens (or creates) the cache database at path.
func NewCachedEmbedder(inner port.Embedder, path string) (*CachedEmbedder, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open embedding cache: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketEmbeddings)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache bucket: %w", err)
	}

	return &CachedEmbedder{inner: inner, db: db}, nil
}

// Embed serves vectors from the cache where possible and forwards only
// the misses to the wrapped embedder. Position alignment with the
// input is preserved.
func (e *CachedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vectors := make([][]float32, len(texts))
	var missIdx []int

	err := e.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketEmbeddings)
		for i, text := range texts {
			data := b.Get(e.cacheKey(text))
			if data == nil {
				missIdx = append(missIdx, i)
				continue
			}
			var vec []float32
			if err := json.Unmarshal(data, &vec); err != nil || len(vec) == 0 {
				missIdx = append(missIdx, i)
				continue
			}
			vectors[i] = vec
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cache lookup failed: %w", err)
	}

	if len(missIdx) == 0 {
		return vectors, nil
	}

	missTexts := make([]string, len(missIdx))
	for i, idx := range missIdx {
		missTexts[i] = texts[idx]
	}

	fresh, err := e.inner.Embed(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(fresh) != len(missTexts) {
		return nil, fmt.Errorf("embedding count mismatch: sent %d texts, got %d vectors", len(missTexts), len(fresh))
	}

	err = e.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketEmbeddings)
		for i, idx := range missIdx {
			vectors[idx] = fresh[i]
			data, err := json.Marshal(fresh[i])
			if err != nil {
				return err
			}
			if err := b.Put(e.cacheKey(texts[idx]), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cache store failed: %w", err)
	}

	return vectors, nil
}

func (e *CachedEmbedder) cacheKey(text string) []byte {
	h := sha256.New()
	h.Write([]byte(e.inner.ModelName()))
	h.Write([]byte{0})
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return []byte(hex.EncodeToString(sum[:16]))
}

func (e *CachedEmbedder) Dimension() int {
	return e.inner.Dimension()
}

func (e *CachedEmbedder) ModelName() string {
	return e.inner.ModelName()
}

// Close releases the cache database.
func (e *CachedEmbedder) Close() error {
	return e.db.Close()
}
