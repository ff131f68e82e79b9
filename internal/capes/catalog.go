// Package capes holds the static cape catalog bundled with the binary.
package capes

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"
)

//go:embed capes.json
var rawCatalog []byte

// Record is one catalog entry, keyed by texture content hash. The bundled
// file also carries image/link fields; those never leave the service.
type Record struct {
	Hash        string `json:"hash"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Catalog is a read-only hash-keyed lookup over the bundled cape list.
// Decoding happens once, on first access; the result is immutable and safe
// for concurrent readers.
type Catalog struct {
	once sync.Once

	total   int
	records []Record
	byHash  map[string]Record
	err     error
}

func NewCatalog() *Catalog {
	return &Catalog{}
}

func (c *Catalog) load() {
	c.once.Do(func() {
		var data struct {
			TotalCapes int      `json:"totalCapes"`
			Capes      []Record `json:"capes"`
		}
		if err := json.Unmarshal(rawCatalog, &data); err != nil {
			c.err = fmt.Errorf("decode cape catalog: %w", err)
			return
		}

		c.total = data.TotalCapes
		c.records = data.Capes
		c.byHash = make(map[string]Record, len(data.Capes))
		for _, rec := range data.Capes {
			c.byHash[rec.Hash] = rec
		}
	})
}

// All returns the full catalog and its declared total.
func (c *Catalog) All() (int, []Record, error) {
	c.load()
	if c.err != nil {
		return 0, nil, c.err
	}
	return c.total, c.records, nil
}

// ByHash looks up a single cape by texture hash.
func (c *Catalog) ByHash(hash string) (Record, bool) {
	c.load()
	if c.err != nil {
		return Record{}, false
	}
	rec, ok := c.byHash[hash]
	return rec, ok
}
