// Copyright 2021 Airbus Defence and Space
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package blockcache

import (
	"errors"
	"fmt"
	"io"

	"golang.org/x/sync/singleflight"
)

// KeyReaderAt is the interface that wraps the basic ReadAt method for the specified key
//
// ReadAt reads len(p) bytes from the resource identified by key into p
// starting at offset off. It returns the number of bytes read (0 <= n <= len(p)) and
// any error encountered. When ReadAt returns n < len(p), it returns a non-nil error
// explaining why more bytes were not returned.
//
// Clients of ReadAt can execute parallel ReadAt calls on the same input source.
type KeyReaderAt interface {
	ReadAt(key string, p []byte, off int64) (int, error)
}

// KeySizer returns the size in bytes of the resource identified by key.
type KeySizer interface {
	Size(key string) (int64, error)
}

// Cacher is the interface that wraps block caching functionality
//
// Add inserts data to the cache for the given key and blockID.
//
// Get fetches the data for the given key and blockID. It returns
// the data and wether the data was found in the cache or not
//
// PurgeKey empties the underlying cache for the given key, Purge empties it
// for all keys
type Cacher interface {
	Add(key string, blockID uint, data []byte)
	Get(key string, blockID uint) ([]byte, bool)
	PurgeKey(key string)
	Purge()
}

// BlockCache caches fixed-sized chunks of a KeyReaderAt, and exposes a KeyReaderAt
// that feeds primarily from its internal cache, ensuring that concurrent requests
// for the same block only result in a single call to the source reader.
type BlockCache struct {
	blockSize int64
	group     singleflight.Group
	cache     Cacher
	reader    KeyReaderAt
}

// New creates a BlockCache reading blocks of blockSize bytes from reader.
// blockSize defaults to 64k if 0.
func New(reader KeyReaderAt, cache Cacher, blockSize uint) *BlockCache {
	if blockSize == 0 {
		blockSize = 64 * 1024
	}
	return &BlockCache{
		cache:     cache,
		blockSize: int64(blockSize),
		reader:    reader,
	}
}

func (b *BlockCache) PurgeKey(key string) {
	b.cache.PurgeKey(key)
}

func (b *BlockCache) Purge() {
	b.cache.Purge()
}

// Size forwards to the underlying reader if it implements KeySizer.
func (b *BlockCache) Size(key string) (int64, error) {
	if s, ok := b.reader.(KeySizer); ok {
		return s.Size(key)
	}
	return 0, fmt.Errorf("size of %s: reader does not expose sizes", key)
}

// ReadAt implements KeyReaderAt. io.EOF is returned if fewer than len(p)
// bytes are available at off.
func (b *BlockCache) ReadAt(key string, p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, errors.New("negative offset")
	}
	if len(p) == 0 {
		return 0, nil
	}
	written := 0
	first := off / b.blockSize
	last := (off + int64(len(p)) - 1) / b.blockSize
	for id := first; id <= last; id++ {
		data, err := b.getBlock(key, id)
		if err != nil {
			return written, err
		}
		start := int64(0)
		if id == first {
			start = off - id*b.blockSize
		}
		if start >= int64(len(data)) {
			return written, io.EOF
		}
		written += copy(p[written:], data[start:])
		if int64(len(data)) < b.blockSize && written < len(p) {
			return written, io.EOF
		}
	}
	return written, nil
}

func (b *BlockCache) blockKey(key string, id int64) string {
	return fmt.Sprintf("%s-%d", key, id)
}

func (b *BlockCache) getBlock(key string, id int64) ([]byte, error) {
	if data, ok := b.cache.Get(key, uint(id)); ok {
		return data, nil
	}
	v, err, _ := b.group.Do(b.blockKey(key, id), func() (interface{}, error) {
		if data, ok := b.cache.Get(key, uint(id)); ok {
			return data, nil
		}
		buf := make([]byte, b.blockSize)
		n, err := b.reader.ReadAt(key, buf, id*b.blockSize)
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		buf = buf[0:n]
		b.cache.Add(key, uint(id), buf)
		return buf, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}
