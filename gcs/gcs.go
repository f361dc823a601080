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

// Package gcs reads objects of cloud storage buckets through
// cloud.google.com/go/storage range requests, with block and object size
// caching. Keys are of the form bucket/object.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"syscall"

	"github.com/airbusgeo/covkit/internal/blockcache"

	"cloud.google.com/go/storage"
	lru "github.com/hashicorp/golang-lru"
	"google.golang.org/api/googleapi"
)

// Reader implements ReadAt(key, p, off) and Size(key) over cloud storage
// objects, so that it can be handed to raw.Open.
type Reader struct {
	ctx                context.Context
	client             *storage.Client
	cacher             blockcache.Cacher
	blockSize          int
	maxCachedBlocks    int
	maxCachedMetadatas int
	blockCache         *blockcache.BlockCache
	sizecache          *lru.Cache
	billingProjectID   string
}

//Option is an option that can be passed to NewReader
type Option func(o *Reader)

// Client sets the cloud.google.com/go/storage.Client that will be used
// by the reader
func Client(cl *storage.Client) Option {
	return func(o *Reader) {
		o.client = cl
	}
}

// Cacher allows to plugin a custom cache mechanism instead of the default in
// memory lru cache. MaxCachedBlocks() will not be honored if you provide your
// own cacher, it is up to your cacher implementation to handle block eviction
func Cacher(cacher blockcache.Cacher) Option {
	return func(o *Reader) {
		o.cacher = cacher
	}
}

// BlockSize sets the size of requests that will go out to the storage API.
// Defaults to 1Mb
func BlockSize(bs int) Option {
	if bs < 1 {
		panic("invalid blocksize")
	}
	return func(o *Reader) {
		o.blockSize = bs
	}
}

// MaxCachedBlocks sets the number of blocks to keep in the lru cache.
// Defaults to 1000
func MaxCachedBlocks(n int) Option {
	if n < 1 {
		panic("invalid max cached blocks")
	}
	return func(o *Reader) {
		o.maxCachedBlocks = n
	}
}

// BillingProject sets the project name which should be billed for the requests.
// This is mandatory if the bucket is in requester-pays mode.
func BillingProject(projectID string) Option {
	return func(o *Reader) {
		o.billingProjectID = projectID
	}
}

//MaxCachedMetadatas sets the number of objects whose size will be kept in cache.
//This also accounts for non-existing objects (i.e. calling Size() twice on a non-exisiting
//object will not result in an API call going to the storage endpoint the second time
func MaxCachedMetadatas(n int) Option {
	if n < 1 {
		panic("invalid max cached metadatas")
	}
	return func(o *Reader) {
		o.maxCachedMetadatas = n
	}
}

// NewReader creates a Reader. A default storage client is created if none is
// given with Client(). ctx is used for all subsequent storage requests.
func NewReader(ctx context.Context, opts ...Option) (*Reader, error) {
	r := &Reader{
		ctx:                ctx,
		blockSize:          1024 * 1024,
		maxCachedBlocks:    1000,
		maxCachedMetadatas: 10000,
	}
	for _, o := range opts {
		o(r)
	}
	var err error
	r.sizecache, err = lru.New(r.maxCachedMetadatas)
	if err != nil {
		return nil, fmt.Errorf("size cache: %w", err)
	}
	if r.client == nil {
		cl, err := storage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("storage.newclient: %w", err)
		}
		r.client = cl
	}
	if r.cacher == nil {
		r.cacher, err = blockcache.NewCache(uint(r.maxCachedBlocks))
		if err != nil {
			return nil, fmt.Errorf("block cache: %w", err)
		}
	}
	r.blockCache = blockcache.New(fetcher{r}, r.cacher, uint(r.blockSize))
	return r, nil
}

func gcsparse(gsUri string) (bucket, object string) {
	gsUri = strings.TrimPrefix(gsUri, "gs://")
	if len(gsUri) > 0 && gsUri[0] == '/' {
		gsUri = gsUri[1:]
	}
	firstSlash := strings.Index(gsUri, "/")
	if firstSlash == -1 {
		bucket = gsUri
		object = ""
	} else {
		bucket = gsUri[0:firstSlash]
		object = gsUri[firstSlash+1:]
	}
	return
}

func (gcs *Reader) precheck(key string, off int64) error {
	s, ok := gcs.sizecache.Get(key)
	if ok {
		s64 := s.(int64)
		if s64 == -1 {
			return syscall.ENOENT
		}
		if off >= s64 {
			return io.EOF
		}
	}
	return nil
}

func (gcs *Reader) bucket(name string) *storage.BucketHandle {
	gbucket := gcs.client.Bucket(name)
	if gcs.billingProjectID != "" {
		gbucket = gbucket.UserProject(gcs.billingProjectID)
	}
	return gbucket
}

// ReadAt reads len(p) bytes of object key at offset off, going through the
// block cache.
func (gcs *Reader) ReadAt(key string, p []byte, off int64) (int, error) {
	if err := gcs.precheck(key, off); err != nil {
		return 0, err
	}
	return gcs.blockCache.ReadAt(key, p, off)
}

// Size returns the size of object key. Missing objects return an error
// matching os.ErrNotExist.
func (gcs *Reader) Size(key string) (int64, error) {
	if s, ok := gcs.sizecache.Get(key); ok {
		if size := s.(int64); size != -1 {
			return size, nil
		}
		return 0, syscall.ENOENT
	}
	bucket, object := gcsparse(key)
	if len(bucket) == 0 || len(object) == 0 {
		return 0, fmt.Errorf("invalid key %q", key)
	}
	attrs, err := gcs.bucket(bucket).Object(object).Attrs(gcs.ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			gcs.sizecache.Add(key, int64(-1))
			return 0, syscall.ENOENT
		}
		return 0, fmt.Errorf("attrs of gs://%s/%s: %w", bucket, object, err)
	}
	gcs.sizecache.Add(key, attrs.Size)
	return attrs.Size, nil
}

// fetcher issues the uncached range requests on behalf of the block cache.
type fetcher struct {
	gcs *Reader
}

func (f fetcher) ReadAt(key string, p []byte, off int64) (int, error) {
	gcs := f.gcs
	bucket, object := gcsparse(key)
	if len(bucket) == 0 || len(object) == 0 {
		return 0, fmt.Errorf("invalid key %q", key)
	}
	r, err := gcs.bucket(bucket).Object(object).NewRangeReader(gcs.ctx, off, int64(len(p)))
	if err != nil {
		var gerr *googleapi.Error
		if off > 0 && errors.As(err, &gerr) && gerr.Code == 416 {
			return 0, io.EOF
		}
		if off == 0 && errors.Is(err, storage.ErrObjectNotExist) {
			gcs.sizecache.Add(key, int64(-1))
			return 0, syscall.ENOENT
		}
		return 0, fmt.Errorf("new reader for gs://%s/%s: %w", bucket, object, err)
	}
	if sz := r.Attrs.Size; sz > 0 {
		gcs.sizecache.Add(key, sz)
	}
	defer r.Close()
	n, err := io.ReadFull(r, p)
	if err == io.ErrUnexpectedEOF {
		err = io.EOF
	}
	return n, err
}
