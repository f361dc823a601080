package main

import (
	"context"
	"fmt"
	"image"
	"io"
	"strconv"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/airbusgeo/covkit"
	"github.com/airbusgeo/covkit/gcs"
	"github.com/airbusgeo/covkit/raw"
	"github.com/airbusgeo/osio"
	osiogcs "github.com/airbusgeo/osio/gcs"
	"golang.org/x/image/tiff"
	"google.golang.org/api/option"
)

// splitGS splits a gs://bucket/object url. isGS is false when file is not a
// gs:// url.
func splitGS(file string) (bucket, object string, isGS bool) {
	rest, isGS := strings.CutPrefix(file, "gs://")
	if !isGS {
		return "", "", false
	}
	bucket, object, _ = strings.Cut(rest, "/")
	return bucket, strings.Trim(object, "/"), true
}

type keyedReader interface {
	raw.KeyReaderAt
	Size(key string) (int64, error)
}

type gsOpts struct {
	blockSize       string
	numCachedBlocks int
	anonymous       bool
	osio            bool
}

// parseBlockSize parses sizes such as 512k or 1M.
func parseBlockSize(s string) (int, error) {
	mult := 1
	switch {
	case strings.HasSuffix(strings.ToLower(s), "k"):
		mult = 1024
	case strings.HasSuffix(strings.ToLower(s), "m"):
		mult = 1024 * 1024
	}
	if mult > 1 {
		s = s[:len(s)-1]
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid block size %q", s)
	}
	return n * mult, nil
}

// openReader returns the reader and key to use for file, which is either a
// local path or a gs://bucket/object url.
func openReader(ctx context.Context, file string, gso gsOpts) (keyedReader, string, error) {
	bucket, object, isGS := splitGS(file)
	if !isGS {
		return &raw.Files{}, file, nil
	}
	if bucket == "" || object == "" {
		return nil, "", fmt.Errorf("invalid gs url %s", file)
	}
	if gso.numCachedBlocks < 1 {
		return nil, "", fmt.Errorf("invalid gs block count %d", gso.numCachedBlocks)
	}
	var copts []option.ClientOption
	if gso.anonymous {
		copts = append(copts, option.WithoutAuthentication())
	}
	stcl, err := storage.NewClient(ctx, copts...)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create gcs storage client: %w", err)
	}
	key := bucket + "/" + object
	if !gso.osio {
		bs, err := parseBlockSize(gso.blockSize)
		if err != nil {
			return nil, "", err
		}
		gr, err := gcs.NewReader(ctx, gcs.Client(stcl), gcs.BlockSize(bs), gcs.MaxCachedBlocks(gso.numCachedBlocks))
		if err != nil {
			return nil, "", fmt.Errorf("gcs.newreader: %w", err)
		}
		return gr, key, nil
	}
	gs, err := osiogcs.Handle(ctx, osiogcs.GCSClient(stcl))
	if err != nil {
		return nil, "", fmt.Errorf("osio gcs.handle: %w", err)
	}
	gsa, err := osio.NewAdapter(gs, osio.BlockSize(gso.blockSize), osio.NumCachedBlocks(gso.numCachedBlocks))
	if err != nil {
		return nil, "", fmt.Errorf("osio.newadapter: %w", err)
	}
	return gsa, key, nil
}

// readerAt binds a keyed reader to a single key.
type readerAt struct {
	r   keyedReader
	key string
}

func (ra readerAt) ReadAt(p []byte, off int64) (int, error) {
	return ra.r.ReadAt(ra.key, p, off)
}

func isTIFF(file string) bool {
	l := strings.ToLower(file)
	return strings.HasSuffix(l, ".tif") || strings.HasSuffix(l, ".tiff")
}

func decodeTIFF(r keyedReader, key string) (image.Image, error) {
	size, err := r.Size(key)
	if err != nil {
		return nil, &covkit.DataAccessError{Op: "size " + key, Err: err}
	}
	img, err := tiff.Decode(io.NewSectionReader(readerAt{r: r, key: key}, 0, size))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return img, nil
}
