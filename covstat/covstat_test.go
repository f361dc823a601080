package main

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/airbusgeo/covkit"
	"github.com/airbusgeo/covkit/gcs"
	"github.com/airbusgeo/covkit/raw"
	"github.com/airbusgeo/osio"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/tiff"
	"gopkg.in/yaml.v3"
)

// run executes the root command with args, resetting flags left over from
// previous runs.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	for _, c := range []*cobra.Command{rootCommand, statsCommand, envelopeCommand} {
		for _, fs := range []*pflag.FlagSet{c.Flags(), c.PersistentFlags()} {
			fs.VisitAll(func(f *pflag.Flag) {
				if sv, ok := f.Value.(pflag.SliceValue); ok {
					_ = sv.Replace(nil)
				} else {
					_ = f.Value.Set(f.DefValue)
				}
				f.Changed = false
			})
		}
	}
	out := bytes.Buffer{}
	rootCommand.SetOut(&out)
	rootCommand.SetErr(&out)
	rootCommand.SetArgs(args)
	err := rootCommand.Execute()
	return out.String(), err
}

func writeRaw(t *testing.T, bo binary.ByteOrder, data interface{}) string {
	t.Helper()
	buf := bytes.Buffer{}
	require.NoError(t, binary.Write(&buf, bo, data))
	name := filepath.Join(t.TempDir(), "data.bin")
	require.NoError(t, os.WriteFile(name, buf.Bytes(), 0o644))
	return name
}

func TestParseHelpers(t *testing.T) {
	ctx := context.Background()
	gso := gsOpts{blockSize: "64k", numCachedBlocks: 8, anonymous: true}
	for _, file := range []string{"data/image.bin", "/tmp/gs://x", "gs:/bucket/obj"} {
		r, key, err := openReader(ctx, file, gso)
		require.NoError(t, err, file)
		assert.IsType(t, &raw.Files{}, r, file)
		assert.Equal(t, file, key)
	}
	for _, file := range []string{"gs://", "gs://bucket", "gs://bucket/", "gs://bucket//", "gs:///obj"} {
		_, _, err := openReader(ctx, file, gso)
		assert.Error(t, err, file)
	}
	for in, want := range map[string]string{
		"gs://bucket/obj.tif":          "bucket/obj.tif",
		"gs://bucket//path/to/obj.tif": "bucket/path/to/obj.tif",
		"gs://bucket/path/":            "bucket/path",
	} {
		r, key, err := openReader(ctx, in, gso)
		require.NoError(t, err, in)
		assert.IsType(t, &gcs.Reader{}, r, in)
		assert.Equal(t, want, key, in)
	}
	r, key, err := openReader(ctx, "gs://bucket/obj.tif", gsOpts{blockSize: "64k", numCachedBlocks: 8, anonymous: true, osio: true})
	require.NoError(t, err)
	assert.IsType(t, &osio.Adapter{}, r)
	assert.Equal(t, "bucket/obj.tif", key)
	_, _, err = openReader(ctx, "gs://bucket/obj.tif", gsOpts{blockSize: "0k", numCachedBlocks: 8, anonymous: true})
	assert.Error(t, err)
	_, _, err = openReader(ctx, "gs://bucket/obj.tif", gsOpts{blockSize: "64k", anonymous: true})
	assert.Error(t, err)

	dims, err := parseDims("3x2X4", 3)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 2, 4}, dims)
	_, err = parseDims("3x2", 3)
	assert.Error(t, err)
	_, err = parseDims("3x0", 2)
	assert.Error(t, err)
	_, err = parseDims("ax2", 2)
	assert.Error(t, err)

	nd, err := parseNoData([]string{"1:-9999", "2:0", "1:nan"})
	require.NoError(t, err)
	assert.Len(t, nd[1], 2)
	assert.Equal(t, []float64{0}, nd[2])
	for _, bad := range []string{"-9999", ":1", "x:1", "-1:1", "0:1", "1:abc"} {
		_, err = parseNoData([]string{bad})
		assert.Error(t, err, bad)
	}

	box, err := parseBox("170, -10, -170, 10")
	require.NoError(t, err)
	assert.Equal(t, 20.0, box.Span(0))
	for _, bad := range []string{"1,2,3", "a,0,1,1", "0,10,1,-10"} {
		_, err = parseBox(bad)
		assert.Error(t, err, bad)
	}
}

func TestStatsRaw(t *testing.T) {
	name := writeRaw(t, binary.BigEndian, []uint16{5, 100, 1, 200, 3, 300, 5, 400})
	out, err := run(t, "stats", "--raw", "2x2x2", "--type", "uint16", "--big-endian",
		"--nodata", "1:5", "--exclude-nodata", "--bins", "4", "--block", "1x1", "--yaml", name)
	require.NoError(t, err)
	var rep []bandReport
	require.NoError(t, yaml.Unmarshal([]byte(out), &rep))
	require.Len(t, rep, 2)
	assert.Equal(t, uint64(2), rep[0].Count)
	assert.Equal(t, 1.0, rep[0].Min)
	assert.Equal(t, 3.0, rep[0].Max)
	assert.Equal(t, []float64{5}, rep[0].NoData)
	assert.Equal(t, 100.0, rep[1].Min)
	assert.Equal(t, 400.0, rep[1].Max)
	assert.Equal(t, 250.0, rep[1].Mean)
	require.NotNil(t, rep[1].Histogram)
	assert.Len(t, rep[1].Histogram.Counts, 4)

	// nodata bands use the numbering of the report
	out, err = run(t, "stats", "--raw", "2x2x2", "--type", "uint16", "--big-endian",
		"--nodata", "2:400", "--exclude-nodata", "--yaml", name)
	require.NoError(t, err)
	rep = nil
	require.NoError(t, yaml.Unmarshal([]byte(out), &rep))
	require.Len(t, rep, 2)
	assert.Equal(t, 2, rep[1].Band)
	assert.Equal(t, []float64{400}, rep[1].NoData)
	assert.Equal(t, 300.0, rep[1].Max)
	assert.Empty(t, rep[0].NoData)
	assert.Equal(t, 5.0, rep[0].Max)
	_, err = run(t, "stats", "--raw", "2x2x2", "--type", "uint16", "--nodata", "0:5", name)
	assert.Error(t, err)

	out, err = run(t, "stats", "--raw", "2x2x2", "--type", "uint16", "--big-endian", "--progress", name)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, "50%", lines[0])
	assert.Equal(t, "100%", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "BAND"))
	assert.Len(t, lines, 5)

	_, err = run(t, "stats", "--raw", "2x2x2", "--type", "float64", name)
	assert.Error(t, err, "file too short")
	_, err = run(t, "stats", "--raw", "2x2", name)
	assert.Error(t, err)
	_, err = run(t, "stats", "--raw", "2x2x2", "--type", "cfloat", name)
	assert.Error(t, err)
	_, err = run(t, "stats", name)
	assert.Error(t, err, "raw files need --raw")
	_, err = run(t, "stats", "gs://bucket")
	assert.Error(t, err)
}

func TestStatsProfile(t *testing.T) {
	name := writeRaw(t, binary.LittleEndian, []int16{-1, 2, -9999, 4})
	prof := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(prof, []byte(`
exclude_nodata: true
nodata:
  1: [-9999]
bins: 3
raw:
  size: 4x1x1
  type: int16
`), 0o644))
	out, err := run(t, "stats", "--profile", prof, "--yaml", name)
	require.NoError(t, err)
	var rep []bandReport
	require.NoError(t, yaml.Unmarshal([]byte(out), &rep))
	require.Len(t, rep, 1)
	assert.Equal(t, -1.0, rep[0].Min)
	assert.Equal(t, uint64(3), rep[0].Count)
	assert.Len(t, rep[0].Histogram.Counts, 3)

	// flags override the profile
	out, err = run(t, "stats", "--profile", prof, "--yaml", "--exclude-nodata=false", name)
	require.NoError(t, err)
	require.NoError(t, yaml.Unmarshal([]byte(out), &rep))
	assert.Equal(t, -9999.0, rep[0].Min)

	require.NoError(t, os.WriteFile(prof, []byte("nodata:\n  0: [-9999]\nraw:\n  size: 4x1x1\n  type: int16\n"), 0o644))
	_, err = run(t, "stats", "--profile", prof, name)
	assert.Error(t, err, "bands are numbered from 1")

	_, err = run(t, "stats", "--profile", prof+".missing", name)
	assert.Error(t, err)
	require.NoError(t, os.WriteFile(prof, []byte("bins: [1"), 0o644))
	_, err = run(t, "stats", "--profile", prof, name)
	assert.Error(t, err)
}

func TestStatsTIFF(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4, 4))
	for i := range img.Pix {
		img.Pix[i] = uint8(i)
	}
	name := filepath.Join(t.TempDir(), "gray.tif")
	f, err := os.Create(name)
	require.NoError(t, err)
	require.NoError(t, tiff.Encode(f, img, nil))
	require.NoError(t, f.Close())

	out, err := run(t, "stats", "--block", "2x2", "--yaml", "-v", name)
	require.NoError(t, err)
	assert.Contains(t, out, "level=DEBUG")
	out = out[strings.Index(out, "- band:"):]
	var rep []bandReport
	require.NoError(t, yaml.Unmarshal([]byte(out), &rep))
	require.Len(t, rep, 1)
	assert.Equal(t, 0.0, rep[0].Min)
	assert.Equal(t, 15.0, rep[0].Max)
	assert.InDelta(t, 7.5, rep[0].Mean, 1e-12)
	assert.Len(t, rep[0].Histogram.Counts, 255)

	require.NoError(t, os.WriteFile(name, []byte("not a tiff"), 0o644))
	_, err = run(t, "stats", name)
	assert.Error(t, err)
}

func TestEnvelopeCommand(t *testing.T) {
	out, err := run(t, "envelope", "union", "--", "170,-10,-170,10", "-175,0,-160,20")
	require.NoError(t, err)
	assert.Equal(t, "Envelope2D[170 : -160, -10 : 20] width=30 height=30 center=-175,5 crossing=true\n", out)

	out, err = run(t, "envelope", "intersect", "--", "170,-10,-170,10", "-175,0,-160,20")
	require.NoError(t, err)
	assert.Equal(t, "Envelope2D[-175 : -170, 0 : 10] width=5 height=10 center=-172.5,5 crossing=false\n", out)

	out, err = run(t, "envelope", "reduce", "--", "190,-100,200,100", "170,0,190,1")
	require.NoError(t, err)
	assert.Equal(t, "Envelope2D[-170 : -160, -90 : 90] width=10 height=180 center=-165,0 crossing=false\n"+
		"Envelope2D[-180 : 180, 0 : 1] width=360 height=1 center=0,0.5 crossing=false\n", out)

	out, err = run(t, "envelope", "--yaml", "union", "0,0,1,1", "2,2,3,3")
	require.NoError(t, err)
	var rep []boxReport
	require.NoError(t, yaml.Unmarshal([]byte(out), &rep))
	require.Len(t, rep, 1)
	assert.Equal(t, [4]float64{0, 0, 3, 3}, rep[0].Bounds)
	assert.Equal(t, [2]float64{1.5, 1.5}, rep[0].Center)

	_, err = run(t, "envelope", "merge", "0,0,1,1")
	assert.Error(t, err)
	_, err = run(t, "envelope", "union")
	assert.Error(t, err)
	_, err = run(t, "envelope", "union", "0,0,1")
	assert.Error(t, err)
}

func TestParseBlockSize(t *testing.T) {
	for in, want := range map[string]int{"512k": 512 * 1024, "1M": 1024 * 1024, "4096": 4096} {
		got, err := parseBlockSize(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	for _, bad := range []string{"", "k", "-1k", "12g"} {
		_, err := parseBlockSize(bad)
		assert.Error(t, err, bad)
	}
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestYAMLWriteErrors(t *testing.T) {
	box, err := parseBox("0,0,1,1")
	require.NoError(t, err)
	boxes, err := combine("reduce", []covkit.Envelope{box})
	require.NoError(t, err)
	assert.Error(t, printBoxesYAML(failingWriter{}, boxes))
	assert.NoError(t, printBoxesYAML(&bytes.Buffer{}, boxes))
}
