package main

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/airbusgeo/covkit"
	"github.com/airbusgeo/covkit/raw"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type statsFlags struct {
	profile       string
	excludeNoData bool
	nodata        []string
	bins          int
	block         string
	rawSize       string
	rawType       string
	bigEndian     bool
	offset        int64
	yaml          bool
	progress      bool
	gs            gsOpts
}

var sf statsFlags

func init() {
	fl := statsCommand.Flags()
	fl.StringVar(&sf.profile, "profile", "", "yaml analysis profile")
	fl.BoolVar(&sf.excludeNoData, "exclude-nodata", false, "skip nodata values")
	fl.StringArrayVar(&sf.nodata, "nodata", nil, "band:value nodata declaration (repeatable)")
	fl.IntVar(&sf.bins, "bins", 0, "histogram bucket count (default 255 for byte data, 1000 otherwise)")
	fl.StringVar(&sf.block, "block", "", "tile size WxH used to scan the input")
	fl.StringVar(&sf.rawSize, "raw", "", "raw input size WIDTHxHEIGHTxBANDS")
	fl.StringVar(&sf.rawType, "type", "byte", "raw input sample type")
	fl.BoolVar(&sf.bigEndian, "big-endian", false, "raw input is big endian")
	fl.Int64Var(&sf.offset, "offset", 0, "raw input header size in bytes")
	fl.BoolVar(&sf.yaml, "yaml", false, "print results as yaml")
	fl.BoolVar(&sf.progress, "progress", false, "print progress to stderr")
	fl.StringVarP(&sf.gs.blockSize, "gs.blocksize", "b", "512k", "gs:// block size")
	fl.IntVarP(&sf.gs.numCachedBlocks, "gs.numblocks", "n", 512, "number of gs:// blocks to cache")
	fl.BoolVar(&sf.gs.anonymous, "gs.anonymous", false, "access gs:// objects without credentials")
	fl.BoolVar(&sf.gs.osio, "gs.osio", false, "read gs:// objects through an osio adapter")
}

var statsCommand = &cobra.Command{
	Use:   "stats [flags] FILE",
	Short: "compute per-band statistics and histograms of a raster",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p := profile{}
		if sf.profile != "" {
			var err error
			if p, err = loadProfile(sf.profile); err != nil {
				return err
			}
		}
		if err := mergeFlags(cmd, &p); err != nil {
			return err
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		r, key, err := openReader(ctx, args[0], sf.gs)
		if err != nil {
			return err
		}
		if c, ok := r.(io.Closer); ok {
			defer c.Close()
		}
		src, err := openSource(r, key, p)
		if err != nil {
			return err
		}
		opts := []covkit.StatisticsOption{}
		if p.ExcludeNoData {
			opts = append(opts, covkit.ExcludeNoData())
		}
		for b, v := range p.NoData {
			if b < 1 {
				return fmt.Errorf("invalid nodata band %d: bands are numbered from 1", b)
			}
			opts = append(opts, covkit.NoData(b-1, v...))
		}
		if p.Bins > 0 {
			opts = append(opts, covkit.Bins(p.Bins))
		}
		if sf.progress {
			opts = append(opts, covkit.Progress(func(pct float64) {
				fmt.Fprintf(cmd.ErrOrStderr(), "%.0f%%\n", pct)
			}))
		}
		stats, err := covkit.ComputeStatistics(src, opts...)
		if err != nil {
			return fmt.Errorf("statistics of %s: %w", args[0], err)
		}
		if sf.yaml {
			return printYAML(cmd.OutOrStdout(), stats)
		}
		return printTable(cmd.OutOrStdout(), stats)
	},
}

// mergeFlags overrides profile entries with explicitly set flags.
func mergeFlags(cmd *cobra.Command, p *profile) error {
	fl := cmd.Flags()
	if fl.Changed("exclude-nodata") {
		p.ExcludeNoData = sf.excludeNoData
	}
	if fl.Changed("nodata") {
		nd, err := parseNoData(sf.nodata)
		if err != nil {
			return err
		}
		p.NoData = nd
	}
	if fl.Changed("bins") {
		p.Bins = sf.bins
	}
	if fl.Changed("block") {
		p.Block = sf.block
	}
	if fl.Changed("raw") {
		p.Raw.Size = sf.rawSize
	}
	if fl.Changed("type") || p.Raw.Type == "" {
		p.Raw.Type = sf.rawType
	}
	if fl.Changed("big-endian") {
		p.Raw.BigEndian = sf.bigEndian
	}
	if fl.Changed("offset") {
		p.Raw.Offset = sf.offset
	}
	return nil
}

func openSource(r keyedReader, key string, p profile) (covkit.SampleSource, error) {
	bx, by := 0, 0
	if p.Block != "" {
		dims, err := parseDims(p.Block, 2)
		if err != nil {
			return nil, err
		}
		bx, by = dims[0], dims[1]
	}
	if p.Raw.Size == "" {
		if !isTIFF(key) {
			return nil, fmt.Errorf("%s: not a tiff file, use --raw to describe a raw raster", key)
		}
		img, err := decodeTIFF(r, key)
		if err != nil {
			return nil, err
		}
		return covkit.NewImageSource(img, bx, by)
	}
	dims, err := parseDims(p.Raw.Size, 3)
	if err != nil {
		return nil, err
	}
	dt, err := covkit.ParseDataType(p.Raw.Type)
	if err != nil {
		return nil, err
	}
	layout := raw.Layout{
		DatasetStructure: covkit.DatasetStructure{
			BandStructure: covkit.BandStructure{
				SizeX: dims[0], SizeY: dims[1],
				BlockSizeX: dims[0], BlockSizeY: dims[1],
				DataType: dt,
			},
			NBands: dims[2],
		},
		ByteOrder: binary.LittleEndian,
		Offset:    p.Raw.Offset,
	}
	if bx > 0 {
		layout.BlockSizeX, layout.BlockSizeY = bx, by
	}
	if p.Raw.BigEndian {
		layout.ByteOrder = binary.BigEndian
	}
	var ropts []raw.Option
	if _, ok := r.(*raw.Files); ok {
		ropts = append(ropts, raw.CacheBlocks(256, 0))
	}
	return raw.Open(r, key, layout, ropts...)
}

type histogramReport struct {
	Min    float64  `yaml:"min"`
	Max    float64  `yaml:"max"`
	Counts []uint64 `yaml:"counts,flow"`
}

type bandReport struct {
	Band      int              `yaml:"band"`
	Count     uint64           `yaml:"count"`
	Min       float64          `yaml:"min"`
	Max       float64          `yaml:"max"`
	Mean      float64          `yaml:"mean"`
	Std       float64          `yaml:"std"`
	NoData    []float64        `yaml:"nodata,omitempty,flow"`
	Histogram *histogramReport `yaml:"histogram,omitempty"`
}

func reports(stats []covkit.BandStatistics) []bandReport {
	rep := make([]bandReport, len(stats))
	for i, s := range stats {
		rep[i] = bandReport{
			Band:   i + 1,
			Count:  s.Count,
			Min:    s.Min,
			Max:    s.Max,
			Mean:   s.Mean,
			Std:    s.Std,
			NoData: s.NoData,
		}
		if s.Histogram != nil {
			rep[i].Histogram = &histogramReport{
				Min:    s.Histogram.Min(),
				Max:    s.Histogram.Max(),
				Counts: s.Histogram.Counts(),
			}
		}
	}
	return rep
}

func printYAML(w io.Writer, stats []covkit.BandStatistics) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(reports(stats)); err != nil {
		return err
	}
	return enc.Close()
}

func printTable(w io.Writer, stats []covkit.BandStatistics) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "BAND\tCOUNT\tMIN\tMAX\tMEAN\tSTD")
	for _, r := range reports(stats) {
		fmt.Fprintf(tw, "%d\t%d\t%g\t%g\t%.6g\t%.6g\n", r.Band, r.Count, r.Min, r.Max, r.Mean, r.Std)
	}
	return tw.Flush()
}
