package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// profile is the yaml analysis profile accepted by --profile. Command line
// flags take precedence over profile entries.
type profile struct {
	ExcludeNoData bool              `yaml:"exclude_nodata"`
	NoData        map[int][]float64 `yaml:"nodata"`
	Bins          int               `yaml:"bins"`
	Block         string            `yaml:"block"`
	Raw           rawProfile        `yaml:"raw"`
}

type rawProfile struct {
	Size      string `yaml:"size"`
	Type      string `yaml:"type"`
	BigEndian bool   `yaml:"big_endian"`
	Offset    int64  `yaml:"offset"`
}

func loadProfile(name string) (profile, error) {
	p := profile{}
	data, err := os.ReadFile(name)
	if err != nil {
		return p, err
	}
	if err = yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse profile %s: %w", name, err)
	}
	return p, nil
}

// parseDims parses "AxBxC..." into exactly n positive integers.
func parseDims(s string, n int) ([]int, error) {
	parts := strings.Split(strings.ToLower(s), "x")
	if len(parts) != n {
		return nil, fmt.Errorf("invalid size %q: expected %d values separated by x", s, n)
	}
	dims := make([]int, n)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || v <= 0 {
			return nil, fmt.Errorf("invalid size %q", s)
		}
		dims[i] = v
	}
	return dims, nil
}

// parseNoData parses "band:value" entries.
func parseNoData(entries []string) (map[int][]float64, error) {
	nd := map[int][]float64{}
	for _, e := range entries {
		idx := strings.Index(e, ":")
		if idx <= 0 {
			return nil, fmt.Errorf("invalid nodata %q: expected band:value", e)
		}
		band, err := strconv.Atoi(e[:idx])
		if err != nil || band < 1 {
			return nil, fmt.Errorf("invalid nodata band in %q: bands are numbered from 1", e)
		}
		v, err := strconv.ParseFloat(e[idx+1:], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid nodata value in %q: %w", e, err)
		}
		nd[band] = append(nd[band], v)
	}
	return nd, nil
}
