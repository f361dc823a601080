package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/airbusgeo/covkit"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var envelopeYAML bool

func init() {
	envelopeCommand.Flags().BoolVar(&envelopeYAML, "yaml", false, "print results as yaml")
}

var envelopeCommand = &cobra.Command{
	Use:   "envelope union|intersect|reduce BOX...",
	Short: "combine WGS84 boxes given as minx,miny,maxx,maxy",
	Long: `Combine longitude/latitude boxes given as minx,miny,maxx,maxy.
A box with minx > maxx crosses the anti-meridian. Separate boxes from
flags with -- when coordinates are negative.`,
	Example: "  covstat envelope union -- 170,-10,-170,10 -175,0,-160,20",
	Args:    cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		boxes := make([]covkit.Envelope, 0, len(args)-1)
		for _, a := range args[1:] {
			env, err := parseBox(a)
			if err != nil {
				return err
			}
			boxes = append(boxes, env)
		}
		results, err := combine(args[0], boxes)
		if err != nil {
			return err
		}
		if envelopeYAML {
			return printBoxesYAML(cmd.OutOrStdout(), results)
		}
		for _, r := range results {
			printBox(cmd.OutOrStdout(), r)
		}
		return nil
	},
}

func parseBox(s string) (covkit.Envelope, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return covkit.Envelope{}, fmt.Errorf("invalid box %q: expected minx,miny,maxx,maxy", s)
	}
	v := make([]float64, 4)
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return covkit.Envelope{}, fmt.Errorf("invalid box %q: %w", s, err)
		}
		v[i] = f
	}
	env, err := covkit.NewEnvelope(covkit.WGS84, v[0:2], v[2:4])
	if err != nil {
		return covkit.Envelope{}, fmt.Errorf("invalid box %q: %w", s, err)
	}
	return env, nil
}

// combine applies op to boxes. union and intersect fold all boxes into one
// result, reduce normalizes each box into the WGS84 domain.
func combine(op string, boxes []covkit.Envelope) ([]covkit.Envelope2D, error) {
	var envs []covkit.Envelope
	switch op {
	case "union", "intersect":
		b := boxes[0].Builder()
		for _, o := range boxes[1:] {
			var err error
			if op == "union" {
				err = b.AddEnvelope(o)
			} else {
				err = b.Intersect(o)
			}
			if err != nil {
				return nil, err
			}
		}
		envs = []covkit.Envelope{b.Envelope()}
	case "reduce":
		for _, o := range boxes {
			b := o.Builder()
			b.ReduceToDomain(true)
			envs = append(envs, b.Envelope())
		}
	default:
		return nil, fmt.Errorf("unknown operation %q: expected union, intersect or reduce", op)
	}
	res := make([]covkit.Envelope2D, len(envs))
	for i, e := range envs {
		r, err := covkit.Envelope2DFrom(e)
		if err != nil {
			return nil, err
		}
		res[i] = r
	}
	return res, nil
}

func printBox(w io.Writer, r covkit.Envelope2D) {
	if r.IsEmpty() {
		fmt.Fprintf(w, "%s empty\n", r)
		return
	}
	fmt.Fprintf(w, "%s width=%g height=%g center=%g,%g crossing=%t\n",
		r, r.Width(), r.Height(), r.CenterX(), r.CenterY(), r.RawWidth().Crossing)
}

type boxReport struct {
	Bounds   [4]float64 `yaml:"bounds,flow"`
	Empty    bool       `yaml:"empty"`
	Width    float64    `yaml:"width"`
	Height   float64    `yaml:"height"`
	Center   [2]float64 `yaml:"center,flow"`
	Crossing bool       `yaml:"crossing"`
}

func printBoxesYAML(w io.Writer, rs []covkit.Envelope2D) error {
	reps := make([]boxReport, len(rs))
	for i, r := range rs {
		reps[i] = boxReport{
			Bounds:   r.Bounds(),
			Empty:    r.IsEmpty(),
			Width:    r.Width(),
			Height:   r.Height(),
			Center:   [2]float64{r.CenterX(), r.CenterY()},
			Crossing: r.RawWidth().Crossing,
		}
	}
	enc := yaml.NewEncoder(w)
	if err := enc.Encode(reps); err != nil {
		return err
	}
	return enc.Close()
}
