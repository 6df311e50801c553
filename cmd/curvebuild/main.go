package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/meenmo/termstructure/bond"
	"github.com/meenmo/termstructure/cmd/curvebuild/internal/input"
	"github.com/meenmo/termstructure/config"
	"github.com/meenmo/termstructure/curve"
	"github.com/meenmo/termstructure/interpolation"
	"github.com/meenmo/termstructure/scenario"
)

type nodeOutput struct {
	Tenor          float64 `json:"tenor"`
	Rate           float64 `json:"rate"`
	DiscountFactor float64 `json:"discount_factor"`
}

type bondOutput struct {
	Index    int     `json:"index"`
	Maturity float64 `json:"maturity"`
	Face     float64 `json:"face"`
	PV       float64 `json:"pv"`
	YTM      float64 `json:"ytm"`
}

type spotOutput struct {
	Tenor        float64 `json:"tenor"`
	Rate         float64 `json:"rate"`
	Compounding  int     `json:"compounding"`
	Extrapolated bool    `json:"extrapolated,omitempty"`
}

type curveOutput struct {
	Interpolation string        `json:"interpolation"`
	Nodes         []nodeOutput  `json:"nodes"`
	Bonds         []bondOutput  `json:"bonds,omitempty"`
	Spot          []spotOutput  `json:"spot,omitempty"`
	Points        []curve.Point `json:"points,omitempty"`
}

type scenarioOutput struct {
	Key   string       `json:"key"`
	Kind  string       `json:"kind"`
	Shift float64      `json:"shift"`
	Tenor float64      `json:"tenor,omitempty"`
	Nodes []nodeOutput `json:"nodes"`
}

type ladderOutput struct {
	Base       curveOutput          `json:"base"`
	Scenarios  []scenarioOutput     `json:"scenarios"`
	BasePV     *float64             `json:"base_pv,omitempty"`
	Valuations []scenario.Valuation `json:"valuations,omitempty"`
}

type errorOutput struct {
	Error string `json:"error"`
}

// app carries what the Before hook resolves for every command.
type app struct {
	cfg config.Config
	log *logrus.Logger
	doc *input.Document
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args, os.Stdin, os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{}
	cliApp := &cli.App{
		Name:      "curvebuild",
		Usage:     "bootstrap zero curves from bonds and derive shift scenarios",
		Reader:    stdin,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "INI configuration file"},
			&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Usage: "YAML input path (reads stdin if omitted)"},
			&cli.StringFlag{Name: "interpolation", Usage: "pwl, catmull-rom or natural-spline"},
			&cli.StringFlag{Name: "log-level", Usage: "overrides [log] level"},
			&cli.Float64Flag{Name: "step", Usage: "sample the curve every step years (0 disables)"},
		},
		Before: a.setup,
		Commands: []*cli.Command{
			{
				Name:   "bootstrap",
				Usage:  "bootstrap a curve from the document's bonds",
				Action: a.bootstrapCmd,
			},
			{
				Name:   "curve",
				Usage:  "build a curve from the document's tenors and rates",
				Action: a.curveCmd,
			},
			{
				Name:   "scenarios",
				Usage:  "build the shift ladder over the document's curve",
				Action: a.scenariosCmd,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "key-rates", Usage: "add a key-rate bump per node"},
				},
			},
		},
	}

	if err := cliApp.RunContext(ctx, args); err != nil {
		writeJSON(stdout, errorOutput{Error: err.Error()})
		return 1
	}
	return 0
}

func (a *app) setup(c *cli.Context) error {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if lvl := c.String("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}

	log := logrus.New()
	log.SetOutput(c.App.ErrWriter)
	if cfg.Log.Format == "text" {
		log.SetFormatter(&logrus.TextFormatter{DisableColors: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	log.SetLevel(level)

	a.cfg, a.log = cfg, log
	return nil
}

// load reads the input document once per invocation.
func (a *app) load(c *cli.Context) (*input.Document, interpolation.Kind, error) {
	if a.doc == nil {
		raw, err := input.Read(c.String("input"), c.App.Reader)
		if err != nil {
			return nil, 0, fmt.Errorf("read input: %w", err)
		}
		doc, err := input.Parse(raw)
		if err != nil {
			return nil, 0, err
		}
		a.doc = doc
	}
	kind, name, ok := a.doc.Kind(c.String("interpolation"), a.cfg.Curve.Interpolation)
	if !ok {
		a.log.WithField("interpolation", name).Warn("invalid interpolator, using pwl")
	}
	return a.doc, kind, nil
}

func (a *app) options(kind interpolation.Kind) []curve.Option {
	return []curve.Option{
		curve.WithKind(kind),
		curve.WithSolver(a.cfg.Solver),
		curve.WithLogger(a.log),
	}
}

func (a *app) bootstrapCmd(c *cli.Context) error {
	doc, kind, err := a.load(c)
	if err != nil {
		return err
	}
	crv, bonds, err := a.bootstrapCurve(doc, kind)
	if err != nil {
		return err
	}
	out, err := a.describe(crv, doc, c.Float64("step"))
	if err != nil {
		return err
	}
	if out.Bonds, err = describeBonds(crv, bonds); err != nil {
		return err
	}
	return writeJSON(c.App.Writer, out)
}

func (a *app) curveCmd(c *cli.Context) error {
	doc, kind, err := a.load(c)
	if err != nil {
		return err
	}
	crv, err := a.directCurve(doc, kind)
	if err != nil {
		return err
	}
	out, err := a.describe(crv, doc, c.Float64("step"))
	if err != nil {
		return err
	}
	return writeJSON(c.App.Writer, out)
}

func (a *app) scenariosCmd(c *cli.Context) error {
	doc, kind, err := a.load(c)
	if err != nil {
		return err
	}

	var crv *curve.YieldCurve
	if len(doc.Bonds) > 0 {
		crv, _, err = a.bootstrapCurve(doc, kind)
	} else {
		crv, err = a.directCurve(doc, kind)
	}
	if err != nil {
		return err
	}

	cfg := a.cfg.Scenario
	if c.Bool("key-rates") {
		cfg.KeyRates = true
	}
	ladder, err := scenario.NewLadder(crv, cfg, a.log)
	if err != nil {
		return err
	}
	scenarios, err := ladder.Build(c.Context)
	if err != nil {
		return err
	}

	base, err := a.describe(ladder.Base(), doc, c.Float64("step"))
	if err != nil {
		return err
	}
	out := ladderOutput{Base: *base, Scenarios: make([]scenarioOutput, len(scenarios))}
	for i, s := range scenarios {
		out.Scenarios[i] = scenarioOutput{Key: s.Key, Kind: s.Kind.String(), Shift: s.Shift, Tenor: s.Tenor, Nodes: describeNodes(s.Curve)}
	}

	if doc.Price != nil {
		b, err := doc.Price.Build()
		if err != nil {
			return fmt.Errorf("price: %w", err)
		}
		basePV, vals, err := scenario.Reprice(ladder.Base(), scenarios, b)
		if err != nil {
			return err
		}
		out.BasePV, out.Valuations = &basePV, vals
	}
	return writeJSON(c.App.Writer, out)
}

func (a *app) bootstrapCurve(doc *input.Document, kind interpolation.Kind) (*curve.YieldCurve, []*bond.Bond, error) {
	if len(doc.Bonds) == 0 {
		return nil, nil, errors.New("input has no bonds")
	}
	bonds, err := doc.BuildBonds()
	if err != nil {
		return nil, nil, err
	}
	crv, err := curve.Bootstrap(bonds, a.options(kind)...)
	if err != nil {
		return nil, nil, err
	}
	a.log.WithFields(logrus.Fields{
		"bonds":         len(bonds),
		"interpolation": kind.String(),
		"max_tenor":     crv.MaxTenor(),
	}).Info("curve bootstrapped")
	return crv, bonds, nil
}

func (a *app) directCurve(doc *input.Document, kind interpolation.Kind) (*curve.YieldCurve, error) {
	if doc.Curve == nil {
		return nil, errors.New("input has no curve")
	}
	tenors, rates, err := doc.Curve.Values()
	if err != nil {
		return nil, err
	}
	return curve.New(tenors, rates, kind, a.options(kind)...)
}

func (a *app) describe(crv *curve.YieldCurve, doc *input.Document, step float64) (*curveOutput, error) {
	out := &curveOutput{Interpolation: crv.Kind().String(), Nodes: describeNodes(crv)}

	if doc.Spot != nil {
		tenors, err := doc.Spot.Values()
		if err != nil {
			return nil, err
		}
		for _, t := range tenors {
			r, ext, err := crv.SpotRate(t, doc.Spot.Compounding)
			if err != nil {
				return nil, err
			}
			out.Spot = append(out.Spot, spotOutput{
				Tenor:        t,
				Rate:         r,
				Compounding:  doc.Spot.Compounding,
				Extrapolated: ext != interpolation.InRange,
			})
		}
	}

	if step > 0 {
		pts, err := crv.Sample(0, step)
		if err != nil {
			return nil, err
		}
		out.Points = pts
	}
	return out, nil
}

func describeNodes(crv *curve.YieldCurve) []nodeOutput {
	tenors, rates := crv.Tenors(), crv.Rates()
	out := make([]nodeOutput, len(tenors))
	for i := range tenors {
		out[i] = nodeOutput{Tenor: tenors[i], Rate: rates[i], DiscountFactor: math.Exp(-rates[i] * tenors[i])}
	}
	return out
}

func describeBonds(crv *curve.YieldCurve, bonds []*bond.Bond) ([]bondOutput, error) {
	out := make([]bondOutput, len(bonds))
	for i, b := range bonds {
		face, err := b.FaceValue()
		if err != nil {
			return nil, err
		}
		pv, err := b.Price(crv, 0)
		if err != nil {
			return nil, err
		}
		ytm, err := b.YieldToMaturity(pv)
		if err != nil {
			return nil, fmt.Errorf("bond %d: %w", i, err)
		}
		out[i] = bondOutput{Index: i, Maturity: b.Maturity(), Face: face, PV: pv, YTM: ytm}
	}
	return out, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
