package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli"

	"cppnart/internal/app"
	"cppnart/internal/config"
	"cppnart/internal/randn"
	logx "cppnart/pkg/logx"
)

const description = `Draws images from a randomly initialized network fed with pixel
   coordinates. "run" animates frames only while the simulated canvas is
   on screen; scroll the page by typing commands on stdin:

      scroll <x> <y>     scrollby <dx> <dy>     resize <w> <h>
      status             quit`

var configFlag = cli.StringFlag{
	Name:  "config, c",
	Usage: "path to a JSON or YAML config (built-in defaults when empty)",
}

func newCLI(ctx context.Context) *cli.App {
	a := cli.NewApp()
	a.Name = "cppnart"
	a.HelpName = "cppnart"
	a.Usage = "generative art from compositional pattern-producing networks"
	a.UsageText = "cppnart <command> [arguments...]"
	a.Description = description
	a.Commands = []cli.Command{
		{
			Name:   "run",
			Usage:  "animate frames while the canvas is on screen",
			Action: func(c *cli.Context) error { return runCmd(ctx, c) },
			Flags:  []cli.Flag{configFlag},
		},
		{
			Name:   "render",
			Usage:  "render a single frame to a PNG file",
			Action: func(c *cli.Context) error { return renderCmd(ctx, c) },
			Flags: []cli.Flag{
				configFlag,
				cli.StringFlag{Name: "out, o", Value: "cppnart.png", Usage: "output file"},
				cli.Float64Flag{Name: "z", Usage: "latent input"},
				cli.StringFlag{Name: "kind, k", Usage: "network kind: densenet, perceptron or resnet"},
				cli.Uint64Flag{Name: "seed, s", Usage: "network seed (random when 0)"},
				cli.IntFlag{Name: "size", Usage: "square frame size in pixels (overrides config)"},
				cli.BoolFlag{Name: "bw", Usage: "grayscale output"},
			},
		},
		{
			Name:   "randn",
			Usage:  "print statistics of the standard-normal sampler",
			Action: randnCmd,
			Flags: []cli.Flag{
				cli.IntFlag{Name: "n", Value: 100000, Usage: "number of draws"},
				cli.Uint64Flag{Name: "seed, s", Usage: "sampler seed (global source when 0)"},
			},
		},
	}
	return a
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	path := strings.TrimSpace(c.String("config"))
	if path == "" {
		return config.Default(), nil
	}
	return config.NewManager(path).Load()
}

func runCmd(ctx context.Context, c *cli.Context) error {
	opts := []app.Option{app.WithInput(os.Stdin), app.WithOutput(c.App.Writer)}

	var (
		a   *app.App
		err error
	)
	if path := strings.TrimSpace(c.String("config")); path != "" {
		a, err = app.NewApp(path, opts...)
	} else {
		a, err = app.NewFromConfig(config.Default(), opts...)
	}
	if err != nil {
		return err
	}
	if err := a.Start(ctx); err != nil {
		return fmt.Errorf("start: %w", err)
	}

	select {
	case <-ctx.Done():
	case <-a.Done():
	}
	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.Stop(stopCtx); err != nil {
		return err
	}
	return a.Err()
}

func renderCmd(ctx context.Context, c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if k := c.String("kind"); k != "" {
		cfg.Model.Kind = k
	}
	if s := c.Uint64("seed"); s != 0 {
		cfg.Model.Seed = s
	}
	if n := c.Int("size"); n > 0 {
		cfg.Render.Width, cfg.Render.Height = n, n
	}
	if c.Bool("bw") {
		cfg.Model.BW = true
	}

	out := c.String("out")
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	mc, err := app.RenderPNG(ctx, cfg, c.Float64("z"), f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(out)
		return err
	}

	log := logx.NewConsole(cfg.Logging.Level)
	log.Info("frame written",
		logx.String("out", out),
		logx.String("kind", string(mc.Kind)),
		logx.Uint64("seed", mc.Seed),
		logx.Int("width", cfg.Render.Width),
		logx.Int("height", cfg.Render.Height),
	)
	return nil
}

func randnCmd(c *cli.Context) error {
	n := c.Int("n")
	if n <= 0 {
		return fmt.Errorf("-n must be > 0")
	}
	var st randn.Stats
	if seed := c.Uint64("seed"); seed != 0 {
		st = randn.Sample(randn.NewSeeded(seed), n)
	} else {
		randn.Default(func(s *randn.Sampler) { st = randn.Sample(s, n) })
	}
	fmt.Fprintf(c.App.Writer, "n=%d mean=%.5f variance=%.5f stddev=%.5f min=%.4f max=%.4f\n",
		st.N, st.Mean, st.Variance, math.Sqrt(st.Variance), st.Min, st.Max)
	return nil
}
