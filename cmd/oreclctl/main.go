// Command oreclctl drives the orecl compute orchestrator from the command line, for
// manual smoke-testing of device enumeration and single evaluations.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/go-quant/orecl"
	"github.com/go-quant/orecl/internal/config"
	"github.com/go-quant/orecl/internal/logger"
)

var (
	rootLogger *zap.Logger
	cfg        *config.Config
)

func main() {
	app := &cli.App{
		Name:  "oreclctl",
		Usage: "inspect and exercise the orecl compute orchestrator",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "path to a YAML config file"},
		},
		Before: func(ctx *cli.Context) error {
			var err error
			if path := ctx.String("config"); path != "" {
				cfg, err = config.LoadConfig(path)
			} else {
				cfg = config.Default()
			}
			if err != nil {
				return err
			}
			rootLogger, err = logger.New(cfg.Logger.Verbosity)
			return err
		},
		Commands: []*cli.Command{
			listDevicesCommand(),
			runCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		if rootLogger != nil {
			rootLogger.Fatal("oreclctl exited with error", zap.Error(err))
		} else {
			fmt.Fprintf(os.Stderr, "oreclctl: %v\n", err)
			os.Exit(1)
		}
	}
}

func listDevicesCommand() *cli.Command {
	return &cli.Command{
		Name:  "devices",
		Usage: "list registered compute devices",
		Action: func(ctx *cli.Context) error {
			for _, name := range orecl.DefaultRegistry().Names() {
				fmt.Println(name)
			}
			return nil
		},
	}
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "evaluate the scalar arithmetic smoke scenario: y = a*b + a",
		Action: func(ctx *cli.Context) error {
			info, err := orecl.DefaultRegistry().ByName(cfg.Device.Name)
			if err != nil {
				return err
			}
			cc := orecl.NewContext(info)
			cc.SetLogger(rootLogger)
			if err := cc.Init(); err != nil {
				return err
			}

			const n = 4
			settings := orecl.Settings{
				UseDoublePrecision: cfg.Defaults.UseDoublePrecision,
				RNGSeed:            cfg.Defaults.RNGSeed,
				Debug:              cfg.Defaults.Debug,
			}
			id, _, err := cc.InitiateCalculation(n, 0, 0, settings)
			if err != nil {
				return err
			}
			a, err := cc.CreateInputVariable(3.0)
			if err != nil {
				return err
			}
			b, err := cc.CreateInputVariableVector([]float64{1, 2, 3, 4})
			if err != nil {
				return err
			}
			t, err := cc.ApplyOperation(orecl.OpMul, []int{a, b})
			if err != nil {
				return err
			}
			y, err := cc.ApplyOperation(orecl.OpAdd, []int{t, a})
			if err != nil {
				return err
			}
			if err := cc.DeclareOutputVariable(y); err != nil {
				return err
			}

			out := make([][]float64, 1)
			out[0] = make([]float64, n)
			if err := cc.FinalizeCalculation(out); err != nil {
				return err
			}

			rootLogger.Info("calculation id assigned", zap.Int("id", id))
			fmt.Println(out[0])
			return cc.DisposeCalculation(id)
		},
	}
}
