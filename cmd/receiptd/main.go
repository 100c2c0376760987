package main

import (
	"fmt"
	"os"
	"receiptd/internal/billing"
	"receiptd/internal/di"
	"receiptd/internal/structures"
	_ "time/tzdata"

	json "github.com/goccy/go-json"
	"github.com/urfave/cli/v2"
)

func cliFlags(c *cli.Context) *structures.CliFlags {
	return &structures.CliFlags{
		ConfigPath: c.String("config"),
		DebugMode:  c.Bool("debug"),
	}
}

func serve(c *cli.Context) error {
	app, err := di.InitApp(cliFlags(c))
	if err != nil {
		return err
	}
	return app.Run()
}

func calc(c *cli.Context) error {
	strategy, err := billing.StrategyByName(c.String("mode"))
	if err != nil {
		return err
	}
	if err := billing.CheckTaxRate(c.Float64("rate")); err != nil {
		return err
	}
	figures := billing.Calculate(strategy, billing.Input{
		ProductAmount:       billing.ParseAmount(c.String("amount")),
		ShippingAmount:      billing.ParseAmount(c.String("shipping")),
		TaxRate:             c.Float64("rate"),
		IsElectronicReceipt: c.Bool("electronic"),
	})

	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(figures)
}

func restoreDefaults(c *cli.Context) error {
	m, err := di.InitMaintenance(cliFlags(c))
	if err != nil {
		return err
	}
	added, err := m.RestoreDefaultIssuers()
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "restored %d default issuer(s)\n", added)
	return nil
}

func newCLI() *cli.App {
	return &cli.App{
		Name:  "receiptd",
		Usage: "issue, render and print Japanese receipts",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config.yml",
				Usage:   "path to the YAML config file",
				EnvVars: []string{"RECEIPTD_CONFIG"},
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "also log to the console",
			},
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API",
				Action: serve,
			},
			{
				Name:  "calc",
				Usage: "print receipt figures as JSON",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "amount", Value: "0", Usage: "product amount in yen"},
					&cli.StringFlag{Name: "shipping", Value: "0", Usage: "shipping amount in yen"},
					&cli.Float64Flag{Name: "rate", Value: 0.10, Usage: "consumption tax rate"},
					&cli.StringFlag{Name: "mode", Value: billing.ModeExclusive, Usage: "exclusive or inclusive"},
					&cli.BoolFlag{Name: "electronic", Value: true, Usage: "electronic receipt (no stamp duty)"},
				},
				Action: calc,
			},
			{
				Name:   "restore-defaults",
				Usage:  "re-add missing default issuers",
				Action: restoreDefaults,
			},
		},
	}
}

func main() {
	if err := newCLI().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
