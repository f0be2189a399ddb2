package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/manocha-aman/subscribe-any/internal/scan"
)

func main() {
	app := &cli.App{
		Name:  "subscribe-any",
		Usage: "detect e-commerce order confirmations and extract purchased products",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Value: "config.yaml",
				Usage: "path to YAML config file",
			},
			&cli.StringFlag{
				Name:  "db",
				Usage: "path to the sqlite database (default: next to the binary)",
			},
			&cli.BoolFlag{
				Name:  "quiet",
				Usage: "only log errors",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "scan",
				Usage: "fetch URLs and run the full detection pipeline",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "urls",
						Usage: "comma-separated URLs to scan",
					},
					&cli.IntFlag{
						Name:  "workers",
						Value: 4,
						Usage: "number of concurrent workers",
					},
					&cli.StringFlag{
						Name:  "output-dir",
						Value: "results",
						Usage: "directory for analysis artifacts",
					},
					&cli.StringFlag{
						Name:  "api-key",
						Usage: "LLM API key (falls back to config, then SUBSCRIBE_ANY_API_KEY)",
					},
					&cli.BoolFlag{
						Name:  "force-fetch",
						Usage: "bypass the page cache",
					},
					&cli.BoolFlag{
						Name:  "show-order-details",
						Usage: "also surface order-details/history pages",
					},
				},
				Action: scan.ScanAction,
			},
			{
				Name:  "classify",
				Usage: "classify URLs without fetching (fast path only)",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "urls",
						Usage: "comma-separated URLs to classify",
					},
					&cli.StringFlag{
						Name:  "fields",
						Usage: "comma-separated output fields to keep",
					},
					&cli.StringFlag{
						Name:  "format",
						Value: "json",
						Usage: "output format: json or yaml",
					},
				},
				Action: scan.ClassifyAction,
			},
			{
				Name:  "history",
				Usage: "show recent detection runs",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Value: 20,
						Usage: "maximum rows to show",
					},
					&cli.StringFlag{
						Name:  "url",
						Usage: "show only the most recent run for this URL",
					},
					&cli.StringFlag{
						Name:  "format",
						Value: "json",
						Usage: "output format: json or yaml",
					},
				},
				Action: scan.HistoryAction,
			},
			{
				Name:  "subs",
				Usage: "manage recurring-product subscriptions",
				Subcommands: []*cli.Command{
					{
						Name:  "list",
						Usage: "list active subscriptions",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "format",
								Value: "json",
								Usage: "output format: json or yaml",
							},
						},
						Action: scan.SubsListAction,
					},
					{
						Name:  "add",
						Usage: "subscribe to a product",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "name",
								Usage: "product name (required)",
							},
							&cli.StringFlag{
								Name:  "retailer",
								Usage: "retailer the product was bought from",
							},
							&cli.Float64Flag{
								Name:  "price",
								Usage: "last seen price",
							},
							&cli.IntFlag{
								Name:  "frequency-days",
								Value: 30,
								Usage: "reorder reminder interval in days",
							},
						},
						Action: scan.SubsAddAction,
					},
					{
						Name:  "remove",
						Usage: "unsubscribe from a product",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "name",
								Usage: "product name (required)",
							},
						},
						Action: scan.SubsRemoveAction,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
