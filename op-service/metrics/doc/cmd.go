// Package doc provides the `doc metrics` CLI subcommand shared by services.
package doc

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"

	"github.com/mantlenetworkio/faucet-bot/op-service/metrics"
)

func NewSubcommands(m metrics.DocumentedMetricer) cli.Commands {
	return cli.Commands{
		{
			Name:  "metrics",
			Usage: "Dumps a list of supported metrics to stdout",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "format",
					Value: "markdown",
					Usage: "Output format (json|markdown)",
				},
			},
			Action: func(ctx *cli.Context) error {
				supportedMetrics := m.Document()
				format := ctx.String("format")

				if format != "markdown" && format != "json" {
					return fmt.Errorf("invalid format: %s", format)
				}

				if format == "json" {
					enc := json.NewEncoder(ctx.App.Writer)
					return enc.Encode(supportedMetrics)
				}

				table := tablewriter.NewWriter(ctx.App.Writer)
				table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
				table.SetCenterSeparator("|")
				table.SetAutoWrapText(false)
				table.SetHeader([]string{"Metric", "Description", "Labels", "Type"})
				var data [][]string
				for _, metric := range supportedMetrics {
					labels := strings.Join(metric.Labels, ",")
					data = append(data, []string{metric.Name, metric.Help, labels, metric.Type})
				}
				table.AppendBulk(data)
				table.Render()
				return nil
			},
		},
	}
}
