package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"

	"github.com/rudderlabs/sheetsync/internal/jobs"
)

var DefaultList = []*cli.Command{
	CONFIGURATIONS(),
	SCHEMAS(),
	RUN(),
}

func CONFIGURATIONS() *cli.Command {
	return &cli.Command{
		Name:  "configurations",
		Usage: "inspect stored configurations",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "list all configurations",
				Action: ListConfigurations,
			},
		},
	}
}

func SCHEMAS() *cli.Command {
	return &cli.Command{
		Name:  "schemas",
		Usage: "manage schema descriptor files",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "list uploaded schema descriptor files",
				Action: ListSchemas,
			},
			{
				Name:      "upload",
				Usage:     "upload a schema descriptor file",
				ArgsUsage: "<file.csv>",
				Action:    UploadSchema,
			},
		},
	}
}

func RUN() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "run a job for a configuration",
		ArgsUsage: "<" + strings.Join(jobs.Names, "|") + "> <configuration id>",
		Action:    RunJob,
	}
}

func client(c *cli.Context) *Client {
	return NewClient(c.String("url"), nil)
}

func ListConfigurations(c *cli.Context) error {
	configurations, err := client(c).Configurations(c.Context)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(c.App.Writer)
	table.SetHeader([]string{"ID", "Title", "Sheet", "Table", "Schema"})
	table.SetAutoFormatHeaders(false)
	for _, cfg := range configurations {
		table.Append([]string{
			strconv.FormatInt(cfg.ID, 10),
			cfg.Title,
			cfg.SheetID,
			cfg.WarehouseTableID,
			cfg.SchemaFile,
		})
	}
	table.Render()
	return nil
}

func ListSchemas(c *cli.Context) error {
	names, err := client(c).Schemas(c.Context)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(c.App.Writer)
	table.SetHeader([]string{"Schema"})
	table.SetAutoFormatHeaders(false)
	for _, name := range names {
		table.Append([]string{name})
	}
	table.Render()
	return nil
}

func UploadSchema(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("expected exactly one schema file", 2)
	}
	columns, err := client(c).UploadSchema(c.Context, c.Args().First())
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(c.App.Writer, "uploaded %s: %s\n", c.Args().First(), strings.Join(columns, ", "))
	return nil
}

func RunJob(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.Exit("expected a job name and a configuration id", 2)
	}
	id, err := strconv.ParseInt(c.Args().Get(1), 10, 64)
	if err != nil {
		return cli.Exit(fmt.Sprintf("invalid configuration id %q", c.Args().Get(1)), 2)
	}

	res, err := client(c).RunJob(c.Context, c.Args().First(), id)
	if err != nil {
		return err
	}

	logs := res.Logs
	if res.Details != nil {
		logs = res.Details.Logs
	}
	for _, line := range logs {
		_, _ = fmt.Fprintln(c.App.Writer, line)
	}
	if !res.Success {
		if res.ErrorDetails == "" {
			return cli.Exit(res.Message, 1)
		}
		return cli.Exit(fmt.Sprintf("%s: %s", res.Message, res.ErrorDetails), 1)
	}
	if res.Details.RowsProcessed == nil {
		_, _ = fmt.Fprintln(c.App.Writer, res.Details.Message)
		return nil
	}
	_, _ = fmt.Fprintf(c.App.Writer, "%s (%d rows)\n", res.Details.Message, res.Rows())
	return nil
}
