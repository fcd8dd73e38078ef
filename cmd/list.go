package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/zjrosen/propdesk/internal/domain"
	"github.com/zjrosen/propdesk/internal/export"
	"github.com/zjrosen/propdesk/internal/notify"
	"github.com/zjrosen/propdesk/internal/presentation"
	"github.com/zjrosen/propdesk/internal/ui/styles"
)

// stderrNotifier prints pipeline notifications for one-shot commands.
func stderrNotifier(w io.Writer) notify.Notifier {
	return notify.Func(func(n notify.Notification) {
		style := lipgloss.NewStyle().Foreground(styles.StatusInfoColor)
		switch n.Level {
		case notify.LevelError:
			style = styles.ErrorStyle
		case notify.LevelWarn:
			style = lipgloss.NewStyle().Foreground(styles.StatusWarningColor)
		case notify.LevelSuccess:
			style = lipgloss.NewStyle().Foreground(styles.StatusSuccessColor)
		}
		line := n.Title
		if n.Description != "" {
			line += ": " + n.Description
		}
		_, _ = fmt.Fprintln(w, style.Render(line))
	})
}

func commandRuntime(cmd *cobra.Command) (*runtime, error) {
	return newRuntime(cfg, stderrNotifier(cmd.ErrOrStderr()))
}

var (
	listOpts listOptions
	listJSON bool
)

var listCmd = &cobra.Command{
	Use:   "list <resource>",
	Short: "Print one page of a resource as a table",
	Long: `Print one page of a resource as a table, resolving developer and
location ids to names.

Resources: ` + strings.Join(resourceNames, ", ") + `

Examples:
  propdesk list projects --ready true
  propdesk list properties --listing-for rent --max-price 5000000
  propdesk list leads --json | jq '.[].email'`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: resourceNames,
	RunE: func(cmd *cobra.Command, args []string) error {
		resource, err := canonicalResource(args[0])
		if err != nil {
			return err
		}
		rt, err := commandRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		l, err := fetchListing(cmd.Context(), cmd, rt, resource, listOpts)
		if err != nil {
			return err
		}
		formatter := presentation.NewFormatter(cmd.OutOrStdout())
		if listJSON {
			return formatter.JSON(l.records)
		}
		return formatter.Table(l.headers, l.rows, l.footer())
	},
}

var getJSON bool

var getCmd = &cobra.Command{
	Use:   "get <resource> <id>",
	Short: "Print a single record as YAML",
	Long: `Print a single record as YAML (or JSON with --json).

Developers are returned with their contact persons.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		resource, err := canonicalResource(args[0])
		if err != nil {
			return err
		}
		rt, err := commandRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		record, err := fetchRecord(cmd.Context(), rt, resource, domain.ID(args[1]))
		if err != nil {
			return err
		}
		formatter := presentation.NewFormatter(cmd.OutOrStdout())
		if getJSON {
			return formatter.JSON(record)
		}
		return formatter.YAML(record)
	},
}

var (
	exportOpts listOptions
	exportOut  string
)

var exportCmd = &cobra.Command{
	Use:   "export <resource>",
	Short: "Write one page of a resource to an Excel workbook",
	Long: `Write one page of a resource to an Excel workbook with the same
columns and cell text as the table.

Examples:
  propdesk export projects -o projects.xlsx
  propdesk export properties --listing-for sale --limit 100`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resource, err := canonicalResource(args[0])
		if err != nil {
			return err
		}
		rt, err := commandRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		l, err := fetchListing(cmd.Context(), cmd, rt, resource, exportOpts)
		if err != nil {
			return err
		}
		path := exportOut
		if path == "" {
			path = fmt.Sprintf("%s-page-%d.xlsx", resource, l.page)
		}
		if err := export.WriteFile(filepath.Clean(path), resource, l.headers, l.rows); err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Exported %d rows to %s\n", len(l.rows), path)
		return err
	},
}

func init() {
	addListFlags(listCmd, &listOpts)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "print records as JSON")

	getCmd.Flags().BoolVar(&getJSON, "json", false, "print the record as JSON")

	addListFlags(exportCmd, &exportOpts)
	exportCmd.Flags().StringVarP(&exportOut, "output", "o", "", "workbook path (default: <resource>-page-<n>.xlsx)")

	rootCmd.AddCommand(listCmd, getCmd, exportCmd)
}
