package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/David-Botos/saferoads/pkg/cleaner"
	"github.com/David-Botos/saferoads/pkg/config"
	"github.com/David-Botos/saferoads/pkg/connector"
	"github.com/David-Botos/saferoads/pkg/loader"
	"github.com/David-Botos/saferoads/pkg/model"
	"github.com/David-Botos/saferoads/pkg/reference"
	"github.com/David-Botos/saferoads/pkg/source"
	"github.com/David-Botos/saferoads/pkg/transfer"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "saferoads",
		Short:         "French road accident ingestion",
		Long:          `Cleans the yearly road accident extracts and loads them into a relational store`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(createLoadCmd())
	rootCmd.AddCommand(createPingCmd())
	rootCmd.AddCommand(createVehicleTypesCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// setup loads the configuration and installs the global logger
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := newLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, nil, err
	}
	zap.ReplaceGlobals(logger)

	return cfg, logger, nil
}

// parseYears reads the load arguments: "all" or a list of years and ranges
func parseYears(args []string) (years []int, all bool, err error) {
	if len(args) == 1 && strings.EqualFold(args[0], "all") {
		return nil, true, nil
	}
	years, err = config.ParseYears(strings.Join(args, ","))
	if err != nil {
		return nil, false, err
	}
	return years, false, nil
}

func parseTables(names []string) ([]model.Category, error) {
	categories := make([]model.Category, 0, len(names))
	for _, name := range names {
		category, ok := model.ParseCategory(name)
		if !ok {
			return nil, fmt.Errorf("unknown table %q", name)
		}
		categories = append(categories, category)
	}
	return categories, nil
}

// createLoadCmd creates the load subcommand
func createLoadCmd() *cobra.Command {
	var (
		replace    bool
		tables     []string
		jsonReport bool
	)

	cmd := &cobra.Command{
		Use:   "load <year|all> [year...]",
		Short: "Clean and load one or more years",
		Long: `Reads the four extracts of each year, cleans them and loads the four tables.
"all" loads every known year and replaces the tables; years are otherwise
appended unless --replace is given.`,
		Example: "  saferoads load 2012\n  saferoads load 2010-2012 --replace\n  saferoads load all",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			years, all, err := parseYears(args)
			if err != nil {
				return err
			}
			categories, err := parseTables(tables)
			if err != nil {
				return err
			}

			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx := cmd.Context()
			conn, err := connector.NewConnectorFactory(cfg, logger).CreateConnector(ctx)
			if err != nil {
				return err
			}
			defer conn.Close()

			dataCleaner, err := cleaner.NewDataCleaner(cfg.CleanerOptions(), logger)
			if err != nil {
				return err
			}
			ld, err := loader.NewLoader(conn, cfg.ChunkSize, logger)
			if err != nil {
				return err
			}
			ld.WithTimeout(cfg.StatementTimeout())
			manager, err := transfer.NewManager(source.NewDirSource(cfg.DataDir, cfg.FilePattern), dataCleaner, ld, logger)
			if err != nil {
				return err
			}
			manager.WithKnownYears(cfg.KnownYears).WithReferenceTables(cfg.LoadReferenceTables)

			_, runErr := manager.Run(ctx, transfer.Request{
				Years:      years,
				AllYears:   all,
				Replace:    replace,
				Categories: categories,
			})

			if jsonReport {
				data, err := manager.GetMetrics().ToJSON()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
			} else {
				fmt.Fprint(cmd.OutOrStdout(), manager.GetMetrics().GenerateMetricsReport())
			}
			return runErr
		},
	}

	cmd.Flags().BoolVar(&replace, "replace", false, "replace the tables instead of appending")
	cmd.Flags().StringSliceVar(&tables, "tables", nil, "tables to load (default all)")
	cmd.Flags().BoolVar(&jsonReport, "json", false, "print the report as JSON")
	return cmd
}

// createPingCmd creates a command to test store connectivity
func createPingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Test store connectivity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx := cmd.Context()
			conn, err := connector.NewConnectorFactory(cfg, logger).CreateConnector(ctx)
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := conn.Validate(ctx); err != nil {
				return fmt.Errorf("store validation failed: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s store reachable\n", conn.Dialect().Name())
			for _, category := range model.Categories {
				table := string(category)
				exists, err := connector.TableExists(ctx, conn.DB(), conn.Dialect(), table)
				if err != nil {
					return err
				}
				if !exists {
					fmt.Fprintf(out, "%-16s missing\n", table)
					continue
				}
				count, err := loader.NewVerifier(conn, logger).CountRows(ctx, table)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%-16s %d rows\n", table, count)
			}
			return nil
		},
	}
}

// createVehicleTypesCmd prints the vehicle type reference table
func createVehicleTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vehicle-types",
		Short: "Print the vehicle type codes, labels and weights",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CODE\tLABEL\tWEIGHT (KG)")
			for _, vt := range reference.All() {
				fmt.Fprintf(w, "%d\t%s\t%d\n", vt.Code, vt.Label, vt.WeightKg)
			}
			return w.Flush()
		},
	}
}
