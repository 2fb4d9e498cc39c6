package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ru-addr/internal/address"
	"github.com/ru-addr/internal/config"
	"github.com/ru-addr/internal/db"
	"github.com/ru-addr/internal/debug"
	"github.com/ru-addr/internal/etl"
	"github.com/ru-addr/internal/normalize"
	"github.com/ru-addr/internal/postal"
	"github.com/ru-addr/internal/sink"
	"github.com/ru-addr/internal/source"
	"github.com/ru-addr/internal/splitter"
)

// SeparateFilename is the default output of the split command
const SeparateFilename = "license_separate_addresses.tsv"

var (
	envFile    string
	tokensFile string
	localDebug bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ruaddr",
		Short: "Russian address ETL",
		Long:  `Splits composite Russian address fields and builds address parser training data`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadEnvFile(envFile); err != nil {
				return err
			}
			localDebug = localDebug || debug.FromEnv()
			return nil
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&envFile, "env", "", "env file to load (default: first .env found)")
	rootCmd.PersistentFlags().StringVar(&tokensFile, "tokens", "", "YAML token configuration (default: $RU_ADDR_TOKENS or built-in lists)")
	rootCmd.PersistentFlags().BoolVar(&localDebug, "debug", false, "debug output")

	rootCmd.AddCommand(createSplitCmd())
	rootCmd.AddCommand(createTrimHouseCmd())
	rootCmd.AddCommand(createTrainCmd())
	rootCmd.AddCommand(createOSMCmd())
	rootCmd.AddCommand(createParseCmd())
	rootCmd.AddCommand(createServeCmd())
	rootCmd.AddCommand(createTokensCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadTokens() (*config.Tokens, error) {
	if tokensFile != "" {
		return config.LoadTokens(tokensFile)
	}
	return config.LoadTokensFromEnv()
}

func newSplitter(tokens *config.Tokens) *splitter.Splitter {
	return splitter.New(tokens.TokenLists,
		splitter.WithRepairer(normalize.FixEncoding),
		splitter.WithDebug(localDebug),
	)
}

// stdout keeps os.Stdout open when a sink is closed
type stdout struct{ io.Writer }

// openSink picks the output: a database when dsn is set, otherwise a file
// by extension, or stdout for "-"
func openSink(output, dsn, table string, stripQuotes bool) (sink.Sink, func(), error) {
	if dsn != "" {
		conn, err := db.Open(dsn)
		if err != nil {
			return nil, nil, err
		}
		s := sink.NewSQL(conn, table, localDebug)
		log.Printf("Loading into %s table %s, batch %s", conn.Driver, table, s.BatchID())
		return s, func() { conn.Close() }, nil
	}

	var opts []sink.TSVOption
	if stripQuotes {
		opts = append(opts, sink.WithStripQuotes())
	}

	switch {
	case output == "-":
		return sink.NewTSV(stdout{os.Stdout}, opts...), func() {}, nil
	case strings.EqualFold(filepath.Ext(output), ".xlsx"):
		s, err := sink.CreateXLSX(output, "addresses")
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil
	}
	s, err := sink.CreateTSV(output, opts...)
	if err != nil {
		return nil, nil, err
	}
	return s, func() {}, nil
}

func createSplitCmd() *cobra.Command {
	var (
		format   string
		output   string
		dsn      string
		table    string
		useDBEnv bool
	)

	cmd := &cobra.Command{
		Use:   "split [input]",
		Short: "Split composite address fields into separate columns",
		Long: `Reads licence registry XML (optionally gzipped), TSV, CSV or XLSX records,
splits their composite street fields and writes one row per address to TSV, XLSX,
Postgres or SQLite.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tokens, err := loadTokens()
			if err != nil {
				return err
			}

			src, err := source.Open(args[0], source.Format(format))
			if err != nil {
				return err
			}
			defer src.Close()

			if useDBEnv && dsn == "" {
				dsn = config.DatabaseURL()
			}
			dst, cleanup, err := openSink(output, dsn, table, true)
			if err != nil {
				return err
			}
			defer cleanup()

			p := etl.NewPipeline(newSplitter(tokens), tokens.FieldMap)
			stats, err := p.Run(localDebug, src, dst)
			if cerr := dst.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return fmt.Errorf("split failed: %w", err)
			}

			log.Printf("Split complete: %s", stats)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "input format: license-xml, tsv, csv, xlsx (default: from file name)")
	cmd.Flags().StringVarP(&output, "output", "o", SeparateFilename, "output file (.tsv or .xlsx), - for stdout")
	cmd.Flags().StringVar(&dsn, "dsn", "", "load into a database instead (postgres DSN or sqlite path)")
	cmd.Flags().BoolVar(&useDBEnv, "db", false, "load into the database from DATABASE_URL / DB_* variables")
	cmd.Flags().StringVar(&table, "table", "license_addresses", "table name for database output")
	return cmd
}

func createTrimHouseCmd() *cobra.Command {
	var (
		column string
		maxLen int
	)

	cmd := &cobra.Command{
		Use:   "trim-house [input] [output]",
		Short: "Cut overlong house numbers in a separated TSV down to the house designator",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := source.Open(args[0], source.FormatTSV)
			if err != nil {
				return err
			}
			defer src.Close()

			hs, ok := src.(etl.HeaderSource)
			if !ok {
				return fmt.Errorf("%s has no header", args[0])
			}

			dst, err := sink.CreateTSV(args[1])
			if err != nil {
				return err
			}

			stats, err := etl.TrimHouseNumbers(localDebug, hs, dst, column, maxLen)
			if cerr := dst.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}

			log.Printf("Trim complete: %s", stats)
			return nil
		},
	}

	cmd.Flags().StringVar(&column, "column", "house_number", "column to trim")
	cmd.Flags().IntVar(&maxLen, "max-len", normalize.DefaultMaxHouseNumberLen, "values longer than this are trimmed")
	return cmd
}

func createParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse [address...]",
		Short: "Compare libpostal's parse of an address with the splitter's",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tokens, err := loadTokens()
			if err != nil {
				return err
			}
			addr := strings.Join(args, " ")

			parsed := postal.Parse(addr)

			split := address.NewComponentSet()
			split.Set(address.Road, addr)
			var report splitter.Report
			verdict := newSplitter(tokens).ProcessReport(split, &report)

			fmt.Printf("libpostal: %s\n", parsed)
			fmt.Printf("splitter:  %s (%s)\n", split, verdict)
			for _, step := range report.Steps {
				fmt.Printf("  %-26s %s %s\n", step.Step, step.Outcome, step.Token)
			}

			diffs := address.Diff(parsed, split)
			if len(diffs) == 0 {
				fmt.Println("no differences")
				return nil
			}
			fmt.Println("differences:")
			for _, d := range diffs {
				fmt.Printf("  %-15s %q | %q\n", d.Key, d.Left, d.Right)
			}
			return nil
		},
	}
}

func createTokensCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens",
		Short: "Print the active token configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tokens, err := loadTokens()
			if err != nil {
				return err
			}
			out, err := tokens.Marshal()
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(out)
			return err
		},
	}
}
