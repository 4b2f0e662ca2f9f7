// Command career imports an FC 26 career save and answers questions about it.
//
// Usage:
//
//	career import                       # parse FC26_SAVE_PATH (or the parser default)
//	career import ~/saves/Career01
//	career import --dump output/test_parse.json
//	career info
//	career query "quantos jogadores tenho?"
//	career query                        # interactive
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/albapepper/career-analyzer/internal/config"
	"github.com/albapepper/career-analyzer/internal/importer"
	"github.com/albapepper/career-analyzer/internal/llm"
	"github.com/albapepper/career-analyzer/internal/logging"
	"github.com/albapepper/career-analyzer/internal/parser"
	"github.com/albapepper/career-analyzer/internal/query"
	"github.com/albapepper/career-analyzer/internal/store"
)

var verbose bool

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:           "career",
		Short:         "FC 26 career save analyzer",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "set debug logging level")

	root.AddCommand(importCmd())
	root.AddCommand(infoCmd())
	root.AddCommand(queryCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// import command
// --------------------------------------------------------------------------

func importCmd() *cobra.Command {
	var dumpPath string
	cmd := &cobra.Command{
		Use:   "import [save-path]",
		Short: "Parse a career save and load its players",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithStore(func(ctx context.Context, cfg *config.Config, gw store.Gateway, logger *slog.Logger) error {
				savePath := cfg.SavePath
				if len(args) == 1 {
					savePath = args[0]
				}

				var p parser.Parser = parser.NewNodeParser(cfg, logger)
				if dumpPath != "" {
					p = parser.FileParser{Path: dumpPath, Logger: logger}
					savePath = dumpPath
				}

				start := time.Now()
				result, err := importer.New(p, gw, logger).Import(ctx, savePath)
				if err != nil {
					var exitErr *parser.ExitError
					if errors.As(err, &exitErr) && exitErr.Stdout != "" {
						logger.Debug("Parser output", "stdout", exitErr.Stdout)
					}
					return fmt.Errorf("import failed: %w", err)
				}
				for _, e := range result.Errors {
					logger.Warn("import warning", "error", e)
				}
				if result.NoIdentityData {
					fmt.Fprintln(cmd.OutOrStdout(), "Nenhum dado de jogador encontrado no save. Nada foi gravado.")
					return nil
				}

				logger.Info("Import complete", "duration", time.Since(start).Round(time.Millisecond), "summary", result.Summary())
				fmt.Fprintf(cmd.OutOrStdout(), "%d jogadores importados (%d sem nome, %d linhas de atributos órfãs).\n",
					result.PlayersUpserted, result.Unnamed, result.Orphaned)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&dumpPath, "dump", "", "Load an existing parser JSON dump instead of running the parser")
	return cmd
}

// --------------------------------------------------------------------------
// info command
// --------------------------------------------------------------------------

func infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show roster totals, the top 10 and name resolution statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithStore(func(ctx context.Context, cfg *config.Config, gw store.Gateway, logger *slog.Logger) error {
				return printInfo(ctx, cmd.OutOrStdout(), gw)
			})
		},
	}
}

func printInfo(ctx context.Context, w io.Writer, gw store.Gateway) error {
	total, err := gw.Count(ctx, store.Select())
	if err != nil {
		return fmt.Errorf("count players: %w", err)
	}
	if total == 0 {
		fmt.Fprintln(w, "Nenhum dado carregado. Rode `career import` primeiro.")
		return nil
	}
	fmt.Fprintf(w, "Total de jogadores: %d\n", total)

	if run, err := gw.LastImport(ctx); err != nil {
		return fmt.Errorf("last import: %w", err)
	} else if run != nil {
		named := run.PlayersWritten - run.Unnamed
		pct := 0.0
		if run.PlayersWritten > 0 {
			pct = 100 * float64(named) / float64(run.PlayersWritten)
		}
		fmt.Fprintf(w, "Última importação: %s (%s)\n", run.FinishedAt.Local().Format("2006-01-02 15:04"), run.Source)
		fmt.Fprintf(w, "Nomes resolvidos: %d/%d (%.1f%%), %d linhas de atributos órfãs\n",
			named, run.PlayersWritten, pct, run.Orphaned)
	}

	top, err := gw.Players(ctx, store.Select().OrderByDesc("overallrating").Limit(10))
	if err != nil {
		return fmt.Errorf("top players: %w", err)
	}
	fmt.Fprintln(w, "\nTop 10 por overall:")
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetBorder(true)
	table.SetHeader([]string{"#", "Jogador", "ID", "Pos", "Idade", "OVR", "POT"})
	for i, p := range top {
		table.Append([]string{
			fmt.Sprintf("%d", i+1),
			p.DisplayName(),
			fmt.Sprintf("%d", p.PlayerID),
			p.Position("N/A"),
			fmt.Sprintf("%d", p.Age),
			fmt.Sprintf("%d", p.OverallRating),
			fmt.Sprintf("%d", p.Potential),
		})
	}
	table.Render()
	return nil
}

// --------------------------------------------------------------------------
// query command
// --------------------------------------------------------------------------

var exitWords = map[string]bool{"sair": true, "exit": true, "quit": true, "q": true}

func queryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "query [question]",
		Short: "Ask a question, or start an interactive session without arguments",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithStore(func(ctx context.Context, cfg *config.Config, gw store.Gateway, logger *slog.Logger) error {
				router := query.NewRouter(gw, llm.FromConfig(cfg, logger), cfg.ContextMaxTokens, logger)
				out := cmd.OutOrStdout()
				if len(args) > 0 {
					printAnswer(out, router.Route(ctx, strings.Join(args, " ")))
					return nil
				}
				return interactive(ctx, cmd.InOrStdin(), out, router)
			})
		},
	}
}

func interactive(ctx context.Context, in io.Reader, out io.Writer, router *query.Router) error {
	fmt.Fprintln(out, "Pergunte sobre seu save. Digite 'sair' para encerrar.")
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "\n> ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if exitWords[strings.ToLower(question)] {
			break
		}
		printAnswer(out, router.Route(ctx, question))
		if ctx.Err() != nil {
			break
		}
	}
	fmt.Fprintln(out, "Até mais!")
	return scanner.Err()
}

func printAnswer(w io.Writer, res query.Result) {
	var badge string
	switch res.Source {
	case query.SourceSQL:
		badge = "[SQL]"
	case query.SourceGenerative:
		badge = "[IA]"
	default:
		badge = "[ERRO]"
	}
	fmt.Fprintf(w, "%s %s\n\n%s\n", badge, res.Category, res.Answer)
	if res.CostUnits > 0 {
		fmt.Fprintf(w, "\n(~%d tokens)\n", res.CostUnits)
	}
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

// runWithStore handles config loading, logger setup, store connection, and
// context cancellation.
func runWithStore(fn func(ctx context.Context, cfg *config.Config, gw store.Gateway, logger *slog.Logger) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if verbose {
		level = slog.LevelDebug
	}
	format := cfg.LogFormat
	if os.Getenv("LOG_FORMAT") == "" {
		format = logging.FormatTint
	}
	logger := logging.New(os.Stderr, format, level)
	slog.SetDefault(logger)

	gw, err := store.Open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer gw.Close()

	return fn(ctx, cfg, gw, logger)
}
