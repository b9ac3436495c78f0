package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"cladeshift/adapters/llm"
	"cladeshift/adapters/memory"
	"cladeshift/adapters/newick"
	shiftheuristic "cladeshift/adapters/shift/heuristic"
	"cladeshift/adapters/tabular"
	"cladeshift/app"
	"cladeshift/domain/clade"
	"cladeshift/domain/combine"
	"cladeshift/domain/core"
	"cladeshift/internal"
	"cladeshift/internal/config"
	"cladeshift/ports"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "cladeshift",
		Short: "Clade assignment and cross-dataset shift combination",
	}

	rootCmd.AddCommand(
		newAssignCmd(),
		newCombineCmd(),
		newPipelineCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// thresholdFlags carries the qualification thresholds shared by the
// assign and pipeline commands.
type thresholdFlags struct {
	minTargeted int
	maxOther    int
	maxTotal    int
	policy      string
}

func (f *thresholdFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.minTargeted, "min-targeted", 2, "minimum targeted samples in a clade")
	cmd.Flags().IntVar(&f.maxOther, "max-other", 1, "maximum non-targeted samples in a clade")
	cmd.Flags().IntVar(&f.maxTotal, "max-total", 20, "maximum total samples in a clade")
	cmd.Flags().StringVar(&f.policy, "policy", "", "assignment policy: best, first, largest, smallest")
}

func (f *thresholdFlags) thresholds() (clade.Thresholds, error) {
	policy, err := clade.ParsePolicy(f.policy)
	if err != nil {
		return clade.Thresholds{}, err
	}
	return clade.NewThresholds(f.minTargeted, f.maxOther, f.maxTotal, policy)
}

func newAssignCmd() *cobra.Command {
	var flags thresholdFlags

	cmd := &cobra.Command{
		Use:   "assign [tree.nwk:labels.csv ...]",
		Short: "Assign clades per dataset and print the selections as JSON",
		Long: `Assign non-overlapping qualifying clades for each dataset.

Each argument pairs a Newick tree file with its label table, separated by
a colon. The dataset name is the tree file's stem.

Example: cladeshift assign cells.nwk:cells_labels.csv microbes.nwk:microbes_labels.csv --policy best`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			th, err := flags.thresholds()
			if err != nil {
				return err
			}

			inputs, err := loadDatasets(args)
			if err != nil {
				return err
			}

			outcomes, _, err := runAssignments(cmd.Context(), th, inputs)
			if err != nil {
				return err
			}
			return printJSON(outcomes)
		},
	}

	flags.register(cmd)
	return cmd
}

func newCombineCmd() *cobra.Command {
	var outDir string
	var interpret bool

	cmd := &cobra.Command{
		Use:   "combine [dataset__clade.csv ...]",
		Short: "Combine externally computed shift tables across datasets",
		Long: `Build every cross-dataset combination from observed-shift tables.

Each argument is a CSV/XLSX file with Element and Observed Shift columns,
named <dataset>__<clade> so rows group by dataset and clade. One merged
table is written per combination, largest groupings first.

Example: cladeshift combine cells__node201.csv microbes__node10.csv --out combinations`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := loadShiftTables(args)
			if err != nil {
				return err
			}

			tables := combine.Combine(results, combine.AlwaysSignificant)
			if err := writeTables(outDir, tables); err != nil {
				return err
			}
			fmt.Printf("wrote %d combination tables to %s\n", len(tables), outDir)

			if interpret {
				return interpretTables(cmd.Context(), tables)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out", "combinations", "output directory for merged tables")
	cmd.Flags().BoolVar(&interpret, "interpret", false, "interpret each table via the configured LLM")
	return cmd
}

func newPipelineCmd() *cobra.Command {
	var flags thresholdFlags
	var abundancePath, outDir string
	var interpret bool

	cmd := &cobra.Command{
		Use:   "pipeline [tree.nwk:labels.csv ...]",
		Short: "Run assignment and combination end to end",
		Long: `Assign clades per dataset, compute per-element shifts from an
abundance matrix, and build every cross-dataset combination.

Example: cladeshift pipeline cells.nwk:cells_labels.csv microbes.nwk:microbes_labels.csv --abundance matrix.csv`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			th, err := flags.thresholds()
			if err != nil {
				return err
			}

			inputs, err := loadDatasets(args)
			if err != nil {
				return err
			}

			matrix, err := tabular.NewReader().ReadAbundance(abundancePath)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			outcomes, runID, err := runAssignments(ctx, th, inputs)
			if err != nil {
				return err
			}

			var interpreter ports.InterpreterPort
			if interpret {
				if interpreter, err = buildInterpreter(); err != nil {
					return err
				}
			}

			logger := internal.NewDefaultLogger()
			combiner := app.NewCombinationService(
				shiftheuristic.NewComputer(matrix), nil, interpreter, memory.NewSelectionRepository(), logger)
			result, err := combiner.BuildCombinations(ctx, runID, outcomes)
			if err != nil {
				return err
			}

			if err := writeTables(outDir, result.Tables); err != nil {
				return err
			}
			fmt.Printf("wrote %d combination tables to %s\n", len(result.Tables), outDir)
			for _, interp := range result.Interpretations {
				fmt.Printf("\n=== %s ===\n%s\n", interp.Label, interp.Text)
			}
			return printJSON(outcomes)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&abundancePath, "abundance", "", "element-by-sample abundance matrix (CSV/XLSX)")
	cmd.Flags().StringVar(&outDir, "out", "combinations", "output directory for merged tables")
	cmd.Flags().BoolVar(&interpret, "interpret", false, "interpret each table via the configured LLM")
	_ = cmd.MarkFlagRequired("abundance")
	return cmd
}

func runAssignments(ctx context.Context, th clade.Thresholds, inputs []app.DatasetInput) ([]app.DatasetOutcome, core.RunID, error) {
	logger := internal.NewDefaultLogger()
	service, err := app.NewAssignmentService(th, memory.NewSelectionRepository(), logger)
	if err != nil {
		return nil, "", err
	}

	runID := core.RunID(core.NewID())
	outcomes, err := service.RunAssignments(ctx, runID, inputs)
	if err != nil {
		return nil, "", err
	}
	return outcomes, runID, nil
}

// loadDatasets parses tree.nwk:labels.csv argument pairs. The dataset
// name is the tree file's stem.
func loadDatasets(args []string) ([]app.DatasetInput, error) {
	reader := tabular.NewReader()
	inputs := make([]app.DatasetInput, 0, len(args))
	for _, arg := range args {
		treePath, labelPath, ok := strings.Cut(arg, ":")
		if !ok {
			return nil, fmt.Errorf("argument %q must be tree.nwk:labels.csv", arg)
		}

		raw, err := os.ReadFile(treePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read tree file: %w", err)
		}
		root, err := newick.Parse(string(raw))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", treePath, err)
		}

		labels, err := reader.ReadLabels(labelPath)
		if err != nil {
			return nil, err
		}

		inputs = append(inputs, app.DatasetInput{
			Dataset: core.DatasetID(fileStem(treePath)),
			Root:    root,
			Labels:  labels,
		})
	}
	return inputs, nil
}

// loadShiftTables groups <dataset>__<clade> files into per-dataset results.
// Argument order decides dataset and clade order. Several files for the
// same clade are one row set: they merge up front under the same conflict
// rule the combination step uses, never becoming alternative choices.
func loadShiftTables(args []string) ([]combine.DatasetResults, error) {
	reader := tabular.NewReader()
	var results []combine.DatasetResults
	dsIndex := make(map[core.DatasetID]int)
	cladeIndex := make(map[core.DatasetID]map[string]int)
	for _, arg := range args {
		stem := fileStem(arg)
		dsName, cladeName, ok := strings.Cut(stem, "__")
		if !ok {
			return nil, fmt.Errorf("file %q must be named <dataset>__<clade>", arg)
		}

		rows, err := reader.ReadShiftRows(arg)
		if err != nil {
			return nil, err
		}

		ds := core.DatasetID(dsName)
		i, seen := dsIndex[ds]
		if !seen {
			i = len(results)
			dsIndex[ds] = i
			cladeIndex[ds] = make(map[string]int)
			results = append(results, combine.DatasetResults{Dataset: ds})
		}
		if j, dup := cladeIndex[ds][cladeName]; dup {
			results[i].Clades[j].Rows = combine.MergeRows(results[i].Clades[j].Rows, rows)
			continue
		}
		cladeIndex[ds][cladeName] = len(results[i].Clades)
		results[i].Clades = append(results[i].Clades, combine.CladeResult{Clade: cladeName, Rows: rows})
	}
	return results, nil
}

func buildInterpreter() (ports.InterpreterPort, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.LLM.APIKey == "" {
		return nil, fmt.Errorf("--interpret requires OPENAI_API_KEY")
	}
	return llm.NewInterpreterAdapter(llm.Config{
		Model:       cfg.LLM.Model,
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     cfg.LLM.Timeout,
	})
}

func interpretTables(ctx context.Context, tables []combine.CombinationTable) error {
	interpreter, err := buildInterpreter()
	if err != nil {
		return err
	}
	for _, table := range tables {
		interp, err := interpreter.Interpret(ctx, table)
		if err != nil {
			return err
		}
		fmt.Printf("\n=== %s ===\n%s\n", interp.Label, interp.Text)
	}
	return nil
}

func writeTables(dir string, tables []combine.CombinationTable) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	for _, table := range tables {
		if err := writeTableCSV(filepath.Join(dir, table.Label+".csv"), table); err != nil {
			return err
		}
	}
	return nil
}

func writeTableCSV(path string, table combine.CombinationTable) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"Element", "Observed Shift"}); err != nil {
		return err
	}
	for _, row := range table.Rows {
		shift := strconv.FormatFloat(row.ObservedShift, 'g', -1, 64)
		if err := w.Write([]string{row.Element, shift}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func fileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
