package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/holtgrewe/vt/internal/duckdb"
	"github.com/holtgrewe/vt/internal/genome"
	"github.com/holtgrewe/vt/internal/merge"
	"github.com/holtgrewe/vt/internal/output"
	"github.com/holtgrewe/vt/internal/reference"
	"github.com/holtgrewe/vt/internal/vcf"
)

type mergeOptions struct {
	inputList    string
	intervals    string
	intervalFile string
	outputFile   string
	printSummary bool
}

func newMergeCmd() *cobra.Command {
	var opts mergeOptions

	cmd := &cobra.Command{
		Use:   "merge -L <input-list> [options]",
		Short: "Merge sorted VCF files position by position",
		Long: `Merge sorted VCF files into one VCF holding every sample. Records at the same
chromosome and position are combined into one site; samples of files without
a record there are written as missing.`,
		Example: `  vt merge -L inputs.txt -o merged.vcf.gz
  vt merge -L inputs.txt -i chr20:1000000-2000000 -p
  vt merge -L gs://bucket/inputs.txt -I regions.txt --duckdb merged.duckdb`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.inputList == "" {
				return usagef("input list (-L) is required")
			}
			return runMerge(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.inputList, "input-list", "L", "", "File listing input VCF paths, one per line")
	cmd.Flags().StringVarP(&opts.intervals, "intervals", "i", "", "Comma-separated intervals, e.g. chr1:100-200,chr2")
	cmd.Flags().StringVarP(&opts.intervalFile, "interval-file", "I", "", "File listing intervals, one per line")
	cmd.Flags().StringVarP(&opts.outputFile, "output", "o", "-", "Output file (.gz for compressed; default: stdout)")
	cmd.Flags().BoolVarP(&opts.printSummary, "print", "p", false, "Print options and summary statistics to stderr")
	cmd.Flags().String("reference", "", "Reference FASTA whose contig order is used")
	cmd.Flags().String("duckdb", "", "Also store merged sites in this DuckDB database")
	viper.BindPFlag("merge.reference", cmd.Flags().Lookup("reference"))
	viper.BindPFlag("merge.duckdb", cmd.Flags().Lookup("duckdb"))

	return cmd
}

func runMerge(ctx context.Context, opts mergeOptions) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	opener := vcf.NewOpener()
	defer opener.Close()

	inputs, err := readInputList(ctx, opener, opts.inputList)
	if err != nil {
		return err
	}

	intervals, err := genome.LoadIntervals(opts.intervalFile, opts.intervals)
	if err != nil {
		return usagef("%v", err)
	}

	cfg := merge.Config{Inputs: inputs, Intervals: intervals}
	refPath := viper.GetString("merge.reference")
	if refPath != "" {
		dict, err := reference.LoadDictionary(refPath)
		if err != nil {
			return fmt.Errorf("loading reference: %w", err)
		}
		cfg.Contigs = dict.Names
		cfg.ContigLengths = dict.Lengths
		logger.Info("loaded contig dictionary", zap.String("reference", refPath), zap.Int("contigs", len(dict.Names)))
	}

	if opts.printSummary {
		printMergeOptions(os.Stderr, opts, inputs, intervals, refPath)
	}

	plan, err := merge.Prepare(ctx, cfg, merge.OpenerFunc(opener))
	if err != nil {
		return err
	}
	logger.Info("merging",
		zap.Int("files", len(inputs)),
		zap.Int("samples", len(plan.Header.Samples)),
		zap.Int("contigs", plan.Order.Len()))

	out, err := output.Create(opts.outputFile)
	if err != nil {
		plan.Reader.Close()
		return err
	}
	var sink merge.Sink = output.NewMergedVCFWriter(out)

	if dbPath := viper.GetString("merge.duckdb"); dbPath != "" {
		store, err := duckdb.Open(dbPath)
		if err != nil {
			plan.Reader.Close()
			sink.Close()
			return fmt.Errorf("opening duckdb: %w", err)
		}
		defer store.Close()
		if same, err := store.SameInputs(fingerprints(inputs)); err == nil && same {
			logger.Info("replacing previous merge of the same inputs", zap.String("duckdb", dbPath))
		}
		sink = merge.MultiSink{sink, duckdb.NewSink(store)}
	}

	d := merge.NewDriver(plan.Reader, plan.Merger, sink)
	d.SetLogger(logger)
	if err := d.Run(ctx, plan.Header, plan.Stats); err != nil {
		return err
	}

	if opts.printSummary {
		if err := plan.Stats.WriteSummary(os.Stderr, inputs); err != nil {
			return err
		}
	}
	return nil
}

// fingerprints stats local inputs; remote inputs carry their path only.
func fingerprints(inputs []string) []duckdb.FileFingerprint {
	fps := make([]duckdb.FileFingerprint, len(inputs))
	for i, path := range inputs {
		fps[i].Path = path
		if !vcf.IsRemote(path) {
			if fp, err := duckdb.StatFile(path); err == nil {
				fps[i] = fp
			}
		}
	}
	return fps
}

// readInputList reads the list of input paths, locally or from GCS.
func readInputList(ctx context.Context, opener *vcf.Opener, path string) ([]string, error) {
	rc, err := opener.OpenRaw(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("reading input list: %w", err)
	}
	defer rc.Close()

	inputs, err := merge.ReadInputList(rc)
	if err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("input list %s names no files", path)
	}
	return inputs, nil
}

func printMergeOptions(w io.Writer, opts mergeOptions, inputs []string, intervals []genome.Interval, refPath string) {
	fmt.Fprintf(w, "merge v%s\n\n", version)
	fmt.Fprintf(w, "options:     input VCF file list        %s (%d files)\n", opts.inputList, len(inputs))
	fmt.Fprintf(w, "         [o] output VCF file            %s\n", opts.outputFile)
	if refPath != "" {
		fmt.Fprintf(w, "         [r] reference FASTA file       %s\n", refPath)
	}
	if len(intervals) > 0 {
		names := make([]string, 0, len(intervals))
		for i, iv := range intervals {
			if i == 5 {
				names = append(names, fmt.Sprintf("and %d more", len(intervals)-5))
				break
			}
			names = append(names, iv.String())
		}
		fmt.Fprintf(w, "         [i] intervals                  %s\n", strings.Join(names, ","))
	}
	fmt.Fprintln(w)
}
