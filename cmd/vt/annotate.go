package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/holtgrewe/vt/internal/annotate"
	"github.com/holtgrewe/vt/internal/genome"
	"github.com/holtgrewe/vt/internal/merge"
	"github.com/holtgrewe/vt/internal/output"
	"github.com/holtgrewe/vt/internal/reference"
	"github.com/holtgrewe/vt/internal/vcf"
)

type annotateOptions struct {
	outputFile   string
	outputFormat string
	intervals    string
	intervalFile string
	printSummary bool
}

func newAnnotateCmd() *cobra.Command {
	var opts annotateOptions

	cmd := &cobra.Command{
		Use:   "annotate [options] <input-file>",
		Short: "Annotate variant type and repeat context",
		Long: `Annotate each record with its variant type (VT) and, for indels, the repeat
unit (RU) and repeat tract length (RL) around it.`,
		Example: `  vt annotate input.vcf
  vt annotate -r ref.fa -o annotated.vcf.gz input.vcf.gz
  vt annotate -f tab -i chr20 input.vcf
  cat input.vcf | vt annotate -`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return usagef("exactly one input file is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnnotate(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.outputFile, "output", "o", "-", "Output file (.gz for compressed; default: stdout)")
	cmd.Flags().StringVarP(&opts.outputFormat, "output-format", "f", "vcf", "Output format: vcf, tab")
	cmd.Flags().StringVarP(&opts.intervals, "intervals", "i", "", "Comma-separated intervals, e.g. chr1:100-200,chr2")
	cmd.Flags().StringVarP(&opts.intervalFile, "interval-file", "I", "", "File listing intervals, one per line")
	cmd.Flags().BoolVarP(&opts.printSummary, "print", "p", false, "Print summary statistics to stderr")
	cmd.Flags().StringP("reference", "r", "", "Reference FASTA for repeat context")
	cmd.Flags().Int("workers", 0, "Annotation workers (default: one per CPU)")
	viper.BindPFlag("annotate.reference", cmd.Flags().Lookup("reference"))
	viper.BindPFlag("annotate.workers", cmd.Flags().Lookup("workers"))

	return cmd
}

func runAnnotate(ctx context.Context, inputPath string, opts annotateOptions) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	intervals, err := genome.LoadIntervals(opts.intervalFile, opts.intervals)
	if err != nil {
		return usagef("%v", err)
	}

	opener := vcf.NewOpener()
	defer opener.Close()

	parser, err := opener.Open(ctx, inputPath)
	if err != nil {
		return err
	}

	var ref *reference.Genome
	if refPath := viper.GetString("annotate.reference"); refPath != "" {
		ref = reference.NewGenome(refPath)
		if err := ref.Load(); err != nil {
			parser.Close()
			return fmt.Errorf("loading reference: %w", err)
		}
		logger.Info("loaded reference", zap.String("path", refPath), zap.Int("contigs", len(ref.Names())))
	}

	// Without a contig dictionary records are read as they come and
	// sortedness is not checked.
	var order *genome.ContigOrder
	switch {
	case ref != nil:
		order = genome.NewContigOrder(ref.Names()...)
	case len(parser.Contigs()) > 0:
		order = genome.NewContigOrder(parser.Contigs()...)
	}

	var src vcf.VariantParser = parser
	if order != nil {
		var set *genome.IntervalSet
		if len(intervals) > 0 {
			if set, err = genome.NewIntervalSet(order, intervals); err != nil {
				parser.Close()
				return fmt.Errorf("resolve intervals: %w", err)
			}
		}
		cursor, err := merge.NewCursor(0, inputPath, parser, order, set)
		if err != nil {
			return err
		}
		src = cursor
	} else if len(intervals) > 0 {
		parser.Close()
		return usagef("intervals need ##contig header lines or a reference (-r)")
	}
	defer src.Close()

	out, err := output.Create(opts.outputFile)
	if err != nil {
		return err
	}
	defer out.Close()

	var writer annotate.AnnotationWriter
	switch opts.outputFormat {
	case "vcf":
		writer = output.NewVCFWriter(out, parser.Header())
	case "tab":
		writer = output.NewTabWriter(out)
	default:
		return usagef("unknown output format %q", opts.outputFormat)
	}

	if err := writer.WriteHeader(); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	var ann *annotate.Annotator
	if ref != nil {
		ann = annotate.NewAnnotator(ref)
	} else {
		ann = annotate.NewAnnotator(nil)
	}
	ann.SetWorkers(viper.GetInt("annotate.workers"))
	ann.SetLogger(logger)

	stats := &annotate.Stats{}
	if err := ann.AnnotateAll(ctx, src, writer, stats); err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing output: %w", err)
	}

	if opts.printSummary {
		printAnnotateStats(stats)
	}
	return nil
}

func printAnnotateStats(stats *annotate.Stats) {
	fmt.Fprintf(os.Stderr, "stats: no. of variants annotated   %d\n", stats.Annotated)
	types := make([]string, 0, len(stats.ByType))
	for t := range stats.ByType {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		fmt.Fprintf(os.Stderr, "       %-26s %d\n", t, stats.ByType[t])
	}
	fmt.Fprintln(os.Stderr)
}
