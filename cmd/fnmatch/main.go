// Command fnmatch compares filenames the way the download reconciler does.
//
// Pair mode decides whether two filenames refer to the same file:
//
//	fnmatch -requested "【Show】 Ep1.mp4" -actual "show ep1.mp4"
//
// Query mode reads one candidate per line from -candidates or stdin and prints
// the candidates that match:
//
//	ls ~/Downloads | fnmatch -query "Quarterly Report.pdf"
//
// The exit status is 0 when something matched, 1 when nothing did and 2 on error.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	filenamesimilarity "github.com/baditaflorin/go_filename_similarity"
	"github.com/baditaflorin/go_filename_similarity/internal/core/domain"
	"github.com/baditaflorin/go_filename_similarity/pkg/streaming"
	"github.com/baditaflorin/l"
)

const (
	exitMatch   = 0
	exitNoMatch = 1
	exitError   = 2
)

type options struct {
	requested    string
	actual       string
	query        string
	candidates   string
	threshold    float64
	algorithm    string
	widthFolding bool
	jsonOutput   bool
	verbose      bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options

	fs := flag.NewFlagSet("fnmatch", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.requested, "requested", "", "Requested filename (pair mode)")
	fs.StringVar(&opts.actual, "actual", "", "Actual filename (pair mode)")
	fs.StringVar(&opts.query, "query", "", "Filename to look for among candidates (query mode)")
	fs.StringVar(&opts.candidates, "candidates", "", "File with one candidate per line (default stdin)")
	fs.Float64Var(&opts.threshold, "threshold", filenamesimilarity.DefaultThreshold, "Similarity threshold (0.0-1.0), matched strictly above")
	fs.StringVar(&opts.algorithm, "algorithm", "levenshtein", "Similarity algorithm: "+algorithmList())
	fs.BoolVar(&opts.widthFolding, "width-folding", false, "Fold full-width characters before comparing")
	fs.BoolVar(&opts.jsonOutput, "json", false, "Write JSON instead of text")
	fs.BoolVar(&opts.verbose, "verbose", false, "Log matcher activity to stderr")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: fnmatch [options]\n")
		fmt.Fprintf(stderr, "\nOptions:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  fnmatch -requested=\"Report.pdf\" -actual=\"report (1).pdf\"\n")
		fmt.Fprintf(stderr, "  ls ~/Downloads | fnmatch -query=\"Quarterly Report.pdf\" -json\n")
	}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	return opts, validateOptions(opts)
}

// validateOptions checks that exactly one mode was selected.
func validateOptions(opts options) error {
	pairMode := opts.requested != "" || opts.actual != ""
	queryMode := opts.query != ""

	switch {
	case pairMode && queryMode:
		return errors.New("-query cannot be combined with -requested/-actual")
	case !pairMode && !queryMode:
		return errors.New("must provide -requested and -actual, or -query")
	case opts.candidates != "" && !queryMode:
		return errors.New("-candidates requires -query")
	}
	return nil
}

func algorithmList() string {
	names := make([]string, 0, len(filenamesimilarity.Algorithms()))
	for _, a := range filenamesimilarity.Algorithms() {
		names = append(names, string(a))
	}
	return strings.Join(names, ", ")
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitMatch
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}

	matcherOpts := []filenamesimilarity.Option{
		filenamesimilarity.WithThreshold(opts.threshold),
		filenamesimilarity.WithAlgorithm(filenamesimilarity.Algorithm(opts.algorithm)),
	}
	if opts.widthFolding {
		matcherOpts = append(matcherOpts, filenamesimilarity.WithWidthFolding())
	}
	if opts.verbose {
		lg, err := l.NewStandardFactory().CreateLogger(l.Config{Output: stderr})
		if err != nil {
			fmt.Fprintf(stderr, "Error creating logger: %v\n", err)
			return exitError
		}
		matcherOpts = append(matcherOpts, filenamesimilarity.WithLogger(lg))
	} else {
		matcherOpts = append(matcherOpts, filenamesimilarity.WithQuietLogger())
	}

	fm, err := filenamesimilarity.New(matcherOpts...)
	if err != nil {
		fmt.Fprintf(stderr, "Error creating matcher: %v\n", err)
		return exitError
	}
	defer fm.Close()

	if opts.query == "" {
		return runPair(fm, opts, stdout, stderr)
	}
	return runQuery(ctx, fm, opts, stdin, stdout, stderr)
}

func runPair(fm *filenamesimilarity.FilenameMatcher, opts options, stdout, stderr io.Writer) int {
	result := fm.Match(opts.requested, opts.actual)

	if opts.jsonOutput {
		if err := json.NewEncoder(stdout).Encode(result); err != nil {
			fmt.Fprintf(stderr, "Error writing result: %v\n", err)
			return exitError
		}
	} else {
		verdict := "no match"
		if result.Passed {
			verdict = "match"
		}
		fmt.Fprintf(stdout, "%s\tscore=%.4f\treason=%s\n", verdict, result.Score, result.Reason)
		if opts.verbose {
			fmt.Fprintf(stdout, "requested: %q\nactual:    %q\n", result.Requested, result.Actual)
		}
	}

	if result.Passed {
		return exitMatch
	}
	return exitNoMatch
}

func runQuery(ctx context.Context, fm *filenamesimilarity.FilenameMatcher, opts options, stdin io.Reader, stdout, stderr io.Writer) int {
	input := stdin
	if opts.candidates != "" {
		file, err := os.Open(opts.candidates)
		if err != nil {
			fmt.Fprintf(stderr, "Error opening candidates: %v\n", err)
			return exitError
		}
		defer file.Close()
		input = file
	}

	sm, err := streaming.NewStreamMatcher(streaming.WithStreamingMatcher(fm))
	if err != nil {
		fmt.Fprintf(stderr, "Error creating stream matcher: %v\n", err)
		return exitError
	}

	enc := json.NewEncoder(stdout)
	matched := 0
	err = sm.MatchReaderFunc(ctx, opts.query, input, func(hit domain.Hit) error {
		matched++
		if opts.jsonOutput {
			return enc.Encode(hit)
		}
		_, err := fmt.Fprintf(stdout, "%d:%s\tscore=%.4f\treason=%s\n",
			hit.Line, hit.Candidate, hit.Result.Score, hit.Result.Reason)
		return err
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}

	if matched == 0 {
		return exitNoMatch
	}
	return exitMatch
}
