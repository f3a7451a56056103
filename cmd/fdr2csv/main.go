// Command fdr2csv converts a flight data recorder file to CSV.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"fbwsim/internal/fdr"
)

func main() {
	var opts convertOptions
	var printSize, printVersion, summary bool
	flag.StringVar(&opts.In, "i", "", "Input fdr file")
	flag.StringVar(&opts.Out, "o", "", "Output csv file (stdout when empty)")
	flag.StringVar(&opts.Delimiter, "d", ",", "Field delimiter")
	flag.BoolVar(&opts.NoCompression, "n", false, "Input is not gzip-compressed")
	flag.BoolVar(&printSize, "p", false, "Print the record size and exit")
	flag.BoolVar(&printVersion, "g", false, "Print the interface version of the input file and exit")
	flag.BoolVar(&summary, "summary", false, "Print a summary of the input file instead of converting it")
	flag.Parse()

	if printSize {
		fmt.Println(fdr.RecordSize)
		return
	}
	if opts.In == "" {
		fmt.Fprintln(os.Stderr, "ERROR: -i is required")
		flag.Usage()
		os.Exit(2)
	}

	var err error
	switch {
	case printVersion:
		var v uint64
		if v, err = fileVersion(opts.In, !opts.NoCompression); err == nil {
			fmt.Println(v)
		}
	case summary:
		err = printSummary(os.Stdout, opts.In, !opts.NoCompression)
	default:
		err = convertFile(opts)
	}
	if err != nil {
		var mismatch *versionError
		if errors.As(err, &mismatch) {
			fmt.Fprintf(os.Stderr, "ERROR: mismatch between converter and file version (expected %d, got %d)\n", fdr.Version, mismatch.got)
		} else {
			fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		}
		os.Exit(1)
	}
}
