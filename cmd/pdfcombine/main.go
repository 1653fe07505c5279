// pdfcombine - merge PDF documents
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/yourorg/pdf-combine-kit/pkg/combiner"
	"github.com/yourorg/pdf-combine-kit/pkg/logging"
	"github.com/yourorg/pdf-combine-kit/pkg/manifest"
	"github.com/yourorg/pdf-combine-kit/pkg/pdfutil"
)

// stringList collects repeated flag values in order.
type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

var (
	printHelp = flag.Bool("h", false, "print usage information")
	printVer  = flag.Bool("v", false, "print version information")

	pagesFlags  stringList
	orientFlags stringList

	orientation  = flag.String("orientation", "", "orientation for the whole document: portrait or landscape")
	duplex       = flag.Bool("duplex", false, "pad each document to an even page count for two-sided printing")
	mode         = flag.String("mode", "file", "output mode: file, browser, download, or string")
	manifestPath = flag.String("manifest", "", "read sources from a CSV manifest instead of arguments")
	verbose      = flag.Bool("verbose", false, "log merge progress")

	title    = flag.String("title", "", "document title")
	author   = flag.String("author", "", "document author")
	subject  = flag.String("subject", "", "document subject")
	keywords = flag.String("keywords", "", "document keywords")
	creator  = flag.String("creator", "", "document creator")
)

func init() {
	flag.Var(&pagesFlags, "pages", "page selection for the matching input, e.g. 1,3,5-8 (repeatable)")
	flag.Var(&orientFlags, "orient", "orientation override for the matching input (repeatable)")
}

func usage() {
	fmt.Fprintf(os.Stderr, "pdfcombine version 1.0.0\n")
	fmt.Fprintf(os.Stderr, "Usage: pdfcombine [options] <PDF-file-1> ... <PDF-file-n> <output-PDF-file>\n")
	fmt.Fprintf(os.Stderr, "       pdfcombine [options] -manifest <file.csv> <output-PDF-file>\n")
	fmt.Fprintf(os.Stderr, "\nOptions:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if *printHelp {
		usage()
		os.Exit(0)
	}

	if *printVer {
		fmt.Println("pdfcombine version 1.0.0")
		os.Exit(0)
	}

	args := flag.Args()

	logger := logging.Nop()
	if *verbose {
		var err error
		logger, err = logging.NewLogger("debug", "console")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
			os.Exit(1)
		}
		defer logging.Sync(logger)
	}

	session := combiner.NewSession(combiner.WithLogger(logger))

	var output string
	if *manifestPath != "" {
		if len(pagesFlags) > 0 || len(orientFlags) > 0 {
			fmt.Fprintf(os.Stderr, "Error: -pages and -orient cannot be combined with -manifest\n")
			os.Exit(1)
		}
		if len(args) != 1 {
			usage()
			os.Exit(1)
		}
		output = args[0]

		entries, err := manifest.LoadFile(*manifestPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading manifest %s: %v\n", *manifestPath, err)
			os.Exit(1)
		}

		for _, entry := range entries {
			orient, err := pdfutil.ParseOrientation(entry.Orientation)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error in manifest entry %s: %v\n", entry.File, err)
				os.Exit(1)
			}
			if entry.Pages == "" {
				err = session.AddDocument(entry.File, nil, orient)
			} else {
				err = session.AddDocumentRange(entry.File, entry.Pages, orient)
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error adding %s: %v\n", entry.File, err)
				os.Exit(1)
			}
		}
	} else {
		if len(args) < 2 {
			usage()
			os.Exit(1)
		}

		// Last argument is the output file
		output = args[len(args)-1]
		inputs := args[:len(args)-1]

		for i, input := range inputs {
			orient := combiner.OrientationAuto
			if i < len(orientFlags) && orientFlags[i] != "" {
				var err error
				orient, err = pdfutil.ParseOrientation(orientFlags[i])
				if err != nil {
					fmt.Fprintf(os.Stderr, "Error for %s: %v\n", input, err)
					os.Exit(1)
				}
			}

			var err error
			if i < len(pagesFlags) && pagesFlags[i] != "" {
				err = session.AddDocumentRange(input, pagesFlags[i], orient)
			} else {
				err = session.AddDocument(input, nil, orient)
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error adding %s: %v\n", input, err)
				os.Exit(1)
			}
		}
	}

	globalOrient, err := pdfutil.ParseOrientation(*orientation)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	metadata := map[string]string{}
	for key, value := range map[string]string{
		"title":    *title,
		"author":   *author,
		"subject":  *subject,
		"keywords": *keywords,
		"creator":  *creator,
	} {
		if value != "" {
			metadata[key] = value
		}
	}

	if err := session.Merge(combiner.MergeOptions{
		Orientation: globalOrient,
		Metadata:    metadata,
		Duplex:      *duplex,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error merging PDFs: %v\n", err)
		os.Exit(1)
	}

	outMode := combiner.ParseOutputMode(*mode)
	data, err := session.Save(output, outMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", output, err)
		os.Exit(1)
	}
	if outMode == combiner.ModeString {
		os.Stdout.Write(data)
	}

	if outMode == combiner.ModeFile {
		fmt.Printf("Combined %d documents (%d pages) into %s\n",
			session.DocumentCount(), session.PageCount(), output)
	}
}
