package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/bytedance/sonic"

	"github.com/docquery/docquery"
	"github.com/docquery/docquery/internal/config"
	"github.com/docquery/docquery/internal/logging"
)

func main() {
	css := flag.String("css", "", "CSS selector to apply")
	xp := flag.String("xpath", "", "XPath expression to apply")
	first := flag.Bool("first", false, "Print only the first match")
	text := flag.Bool("text", false, "Collapse matches to one joined text string")
	attr := flag.String("attr", "", "Print the named attribute of the first match")
	jsonOut := flag.Bool("json", false, "Print the structured result record as JSON")
	sanitize := flag.Bool("sanitize", false, "Sanitize input before parsing")
	flag.Parse()

	if *css == "" && *xp == "" {
		fmt.Fprintln(os.Stderr, "one of -css or -xpath is required")
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.LoadOrDefault()
	log, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		log = logging.Nop()
	}

	input, err := readInput(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "reading input: %v\n", err)
		os.Exit(2)
	}

	opts := []docquery.Option{
		docquery.WithLogger(log),
		docquery.WithMaxSize(cfg.Limits.MaxHTMLSize),
	}
	if *sanitize {
		opts = append(opts, docquery.WithSanitize())
	}

	sel := docquery.Parse(input, opts...)
	if *css != "" {
		sel = sel.CSS(*css)
	} else {
		sel = sel.XPath(*xp)
	}

	switch {
	case *jsonOut:
		out, err := sonic.MarshalIndent(sel.Result(), "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "encoding result: %v\n", err)
			os.Exit(2)
		}
		fmt.Println(string(out))
	case *attr != "":
		fmt.Println(sel.AttrOr(*attr, ""))
	case *text:
		fmt.Println(sel.Text())
	case *first:
		fmt.Println(sel.Get())
	default:
		for _, v := range sel.GetAll() {
			fmt.Println(v)
		}
	}

	if !sel.Ok() {
		os.Exit(1)
	}
}

// readInput reads the file argument, or stdin for "" / "-".
func readInput(path string) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	return string(data), err
}
