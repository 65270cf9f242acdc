package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jacoelho/docstream/internal/exit"
	"github.com/jacoelho/docstream/internal/fieldpath"
	"github.com/jacoelho/docstream/internal/output"
)

const (
	InputAuto = "auto"
	InputJSON = "json"
	InputYAML = "yaml"

	// Stdin is the input name that reads standard input.
	Stdin = "-"
)

var (
	ErrNoArguments       = errors.New("no arguments provided")
	ErrUnknownInput      = errors.New("input format must be json, yaml or auto")
	ErrUnknownOutput     = errors.New("output format must be json or yaml")
	ErrStreamConflict    = errors.New("-stream writes JSON directly and cannot be combined with -select, -assign-id, -last or -format yaml")
	ErrNegativeRateLimit = errors.New("rate limit cannot be negative")
)

// Config represents the complete configuration for the docstream tool.
type Config struct {
	// Inputs are file names; "-" reads standard input.
	Inputs      []string
	InputFormat string
	Format      string
	Indent      bool

	Fields   []fieldpath.Path
	Select   string
	Stream   bool
	AssignID bool
	// Last keeps only the final document of each input.
	Last bool

	RateLimit float64 // Documents per second (0 = unlimited)
	Debug     bool
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	switch c.InputFormat {
	case InputAuto, InputJSON, InputYAML:
	default:
		return fmt.Errorf("%w, got: %s", ErrUnknownInput, c.InputFormat)
	}

	switch c.Format {
	case output.FormatJSON, output.FormatYAML:
	default:
		return fmt.Errorf("%w, got: %s", ErrUnknownOutput, c.Format)
	}

	if c.Stream && (c.Select != "" || c.AssignID || c.Last || c.Format != output.FormatJSON) {
		return ErrStreamConflict
	}

	if c.RateLimit < 0 {
		return ErrNegativeRateLimit
	}

	for _, file := range c.Inputs {
		if file == Stdin {
			continue
		}
		if _, err := os.Stat(file); err != nil {
			return fmt.Errorf("input file %s not found: %w", file, err)
		}
	}

	return nil
}

// IndentString is the JSON indentation implied by Indent.
func (c *Config) IndentString() string {
	if c.Indent {
		return "  "
	}
	return ""
}

// fieldsFlag implements flag.Value for repeatable, comma separated -fields.
type fieldsFlag []fieldpath.Path

func (f *fieldsFlag) String() string {
	parts := make([]string, 0, len(*f))
	for _, p := range *f {
		parts = append(parts, p.String())
	}
	return strings.Join(parts, ",")
}

// Set parses one or more paths separated by commas. Commas inside backticks
// belong to the name.
func (f *fieldsFlag) Set(value string) error {
	for _, text := range splitFields(value) {
		p, err := fieldpath.Parse(text)
		if err != nil {
			return err
		}
		*f = append(*f, p)
	}
	return nil
}

func splitFields(value string) []string {
	var (
		fields  []string
		current strings.Builder
		quoted  bool
		escaped bool
	)

	for _, r := range value {
		switch {
		case escaped:
			escaped = false
		case quoted && r == '\\':
			escaped = true
		case r == '`':
			quoted = !quoted
		case r == ',' && !quoted:
			if s := strings.TrimSpace(current.String()); s != "" {
				fields = append(fields, s)
			}
			current.Reset()
			continue
		}
		current.WriteRune(r)
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		fields = append(fields, s)
	}
	return fields
}

// Parse parses command-line arguments and returns a validated Config.
// If parsing fails or help is requested, returns nil config and exit result.
func Parse(args []string) (*Config, *exit.Result) {
	if len(args) == 0 {
		return nil, exit.Usagef("Error: %v\n\n%s", ErrNoArguments, Usage())
	}

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)

	// Suppress the default usage output since we handle it ourselves
	fs.Usage = func() {}
	// Suppress error output since we handle it ourselves
	fs.SetOutput(io.Discard)

	var (
		fields     fieldsFlag
		format     = fs.String("format", output.FormatJSON, "Output format: json or yaml")
		input      = fs.String("input", InputAuto, "Input format: json, yaml or auto")
		fieldsFile = fs.String("fields-file", "", "Path to a file listing field paths, one per line")
		selectExpr = fs.String("select", "", "JSONPath expression selecting values to print")
		stream     = fs.Bool("stream", false, "Copy events straight to JSON output without building documents")
		indent     = fs.Bool("indent", false, "Indent JSON output")
		assignID   = fs.Bool("assign-id", false, "Add a random _id to documents that lack one")
		last       = fs.Bool("last", false, "Keep only the last document of each input")
		rateLimit  = fs.Float64("rate-limit", 0, "Rate limit in documents per second (0 for unlimited)")
		debug      = fs.Bool("debug", false, "Enable debug logging")
	)

	fs.Var(&fields, "fields", "Comma separated field paths to keep (can be used multiple times)")

	if err := fs.Parse(args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, exit.Success(Usage())
		}
		return nil, exit.Usagef("Error: failed to parse arguments: %v\n\n%s", err, Usage())
	}

	// File paths first, command-line paths after them.
	var allFields []fieldpath.Path
	if *fieldsFile != "" {
		fromFile, err := loadFieldsFile(*fieldsFile)
		if err != nil {
			return nil, exit.Usagef("Error: failed to load fields file: %v\n\n%s", err, Usage())
		}
		allFields = append(allFields, fromFile...)
	}
	allFields = append(allFields, fields...)

	inputs := fs.Args()
	if len(inputs) == 0 {
		inputs = []string{Stdin}
	}

	config := &Config{
		Inputs:      inputs,
		InputFormat: strings.ToLower(*input),
		Format:      strings.ToLower(*format),
		Indent:      *indent,
		Fields:      allFields,
		Select:      *selectExpr,
		Stream:      *stream,
		AssignID:    *assignID,
		Last:        *last,
		RateLimit:   *rateLimit,
		Debug:       *debug,
	}

	if err := config.Validate(); err != nil {
		return nil, exit.Usagef("Error: %v\n\n%s", err, Usage())
	}

	return config, nil
}

// loadFieldsFile loads field paths, one per line.
// It supports comments (lines starting with #) and empty lines.
func loadFieldsFile(filename string) ([]fieldpath.Path, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	var paths []fieldpath.Path
	for lineNum, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		p, err := fieldpath.Parse(line)
		if err != nil {
			return nil, fmt.Errorf("invalid field path at line %d: %w", lineNum+1, err)
		}
		paths = append(paths, p)
	}

	return paths, nil
}

// Usage returns a usage string for the CLI tool.
func Usage() string {
	return `docstream - document stream processor

Usage: docstream [options] [file1] [file2] ...

Reads JSON or YAML documents from the given files (or standard input) and
writes them back as JSON or YAML.

Options:
  --format FORMAT         Output format: json or yaml (default: json)
  --input FORMAT          Input format: json, yaml or auto (default: auto, by file extension)
  --fields PATHS          Comma separated field paths to keep, e.g. a.b,c[] (can be used multiple times)
  --fields-file FILE      Path to a file listing field paths, one per line
  --select EXPR           JSONPath expression; print the selected values instead of documents
  --stream                Copy events straight to JSON output without building documents
  --indent                Indent JSON output
  --assign-id             Add a random _id to documents that lack one
  --last                  Keep only the last document of each input
  --rate-limit N          Rate limit in documents per second (0 for unlimited)
  --debug                 Enable debug logging
  -h, --help              Show this help message

Examples:
  docstream data.json                          # Re-emit documents as JSON lines
  docstream --format yaml data.json            # Convert JSON documents to YAML
  docstream --fields user.name,tags data.yaml  # Keep only some fields
  docstream --select '$.items[*].sku' a.json   # Print selected values
  docstream --last a.json b.yaml               # One document per input
  cat data.json | docstream --stream           # Stream events without materializing`
}
