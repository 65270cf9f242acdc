package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jacoelho/docstream/internal/config"
	"github.com/jacoelho/docstream/internal/document"
	"github.com/jacoelho/docstream/internal/event"
	"github.com/jacoelho/docstream/internal/exit"
	"github.com/jacoelho/docstream/internal/output"
	"github.com/jacoelho/docstream/internal/projection"
	"github.com/jacoelho/docstream/internal/query"
	"github.com/jacoelho/docstream/internal/ratelimit"
	"github.com/jacoelho/docstream/internal/results"
	"github.com/jacoelho/docstream/internal/value"
	"go.uber.org/zap"
)

// IDField is the key -assign-id fills in.
const IDField = "_id"

var ErrStreamOutput = errors.New("streaming requires JSON output")

// Runner reads every configured input and writes its documents.
type Runner struct {
	config      *config.Config
	logger      *zap.Logger
	rateLimiter *ratelimit.Limiter
	query       *query.Query

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	newID func() string
}

// New creates a new Runner with the provided configuration.
// If creation fails, returns nil runner and exit result.
func New(cfg *config.Config, logger *zap.Logger, stdin io.Reader, stdout, stderr io.Writer) (*Runner, *exit.Result) {
	r := &Runner{
		config:      cfg,
		logger:      logger,
		rateLimiter: ratelimit.New(cfg.RateLimit),
		stdin:       stdin,
		stdout:      stdout,
		stderr:      stderr,
		newID:       uuid.NewString,
	}

	if cfg.Select != "" {
		q, err := query.Compile(cfg.Select)
		if err != nil {
			return nil, exit.Usagef("Error creating runner: %v\n", err)
		}
		r.query = q
	}

	return r, nil
}

// Run processes the inputs and returns the process exit code.
func (r *Runner) Run(ctx context.Context) int {
	summary, err := r.ExecuteSources(ctx, r.config.Inputs)

	if r.config.Debug && summary != nil {
		if err := summary.FormatText(r.stderr); err != nil {
			r.logger.Warn("failed to write summary", zap.Error(err))
		}
	}

	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintf(r.stderr, "\nInterrupted after %d document(s)\n", summary.Documents)
		}
		return exit.CodeFailure
	}
	return exit.CodeOK
}

// ExecuteSources processes every input in order and returns the per-source
// results together with the first error seen. Cancellation stops early.
func (r *Runner) ExecuteSources(ctx context.Context, inputs []string) (*results.Summary, error) {
	s := results.NewSummary(len(inputs))

	enc, err := output.New(r.config.Format, r.stdout, r.config.IndentString())
	if err != nil {
		return s, err
	}

	overallStart := time.Now()
	defer func() { s.SetTotalDuration(time.Since(overallStart)) }()

	if r.config.Last {
		if err := r.executeLast(ctx, inputs, enc, s); err != nil {
			return s, err
		}
		return s, s.FirstError()
	}

	for _, name := range inputs {
		select {
		case <-ctx.Done():
			return s, ctx.Err()
		default:
		}

		start := time.Now()
		count, err := r.executeSource(ctx, name, enc)
		s.Add(results.NewSourceResultBuilder(name).
			WithDocuments(count).
			WithDuration(time.Since(start)).
			WithError(err))

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return s, err
		}
	}

	return s, s.FirstError()
}

// executeSource writes every document of one input and returns how many it wrote.
func (r *Runner) executeSource(ctx context.Context, name string, enc output.Encoder) (int, error) {
	src, err := r.open(name)
	if err != nil {
		r.logger.Error("failed to open source", zap.String("source", name), zap.Error(err))
		return 0, err
	}
	defer src.Close()

	r.logger.Debug("processing source", zap.String("source", name), zap.String("format", r.inputFormat(name)))

	var count int
	if r.config.Stream {
		count, err = r.stream(ctx, src, enc)
	} else {
		count, err = r.materialize(ctx, src, enc)
	}
	if err != nil {
		r.logger.Error("source failed", zap.String("source", name), zap.Int("documents", count), zap.Error(err))
		return count, fmt.Errorf("source %s: %w", name, err)
	}

	r.logger.Debug("source done", zap.String("source", name), zap.Int("documents", count))
	return count, nil
}

// stream copies events straight into the JSON builder.
func (r *Runner) stream(ctx context.Context, src event.Reader, enc output.Encoder) (int, error) {
	jsonEnc, ok := enc.(*output.JSONEncoder)
	if !ok {
		return 0, ErrStreamOutput
	}
	builder := jsonEnc.Builder()

	count := 0
	for {
		if err := r.rateLimiter.Wait(ctx); err != nil {
			return count, err
		}
		err := document.Copy(src, builder)
		if errors.Is(err, io.EOF) {
			return count, nil
		}
		if err != nil {
			builder.Reset()
			return count, err
		}
		count++
	}
}

func (r *Runner) materialize(ctx context.Context, src event.Reader, enc output.Encoder) (int, error) {
	m := document.NewMaterializer()

	count := 0
	for {
		if err := r.rateLimiter.Wait(ctx); err != nil {
			return count, err
		}
		doc, err := m.Next(src)
		if errors.Is(err, io.EOF) {
			return count, nil
		}
		if err != nil {
			return count, err
		}
		if err := r.emit(doc, enc); err != nil {
			return count, err
		}
		count++
	}
}

// executeLast writes the final document of each input.
func (r *Runner) executeLast(ctx context.Context, inputs []string, enc output.Encoder, s *results.Summary) error {
	it := document.NewIterator(r.sources(inputs))
	defer it.Close()

	for _, name := range inputs {
		if err := r.rateLimiter.Wait(ctx); err != nil {
			return err
		}
		if !it.HasNext() {
			break
		}

		start := time.Now()
		doc, err := it.Next()
		count := 0
		if err == nil {
			err = r.emit(doc, enc)
			count = 1
		}
		if err != nil {
			r.logger.Error("source failed", zap.String("source", name), zap.Error(err))
			err = fmt.Errorf("source %s: %w", name, err)
			count = 0
		}

		s.Add(results.NewSourceResultBuilder(name).
			WithDocuments(count).
			WithDuration(time.Since(start)).
			WithError(err))
	}
	return nil
}

// sources opens inputs lazily, in order. An input that fails to open yields
// a reader reporting the failure.
func (r *Runner) sources(inputs []string) iter.Seq[event.Reader] {
	return func(yield func(event.Reader) bool) {
		for _, name := range inputs {
			var src event.Reader
			s, err := r.open(name)
			if err != nil {
				src = failedReader{err: err}
			} else {
				src = s
			}
			if !yield(src) {
				if s != nil {
					s.Close()
				}
				return
			}
		}
	}
}

// emit applies the per-document options and writes the result.
func (r *Runner) emit(doc *document.Document, enc output.Encoder) error {
	if r.config.AssignID {
		if _, ok := doc.Root().Get(IDField); !ok {
			doc.Root().Put(IDField, value.String(r.newID()))
		}
	}

	if r.query == nil {
		return enc.Encode(doc)
	}

	matches, err := r.query.Select(doc)
	if err != nil {
		return err
	}
	for _, m := range matches {
		if err := enc.EncodeValue(m.Value); err != nil {
			return err
		}
	}
	return nil
}

// source is an event reader that owns the underlying input.
type source struct {
	event.Reader
	closer io.Closer
}

func (s *source) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

func (r *Runner) open(name string) (*source, error) {
	var (
		in     io.Reader
		closer io.Closer
	)
	if name == config.Stdin {
		in = r.stdin
	} else {
		f, err := os.Open(name)
		if err != nil {
			return nil, fmt.Errorf("failed to open file %s: %w", name, err)
		}
		in, closer = f, f
	}

	var reader event.Reader
	switch r.inputFormat(name) {
	case config.InputYAML:
		reader = event.NewYAMLReader(in)
	default:
		reader = event.NewJSONReader(in)
	}

	if len(r.config.Fields) > 0 {
		reader = projection.NewReader(reader, r.config.Fields...)
	}
	return &source{Reader: reader, closer: closer}, nil
}

// inputFormat resolves "auto" from the file extension; standard input is JSON.
func (r *Runner) inputFormat(name string) string {
	if r.config.InputFormat != config.InputAuto {
		return r.config.InputFormat
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return config.InputYAML
	}
	return config.InputJSON
}

type failedReader struct {
	err error
}

func (f failedReader) Next() (event.Event, error) {
	return event.Event{}, f.err
}
