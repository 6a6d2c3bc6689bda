// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package runner

import (
	"context"
	"errors"
	"io"
	"os"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"gopkg.microglot.org/parsec.go/internal/exc"
	"gopkg.microglot.org/parsec.go/internal/idl"
	"gopkg.microglot.org/parsec.go/internal/iter"
	"gopkg.microglot.org/parsec.go/internal/parsec"
	"gopkg.microglot.org/parsec.go/internal/target"
)

type Option func(r *Runner) error

func OptionWithFS(fs idl.FileSystem) Option {
	return func(r *Runner) error {
		r.FS = fs
		return nil
	}
}

func OptionWithLookupEnv(lookupEnv func(string) (string, bool)) Option {
	return func(r *Runner) error {
		r.LookupENV = lookupEnv
		return nil
	}
}

func OptionWithReporter(reporter exc.Reporter) Option {
	return func(r *Runner) error {
		r.Reporter = reporter
		return nil
	}
}

func OptionWithLogger(logger logrus.FieldLogger) Option {
	return func(r *Runner) error {
		r.Logger = logger
		return nil
	}
}

func OptionWithMaxConcurrency(max int) Option {
	return func(r *Runner) error {
		if max < 0 {
			return errors.New("max concurrency must not be negative")
		}
		r.MaxConcurrency = max
		return nil
	}
}

// OptionWithGrammar installs g for kind, replacing any default.
func OptionWithGrammar(kind idl.FileKind, g Grammar) Option {
	return func(r *Runner) error {
		if kind == idl.FileKindNone {
			return errors.New("cannot install a grammar for files of no kind")
		}
		if r.Grammars == nil {
			r.Grammars = DefaultGrammars()
		}
		r.Grammars[kind] = g
		return nil
	}
}

// Runner parses batches of files with the grammar matching each file.
type Runner struct {
	LookupENV      func(string) (string, bool)
	FS             idl.FileSystem
	MaxConcurrency int
	Semaphore      *semaphore
	Reporter       exc.Reporter
	Logger         logrus.FieldLogger
	Grammars       map[idl.FileKind]Grammar
}

func New(opts ...Option) (*Runner, error) {
	r := &Runner{}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	if r.LookupENV == nil {
		r.LookupENV = os.LookupEnv
	}
	if r.FS == nil {
		dfs, err := NewDefaultFS(r.LookupENV)
		if err != nil {
			return nil, err
		}
		r.FS = dfs
	}
	if r.MaxConcurrency == 0 {
		max := runtime.GOMAXPROCS(-1)
		cpus := runtime.NumCPU()
		if max > cpus {
			max = cpus
		}
		r.MaxConcurrency = max
	}
	if r.Semaphore == nil {
		r.Semaphore = newSemaphore(r.MaxConcurrency)
	}
	if r.Reporter == nil {
		r.Reporter = exc.NewReporter(nil)
	}
	if r.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		r.Logger = l
	}
	if r.Grammars == nil {
		r.Grammars = DefaultGrammars()
	}
	return r, nil
}

type Request struct {
	// Files are paths or URIs resolved against the file system. Directories
	// expand to the files inside them that have a known extension.
	Files []string
	// Kind forces a grammar for every file. FileKindNone selects by
	// extension.
	Kind idl.FileKind
	// Options are passed to every parse.
	Options []parsec.Option
}

type Result struct {
	URI   string
	Kind  idl.FileKind
	Value any
}

type Response struct {
	// Results holds one entry per file that parsed, ordered by URI.
	Results []Result
}

// Run parses every file in the request. Files are parsed concurrently and a
// failure in one does not stop the others. Everything reported is returned
// as an exc.MultiException alongside the results that succeeded.
func (self *Runner) Run(ctx context.Context, req *Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	files := make([]idl.File, 0, len(req.Files))
	for _, f := range req.Files {
		uri := target.Normalize(f)
		in, err := self.FS.Open(ctx, uri)
		if err != nil {
			self.Logger.WithField("uri", uri).WithError(err).Debug("cannot open target")
			_ = self.report(uri, err)
			continue
		}
		files = append(files, in...)
	}

	loaded := &sync.Map{}
	results := make(chan fileResult)
	for _, file := range files {
		go func(file idl.File) {
			result := self.parseFile(ctx, file, req, loaded)
			select {
			case results <- result:
			case <-ctx.Done():
			}
		}(file)
	}

	out := &Response{}
	for x := 0; x < len(files); x = x + 1 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case result := <-results:
			if result.err != nil {
				_ = self.report(result.uri, result.err)
				continue
			}
			if result.skipped {
				continue
			}
			out.Results = append(out.Results, Result{URI: result.uri, Kind: result.kind, Value: result.value})
		}
	}
	sort.Slice(out.Results, func(i, j int) bool { return out.Results[i].URI < out.Results[j].URI })

	caught := self.Reporter.Reported()
	if len(caught) > 0 {
		return out, exc.MultiException(caught)
	}
	return out, nil
}

func (self *Runner) parseFile(ctx context.Context, file idl.File, req *Request, loaded *sync.Map) fileResult {
	uri := file.Path(ctx)
	kind := req.Kind
	if kind == idl.FileKindNone {
		kind = file.Kind(ctx)
	}
	result := fileResult{uri: uri, kind: kind}
	if _, ok := loaded.LoadOrStore(uri, true); ok {
		result.skipped = true
		return result
	}
	g := self.Grammars[kind]
	if g == nil {
		result.err = exc.New(exc.Location{URI: uri}, exc.CodeUnsupportedFileFormat, "no grammar for "+kind.String()+" files")
		return result
	}

	if err := self.Semaphore.Lock(ctx); err != nil {
		result.err = err
		return result
	}
	defer self.Semaphore.Unlock()

	log := self.Logger.WithFields(logrus.Fields{"uri": uri, "grammar": kind.String()})
	start := time.Now()
	log.Debug("parsing")
	src, err := readRunes(ctx, file)
	if err != nil {
		result.err = exc.WrapUnknown(exc.Location{URI: uri}, err)
		return result
	}
	opts := make([]parsec.Option, 0, len(req.Options)+1)
	opts = append(opts, parsec.OptionWithURI(uri))
	opts = append(opts, req.Options...)
	result.value, result.err = g.Parse(ctx, uri, src, opts...)
	log.WithField("elapsed", time.Since(start).String()).WithField("ok", result.err == nil).Debug("parsed")
	return result
}

func readRunes(ctx context.Context, file idl.File) ([]rune, error) {
	body, err := file.Body(ctx)
	if err != nil {
		return nil, err
	}
	return iter.ReadRunes(ctx, body)
}

// report hands err to the reporter, splitting a MultiException into its
// members. It returns non-nil when any member was fatal.
func (self *Runner) report(uri string, err error) error {
	var multi exc.MultiException
	if errors.As(err, &multi) {
		var fatal error
		for _, e := range multi {
			if r := self.Reporter.Report(e); r != nil {
				fatal = r
			}
		}
		return fatal
	}
	var e exc.Exception
	if errors.As(err, &e) {
		return self.Reporter.Report(e)
	}
	return self.Reporter.Report(exc.WrapUnknown(exc.Location{URI: uri}, err))
}

type fileResult struct {
	uri     string
	kind    idl.FileKind
	value   any
	err     error
	skipped bool
}
