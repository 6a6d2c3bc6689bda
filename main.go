package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/pluginpb"

	"gopkg.microglot.org/parsec.go/internal/exc"
	"gopkg.microglot.org/parsec.go/internal/fs"
	"gopkg.microglot.org/parsec.go/internal/idl"
	"gopkg.microglot.org/parsec.go/internal/logging"
	"gopkg.microglot.org/parsec.go/internal/parsec"
	"gopkg.microglot.org/parsec.go/internal/render"
	"gopkg.microglot.org/parsec.go/internal/runner"
)

type opts struct {
	Grammar          string
	Roots            []string
	Output           string
	Format           string
	MaxDepth         int
	Vars             map[string]string
	Verify           bool
	DescriptorSetOut string
	Plugin           string
	LogLevel         string
	LogFormat        string
	Concurrency      int
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	op := &opts{}
	flags := pflag.NewFlagSet("parsec", pflag.ContinueOnError)
	flags.StringVarP(&op.Grammar, "grammar", "g", "", "Grammar for every input (arith, bool, json, tokens, toy, protobuf). Selected by file extension when empty.")
	flags.StringSliceVar(&op.Roots, "root", []string{"."}, "Root search paths for inputs.")
	flags.StringVar(&op.Output, "output", ".", "Output directory for plugin generated files.")
	flags.StringVarP(&op.Format, "format", "f", "text", "Result format: text, json or yaml.")
	flags.IntVar(&op.MaxDepth, "max-depth", parsec.DefaultMaxDepth, "Maximum grammar recursion depth. Zero or less disables the limit.")
	flags.StringToStringVar(&op.Vars, "var", nil, "Boolean variables for bool inputs as name=value.")
	flags.BoolVar(&op.Verify, "verify", false, "Check every protobuf input against protocompile.")
	flags.StringVar(&op.DescriptorSetOut, "descriptor_set_out", "", "Writes a protobuf FileDescriptorSet containing all protobuf input to FILE.")
	flags.StringVar(&op.Plugin, "plugin", "", "Runs a protoc plugin executable over the protobuf input.")
	flags.StringVar(&op.LogLevel, "log-level", "warn", "Log level: debug, info, warn or error.")
	flags.StringVar(&op.LogFormat, "log-format", "text", "Log format: text, json or json-pretty.")
	flags.IntVar(&op.Concurrency, "concurrency", 0, "Maximum files parsed at once. Zero uses the number of CPUs.")
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		exit(err)
	}
	targets := flags.Args()
	if len(targets) < 1 {
		exit(errors.New("no input files"))
	}

	logger, err := logging.New(os.Stderr, op.LogLevel, op.LogFormat)
	if err != nil {
		exit(err)
	}
	format, err := render.ParseFormat(op.Format)
	if err != nil {
		exit(err)
	}
	kind := idl.FileKindNone
	if op.Grammar != "" {
		if kind = idl.ParseFileKind(op.Grammar); kind == idl.FileKindNone {
			exit(fmt.Errorf("unknown grammar %q", op.Grammar))
		}
	}
	vars := make(map[string]bool, len(op.Vars))
	for name, value := range op.Vars {
		b, errB := strconv.ParseBool(value)
		if errB != nil {
			exit(fmt.Errorf("variable %s: %w", name, errB))
		}
		vars[name] = b
	}

	f, err := runner.NewDefaultFS(os.LookupEnv)
	if err != nil {
		exit(err)
	}
	mf := make(fs.FileSystemMulti, 0, len(op.Roots)+1)
	for _, root := range op.Roots {
		absRoot, errAbs := filepath.Abs(root)
		if errAbs != nil {
			exit(errAbs)
		}
		rf, errFS := fs.NewFileSystemLocal(absRoot)
		if errFS != nil {
			exit(errFS)
		}
		mf = append(mf, rf)
	}
	mf = append(mf, f)

	r, err := runner.New(
		runner.OptionWithLookupEnv(os.LookupEnv),
		runner.OptionWithFS(mf),
		runner.OptionWithLogger(logger),
		runner.OptionWithMaxConcurrency(op.Concurrency),
		runner.OptionWithGrammar(idl.FileKindBool, &runner.BoolGrammar{Vars: vars}),
		runner.OptionWithGrammar(idl.FileKindProtobuf, &runner.ProtobufGrammar{Verify: op.Verify}),
	)
	if err != nil {
		exit(err)
	}

	out, err := r.Run(ctx, &runner.Request{
		Files:   targets,
		Kind:    kind,
		Options: []parsec.Option{parsec.OptionWithMaxDepth(op.MaxDepth)},
	})
	failed := false
	if err != nil {
		var me exc.MultiException
		if !errors.As(err, &me) {
			exit(err)
		}
		for _, e := range me {
			logger.WithFields(logrus.Fields{"uri": e.Location().URI, "code": e.Code()}).Debug("reported")
			fmt.Fprintln(os.Stderr, e.Error())
		}
		failed = true
	}

	if err = render.Write(os.Stdout, format, out.Results); err != nil {
		exit(err)
	}

	fds := &descriptorpb.FileDescriptorSet{}
	for _, res := range out.Results {
		if fd, ok := res.Value.(*descriptorpb.FileDescriptorProto); ok {
			fds.File = append(fds.File, fd)
		}
	}
	if op.DescriptorSetOut != "" {
		b, errM := proto.Marshal(fds)
		if errM != nil {
			exit(errM)
		}
		if err = os.WriteFile(op.DescriptorSetOut, b, 0o644); err != nil {
			exit(err)
		}
	}
	if op.Plugin != "" {
		output, errAbs := filepath.Abs(op.Output)
		if errAbs != nil {
			exit(errAbs)
		}
		if err = runPlugin(op.Plugin, output, fds); err != nil {
			exit(err)
		}
	}
	if failed {
		os.Exit(1)
	}
}

func runPlugin(plugin string, output string, fds *descriptorpb.FileDescriptorSet) error {
	request := &pluginpb.CodeGeneratorRequest{
		ProtoFile:       fds.File,
		CompilerVersion: &pluginpb.Version{},
	}
	for _, fd := range fds.File {
		request.FileToGenerate = append(request.FileToGenerate, fd.GetName())
	}
	requestBytes, err := proto.Marshal(request)
	if err != nil {
		return err
	}

	var pluginOut bytes.Buffer
	var pluginErr bytes.Buffer

	cmd := exec.Command(plugin)
	cmd.Stdin = bytes.NewReader(requestBytes)
	cmd.Stdout = &pluginOut
	cmd.Stderr = &pluginErr
	if err = cmd.Run(); err != nil {
		return fmt.Errorf("%s%w", pluginErr.String(), err)
	}

	response := &pluginpb.CodeGeneratorResponse{}
	if err = proto.Unmarshal(pluginOut.Bytes(), response); err != nil {
		return err
	}
	if response.Error != nil {
		return errors.New(response.GetError())
	}
	for _, responseFile := range response.File {
		filename := path.Join(output, responseFile.GetName())
		if err = os.MkdirAll(filepath.Dir(filename), 0o770); err != nil {
			return err
		}
		if err = os.WriteFile(filename, []byte(responseFile.GetContent()), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func exit(err error) {
	fmt.Fprintln(os.Stderr, err.Error())
	os.Exit(1)
}
