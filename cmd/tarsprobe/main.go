// tarsprobe is a small diagnostic binary over the engine's schemaless
// probe and trace operations. It answers exactly two questions about a
// wire payload: does it parse as a single top-level struct
// (jce.ProbeStruct), and if asked, what did the decoder actually walk
// (jce.DecodeTrace)? It is not a general-purpose wire inspector — there
// is no pretty-printer for arbitrary nested values, no schema registry
// wiring, and no way to pick apart fields by name; it exists to answer
// "is this buffer well-formed" during development, not to replace the
// engine's Go API.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/L-1124/Tarsio/jce"
	"github.com/L-1124/Tarsio/jce/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := config.NewLogger("tarsprobe")

	var filePath string
	var trace bool
	var maxDepth int

	flagSet := pflag.NewFlagSet("tarsprobe", pflag.ContinueOnError)
	flagSet.StringVar(&filePath, "file", "", "path to a JCE-encoded payload (default: read stdin)")
	flagSet.BoolVar(&trace, "trace", false, "print the full decode trace instead of a pass/fail verdict")
	flagSet.IntVar(&maxDepth, "max-depth", 0, "override the decoder's recursion limit (0 uses the engine default)")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}

	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}

	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}

	buf, err := readPayload(filePath)
	if err != nil {
		return err
	}

	limits := jce.DefaultLimits()
	if maxDepth > 0 {
		limits.MaxDepth = maxDepth
	}

	if trace {
		root := jce.DecodeTrace(buf, nil, limits)
		logger.Debug().Int("bytes", len(buf)).Int("max_depth", root.MaxDepth()).Msg("decode trace complete")
		printTrace(root, 0)
		return nil
	}

	v, ok := jce.ProbeStruct(buf, limits)
	if !ok {
		logger.Info().Int("bytes", len(buf)).Msg("probe rejected payload")
		fmt.Println("not a well-formed top-level struct")
		os.Exit(1)
	}
	logger.Info().Int("bytes", len(buf)).Int("fields", len(v.StructMap)).Msg("probe accepted payload")
	fmt.Println("ok: well-formed top-level struct")
	return nil
}

func readPayload(filePath string) ([]byte, error) {
	if filePath == "" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(filePath)
}

func printTrace(node *jce.TraceNode, depth int) {
	for i := 0; i < depth; i++ {
		fmt.Print("  ")
	}
	switch {
	case node.Tag < 0:
		fmt.Printf("%s\n", node.Path)
	case node.Err != nil:
		fmt.Printf("tag=%d wire=%s %s err=%v\n", node.Tag, node.WireType, node.Path, node.Err)
	case node.IsScalar:
		fmt.Printf("tag=%d wire=%s %s = %s\n", node.Tag, node.WireType, node.Path, formatScalar(node.Scalar))
	default:
		fmt.Printf("tag=%d wire=%s %s\n", node.Tag, node.WireType, node.Path)
	}
	for _, child := range node.Children {
		printTrace(child, depth+1)
	}
}

func formatScalar(v jce.Value) string {
	switch v.Kind {
	case jce.KindBool:
		return fmt.Sprintf("%v", v.Bool)
	case jce.KindInt:
		return fmt.Sprintf("%d", v.Int)
	case jce.KindFloat:
		return fmt.Sprintf("%g", v.Float32)
	case jce.KindDouble:
		return fmt.Sprintf("%g", v.Float64)
	case jce.KindStr:
		return fmt.Sprintf("%q", v.Str)
	case jce.KindBytes:
		return fmt.Sprintf("%d bytes", len(v.Bytes))
	default:
		return "<unprintable>"
	}
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `tarsprobe — check whether a buffer is a well-formed Tars/JCE struct.

Reads a JCE-encoded payload from --file or stdin and either reports a
pass/fail verdict (ProbeStruct) or prints the full field-by-field decode
trace (--trace). No schema is consulted; this is a schemaless probe.

Usage:
  tarsprobe [flags]

Examples:
  tarsprobe --file payload.bin
  cat payload.bin | tarsprobe --trace

Flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}
