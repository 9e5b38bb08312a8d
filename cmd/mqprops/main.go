// Command mqprops encodes and decodes MQTT5 property blocks.
//
// Usage:
//
//	mqprops <command> [flags] <argument>
//
// Commands:
//
//	encode   Encode a YAML fixture and print the block as hex
//	decode   Decode a hex block and print its properties
//	repl     Decode hex blocks interactively
//
// Examples:
//
//	# Encode a fixture
//	mqprops encode connect-props.yaml
//
//	# Decode a block, ignoring anything after it
//	mqprops decode 05110000001e00
//
//	# Decode from stdin and print JSON
//	echo 0403000161 | mqprops decode -format json -
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"mqprops/cmd/mqprops/commands"
	"mqprops/internal/fixture"
	"mqprops/internal/utils"
)

const usage = `mqprops - MQTT5 property block codec

Usage:
  mqprops <command> [flags] <argument>

Commands:
  encode   Encode a YAML fixture and print the block as hex
  decode   Decode a hex block and print its properties
  repl     Decode hex blocks interactively

Use "mqprops <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "encode":
		runEncode(args)
	case "decode":
		runDecode(args)
	case "repl":
		runRepl(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func setVerbose(verbose bool) {
	if verbose {
		utils.SetLevel(utils.DEBUG)
	}
}

func fail(err error) {
	utils.LogError(err)
	os.Exit(1)
}

func runEncode(args []string) {
	fs := flag.NewFlagSet("encode", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `mqprops encode - Encode a YAML fixture

Usage:
  mqprops encode [flags] <fixture.yaml>

Flags:
`)
		fs.PrintDefaults()
	}

	strict := fs.Bool("strict", false, "Reject repeated single-use properties")
	verbose := fs.Bool("v", false, "Enable debug logging")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	setVerbose(*verbose)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: fixture path required")
		fs.Usage()
		os.Exit(1)
	}

	if err := commands.RunEncode(fs.Arg(0), *strict, os.Stdout); err != nil {
		fail(err)
	}
}

func runDecode(args []string) {
	fs := flag.NewFlagSet("decode", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `mqprops decode - Decode a hex encoded property block

Usage:
  mqprops decode [flags] <hex|->

Flags:
`)
		fs.PrintDefaults()
	}

	format := fs.String("format", "text", "Output format (text, json, yaml, cbor)")
	strict := fs.Bool("strict", false, "Reject repeated single-use properties")
	verbose := fs.Bool("v", false, "Enable debug logging")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	setVerbose(*verbose)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: hex input required")
		fs.Usage()
		os.Exit(1)
	}

	f, err := fixture.ParseFormat(*format)
	if err != nil {
		fail(err)
	}

	input := fs.Arg(0)
	if input == "-" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			fail(err)
		}
		input = string(b)
	}

	opts := commands.DecodeOptions{Format: f, Strict: *strict}
	if err := commands.RunDecode(input, opts, os.Stdout); err != nil {
		fail(err)
	}
}

func runRepl(args []string) {
	fs := flag.NewFlagSet("repl", flag.ExitOnError)
	format := fs.String("format", "text", "Output format (text, json, yaml, cbor)")
	verbose := fs.Bool("v", false, "Enable debug logging")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	setVerbose(*verbose)

	f, err := fixture.ParseFormat(*format)
	if err != nil {
		fail(err)
	}

	repl, err := commands.NewRepl(commands.DecodeOptions{Format: f})
	if err != nil {
		fail(err)
	}
	utils.SetOutput(repl.Stdout(), true)
	repl.Run()
}
