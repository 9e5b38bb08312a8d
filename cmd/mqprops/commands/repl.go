package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"mqprops/internal/fixture"
	"mqprops/internal/utils"
)

const replHelp = `Enter a hex encoded property block to decode it.
Commands:
  format <text|json|yaml|cbor>  change the output format
  strict <on|off>               reject repeated single-use properties
  help                          show this help
  exit                          quit
`

// Repl decodes one property block per input line.
type Repl struct {
	rl   *readline.Instance
	opts DecodeOptions
}

// NewRepl creates an interactive decoder reading from the terminal.
func NewRepl(opts DecodeOptions) (*Repl, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "props> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return &Repl{rl: rl, opts: opts}, nil
}

// Stdout returns a writer that does not garble the prompt.
func (r *Repl) Stdout() io.Writer {
	return r.rl.Stdout()
}

// Run reads lines until EOF or "exit".
func (r *Repl) Run() {
	defer r.rl.Close()

	out := r.rl.Stdout()
	fmt.Fprint(out, replHelp)

	for {
		line, err := r.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			return
		}

		if !r.Handle(strings.TrimSpace(line), out) {
			return
		}
	}
}

// Handle executes one input line and reports whether the loop should go on.
func (r *Repl) Handle(input string, out io.Writer) bool {
	if input == "" {
		return true
	}

	parts := strings.Fields(input)
	switch strings.ToLower(parts[0]) {
	case "exit", "quit", "q":
		return false
	case "help", "?":
		fmt.Fprint(out, replHelp)
	case "format":
		if len(parts) != 2 {
			fmt.Fprintln(out, "usage: format <text|json|yaml|cbor>")
			return true
		}
		f, err := fixture.ParseFormat(parts[1])
		if err != nil {
			fmt.Fprintln(out, "Error:", err)
			return true
		}
		r.opts.Format = f
	case "strict":
		if len(parts) != 2 || (parts[1] != "on" && parts[1] != "off") {
			fmt.Fprintln(out, "usage: strict <on|off>")
			return true
		}
		r.opts.Strict = parts[1] == "on"
	default:
		if err := RunDecode(input, r.opts, out); err != nil {
			utils.LogDebug("decode failed:", err)
			fmt.Fprintln(out, "Error:", err)
		}
	}
	return true
}
