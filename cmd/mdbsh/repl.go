package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/caffeineduck/mdbsh/executor"
	"github.com/caffeineduck/mdbsh/mdb"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive REPL with persistent handles",
	Long: `Start an interactive REPL (Read-Eval-Print Loop) session.

Handles opened in one line stay valid for the next. Features:
  - Command history (up/down arrows)
  - Line editing (left/right, backspace, delete)
  - History search (Ctrl+R)
  - Multi-line input (end line with \)

Dot commands:
  .handles   list live env, txn, dbi and cursor tokens
  .errno     show the status and message of the last mdb call
  .ops       list the mdb operations

Type 'exit' or 'quit' to end the session, or press Ctrl+D.`,
	RunE: runRepl,
}

func init() {
	replCmd.Flags().Duration("timeout", 0, "Per-line execution timeout (0 = none)")
	replCmd.Flags().Bool("lint", false, "Warn about calls with more arguments than the operation takes")
	replCmd.Flags().StringSlice("mount", nil, "Confine environment paths to virtual:host[:ro|rw|rwc] (repeatable)")
	replCmd.Flags().String("history", "", "History file path (default: ~/.mdbsh_history)")
	rootCmd.AddCommand(replCmd)
}

func buildSessionOpts(cmd *cobra.Command) ([]executor.SessionOption, error) {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	lint, _ := cmd.Flags().GetBool("lint")
	mountSpecs, _ := cmd.Flags().GetStringSlice("mount")

	mounts, err := parseMounts(mountSpecs)
	if err != nil {
		return nil, err
	}
	opts := []executor.SessionOption{
		executor.WithSessionTimeout(timeout),
		executor.WithSessionLint(lint),
	}
	for _, m := range mounts {
		opts = append(opts, executor.WithSessionMount(m.VirtualPath, m.HostPath, m.Mode))
	}
	return opts, nil
}

func runRepl(cmd *cobra.Command, args []string) error {
	historyFile, _ := cmd.Flags().GetString("history")
	if historyFile == "" {
		home, _ := os.UserHomeDir()
		historyFile = filepath.Join(home, ".mdbsh_history")
	}

	language, err := getLanguage("", "")
	if err != nil {
		return err
	}
	sessionOpts, err := buildSessionOpts(cmd)
	if err != nil {
		return err
	}

	exec, closeExec, err := newExecutor(cmd, executor.WithPrecompile(language))
	if err != nil {
		return err
	}
	defer closeExec()

	session, err := exec.NewSession(language, sessionOpts...)
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.Close()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            ">>> ",
		HistoryFile:       historyFile,
		HistoryLimit:      1000,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return fmt.Errorf("initialize readline: %w", err)
	}
	defer rl.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintln(cmd.ErrOrStderr(), "mdbsh REPL (type 'exit' to quit, Ctrl+D to exit, .help for dot commands)")

	var multiLine strings.Builder
	inMultiLine := false

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				if inMultiLine {
					multiLine.Reset()
					inMultiLine = false
					rl.SetPrompt(">>> ")
				}
				continue
			}
			if err == io.EOF {
				fmt.Fprintln(out)
				return nil
			}
			return fmt.Errorf("read input: %w", err)
		}

		if strings.HasSuffix(line, "\\") {
			multiLine.WriteString(strings.TrimSuffix(line, "\\"))
			multiLine.WriteString("\n")
			inMultiLine = true
			rl.SetPrompt("... ")
			continue
		}

		if inMultiLine {
			multiLine.WriteString(line)
			line = multiLine.String()
			multiLine.Reset()
			inMultiLine = false
			rl.SetPrompt(">>> ")
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if trimmed == "exit" || trimmed == "quit" {
			return nil
		}
		if dotCommand(out, session.Binding(), trimmed) {
			continue
		}

		result := session.Run(cmd.Context(), line)
		if result.Output != "" {
			fmt.Fprint(out, result.Output)
			if !strings.HasSuffix(result.Output, "\n") {
				fmt.Fprintln(out)
			}
		}
		if result.Error != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", result.Error)
		}
	}
}

// dotCommand handles REPL introspection lines. It reports false for
// anything that should go to the interpreter.
func dotCommand(w io.Writer, b *mdb.Binding, line string) bool {
	if !strings.HasPrefix(line, ".") {
		return false
	}
	switch line {
	case ".handles":
		for _, kind := range mdb.HandleKinds() {
			fmt.Fprintf(w, "%-7s %s\n", kind, strings.Join(b.Handles(kind), " "))
		}
	case ".errno":
		if msg := b.Message(); msg != "" {
			fmt.Fprintf(w, "%d %s\n", b.Errno(), msg)
		} else {
			fmt.Fprintf(w, "%d\n", b.Errno())
		}
	case ".ops":
		fmt.Fprintln(w, strings.Join(b.Ops(), " "))
	case ".help":
		fmt.Fprintln(w, ".handles  .errno  .ops  .help")
	default:
		fmt.Fprintf(w, "unknown command %s (try .help)\n", line)
	}
	return true
}
