package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/caffeineduck/mdbsh/executor"
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a script (stateless execution)",
	Long: `Execute a Python script with the mdb module available.

Code can be provided via:
  - File argument: mdbsh run script.py
  - Inline flag: mdbsh run -c 'print(mdb.version({}))'
  - Stdin: echo 'print(mdb.env_create())' | mdbsh run

Every handle the script leaves open is released when it ends.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	addRunFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("code", "c", "", "Code to execute")
	cmd.Flags().StringP("lang", "l", "", "Language (default: python)")
	cmd.Flags().Duration("timeout", 30*time.Second, "Execution timeout")
	cmd.Flags().String("memory", "256mb", "Memory limit: 16mb, 64mb, 256mb, 1gb, none")
	cmd.Flags().Bool("lint", false, "Warn about calls with more arguments than the operation takes")
	cmd.Flags().StringSlice("mount", nil, "Confine environment paths to virtual:host[:ro|rw|rwc] (repeatable)")
}

var errNoInput = errors.New("no input: pass a file, -c code, or pipe a script on stdin")

// readSource picks the script from -c, the file argument or piped stdin.
func readSource(cmd *cobra.Command, args []string, stdin *os.File) (source, filename string, err error) {
	code, _ := cmd.Flags().GetString("code")
	switch {
	case code != "":
		return code, "", nil
	case len(args) > 0:
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", err
		}
		return string(data), args[0], nil
	}

	if term.IsTerminal(int(stdin.Fd())) {
		return "", "", errNoInput
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", "", fmt.Errorf("read stdin: %w", err)
	}
	if len(data) == 0 {
		return "", "", errNoInput
	}
	return string(data), "", nil
}

func buildRunOpts(cmd *cobra.Command) ([]executor.Option, error) {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	lint, _ := cmd.Flags().GetBool("lint")
	mountSpecs, _ := cmd.Flags().GetStringSlice("mount")

	mounts, err := parseMounts(mountSpecs)
	if err != nil {
		return nil, err
	}

	opts := []executor.Option{
		executor.WithTimeout(timeout),
		executor.WithLint(lint),
	}
	for _, m := range mounts {
		opts = append(opts, executor.WithMount(m.VirtualPath, m.HostPath, m.Mode))
	}
	return opts, nil
}

func runRun(cmd *cobra.Command, args []string) error {
	source, filename, err := readSource(cmd, args, os.Stdin)
	if errors.Is(err, errNoInput) {
		return cmd.Help()
	}
	if err != nil {
		return err
	}

	langFlag, _ := cmd.Flags().GetString("lang")
	language, err := getLanguage(langFlag, filename)
	if err != nil {
		return err
	}

	memory, _ := cmd.Flags().GetString("memory")
	pages, err := parseMemoryLimit(memory)
	if err != nil {
		return err
	}
	runOpts, err := buildRunOpts(cmd)
	if err != nil {
		return err
	}

	var execOpts []executor.ExecutorOption
	if pages > 0 {
		execOpts = append(execOpts, executor.WithMemoryLimit(pages))
	}
	exec, closeExec, err := newExecutor(cmd, execOpts...)
	if err != nil {
		return err
	}
	defer closeExec()

	result := exec.Run(cmd.Context(), language, source, runOpts...)
	fmt.Fprint(cmd.OutOrStdout(), result.Output)
	return result.Error
}
