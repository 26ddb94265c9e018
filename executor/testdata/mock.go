//go:build wasip1

// Mock language for testing executor logic without a real interpreter.
// Build with: GOOS=wasip1 GOARCH=wasm go build -o mock.wasm mock.go
//
// A script is a list of lines:
//
//	print <text>     write text to stdout
//	warn <text>      write text to stderr
//	call <json>      send a host call and print the raw response line
//	fail <text>      raise an error
//	exit <code>      exit the process
//
// With an empty script the mock runs the session loop.
package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

var stdin = bufio.NewReader(os.Stdin)

func run(script string) error {
	for _, line := range strings.Split(script, "\n") {
		cmd, arg, _ := strings.Cut(line, " ")
		switch cmd {
		case "print":
			fmt.Println(arg)
		case "warn":
			fmt.Fprint(os.Stderr, arg)
		case "call":
			fmt.Fprintf(os.Stderr, "\x00MDBSH:%s\x00", arg)
			resp, err := stdin.ReadString('\n')
			if err != nil {
				return err
			}
			fmt.Print(resp)
		case "fail":
			return errors.New(arg)
		case "exit":
			code, _ := strconv.Atoi(arg)
			os.Exit(code)
		}
	}
	return nil
}

func main() {
	if len(os.Args) > 1 && os.Args[1] != "" {
		if err := run(os.Args[1]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	fmt.Fprint(os.Stderr, "\x00MDBSH_READY\x00")
	for {
		line, err := stdin.ReadString('\n')
		if err != nil {
			return
		}
		var cmd struct {
			Type string `json:"type"`
			Code string `json:"code"`
		}
		if err := json.Unmarshal([]byte(line), &cmd); err != nil {
			continue
		}
		switch cmd.Type {
		case "exit":
			return
		case "exec":
			if err := run(cmd.Code); err != nil {
				fmt.Fprintf(os.Stderr, "\x00MDBSH_ERROR:%s\x00", err)
				continue
			}
			fmt.Fprint(os.Stderr, "\x00MDBSH_DONE\x00")
		}
	}
}
