// Command download fetches a build artifact (such as python.wasm) if it is
// not already present. The file is written atomically so an interrupted
// download never leaves a truncated module behind for go:embed.
package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

func main() {
	url := flag.String("url", "", "artifact URL")
	output := flag.String("o", "", "output file")
	minSize := flag.Int64("min-size", 0, "reject downloads smaller than this many bytes")
	flag.Parse()

	if *url == "" || *output == "" {
		fmt.Fprintln(os.Stderr, "usage: download -url <url> -o <output> [-min-size n]")
		os.Exit(2)
	}
	if _, err := os.Stat(*output); err == nil {
		return
	}
	if err := fetch(*url, *output, *minSize); err != nil {
		fmt.Fprintln(os.Stderr, "download:", err)
		os.Exit(1)
	}
}

func fetch(url, output string, minSize int64) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: %s", url, resp.Status)
	}

	tmp, err := os.CreateTemp(filepath.Dir(output), ".download-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, resp.Body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}
	if n < minSize {
		return fmt.Errorf("%s: got %d bytes, expected at least %d", url, n, minSize)
	}
	return os.Rename(tmp.Name(), output)
}
