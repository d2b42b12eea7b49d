package bridge

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// CommandRunner runs an external command with stdin and returns its combined output.
type CommandRunner func(ctx context.Context, name string, args []string, stdin []byte) ([]byte, error)

// ExecRunner runs commands with os/exec.
func ExecRunner(ctx context.Context, name string, args []string, stdin []byte) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	out, err := cmd.CombinedOutput()
	if err != nil {
		msg := strings.TrimSpace(string(out))
		if msg == "" {
			return out, fmt.Errorf("%s: %w", name, err)
		}
		return out, fmt.Errorf("%s: %w: %s", name, err, msg)
	}
	return out, nil
}

// cups talks to the local CUPS spooler through lp and lpstat.
type cups struct {
	run CommandRunner
}

func (c cups) printRaw(ctx context.Context, queue string, data []byte) error {
	_, err := c.run(ctx, "lp", []string{"-d", queue, "-o", "raw", "-t", "receipt"}, data)
	return err
}

func (c cups) printImage(ctx context.Context, queue string, png []byte, paperMM int) error {
	args := []string{
		"-d", queue,
		"-o", fmt.Sprintf("media=Custom.%dx297mm", paperMM),
		"-o", "fit-to-page",
		"-t", "receipt",
		"-",
	}
	_, err := c.run(ctx, "lp", args, png)
	return err
}

// printHTML hands a styled document to CUPS, which converts it with its
// text/html filter.
func (c cups) printHTML(ctx context.Context, queue, html string, paperMM int) error {
	args := []string{
		"-d", queue,
		"-o", "document-format=text/html",
		"-o", fmt.Sprintf("media=Custom.%dx297mm", paperMM),
		"-o", "page-left=0", "-o", "page-right=0", "-o", "page-top=0", "-o", "page-bottom=0",
		"-t", "receipt",
		"-",
	}
	_, err := c.run(ctx, "lp", args, []byte(html))
	return err
}

// queues lists destination names known to CUPS.
func (c cups) queues(ctx context.Context) ([]string, error) {
	out, err := c.run(ctx, "lpstat", []string{"-e"}, nil)
	if err != nil {
		return nil, err
	}
	var names []string
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		if name := strings.TrimSpace(sc.Text()); name != "" {
			names = append(names, name)
		}
	}
	return names, sc.Err()
}

// status reports whether a queue accepts jobs. lpstat -p prints
// "printer NAME is idle." or "printer NAME disabled since ...".
func (c cups) status(ctx context.Context, queue string) PrinterStatus {
	out, err := c.run(ctx, "lpstat", []string{"-p", queue}, nil)
	if err != nil {
		return PrinterStatus{Detail: err.Error()}
	}
	line := strings.TrimSpace(string(out))
	switch {
	case strings.Contains(line, "disabled"):
		return PrinterStatus{Detail: line}
	case strings.Contains(line, "idle"), strings.Contains(line, "printing"):
		return PrinterStatus{Online: true, Detail: line}
	}
	return PrinterStatus{Detail: line}
}
