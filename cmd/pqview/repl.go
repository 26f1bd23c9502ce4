package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"

	"github.com/vegasq/pqview/pipeline"
	"github.com/vegasq/pqview/render"
)

const shellPrompt = "pqview> "

// linerPrompter reads pager commands through the shell's line editor
type linerPrompter struct {
	state *liner.State
}

// Prompt implements render.Prompter. Ctrl-C ends the pager like q.
func (l linerPrompter) Prompt(prompt string) (string, error) {
	line, err := l.state.Prompt(prompt + " ")
	if errors.Is(err, liner.ErrPromptAborted) {
		return "", io.EOF
	}
	return line, err
}

// repl runs statements typed into the terminal until exit or end of input.
// Inputs that are not a terminal are read line by line.
func (a *app) repl(ctx context.Context, in io.Reader) error {
	if !isTerminal(in) {
		return a.replLines(ctx, render.NewLinePrompter(in, a.out))
	}

	state := liner.NewLiner()
	defer state.Close()
	state.SetCtrlCAborts(true)

	fmt.Fprintln(a.out, "pqview shell. Type 'exit' or '\\q' to quit.")
	prompter := linerPrompter{state: state}
	for {
		line, err := state.Prompt(shellPrompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		if strings.TrimSpace(line) != "" {
			state.AppendHistory(line)
		}
		if done, err := a.statement(ctx, line, prompter); done || err != nil {
			return err
		}
	}
}

// isTerminal reports whether in is an interactive standard input that the
// line editor can drive
func isTerminal(in io.Reader) bool {
	f, ok := in.(*os.File)
	if !ok || f != os.Stdin || !liner.TerminalSupported() {
		return false
	}
	fi, err := f.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}

// replLines is the shell over a plain line reader
func (a *app) replLines(ctx context.Context, prompter *render.LinePrompter) error {
	for {
		line, err := prompter.Prompt(strings.TrimSpace(shellPrompt))
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		if done, err := a.statement(ctx, line, prompter); done || err != nil {
			return err
		}
	}
}

// statement runs one shell line. It reports done for exit commands.
// Invalid repositories end the shell since no statement can succeed.
func (a *app) statement(ctx context.Context, line string, prompter render.Prompter) (bool, error) {
	line = strings.TrimSpace(line)
	switch line {
	case "":
		return false, nil
	case "exit", "quit", "\\q":
		return true, nil
	}

	err := a.runQuery(ctx, line, prompter)
	if errors.Is(err, pipeline.ErrInvalidRepositories) {
		return true, err
	}
	if err != nil {
		fmt.Fprintf(a.err, "Error: %v\n", err)
	}
	return false, nil
}
