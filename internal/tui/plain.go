package tui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// RunPlain is the line-oriented fallback used with --plain or when stdout
// is not a terminal: prompt, read a line, run the step, print the reply.
// "exit" and "quit" end the loop, as does EOF.
func RunPlain(title string, step StepFunc, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, title)

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	for {
		fmt.Fprint(out, "\n> ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return err
			}
			fmt.Fprintln(out)
			return nil
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			return nil
		}

		turn, err := step(context.Background(), input)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}

		for _, line := range turn.ToolLines {
			fmt.Fprintf(out, "  [%s]\n", line)
		}
		fmt.Fprintln(out, turn.Reply)
	}
}
