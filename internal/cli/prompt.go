package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Confirm asks question on out and reads a yes/no answer from in. Anything
// other than y or yes, including EOF, is a no.
func Confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", question)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
