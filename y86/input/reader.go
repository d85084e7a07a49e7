package input

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// MaxLine bounds a command line: a terminated line of MaxLine characters or
// more, newline excluded, is rejected.
const MaxLine = 256

var ErrCommandTooLong = errors.New("command too long")

// Command is a tokenized command line.
type Command struct {
	Name string
	Arg  string
}

// IsZero reports whether c carries no command, as produced by a blank line
// with nothing to repeat.
func (c Command) IsZero() bool {
	return c.Name == ""
}

func (c Command) String() string {
	if c.Arg == "" {
		return c.Name
	}
	return c.Name + " " + c.Arg
}

// Parse splits line into the command name, its first whitespace-delimited
// token, and the argument, the rest of the line trimmed.
// ok is false for a blank line.
func Parse(line string) (name, arg string, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", "", false
	}

	i := strings.IndexFunc(line, isSpace)
	if i < 0 {
		return line, "", true
	}
	return line[:i], strings.TrimSpace(line[i:]), true
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\v' || r == '\f' || r == '\r' || r == '\n'
}

// History remembers the last command so a blank line can repeat it.
type History struct {
	last Command
}

// Resolve turns a raw line into the command to run. A blank line yields the
// previous command, or the zero Command when there is none. A line of
// MaxLine characters or more is rejected and does not become the previous
// command.
func (h *History) Resolve(line string) (Command, error) {
	line = strings.TrimSuffix(line, "\n")
	if len(line) >= MaxLine {
		return Command{}, fmt.Errorf("%w: %d characters, at most %d", ErrCommandTooLong, len(line), MaxLine-1)
	}

	return h.resolve(line), nil
}

func (h *History) resolve(line string) Command {
	name, arg, ok := Parse(line)
	if !ok {
		return h.last
	}

	h.last = Command{Name: name, Arg: arg}
	return h.last
}

// Last returns the command a blank line would repeat.
func (h *History) Last() Command {
	return h.last
}

// Reader reads commands line by line.
type Reader struct {
	History
	r *bufio.Reader
}

func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// ReadCommand reads the next line and resolves it. It returns io.EOF once
// the input is exhausted. Errors from Resolve leave the reader usable.
//
// A last line cut by the end of input is never rejected: at most its
// first MaxLine characters are run.
func (r *Reader) ReadCommand() (Command, error) {
	line, err := r.r.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return Command{}, fmt.Errorf("read command: %w", err)
		}
		if line == "" {
			return Command{}, io.EOF
		}
		if len(line) > MaxLine {
			line = line[:MaxLine]
		}
		return r.resolve(line), nil
	}

	return r.Resolve(line)
}
