package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/ardnew/dcsmiz/lang"
	"github.com/ardnew/dcsmiz/log"
)

const defaultEditor = "vi"

// editCommand implements [tea.ExecCommand]. It opens the chunk source in the
// user's editor and re-evaluates the result, offering to edit again while
// the source fails to evaluate. Declining returns [ErrEditDeclined].
type editCommand struct {
	ctx    context.Context
	source string
	opts   []lang.Option
	logger log.Logger

	// Set when Run succeeds with a non-empty source.
	edited string
	ns     *lang.Namespace

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func (c *editCommand) SetStdin(r io.Reader)  { c.stdin = r }
func (c *editCommand) SetStdout(w io.Writer) { c.stdout = w }
func (c *editCommand) SetStderr(w io.Writer) { c.stderr = w }

func (c *editCommand) Run() error {
	f, err := os.CreateTemp("", "dcsmiz-repl-*.lua")
	if err != nil {
		return err
	}

	path := f.Name()
	_ = f.Close()

	defer os.Remove(path)

	content := c.source

	for {
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			return err
		}

		if err := c.runEditor(path); err != nil {
			return err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		content = string(data)
		if strings.TrimSpace(content) == "" {
			return nil
		}

		ns, err := lang.LoadString(c.ctx, content, c.opts...)

		c.logger.TraceContext(c.ctx, "repl edit evaluated",
			slog.Int("source_bytes", len(content)),
			slog.Bool("success", err == nil))

		if err == nil {
			c.edited, c.ns = content, ns

			return nil
		}

		_, _ = fmt.Fprintf(c.stderr, "\n%v\n", err)

		_, _ = fmt.Fprint(c.stderr, lang.WrapError(err).Snippet(content))

		_, _ = fmt.Fprint(c.stdout, "Edit again? [Y/n] ")

		if !confirm(c.stdin) {
			return ErrEditDeclined
		}
	}
}

func (c *editCommand) runEditor(path string) error {
	editor := os.Getenv("VISUAL")
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}

	if editor == "" {
		editor = defaultEditor
	}

	args := append(strings.Fields(editor), path)

	cmd := exec.CommandContext(c.ctx, args[0], args[1:]...) //nolint:gosec
	cmd.Stdin = c.stdin
	cmd.Stdout = c.stdout
	cmd.Stderr = c.stderr

	return cmd.Run()
}

// confirm reads one answer from r. Anything but "n" or "no" is yes; EOF is no.
func confirm(r io.Reader) bool {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
	case "n", "no":
		return false
	default:
		return true
	}
}
