package execution

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"go.uber.org/zap"

	"ktp/internal/logging"
)

// ShellSession is a long-lived shell that command lines are written to, like a terminal
// the user can watch. Commands run one after another in the shell's own order; Send
// returns as soon as the line is written.
type ShellSession struct {
	mu     sync.Mutex
	shell  string
	dir    string
	out    io.Writer
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	logger *zap.Logger
}

// NewShellSession creates a session that starts shell in dir on first use and copies its
// output to out
func NewShellSession(shell, dir string, out io.Writer, logger *zap.Logger) *ShellSession {
	if out == nil {
		out = os.Stdout
	}
	return &ShellSession{
		shell:  shell,
		dir:    dir,
		out:    out,
		logger: logging.OrNop(logger),
	}
}

// Send writes line to the session, starting the shell if needed
func (s *ShellSession) Send(ctx context.Context, line string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cmd == nil {
		if err := s.start(); err != nil {
			return err
		}
	}

	s.logger.Debug("send to session", zap.String("line", line))
	if _, err := io.WriteString(s.stdin, line+"\n"); err != nil {
		return fmt.Errorf("write to %s session: %w", s.shell, err)
	}
	return nil
}

func (s *ShellSession) start() error {
	cmd := exec.Command(s.shell)
	cmd.Dir = s.dir
	cmd.Env = os.Environ()
	cmd.Stdout = s.out
	cmd.Stderr = s.out

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("open %s stdin: %w", s.shell, err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s session: %w", s.shell, err)
	}

	s.logger.Info("session started", zap.String("shell", s.shell), zap.String("dir", s.dir))
	s.cmd = cmd
	s.stdin = stdin
	return nil
}

// Close ends the session's input and waits for queued commands to finish
func (s *ShellSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cmd == nil {
		return nil
	}
	_ = s.stdin.Close()
	err := s.cmd.Wait()
	s.cmd, s.stdin = nil, nil
	if err != nil {
		return fmt.Errorf("%s session: %w", s.shell, err)
	}
	return nil
}
