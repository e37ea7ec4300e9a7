package scriptty

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/creack/pty"
	"golang.org/x/sys/unix"

	"github.com/scriptty/scriptty/internal/nbio"
)

// errReadTimeout reports that a bounded read saw no data before its
// deadline. It never escapes the session loop.
var errReadTimeout = errors.New("read timeout")

// childTerm is advertised to the child via TERM. A vt100-class terminal has
// no alternate screen, so full-screen programs render into the primary grid
// where the screen diff can see them.
const childTerm = "vt100"

// child runs a command under a pseudo-terminal and owns the master side.
// All master I/O goes through internal/nbio on the raw descriptor, which is
// kept in non-blocking mode for the lifetime of the session.
type child struct {
	cmd    *exec.Cmd
	master *os.File
	fd     int
}

// startChild spawns `sh -c command` under a new PTY with the given winsize.
func startChild(command string, cols, rows uint16) (*child, error) {
	cmd := exec.Command("sh", "-c", command)
	cmd.Env = append(os.Environ(), "TERM="+childTerm)

	master, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: rows, Cols: cols})
	if err != nil {
		return nil, fmt.Errorf("start %q: %w", command, err)
	}

	// Fd() removes the file from the runtime poller, which is what we
	// want: readiness is handled explicitly via poll(2).
	fd := int(master.Fd())
	if err := nbio.SetNonblock(fd); err != nil {
		master.Close()
		cmd.Process.Kill()
		cmd.Wait()
		return nil, fmt.Errorf("set non-blocking: %w", err)
	}

	return &child{cmd: cmd, master: master, fd: fd}, nil
}

// readTimeout performs one bounded read of the master. It returns
// (0, io.EOF) when the child's side is gone (including the EIO convention)
// and (0, errReadTimeout) when no data arrived within d.
func (c *child) readTimeout(p []byte, d time.Duration) (int, error) {
	deadline := time.Now().Add(d)
	for {
		n, ok, err := nbio.Read(c.fd, p)
		if err != nil {
			return 0, fmt.Errorf("read master: %w", err)
		}
		if ok {
			if n == 0 {
				return 0, io.EOF
			}
			return n, nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return 0, errReadTimeout
		}
		ready, err := nbio.WaitReadable(c.fd, remaining)
		if err != nil {
			return 0, fmt.Errorf("poll master: %w", err)
		}
		if !ready {
			return 0, errReadTimeout
		}
	}
}

// write sends all of p to the child, looping over short writes and
// would-block conditions. It returns only once every byte is accepted.
func (c *child) write(p []byte) error {
	for len(p) > 0 {
		n, ok, err := nbio.Write(c.fd, p)
		if err != nil {
			return fmt.Errorf("write master: %w", err)
		}
		if ok {
			p = p[n:]
			continue
		}
		if _, err := nbio.WaitWritable(c.fd, -1); err != nil {
			return fmt.Errorf("poll master: %w", err)
		}
	}
	return nil
}

// kill delivers a signal to the child. Best effort; the caller decides
// whether failure matters.
func (c *child) kill(sig syscall.Signal) error {
	return c.cmd.Process.Signal(sig)
}

// wait hangs up the child and reaps it, translating the wait status:
// normal exit keeps its code, death by signal s becomes 128+s, anything
// else becomes 1.
func (c *child) wait() int {
	_ = c.cmd.Process.Signal(unix.SIGHUP)

	err := c.cmd.Wait()
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok {
			switch {
			case ws.Exited():
				return ws.ExitStatus()
			case ws.Signaled():
				return 128 + int(ws.Signal())
			}
		}
	}
	return 1
}

// close releases the master descriptor.
func (c *child) close() error {
	return c.master.Close()
}
