// Package nbio provides non-blocking read/write primitives over raw file
// descriptors, plus poll-based readiness waits. It is internal to the
// scriptty package.
//
// The calling convention mirrors the PTY master's quirks: EAGAIN and
// EWOULDBLOCK are reported as "not ready" rather than errors, and EIO on a
// read is collapsed to EOF, which is how Linux signals a hung-up PTY master.
package nbio

import (
	"time"

	"golang.org/x/sys/unix"
)

// SetNonblock puts the descriptor into non-blocking mode.
func SetNonblock(fd int) error {
	return unix.SetNonblock(fd, true)
}

// Read reads from fd into p without blocking. ok is false when the read
// would block (EAGAIN/EWOULDBLOCK). A return of (0, true, nil) means EOF;
// EIO from a PTY master is collapsed to that case. Every other error is
// returned as-is.
func Read(fd int, p []byte) (n int, ok bool, err error) {
	for {
		n, err = unix.Read(fd, p)
		switch err {
		case nil:
			return n, true, nil
		case unix.EINTR:
			continue
		case unix.EAGAIN:
			return 0, false, nil
		case unix.EIO:
			// PTY master reports EIO once the slave side is gone.
			return 0, true, nil
		default:
			return 0, false, err
		}
	}
}

// Write writes p to fd without blocking. ok is false when the write would
// block. Partial writes are returned as-is; retrying is the caller's job.
func Write(fd int, p []byte) (n int, ok bool, err error) {
	for {
		n, err = unix.Write(fd, p)
		switch err {
		case nil:
			return n, true, nil
		case unix.EINTR:
			continue
		case unix.EAGAIN:
			return 0, false, nil
		default:
			return 0, false, err
		}
	}
}

// WaitReadable blocks until fd is readable or the timeout expires. A
// negative timeout blocks indefinitely. POLLHUP and POLLERR count as
// readable: the subsequent read surfaces the EOF or error.
func WaitReadable(fd int, timeout time.Duration) (ready bool, err error) {
	return wait(fd, unix.POLLIN, timeout)
}

// WaitWritable blocks until fd is writable or the timeout expires.
func WaitWritable(fd int, timeout time.Duration) (ready bool, err error) {
	return wait(fd, unix.POLLOUT, timeout)
}

func wait(fd int, events int16, timeout time.Duration) (bool, error) {
	ms := -1
	if timeout >= 0 {
		ms = int(timeout.Milliseconds())
	}
	fds := []unix.PollFd{{Fd: int32(fd), Events: events}}
	for {
		n, err := unix.Poll(fds, ms)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return false, err
		}
		return n > 0, nil
	}
}
