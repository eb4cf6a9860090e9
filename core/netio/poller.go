/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package netio wraps the raw epoll(7) syscalls behind a small Poller:
// Add/Mod/Remove file descriptors and Wait for a batch of
// readiness events. core.Manager is the only consumer; this package has no
// notion of connections, protocols, or buffers, only fds and interest masks.
package netio

import (
	"golang.org/x/sys/unix"
)

// Interest is the set of readiness conditions a registered fd is watched for.
type Interest uint32

const (
	Readable Interest = unix.EPOLLIN
	Writable Interest = unix.EPOLLOUT
)

// Event is one readiness notification returned by Wait.
type Event struct {
	FD    int
	Ready Interest
	Err   bool
	Hup   bool
}

// Poller is a thin epoll(7) wrapper, one per Manager.
type Poller struct {
	epfd int
}

// New creates a new epoll instance.
func New() (*Poller, error) {
	fd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}

	return &Poller{epfd: fd}, nil
}

// Close releases the epoll instance.
func (p *Poller) Close() error {
	return unix.Close(p.epfd)
}

// Add registers fd for the given interest set.
func (p *Poller) Add(fd int, interest Interest) error {
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, &unix.EpollEvent{
		Events: uint32(interest) | unix.EPOLLRDHUP,
		Fd:     int32(fd),
	})
}

// Mod updates the interest set for an already-registered fd.
func (p *Poller) Mod(fd int, interest Interest) error {
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_MOD, fd, &unix.EpollEvent{
		Events: uint32(interest) | unix.EPOLLRDHUP,
		Fd:     int32(fd),
	})
}

// Remove unregisters fd. It does not close fd.
func (p *Poller) Remove(fd int) error {
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil)
}

// Wait blocks up to timeoutMs (negative blocks indefinitely, 0 returns
// immediately) and returns the ready events, reusing buf as scratch space.
func (p *Poller) Wait(buf []unix.EpollEvent, timeoutMs int) ([]Event, error) {
	n, err := unix.EpollWait(p.epfd, buf, timeoutMs)
	if err != nil {
		if err == unix.EINTR {
			return nil, nil
		}
		return nil, err
	}

	out := make([]Event, 0, n)
	for i := 0; i < n; i++ {
		e := buf[i]
		out = append(out, Event{
			FD:    int(e.Fd),
			Ready: Interest(e.Events) & (Readable | Writable),
			Err:   e.Events&unix.EPOLLERR != 0,
			Hup:   e.Events&(unix.EPOLLHUP|unix.EPOLLRDHUP) != 0,
		})
	}

	return out, nil
}
