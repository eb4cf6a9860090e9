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

// Package netaddr wraps the raw non-blocking socket syscalls the event loop
// needs (open/bind/listen/accept/connect) behind a small
// address-aware helper, so core/netio only ever deals with plain file
// descriptors and golang.org/x/sys/unix.Sockaddr values.
package netaddr

import (
	"net"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	libptc "github.com/sabouaram/evcore/network/protocol"
)

// Resolve parses a host:port (or path, for unix sockets) address string for
// the given protocol into a unix.Sockaddr suitable for bind/connect.
func Resolve(proto libptc.NetworkProtocol, address string) (unix.Sockaddr, error) {
	if proto.IsUnix() {
		return &unix.SockaddrUnix{Name: address}, nil
	}

	host, portStr, err := net.SplitHostPort(address)
	if err != nil {
		return nil, err
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, err
	}

	if host == "" {
		host = "0.0.0.0"
	}

	ip := net.ParseIP(host)
	if ip == nil {
		ips, err := net.LookupIP(host)
		if err != nil || len(ips) == 0 {
			return nil, err
		}
		ip = ips[0]
	}

	if v4 := ip.To4(); v4 != nil && domain(proto) != unix.AF_INET6 {
		var a [4]byte
		copy(a[:], v4)
		return &unix.SockaddrInet4{Port: port, Addr: a}, nil
	}

	var a [16]byte
	copy(a[:], ip.To16())
	return &unix.SockaddrInet6{Port: port, Addr: a}, nil
}

// NetworkTCP6AndUDP6 returns p unchanged; Resolve does not use it.
func NetworkTCP6AndUDP6(p libptc.NetworkProtocol) libptc.NetworkProtocol {
	return p
}

func domain(proto libptc.NetworkProtocol) int {
	switch proto {
	case libptc.NetworkTCP6, libptc.NetworkUDP6:
		return unix.AF_INET6
	case libptc.NetworkUnix, libptc.NetworkUnixGram:
		return unix.AF_UNIX
	default:
		return unix.AF_INET
	}
}

func sockType(proto libptc.NetworkProtocol) int {
	if proto.IsUDP() || proto == libptc.NetworkUnixGram {
		return unix.SOCK_DGRAM
	}
	return unix.SOCK_STREAM
}

// Listen opens a non-blocking listening socket bound to address.
func Listen(proto libptc.NetworkProtocol, address string, backlog int) (int, error) {
	fd, err := unix.Socket(domain(proto), sockType(proto)|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return -1, err
	}

	if proto.IsTCP() || proto.IsUDP() {
		_ = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	}

	sa, err := Resolve(proto, address)
	if err != nil {
		_ = unix.Close(fd)
		return -1, err
	}

	if err := unix.Bind(fd, sa); err != nil {
		_ = unix.Close(fd)
		return -1, err
	}

	if proto.IsTCP() || proto == libptc.NetworkUnix {
		if backlog <= 0 {
			backlog = 128
		}
		if err := unix.Listen(fd, backlog); err != nil {
			_ = unix.Close(fd)
			return -1, err
		}
	}

	return fd, nil
}

// Accept accepts a pending connection on a non-blocking listening fd. It
// returns unix.EAGAIN when nothing is pending, which the poller treats as
// "stop accepting for this tick".
func Accept(listenFD int) (fd int, peer unix.Sockaddr, err error) {
	fd, peer, err = unix.Accept4(listenFD, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
	return
}

// Connect opens a non-blocking connecting socket toward address. The caller
// must poll the fd for writability to learn when the connect completes (or
// failed, checked via SO_ERROR).
func Connect(proto libptc.NetworkProtocol, address string) (int, error) {
	fd, err := unix.Socket(domain(proto), sockType(proto)|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return -1, err
	}

	sa, err := Resolve(proto, address)
	if err != nil {
		_ = unix.Close(fd)
		return -1, err
	}

	err = unix.Connect(fd, sa)
	if err != nil && err != unix.EINPROGRESS {
		_ = unix.Close(fd)
		return -1, err
	}

	return fd, nil
}

// ConnectError returns the pending SO_ERROR for a connecting socket once it
// becomes writable, nil meaning the connect succeeded.
func ConnectError(fd int) error {
	errno, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_ERROR)
	if err != nil {
		return err
	}
	if errno != 0 {
		return unix.Errno(errno)
	}
	return nil
}

// AddrString formats a unix.Sockaddr back into a net.Addr style string.
func AddrString(sa unix.Sockaddr) string {
	switch v := sa.(type) {
	case *unix.SockaddrInet4:
		return net.JoinHostPort(net.IP(v.Addr[:]).String(), strconv.Itoa(v.Port))
	case *unix.SockaddrInet6:
		return net.JoinHostPort(net.IP(v.Addr[:]).String(), strconv.Itoa(v.Port))
	case *unix.SockaddrUnix:
		return v.Name
	default:
		return ""
	}
}

// StripScheme removes a leading "tcp://"/"udp://" style scheme some config
// inputs carry, leaving a bare host:port/path for Resolve.
func StripScheme(addr string) string {
	if i := strings.Index(addr, "://"); i >= 0 {
		return addr[i+3:]
	}
	return addr
}
