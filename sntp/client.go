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

package sntp

import (
	"net"
	"time"
)

// Query performs a single blocking SNTP request/reply exchange against
// addr (host:port, default port 123 if omitted), outside the event loop —
// useful for a one-shot time check at startup or from a CLI command. For use
// on a non-blocking socket, BuildRequest/ParseReply are exported directly.
func Query(addr string, timeout time.Duration) (*Reply, time.Duration, error) {
	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = net.JoinHostPort(addr, "123")
	}

	conn, err := net.Dial("udp", addr)
	if err != nil {
		return nil, 0, err
	}
	defer conn.Close()

	if timeout > 0 {
		if err = conn.SetDeadline(time.Now().Add(timeout)); err != nil {
			return nil, 0, err
		}
	}

	txTime := time.Now()
	if _, err = conn.Write(BuildRequest(txTime)); err != nil {
		return nil, 0, err
	}

	buf := make([]byte, packetSize)
	n, err := conn.Read(buf)
	if err != nil {
		return nil, 0, err
	}

	rxTime := time.Now()

	reply, err := ParseReply(buf[:n])
	if err != nil {
		return nil, 0, err
	}

	return reply, reply.Offset(rxTime), nil
}
