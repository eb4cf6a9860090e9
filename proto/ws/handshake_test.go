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

package ws_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	libhttp "github.com/sabouaram/evcore/proto/http"
	. "github.com/sabouaram/evcore/proto/ws"
)

var _ = Describe("ws handshake", func() {
	It("computes the well-known RFC 6455 example accept key", func() {
		Expect(AcceptKey("dGhlIHNhbXBsZSBub25jZQ==")).To(Equal("s3pPLMBiTxaQ9kYGzzhZRbK+xOo="))
	})

	It("recognizes a valid upgrade request", func() {
		m := &libhttp.Message{
			IsRequest: true,
			Headers: []libhttp.Header{
				{Name: "Connection", Value: "Upgrade"},
				{Name: "Upgrade", Value: "websocket"},
				{Name: "Sec-WebSocket-Key", Value: "dGhlIHNhbXBsZSBub25jZQ=="},
				{Name: "Sec-WebSocket-Version", Value: "13"},
			},
		}
		Expect(IsUpgradeRequest(m)).To(BeTrue())
	})

	It("rejects a request missing the websocket upgrade token", func() {
		m := &libhttp.Message{
			IsRequest: true,
			Headers: []libhttp.Header{
				{Name: "Connection", Value: "keep-alive"},
			},
		}
		Expect(IsUpgradeRequest(m)).To(BeFalse())
	})

	It("writes a 101 response with the computed accept key", func() {
		w := &recordingWriter{}
		req := &libhttp.Message{
			Headers: []libhttp.Header{
				{Name: "Sec-WebSocket-Key", Value: "dGhlIHNhbXBsZSBub25jZQ=="},
			},
		}

		HandshakeResponse(w, req, "")

		Expect(string(w.out)).To(ContainSubstring("101 Switching Protocols"))
		Expect(string(w.out)).To(ContainSubstring("s3pPLMBiTxaQ9kYGzzhZRbK+xOo="))
	})
})
