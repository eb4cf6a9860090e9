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

// Package ws implements the WebSocket (RFC 6455) upgrade handshake and frame
// codec on top of a connection's byte buffers, following the same
// zero-copy-until-dispatch-ends discipline as proto/http.
package ws

import (
	"crypto/sha1"
	"encoding/base64"
	"strings"

	libhttp "github.com/sabouaram/evcore/proto/http"
)

const magicGUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

// AcceptKey computes the Sec-WebSocket-Accept value for a given
// Sec-WebSocket-Key request header.
func AcceptKey(clientKey string) string {
	h := sha1.New()
	h.Write([]byte(clientKey))
	h.Write([]byte(magicGUID))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// IsUpgradeRequest reports whether an HTTP request carries a WebSocket
// upgrade request (Connection: Upgrade, Upgrade: websocket, a
// Sec-WebSocket-Key header, and version 13).
func IsUpgradeRequest(m *libhttp.Message) bool {
	if !m.IsRequest {
		return false
	}
	return containsToken(m.Header("Connection"), "upgrade") &&
		strings.EqualFold(m.Header("Upgrade"), "websocket") &&
		m.Header("Sec-WebSocket-Key") != "" &&
		m.Header("Sec-WebSocket-Version") == "13"
}

// HandshakeResponse writes the 101 Switching Protocols response into w for
// a valid upgrade request.
func HandshakeResponse(w libhttp.Writer, req *libhttp.Message, protocol string) {
	r := libhttp.NewResponder(w)

	headers := map[string]string{
		"Upgrade":              "websocket",
		"Connection":           "Upgrade",
		"Sec-WebSocket-Accept": AcceptKey(req.Header("Sec-WebSocket-Key")),
	}

	if protocol != "" {
		headers["Sec-WebSocket-Protocol"] = protocol
	}

	r.Reply(101, headers, nil)
}

func containsToken(header, token string) bool {
	for _, p := range strings.Split(header, ",") {
		if strings.EqualFold(strings.TrimSpace(p), token) {
			return true
		}
	}
	return false
}
