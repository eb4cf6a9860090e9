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

package http

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Responder writes an HTTP/1.1 response into a connection's send buffer. It
// has no knowledge of core.Connection; callers pass a Writer (satisfied by
// *core.Connection's Write method) so this package stays decoupled from core.
type Responder struct {
	w Writer
}

// Writer is the minimal sink a Responder writes encoded bytes into.
type Writer interface {
	Write(p []byte)
}

// NewResponder wraps w for response encoding.
func NewResponder(w Writer) *Responder {
	return &Responder{w: w}
}

// Reply writes a full, non-chunked response with the given status, headers
// and body.
func (r *Responder) Reply(status int, headers map[string]string, body []byte) {
	var b strings.Builder

	fmt.Fprintf(&b, "HTTP/1.1 %d %s\r\n", status, StatusText(status))

	hasLength := false
	for k := range headers {
		if strings.EqualFold(k, "Content-Length") {
			hasLength = true
		}
	}

	for _, k := range sortedKeys(headers) {
		fmt.Fprintf(&b, "%s: %s\r\n", k, headers[k])
	}

	if !hasLength {
		fmt.Fprintf(&b, "Content-Length: %d\r\n", len(body))
	}

	b.WriteString("\r\n")

	r.w.Write([]byte(b.String()))
	if len(body) > 0 {
		r.w.Write(body)
	}
}

// ChunkHeader writes the status line and headers for a chunked-transfer
// response; call Chunk for each piece of body and ChunkEnd to terminate.
func (r *Responder) ChunkHeader(status int, headers map[string]string) {
	var b strings.Builder

	fmt.Fprintf(&b, "HTTP/1.1 %d %s\r\n", status, StatusText(status))

	for _, k := range sortedKeys(headers) {
		fmt.Fprintf(&b, "%s: %s\r\n", k, headers[k])
	}

	b.WriteString("Transfer-Encoding: chunked\r\n\r\n")
	r.w.Write([]byte(b.String()))
}

// Chunk writes one chunked-transfer data frame.
func (r *Responder) Chunk(p []byte) {
	if len(p) == 0 {
		return
	}
	r.w.Write([]byte(strconv.FormatInt(int64(len(p)), 16) + "\r\n"))
	r.w.Write(p)
	r.w.Write([]byte("\r\n"))
}

// ChunkEnd writes the terminating zero-length chunk.
func (r *Responder) ChunkEnd() {
	r.w.Write([]byte("0\r\n\r\n"))
}

// SSE writes one server-sent-events frame ("data: ...\n\n"), assuming the
// response headers (Content-Type: text/event-stream) were already sent via
// ChunkHeader or Reply with a still-open connection.
func (r *Responder) SSE(event string, data []byte) {
	var b strings.Builder
	if event != "" {
		fmt.Fprintf(&b, "event: %s\n", event)
	}
	for _, line := range strings.Split(string(data), "\n") {
		fmt.Fprintf(&b, "data: %s\n", line)
	}
	b.WriteString("\n")
	r.w.Write([]byte(b.String()))
}

// ServeFile replies with the content of path, or a 404 if it cannot be read.
func (r *Responder) ServeFile(path string, headers map[string]string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		r.Reply(404, nil, []byte("not found"))
		return err
	}

	if headers == nil {
		headers = map[string]string{}
	}
	headers["Content-Type"] = contentType(path)

	r.Reply(200, headers, data)
	return nil
}

// ServeDir replies with reqPath resolved against root, rejecting traversal
// outside root and falling back to a 404 for missing files.
func (r *Responder) ServeDir(root, reqPath string) error {
	clean := filepath.Clean("/" + reqPath)
	full := filepath.Join(root, clean)

	if !strings.HasPrefix(full, filepath.Clean(root)) {
		r.Reply(403, nil, []byte("forbidden"))
		return nil
	}

	return r.ServeFile(full, nil)
}

// BasicAuth checks an incoming Authorization header against user/pass,
// writing a 401 challenge and returning false if it does not match.
func (r *Responder) BasicAuth(authHeader, user, pass string) bool {
	const prefix = "Basic "

	if !strings.HasPrefix(authHeader, prefix) {
		r.Reply(401, map[string]string{"WWW-Authenticate": `Basic realm="restricted"`}, nil)
		return false
	}

	dec, err := base64.StdEncoding.DecodeString(authHeader[len(prefix):])
	if err != nil || string(dec) != user+":"+pass {
		r.Reply(401, map[string]string{"WWW-Authenticate": `Basic realm="restricted"`}, nil)
		return false
	}

	return true
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func contentType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return "text/html; charset=utf-8"
	case ".css":
		return "text/css; charset=utf-8"
	case ".js":
		return "application/javascript; charset=utf-8"
	case ".json":
		return "application/json; charset=utf-8"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".svg":
		return "image/svg+xml"
	default:
		return "application/octet-stream"
	}
}

// StatusText returns the reason phrase for common status codes.
func StatusText(code int) string {
	switch code {
	case 101:
		return "Switching Protocols"
	case 200:
		return "OK"
	case 201:
		return "Created"
	case 204:
		return "No Content"
	case 301:
		return "Moved Permanently"
	case 302:
		return "Found"
	case 304:
		return "Not Modified"
	case 400:
		return "Bad Request"
	case 401:
		return "Unauthorized"
	case 403:
		return "Forbidden"
	case 404:
		return "Not Found"
	case 405:
		return "Method Not Allowed"
	case 500:
		return "Internal Server Error"
	case 501:
		return "Not Implemented"
	case 502:
		return "Bad Gateway"
	case 503:
		return "Service Unavailable"
	default:
		return "Unknown"
	}
}
