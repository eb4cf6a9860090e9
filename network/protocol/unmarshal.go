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

package protocol

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// trimQuotes strips one layer of single then double quotes, in that order,
// so a doubly-quoted value like "'tcp'" is left with the outer quote intact
// and fails to resolve to a known protocol.
func trimQuotes(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "'")
	s = strings.Trim(s, `"`)
	return strings.ToLower(strings.TrimSpace(s))
}

// UnmarshalJSON never fails: an unrecognized value silently decodes to
// NetworkEmpty rather than rejecting the whole document.
func (p *NetworkProtocol) UnmarshalJSON(b []byte) error {
	*p = Parse(trimQuotes(string(b)))
	return nil
}

// UnmarshalYAML reads the scalar node's value with the same silent
// fallback-to-NetworkEmpty semantics as UnmarshalJSON.
func (p *NetworkProtocol) UnmarshalYAML(node *yaml.Node) error {
	*p = Parse(trimQuotes(node.Value))
	return nil
}

// UnmarshalTOML accepts a []byte or string; any other type is a decode
// error rather than a silent fallback, since TOML carries real types.
func (p *NetworkProtocol) UnmarshalTOML(data interface{}) error {
	switch v := data.(type) {
	case []byte:
		*p = Parse(trimQuotes(string(v)))
		return nil
	case string:
		*p = Parse(trimQuotes(v))
		return nil
	default:
		return fmt.Errorf("network/protocol: value %v (%T) is not in valid format", data, data)
	}
}

// UnmarshalText has the same silent fallback-to-NetworkEmpty semantics as
// UnmarshalJSON.
func (p *NetworkProtocol) UnmarshalText(b []byte) error {
	*p = Parse(trimQuotes(string(b)))
	return nil
}

// UnmarshalCBOR has the same silent fallback-to-NetworkEmpty semantics as
// UnmarshalJSON.
func (p *NetworkProtocol) UnmarshalCBOR(b []byte) error {
	*p = Parse(trimQuotes(string(b)))
	return nil
}
