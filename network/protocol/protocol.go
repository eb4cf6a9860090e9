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

// Package protocol defines NetworkProtocol, the small closed enum used by
// core's ListenConfig/Connection to say which socket family and mode a
// listener or connection speaks, with string/JSON/YAML/TOML/CBOR codecs and
// a viper mapstructure decode hook so it can be read straight out of config.
package protocol

// NetworkProtocol identifies a socket family/mode understood by the
// connection manager. The zero value, NetworkEmpty, means "unset".
type NetworkProtocol uint8

const (
	NetworkEmpty NetworkProtocol = iota
	NetworkUnix
	NetworkTCP
	NetworkTCP4
	NetworkTCP6
	NetworkUDP
	NetworkUDP4
	NetworkUDP6
	NetworkIP
	NetworkIP4
	NetworkIP6
	NetworkUnixGram
)

// IsTCP reports whether p is tcp, tcp4 or tcp6.
func (p NetworkProtocol) IsTCP() bool {
	return p == NetworkTCP || p == NetworkTCP4 || p == NetworkTCP6
}

// IsUDP reports whether p is udp, udp4 or udp6.
func (p NetworkProtocol) IsUDP() bool {
	return p == NetworkUDP || p == NetworkUDP4 || p == NetworkUDP6
}

// IsUnix reports whether p is unix or unixgram.
func (p NetworkProtocol) IsUnix() bool {
	return p == NetworkUnix || p == NetworkUnixGram
}

var protocolNames = map[NetworkProtocol]string{
	NetworkUnix:     "unix",
	NetworkTCP:      "tcp",
	NetworkTCP4:     "tcp4",
	NetworkTCP6:     "tcp6",
	NetworkUDP:      "udp",
	NetworkUDP4:     "udp4",
	NetworkUDP6:     "udp6",
	NetworkIP:       "ip",
	NetworkIP4:      "ip4",
	NetworkIP6:      "ip6",
	NetworkUnixGram: "unixgram",
}

var protocolValues = func() map[string]NetworkProtocol {
	m := make(map[string]NetworkProtocol, len(protocolNames))
	for p, n := range protocolNames {
		m[n] = p
	}
	return m
}()
