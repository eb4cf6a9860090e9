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
	"math"
	"reflect"
)

var protocolType = reflect.TypeOf(NetworkProtocol(0))

// ViperDecoderHook returns a mapstructure.DecodeHookFuncType that lets a
// viper config value decode straight into a NetworkProtocol field: strings
// go through Parse (never erroring, falling back to NetworkEmpty), integers
// of any width are validated against ParseInt64, and anything else - or any
// target type other than NetworkProtocol - passes through unchanged.
func ViperDecoderHook() func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != protocolType {
			return data, nil
		}

		switch from.Kind() {
		case reflect.String:
			s, ok := data.(string)
			if !ok {
				return data, nil
			}
			return Parse(s), nil

		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			var v int64
			switch n := data.(type) {
			case int:
				v = int64(n)
			case int8:
				v = int64(n)
			case int16:
				v = int64(n)
			case int32:
				v = int64(n)
			case int64:
				v = n
			default:
				return data, nil
			}

			p := ParseInt64(v)
			if p == NetworkEmpty {
				return nil, fmt.Errorf("network/protocol: invalid value %d for NetworkProtocol", v)
			}
			return p, nil

		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			var v uint64
			switch n := data.(type) {
			case uint:
				v = uint64(n)
			case uint8:
				v = uint64(n)
			case uint16:
				v = uint64(n)
			case uint32:
				v = uint64(n)
			case uint64:
				v = n
			default:
				return data, nil
			}

			if v > math.MaxUint16 {
				return nil, fmt.Errorf("network/protocol: invalid value %d for NetworkProtocol", v)
			}

			p := ParseInt64(int64(v))
			if p == NetworkEmpty {
				return nil, fmt.Errorf("network/protocol: invalid value %d for NetworkProtocol", v)
			}
			return p, nil

		default:
			return data, nil
		}
	}
}
