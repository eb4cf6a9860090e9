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

// Package status defines the three-level health status a monitor reports.
package status

import (
	"encoding/json"
	"strings"
)

// Status is a monitor's health level, ordered so KO < Warn < OK allows
// numeric comparisons when aggregating several monitors.
type Status int

const (
	KO Status = iota
	Warn
	OK
)

// String renders the status name, defaulting to "KO" for any unknown value
// so a corrupted/garbage status never reads as healthy.
func (s Status) String() string {
	switch s {
	case OK:
		return "OK"
	case Warn:
		return "Warn"
	default:
		return "KO"
	}
}

// Int returns the numeric status level.
func (s Status) Int() int {
	return int(s)
}

// MarshalJSON encodes the status as its string name.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a status from its string name.
func (s *Status) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}
	*s = Parse(str)
	return nil
}

// Parse maps a status name back to its Status, defaulting to KO. Matching
// ignores case, surrounding spaces and quotes, and a leading "status" word.
func Parse(s string) Status {
	s = strings.Trim(strings.TrimSpace(s), `"'`)
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimSpace(strings.TrimPrefix(s, "status"))

	switch s {
	case "ok":
		return OK
	case "warn":
		return Warn
	default:
		return KO
	}
}
