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

package core

import "github.com/sabouaram/evcore/errors"

const (
	ErrorConfigValidate errors.CodeError = iota + errors.MinPkgCore
	ErrorPollerInit
	ErrorListen
	ErrorAccept
	ErrorRead
	ErrorWrite
	ErrorClosed
	ErrorNotRunning
)

var isCodeError = false

func IsCodeError() bool {
	return isCodeError
}

func init() {
	isCodeError = errors.ExistInMapMessage(ErrorConfigValidate)
	errors.RegisterIdFctMessage(ErrorConfigValidate, getMessage)
}

func getMessage(code errors.CodeError) (message string) {
	switch code {
	case errors.UNK_ERROR:
		return ""
	case ErrorConfigValidate:
		return "manager config seems to be not valid"
	case ErrorPollerInit:
		return "cannot initialize epoll poller"
	case ErrorListen:
		return "cannot open listening socket"
	case ErrorAccept:
		return "cannot accept incoming connection"
	case ErrorRead:
		return "error reading from connection"
	case ErrorWrite:
		return "error writing to connection"
	case ErrorClosed:
		return "connection is closed"
	case ErrorNotRunning:
		return "manager is not running"
	}

	return ""
}
