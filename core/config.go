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

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	liberr "github.com/sabouaram/evcore/errors"
	libptc "github.com/sabouaram/evcore/network/protocol"
)

// ListenConfig describes one listening socket the Manager opens at Start.
type ListenConfig struct {
	Name     string                 `mapstructure:"name" json:"name" yaml:"name" toml:"name" validate:"required"`
	Network  libptc.NetworkProtocol `mapstructure:"network" json:"network" yaml:"network" toml:"network"`
	Address  string                 `mapstructure:"address" json:"address" yaml:"address" toml:"address" validate:"required"`
	Backlog  int                    `mapstructure:"backlog" json:"backlog" yaml:"backlog" toml:"backlog"`
	TLS      bool                   `mapstructure:"tls" json:"tls" yaml:"tls" toml:"tls"`
}

// ManagerConfig configures a Manager. It mirrors the shape of the teacher's
// server configuration types: mapstructure/json/yaml/toml tags for viper
// driven configuration files, validated with go-playground/validator.
type ManagerConfig struct {
	Listen []ListenConfig `mapstructure:"listen" json:"listen" yaml:"listen" toml:"listen" validate:"required,dive"`

	PollTimeout     time.Duration `mapstructure:"pollTimeout" json:"pollTimeout" yaml:"pollTimeout" toml:"pollTimeout"`
	MaxEventsPerTick int          `mapstructure:"maxEventsPerTick" json:"maxEventsPerTick" yaml:"maxEventsPerTick" toml:"maxEventsPerTick"`
	ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout" json:"shutdownTimeout" yaml:"shutdownTimeout" toml:"shutdownTimeout"`

	ctx func() context.Context
}

const (
	defaultPollTimeout      = 250 * time.Millisecond
	defaultMaxEventsPerTick = 256
	defaultShutdownTimeout  = 10 * time.Second
)

// SetParentContext stores a base-context provider on the config. The Manager
// does not read it: connections do not derive a context from it.
func (m *ManagerConfig) SetParentContext(fn func() context.Context) {
	m.ctx = fn
}

func (m *ManagerConfig) getContext() context.Context {
	if m.ctx != nil {
		if c := m.ctx(); c != nil {
			return c
		}
	}
	return context.Background()
}

// Validate checks the configuration, translating validator.ValidationErrors
// into a chained liberr.Error the same way the teacher's server config does.
func (m *ManagerConfig) Validate() liberr.Error {
	if m.PollTimeout <= 0 {
		m.PollTimeout = defaultPollTimeout
	}
	if m.MaxEventsPerTick <= 0 {
		m.MaxEventsPerTick = defaultMaxEventsPerTick
	}
	if m.ShutdownTimeout <= 0 {
		m.ShutdownTimeout = defaultShutdownTimeout
	}

	err := validator.New().Struct(m)
	if err == nil {
		return nil
	}

	if _, ok := err.(*validator.InvalidValidationError); ok {
		return ErrorConfigValidate.ErrorParent(err)
	}

	out := ErrorConfigValidate.Error(nil)

	for _, fe := range err.(validator.ValidationErrors) {
		//nolint goerr113
		out.AddParent(fmt.Errorf("config field '%s' is not validated by constraint '%s'", fe.Namespace(), fe.ActualTag()))
	}

	if out.HasParent() {
		return out
	}

	return nil
}
