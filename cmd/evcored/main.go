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

// Command evcored is the example binary for the evcore runtime: one TCP
// listener serving static files over HTTP/1.1, wired entirely through a
// core.Manager Handler. A WebSocket upgrade request is answered with the 101
// handshake; frames sent after the upgrade are not decoded or echoed.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	retryablehttp "github.com/hashicorp/go-retryablehttp"
	"github.com/spf13/cobra"

	"github.com/sabouaram/evcore/console"
	"github.com/sabouaram/evcore/core"
	"github.com/sabouaram/evcore/core/fileprovider"
	libhttp "github.com/sabouaram/evcore/proto/http"
	libws "github.com/sabouaram/evcore/proto/ws"

	liblog "github.com/sabouaram/evcore/logger"
	libptc "github.com/sabouaram/evcore/network/protocol"
)

const parserKey = "http.parser"

var (
	flagListen      string
	flagRoot        string
	flagHealthCheck string
)

func main() {
	root := &cobra.Command{
		Use:   "evcored",
		Short: "evcore example server: static files over HTTP/1.1 with WebSocket upgrade handshake",
		RunE:  run,
	}

	root.Flags().StringVar(&flagListen, "listen", ":8080", "address to listen on")
	root.Flags().StringVar(&flagRoot, "root", ".", "directory served over HTTP")
	root.Flags().StringVar(&flagHealthCheck, "healthcheck-url", "", "optional upstream URL pinged at startup")

	if err := root.Execute(); err != nil {
		liblog.ErrorLevel.LogError(err)
		os.Exit(1)
	}
}

func run(_ *cobra.Command, _ []string) error {
	banner()

	if flagHealthCheck != "" {
		pingUpstream(flagHealthCheck)
	}

	provider := fileprovider.NewOSProvider(flagRoot)

	cfg := core.ManagerConfig{
		Listen: []core.ListenConfig{
			{Name: "http", Network: libptc.NetworkTCP, Address: flagListen, Backlog: 128},
		},
	}

	mgr, err := core.New(cfg)
	if err != nil {
		return err
	}

	mgr.Handler(httpHandler(provider))

	ctx := context.Background()
	if err := mgr.Start(ctx); err != nil {
		return err
	}

	liblog.InfoLevel.Logf("evcored listening on %s, serving %s", flagListen, flagRoot)
	mgr.WaitNotify(ctx)
	return nil
}

// httpHandler returns a core.Handler that keeps one *http.Parser per
// connection (stored in Connection.UserContext under parserKey) and answers
// every decoded request either with a WebSocket upgrade or a static file
// served out of provider.
func httpHandler(provider *fileprovider.OSProvider) core.Handler {
	return func(c *core.Connection, ev core.Event, payload interface{}) {
		switch ev {
		case core.EventAccept:
			c.UserContext().Store(parserKey, libhttp.NewParser())

		case core.EventRead:
			v, _ := c.UserContext().Load(parserKey)
			p, ok := v.(*libhttp.Parser)
			if !ok {
				return
			}

			for {
				state, n, msg := p.Parse(c.Recv.Bytes())
				if n > 0 {
					c.Recv.Consume(n)
				}

				switch state {
				case libhttp.StateNeedMore:
					return
				case libhttp.StateError:
					c.CloseNow()
					return
				case libhttp.StateHeaders:
					continue
				case libhttp.StateMessage:
					serve(c, provider, msg)
					p.Reset()
					if c.Recv.Len() == 0 {
						return
					}
				}
			}
		}
	}
}

func serve(c *core.Connection, provider *fileprovider.OSProvider, msg *libhttp.Message) {
	resp := libhttp.NewResponder(c)

	if libws.IsUpgradeRequest(msg) {
		libws.HandshakeResponse(c, msg, "")
		c.UserContext().Store("ws", true)
		return
	}

	// ServeDir already writes a 404 itself on a missing/unreadable file.
	_ = resp.ServeDir(provider.Root, msg.URI)
}

func banner() {
	console.SetColor(console.ColorPrint, int(color.FgCyan), int(color.Bold))
	console.GetColor(console.ColorPrint).Println("evcored — embedded event-driven networking runtime")
}

// pingUpstream exercises the teacher's retrying HTTP client against an
// operator-supplied health-check URL before the listener comes up.
func pingUpstream(url string) {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.Logger = nil

	hc := client.HTTPClient
	hc.Timeout = 5 * time.Second

	resp, err := client.Get(url)
	if err != nil {
		liblog.WarnLevel.Logf("healthcheck %s failed: %v", url, err)
		return
	}
	defer resp.Body.Close()

	liblog.InfoLevel.Logf("healthcheck %s responded %s", url, fmt.Sprint(resp.StatusCode))
}
