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

package mqtt_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	. "github.com/sabouaram/evcore/proto/mqtt"
)

var _ = Describe("mqtt broker", func() {
	It("delivers a PUBLISH only to matching subscribers", func() {
		b := NewBroker(nil)

		a := &recordingWriter{}
		other := &recordingWriter{}

		b.Subscribe(a, "sensors/+/temp", QoS0)
		b.Subscribe(other, "sensors/kitchen/humidity", QoS0)

		b.Publish("sensors/kitchen/temp", []byte("21.5"), QoS0, false)

		Expect(a.out).ToNot(BeEmpty())
		Expect(other.out).To(BeEmpty())
	})

	It("delivers a retained message immediately on subscribe", func() {
		b := NewBroker(nil)
		b.Publish("status", []byte("online"), QoS0, true)

		sub := &recordingWriter{}
		b.Subscribe(sub, "status", QoS0)

		Expect(sub.out).ToNot(BeEmpty())
	})

	It("stops delivering to a subscriber once Disconnect drops it", func() {
		b := NewBroker(nil)
		sub := &recordingWriter{}
		b.Subscribe(sub, "a/#", QoS0)
		b.Disconnect(sub)

		b.Publish("a/b/c", []byte("x"), QoS0, false)
		Expect(sub.out).To(BeEmpty())
	})
})
