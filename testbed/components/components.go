// Package components declares the handler methods the testbed dispatcher is
// generated from.
package components

import (
	"fmt"
	"sync"

	"github.com/wippyai/typedispatch/testbed/models"
)

type AppComponent struct{}

//dispatch:handler
func (c *AppComponent) Inject(obj *models.AppObject1) {
	obj.Injected = true
}

//dispatch:handler
func (c *AppComponent) Provide(obj *models.AppObject2) {
	obj.Injected = true
}

type BananaComponent struct{}

//dispatch:handler strict
func (c *BananaComponent) Inject(obj *models.BananaObject) {
	obj.Injected = true
}

type NetComponent struct{}

//dispatch:handler
func (c *NetComponent) Inject(obj *models.NetObject1) error {
	if obj.Fail {
		return fmt.Errorf("net object refused")
	}
	obj.Injected = true
	return nil
}

//dispatch:handler
func (c *NetComponent) Provide(obj *models.NetObject2) {
	obj.Injected = true
}

type ZebraComponent struct{}

//dispatch:handler loose
func (c *ZebraComponent) Inject(obj *models.ZebraObject) {
	obj.Injected = true
}

// LabelComponent records the labels of everything it handles.
type LabelComponent struct {
	mu     sync.Mutex
	labels []string
}

//dispatch:handler loose
func (c *LabelComponent) Inject(obj models.Labeled) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.labels = append(c.labels, obj.Label())
}

// Labels returns the labels seen so far.
func (c *LabelComponent) Labels() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.labels...)
}

// Reset is not a handler.
func (c *LabelComponent) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.labels = nil
}
