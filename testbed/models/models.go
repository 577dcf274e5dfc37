// Package models holds the values the testbed components handle.
package models

type AppObject1 struct {
	Injected bool
}

type AppObject2 struct {
	Injected bool
}

type BananaObject struct {
	Injected bool
}

// CavendishObject is a banana without a handler of its own. Bananas are
// handled strictly, so it is not routed anywhere.
type CavendishObject struct {
	BananaObject
}

type NetObject1 struct {
	Injected bool
	Fail     bool
}

type NetObject2 struct {
	Injected bool
}

type ZebraObject struct {
	Injected bool
}

// OkapiObject is close enough to a zebra for the loose zebra handler. Its own
// Injected field shadows the embedded one and is never set by that handler.
type OkapiObject struct {
	ZebraObject
	Injected bool
}

// OnagerObject reaches its zebra through a pointer.
type OnagerObject struct {
	*ZebraObject
}

// Labeled values are handled loosely by interface.
type Labeled interface {
	Label() string
}

type TicketObject struct {
	ID       string
	Injected bool
}

func (t *TicketObject) Label() string { return "ticket-" + t.ID }

type NonHandledObject struct {
	Injected bool
}
