// Package netfault is the net.Conn front end for the fault injection engine.
//
// Go programs rarely sit behind raw file descriptors; they dial. Dialer and
// Conn route dialing, reads and writes through the same injector decisions
// the descriptor-level layer applies (connect refusal, send/recv failure,
// short reads, latency) so an application's retry paths can be exercised by
// swapping one dialer in a test:
//
//	in := fault.New(cfg)
//	d := &netfault.Dialer{Injector: in}
//	client := &http.Client{Transport: &http.Transport{DialContext: d.DialContext}}
//
// Injected failures surface as *net.OpError wrapping the configured errno,
// which is what a caller of the real primitives would see.
package netfault
