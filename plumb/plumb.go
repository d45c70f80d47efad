/* Package plumb provides broadcast ports connecting the core's components.
 * Events published on a port are delivered to every subscriber; payloads are
 * the typed event structs defined by the publishing package (audio, marker). */
package plumb

type Port struct {
	C     chan<- interface{}
	c     chan interface{}
	sub   chan chan interface{}
	unsub chan chan interface{}
}

func MkPort() *Port {
	port := Port{c: make(chan interface{})}
	port.C = port.c
	port.sub = make(chan chan interface{})
	port.unsub = make(chan chan interface{})
	go port.broadcast()
	return &port
}

func (port *Port) Sub(c chan interface{}) {
	port.sub <- c
}

func (port *Port) Unsub(c chan interface{}) {
	port.unsub <- c
}

func (port *Port) broadcast() {
	subs := make(map[chan interface{}]bool)
	for {
		select {
		case c := <-port.sub:
			subs[c] = true
		case c := <-port.unsub:
			close(c)
			delete(subs, c)
		case ev, ok := <-port.c:
			if !ok {
				for c := range subs {
					close(c)
				}
				return
			}
			for c := range subs {
				c <- ev
			}
		}
	}
}
