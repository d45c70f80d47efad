package main

import (
	"image"
	"sync"
	"testing"

	"github.com/skelterjohn/go.wde"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/* eventLoop runs event() against synthetic channels; send delivers an
 * event and query reads state on the loop goroutine. */
func eventLoop(t *testing.T) (send func(interface{}), query func(func())) {
	events := make(chan interface{})
	dispatch := make(chan func(), 16)
	refresh := make(chan Widget, 10)
	done := make(chan bool, 1)
	cursorCtl = &nopCursor{}

	wg := sync.WaitGroup{}
	wg.Add(1)
	go event(events, dispatch, refresh, done, &wg)
	t.Cleanup(func() {
		events <- wde.CloseEvent{}
		wg.Wait()
	})

	send = func(ev interface{}) { events <- ev }
	query = func(fn func()) {
		c := make(chan struct{})
		dispatch <- func() {
			fn()
			close(c)
		}
		<-c
	}
	return send, query
}

func TestReleaseInvalidatesDrag(t *testing.T) {
	ww, img := testWidget()
	ww.Zoom(4)
	ww.Draw(img, img.Bounds())
	G.ww = ww
	G.widgets = []Widget{ww}
	send, query := eventLoop(t)

	/* middle-button pan moves the view */
	var down wde.MouseDownEvent
	down.Where = image.Pt(500, 100)
	down.Which = wde.MiddleButton
	send(down)
	var dragEv wde.MouseDraggedEvent
	dragEv.Where = image.Pt(400, 100)
	dragEv.Which = wde.MiddleButton
	send(dragEv)
	var up wde.MouseUpEvent
	up.Where = image.Pt(400, 100)
	up.Which = wde.MiddleButton
	send(up)

	var offset float64
	query(func() { offset = ww.Viewport().Offset() })
	require.Greater(t, offset, 0.0)

	/* a left press outside every widget starts no drag, and the pan
	 * released above must not resurface when the pointer crosses the
	 * widget */
	down.Where = image.Pt(1100, 300)
	down.Which = wde.LeftButton
	send(down)
	dragEv.Where = image.Pt(600, 100)
	dragEv.Which = wde.LeftButton
	send(dragEv)
	up.Where = image.Pt(600, 100)
	up.Which = wde.LeftButton
	send(up)

	var after float64
	query(func() { after = ww.Viewport().Offset() })
	assert.Equal(t, offset, after)
}

func TestOutsideClicksReachNoWidget(t *testing.T) {
	ww, img := testWidget()
	ww.Draw(img, img.Bounds())
	G.ww = ww
	G.widgets = []Widget{ww}
	var sought []float64
	send, query := eventLoop(t)
	query(func() { ww.OnSeek(func(t float64) { sought = append(sought, t) }) })

	var down wde.MouseDownEvent
	down.Where = image.Pt(500, 50)
	down.Which = wde.LeftButton
	send(down)
	var up wde.MouseUpEvent
	up.Where = image.Pt(500, 50)
	up.Which = wde.LeftButton
	send(up)

	up.Where = image.Pt(1100, 300)
	send(up) /* no press preceded it; lands on nothing */

	query(func() {})
	require.Equal(t, []float64{50}, sought)
}
