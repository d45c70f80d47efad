package main

import (
	"github.com/skelterjohn/go.wde"
)

type Cursor int

const (
	NormalCursor Cursor = iota
	ResizeEWCursor
	GrabCursor
	IBeamCursor
	BusyCursor
)

type CursorCtl interface {
	Set(c Cursor)
}

/* wde's cursor support varies per backend; track the requested shape
 * and leave the system cursor alone. */
type nopCursor struct {
	current Cursor
}

func NewCursorCtl(win wde.Window) CursorCtl {
	return &nopCursor{}
}

func (c *nopCursor) Set(cur Cursor) {
	c.current = cur
}
