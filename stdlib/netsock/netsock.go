// Package netsock exposes a websocket connection as a task-returning
// core value: call sends a frame and returns a task, iterate parks
// the caller until one arrives (§4.8 "netsock").
package netsock

import (
	"time"

	"github.com/gorilla/websocket"

	"sentracore/internal/schedule"
	"sentracore/internal/task"
	"sentracore/internal/types"
)

var ConnType = &types.TypeDescriptor{Name: "netsock"}

type Conn struct {
	sched     *schedule.Scheduler
	conn      *websocket.Conn
	lastFrame types.Value
}

func (*Conn) Type() *types.TypeDescriptor { return ConnType }

// Dial opens a client connection, mirroring the teacher's
// WebSocketConnect dial-with-timeout.
func Dial(sched *schedule.Scheduler, url string) (*Conn, error) {
	dialer := websocket.DefaultDialer
	dialer.HandshakeTimeout = 10 * time.Second
	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}
	return &Conn{sched: sched, conn: conn}, nil
}

func init() {
	// call(conn, s): sends a text frame, off a goroutine, completing a
	// task once the write finishes.
	ConnType.Call = func(caller types.State, self types.Value, args []types.Value) (types.State, types.Value) {
		c := self.(*Conn)
		if len(args) != 1 {
			return caller, types.NewError(types.TypeError, "netsock call takes exactly one argument")
		}
		msg, ok := types.Deref(args[0]).(types.String)
		if !ok {
			return caller, types.NewError(types.TypeError, "netsock call argument must be a string")
		}

		t := task.New(c.sched)
		go func() {
			err := c.conn.WriteMessage(websocket.TextMessage, []byte(msg.V))
			var result types.Value = types.Nil
			if err != nil {
				result = types.NewError(types.WriteError, err.Error())
			}
			c.sched.Schedule(&completeTask{t: t}, result)
		}()
		return caller, t
	}

	// A connection is its own iterator: next parks the caller on a
	// goroutine reading the next frame, per §5's suspension points.
	ConnType.Iterate = connNext
	ConnType.Next = connNext
	ConnType.Value = func(caller types.State, self types.Value) (types.State, types.Value) {
		return caller, self.(*Conn).lastFrame
	}
	ConnType.Key = func(caller types.State, self types.Value) (types.State, types.Value) {
		return caller, types.Nil
	}
}

func Register(reg *types.Registry) {
	reg.RegisterType(ConnType)
}

type completeTask struct{ t *task.Task }

func (c *completeTask) Run(result types.Value) (types.State, types.Value) {
	c.t.Done(result)
	return nil, types.Nil
}

func connNext(caller types.State, self types.Value) (types.State, types.Value) {
	c := self.(*Conn)
	park := &readWaiter{c: c, caller: caller}
	go park.read()
	return nil, types.Nil
}

type readWaiter struct {
	c      *Conn
	caller types.State
}

func (w *readWaiter) read() {
	_, data, err := w.c.conn.ReadMessage()
	if err != nil {
		w.c.sched.Schedule(w.caller, types.NewError(types.ReadError, err.Error()))
		return
	}
	w.c.lastFrame = types.String{V: string(data)}
	w.c.sched.Schedule(w.caller, w.c)
}
