package api

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/vytor/likescenter/internal/errors"
	"github.com/vytor/likescenter/internal/logger"
	"github.com/vytor/likescenter/internal/models"
	"github.com/vytor/likescenter/internal/services"
	"github.com/vytor/likescenter/internal/store"
)

const wsWriteTimeout = 5 * time.Second

// Client message types.
const (
	wsFilter  = "filter"
	wsLike    = "like"
	wsPass    = "pass"
	wsRefresh = "refresh"
	wsMore    = "more"
	wsUnblur  = "unblur"
)

type clientMessage struct {
	Type   string `json:"type"`
	Status string `json:"status,omitempty"`
	ID     string `json:"id,omitempty"`
}

type serverMessage struct {
	Type  string              `json:"type"`
	View  *services.LikesView `json:"view,omitempty"`
	Op    string              `json:"op,omitempty"`
	Error *errorBody          `json:"error,omitempty"`
}

// wsSession streams one subscription to one client. Only the handler
// goroutine writes to the connection; everything else goes through out.
type wsSession struct {
	srv  *Server
	conn *websocket.Conn
	sub  *store.Subscription
	out  chan serverMessage
	log  *logger.Logger
}

// handleWebSocket streams live views of one status filter. The client can
// switch the filter and trigger sync work over the same connection.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	status, err := statusParam(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: s.OriginPatterns})
	if err != nil {
		logger.FromContext(r.Context()).Warn("websocket upgrade failed: %v", err)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	log := logger.FromContext(ctx).WithPrefix("ws")

	sub, err := s.Likes.Watch(ctx, status)
	if err != nil {
		log.Error("subscribe failed: %v", err)
		_ = conn.Close(websocket.StatusInternalError, "subscribe failed")
		return
	}
	defer sub.Unsubscribe()

	sess := &wsSession{srv: s, conn: conn, sub: sub, out: make(chan serverMessage, 16), log: log}
	log.Info("client connected, filter=%s", status)

	go func() {
		defer cancel()
		sess.readLoop(ctx)
	}()

	err = sess.writeLoop(ctx)
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		log.Info("client disconnected")
	default:
		if ctx.Err() == nil && err != nil {
			log.Warn("stream ended: %v", err)
		}
	}
	_ = conn.Close(websocket.StatusNormalClosure, "")
}

func (ws *wsSession) writeLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case snap, ok := <-ws.sub.C():
			if !ok {
				return nil
			}
			if ws.stale(snap) {
				ws.log.Debug("dropping %s snapshot after filter switch", snap.Filter)
				continue
			}
			msg := serverMessage{Type: "snapshot", View: ws.srv.Likes.ViewOf(ctx, snap)}
			if err := ws.write(ctx, msg); err != nil {
				return err
			}
		case msg := <-ws.out:
			if err := ws.write(ctx, msg); err != nil {
				return err
			}
		}
	}
}

// stale reports whether snap was taken for a filter the client has since
// switched away from.
func (ws *wsSession) stale(snap models.Snapshot) bool {
	return snap.Filter != ws.sub.Filter()
}

func (ws *wsSession) write(ctx context.Context, msg serverMessage) error {
	ctx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	return wsjson.Write(ctx, ws.conn, msg)
}

func (ws *wsSession) readLoop(ctx context.Context) {
	for {
		var msg clientMessage
		if err := wsjson.Read(ctx, ws.conn, &msg); err != nil {
			if websocket.CloseStatus(err) == -1 && ctx.Err() == nil {
				ws.log.Debug("read failed: %v", err)
			}
			return
		}
		ws.handle(ctx, msg)
	}
}

func (ws *wsSession) handle(ctx context.Context, msg clientMessage) {
	ws.log.Debug("client message: type=%s", msg.Type)

	var err error
	switch msg.Type {
	case wsFilter:
		var status models.Status
		if status, err = models.ParseStatus(msg.Status); err != nil {
			err = errors.NewBadRequestError("status must be incoming, mutual or passed")
			break
		}
		err = ws.sub.SwitchFilter(ctx, status)
	case wsLike, wsPass:
		action := models.Action(msg.Type)
		err = ws.srv.Jobs.EnqueueAction(msg.ID, action, ws.report(ctx, msg.Type, services.ActionFailureMessage(action)))
	case wsRefresh:
		err = ws.srv.Jobs.EnqueueRefresh(ws.report(ctx, msg.Type, ""))
	case wsMore:
		err = ws.srv.Jobs.EnqueueLoadMore(ws.report(ctx, msg.Type, ""))
	case wsUnblur:
		// Unblurring does not touch the store, so push the new view directly.
		if _, err = ws.srv.Likes.ActivateUnblur(ctx); err == nil {
			var view *services.LikesView
			if view, err = ws.srv.Likes.View(ctx, ws.sub.Filter()); err == nil {
				ws.send(ctx, serverMessage{Type: "snapshot", View: view})
			}
		}
	default:
		err = errors.NewBadRequestError("unknown message type: " + msg.Type)
	}

	if err != nil {
		ws.fail(ctx, msg.Type, err, "")
	}
}

// report turns a job outcome into an error message for this client. The
// callback runs on a worker goroutine.
func (ws *wsSession) report(ctx context.Context, op, userMessage string) func(error) {
	return func(err error) {
		if err != nil {
			ws.fail(ctx, op, err, userMessage)
		}
	}
}

func (ws *wsSession) fail(ctx context.Context, op string, err error, userMessage string) {
	appErr := errors.As(err)
	body := &errorBody{Code: appErr.Code, Message: appErr.Message}
	if userMessage != "" {
		body.Message = userMessage
	}
	ws.log.Warn("%s failed: %v", op, err)
	ws.send(ctx, serverMessage{Type: "error", Op: op, Error: body})
}

func (ws *wsSession) send(ctx context.Context, msg serverMessage) {
	select {
	case ws.out <- msg:
	case <-ctx.Done():
	}
}
