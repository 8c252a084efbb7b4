package kioskHandler

import (
	"HospitalKiosk/internal/api/kiosk"
	"HospitalKiosk/internal/middleware"
	contextPkg "HospitalKiosk/pkg/context"
	"HospitalKiosk/pkg/log"
	"errors"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	jsoniter "github.com/json-iterator/go"
	"golang.org/x/net/context"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	wsReadTimeout  = 5 * time.Minute
	wsWriteTimeout = 10 * time.Second
)

// wsConn serializes writes from the command loop and the event pump.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *wsConn) send(event kiosk.Event) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
		return err
	}
	return w.conn.WriteJSON(event)
}

// handleWebSocket lets a kiosk drive its session over one socket. Replies
// arrive as events, including the ones no command asked for.
func (h *KioskHandler) handleWebSocket(c *websocket.Conn) {
	sessionID := c.Params("id")
	requestID, _ := c.Locals(middleware.RequestIDKey).(string)

	base := contextPkg.WithSessionID(contextPkg.WithRequestID(context.Background(), requestID), sessionID)
	ctx, cancel := context.WithCancel(base)
	defer cancel()

	logger := h.log.WithFields(log.Fields{
		"request_id": requestID,
		"session_id": sessionID,
	})

	conn := &wsConn{conn: c}

	events, unsubscribe, err := h.kioskService.Subscribe(sessionID)
	if err != nil {
		_ = conn.send(kiosk.Event{Type: kiosk.EventError, Error: err.Error()})
		return
	}
	defer unsubscribe()

	logger.Info("Kiosk websocket connected")
	defer logger.Info("Kiosk websocket disconnected")

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-events:
				if !ok {
					cancel()
					_ = c.Close()
					return
				}
				if err := conn.send(event); err != nil {
					logger.WithError(err).Warn("Failed to push kiosk event")
					cancel()
					return
				}
			}
		}
	}()

	if session, err := h.kioskService.GetSession(ctx, sessionID); err == nil {
		_ = conn.send(kiosk.Event{Type: kiosk.EventSession, Session: session})
	}

	c.SetPingHandler(func(data string) error {
		return c.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(5*time.Second))
	})

	for {
		if err := c.SetReadDeadline(time.Now().Add(wsReadTimeout)); err != nil {
			break
		}

		messageType, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.WithError(err).Warn("Kiosk websocket error")
			}
			break
		}
		if messageType != websocket.TextMessage {
			logger.Warnf("Received unexpected message type: %d", messageType)
			continue
		}

		var cmd kiosk.WSCommand
		if err := json.Unmarshal(message, &cmd); err != nil {
			_ = conn.send(kiosk.Event{Type: kiosk.EventError, Error: kiosk.ErrInvalidCommand.Error()})
			continue
		}
		if err := h.validator.Struct(cmd); err != nil {
			_ = conn.send(kiosk.Event{Type: kiosk.EventError, Error: err.Error()})
			continue
		}

		switch kiosk.CommandType(cmd.Type) {
		case kiosk.CommandUtterance, kiosk.CommandService:
			// Turns run in the background so a reset can still be read.
			go h.dispatch(ctx, conn, sessionID, cmd)
		default:
			h.dispatch(ctx, conn, sessionID, cmd)
		}
	}
}

// dispatch runs one command. Successful replies reach the socket through the
// session's event stream.
func (h *KioskHandler) dispatch(ctx context.Context, conn *wsConn, sessionID string, cmd kiosk.WSCommand) {
	c, cancel := context.WithTimeout(ctx, turnTimeout)
	defer cancel()

	var err error
	switch kiosk.CommandType(cmd.Type) {
	case kiosk.CommandMode:
		if cmd.Simulation == nil {
			err = kiosk.ErrInvalidCommand
			break
		}
		_, err = h.kioskService.SelectMode(c, sessionID, *cmd.Simulation)
	case kiosk.CommandStart:
		_, err = h.kioskService.Start(c, sessionID)
	case kiosk.CommandService:
		_, err = h.kioskService.SelectService(c, sessionID, cmd.Service)
	case kiosk.CommandUtterance:
		_, err = h.kioskService.HandleUtterance(c, sessionID, cmd.Text)
	case kiosk.CommandReset:
		_, err = h.kioskService.Reset(c, sessionID, kiosk.ResetTarget(cmd.Target))
	case kiosk.CommandError:
		_, err = h.kioskService.ReportError(c, sessionID, cmd.Reason)
	case kiosk.CommandSnapshot:
		var session *kiosk.SessionView
		session, err = h.kioskService.GetSession(c, sessionID)
		if err == nil {
			err = conn.send(kiosk.Event{Type: kiosk.EventSession, Session: session})
		}
	default:
		err = kiosk.ErrInvalidCommand
	}

	// A canceled turn was superseded by the command that canceled it.
	if err == nil || errors.Is(err, kiosk.ErrTurnCanceled) {
		return
	}
	_ = conn.send(kiosk.Event{Type: kiosk.EventError, Error: err.Error()})
}
