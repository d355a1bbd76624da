package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pefman/squad-combat/internal/game"
	"github.com/pefman/squad-combat/internal/models"
	"github.com/pefman/squad-combat/internal/report"
)

const (
	writeWait = 5 * time.Second
	startWait = 30 * time.Second
)

type clientIn struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// wsReporter streams engine events to one connection. After the first
// write error it stops writing; the combat still runs to completion.
type wsReporter struct {
	conn   *websocket.Conn
	delay  time.Duration
	logger *log.Logger
	err    error
}

func (r *wsReporter) Turn(ev game.TurnEvent) {
	r.send(models.WsMsg{Type: "turn", Data: report.ToTurnRecord(ev)})
}

func (r *wsReporter) Snapshot(s game.Snapshot) {
	r.send(models.WsMsg{Type: "snapshot", Data: report.ToSnapshotRecord(s)})
}

func (r *wsReporter) send(m models.WsMsg) {
	if r.err != nil {
		return
	}
	_ = r.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := r.conn.WriteJSON(m); err != nil {
		r.err = err
		r.logger.Printf("ws: write error: %v", err)
		return
	}
	if r.delay > 0 {
		time.Sleep(r.delay)
	}
}

// GET /ws/combat
// The client sends {"type":"start","data":CombatRequest}; the server
// streams "turn" and "snapshot" messages, then "result" or "error", and
// closes the connection.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		s.logger.Printf("ws: upgrade failed from=%s: %v", r.RemoteAddr, err)
		return
	}
	defer conn.Close()
	s.logger.Printf("ws: connect from=%s", r.RemoteAddr)

	out := &wsReporter{conn: conn, delay: s.cfg.StreamDelay, logger: s.logger}

	_ = conn.SetReadDeadline(time.Now().Add(startWait))
	var in clientIn
	if err := conn.ReadJSON(&in); err != nil {
		s.logger.Printf("ws: read error from=%s: %v", r.RemoteAddr, err)
		return
	}
	if in.Type != "start" {
		out.send(models.WsMsg{Type: "error", Data: "expected start message"})
		closeNormal(conn)
		return
	}
	var req models.CombatRequest
	if len(in.Data) > 0 && string(in.Data) != "null" {
		if err := json.Unmarshal(in.Data, &req); err != nil {
			out.send(models.WsMsg{Type: "error", Data: "invalid start data"})
			closeNormal(conn)
			return
		}
	}

	resp, err := s.runCombat(r.Context(), req, out)
	if err != nil {
		msg := "combat failed"
		if errors.Is(err, errBadRequest) {
			msg = err.Error()
		}
		out.send(models.WsMsg{Type: "error", Data: msg})
		closeNormal(conn)
		return
	}
	resp.Events, resp.Snapshots = nil, nil
	out.send(models.WsMsg{Type: "result", Data: resp})
	closeNormal(conn)
	s.logger.Printf("ws: closed from=%s state=%s", r.RemoteAddr, resp.State)
}

func closeNormal(conn *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}
