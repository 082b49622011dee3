package web

import (
    "context"
    "errors"
    "net/http"
    "sync"
    "time"

    "github.com/go-chi/chi/v5"
    "github.com/gorilla/websocket"
    "github.com/jaminalder/codex-minimax/internal/domain"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
    ReadBufferSize:  1024,
    WriteBufferSize: 1024,
}

// clientMessage is what a websocket client sends.
type clientMessage struct {
    Type string  `json:"type"` // move, click or restart
    Row  int     `json:"row"`
    Col  int     `json:"col"`
    X    float64 `json:"x"`
    Y    float64 `json:"y"`
    Size int     `json:"size"`
}

type errorView struct {
    Type    string `json:"type"`
    Message string `json:"message"`
}

var errUnknownMessage = errors.New("unknown message type")

// socket streams JSON snapshots of a game and accepts moves over one
// connection. The player is identified by the player_id cookie.
func (h *handlers) socket(w http.ResponseWriter, r *http.Request) {
    id := chi.URLParam(r, "id")
    gs, ok := h.svc.Get(id)
    if !ok {
        http.NotFound(w, r)
        return
    }
    pid := playerID(r)
    conn, err := upgrader.Upgrade(w, r, nil)
    if err != nil {
        h.log.Printf("websocket upgrade failed: %v", err)
        return
    }
    defer conn.Close()

    ctx, cancel := context.WithCancel(r.Context())
    defer cancel()
    ch, unsub := h.svc.Subscribe(ctx, id)
    defer unsub()

    var wmu sync.Mutex
    write := func(v any) error {
        wmu.Lock()
        defer wmu.Unlock()
        _ = conn.SetWriteDeadline(time.Now().Add(writeWait))
        return conn.WriteJSON(v)
    }
    if err := write(newStateView(*gs)); err != nil {
        return
    }

    go func() {
        defer cancel()
        for {
            var msg clientMessage
            if err := conn.ReadJSON(&msg); err != nil {
                if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
                    h.log.Printf("websocket read error for game %s: %v", id, err)
                }
                return
            }
            if err := h.apply(id, pid, msg); err != nil {
                if write(errorView{Type: "error", Message: errorMessage(err)}) != nil {
                    return
                }
            }
        }
    }()

    for {
        select {
        case <-ctx.Done():
            return
        case _, ok := <-ch:
            if !ok {
                return
            }
            cur, ok := h.svc.Get(id)
            if !ok {
                return
            }
            if err := write(newStateView(*cur)); err != nil {
                return
            }
        }
    }
}

func (h *handlers) apply(id, pid string, msg clientMessage) error {
    var err error
    switch msg.Type {
    case "move":
        _, err = h.svc.Play(id, pid, domain.Position{Row: msg.Row, Col: msg.Col})
    case "click":
        _, err = h.svc.Click(id, pid, domain.Point{X: msg.X, Y: msg.Y})
    case "restart":
        _, err = h.svc.Restart(id, pid, msg.Size)
    default:
        err = errUnknownMessage
    }
    return err
}

