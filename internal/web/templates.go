package web

import (
    "bytes"
    "html/template"
    "net/http"

    "github.com/google/uuid"
    "github.com/jaminalder/codex-minimax/internal/app"
    "github.com/jaminalder/codex-minimax/internal/domain"
)

type templates struct {
    base  *template.Template
    game  *template.Template
    board *template.Template
    index *template.Template
}

func funcs() template.FuncMap {
    return template.FuncMap{
        "upto": func(n int) []int { a := make([]int, n); for i := range a { a[i] = i + 1 }; return a },
        "cellSymbol": func(s domain.Side) string {
            switch s { case domain.Human: return "O"; case domain.Computer: return "X"; default: return "" }
        },
        "cellClass": func(s domain.Side) string {
            switch s { case domain.Human: return "human"; case domain.Computer: return "computer"; default: return "free" }
        },
        "eq": func(a, b any) bool { return a == b },
    }
}

func loadTemplates() *templates {
    base := template.Must(template.New("base").Funcs(funcs()).Parse(`<!doctype html><html><head>
<meta charset="utf-8"/>
<script src="https://unpkg.com/htmx.org@1.9.12"></script>
<script src="https://unpkg.com/htmx.org/dist/ext/sse.js"></script>
<style>.human{color:green}.computer{color:red}.row{display:flex}.row button{width:100px;height:100px;font-size:48px}</style>
</head><body>{{template "content" .}}</body></html>`))
    // Define the board template within the same set so game can include it
    template.Must(base.New("board").Funcs(funcs()).Parse(boardTemplate))
    index := template.Must(template.Must(base.Clone()).New("content").Parse(`<h1>TicTacToe</h1>
<form action="/game" method="post">
  <select name="size">{{range $n := upto .MaxSize}}<option value="{{$n}}"{{if eq $n $.Size}} selected{{end}}>{{$n}}x{{$n}}</option>{{end}}</select>
  <button>Create</button>
</form>`))
    game := template.Must(template.Must(base.Clone()).New("content").Parse(`
<div hx-ext="sse" hx-sse="connect:/game/{{.ID}}/events">
  <div id="board" hx-sse="swap:board">{{template "board" .}}</div>
</div>`))
    // Standalone board template used for fragment rendering
    board := template.Must(template.New("board_only").Funcs(funcs()).Parse(boardTemplate))
    return &templates{base: base, game: game, board: board, index: index}
}

func renderTemplate(t *template.Template, name string, data any) []byte {
    var buf bytes.Buffer
    if name == "" {
        _ = t.Execute(&buf, data)
    } else {
        _ = t.ExecuteTemplate(&buf, name, data)
    }
    return buf.Bytes()
}

const boardTemplate = `
<div id="board">
  {{if .Banner}}<h2>{{.Banner}}</h2>{{end}}
  {{if .Error}}<div class="alert">{{.Error}}</div>{{end}}
  {{if .Pending}}<div class="thinking">Computer is thinking…</div>{{end}}
  {{range $row := .Cells}}
  <div class="row">
    {{range $cell := $row}}
      <form hx-post="/game/{{$.ID}}/play" hx-target="#board" hx-swap="outerHTML" method="post">
        <input type="hidden" name="r" value="{{$cell.Pos.Row}}">
        <input type="hidden" name="c" value="{{$cell.Pos.Col}}">
        <button type="submit" class="{{cellClass $cell.Occupant}}">{{cellSymbol $cell.Occupant}}</button>
      </form>
    {{end}}
  </div>
  {{end}}
  <form hx-post="/game/{{.ID}}/restart" hx-target="#board" hx-swap="outerHTML" method="post">
    <button type="submit">New game</button>
  </form>
</div>
`

// boardData is the view model for the board fragment.
type boardData struct {
    ID      string
    Cells   [][]domain.Cell
    Banner  string
    Pending bool
    Error   string
}

func newBoardData(gs app.GameState, errMsg string) boardData {
    return boardData{
        ID:      gs.ID,
        Cells:   gs.Board.Cells,
        Banner:  app.Banner(gs.Board.Result),
        Pending: gs.Pending,
        Error:   errMsg,
    }
}

// Helper to set cookie
func ensurePlayerCookie(w http.ResponseWriter, r *http.Request) string {
    if pid := playerID(r); pid != "" {
        return pid
    }
    // Generate UUIDv4 for player ID
    v := uuid.NewString()
    http.SetCookie(w, &http.Cookie{Name: "player_id", Value: v, Path: "/"})
    return v
}

func playerID(r *http.Request) string {
    if c, err := r.Cookie("player_id"); err == nil && c.Value != "" {
        return c.Value
    }
    return ""
}
