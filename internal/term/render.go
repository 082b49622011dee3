// Package term plays the game in a terminal.
package term

import (
    "fmt"
    "io"
    "strings"

    "github.com/jaminalder/codex-minimax/internal/app"
    "github.com/jaminalder/codex-minimax/internal/domain"
    "github.com/muesli/termenv"
)

// Renderer draws boards with terminal colors: human marks green, computer
// marks red.
type Renderer struct {
    out *termenv.Output
}

// NewRenderer detects the color profile of w.
func NewRenderer(w io.Writer) *Renderer {
    return &Renderer{out: termenv.NewOutput(w)}
}

// NewRendererWithProfile forces a profile; termenv.Ascii disables styling.
func NewRendererWithProfile(w io.Writer, p termenv.Profile) *Renderer {
    return &Renderer{out: termenv.NewOutput(w, termenv.WithProfile(p))}
}

func (r *Renderer) mark(s domain.Side) string {
    switch s {
    case domain.Human:
        return r.out.String("O").Foreground(r.out.Color("2")).Bold().String()
    case domain.Computer:
        return r.out.String("X").Foreground(r.out.Color("1")).Bold().String()
    default:
        return " "
    }
}

// Board renders a snapshot with 1-based row and column labels.
func (r *Renderer) Board(s domain.Snapshot) string {
    var sb strings.Builder
    sb.WriteString("  ")
    for c := 0; c < s.Size; c++ {
        fmt.Fprintf(&sb, "  %d ", c+1)
    }
    sb.WriteString("\n")
    sep := "   " + strings.Repeat("---+", s.Size-1) + "---\n"
    for i, row := range s.Cells {
        if i > 0 {
            sb.WriteString(sep)
        }
        fmt.Fprintf(&sb, "%2d ", i+1)
        for c, cell := range row {
            if c > 0 {
                sb.WriteString("|")
            }
            sb.WriteString(" " + r.mark(cell.Occupant) + " ")
        }
        sb.WriteString("\n")
    }
    return sb.String()
}

// Banner renders the end-of-game headline, or "" while the game runs.
func (r *Renderer) Banner(res domain.Result) string {
    text := app.Banner(res)
    if text == "" {
        return ""
    }
    return r.out.String(text).Bold().String()
}
