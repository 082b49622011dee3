package app

import "github.com/jaminalder/codex-minimax/internal/domain"

// Banner is the end-of-game headline, empty while the game runs.
func Banner(r domain.Result) string {
    if !r.Over {
        return ""
    }
    switch r.Outcome {
    case domain.HumanWin, domain.ComputerWin:
        return r.Winner().String() + " WINS!!"
    default:
        return "Tie Match!!"
    }
}
