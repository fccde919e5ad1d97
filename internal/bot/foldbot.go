package bot

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/lox/holdemtable/internal/game"
)

// FoldBot is a simple bot that always folds (or checks when possible)
type FoldBot struct {
	logger *log.Logger
}

// NewFoldBot creates a new FoldBot instance
func NewFoldBot(logger *log.Logger) *FoldBot {
	return &FoldBot{logger: logger}
}

func (f *FoldBot) RequestAction(_ context.Context, req game.ActionRequest) (game.Action, error) {
	if req.ToCall == 0 {
		return game.Action{Kind: game.Check}, nil
	}
	return game.Action{Kind: game.Fold}, nil
}
