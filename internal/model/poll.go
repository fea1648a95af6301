package model

import (
	"slices"
	"time"
)

// Poll limits.
const (
	MinPollOptions    = 2
	MaxPollOptions    = 20
	MaxQuestionLength = 500
	MaxOptionLength   = 200
)

// Poll is a question plus an ordered list of selectable options.
type Poll struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	Options   []string  `json:"options"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// OptionIndex returns the position of option in the poll, or -1.
func (p *Poll) OptionIndex(option string) int {
	return slices.Index(p.Options, option)
}

// HasOption reports whether option is one of the poll's options.
func (p *Poll) HasOption(option string) bool {
	return p.OptionIndex(option) >= 0
}
