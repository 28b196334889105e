package catalog

import (
	"encoding/json"
	"fmt"
)

// DetailLevel selects how much of a tool descriptor a query returns.
type DetailLevel string

const (
	// DetailName returns the identifier only.
	DetailName DetailLevel = "name"
	// DetailDescription adds the parsed doc comment and signature.
	DetailDescription DetailLevel = "description"
	// DetailFull adds the entire generated source.
	DetailFull DetailLevel = "full"
)

// ParseDetailLevel validates a detail parameter. An empty value selects the
// given fallback; anything outside the three tiers is an error.
func ParseDetailLevel(raw string, fallback DetailLevel) (DetailLevel, error) {
	switch DetailLevel(raw) {
	case "":
		return fallback, nil
	case DetailName, DetailDescription, DetailFull:
		return DetailLevel(raw), nil
	default:
		return "", fmt.Errorf("invalid detail level %q (expected name, description or full)", raw)
	}
}

// ToolView is a descriptor rendered at one detail tier. Fields above the
// requested tier are left empty and omitted from JSON.
type ToolView struct {
	Server      string `json:"server" yaml:"server"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Signature   string `json:"signature,omitempty" yaml:"signature,omitempty"`
	Source      string `json:"source,omitempty" yaml:"source,omitempty"`
}

// View renders the descriptor at the requested tier. Tiers nest strictly:
// each level carries everything the level below it carries.
func (d ToolDescriptor) View(level DetailLevel) ToolView {
	view := ToolView{Server: d.Server, Name: d.Name}
	if level == DetailDescription || level == DetailFull {
		view.Description = d.Description
		view.Signature = d.Signature
	}
	if level == DetailFull {
		view.Source = d.Source
	}
	return view
}

// TokenSavings reports what one result set costs at each tier.
// SavingsVsFull is the fraction saved by the current tier relative to full,
// zero when the current tier is full.
type TokenSavings struct {
	Name          int     `json:"name"`
	Description   int     `json:"description"`
	Full          int     `json:"full"`
	CurrentLevel  string  `json:"currentLevel"`
	SavingsVsFull float64 `json:"savingsVsFull"`
}

// ComputeSavings sizes the same result set at all three tiers. The extra
// tiers are estimated regardless of which one the caller asked for.
func ComputeSavings(descriptors []ToolDescriptor, level DetailLevel) TokenSavings {
	savings := TokenSavings{
		Name:         tierTokens(descriptors, DetailName),
		Description:  tierTokens(descriptors, DetailDescription),
		Full:         tierTokens(descriptors, DetailFull),
		CurrentLevel: string(level),
	}

	var current int
	switch level {
	case DetailName:
		current = savings.Name
	case DetailDescription:
		current = savings.Description
	default:
		current = savings.Full
	}
	if savings.Full > 0 && level != DetailFull {
		savings.SavingsVsFull = 1 - float64(current)/float64(savings.Full)
	}
	return savings
}

// ViewTokens estimates the serialized cost of a single rendered view.
func ViewTokens(view ToolView) int {
	data, err := json.Marshal(view)
	if err != nil {
		return 0
	}
	return EstimateTokens(string(data))
}

// tierTokens estimates the token cost of the result set serialized at one
// tier, the same serialization the HTTP layer returns.
func tierTokens(descriptors []ToolDescriptor, level DetailLevel) int {
	views := make([]ToolView, 0, len(descriptors))
	for _, d := range descriptors {
		views = append(views, d.View(level))
	}
	data, err := json.Marshal(views)
	if err != nil {
		return 0
	}
	return EstimateTokens(string(data))
}
