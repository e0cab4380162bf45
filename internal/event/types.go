package event

import "fmt"

// ArcStyle is the stroke weight of a highlighted arc.
type ArcStyle string

const (
	ArcStyleNormal ArcStyle = "normal"
	ArcStyleBold   ArcStyle = "bold"
)

// HighlightArcs sets the stroke of the named arcs. A nil ArcIDs means every
// arc in the graph.
type HighlightArcs struct {
	ArcIDs *[]string `json:"arcIds" validate:"omitnil,dive,required"`
	Style  ArcStyle  `json:"style" validate:"required,oneof=normal bold"`
	Colour string    `json:"colour" validate:"required"`
}

// SetDomains replaces the domain of each node, index-aligned with Domains.
type SetDomains struct {
	NodeIDs []string   `json:"nodeIds" validate:"required,dive,required"`
	Domains [][]string `json:"domains" validate:"required,dive,required"`
}

// HighlightNodes sets the highlight colour of the named nodes.
type HighlightNodes struct {
	NodeIDs []string `json:"nodeIds" validate:"required,dive,required"`
	Colour  string   `json:"colour" validate:"required"`
}

// ChooseDomainSplit announces that a split of Var's domain is about to be chosen.
type ChooseDomainSplit struct {
	Domain []string `json:"domain" validate:"required"`
	Var    string   `json:"var" validate:"required"`
}

// ChooseDomainSplitBeforeAC marks the phase boundary before arc consistency.
type ChooseDomainSplitBeforeAC struct{}

// SetSolution reports the solution text.
type SetSolution struct {
	Solution string `json:"solution"`
}

// SetSplit records the domain of Var after a split.
type SetSplit struct {
	Domain []string `json:"domain" validate:"required"`
	Var    string   `json:"var" validate:"required"`
}

// SetOrder records both halves of a binary split of Var's domain, in
// exploration order.
type SetOrder struct {
	Var    string   `json:"var" validate:"required"`
	Domain []string `json:"domain" validate:"required"`
	Other  []string `json:"other" validate:"required"`
}

// ShowPositions carries explicit node coordinates, serialized as a string.
type ShowPositions struct {
	Positions string `json:"positions" validate:"required"`
}

// HighlightPath highlights exactly the edges in Path.
type HighlightPath struct {
	Path []string `json:"path" validate:"required,dive,required"`
}

// Output reports a status message.
type Output struct {
	Text string `json:"text"`
}

func (*HighlightArcs) Action() Action             { return ActionHighlightArcs }
func (*SetDomains) Action() Action                { return ActionSetDomains }
func (*HighlightNodes) Action() Action            { return ActionHighlightNodes }
func (*ChooseDomainSplit) Action() Action         { return ActionChooseDomainSplit }
func (*ChooseDomainSplitBeforeAC) Action() Action { return ActionChooseDomainSplitBeforeAC }
func (*SetSolution) Action() Action               { return ActionSetSolution }
func (*SetSplit) Action() Action                  { return ActionSetSplit }
func (*SetOrder) Action() Action                  { return ActionSetOrder }
func (*ShowPositions) Action() Action             { return ActionShowPositions }
func (*HighlightPath) Action() Action             { return ActionHighlightPath }
func (*Output) Action() Action                    { return ActionOutput }

// checker is implemented by variants with cross-field rules the validator
// tags cannot express.
type checker interface {
	check() error
}

func (e *SetDomains) check() error {
	if len(e.NodeIDs) != len(e.Domains) {
		return fmt.Errorf("nodeIds has %d entries but domains has %d", len(e.NodeIDs), len(e.Domains))
	}
	return nil
}
