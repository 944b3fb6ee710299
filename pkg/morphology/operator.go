package morphology

import (
	"fmt"
	"strings"
)

// Operator selects a morphological operation.
type Operator int

const (
	// OpErode takes the minimum over the neighbourhood.
	OpErode Operator = iota
	// OpDilate takes the maximum over the reflected neighbourhood.
	OpDilate
	// OpOpen erodes then dilates.
	OpOpen
	// OpClose dilates then erodes.
	OpClose
	// OpTopHat is the input minus its opening.
	OpTopHat
	// OpBlackTopHat is the closing minus the input.
	OpBlackTopHat
)

var operatorNames = []string{"erode", "dilate", "open", "close", "tophat", "blacktophat"}

func (op Operator) String() string {
	if op >= 0 && int(op) < len(operatorNames) {
		return operatorNames[op]
	}
	return fmt.Sprintf("Operator(%d)", int(op))
}

// Operators lists every operator in declaration order.
func Operators() []Operator {
	return []Operator{OpErode, OpDilate, OpOpen, OpClose, OpTopHat, OpBlackTopHat}
}

// ParseOperator accepts the names printed by String plus a few aliases
// ("erosion", "opening", "white-tophat", "black-top-hat", ...).
func ParseOperator(name string) (Operator, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.NewReplacer("-", "", "_", "", " ", "").Replace(n)
	switch n {
	case "erode", "erosion":
		return OpErode, nil
	case "dilate", "dilation":
		return OpDilate, nil
	case "open", "opening":
		return OpOpen, nil
	case "close", "closing":
		return OpClose, nil
	case "tophat", "whitetophat":
		return OpTopHat, nil
	case "blacktophat", "bottomhat":
		return OpBlackTopHat, nil
	default:
		return OpErode, fmt.Errorf("unknown morphological operator %q", name)
	}
}

// erodesFirst reports whether the first stage of op is an erosion, which
// decides the sentinel the full variants pad with.
func (op Operator) erodesFirst() bool {
	switch op {
	case OpErode, OpOpen, OpTopHat:
		return true
	default:
		return false
	}
}
