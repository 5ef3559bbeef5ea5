package effect

import (
	"fmt"
	"strings"
)

// Kind enumerates the power-up categories. The zero value is ExpandPaddle so
// callers that need an "unset" marker should carry a separate flag.
type Kind int

const (
	ExpandPaddle Kind = iota
	ShrinkPaddle
	MultiBall
	SplitBall
	SpeedUp
	SlowDown

	kindCount
)

var kindNames = [kindCount]string{
	ExpandPaddle: "expand_paddle",
	ShrinkPaddle: "shrink_paddle",
	MultiBall:    "multi_ball",
	SplitBall:    "split_ball",
	SpeedUp:      "speed_up",
	SlowDown:     "slow_down",
}

// Kinds returns every kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, kindCount)
	for k := Kind(0); k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}

func (k Kind) Valid() bool {
	return k >= 0 && k < kindCount
}

func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind accepts the snake_case names used in prefabs.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == s {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("effect: unknown kind %q", s)
}
