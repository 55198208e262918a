package link

import (
	"fmt"
	"strings"
)

// Action describes what activating a link does.
type Action uint8

const (
	// Navigate moves to another page of the same document.
	Navigate Action = iota + 1
	// Jump moves to a named or positioned destination.
	Jump
	// OpenExternal hands the target to something outside the reader.
	OpenExternal
	// Launch opens a file or application.
	Launch
	// Named runs a viewer command such as NextPage.
	Named
)

var actionNames = map[Action]string{
	Navigate:     "navigate",
	Jump:         "jump",
	OpenExternal: "open-external",
	Launch:       "launch",
	Named:        "named",
}

// Actions returns every known action in declaration order.
func Actions() []Action {
	return []Action{Navigate, Jump, OpenExternal, Launch, Named}
}

func (a Action) Valid() bool {
	_, ok := actionNames[a]
	return ok
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("Action(%d)", uint8(a))
}

// ParseAction maps a name back to its Action. Matching ignores case.
func ParseAction(s string) (Action, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for a, name := range actionNames {
		if name == s {
			return a, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidAction, s)
}

func (a Action) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidAction, uint8(a))
	}
	return []byte(actionNames[a]), nil
}

func (a *Action) UnmarshalText(b []byte) error {
	parsed, err := ParseAction(string(b))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
