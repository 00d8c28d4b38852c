package scope

import "fmt"

// Lane addresses one recycling: a channel and a line within it.
type Lane struct {
	Channel int `json:"channel"`
	Line    int `json:"line"`
}

func (l Lane) String() string {
	return fmt.Sprintf("%d:%d", l.Channel, l.Line)
}

// RecallID is one run in the context of one recycling. The zero value
// identifies no run and marks template data.
type RecallID struct {
	Group *GroupID
	Lane  Lane
}

// IsZero reports whether id refers to no run.
func (id RecallID) IsZero() bool {
	return id.Group == nil
}

func (id RecallID) String() string {
	if id.Group == nil {
		return "template@" + id.Lane.String()
	}
	return id.Group.String() + "@" + id.Lane.String()
}
