package ecs

import "fmt"

// Entity is a generational handle. A handle whose generation no longer
// matches the store is stale and fails every lookup.
type Entity struct {
	ID  int
	Gen int
}

func (e Entity) String() string {
	return fmt.Sprintf("%d:%d", e.ID, e.Gen)
}

func (e Entity) Valid() bool {
	return e.ID > 0
}
