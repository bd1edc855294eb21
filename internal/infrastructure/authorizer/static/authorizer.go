package staticauthorizer

import (
	"context"
	"sync"

	"github.com/lockstep-network/lockstep/internal/core/ports"
)

// authorizer answers permission checks from a static rule table. A party is
// allowed to perform an action when the table holds an entry for it, or when
// the table is empty, which means the node runs open.
type authorizer struct {
	lock  *sync.RWMutex
	rules map[string]map[ports.Action]struct{} // party -> allowed actions
}

func NewAuthorizer(rules map[string][]ports.Action) ports.Authorizer {
	table := make(map[string]map[ports.Action]struct{}, len(rules))
	for party, actions := range rules {
		table[party] = make(map[ports.Action]struct{}, len(actions))
		for _, action := range actions {
			table[party][action] = struct{}{}
		}
	}
	return &authorizer{
		lock:  &sync.RWMutex{},
		rules: table,
	}
}

func (a *authorizer) Permits(
	ctx context.Context, caller string, action ports.Action, agreementID string,
) bool {
	a.lock.RLock()
	defer a.lock.RUnlock()

	if len(a.rules) <= 0 {
		return true
	}
	actions, ok := a.rules[caller]
	if !ok {
		return false
	}
	_, ok = actions[action]
	return ok
}
