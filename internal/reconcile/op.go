// Package reconcile holds the pure decision logic that admits interval
// mutations: splitting open actions that crossed midnight and vetting drafts
// before they are saved. Nothing here touches storage; both reconcilers emit
// ordered operations for the caller to apply.
package reconcile

import "github.com/pedif/Quokka/internal/domain"

// OpKind selects the store mutation an Op maps to.
type OpKind int

const (
	OpInsert OpKind = iota
	OpUpdate
	OpDelete
)

func (k OpKind) String() string {
	switch k {
	case OpInsert:
		return "insert"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	}
	return "unknown"
}

// Op is one persistence operation emitted by a reconciler. For OpDelete only
// Action.ID is meaningful.
type Op struct {
	Kind   OpKind
	Action domain.Action
}
