// Package workflow implements the claim approval state machine: the legal
// transition table, the engine that applies one transition at a time, and
// the aggregate statistics derived from claim state.
package workflow

import "github.com/Veraticus/claimflow/internal/model"

// edge is one legal transition of the approval chain.
type edge struct {
	from   model.Status
	action model.Action
	role   model.Role
	to     model.Status
}

// edges is the single source of truth for what may happen to a claim.
// The engine guard and AllowedActions both derive from this table rather
// than restating it.
var edges = []edge{
	{model.StatusPending, model.ActionApprove, model.RoleManager, model.StatusApprovedManager},
	{model.StatusPending, model.ActionReject, model.RoleManager, model.StatusRejectedManager},
	{model.StatusApprovedManager, model.ActionApprove, model.RoleFinance, model.StatusApprovedFinance},
	{model.StatusApprovedManager, model.ActionReject, model.RoleFinance, model.StatusRejectedFinance},
	{model.StatusApprovedFinance, model.ActionMarkPaid, model.RoleFinance, model.StatusCompleted},
}

// findEdge looks up the legal edge for a (status, action) pair. A missing
// edge covers wrong stage and terminal claims alike.
func findEdge(from model.Status, action model.Action) (edge, bool) {
	for _, e := range edges {
		if e.from == from && e.action == action {
			return e, true
		}
	}
	return edge{}, false
}

// AllowedActions returns the actions a principal of the given role may take
// on a claim in the given status. It is a pure function of the edge table;
// callers use it to decide what to offer without duplicating the table.
func AllowedActions(role model.Role, status model.Status) []model.Action {
	var actions []model.Action
	for _, e := range edges {
		if e.role == role && e.from == status {
			actions = append(actions, e.action)
		}
	}
	return actions
}
