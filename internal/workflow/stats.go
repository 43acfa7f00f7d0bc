package workflow

import "github.com/Veraticus/claimflow/internal/model"

// ComputeStats folds the claim set into per-viewer statistics. Employees
// only count their own claims; managers and finance count everything.
//
// Classification: a claim is pending until a terminal accept or reject
// (so approved_manager still counts as pending, it awaits finance),
// approved once finance accepted it, and total_amount sums approved claims
// only.
func ComputeStats(role model.Role, viewerID int64, claims []model.Claim) model.Stats {
	var stats model.Stats

	for _, c := range claims {
		if role == model.RoleEmployee && c.EmployeeID != viewerID {
			continue
		}

		stats.TotalSubmitted++

		switch c.Status {
		case model.StatusPending, model.StatusApprovedManager:
			stats.TotalPending++
		case model.StatusApprovedFinance, model.StatusCompleted:
			stats.TotalApproved++
			stats.TotalAmount += c.Amount
		case model.StatusRejectedManager, model.StatusRejectedFinance:
			stats.TotalRejected++
		}
	}

	return stats
}
