package insightsrefresh

const (
	WorkflowName        = "insights_refresh"
	ActivityRefreshUser = "insights_refresh_user"
)

// Input lists the users whose cached insights should be recomputed.
type Input struct {
	UserIDs []string `json:"user_ids"`
	Reason  string   `json:"reason,omitempty"`
}

type UserResult struct {
	UserID     string `json:"user_id"`
	DataStatus string `json:"data_status,omitempty"`
	Paths      int    `json:"paths"`
}

type Summary struct {
	Requested int      `json:"requested"`
	Refreshed int      `json:"refreshed"`
	Failed    int      `json:"failed"`
	FailedIDs []string `json:"failed_ids,omitempty"`
}
