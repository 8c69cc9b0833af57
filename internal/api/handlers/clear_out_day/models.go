package clear_out_day

// DayStateResponse HTTP response model
type DayStateResponse struct {
	StaffID    int64  `json:"staffId"`
	Date       string `json:"date"`
	ClearedOut bool   `json:"clearedOut"`
	Version    int64  `json:"version"`
}
