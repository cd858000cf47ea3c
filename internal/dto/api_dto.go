package dto

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status          string `json:"status"`
	Timestamp       string `json:"timestamp"`
	DB              string `json:"db"`
	ActiveDialogues int    `json:"active_dialogues"`
}

type PingResponse struct {
	Pong int64 `json:"pong"`
}

type StatsResponse struct {
	Users              int64 `json:"users"`
	RegisteredUsers    int64 `json:"registered_users"`
	Interns            int64 `json:"interns"`
	Veterans           int64 `json:"veterans"`
	TotalCoins         int64 `json:"total_coins"`
	PendingSubmissions int64 `json:"pending_submissions"`
	PendingVacations   int64 `json:"pending_vacations"`
	ActiveSlots        int64 `json:"active_slots"`
	OpenTasks          int64 `json:"open_tasks"`
	Gifts              int64 `json:"gifts"`
	Battles            int64 `json:"battles"`
	TotalClicks        int64 `json:"total_clicks"`
}
