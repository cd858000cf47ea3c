package dto

// WebAppRequest is the body every mini-app call carries. InitData is the raw
// Telegram WebApp query string, signed with the bot token.
type WebAppRequest struct {
	InitData string `json:"initData"`
}

type UserDataResponse struct {
	PCoins    int64 `json:"pCoins"`
	Energy    int   `json:"energy"`
	MaxEnergy int   `json:"maxEnergy"`
}

type ClickResponse struct {
	PCoins int64 `json:"pCoins"`
	Energy int   `json:"energy"`
}
