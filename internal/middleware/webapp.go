package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/TheX6/partnerkin-super-bot/internal/dto"
	"github.com/gofiber/fiber/v2"
)

const (
	// LocalTelegramID holds the authenticated Telegram user id.
	LocalTelegramID = "telegram_id"
	// InitDataHeader may carry initData instead of the request body.
	InitDataHeader = "X-Telegram-Init-Data"
)

var ErrInitData = errors.New("invalid webapp init data")

// WebApp authenticates mini-app calls by their signed initData.
func WebApp(botToken string, maxAge time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Get(InitDataHeader)
		if raw == "" {
			var req dto.WebAppRequest
			if err := c.BodyParser(&req); err == nil {
				raw = req.InitData
			}
		}
		id, err := VerifyInitData(raw, botToken, maxAge, time.Now())
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid init data",
			})
		}
		c.Locals(LocalTelegramID, id)
		return c.Next()
	}
}

// TelegramID returns the user id stored by WebApp or AdminSession.
func TelegramID(c *fiber.Ctx) int64 {
	id, _ := c.Locals(LocalTelegramID).(int64)
	return id
}

// VerifyInitData checks the hash of a WebApp initData query string and
// returns the id of the user it was issued to. A zero maxAge skips the
// auth_date check.
func VerifyInitData(initData, botToken string, maxAge time.Duration, now time.Time) (int64, error) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return 0, ErrInitData
	}
	hash := values.Get("hash")
	if hash == "" {
		return 0, ErrInitData
	}
	values.Del("hash")

	want := hex.EncodeToString(signDataCheck(values, botToken))
	if !hmac.Equal([]byte(want), []byte(strings.ToLower(hash))) {
		return 0, ErrInitData
	}

	if maxAge > 0 {
		ts, err := strconv.ParseInt(values.Get("auth_date"), 10, 64)
		if err != nil || now.Sub(time.Unix(ts, 0)) > maxAge {
			return 0, ErrInitData
		}
	}

	var user struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal([]byte(values.Get("user")), &user); err != nil || user.ID == 0 {
		return 0, ErrInitData
	}
	return user.ID, nil
}

// signDataCheck computes the WebApp signature over the sorted key=value lines.
func signDataCheck(values url.Values, botToken string) []byte {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, k+"="+values.Get(k))
	}

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(botToken))
	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(strings.Join(lines, "\n")))
	return mac.Sum(nil)
}
