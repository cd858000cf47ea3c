package middleware

import (
	"encoding/hex"
	"errors"
	"net/url"
	"strconv"
	"testing"
	"time"
)

const testBotToken = "123456:ABC-test_token"

func signedInitData(t *testing.T, userJSON string, authDate time.Time) string {
	t.Helper()
	v := url.Values{}
	v.Set("query_id", "AAH-test")
	v.Set("user", userJSON)
	v.Set("auth_date", strconv.FormatInt(authDate.Unix(), 10))
	v.Set("hash", hex.EncodeToString(signDataCheck(v, testBotToken)))
	return v.Encode()
}

func TestVerifyInitData(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	valid := signedInitData(t, `{"id":777,"first_name":"Анна"}`, now.Add(-time.Minute))

	t.Run("valid", func(t *testing.T) {
		id, err := VerifyInitData(valid, testBotToken, time.Hour, now)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if id != 777 {
			t.Fatalf("expected user 777, got %d", id)
		}
	})

	t.Run("wrong token", func(t *testing.T) {
		if _, err := VerifyInitData(valid, "999:other", time.Hour, now); !errors.Is(err, ErrInitData) {
			t.Fatalf("expected ErrInitData, got %v", err)
		}
	})

	t.Run("tampered user", func(t *testing.T) {
		v, _ := url.ParseQuery(valid)
		v.Set("user", `{"id":1}`)
		if _, err := VerifyInitData(v.Encode(), testBotToken, time.Hour, now); !errors.Is(err, ErrInitData) {
			t.Fatalf("expected ErrInitData, got %v", err)
		}
	})

	t.Run("stale", func(t *testing.T) {
		old := signedInitData(t, `{"id":777}`, now.Add(-48*time.Hour))
		if _, err := VerifyInitData(old, testBotToken, 24*time.Hour, now); !errors.Is(err, ErrInitData) {
			t.Fatalf("expected ErrInitData, got %v", err)
		}
		if _, err := VerifyInitData(old, testBotToken, 0, now); err != nil {
			t.Fatalf("expected age check to be skipped, got %v", err)
		}
	})

	t.Run("missing hash", func(t *testing.T) {
		if _, err := VerifyInitData("user=%7B%22id%22%3A1%7D", testBotToken, 0, now); !errors.Is(err, ErrInitData) {
			t.Fatalf("expected ErrInitData, got %v", err)
		}
	})

	t.Run("no user", func(t *testing.T) {
		v := url.Values{}
		v.Set("auth_date", strconv.FormatInt(now.Unix(), 10))
		v.Set("hash", hex.EncodeToString(signDataCheck(v, testBotToken)))
		if _, err := VerifyInitData(v.Encode(), testBotToken, 0, now); !errors.Is(err, ErrInitData) {
			t.Fatalf("expected ErrInitData, got %v", err)
		}
	})
}
