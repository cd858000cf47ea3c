package bot

import (
	"context"
	"strings"

	"github.com/TheX6/partnerkin-super-bot/internal/services"
	"github.com/TheX6/partnerkin-super-bot/internal/store"
	"github.com/google/uuid"
)

type idHandler func(ctx context.Context, r *Request, id uuid.UUID) (string, error)

func (b *Bot) registerCallbacks() {
	b.onCallback("shop:", b.buy)

	b.onCallback("sub:approve:", b.adminOnly(withID(b.approveSubmission)))
	b.onCallback("sub:reject:", b.adminOnly(withID(func(ctx context.Context, r *Request, id uuid.UUID) (string, error) {
		return b.startRejection(ctx, r, reviewSubmission, id)
	})))
	b.onCallback("vac:approve:", b.adminOnly(withID(b.approveVacation)))
	b.onCallback("vac:reject:", b.adminOnly(withID(func(ctx context.Context, r *Request, id uuid.UUID) (string, error) {
		return b.startRejection(ctx, r, reviewVacation, id)
	})))

	b.onCallback("task:done:", withID(b.taskDone))
	b.onCallback("task:postpone:", withID(b.taskPostpone))
	b.onCallback("task:cancel:", withID(b.startTaskCancel))

	b.onCallback("ach:like:", withID(b.likeAchievement))
	b.onCallback("ach:comment:", withID(b.startAchievementComment))
}

// withID parses the payload as a row id. A malformed id reads as a missing row.
func withID(h idHandler) func(context.Context, *Request, string) (string, error) {
	return func(ctx context.Context, r *Request, payload string) (string, error) {
		id, err := uuid.Parse(payload)
		if err != nil {
			return "", store.ErrNotFound
		}
		return h(ctx, r, id)
	}
}

func (b *Bot) adminOnly(h func(context.Context, *Request, string) (string, error)) func(context.Context, *Request, string) (string, error) {
	return func(ctx context.Context, r *Request, payload string) (string, error) {
		ok, err := b.svc.AdminAuth.IsAdmin(ctx, r.UserID)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", services.ErrNotAdmin
		}
		return h(ctx, r, payload)
	}
}

// callback routes an inline button press by the longest registered prefix.
// Every press is answered; refusals show up as the toast text.
func (b *Bot) callback(ctx context.Context, r *Request) error {
	var match *callbackRoute
	for i := range b.callbacks {
		cb := &b.callbacks[i]
		if strings.HasPrefix(r.CallbackData, cb.prefix) && (match == nil || len(cb.prefix) > len(match.prefix)) {
			match = cb
		}
	}
	if match == nil {
		b.log.Warn("unknown callback", "user_id", r.UserID, "data", r.CallbackData)
		return b.out.AnswerCallback(ctx, r.CallbackID, "")
	}

	toast, err := match.handle(ctx, r, strings.TrimPrefix(r.CallbackData, match.prefix))
	if err != nil {
		msg, ok := services.UserMessage(err)
		if !ok {
			if r.Dialogue != nil {
				if cerr := b.dialogues.Clear(ctx, r.UserID); cerr != nil {
					b.log.Error("failed to clear dialogue", "user_id", r.UserID, "error", cerr)
				}
			}
			return err
		}
		return b.out.AnswerCallback(ctx, r.CallbackID, msg)
	}
	return b.out.AnswerCallback(ctx, r.CallbackID, toast)
}
