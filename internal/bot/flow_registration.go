package bot

import (
	"context"

	"github.com/TheX6/partnerkin-super-bot/internal/services"
)

func (b *Bot) chooseRole(role string) handlerFunc {
	return func(ctx context.Context, r *Request) error {
		if r.User.IsRegistered {
			if err := b.reply(ctx, r, "Ты уже зарегистрирован.", nil); err != nil {
				return err
			}
			return b.showRoot(ctx, r)
		}
		if err := b.svc.Users.ChooseRole(ctx, r.UserID, role); err != nil {
			return err
		}
		return b.begin(ctx, r, dlgRegistration, stepProfileText, nil)
	}
}

func (b *Bot) promptProfile(ctx context.Context, r *Request) error {
	return b.reply(ctx, r, "✍️ Расскажи немного о себе: как тебя зовут, в каком ты отделе и чем занимаешься.", RemoveKeyboard())
}

func (b *Bot) handleProfile(ctx context.Context, r *Request) error {
	if err := b.svc.Users.Register(ctx, r.UserID, r.Text); err != nil {
		return err
	}
	return b.complete(ctx, r, "✅ Регистрация завершена! Добро пожаловать.")
}

// captureRegistration treats free text from an unregistered user outside any
// dialogue as their profile.
func (b *Bot) captureRegistration(ctx context.Context, r *Request) error {
	err := b.svc.Users.Register(ctx, r.UserID, r.Text)
	if services.IsValidation(err) {
		return b.showRoot(ctx, r)
	}
	if err != nil {
		return err
	}
	return b.complete(ctx, r, "✅ Регистрация завершена! Добро пожаловать.")
}
