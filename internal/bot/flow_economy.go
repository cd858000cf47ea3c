package bot

import (
	"context"
	"fmt"
	"strconv"

	"github.com/TheX6/partnerkin-super-bot/internal/services"
	"github.com/TheX6/partnerkin-super-bot/internal/store"
)

const (
	opCredit = "credit"
	opDebit  = "debit"
)

// gift

func (b *Bot) startGift(ctx context.Context, r *Request) error {
	left, err := b.svc.Gifts.Remaining(ctx, r.UserID)
	if err != nil {
		return err
	}
	if left <= 0 {
		return store.ErrGiftCapExceeded
	}
	return b.begin(ctx, r, dlgGift, stepSelectRecip, nil)
}

func (b *Bot) promptGiftRecipient(ctx context.Context, r *Request) error {
	users, err := b.svc.Users.Others(ctx, r.UserID)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		return services.ErrNoRecipients
	}
	return b.userList(ctx, r, "🎁 Кому подарить баллы?", users)
}

func (b *Bot) handleGiftRecipient(ctx context.Context, r *Request) error {
	u, err := b.pickUser(ctx, r, "recipient")
	if err != nil {
		return err
	}
	r.Dialogue.Set("to", strconv.FormatInt(u.TelegramID, 10))
	r.Dialogue.Set("to_name", u.DisplayName())
	return b.next(ctx, r, stepEnterAmount)
}

func (b *Bot) promptGiftAmount(ctx context.Context, r *Request) error {
	left, err := b.svc.Gifts.Remaining(ctx, r.UserID)
	if err != nil {
		return err
	}
	u, err := b.svc.Users.Get(ctx, r.UserID)
	if err != nil {
		return err
	}
	return b.reply(ctx, r, fmt.Sprintf("💰 Сколько баллов подарить %s?\nТвой баланс: %d. Сегодня можно подарить еще %d.",
		r.Dialogue.Get("to_name"), u.PCoins, left), Reply(Row(LabelBack)))
}

func (b *Bot) handleGiftAmount(ctx context.Context, r *Request) error {
	amount, err := b.svc.Gifts.ParseAmount(ctx, r.UserID, r.Text)
	if err != nil {
		return err
	}
	r.Dialogue.Set("amount", strconv.FormatInt(amount, 10))
	return b.next(ctx, r, stepEnterMessage)
}

func (b *Bot) promptGiftMessage(ctx context.Context, r *Request) error {
	return b.reply(ctx, r, "💌 Добавь сообщение к подарку или пропусти:", Reply(Row(LabelSkip), Row(LabelBack)))
}

func (b *Bot) handleGiftMessage(ctx context.Context, r *Request) error {
	msg, skipped := input(r)
	if skipped {
		msg = ""
	}
	to, _ := strconv.ParseInt(r.Dialogue.Get("to"), 10, 64)
	amount, _ := strconv.ParseInt(r.Dialogue.Get("amount"), 10, 64)
	gift, err := b.svc.Gifts.Send(ctx, r.UserID, to, amount, msg)
	if err != nil {
		return err
	}

	note := fmt.Sprintf("🎁 %s подарил тебе %d баллов!", r.User.DisplayName(), gift.Amount)
	if gift.Message != "" {
		note += "\n💌 " + gift.Message
	}
	b.notify(ctx, to, note, nil)
	return b.complete(ctx, r, fmt.Sprintf("✅ Ты подарил %d баллов пользователю %s.", gift.Amount, r.Dialogue.Get("to_name")))
}

// balance adjustments by admins

func (b *Bot) startBalance(op string) handlerFunc {
	return func(ctx context.Context, r *Request) error {
		return b.begin(ctx, r, dlgBalance, stepSelectUser, map[string]string{"op": op})
	}
}

func (b *Bot) promptBalanceUser(ctx context.Context, r *Request) error {
	users, err := b.svc.Users.Others(ctx, r.UserID)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		return services.ErrNoRecipients
	}
	header := "➕ Кому начислить баллы?"
	if r.Dialogue.Get("op") == opDebit {
		header = "➖ У кого списать баллы?"
	}
	return b.userList(ctx, r, header, users)
}

func (b *Bot) handleBalanceUser(ctx context.Context, r *Request) error {
	u, err := b.pickUser(ctx, r, "user")
	if err != nil {
		return err
	}
	r.Dialogue.Set("user", strconv.FormatInt(u.TelegramID, 10))
	r.Dialogue.Set("user_name", u.DisplayName())
	r.Dialogue.Set("user_coins", strconv.FormatInt(u.PCoins, 10))
	return b.next(ctx, r, stepEnterAmount)
}

func (b *Bot) promptBalanceAmount(ctx context.Context, r *Request) error {
	return b.reply(ctx, r, fmt.Sprintf("Баланс %s: %s баллов.\nВведи сумму:",
		r.Dialogue.Get("user_name"), r.Dialogue.Get("user_coins")), Reply(Row(LabelBack)))
}

func (b *Bot) handleBalanceAmount(ctx context.Context, r *Request) error {
	amount, err := b.svc.Balances.ParseAmount(r.Text)
	if err != nil {
		return err
	}
	target, _ := strconv.ParseInt(r.Dialogue.Get("user"), 10, 64)
	var balance int64
	var note string
	if r.Dialogue.Get("op") == opDebit {
		balance, err = b.svc.Balances.Deduct(ctx, target, amount)
		note = fmt.Sprintf("➖ Администратор списал %d баллов. Баланс: %d", amount, balance)
	} else {
		balance, err = b.svc.Balances.Add(ctx, target, amount)
		note = fmt.Sprintf("➕ Администратор начислил тебе %d баллов. Баланс: %d", amount, balance)
	}
	if err != nil {
		return err
	}
	b.notify(ctx, target, note, nil)
	return b.complete(ctx, r, fmt.Sprintf("✅ Готово. Новый баланс %s: %d", r.Dialogue.Get("user_name"), balance))
}

// pvp and shop

func (b *Bot) fight(ctx context.Context, r *Request) error {
	res, err := b.svc.PVP.Fight(ctx, r.UserID)
	if err != nil {
		return err
	}
	stake := res.Battle.PointsWon
	var text, note string
	if res.Won {
		text = fmt.Sprintf("⚔️ Битва с %s\n🏆 Победа! +%d баллов", res.Opponent.DisplayName(), stake)
		note = fmt.Sprintf("⚔️ %s вызвал тебя на битву и победил. −%d баллов", r.User.DisplayName(), stake)
	} else {
		text = fmt.Sprintf("⚔️ Битва с %s\n😔 Поражение. −%d баллов", res.Opponent.DisplayName(), stake)
		note = fmt.Sprintf("⚔️ %s вызвал тебя на битву, и ты победил! +%d баллов", r.User.DisplayName(), stake)
	}
	b.notify(ctx, res.Opponent.TelegramID, note, nil)
	return b.reply(ctx, r, text, nil)
}

func (b *Bot) showShop(ctx context.Context, r *Request) error {
	u, err := b.svc.Users.Get(ctx, r.UserID)
	if err != nil {
		return err
	}
	var rows [][]Button
	for _, it := range b.svc.Shop.Catalog() {
		rows = append(rows, []Button{{Text: fmt.Sprintf("%s — %d", it.Title, it.Price), Data: "shop:" + it.Key}})
	}
	return b.reply(ctx, r, fmt.Sprintf("🛒 Магазин\nТвой баланс: %d баллов", u.PCoins), Inline(rows...))
}

func (b *Bot) buy(ctx context.Context, r *Request, key string) (string, error) {
	p, balance, err := b.svc.Shop.Buy(ctx, r.UserID, key)
	if err != nil {
		return "", err
	}
	item, _ := b.svc.Shop.Item(p.ItemName)
	if err := b.reply(ctx, r, fmt.Sprintf("✅ Покупка: %s\n💰 Остаток: %d баллов", item.Title, balance), nil); err != nil {
		return "", err
	}
	return "Куплено!", nil
}
