package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"cortex/internal/finance"
	"cortex/internal/logger"
	"cortex/internal/models"
	"cortex/internal/notify"
	"cortex/internal/parser"
)

// messageDedupTTL covers the webhook provider's redelivery window.
const messageDedupTTL = 10 * time.Minute

const helpReply = `🤖 Não entendi. Exemplos do que posso registrar:
• gastei 50 mercado
• recebi 3000 salário
• comprei tv 1200 em 10x
Envie *saldo* para ver seu saldo total.`

// recentIDs remembers message ids for a while so redelivered webhooks are
// processed once.
type recentIDs struct {
	mu   sync.Mutex
	ttl  time.Duration
	seen map[string]time.Time
	now  func() time.Time
}

func newRecentIDs(ttl time.Duration) *recentIDs {
	return &recentIDs{ttl: ttl, seen: make(map[string]time.Time), now: time.Now}
}

// add records id and reports whether it was new.
func (r *recentIDs) add(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for k, at := range r.seen {
		if now.Sub(at) > r.ttl {
			delete(r.seen, k)
		}
	}
	if _, ok := r.seen[id]; ok {
		return false
	}
	r.seen[id] = now
	return true
}

type messageService struct {
	users        UserServicer
	accounts     AccountServicer
	transactions TransactionServicer
	sender       notify.Sender
	recent       *recentIDs
	now          func() time.Time
}

// NewMessageService creates a new MessageServicer. Replies are delivered
// through sender.
func NewMessageService(users UserServicer, accounts AccountServicer, transactions TransactionServicer, sender notify.Sender) MessageServicer {
	return &messageService{
		users:        users,
		accounts:     accounts,
		transactions: transactions,
		sender:       sender,
		recent:       newRecentIDs(messageDedupTTL),
		now:          time.Now,
	}
}

// HandleInbound turns a chat message into a transaction and replies to the
// sender. Unknown phones are registered on first contact. A redelivered
// message id yields an empty reply and no side effects.
func (s *messageService) HandleInbound(ctx context.Context, msg InboundMessage) (string, error) {
	if msg.ID != "" && !s.recent.add(msg.ID) {
		logger.Get().Debugw("duplicate inbound message ignored", "message_id", msg.ID)
		return "", nil
	}

	user, err := s.users.GetOrCreateByPhone(msg.Phone)
	if err != nil {
		return "", err
	}

	reply, err := s.reply(user, strings.TrimSpace(msg.Text))
	if err != nil {
		return "", err
	}

	if err := s.sender.Send(ctx, notify.Message{Phone: user.Phone, Body: reply}); err != nil {
		logger.Get().Warnw("failed to deliver reply", "user_id", user.ID, "error", err)
	}
	return reply, nil
}

func (s *messageService) reply(user *models.User, text string) (string, error) {
	switch strings.ToLower(text) {
	case "", "ajuda", "help", "oi", "olá", "ola", "menu":
		return helpReply, nil
	case "saldo":
		list, err := s.accounts.ListAccounts(user.ID)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("💰 Seu saldo total é %s.", finance.FormatBRL(list.TotalBalance)), nil
	}

	intent, err := parser.ParseMessage(text)
	if errors.Is(err, parser.ErrUnrecognized) {
		return helpReply, nil
	}
	if err != nil {
		return "", err
	}

	rows, err := s.transactions.CreateTransaction(user.ID, TransactionInput{
		Type:         models.TransactionType(intent.Type),
		Amount:       intent.Amount,
		Category:     intent.Category,
		Description:  intent.Description,
		Date:         s.now().UTC(),
		Installments: intent.Installments,
		RawMessage:   text,
	})
	if err != nil {
		return "", err
	}
	return confirmation(intent, rows), nil
}

func confirmation(intent parser.Intent, rows []models.Transaction) string {
	if intent.Type == parser.Income {
		return fmt.Sprintf("✅ Receita registrada: %s, %s (%s).",
			intent.Description, finance.FormatBRL(intent.Amount), intent.Category)
	}
	if len(rows) > 1 {
		return fmt.Sprintf("✅ Compra parcelada registrada: %s, %s em %dx de %s (%s).",
			intent.Description, finance.FormatBRL(intent.Amount), len(rows),
			finance.FormatBRL(finance.Abs(rows[0].Amount)), intent.Category)
	}
	return fmt.Sprintf("✅ Gasto registrado: %s, %s (%s).",
		intent.Description, finance.FormatBRL(intent.Amount), intent.Category)
}
