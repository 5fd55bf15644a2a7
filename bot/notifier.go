package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"lunch-menu/config"
	"lunch-menu/logger"
	"lunch-menu/models"
	"lunch-menu/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const callbackDeleteOrder = "order:delete:"

// OrderDesk is what staff can do with orders from the chat.
type OrderDesk interface {
	List(ctx context.Context) ([]models.Order, error)
	Delete(ctx context.Context, id string) error
}

// StaffBot posts every new order to the staff chat and lets staff delete
// orders or list the latest ones from there.
type StaffBot struct {
	api    *tgbotapi.BotAPI
	chatID int64
	loc    *time.Location
	orders OrderDesk
	log    *logger.Logger
}

// NewStaffBot creates the bot using MESSAGE_TOKEN. Messages go to STAFF_CHAT_ID.
func NewStaffBot(cfg config.TelegramConfig, loc *time.Location, orders OrderDesk, log *logger.Logger) (*StaffBot, error) {
	if cfg.MessageToken == "" {
		return nil, fmt.Errorf("MESSAGE_TOKEN not set")
	}
	if cfg.StaffChatID == 0 {
		return nil, fmt.Errorf("STAFF_CHAT_ID not set")
	}
	api, err := tgbotapi.NewBotAPI(cfg.MessageToken)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		loc = time.UTC
	}
	log.Info("telegram_connected", "", "Staff bot authorized", slog.String("bot", api.Self.UserName))
	return &StaffBot{api: api, chatID: cfg.StaffChatID, loc: loc, orders: orders, log: log}, nil
}

// FormatOrderMessage is the staff chat text for an order.
func FormatOrderMessage(o *models.Order, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	var b strings.Builder
	b.WriteString("🍽 Novo pedido\n\n")
	fmt.Fprintf(&b, "Nome: %s\n", o.UserName)
	fmt.Fprintf(&b, "Matrícula: %s\n", o.Registration)
	fmt.Fprintf(&b, "Data: %s\n", o.CreatedAt.In(loc).Format("02/01/2006 15:04"))
	b.WriteString("\nItens:\n")
	for _, it := range o.Items {
		fmt.Fprintf(&b, "- %s\n", it.DishName)
	}
	if o.Observations != "" {
		fmt.Fprintf(&b, "\nObservações: %s\n", o.Observations)
	}
	return strings.TrimRight(b.String(), "\n")
}

func deleteKeyboard(orderID string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 Excluir pedido", callbackDeleteOrder+orderID),
		),
	)
}

// NotifyOrder sends the order card to the staff chat.
func (s *StaffBot) NotifyOrder(ctx context.Context, o *models.Order) error {
	msg := tgbotapi.NewMessage(s.chatID, FormatOrderMessage(o, s.loc))
	msg.ReplyMarkup = deleteKeyboard(o.ID)
	if _, err := s.api.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	s.log.Debug("staff_notified", logger.RequestID(ctx), "Order sent to staff chat", slog.String("order_id", o.ID))
	return nil
}

// Run handles button presses and commands from the staff chat until ctx is
// done.
func (s *StaffBot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := s.api.GetUpdatesChan(u)
	for {
		select {
		case <-ctx.Done():
			s.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.CallbackQuery != nil {
				s.handleCallback(ctx, update.CallbackQuery)
				continue
			}
			if update.Message != nil && update.Message.Chat.ID == s.chatID {
				s.handleCommand(ctx, update.Message)
			}
		}
	}
}

func (s *StaffBot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if cq.Message == nil || cq.Message.Chat.ID != s.chatID {
		s.api.Request(tgbotapi.NewCallback(cq.ID, ""))
		return
	}
	orderID, ok := strings.CutPrefix(cq.Data, callbackDeleteOrder)
	if !ok {
		s.api.Request(tgbotapi.NewCallback(cq.ID, ""))
		return
	}

	requestID := logger.GenerateRequestID()
	ctx = logger.WithRequestID(ctx, requestID)
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	answer := services.MsgOrderDeleted
	err := s.orders.Delete(ctx, orderID)
	switch {
	case err == nil:
		s.log.Info("order_deleted", requestID, "Order deleted from staff chat",
			slog.String("order_id", orderID), slog.Int64("tg_user_id", cq.From.ID))
		edit := tgbotapi.NewEditMessageText(s.chatID, cq.Message.MessageID, cq.Message.Text+"\n\n🗑 "+services.MsgOrderDeleted)
		if _, err := s.api.Send(edit); err != nil {
			s.log.Error("telegram_edit_failed", requestID, "Failed to edit order card", err)
		}
	case errors.Is(err, services.ErrNotFound):
		answer = services.MsgOrderDeleteFail
	default:
		answer = services.MsgOrderDeleteFail
		s.log.Error("order_delete_failed", requestID, "Failed to delete order from staff chat", err,
			slog.String("order_id", orderID))
	}
	s.api.Request(tgbotapi.NewCallback(cq.ID, answer))
}

// recentOrdersLimit caps the /pedidos listing.
const recentOrdersLimit = 10

func (s *StaffBot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	if !msg.IsCommand() {
		return
	}
	switch msg.Command() {
	case "pedidos":
		ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
		orders, err := s.orders.List(ctx)
		if err != nil {
			s.log.Error("orders_list_failed", "", "Failed to list orders for staff chat", err)
			s.send(services.MsgInternalError)
			return
		}
		s.send(FormatOrderSummary(orders, s.loc, recentOrdersLimit))
	case "start", "help":
		s.send("/pedidos - últimos pedidos")
	}
}

// FormatOrderSummary lists up to limit orders, newest first, one per line.
func FormatOrderSummary(orders []models.Order, loc *time.Location, limit int) string {
	if len(orders) == 0 {
		return "Nenhum pedido."
	}
	if loc == nil {
		loc = time.UTC
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Pedidos: %d\n", len(orders))
	for i, o := range orders {
		if i == limit {
			fmt.Fprintf(&b, "… e mais %d", len(orders)-limit)
			break
		}
		names := make([]string, 0, len(o.Items))
		for _, it := range o.Items {
			names = append(names, it.DishName)
		}
		fmt.Fprintf(&b, "\n%s %s (%s): %s", o.CreatedAt.In(loc).Format("15:04"), o.UserName, o.Registration, strings.Join(names, ", "))
	}
	return b.String()
}

func (s *StaffBot) send(text string) {
	if _, err := s.api.Send(tgbotapi.NewMessage(s.chatID, text)); err != nil {
		s.log.Error("telegram_send_failed", "", "Failed to send staff message", err)
	}
}
