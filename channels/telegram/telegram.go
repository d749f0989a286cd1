package telegram

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"

	"github.com/gloriapark/concierge/bus"
	"github.com/gloriapark/concierge/config"
)

// Channel is the Telegram transport: it long-polls for updates, converts
// text and contact-share messages into bus inbound messages, and renders
// bus outbound messages as Telegram replies (text, reply keyboards, photos
// and media groups).
type Channel struct {
	token string
	cfg   config.TelegramConfig
	bus   *bus.Bus
	log   zerolog.Logger

	running atomic.Bool

	mu     sync.Mutex
	cancel context.CancelFunc
	tg     *bot.Bot
}

func New(token string, cfg config.TelegramConfig, b *bus.Bus, log zerolog.Logger) *Channel {
	return &Channel{
		token: token,
		cfg:   cfg,
		bus:   b,
		log:   log,
	}
}

func (c *Channel) Name() string    { return "telegram" }
func (c *Channel) IsRunning() bool { return c.running.Load() }

func (c *Channel) Start(ctx context.Context) error {
	if strings.TrimSpace(c.token) == "" {
		return fmt.Errorf("telegram token is empty")
	}

	opts := []bot.Option{
		bot.WithDefaultHandler(c.handleUpdate),
	}
	if strings.TrimSpace(c.cfg.BaseURL) != "" {
		opts = append(opts, bot.WithServerURL(strings.TrimRight(c.cfg.BaseURL, "/")))
	}

	tg, err := bot.New(c.token, opts...)
	if err != nil {
		return fmt.Errorf("telegram init: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.cancel = cancel
	c.tg = tg
	c.mu.Unlock()
	defer func() {
		cancel()
		c.mu.Lock()
		c.cancel = nil
		c.tg = nil
		c.mu.Unlock()
	}()

	c.running.Store(true)
	defer c.running.Store(false)

	tg.Start(runCtx)
	return runCtx.Err()
}

func (c *Channel) Stop() error {
	c.mu.Lock()
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	return nil
}

func (c *Channel) Send(ctx context.Context, msg bus.OutboundMessage) error {
	c.mu.Lock()
	tg := c.tg
	c.mu.Unlock()
	if tg == nil {
		return fmt.Errorf("telegram channel is not running")
	}
	chatID := strings.TrimSpace(msg.ChatID)
	if chatID == "" {
		return fmt.Errorf("chat_id is empty")
	}

	if len(msg.Album) > 0 {
		return c.sendAlbum(ctx, tg, chatID, msg.Album)
	}
	if len(msg.Photo) > 0 {
		_, err := tg.SendPhoto(ctx, &bot.SendPhotoParams{
			ChatID: chatID,
			Photo: &models.InputFileUpload{
				Filename: "snapshot.jpg",
				Data:     bytes.NewReader(msg.Photo),
			},
		})
		return err
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return nil
	}
	_, err := tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: buildReplyMarkup(msg),
	})
	return err
}

func (c *Channel) sendAlbum(ctx context.Context, tg *bot.Bot, chatID string, album [][]byte) error {
	media := make([]models.InputMedia, 0, len(album))
	for i, img := range album {
		name := fmt.Sprintf("page%d.jpg", i+1)
		media = append(media, &models.InputMediaPhoto{
			Media:           "attach://" + name,
			MediaAttachment: bytes.NewReader(img),
		})
	}
	_, err := tg.SendMediaGroup(ctx, &bot.SendMediaGroupParams{
		ChatID: chatID,
		Media:  media,
	})
	return err
}

func (c *Channel) handleUpdate(ctx context.Context, _ *bot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.From.IsBot {
		return
	}

	inbound, ok := buildInbound(msg)
	if !ok {
		return
	}
	if err := c.bus.PublishInbound(ctx, inbound); err != nil {
		c.log.Warn().Err(err).Msg("telegram inbound dropped")
	}
}

// buildInbound converts a Telegram message into a bus inbound message.
// Contact shares keep the phone number exactly as Telegram delivers it.
func buildInbound(msg *models.Message) (bus.InboundMessage, bool) {
	chatID := strconv.FormatInt(msg.Chat.ID, 10)
	inbound := bus.InboundMessage{
		Channel:    "telegram",
		SenderID:   telegramSenderID(msg.From),
		ChatID:     chatID,
		SessionKey: "telegram:" + chatID,
	}

	if msg.Contact != nil {
		inbound.Contact = &bus.Contact{
			PhoneNumber: msg.Contact.PhoneNumber,
			FirstName:   msg.Contact.FirstName,
		}
		return inbound, true
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return bus.InboundMessage{}, false
	}
	inbound.Text = text
	return inbound, true
}

func buildReplyMarkup(msg bus.OutboundMessage) models.ReplyMarkup {
	if len(msg.Keyboard) > 0 {
		rows := make([][]models.KeyboardButton, 0, len(msg.Keyboard))
		for _, row := range msg.Keyboard {
			buttons := make([]models.KeyboardButton, 0, len(row))
			for _, label := range row {
				buttons = append(buttons, models.KeyboardButton{
					Text:           label,
					RequestContact: msg.RequestContact,
				})
			}
			rows = append(rows, buttons)
		}
		return &models.ReplyKeyboardMarkup{
			Keyboard:        rows,
			ResizeKeyboard:  true,
			OneTimeKeyboard: msg.OneTimeKeyboard,
		}
	}
	if msg.RemoveKeyboard {
		return &models.ReplyKeyboardRemove{RemoveKeyboard: true}
	}
	return nil
}

func telegramSenderID(from *models.User) string {
	if from == nil {
		return ""
	}
	id := strconv.FormatInt(from.ID, 10)
	username := strings.TrimPrefix(strings.TrimSpace(from.Username), "@")
	if username == "" {
		return id
	}
	return id + "|" + username
}
