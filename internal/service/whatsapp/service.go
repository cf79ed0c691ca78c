package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/fishprofit/internal/config"
	"github.com/mamadbah2/fishprofit/internal/domain/models"
	"github.com/mamadbah2/fishprofit/internal/service/commands"
	"github.com/mamadbah2/fishprofit/internal/service/ledger"
	"github.com/mamadbah2/fishprofit/pkg/clients/anthropic"
	client "github.com/mamadbah2/fishprofit/pkg/clients/whatsapp"
)

const helpText = "Commands: /batch, /set <id> <field> <value>, /sale <id> <grams> <price>, " +
	"/unsale <id> <saleID>, /drop <id>, /profit, /month [rent|ads|other <value>], /price <id> [margin%]."

var (
	// ErrNoRecipient is returned when a message has no recipient and no owner number is configured.
	ErrNoRecipient = errors.New("no recipient and no owner number configured")
	// ErrEmptyMessage is returned for outbound messages without text.
	ErrEmptyMessage = errors.New("empty message")
	// ErrNoCommandText is returned for inbound messages that carry no text, such as images.
	ErrNoCommandText = errors.New("message carries no command text")
)

// MessagingService describes the operations the HTTP layer can perform.
type MessagingService interface {
	VerifyWebhookToken(mode, verifyToken, challenge string) (string, error)
	HandleWebhook(ctx context.Context, payload models.WebhookPayload) error
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
}

// MetaWhatsAppService is the production implementation backed by WhatsApp Cloud API.
type MetaWhatsAppService struct {
	cfg        config.WhatsAppConfig
	client     client.Client
	ai         anthropic.Client
	dispatcher commands.Dispatcher
	logger     *zap.Logger
}

// NewMetaWhatsAppService wires a new service instance. ai may be nil, in which
// case only slash commands are understood.
func NewMetaWhatsAppService(cfg config.WhatsAppConfig, client client.Client, ai anthropic.Client, dispatcher commands.Dispatcher, logger *zap.Logger) *MetaWhatsAppService {
	svc := &MetaWhatsAppService{
		cfg:        cfg,
		client:     client,
		ai:         ai,
		dispatcher: dispatcher,
		logger:     logger,
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	return svc
}

// VerifyWebhookToken validates the callback verification token.
func (s *MetaWhatsAppService) VerifyWebhookToken(mode, verifyToken, challenge string) (string, error) {
	if mode == "" || verifyToken == "" {
		return "", errors.New("missing mode or verify token")
	}

	if !strings.EqualFold(mode, "subscribe") {
		return "", fmt.Errorf("unsupported hub.mode %s", mode)
	}

	if verifyToken != s.cfg.VerifyToken {
		return "", errors.New("invalid verify token")
	}

	return challenge, nil
}

// HandleWebhook runs every command carried by the callback and replies to its
// sender. All messages are attempted; the first failure is returned.
func (s *MetaWhatsAppService) HandleWebhook(ctx context.Context, payload models.WebhookPayload) error {
	var firstErr error

	for _, msg := range payload.Messages() {
		if err := s.handleInboundMessage(ctx, msg); err != nil {
			s.logger.Error("failed to handle inbound message", zap.Error(err), zap.String("message_id", msg.ID))
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}

func (s *MetaWhatsAppService) handleInboundMessage(ctx context.Context, msg models.InboundMessage) error {
	text := msg.CommandText()
	if text == "" {
		return fmt.Errorf("message type %q: %w", msg.Type, ErrNoCommandText)
	}

	if !models.IsSlashCommand(text) && s.ai != nil {
		translated, err := s.ai.TranslateToCommand(ctx, text)
		if err != nil {
			s.logger.Warn("ai translation failed", zap.Error(err))
		} else if translated != "" {
			text = translated
		}
	}

	cmd := models.ParseCommand(text)
	s.logger.Info("parsed inbound command",
		zap.String("from", msg.From),
		zap.String("command", string(cmd.Type)),
		zap.Any("args", cmd.Args))

	reply, err := s.dispatcher.HandleCommand(ctx, cmd, msg.From)
	if err != nil {
		reply = replyForError(err)
		s.logger.Info("command rejected", zap.String("from", msg.From), zap.Error(err))
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err = s.client.SendTextMessage(ctxWithTimeout, client.SendTextMessageRequest{
		To:   msg.From,
		Body: reply,
	})
	return err
}

// SendOutbound pushes an operator message. An empty recipient means the
// configured owner number.
func (s *MetaWhatsAppService) SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error {
	to := strings.TrimSpace(req.To)
	if to == "" {
		to = s.cfg.OwnerID
	}
	if to == "" {
		return ErrNoRecipient
	}
	if strings.TrimSpace(req.Message) == "" {
		return ErrEmptyMessage
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := s.client.SendTextMessage(ctxWithTimeout, client.SendTextMessageRequest{
		To:         to,
		Body:       req.Message,
		PreviewURL: req.PreviewURL,
	})
	return err
}

func replyForError(err error) string {
	switch {
	case errors.Is(err, commands.ErrUnsupportedCommand):
		return "Unknown command. " + helpText
	case errors.Is(err, commands.ErrInvalidArguments):
		return "Missing or invalid arguments. " + helpText
	case errors.Is(err, ledger.ErrBatchNotFound):
		return "No batch matches that id. Send /profit to list batches."
	case errors.Is(err, ledger.ErrAmbiguousBatchID):
		return "Several batches match that id; send more characters."
	case errors.Is(err, ledger.ErrSaleNotFound):
		return "No sale matches that id."
	case errors.Is(err, ledger.ErrUnknownField):
		return "Unknown field. Use date, purchaseCost, outputKg, pricePerKg, discount, discountPercent, electricity, water, fuel, packaging, or rent/ads/other for /month."
	case errors.Is(err, ledger.ErrInvalidValue):
		return "That value is not a number."
	default:
		return "Something went wrong, the change was not saved. Please try again."
	}
}
