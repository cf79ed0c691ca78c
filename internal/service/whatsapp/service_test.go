package whatsapp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/fishprofit/internal/config"
	"github.com/mamadbah2/fishprofit/internal/domain/models"
	"github.com/mamadbah2/fishprofit/internal/service/commands"
	"github.com/mamadbah2/fishprofit/internal/service/ledger"
	client "github.com/mamadbah2/fishprofit/pkg/clients/whatsapp"
)

type fakeClient struct {
	sent []client.SendTextMessageRequest
	err  error
}

func (f *fakeClient) SendTextMessage(_ context.Context, req client.SendTextMessageRequest) (*client.SendTextMessageResponse, error) {
	f.sent = append(f.sent, req)
	return &client.SendTextMessageResponse{}, f.err
}

type fakeDispatcher struct {
	got   []models.Command
	reply string
	err   error
}

func (f *fakeDispatcher) HandleCommand(_ context.Context, cmd models.Command, _ string) (string, error) {
	f.got = append(f.got, cmd)
	return f.reply, f.err
}

type fakeAI struct {
	out string
	err error
}

func (f fakeAI) TranslateToCommand(context.Context, string) (string, error) {
	return f.out, f.err
}

func textPayload(from string, bodies ...string) models.WebhookPayload {
	msgs := make([]models.InboundMessage, 0, len(bodies))
	for i, b := range bodies {
		msgs = append(msgs, models.InboundMessage{From: from, ID: string(rune('a' + i)), Type: "text", Text: &models.TextContent{Body: b}})
	}
	return models.WebhookPayload{Entry: []models.WebhookEntry{{Changes: []models.WebhookChange{{Value: models.WebhookValue{Messages: msgs}}}}}}
}

func TestVerifyWebhookToken(t *testing.T) {
	svc := NewMetaWhatsAppService(config.WhatsAppConfig{VerifyToken: "secret"}, &fakeClient{}, nil, &fakeDispatcher{}, nil)

	got, err := svc.VerifyWebhookToken("subscribe", "secret", "42")
	require.NoError(t, err)
	assert.Equal(t, "42", got)

	_, err = svc.VerifyWebhookToken("subscribe", "wrong", "42")
	assert.Error(t, err)
	_, err = svc.VerifyWebhookToken("unsubscribe", "secret", "42")
	assert.Error(t, err)
	_, err = svc.VerifyWebhookToken("", "", "")
	assert.Error(t, err)
}

func TestHandleWebhook_RepliesWithDispatcherOutput(t *testing.T) {
	wa := &fakeClient{}
	disp := &fakeDispatcher{reply: "Batch created"}
	svc := NewMetaWhatsAppService(config.WhatsAppConfig{}, wa, nil, disp, nil)

	require.NoError(t, svc.HandleWebhook(context.Background(), textPayload("905551112233", "/batch")))

	require.Len(t, disp.got, 1)
	assert.Equal(t, models.CommandNewBatch, disp.got[0].Type)
	require.Len(t, wa.sent, 1)
	assert.Equal(t, "905551112233", wa.sent[0].To)
	assert.Equal(t, "Batch created", wa.sent[0].Body)
}

func TestHandleWebhook_ErrorsBecomeReplies(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{commands.ErrUnsupportedCommand, "Unknown command"},
		{commands.ErrInvalidArguments, "invalid arguments"},
		{ledger.ErrBatchNotFound, "No batch matches"},
		{ledger.ErrInvalidValue, "not a number"},
		{errors.New("disk full"), "not saved"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			wa := &fakeClient{}
			svc := NewMetaWhatsAppService(config.WhatsAppConfig{}, wa, nil, &fakeDispatcher{err: tt.err}, nil)

			require.NoError(t, svc.HandleWebhook(context.Background(), textPayload("1", "/whatever")))
			require.Len(t, wa.sent, 1)
			assert.Contains(t, wa.sent[0].Body, tt.want)
		})
	}
}

func TestHandleWebhook_FreeTextGoesThroughAI(t *testing.T) {
	disp := &fakeDispatcher{reply: "ok"}
	svc := NewMetaWhatsAppService(config.WhatsAppConfig{}, &fakeClient{}, fakeAI{out: "/profit"}, disp, nil)

	require.NoError(t, svc.HandleWebhook(context.Background(), textPayload("1", "how much did we make?")))
	require.Len(t, disp.got, 1)
	assert.Equal(t, models.CommandProfit, disp.got[0].Type)
}

func TestHandleWebhook_AIFailureFallsBackToRawText(t *testing.T) {
	disp := &fakeDispatcher{reply: "ok"}
	svc := NewMetaWhatsAppService(config.WhatsAppConfig{}, &fakeClient{}, fakeAI{err: errors.New("timeout")}, disp, nil)

	require.NoError(t, svc.HandleWebhook(context.Background(), textPayload("1", "profit please")))
	require.Len(t, disp.got, 1)
	assert.Equal(t, models.CommandProfit, disp.got[0].Type)
}

func TestHandleWebhook_ReportsFirstError(t *testing.T) {
	wa := &fakeClient{err: errors.New("api down")}
	svc := NewMetaWhatsAppService(config.WhatsAppConfig{}, wa, nil, &fakeDispatcher{reply: "x"}, nil)

	err := svc.HandleWebhook(context.Background(), textPayload("1", "/profit", "/month"))
	assert.EqualError(t, err, "api down")
	assert.Len(t, wa.sent, 2)

	empty := models.WebhookPayload{Entry: []models.WebhookEntry{{Changes: []models.WebhookChange{{Value: models.WebhookValue{
		Messages: []models.InboundMessage{{ID: "m", Type: "image"}},
	}}}}}}
	assert.ErrorIs(t, svc.HandleWebhook(context.Background(), empty), ErrNoCommandText)
}

func TestSendOutbound(t *testing.T) {
	wa := &fakeClient{}
	svc := NewMetaWhatsAppService(config.WhatsAppConfig{OwnerID: "905550001122"}, wa, nil, &fakeDispatcher{}, nil)

	require.NoError(t, svc.SendOutbound(context.Background(), models.OutboundMessageRequest{To: "1", Message: "hi", PreviewURL: true}))
	require.NoError(t, svc.SendOutbound(context.Background(), models.OutboundMessageRequest{Message: "net profit 10tl"}))

	require.Len(t, wa.sent, 2)
	assert.Equal(t, "1", wa.sent[0].To)
	assert.True(t, wa.sent[0].PreviewURL)
	assert.Equal(t, "905550001122", wa.sent[1].To)

	assert.ErrorIs(t, svc.SendOutbound(context.Background(), models.OutboundMessageRequest{Message: "  "}), ErrEmptyMessage)
	assert.Len(t, wa.sent, 2)
}

func TestSendOutbound_NoRecipient(t *testing.T) {
	wa := &fakeClient{}
	svc := NewMetaWhatsAppService(config.WhatsAppConfig{}, wa, nil, &fakeDispatcher{}, nil)

	err := svc.SendOutbound(context.Background(), models.OutboundMessageRequest{Message: "hi"})
	assert.ErrorIs(t, err, ErrNoRecipient)
	assert.Empty(t, wa.sent)
}
