package notification

import (
	"context"
	"encoding/json"
	"fmt"

	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	"go.uber.org/zap"

	"github.com/Intelygenai/paycyclexplorer/internal/application/port"
)

// LarkConfig holds Lark app credentials.
type LarkConfig struct {
	AppID     string
	AppSecret string
}

// LarkSink delivers notifications as Lark text messages addressed by the
// recipient's email.
type LarkSink struct {
	client *lark.Client
	logger *zap.Logger
}

// NewLarkSink creates a new Lark-backed sink.
func NewLarkSink(cfg LarkConfig, logger *zap.Logger) *LarkSink {
	client := lark.NewClient(cfg.AppID, cfg.AppSecret,
		lark.WithLogLevel(larkcore.LogLevelInfo),
		lark.WithEnableTokenCache(true),
	)
	return &LarkSink{
		client: client,
		logger: logger,
	}
}

// Notify implements port.NotificationSink.
func (s *LarkSink) Notify(ctx context.Context, n port.Notification) error {
	if n.RecipientEmail == "" {
		return fmt.Errorf("notification recipient email cannot be empty")
	}

	text := n.Subject + "\n" + n.Body
	for _, attachment := range n.Attachments {
		text += "\nAttachment: " + attachment
	}
	content, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("failed to build message content: %w", err)
	}

	req := larkim.NewCreateMessageReqBuilder().
		ReceiveIdType(larkim.ReceiveIdTypeEmail).
		Body(larkim.NewCreateMessageReqBodyBuilder().
			ReceiveId(n.RecipientEmail).
			MsgType(larkim.MsgTypeText).
			Content(string(content)).
			Build()).
		Build()

	resp, err := s.client.Im.Message.Create(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to send lark message: %w", err)
	}
	if !resp.Success() {
		return fmt.Errorf("lark message rejected: code %d, %s", resp.Code, resp.Msg)
	}

	s.logger.Debug("Lark notification sent",
		zap.String("kind", n.Kind),
		zap.String("recipient", n.RecipientEmail))
	return nil
}

// Verify interface compliance
var _ port.NotificationSink = (*LarkSink)(nil)
