package notifications

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
)

// TwilioServiceImpl delivers SMS through Twilio
type TwilioServiceImpl struct {
	client     *twilio.RestClient
	fromNumber string
	log        *zap.Logger
}

// NewTwilioService creates a new Twilio SMS sender. Without a from number
// messages are logged instead of sent.
func NewTwilioService(accountSID, authToken, fromNumber string, log *zap.Logger) *TwilioServiceImpl {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})

	return &TwilioServiceImpl{
		client:     client,
		fromNumber: fromNumber,
		log:        log,
	}
}

// SendSMS sends message to the given number
func (t *TwilioServiceImpl) SendSMS(ctx context.Context, to, message string) error {
	if t.fromNumber == "" {
		t.log.Info("sms delivery disabled, message logged", zap.String("to", to), zap.String("message", message))
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(t.fromNumber)
	params.SetBody(message)

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("failed to send SMS: %w", err)
	}
	if resp.Sid != nil {
		t.log.Debug("sms sent", zap.String("to", to), zap.String("sid", *resp.Sid))
	}
	return nil
}
