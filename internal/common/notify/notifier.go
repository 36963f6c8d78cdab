// internal/common/notify/notifier.go
package notify

import (
	"context"
	"fmt"

	appcfg "finance-intake/internal/common/config"
	stderrors "finance-intake/internal/common/errors"
	"finance-intake/internal/common/logger"
	"finance-intake/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// Notifier sends the signing confirmation over email (SES) and optionally
// SMS (SNS). Failures are logged and returned as StandardErrors; callers
// never surface them into the conversation.
type Notifier struct {
	cfg    appcfg.NotificationConfig
	ses    *ses.Client
	sns    *sns.Client
	logger logger.Logger
}

func New(ctx context.Context, cfg appcfg.NotificationConfig, log logger.Logger) (*Notifier, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &Notifier{
		cfg:    cfg,
		ses:    ses.NewFromConfig(awsCfg),
		sns:    sns.NewFromConfig(awsCfg),
		logger: log.WithFields(map[string]interface{}{"component": "notify"}),
	}, nil
}

// SendCompletion emails (and optionally texts) the signed-contract summary.
func (n *Notifier) SendCompletion(ctx context.Context, email, phone string, c *models.Contract) error {
	if !n.cfg.Enabled {
		return nil
	}

	subject := "Your equipment financing is confirmed"
	body := fmt.Sprintf(
		"Hi %s,\n\nYour %d-month agreement with %s is signed. Monthly payment: $%.2f, down payment: $%d.\n",
		c.CustomerName, c.TermMonths, c.Lender, c.MonthlyPayment, c.DownPayment,
	)

	if email != "" {
		_, err := n.ses.SendEmail(ctx, &ses.SendEmailInput{
			Source:      aws.String(n.cfg.FromAddress),
			Destination: &sestypes.Destination{ToAddresses: []string{email}},
			Message: &sestypes.Message{
				Subject: &sestypes.Content{Data: aws.String(subject)},
				Body:    &sestypes.Body{Text: &sestypes.Content{Data: aws.String(body)}},
			},
		})
		if err != nil {
			n.logger.Error("confirmation email failed", map[string]interface{}{"error": err.Error()})
			return stderrors.NewNotificationError("email", err)
		}
	}

	if n.cfg.SMSEnabled && phone != "" {
		_, err := n.sns.Publish(ctx, &sns.PublishInput{
			PhoneNumber: aws.String(phone),
			Message:     aws.String(fmt.Sprintf("%s agreement signed. $%.2f/mo for %d months.", c.Lender, c.MonthlyPayment, c.TermMonths)),
		})
		if err != nil {
			n.logger.Error("confirmation sms failed", map[string]interface{}{"error": err.Error()})
			return stderrors.NewNotificationError("sms", err)
		}
	}

	return nil
}
