package notify

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/kaigo-records/care-records/backend/internal/config"
	"github.com/kaigo-records/care-records/backend/internal/domain"
)

const MailQueue = "email_queue"

// Channel 是 *amqp.Channel 中发布消息所需的部分
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type Publisher struct {
	cfg *config.Config
	ch  Channel
}

func NewPublisher(cfg *config.Config, ch Channel) *Publisher {
	return &Publisher{
		cfg: cfg,
		ch:  ch,
	}
}

// PublishMail 把邮件序列化后放入邮件队列，由 mail worker 负责发送
func (p *Publisher) PublishMail(message domain.MailMessage) error {
	body, err := json.Marshal(message)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(p.cfg.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(
		ctx,
		"",
		MailQueue,
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

// PublishCommitSummary 通知交接负责人一次批量录入的结果
// 没有配置收件人时什么都不做
func (p *Publisher) PublishCommitSummary(data domain.BulkCommitSummaryMailData) error {
	if p.cfg.Email.NotifyTo == "" {
		return nil
	}

	if data.FacilityName == "" {
		data.FacilityName = p.cfg.Facility.Name
	}

	return p.PublishMail(domain.MailMessage{
		Type: domain.MailTypeBulkCommitSummary,
		To:   p.cfg.Email.NotifyTo,
		Data: data,
	})
}
