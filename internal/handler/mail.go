package handler

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/zone-schedule/backend/internal/domain"
)

var errMailUnavailable = errors.New("邮件服务不可用")

// publishMail 把邮件序列化后投递到消息队列，由 mail 服务负责真正发送
func (h *Handler) publishMail(msg domain.MailMessage) error {
	if h.mailChannel == nil {
		return errMailUnavailable
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	return h.mailChannel.PublishWithContext(
		ctx,
		"",
		domain.MailQueue,
		true,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Type:         msg.Type,
			Body:         body,
		},
	)
}
