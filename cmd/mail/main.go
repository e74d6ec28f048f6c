package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/zone-schedule/backend/internal/config"
	"github.com/sysu-ecnc-dev/zone-schedule/backend/internal/domain"
	"github.com/wneessen/go-mail"
)

type mailSender interface {
	DialAndSend(messages ...*mail.Msg) error
}

type worker struct {
	from   string
	sender mailSender
}

// handle 处理一条队列消息。格式错误的消息直接丢弃，发送失败的消息重新入队
func (wk *worker) handle(d amqp.Delivery) {
	// 新账户邮件中带有初始密码，只记录大小
	slog.Info("收到邮件消息", "size", len(d.Body))

	var m domain.MailMessage
	if err := json.Unmarshal(d.Body, &m); err != nil {
		slog.Error("邮件信息反序列化失败", "error", err)
		_ = d.Nack(false, false)
		return
	}

	msg, err := buildMail(wk.from, m)
	if err != nil {
		slog.Error("无法构建邮件", "type", m.Type, "error", err)
		_ = d.Nack(false, false)
		return
	}

	if err := wk.sender.DialAndSend(msg); err != nil {
		slog.Error("邮件发送失败", "type", m.Type, "error", err)
		_ = d.Nack(false, !d.Redelivered)
		return
	}

	slog.Info("邮件发送成功", "type", m.Type)
	_ = d.Ack(false)
}

func (wk *worker) run(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				slog.Error("消息通道已关闭")
				return
			}
			wk.handle(d)
		}
	}
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", "error", err)
		os.Exit(1)
	}

	/**********************************************
	 * 邮件客户端
	 **********************************************/
	client, err := mail.NewClient(cfg.Email.SMTP.Host,
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithSSL(),
		mail.WithPort(cfg.Email.SMTP.Port),
		mail.WithUsername(cfg.Email.SMTP.Username),
		mail.WithPassword(cfg.Email.SMTP.Password),
		mail.WithTimeout(time.Duration(cfg.Email.SMTP.DialTimeout)*time.Second),
	)
	if err != nil {
		logger.Error("无法创建邮件客户端", "error", err)
		os.Exit(1)
	}

	dialCtx, cancelDial := context.WithTimeout(context.Background(), time.Duration(cfg.Email.SMTP.DialTimeout)*time.Second)
	err = client.DialWithContext(dialCtx)
	cancelDial()
	if err != nil {
		logger.Error("无法连接到邮件服务器", "host", cfg.Email.SMTP.Host, "error", err)
		os.Exit(1)
	}
	// 每封邮件都会重新建立连接
	_ = client.Close()

	/**********************************************
	 * RabbitMQ
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("无法连接到 RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("无法创建通道", "error", err)
		os.Exit(1)
	}
	defer ch.Close()

	// 与 api 声明的队列参数保持一致
	q, err := ch.QueueDeclare(domain.MailQueue, true, false, false, false, nil)
	if err != nil {
		logger.Error("无法声明队列", "error", err)
		os.Exit(1)
	}

	// 一次只取一条
	if err := ch.Qos(1, 0, false); err != nil {
		logger.Error("无法设置预取数量", "error", err)
		os.Exit(1)
	}

	deliveries, err := ch.Consume(q.Name, "", false, false, false, false, nil)
	if err != nil {
		logger.Error("无法消费消息", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	wk := &worker{from: cfg.Email.SMTP.Username, sender: client}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		wk.run(ctx, deliveries)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("等待邮件消息...（按 CTRL+C 退出）", "queue", q.Name)
	<-sigChan

	logger.Info("正在关闭 mail worker...")
	cancel()
	wg.Wait()
	logger.Info("mail worker 已成功关闭")
}
