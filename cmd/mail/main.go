package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/wneessen/go-mail"

	"github.com/kaigo-records/care-records/backend/internal/config"
	"github.com/kaigo-records/care-records/backend/internal/domain"
	"github.com/kaigo-records/care-records/backend/internal/notify"
)

const templateDir = "./templates"

var errUnsupportedMailType = errors.New("不支持的邮件类型")

// mail worker 消费 api 投递到 email_queue 的批量录入结果通知，并通过 SMTP 发给职员
func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		return
	}

	client, err := mail.NewClient(cfg.Email.SMTP.Host,
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithSSL(),
		mail.WithPort(cfg.Email.SMTP.Port),
		mail.WithUsername(cfg.Email.SMTP.Username),
		mail.WithPassword(cfg.Email.SMTP.Password),
	)
	if err != nil {
		logger.Error("无法创建邮件客户端", slog.String("error", err.Error()))
		return
	}
	defer client.Close()

	// 启动时先连一次 SMTP，配置错误时直接退出
	dialCtx, cancelDial := context.WithTimeout(context.Background(), time.Duration(cfg.Email.SMTP.DialTimeout)*time.Second)
	defer cancelDial()
	if err := client.DialWithContext(dialCtx); err != nil {
		logger.Error("无法连接到邮件服务器", slog.String("error", err.Error()))
		return
	}

	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("无法连接到 RabbitMQ", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("无法创建通道", slog.String("error", err.Error()))
		return
	}
	defer ch.Close()

	// 与 api 端声明相同的持久化队列，两个进程的启动顺序不受限制
	q, err := ch.QueueDeclare(notify.MailQueue, true, false, false, false, nil)
	if err != nil {
		logger.Error("无法声明队列", slog.String("error", err.Error()))
		return
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// 手动确认，发送成功后才 Ack
	msgs, err := ch.Consume(q.Name, "", false, false, false, false, nil)
	if err != nil {
		logger.Error("无法消费消息", slog.String("error", err.Error()))
		os.Exit(1)
	}

	subject := cfg.Facility.Name + " 护理记录 - 批量录入结果"

	ctx, cancel := context.WithCancel(context.Background())
	wg := sync.WaitGroup{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case delivery := <-msgs:
				logger.Info("收到批量录入通知", slog.String("message", string(delivery.Body)))

				msg, err := buildMail(cfg.Email.SMTP.Username, subject, templateDir, delivery.Body)
				if err != nil {
					// 消息本身有问题，重试也不会成功，直接丢弃
					logger.Error("无法构建邮件", slog.String("error", err.Error()))
					_ = delivery.Nack(false, false)
					continue
				}

				if err := client.DialAndSend(msg); err != nil {
					logger.Error("邮件发送失败", slog.String("error", err.Error()))
					_ = delivery.Nack(false, true)
					continue
				}

				_ = delivery.Ack(false)
			}
		}
	}()

	logger.Info("等待批量录入通知...（按 CTRL+C 退出）")
	<-sigChan

	logger.Info("正在关闭 mail worker...")
	cancel()
	wg.Wait()
	logger.Info("mail worker 已成功关闭")
}

// buildMail 把队列中的一条通知转换为待发送的邮件
func buildMail(from, subject, tmplDir string, body []byte) (*mail.Msg, error) {
	message := domain.MailMessage{}
	if err := json.Unmarshal(body, &message); err != nil {
		return nil, fmt.Errorf("邮件信息反序列化失败: %w", err)
	}

	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("无法设置邮件发件人: %w", err)
	}
	if err := msg.To(message.To); err != nil {
		return nil, fmt.Errorf("无法设置邮件收件人: %w", err)
	}

	switch message.Type {
	case domain.MailTypeBulkCommitSummary:
		data := domain.BulkCommitSummaryMailData{}
		if err := decodeMailData(message.Data, &data); err != nil {
			return nil, fmt.Errorf("邮件数据格式错误: %w", err)
		}
		tmpl, err := template.ParseFiles(filepath.Join(tmplDir, "bulk_commit_summary_email.html"))
		if err != nil {
			return nil, fmt.Errorf("无法解析邮件模板: %w", err)
		}
		if err := msg.SetBodyHTMLTemplate(tmpl, data); err != nil {
			return nil, fmt.Errorf("无法设置邮件正文: %w", err)
		}
		msg.Subject(subject)
	default:
		return nil, fmt.Errorf("%w: %s", errUnsupportedMailType, message.Type)
	}

	return msg, nil
}

// decodeMailData 把反序列化得到的 map 转换为具体的邮件数据类型
func decodeMailData(src any, dst any) error {
	b, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}
