package main

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"

	"github.com/sysu-ecnc-dev/zone-schedule/backend/internal/domain"
	"github.com/wneessen/go-mail"
)

//go:embed templates/*.html
var templateFS embed.FS

type mailTemplate struct {
	file    string
	subject string
	data    func() any
}

var mailTemplates = map[string]mailTemplate{
	domain.MailTypeCreateUser: {
		file:    "templates/new_account_email.html",
		subject: "营业时间管理系统 - 账户信息",
		data:    func() any { return &domain.CreateUserMailData{} },
	},
	domain.MailTypeSpecialConflict: {
		file:    "templates/special_conflict_email.html",
		subject: "营业时间管理系统 - 特殊营业时间冲突",
		data:    func() any { return &domain.SpecialConflictMailData{} },
	},
}

// buildMail 根据邮件类型选择模板并渲染成待发送的邮件
func buildMail(from string, m domain.MailMessage) (*mail.Msg, error) {
	t, ok := mailTemplates[m.Type]
	if !ok {
		return nil, fmt.Errorf("不支持的邮件类型 %q", m.Type)
	}

	// 从队列中取出的 Data 是 map，需要还原成对应的结构体再渲染
	raw, err := json.Marshal(m.Data)
	if err != nil {
		return nil, fmt.Errorf("无法读取邮件数据: %w", err)
	}
	data := t.data()
	if err := json.Unmarshal(raw, data); err != nil {
		return nil, fmt.Errorf("邮件数据格式错误: %w", err)
	}

	tmpl, err := template.ParseFS(templateFS, t.file)
	if err != nil {
		return nil, fmt.Errorf("无法解析邮件模板: %w", err)
	}

	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("无法设置邮件发件人: %w", err)
	}
	if err := msg.To(m.To); err != nil {
		return nil, fmt.Errorf("无法设置邮件收件人: %w", err)
	}
	if err := msg.SetBodyHTMLTemplate(tmpl, data); err != nil {
		return nil, fmt.Errorf("无法设置邮件正文: %w", err)
	}
	msg.Subject(t.subject)

	return msg, nil
}
