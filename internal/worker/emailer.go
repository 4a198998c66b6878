package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/teamforge/backend/config"
	"github.com/teamforge/backend/pkg/queue"
)

// EmailProcessor delivers queued email jobs over SMTP.
type EmailProcessor struct {
	cfg    config.EmailConfig
	queue  *queue.Queue
	logger *zap.Logger
}

// NewEmailProcessor creates an email delivery processor.
func NewEmailProcessor(cfg config.EmailConfig, q *queue.Queue, logger *zap.Logger) *EmailProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailProcessor{cfg: cfg, queue: q, logger: logger}
}

// Process executes one email job.
func (p *EmailProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeEmail {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.EmailPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	if p.cfg.SMTPHost == "" {
		// No SMTP configured; log the mail instead of failing the job so dev
		// environments keep working.
		p.logger.Info("smtp not configured, dropping email",
			zap.String("email_type", payload.EmailType),
			zap.String("recipient", payload.RecipientEmail),
			zap.String("subject", payload.Subject))
		return nil
	}

	msg := buildMessage(p.cfg, payload)
	addr := fmt.Sprintf("%s:%d", p.cfg.SMTPHost, p.cfg.SMTPPort)
	var auth smtp.Auth
	if p.cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", p.cfg.SMTPUser, p.cfg.SMTPPass, p.cfg.SMTPHost)
	}
	if err := smtp.SendMail(addr, auth, p.cfg.FromAddress, []string{payload.RecipientEmail}, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	p.logger.Info("email delivered",
		zap.String("job_id", job.ID),
		zap.String("email_type", payload.EmailType),
		zap.String("recipient", payload.RecipientEmail))
	return nil
}

func buildMessage(cfg config.EmailConfig, payload queue.EmailPayload) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", cfg.FromName, cfg.FromAddress)
	fmt.Fprintf(&b, "To: %s <%s>\r\n", payload.RecipientName, payload.RecipientEmail)
	fmt.Fprintf(&b, "Subject: %s\r\n", payload.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(payload.BodyText)
	b.WriteString("\r\n")
	return []byte(b.String())
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *EmailProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("email worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
			continue
		}
	}
}
