package filter

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-message"
	"github.com/emersion/go-message/mail"
	"github.com/emersion/go-message/textproto"
	"github.com/emersion/go-smtp"
	"github.com/mikey/spamguard/internal/config"
	"github.com/mikey/spamguard/internal/ports"
	"github.com/mikey/spamguard/internal/utils"
	"github.com/mikey/spamguard/internal/whitelist"
	"go.uber.org/zap"
)

const analysisErrorHeader = "X-Spam-Analysis-Error"

// PostfixFilter implements a Postfix content filter
type PostfixFilter struct {
	service   ports.SpamAnalyzer
	whitelist *whitelist.Checker
	text      *utils.TextProcessor
	logger    *zap.Logger
	cfg       config.SMTPConfig
	server    *smtp.Server
	listener  net.Listener

	// forward re-injects a processed message into Postfix
	forward func(sender string, recipients []string, data []byte) error
}

var _ ports.Frontend = (*PostfixFilter)(nil)

// NewPostfixFilter creates a new Postfix content filter
func NewPostfixFilter(
	service ports.SpamAnalyzer,
	checker *whitelist.Checker,
	textProcessor *utils.TextProcessor,
	logger *zap.Logger,
	cfg config.SMTPConfig,
) *PostfixFilter {
	// If subject prefix is not set but modify subject is enabled, use default prefix
	if cfg.SubjectPrefix == "" && cfg.ModifySubject {
		cfg.SubjectPrefix = "[**SPAM**] "
	}

	f := &PostfixFilter{
		service:   service,
		whitelist: checker,
		text:      textProcessor,
		logger:    logger,
		cfg:       cfg,
	}
	f.forward = f.sendToPostfix
	return f
}

// Name identifies the frontend in logs
func (f *PostfixFilter) Name() string {
	return "smtp"
}

// Start starts the Postfix filter service
func (f *PostfixFilter) Start() error {
	f.server = smtp.NewServer(&smtpBackend{filter: f})

	f.server.Addr = f.cfg.ListenAddress
	f.server.Domain = "localhost"
	f.server.ReadTimeout = 30 * time.Second
	f.server.WriteTimeout = 30 * time.Second
	f.server.MaxMessageBytes = 30 * 1024 * 1024 // 30MB
	f.server.MaxRecipients = 50

	ln, err := net.Listen("tcp", f.cfg.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", f.cfg.ListenAddress, err)
	}

	f.listener = ln
	f.logger.Info("Postfix filter starting", zap.String("address", ln.Addr().String()))

	go func() {
		if err := f.server.Serve(ln); err != nil && !errors.Is(err, smtp.ErrServerClosed) {
			f.logger.Error("SMTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop stops the Postfix filter service
func (f *PostfixFilter) Stop() error {
	if f.server == nil {
		return nil
	}
	err := f.server.Close()
	// Serve may not have registered the listener yet
	f.listener.Close()
	if err != nil && !errors.Is(err, smtp.ErrServerClosed) {
		return err
	}
	f.logger.Info("Postfix filter stopped")
	return nil
}

// filterMessage analyzes one raw message and returns it with verdict headers added.
// A non-nil error means the message must be rejected.
func (f *PostfixFilter) filterMessage(ctx context.Context, sender string, raw []byte) ([]byte, error) {
	br := bufio.NewReader(bytes.NewReader(raw))
	header, err := textproto.ReadHeader(br)
	if err != nil {
		return nil, fmt.Errorf("failed to parse message header: %w", err)
	}
	body, err := io.ReadAll(br)
	if err != nil {
		return nil, fmt.Errorf("failed to read message body: %w", err)
	}
	h := mail.Header{Header: message.Header{Header: header}}

	senderDomain := "unknown"
	if parts := strings.Split(sender, "@"); len(parts) == 2 {
		senderDomain = parts[1]
	}

	isSpam := false
	var analysisErr error

	if f.whitelist.IsWhitelisted(sender) {
		f.logger.Info("Skipping spam check for whitelisted domain",
			zap.String("sender", sender),
			zap.String("action", "whitelist_bypass"))
	} else {
		text, err := extractTextFromMessage(bytes.NewReader(raw))
		if err != nil {
			analysisErr = fmt.Errorf("extract text: %w", err)
		} else {
			verdict, err := f.service.AnalyzeText(ctx, f.text.SanitizeUTF8(text))
			if err != nil {
				analysisErr = err
			} else {
				isSpam = verdict.IsSpam
			}
		}
	}

	if analysisErr != nil {
		f.logger.Error("Failed to analyze email",
			zap.Error(analysisErr),
			zap.String("sender", sender),
			zap.String("sender_domain", senderDomain))
	}

	// Only reject if it's spam AND there was no error in analysis
	if isSpam && f.cfg.BlockSpam {
		f.logger.Info("Rejecting spam email",
			zap.String("from", sender),
			zap.String("sender_domain", senderDomain))
		return nil, &smtp.SMTPError{
			Code:         550,
			EnhancedCode: smtp.EnhancedCode{5, 7, 1},
			Message:      "Rejected as spam",
		}
	}

	h.Set(f.cfg.SpamHeader, fmt.Sprintf("%t", isSpam))
	if isSpam {
		h.Set(f.cfg.LabelHeader, "1")
	} else {
		h.Set(f.cfg.LabelHeader, "0")
	}
	if analysisErr != nil {
		h.Set(analysisErrorHeader, analysisErr.Error())
	}

	if isSpam && f.cfg.ModifySubject && f.cfg.SubjectPrefix != "" {
		subject, err := h.Subject()
		if err != nil {
			subject = h.Get("Subject")
		}
		if !strings.HasPrefix(subject, f.cfg.SubjectPrefix) {
			h.SetSubject(f.cfg.SubjectPrefix + subject)
		}
	}

	var out bytes.Buffer
	if err := textproto.WriteHeader(&out, h.Header.Header); err != nil {
		return nil, fmt.Errorf("failed to write message header: %w", err)
	}
	out.Write(body)

	f.logger.Info("Processed email",
		zap.String("from", sender),
		zap.String("sender_domain", senderDomain),
		zap.Bool("is_spam", isSpam))

	return out.Bytes(), nil
}

// sendToPostfix sends the processed email back to Postfix on the configured port using go-smtp
func (f *PostfixFilter) sendToPostfix(sender string, recipients []string, emailData []byte) error {
	postfixAddr := net.JoinHostPort(f.cfg.PostfixAddress, fmt.Sprint(f.cfg.PostfixPort))

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	conn, err := net.DialTimeout("tcp", postfixAddr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to Postfix: %w", err)
	}
	if err := conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}
	if err := c.Mail(sender, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	recipientOK := false
	for _, recipient := range recipients {
		if err := c.Rcpt(recipient, nil); err != nil {
			f.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", recipient),
				zap.Error(err))
			continue
		}
		recipientOK = true
	}
	if !recipientOK {
		return fmt.Errorf("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}
	if _, err := wc.Write(emailData); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send email data: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		// The message has already been accepted at this point
		f.logger.Warn("QUIT command failed", zap.Error(err))
	}

	return nil
}

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	filter *PostfixFilter
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{filter: b.filter}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	filter     *PostfixFilter
	sender     string
	recipients []string
}

// Reset resets the session state
func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = nil
}

// Mail sets the sender address
func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

// Rcpt adds a recipient
func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data filters the message and hands it back to Postfix
func (s *smtpSession) Data(r io.Reader) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		s.filter.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filtered, err := s.filter.filterMessage(ctx, s.sender, raw)
	if err != nil {
		return err
	}

	if !s.filter.cfg.PostfixEnabled {
		s.filter.logger.Warn("Postfix forwarding disabled, this is likely a misconfiguration")
		return nil
	}

	if err := s.filter.forward(s.sender, s.recipients, filtered); err != nil {
		s.filter.logger.Error("Failed to send email back to Postfix",
			zap.Error(err),
			zap.String("sender", s.sender))
		return err
	}

	return nil
}

// Logout handles SMTP logout
func (s *smtpSession) Logout() error {
	return nil
}
