package config

import (
	"crypto/tls"
	"time"

	"github.com/rs/zerolog/log"
	mail "github.com/xhit/go-simple-mail/v2"
)

// ProvideSmtp connects to the configured SMTP endpoint. Email delivery is a
// capability, not a dependency: without a host the service runs with a nil
// client and notifications are only persisted.
func ProvideSmtp(config *Config) (*mail.SMTPClient, error) {
	if config.EmailConfig.SmtpHost == "" {
		log.Info().Msg("No SMTP host configured, email delivery disabled")
		return nil, nil
	}

	server := mail.NewSMTPClient()
	server.Host = config.EmailConfig.SmtpHost
	server.Port = config.EmailConfig.SmtpPort
	server.Username = config.EmailConfig.SmtpUser
	server.Password = config.EmailConfig.SmtpPassword
	server.Encryption = mail.EncryptionSTARTTLS
	server.TLSConfig = &tls.Config{InsecureSkipVerify: config.EmailConfig.SmtpSkipInsecure}
	server.SendTimeout = 10 * time.Second
	server.ConnectTimeout = 10 * time.Second
	server.KeepAlive = true

	smtpClient, err := server.Connect()
	if err != nil {
		return nil, err
	}

	return smtpClient, nil
}
