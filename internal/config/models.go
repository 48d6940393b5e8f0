package config

import (
	"fmt"
	"time"
)

// ModelConfig represents the location of the pre-trained artifacts
type ModelConfig struct {
	ClassifierPath string
	VectorizerPath string
}

// ServerConfig represents the configuration for the HTTP front end
type ServerConfig struct {
	ListenAddress   string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	MaxBodyBytes    int64
}

// SMTPConfig represents the configuration for the Postfix content filter
type SMTPConfig struct {
	Enabled            bool
	ListenAddress      string
	BlockSpam          bool
	SpamHeader         string
	LabelHeader        string
	PostfixEnabled     bool
	PostfixAddress     string
	PostfixPort        int
	ModifySubject      bool
	SubjectPrefix      string
	WhitelistedDomains []string
}

// GetModel returns the artifact configuration
func (c *Config) GetModel() ModelConfig {
	return ModelConfig{
		ClassifierPath: c.GetString("model.classifier_path"),
		VectorizerPath: c.GetString("model.vectorizer_path"),
	}
}

// GetServer returns the HTTP server configuration
func (c *Config) GetServer() (ServerConfig, error) {
	durations := map[string]*time.Duration{}
	cfg := ServerConfig{
		ListenAddress: c.GetString("server.listen_address"),
		MaxBodyBytes:  c.GetInt64("server.max_body_bytes"),
	}
	durations["server.read_timeout"] = &cfg.ReadTimeout
	durations["server.write_timeout"] = &cfg.WriteTimeout
	durations["server.shutdown_timeout"] = &cfg.ShutdownTimeout

	for key, dst := range durations {
		d, err := c.GetDuration(key)
		if err != nil {
			return ServerConfig{}, fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = d
	}

	return cfg, nil
}

// GetSMTP returns the SMTP content filter configuration
func (c *Config) GetSMTP() SMTPConfig {
	return SMTPConfig{
		Enabled:            c.GetBool("smtp.enabled"),
		ListenAddress:      c.GetString("smtp.listen_address"),
		BlockSpam:          c.GetBool("smtp.block_spam"),
		SpamHeader:         c.GetString("smtp.headers.spam"),
		LabelHeader:        c.GetString("smtp.headers.label"),
		PostfixEnabled:     c.GetBool("smtp.postfix.enabled"),
		PostfixAddress:     c.GetString("smtp.postfix.address"),
		PostfixPort:        c.GetInt("smtp.postfix.port"),
		ModifySubject:      c.GetBool("smtp.modify_subject"),
		SubjectPrefix:      c.GetString("smtp.subject_prefix"),
		WhitelistedDomains: c.GetStringSlice("smtp.whitelisted_domains"),
	}
}
