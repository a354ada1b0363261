package config

import (
	"gopkg.in/yaml.v2"
)

const masked = "******"

// Render returns the effective configuration as yaml with credentials masked.
func (c *Config) Render() ([]byte, error) {
	cp := *c
	cp.Database.DSN = mask(cp.Database.DSN)
	cp.Coincheck.AccessKey = mask(cp.Coincheck.AccessKey)
	cp.Coincheck.SecretAccessKey = mask(cp.Coincheck.SecretAccessKey)
	cp.Slack.WebhookURL = mask(cp.Slack.WebhookURL)
	cp.Telegram.Token = mask(cp.Telegram.Token)
	return yaml.Marshal(&cp)
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return masked
}
