package rate

import "strings"

func (l *Limiter) emailKey(email string) string {
	return l.config.Prefix + ":email:" + strings.ToLower(strings.TrimSpace(email))
}

func (l *Limiter) ipKey(ip string) string {
	return l.config.Prefix + ":ip:" + ip
}
