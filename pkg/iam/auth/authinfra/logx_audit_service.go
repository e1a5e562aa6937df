package authinfra

import (
	"context"
	"time"

	"github.com/openhire/openhire/pkg/kernel"
	"github.com/openhire/openhire/pkg/logx"
)

// LogxAuditService implements auth.AuditService and usersrv.AuditService
// with structured logx events. The log stream is the audit trail; ship it to
// whatever retention the deployment requires.
type LogxAuditService struct{}

func NewLogxAuditService() *LogxAuditService {
	return &LogxAuditService{}
}

func (s *LogxAuditService) LogLoginAttempt(_ context.Context, userID kernel.UserID, success bool, ip string, userAgent string) {
	logx.WithFields(logx.Fields{
		"audit_event": "login_attempt",
		"user_id":     userID,
		"success":     success,
		"ip":          ip,
		"user_agent":  userAgent,
		"timestamp":   time.Now(),
	}).Info("Audit: login attempt")
}

func (s *LogxAuditService) LogLogout(_ context.Context, userID kernel.UserID, ip string) {
	logx.WithFields(logx.Fields{
		"audit_event": "logout",
		"user_id":     userID,
		"ip":          ip,
		"timestamp":   time.Now(),
	}).Info("Audit: logout")
}

func (s *LogxAuditService) LogTokenRefresh(_ context.Context, userID kernel.UserID, ip string) {
	logx.WithFields(logx.Fields{
		"audit_event": "token_refresh",
		"user_id":     userID,
		"ip":          ip,
		"timestamp":   time.Now(),
	}).Info("Audit: token refresh")
}

func (s *LogxAuditService) LogAccountCreated(_ context.Context, userID kernel.UserID, role kernel.Role, ip string) {
	logx.WithFields(logx.Fields{
		"audit_event": "account_created",
		"user_id":     userID,
		"role":        role,
		"ip":          ip,
		"timestamp":   time.Now(),
	}).Info("Audit: account created")
}

func (s *LogxAuditService) LogPasswordChanged(_ context.Context, userID kernel.UserID, ip string) {
	logx.WithFields(logx.Fields{
		"audit_event": "password_changed",
		"user_id":     userID,
		"ip":          ip,
		"timestamp":   time.Now(),
	}).Info("Audit: password changed")
}

func (s *LogxAuditService) LogAccountDeactivated(_ context.Context, userID kernel.UserID, actorID kernel.UserID) {
	logx.WithFields(logx.Fields{
		"audit_event": "account_deactivated",
		"user_id":     userID,
		"actor_id":    actorID,
		"timestamp":   time.Now(),
	}).Info("Audit: account deactivated")
}
