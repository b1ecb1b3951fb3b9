package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/noah-isme/arsip-desa-api/internal/models"
)

type auditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type requestInfoKey struct{}

// RequestInfo identifies the client behind a service call for the audit trail.
type RequestInfo struct {
	IP        string
	UserAgent string
}

// WithRequestInfo attaches client details to ctx.
func WithRequestInfo(ctx context.Context, info RequestInfo) context.Context {
	return context.WithValue(ctx, requestInfoKey{}, info)
}

func RequestInfoFrom(ctx context.Context) RequestInfo {
	if info, ok := ctx.Value(requestInfoKey{}).(RequestInfo); ok {
		return info
	}
	return RequestInfo{IP: "system", UserAgent: "arsip-desa-api"}
}

// recordAudit writes an audit entry. Failures are logged and swallowed.
func recordAudit(ctx context.Context, audit auditLogger, logger *zap.Logger, entry *models.AuditLog) {
	if audit == nil || entry == nil {
		return
	}
	info := RequestInfoFrom(ctx)
	entry.IPAddress = info.IP
	entry.UserAgent = info.UserAgent
	if err := audit.CreateAuditLog(ctx, entry); err != nil {
		logger.Warn("failed to write audit log",
			zap.String("action", entry.Action),
			zap.String("resource", entry.Resource),
			zap.Error(err))
	}
}

func auditJSON(v interface{}) []byte {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}

func strPtr(s string) *string {
	return &s
}

func actorPtr(actorID string) *string {
	if actorID == "" {
		return nil
	}
	return &actorID
}
