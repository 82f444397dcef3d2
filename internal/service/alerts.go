package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/appsforbuild-cmyk/evalifyai-sub001/internal/domain"
)

const (
	AudienceManager = "manager"
	AudienceHR      = "hr"

	alertSent       = "sent"
	alertFailed     = "failed"
	alertSuppressed = "suppressed"

	defaultActionURLBase = "/retention"
	alertKeyPrefix       = "attrition:alert"
)

// DispatchResult counts what happened to each candidate alert.
type DispatchResult struct {
	Sent       int
	Failed     int
	Suppressed int
}

// AlertDispatcher sends tiered retention alerts. Every failure is logged and
// counted; none is returned.
type AlertDispatcher struct {
	directory     Directory
	sink          NotificationSink
	suppressor    AlertSuppressor
	window        time.Duration
	actionURLBase string
	metrics       Metrics
	logger        *zap.Logger
	now           func() time.Time
}

type DispatcherOption func(*AlertDispatcher)

// WithSuppression limits alerts to one per recipient, employee and risk
// level within window. A zero window or nil suppressor disables it.
func WithSuppression(s AlertSuppressor, window time.Duration) DispatcherOption {
	return func(d *AlertDispatcher) {
		d.suppressor = s
		d.window = window
	}
}

func WithActionURLBase(base string) DispatcherOption {
	return func(d *AlertDispatcher) {
		if base != "" {
			d.actionURLBase = strings.TrimRight(base, "/")
		}
	}
}

func WithDispatcherMetrics(m Metrics) DispatcherOption {
	return func(d *AlertDispatcher) {
		if m != nil {
			d.metrics = m
		}
	}
}

func WithDispatcherClock(now func() time.Time) DispatcherOption {
	return func(d *AlertDispatcher) {
		if now != nil {
			d.now = now
		}
	}
}

func NewAlertDispatcher(directory Directory, sink NotificationSink, logger *zap.Logger, opts ...DispatcherOption) *AlertDispatcher {
	if directory == nil {
		panic("directory must not be nil")
	}
	if sink == nil {
		panic("notification sink must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &AlertDispatcher{
		directory:     directory,
		sink:          sink,
		actionURLBase: defaultActionURLBase,
		metrics:       noopMetrics{},
		logger:        logger.Named("dispatcher"),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch alerts the employee's team managers for high and critical risk,
// and every HR user for critical risk. Lower levels are a no-op.
func (d *AlertDispatcher) Dispatch(ctx context.Context, employee domain.Employee, a domain.Assessment) DispatchResult {
	var res DispatchResult
	if !a.RiskLevel.Alerting() {
		return res
	}

	managers, err := d.directory.TeamManagers(ctx, employee.ID)
	if err != nil {
		d.logger.Error("failed to resolve team managers", zap.String("employee_id", employee.ID), zap.Error(err))
	}
	for _, m := range managers {
		d.send(ctx, &res, employee, m, AudienceManager, d.managerAlert(employee, a, m))
	}

	if a.RiskLevel != domain.RiskCritical {
		return res
	}

	hrUsers, err := d.directory.HRUsers(ctx)
	if err != nil {
		d.logger.Error("failed to resolve HR users", zap.String("employee_id", employee.ID), zap.Error(err))
	}
	for _, u := range hrUsers {
		d.send(ctx, &res, employee, u, AudienceHR, d.hrAlert(employee, a, u))
	}
	return res
}

func (d *AlertDispatcher) send(ctx context.Context, res *DispatchResult, employee domain.Employee, recipient domain.User, audience string, n domain.Notification) {
	if recipient.ID == employee.ID {
		return
	}

	if !d.claim(ctx, employee.ID, recipient.ID, n) {
		res.Suppressed++
		d.metrics.AlertResult(audience, alertSuppressed)
		return
	}

	if err := d.sink.Send(ctx, n); err != nil {
		res.Failed++
		d.metrics.AlertResult(audience, alertFailed)
		d.logger.Warn("failed to send retention alert",
			zap.String("employee_id", employee.ID),
			zap.String("recipient_id", recipient.ID),
			zap.String("audience", audience),
			zap.Error(err))
		return
	}
	res.Sent++
	d.metrics.AlertResult(audience, alertSent)
}

// claim reports whether the alert may be sent. Suppressor errors fail open.
func (d *AlertDispatcher) claim(ctx context.Context, employeeID, recipientID string, n domain.Notification) bool {
	if d.suppressor == nil || d.window <= 0 {
		return true
	}
	key := fmt.Sprintf("%s:%s:%s:%s", alertKeyPrefix, employeeID, n.Metadata["risk_level"], recipientID)
	ok, err := d.suppressor.Claim(ctx, key, d.window)
	if err != nil {
		d.logger.Warn("alert suppression unavailable, sending anyway", zap.String("employee_id", employeeID), zap.Error(err))
		return true
	}
	return ok
}

func (d *AlertDispatcher) managerAlert(e domain.Employee, a domain.Assessment, to domain.User) domain.Notification {
	name := e.Name()
	return d.notification(e, a, to, AudienceManager,
		fmt.Sprintf("Retention Alert: %s", name),
		fmt.Sprintf("%s has been flagged with %s attrition risk (score %d/100). Consider scheduling a check-in.",
			name, a.RiskLevel, a.RiskScore))
}

func (d *AlertDispatcher) hrAlert(e domain.Employee, a domain.Assessment, to domain.User) domain.Notification {
	name := e.Name()
	return d.notification(e, a, to, AudienceHR,
		fmt.Sprintf("Critical Retention Risk: %s", name),
		fmt.Sprintf("Immediate action recommended: %s is at %s attrition risk (score %d/100), predicted window %s.",
			name, a.RiskLevel, a.RiskScore, a.PredictedTimeframe))
}

func (d *AlertDispatcher) notification(e domain.Employee, a domain.Assessment, to domain.User, audience, title, message string) domain.Notification {
	return domain.Notification{
		RecipientID: to.ID,
		Title:       title,
		Message:     message,
		Type:        domain.NotificationRetentionAlert,
		ActionURL:   d.actionURLBase + "/" + e.ID,
		Metadata: map[string]any{
			"employee_id":         e.ID,
			"risk_score":          a.RiskScore,
			"risk_level":          string(a.RiskLevel),
			"predicted_timeframe": string(a.PredictedTimeframe),
			"audience":            audience,
		},
		CreatedAt: d.now().UTC(),
	}
}
