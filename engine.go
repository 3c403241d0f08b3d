package goShield

import (
	"context"
	"errors"
	"log"
	"time"

	internalaudit "github.com/MrEthical07/goShield/internal/audit"
	internalguard "github.com/MrEthical07/goShield/internal/guard"
	"github.com/MrEthical07/goShield/jwt"
	"github.com/MrEthical07/goShield/notify"
	"github.com/MrEthical07/goShield/password"
	"github.com/MrEthical07/goShield/session"
)

// Engine is the authentication orchestrator. Construct one via [Builder.Build]
// at process start; all methods are safe for concurrent use.
type Engine struct {
	config   Config
	users    UserStore
	sessions *session.Manager
	guard    *internalguard.Guard
	notifier Notifier
	audit    *internalaudit.Dispatcher
	metrics  *Metrics
	hasher   *password.Hasher
	tokens   *jwt.Manager
}

// Close flushes and stops the audit dispatcher. Call once on shutdown.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports how many audit events were dropped because the buffer
// was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of all engine metrics.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) metricObserve(id MetricID, d time.Duration) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Observe(id, d)
}

// notifyBestEffort delivers a notification without ever failing the caller.
// The triggering state change has already committed; delivery failure is
// logged and counted.
func (e *Engine) notifyBestEffort(ctx context.Context, n Notification) {
	if e == nil || e.notifier == nil {
		return
	}
	if err := e.notifier.Send(ctx, n); err != nil {
		e.metricInc(MetricNotifyFailure)
		log.Printf("goShield: notification %q to %s failed: %v", n.Template, n.Recipient, err)
	}
}

// recordActivity appends an activity row without failing the caller. The
// trail is an observability surface; losing one row must not abort a flow
// that already committed.
func (e *Engine) recordActivity(ctx context.Context, act *session.Activity) {
	if e == nil || e.sessions == nil {
		return
	}
	if act.Fingerprint == "" {
		act.Fingerprint = e.sessions.Fingerprint(requestMetaFromContext(ctx))
	}
	if err := e.sessions.Record(ctx, act); err != nil {
		log.Printf("goShield: activity append (%s) failed: %v", act.Type, err)
	}
}

// mapSessionErr translates session-layer sentinels into engine sentinels.
func mapSessionErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, session.ErrNotFound):
		return ErrSessionNotFound
	case errors.Is(err, session.ErrExpired):
		return ErrSessionExpired
	case errors.Is(err, session.ErrInactive):
		return ErrSessionNotFound
	default:
		return err
	}
}

func detailFromNotification(loc session.Location) string {
	if !loc.Known {
		return "unknown"
	}
	if loc.City != "" && loc.Country != "" {
		return loc.City + ", " + loc.Country
	}
	return loc.Country
}

// suspiciousLoginNotification builds the alert payload for an anomalous login.
func suspiciousLoginNotification(email string, sess *session.Session, meta session.RequestMeta) notify.Notification {
	browser, os, deviceType := session.ParseUserAgent(meta.UserAgent)
	return notify.Notification{
		Recipient: email,
		Template:  notify.TemplateSuspiciousLogin,
		Data: map[string]string{
			"address":  meta.Address,
			"location": detailFromNotification(sess.Location),
			"device":   browser + "/" + os + "/" + deviceType,
		},
	}
}
