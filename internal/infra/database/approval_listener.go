package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"volunteer_feedback_reminders/internal/domain/hours"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

const approvalChannel = "hours_approved"

// ApprovalListener receives hour approvals through LISTEN/NOTIFY on the hours_approved channel.
type ApprovalListener struct {
	dsn    string
	logger *logrus.Entry
}

func NewApprovalListener(dsn string, logger *logrus.Entry) *ApprovalListener {
	return &ApprovalListener{dsn: dsn, logger: logger.WithField("component", "pg_approval_listener")}
}

func (l *ApprovalListener) Watch(ctx context.Context, handle hours.ApprovalHandler) error {
	listener := pq.NewListener(l.dsn, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			l.logger.WithError(err).WithField("event", ev).Warn("Listener connection event")
		}
	})
	defer listener.Close()

	if err := listener.Listen(approvalChannel); err != nil {
		return fmt.Errorf("failed to listen on %s: %w", approvalChannel, err)
	}
	l.logger.Info("Listening for hour approvals")

	ping := time.NewTicker(90 * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case n := <-listener.Notify:
			if n == nil {
				// connection was re-established; approvals in between are picked up by the sweep
				continue
			}
			volunteerID := strings.TrimSpace(n.Extra)
			if volunteerID == "" {
				continue
			}
			handle(ctx, volunteerID)
		case <-ping.C:
			go func() {
				if err := listener.Ping(); err != nil {
					l.logger.WithError(err).Warn("Listener ping failed")
				}
			}()
		}
	}
}
