package workers

import (
	"alumni-net/services"
	"context"
	"log/slog"
	"time"
)

// GraphAuditWorker periodically looks for one-sided connections. With repair
// enabled, a half edge is completed through a regular Connect.
type GraphAuditWorker struct {
	log         *slog.Logger
	connections services.IConnectionService
	interval    time.Duration
	repair      bool
}

func NewGraphAuditWorker(log *slog.Logger, connections services.IConnectionService,
	interval time.Duration, repair bool) *GraphAuditWorker {
	return &GraphAuditWorker{log: log, connections: connections, interval: interval, repair: repair}
}

func (w *GraphAuditWorker) Run(ctx context.Context) error {
	w.log.Info("Starting graph audit worker", "interval", w.interval, "repair", w.repair)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := w.Audit(ctx); err != nil {
				return err
			}
		}
	}
}

// Audit runs a single pass.
func (w *GraphAuditWorker) Audit(ctx context.Context) error {
	broken, err := w.connections.CheckGraph(ctx)
	if err != nil {
		return err
	}
	if len(broken) == 0 {
		w.log.Debug("Connection graph is symmetric")
		return nil
	}

	w.log.Warn("One-sided connections found", "count", len(broken))
	for _, edge := range broken {
		if !w.repair || edge.From == edge.To {
			w.log.Warn("One-sided connection", "from", edge.From, "to", edge.To)
			continue
		}
		if err = w.connections.Connect(ctx, edge.From, edge.To); err != nil {
			w.log.Error("Repair failed", "from", edge.From, "to", edge.To, "error", err)
			continue
		}
		w.log.Info("Connection repaired", "from", edge.From, "to", edge.To)
	}
	return nil
}
