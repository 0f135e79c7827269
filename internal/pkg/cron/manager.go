package cron

import (
	"Volunteer/internal/job"
	log "log/slog"

	"github.com/robfig/cron/v3"
)

type Manager struct {
	engine             *cron.Cron
	reconcileSpec      string
	ledgerReconcileJob *job.LedgerReconcileJob
}

func NewCronManager(reconcileSpec string, ledgerReconcileJob *job.LedgerReconcileJob) *Manager {
	if reconcileSpec == "" {
		reconcileSpec = "@every 30s"
	}
	return &Manager{
		engine:             cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		reconcileSpec:      reconcileSpec,
		ledgerReconcileJob: ledgerReconcileJob,
	}
}

// RegisterJobs 注册定时任务
func (s *Manager) RegisterJobs() error {
	if _, err := s.engine.AddJob(s.reconcileSpec, s.ledgerReconcileJob); err != nil {
		return err
	}
	return nil
}

func (s *Manager) Start() {
	log.Info("Cron 定时任务引擎启动", "ledger_reconcile", s.reconcileSpec)
	s.engine.Start()
}

// Stop 等待正在执行的任务结束
func (s *Manager) Stop() {
	log.Info("Cron 定时任务引擎停止")
	<-s.engine.Stop().Done()
}

// InitCron 注册并启动
func InitCron(mgr *Manager) error {
	if err := mgr.RegisterJobs(); err != nil {
		return err
	}
	mgr.Start()
	return nil
}
