package cron

import (
	"Larder/internal/job"
	log "log/slog"

	"github.com/robfig/cron/v3"
)

type Manager struct {
	engine        *cron.Cron
	reconcileSpec string
	reconcileJob  *job.AggregateReconcileJob
}

// NewCronManager reconcileSpec 使用带秒的六段 cron 表达式
func NewCronManager(reconcileSpec string, reconcileJob *job.AggregateReconcileJob) *Manager {
	return &Manager{
		engine:        cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		reconcileSpec: reconcileSpec,
		reconcileJob:  reconcileJob,
	}
}

// RegisterJobs 注册定时任务，表达式为空时跳过
func (s *Manager) RegisterJobs() error {
	if s.reconcileSpec == "" {
		log.Info("aggregate reconcile job disabled")
		return nil
	}
	if _, err := s.engine.AddJob(s.reconcileSpec, s.reconcileJob); err != nil {
		return err
	}
	return nil
}

// Run 注册并启动所有任务
func (s *Manager) Run() error {
	log.Info("Cron Jobs starting...")
	if err := s.RegisterJobs(); err != nil {
		return err
	}
	s.Start()
	return nil
}

func (s *Manager) Start() {
	log.Info("Cron 定时任务引擎启动")
	s.engine.Start()
}

func (s *Manager) Stop() {
	log.Info("Cron 定时任务引擎停止")
	<-s.engine.Stop().Done()
}

// Entries 已注册的任务数
func (s *Manager) Entries() int {
	return len(s.engine.Entries())
}
