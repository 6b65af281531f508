// Package jobs provides scheduled background tasks for the dispatch service.
//
// Jobs are cron based (github.com/robfig/cron/v3, with a seconds field) and are
// managed through JobManager:
//
//	jobManager := jobs.NewJobManager(
//		jobs.NewStaleMissionJob(handler, command, policy.WatchdogSchedule, log),
//	)
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal(err)
//	}
//	defer jobManager.StopAll()
//
// # Available Jobs
//
// StaleMissionJob sweeps for missions whose last timeline entry is older than
// the policy threshold and emits mission.stale on the alerts channel. It only
// reports: recovering a mission is an operator decision.
package jobs
