package config

import (
	"erp.GO/cron/jobs"
)

// Map of job names to job functions
type CronJob struct {
	Schedule string
	Job      func(...string)
}

var CronJobs = map[string]CronJob{
	"lowstockjob": {Schedule: "0 * * * *", Job: jobs.LowStockJob},
	// Add more jobs here
}
