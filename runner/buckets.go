package runner

var defaultHistogramBuckets = []float64{
	0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 300,
}

var customBuckets = map[string][]float64{
	"sheetsync_job_duration": {
		0.1, 0.5, 1, 5, 10, 30, 60, 120, 300, 600, 1800, // 100ms to 30 minutes
	},
}
