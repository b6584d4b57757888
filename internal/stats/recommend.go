package stats

import "time"

// Advisory thresholds.
const (
	successRateFloor  = 0.95
	p95Ceiling        = 5 * time.Second
	throughputFloor   = 10.0  // requests per second
	cpuEstimateLimit  = 100.0 // CPU-seconds
	memEstimateLimitM = 1000.0
)

// HealthyMessage is the single advisory emitted when no rule fires.
const HealthyMessage = "System performing well under stress - current configuration appears adequate"

// rule is one independent predicate -> message pair. Rules are evaluated
// in full against the final report; each contributes zero or one advisory.
type rule struct {
	name    string
	applies func(Report) bool
	message string
}

// rules is the ordered advisory rule set. Order only affects the message
// order in the report, never whether a rule fires.
var rules = []rule{
	{
		name:    "stability",
		applies: func(r Report) bool { return r.SuccessRate < successRateFloor },
		message: "Success rate below 95% - investigate error handling and system stability",
	},
	{
		name:    "latency",
		applies: func(r Report) bool { return r.P95ResponseTime > p95Ceiling },
		message: "95th percentile response time > 5s - optimize performance or increase resources",
	},
	{
		name:    "throughput",
		applies: func(r Report) bool { return r.RequestsPerSecond < throughputFloor },
		message: "Throughput below 10 req/s - consider horizontal scaling or performance optimization",
	},
	{
		name:    "cpu",
		applies: func(r Report) bool { return r.CPUEstimateSeconds > cpuEstimateLimit },
		message: "High CPU usage estimated - consider vertical scaling or code optimization",
	},
	{
		name:    "memory",
		applies: func(r Report) bool { return r.MemoryEstimateMB > memEstimateLimitM },
		message: "High memory usage estimated - investigate memory leaks or increase memory limits",
	},
}

// recommend evaluates every rule against the computed report fields and
// returns the advisories. A report that trips nothing gets exactly one
// healthy message.
func recommend(r Report) []string {
	var out []string
	for _, rule := range rules {
		if rule.applies(r) {
			out = append(out, rule.message)
		}
	}

	if len(out) == 0 {
		out = append(out, HealthyMessage)
	}

	return out
}
