// Package memory keeps the Go heap inside the container's memory budget and
// sheds load when it is about to run out.
//
// # GOMEMLIMIT
//
// Go detects cgroup CPU limits but not memory limits. [ConfigureFromEnv]
// derives GOMEMLIMIT from the Kubernetes Downward API:
//
//   - GOMEMLIMIT: standard Go variable; when set it wins and nothing changes
//   - MEMORY_LIMIT: container memory limit in bytes
//   - MEMORY_RATIO: share of MEMORY_LIMIT for the Go heap (default 0.75)
//
// GOMEMLIMIT only governs the Go heap. Demuxer, decoder and filter buffers
// are allocated by the codec library outside of it, which is why the
// default ratio leaves a quarter of the container free:
//
//	env:
//	- name: MEMORY_LIMIT
//	  valueFrom:
//	    resourceFieldRef:
//	      resource: limits.memory
//
// # Load Shedding
//
// A [Monitor] samples heap usage every CheckInterval. When usage reaches
// the critical mark, [Monitor.Overloaded] turns true and the thumbnail
// handler answers 503 until usage falls back under the high mark:
//
//	monitor := memory.NewMonitor(memory.DefaultConfig())
//	monitor.Start()
//	defer monitor.Stop()
//
//	if monitor.Overloaded() {
//	    // refuse the request
//	}
package memory
