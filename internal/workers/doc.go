/*
Package workers sizes the extraction pool in containerized environments.

runtime.NumCPU reports the host's CPUs, while GOMAXPROCS follows the
container CPU limit. Sizing by GOMAXPROCS keeps a pod limited to 2 cores
from running 64 concurrent decoders on a 64-core node:

	numWorkers := workers.ForCPU(16) // one per available CPU, at most 16

# Environment Variable Override

THUMBNAIL_WORKERS replaces the computed value. Invalid or non-positive
values are logged and ignored; values above the limit are clamped:

	env:
	- name: THUMBNAIL_WORKERS
	  value: "4"
*/
package workers
