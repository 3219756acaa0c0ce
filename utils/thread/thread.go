//go:build linux && cgo

// Package thread pins the calling OS thread to a CPU core. Callers lock
// the goroutine to its thread with runtime.LockOSThread first.
package thread

/*
   #define _GNU_SOURCE
   #include <sched.h>
   #include <pthread.h>

   int set_cpu_affinity(int core_id) {
       cpu_set_t cpuset;
       CPU_ZERO(&cpuset);
       CPU_SET(core_id, &cpuset);
       return pthread_setaffinity_np(pthread_self(), sizeof(cpu_set_t), &cpuset);
   }
*/
import "C"

import "log/slog"

func SetCPUAffinity(coreID int) {
	if rc := C.set_cpu_affinity(C.int(coreID)); rc != 0 {
		slog.Warn("Can not set CPU affinity", "core", coreID, "errno", int(rc))
	}
}
