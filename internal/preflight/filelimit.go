package preflight

import (
	"fmt"
	"syscall"
)

// descriptorsPerJob covers one probe's stdout and stderr pipes plus the
// directory handle a walk may hold.
const descriptorsPerJob = 4

// descriptorBase covers the two indexers' stdin pipes, the lock file, the
// log file and the standard streams.
const descriptorBase = 32

// RequiredFileDescriptors returns the descriptor limit needed by jobs workers.
func RequiredFileDescriptors(jobs int) uint64 {
	return uint64(descriptorBase + max(jobs, 1)*descriptorsPerJob)
}

// CheckFileDescriptors checks the soft descriptor limit against the worker count.
func (c *Checker) CheckFileDescriptors() CheckResult {
	result := CheckResult{
		Name:     "file_descriptors",
		Required: true,
	}

	var rLimit syscall.Rlimit
	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("failed to check file descriptor limit: %v", err)
		return result
	}

	need := RequiredFileDescriptors(c.jobs)
	result.Message = fmt.Sprintf("%d (needed for %d jobs: %d)", rLimit.Cur, c.jobs, need)
	if uint64(rLimit.Cur) < need {
		result.Status = StatusFail
		result.Details = fmt.Sprintf("Run 'ulimit -n %d' or lower --jobs", need*2)
		return result
	}

	result.Status = StatusPass
	return result
}
