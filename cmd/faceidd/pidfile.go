package main

import (
	"log"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/pkg/errors"
)

// isAlreadyRun reports whether the pid file names a live process.
func isAlreadyRun(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Println("Can not read pid file", err)
		}
		return false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		log.Println("Invalid existing pid file", path)
		return false
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}

func writeLockFile(path string) error {
	err := os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644)
	return errors.Wrapf(err, "Can not write pid file %s", path)
}
