package instance

import (
	"os"
	"strings"
)

var idEnvVars = []string{"WORKER_ID", "DYNO", "HOSTNAME"}

// GetID identifies the running process in logs: the first of WORKER_ID,
// DYNO or HOSTNAME that is set, else "local".
func GetID() string {
	for _, key := range idEnvVars {
		if id := strings.TrimSpace(os.Getenv(key)); id != "" {
			return id
		}
	}
	return "local"
}
