package provisioning

import (
	"strings"
	"unicode"
)

// validPort is the inclusive port range check shared by every form.
func validPort(p PortNumber) bool {
	return p.Set && !p.Invalid && p.Value >= 1 && p.Value <= 65535
}

// validHost accepts an IP literal or a non-empty, whitespace-free
// hostname. Resolution is not attempted here; DNS decides later.
func validHost(value string) bool {
	v := strings.TrimSpace(value)
	if v == "" {
		return false
	}
	for _, r := range v {
		if unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// validateManual checks a manual (or reconfigure) submission.
// Returns a field→code map, empty when the input is valid.
func validateManual(in ManualInput) map[string]string {
	errs := make(map[string]string)

	if !validHost(in.HubIP) {
		errs["hub_ip"] = CodeInvalidHost
	}
	if !validPort(in.HubPort) {
		errs["hub_port"] = CodeInvalidPort
	}
	if strings.TrimSpace(in.DoorID) == "" {
		errs["door_id"] = CodeRequired
	}
	if strings.TrimSpace(in.DoorName) == "" {
		errs["door_name"] = CodeRequired
	}

	return errs
}

// validateDatabase checks a database submission.
// Returns a field→code map, empty when the input is valid.
func validateDatabase(in DatabaseInput) map[string]string {
	errs := make(map[string]string)

	if !validHost(in.HubIP) {
		errs["hub_ip"] = CodeInvalidHost
	}
	if strings.TrimSpace(in.DBHost) == "" {
		errs["db_host"] = CodeRequired
	}
	if !validPort(in.DBPort) {
		errs["db_port"] = CodeInvalidPort
	}
	if strings.TrimSpace(in.DBName) == "" {
		errs["db_name"] = CodeRequired
	}
	if strings.TrimSpace(in.DBUser) == "" {
		errs["db_user"] = CodeRequired
	}
	if in.DBPassword == "" {
		errs["db_password"] = CodeRequired
	}

	return errs
}
