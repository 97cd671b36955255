package provisioning

import "testing"

func TestValidHost(t *testing.T) {
	tests := []struct {
		host string
		want bool
	}{
		{"10.0.0.5", true},
		{"2001:db8::1", true},
		{"mikvah-pc", true},
		{"hub.local", true},
		{" padded.host ", true}, // trimmed before the check
		{"", false},
		{"   ", false},
		{"two words", false},
		{"tab\thost", false},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			if got := validHost(tt.host); got != tt.want {
				t.Errorf("validHost(%q) = %v, want %v", tt.host, got, tt.want)
			}
		})
	}
}

func TestValidPort(t *testing.T) {
	tests := []struct {
		name string
		port PortNumber
		want bool
	}{
		{"typical", PortNumber{Value: 4960, Set: true}, true},
		{"min", PortNumber{Value: 1, Set: true}, true},
		{"max", PortNumber{Value: 65535, Set: true}, true},
		{"zero", PortNumber{Value: 0, Set: true}, false},
		{"negative", PortNumber{Value: -1, Set: true}, false},
		{"too large", PortNumber{Value: 65536, Set: true}, false},
		{"unset", PortNumber{}, false},
		{"malformed", PortNumber{Set: true, Invalid: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := validPort(tt.port); got != tt.want {
				t.Errorf("validPort(%+v) = %v, want %v", tt.port, got, tt.want)
			}
		})
	}
}

func TestValidateManual(t *testing.T) {
	in := ManualInput{
		HubIP:    "bad host",
		HubPort:  PortNumber{Set: true, Invalid: true},
		DoorID:   "",
		DoorName: "Front Door",
	}

	errs := validateManual(in)
	want := map[string]string{
		"hub_ip":   CodeInvalidHost,
		"hub_port": CodeInvalidPort,
		"door_id":  CodeRequired,
	}
	for field, code := range want {
		if errs[field] != code {
			t.Errorf("errs[%q] = %q, want %q", field, errs[field], code)
		}
	}
	if _, ok := errs["door_name"]; ok {
		t.Error("door_name should be valid")
	}
}

func TestValidateDatabase(t *testing.T) {
	in := DatabaseInput{
		HubIP:      "10.0.0.5",
		DBHost:     "",
		DBPort:     PortNumber{Value: 1433, Set: true},
		DBName:     " ",
		DBUser:     "mysoft",
		DBPassword: "",
	}

	errs := validateDatabase(in)
	want := map[string]string{
		"db_host":     CodeRequired,
		"db_name":     CodeRequired,
		"db_password": CodeRequired,
	}
	for field, code := range want {
		if errs[field] != code {
			t.Errorf("errs[%q] = %q, want %q", field, errs[field], code)
		}
	}
	for _, field := range []string{"hub_ip", "db_port", "db_user"} {
		if _, ok := errs[field]; ok {
			t.Errorf("%s should be valid", field)
		}
	}
}
