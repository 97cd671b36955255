package provisioning

import (
	"strconv"

	"github.com/onoffautomations/doorcore/internal/discovery"
)

// Form builders. Each returns the Step the UI should render, carrying
// defaults and (on failed validation) field error codes. Previously entered
// values are passed back as defaults so nothing the user typed is lost.
// The database password is the one exception: it is never echoed back.

// modeStep renders the auto/manual mode selection.
func (m *Manager) modeStep(flowID string, errs map[string]string) *Step {
	return &Step{
		FlowID: flowID,
		Step:   StepModeSelect,
		Fields: []Field{
			{
				Name:     "mode",
				Type:     "select",
				Required: true,
				Default:  string(ModeAuto),
				Options: []Option{
					{Value: string(ModeAuto), Label: "Auto-detect from database"},
					{Value: string(ModeManual), Label: "Manual configuration"},
				},
			},
		},
		Errors: errs,
	}
}

// manualStep renders the manual door configuration form.
func (m *Manager) manualStep(flowID string, defaults ManualInput, errs map[string]string) *Step {
	return &Step{
		FlowID: flowID,
		Step:   StepManual,
		Fields: []Field{
			{Name: "hub_ip", Type: "string", Required: true, Default: defaults.HubIP},
			{Name: "hub_port", Type: "integer", Required: true, Default: portDefault(defaults.HubPort)},
			{Name: "door_id", Type: "string", Required: true, Default: defaults.DoorID},
			{Name: "door_name", Type: "string", Required: true, Default: defaults.DoorName},
		},
		Errors: errs,
	}
}

// manualDefaults returns the initial manual form values from configuration.
func (m *Manager) manualDefaults() ManualInput {
	return ManualInput{
		HubIP:   m.hubCfg.DefaultHost,
		HubPort: PortNumber{Value: m.hubCfg.DefaultPort, Set: true},
	}
}

// databaseStep renders the database connection form.
// The hub port is absent on purpose: it is auto-detected from the database.
func (m *Manager) databaseStep(flowID string, defaults DatabaseInput, errs map[string]string) *Step {
	return &Step{
		FlowID: flowID,
		Step:   StepDatabase,
		Fields: []Field{
			{Name: "hub_ip", Type: "string", Required: true, Default: defaults.HubIP},
			{Name: "db_host", Type: "string", Required: true, Default: defaults.DBHost},
			{Name: "db_port", Type: "integer", Required: true, Default: portDefault(defaults.DBPort)},
			{Name: "db_name", Type: "string", Required: true, Default: defaults.DBName},
			{Name: "db_user", Type: "string", Required: true, Default: defaults.DBUser},
			{Name: "db_password", Type: "password", Required: true, Secret: true},
		},
		Errors: errs,
	}
}

// databaseDefaults returns the initial database form values from configuration.
func (m *Manager) databaseDefaults() DatabaseInput {
	return DatabaseInput{
		HubIP:  m.hubCfg.DefaultHost,
		DBHost: m.discCfg.DefaultHost,
		DBPort: PortNumber{Value: m.discCfg.DefaultPort, Set: true},
		DBName: m.discCfg.DefaultName,
		DBUser: m.discCfg.DefaultUser,
	}
}

// selectionStep renders one toggle per discovered door plus the
// import-all override. Toggles are keyed by door_id, not display name, so
// two doors sharing a name cannot shadow each other.
func (m *Manager) selectionStep(flowID string, doors []discovery.Door, errs map[string]string) *Step {
	fields := make([]Field, 0, len(doors)+1)
	fields = append(fields, Field{
		Name:     "import_all_doors",
		Type:     "boolean",
		Required: true,
		Default:  true,
	})
	for _, d := range doors {
		fields = append(fields, Field{
			Name:    d.DoorID,
			Type:    "boolean",
			Label:   d.DoorName,
			Default: true,
		})
	}

	return &Step{
		FlowID: flowID,
		Step:   StepSelectDoors,
		Fields: fields,
		Errors: errs,
		Placeholders: map[string]string{
			"door_count": strconv.Itoa(len(doors)),
		},
	}
}

// portDefault renders a PortNumber as a form default, or nil when unset.
func portDefault(p PortNumber) any {
	if !p.Set || p.Invalid {
		return nil
	}
	return p.Value
}

// formResult wraps a Step as a flow Result.
func formResult(step *Step) *Result {
	return &Result{Type: ResultForm, Step: step}
}
