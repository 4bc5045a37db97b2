package domain

// Panel selects what the dashboard's main pane shows.
type Panel string

const (
	PanelDevices Panel = "devices"
	PanelWeather Panel = "weather"
	PanelPest    Panel = "pest"
)

// ParsePanel defaults to the device panel for anything unrecognised.
func ParsePanel(s string) Panel {
	switch Panel(s) {
	case PanelWeather:
		return PanelWeather
	case PanelPest:
		return PanelPest
	}
	return PanelDevices
}

// ViewState is the dashboard selection, passed explicitly with every request.
type ViewState struct {
	FieldID        int64  `json:"fieldId"`
	SelectedDevice string `json:"selectedDevice,omitempty"`
	Panel          Panel  `json:"panel"`
}

// Resolve fills in the selection against the devices actually present:
// the weather and pest panels clear the device selection, and the device
// panel falls back to the first device when none (or an unknown one) is chosen.
func (v ViewState) Resolve(devices []Device) ViewState {
	v.Panel = ParsePanel(string(v.Panel))
	if v.Panel != PanelDevices {
		v.SelectedDevice = ""
		return v
	}

	for _, d := range devices {
		if d.MachineID == v.SelectedDevice {
			return v
		}
	}

	v.SelectedDevice = ""
	if len(devices) > 0 {
		v.SelectedDevice = devices[0].MachineID
	}
	return v
}
