package domain

// DirectoryEntry is a device's identity record, independent of its sensor data.
type DirectoryEntry struct {
	MachineID string `json:"machineId"`
	FieldID   int64  `json:"fieldId,omitempty"`
	Name      string `json:"name,omitempty"`
}

// Device is a directory entry joined with its latest snapshot.
type Device struct {
	MachineID      string          `json:"machineId"`
	Name           string          `json:"name,omitempty"`
	LatestReadings []SensorReading `json:"latestReadings"`
}

// HasData reports whether the device returned any readings.
func (d Device) HasData() bool {
	return len(d.LatestReadings) > 0
}

// Reading returns the first reading of the given type, if any.
func (d Device) Reading(t SensorType) (SensorReading, bool) {
	for _, r := range d.LatestReadings {
		if r.Type == t {
			return r, true
		}
	}
	return SensorReading{}, false
}

// Aggregate joins the directory with the latest snapshots by machine id.
// Output follows directory order and never drops a device: one without a
// snapshot gets an empty reading list.
func Aggregate(entries []DirectoryEntry, latest map[string]Snapshot) []Device {
	devices := make([]Device, 0, len(entries))
	for _, e := range entries {
		d := Device{
			MachineID:      e.MachineID,
			Name:           e.Name,
			LatestReadings: []SensorReading{},
		}
		if snap, ok := latest[e.MachineID]; ok && len(snap.Readings) > 0 {
			d.LatestReadings = append(d.LatestReadings, snap.Readings...)
		}
		devices = append(devices, d)
	}
	return devices
}

// Snapshots converts aggregated devices back to per-device snapshots.
func Snapshots(devices []Device) []Snapshot {
	out := make([]Snapshot, len(devices))
	for i, d := range devices {
		out[i] = Snapshot{MachineID: d.MachineID, Readings: d.LatestReadings}
	}
	return out
}
