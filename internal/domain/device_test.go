package domain

import "testing"

func TestAggregate_MissingSnapshotKeepsDevice(t *testing.T) {
	entries := []DirectoryEntry{{MachineID: "dev-1"}, {MachineID: "dev-2"}, {MachineID: "dev-3"}}
	latest := map[string]Snapshot{
		"dev-1": {MachineID: "dev-1", Readings: []SensorReading{reading(SensorMotion, "0")}},
		"dev-3": {MachineID: "dev-3", Readings: []SensorReading{reading(SensorHumidity, "60")}},
	}

	devices := Aggregate(entries, latest)

	if len(devices) != 3 {
		t.Fatalf("expected 3 devices, got %d", len(devices))
	}
	for i, want := range []string{"dev-1", "dev-2", "dev-3"} {
		if devices[i].MachineID != want {
			t.Errorf("position %d: expected %s, got %s", i, want, devices[i].MachineID)
		}
	}
	if devices[1].LatestReadings == nil || len(devices[1].LatestReadings) != 0 {
		t.Errorf("expected empty, non-nil readings for dev-2, got %v", devices[1].LatestReadings)
	}
	if devices[1].HasData() {
		t.Error("dev-2 should report no data")
	}
}

func TestAggregate_KeyedNotPositional(t *testing.T) {
	entries := []DirectoryEntry{{MachineID: "a"}, {MachineID: "b"}}
	latest := map[string]Snapshot{
		"b": {MachineID: "b", Readings: []SensorReading{reading(SensorTemperature, "22")}},
		"a": {MachineID: "a", Readings: []SensorReading{reading(SensorTemperature, "33")}},
	}

	devices := Aggregate(entries, latest)

	r, ok := devices[0].Reading(SensorTemperature)
	if !ok || r.Value != "33" {
		t.Errorf("device a got wrong snapshot: %+v", devices[0])
	}
}

func TestAggregate_DoesNotAliasSnapshot(t *testing.T) {
	snap := Snapshot{MachineID: "a", Readings: []SensorReading{reading(SensorMotion, "1")}}
	devices := Aggregate([]DirectoryEntry{{MachineID: "a"}}, map[string]Snapshot{"a": snap})

	devices[0].LatestReadings[0].Value = "99"
	if snap.Readings[0].Value != "1" {
		t.Error("aggregated device shares backing array with snapshot")
	}
}

func TestAggregate_Empty(t *testing.T) {
	if got := Aggregate(nil, nil); len(got) != 0 {
		t.Errorf("expected no devices, got %d", len(got))
	}
}
