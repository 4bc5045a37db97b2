package domain

// Thresholds of the pest heuristic. Comparisons are strict.
const (
	rodentMotionThreshold        = 0.0
	planthopperTempThreshold     = 27.0
	planthopperHumidityThreshold = 70.0
)

// PestRisk flags derived from the latest snapshots of a field.
type PestRisk struct {
	Rodent      bool `json:"rodent"`
	Planthopper bool `json:"planthopper"`
}

// InferPestRisk scans every reading of every snapshot.
//
// Rodent is raised by any motion count above zero, on any device.
// Planthopper is raised by a temperature above 27 °C only when the same
// snapshot also holds a humidity above 70 %; readings from different devices
// are never correlated. Values that don't parse as numbers never raise a flag.
func InferPestRisk(snapshots []Snapshot) PestRisk {
	var risk PestRisk

	for _, snap := range snapshots {
		humid := false
		warm := false

		for _, r := range snap.Readings {
			v, ok := r.Value.Float()
			if !ok {
				continue
			}
			switch r.Type {
			case SensorMotion:
				if v > rodentMotionThreshold {
					risk.Rodent = true
				}
			case SensorTemperature:
				if v > planthopperTempThreshold {
					warm = true
				}
			case SensorHumidity:
				if v > planthopperHumidityThreshold {
					humid = true
				}
			}
		}

		if warm && humid {
			risk.Planthopper = true
		}
	}

	return risk
}

// Any reports whether at least one flag is raised.
func (p PestRisk) Any() bool {
	return p.Rodent || p.Planthopper
}

// Messages returns the advisories for the raised flags.
func (p PestRisk) Messages() []string {
	var msgs []string
	if p.Rodent {
		msgs = append(msgs, "Rodent activity detected! Consider setting traps.")
	}
	if p.Planthopper {
		msgs = append(msgs, "High risk of brown planthopper infestation due to warm, humid conditions.")
	}
	if len(msgs) == 0 {
		msgs = append(msgs, "No immediate pest threats detected.")
	}
	return msgs
}
