package pnf

// decodeSamples runs pass 3 over rs.samples, given the header fields that
// influence sample decoding (spec §4.7 "Pass 3 — decode samples").
func decodeSamples(rs recordSet, d Dive) []Sample {
	samples := make([]Sample, 0, len(rs.samples))

	var lastO2, lastHe uint8
	var lastIsOC *bool

	for _, sb := range rs.samples {
		r := newReader(sb.block)

		status, _ := r.u8(12)
		isOC := status&0x10 != 0
		isExternalPPO2 := status&0x02 == 0

		sample := Sample{
			TimestampUnix: d.StartTimeUnix + int64(sb.offsetMS/1000),
		}

		if v, ok := r.u16(1); ok {
			depth := float64(v)
			if d.IsImperial {
				depth *= 0.3048 * 0.1
			} else {
				depth *= 0.1
			}
			sample.DepthM = depth
		}

		if v, ok := r.i8(14); ok {
			temp := float64(v)
			if temp < 0 {
				temp += 102
				if temp > 0 {
					temp = 0
				}
			}
			if d.IsImperial {
				temp = (temp - 32) * 5 / 9
			}
			sample.TemperatureC = temp
		}

		if d.AIEnabled {
			pOffset := 27
			if d.LogVersion > 14 {
				pOffset = 28
			}
			if raw, ok := r.u16(pOffset); ok && raw < 0xFFF0 {
				psi := float64(raw&0x0FFF) * 2
				bar := psi * 0.0689476
				sample.TankPressureBar = &bar
			}
		}

		if v, ok := r.u8(7); ok {
			sample.PPO2 = float64(v) / 100
		}

		if !isOC && isExternalPPO2 {
			var cal [3]float64
			if v, ok := r.u8(13); ok {
				cal[0] = float64(v) * d.SensorCalibration[0]
			}
			if v, ok := r.u8(15); ok {
				cal[1] = float64(v) * d.SensorCalibration[1]
			}
			if v, ok := r.u8(16); ok {
				cal[2] = float64(v) * d.SensorCalibration[2]
			}
			sample.SensorPPO2 = &cal
		}

		if v, ok := r.u8(19); ok {
			sample.Setpoint = float64(v) / 100
		}
		if v, ok := r.u8(23); ok {
			sample.CNS = float64(v) / 100
		}

		sample.Deco = decodeDeco(r, d.IsImperial)

		if v, ok := r.u16(5); ok && v > 0 {
			tts := uint32(v) * 60
			sample.TTSSeconds = &tts
		}

		gasO2, _ := r.u8(8)
		gasHe, _ := r.u8(9)
		if gasO2 != 0 || gasHe != 0 {
			changed := gasO2 != lastO2 || gasHe != lastHe
			if lastIsOC != nil && *lastIsOC != isOC {
				changed = true
			}
			if changed {
				mix := GasMix{O2: float64(gasO2) / 100, He: float64(gasHe) / 100, IsDiluent: !isOC}
				if isOC {
					event := gasChangeEvent(mix)
					sample.Event = &event
				} else {
					event := diluentChangeEvent(mix)
					sample.Event = &event
				}
				lastO2, lastHe = gasO2, gasHe
			}
		}
		lastIsOC = &isOC

		if isOC {
			sample.DiveMode = "OC-Tec"
		} else {
			sample.DiveMode = "CCR"
		}

		samples = append(samples, sample)
	}

	return samples
}

func decodeDeco(r reader, isImperial bool) DecoStatus {
	decoMin, _ := r.u8(10)
	stopRaw, _ := r.u16(3)

	if stopRaw > 0 {
		depth := float64(stopRaw)
		if isImperial {
			depth *= 0.3048
		}
		stopTime := uint32(decoMin) * 60
		return DecoStatus{
			StopDepthM: &depth,
			CeilingM:   &depth,
			StopTimeS:  &stopTime,
		}
	}

	ndl := uint32(decoMin)
	if ndl > 99 {
		ndl = 99
	}
	ndlSeconds := ndl * 60
	return DecoStatus{NDLSeconds: &ndlSeconds}
}
