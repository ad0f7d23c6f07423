package pnf

import (
	"strconv"

	"github.com/nauticore/shearwater-driver/src/shearwater-driver/util"
)

// diveModeNames maps Opening4[1] to the sample/header dive-mode string
// (spec §4.7 "dive_mode").
var diveModeNames = map[uint8]string{
	0:  "CCR",
	5:  "CCR",
	1:  "OC-Tec",
	2:  "Gauge",
	3:  "PPO2",
	4:  "SemiClosed",
	6:  "OC-Rec",
	7:  "Freedive",
	12: "Avelo",
}

func diveModeName(code uint8) string {
	if name, ok := diveModeNames[code]; ok {
		return name
	}
	return "Unknown"
}

// decoModelNames maps Opening2[18] to the deco-model label.
var decoModelNames = map[uint8]string{
	0: "Buhlmann ZHL-16C",
	1: "VPM-B",
	2: "VPM-B/GFS",
	3: "DCIEM",
}

func decoModelName(code uint8) string {
	if name, ok := decoModelNames[code]; ok {
		return name
	}
	return unknownCodeLabel(code)
}

func unknownCodeLabel(code uint8) string {
	return "Unknown (" + strconv.Itoa(int(code)) + ")"
}

// decodeHeader runs pass 2 over rs, producing a Dive with everything
// except Samples, Tanks-derived-from-samples-fallback, and the max-depth /
// duration sample fallbacks filled in. ok is false when start_time could
// not be determined (spec §4.7 "Final assembly").
func decodeHeader(rs recordSet) (Dive, bool) {
	var d Dive

	opening0 := rs.opening(0)
	opening1 := rs.opening(1)
	opening2 := rs.opening(2)
	opening3 := rs.opening(3)
	opening4 := rs.opening(4)
	closing0 := rs.closing(0)

	if fp, ok := opening0.sub(12, 4); ok {
		copy(d.Fingerprint[:], fp)
	}

	startTime, ok := opening0.u32(12)
	if !ok || startTime == 0 {
		if fallback, ok := opening2.u32(20); ok {
			startTime = fallback
		}
	}
	if startTime == 0 {
		return Dive{}, false
	}
	d.StartTimeUnix = int64(startTime)

	if v, ok := opening0.u8(8); ok {
		d.IsImperial = v == 1
	}
	if v, ok := opening0.u8(4); ok {
		d.GFLow = v
	}
	if v, ok := opening0.u8(5); ok {
		d.GFHigh = v
	}

	if v, ok := opening4.u8(1); ok {
		d.DiveMode = diveModeName(v)
	} else {
		d.DiveMode = "Unknown"
	}
	if v, ok := opening4.u8(16); ok {
		d.LogVersion = v
	}

	gasesEnabled := uint16(0x1F)
	if v, ok := opening4.u16(17); ok {
		gasesEnabled = v
	}

	if v, ok := opening4.u8(28); ok {
		d.AIEnabled = v != 0
	}

	if v, ok := opening2.u8(18); ok {
		d.DecoModel = decoModelName(v)
	} else {
		d.DecoModel = decoModelName(0)
	}

	if v, ok := opening3.u16(3); ok && v > 0 {
		d.WaterDensity = util.PointerTo(float64(v))
	}

	if mask, ok := opening3.u8(6); ok {
		for i := 0; i < 4; i++ {
			if mask&(1<<uint(i)) == 0 {
				continue
			}
			if v, ok := opening3.u16(7 + 2*i); ok {
				d.SensorCalibration[i] = float64(v) / 100000
			}
		}
	}

	if v, ok := opening1.u16(16); ok && v > 0 {
		d.SurfacePressureBar = util.PointerTo(float64(v) / 1000)
	}

	var o2, he [10]uint8
	if b, ok := opening0.sub(20, 10); ok {
		copy(o2[:], b)
	}
	if v, ok := opening0.u8(30); ok {
		he[0] = v
	}
	if v, ok := opening0.u8(31); ok {
		he[1] = v
	}
	if b, ok := opening1.sub(1, 8); ok {
		copy(he[2:], b)
	}

	d.GasMixes = assembleGasMixes(o2, he, gasesEnabled, d.DiveMode)

	final := rs.final
	var model uint8
	if v, ok := newReader(final).u8(13); ok {
		model = v
	}
	d.Model = modelName(model)

	opening5 := rs.opening(5)
	if model == modelTeric && d.LogVersion >= 9 {
		utcMin, okMin := opening5.i32(26)
		dstHours, okDst := opening5.u8(30)
		if okMin && okDst {
			d.TimezoneOffsetSeconds = util.PointerTo(utcMin*60 + int32(dstHours)*3600)
		}
	}

	if v, ok := closing0.u16(4); ok {
		depth := float64(v)
		if d.IsImperial {
			depth *= 0.3048
		}
		d.MaxDepthM = depth / 10
	}
	if v, ok := closing0.u24(6); ok {
		d.DurationSeconds = v
	}

	d.Tanks = assembleTanks(rs, model == modelTeric)

	return d, true
}

// assembleGasMixes implements spec §4.7 "Gas-mix assembly".
func assembleGasMixes(o2, he [10]uint8, gasesEnabled uint16, diveMode string) []GasMix {
	ccrLike := diveMode == "CCR" || diveMode == "SemiClosed"

	var mixes []GasMix
	for i := 0; i < 10; i++ {
		if gasesEnabled&(1<<uint(i)) == 0 {
			continue
		}
		isDiluent := i >= 5
		if isDiluent && !ccrLike {
			continue
		}
		if o2[i] == 0 && he[i] == 0 {
			continue
		}
		mixes = append(mixes, GasMix{
			O2:        float64(o2[i]) / 100,
			He:        float64(he[i]) / 100,
			IsDiluent: isDiluent,
		})
	}
	return mixes
}
