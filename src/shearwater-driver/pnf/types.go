package pnf

// DecoStatus is either a ceiling in effect (StopDepthM/CeilingM/StopTimeS
// set) or a no-stop time remaining (NDLSeconds set), never both (spec §4.7
// pass 3 "Deco").
type DecoStatus struct {
	StopDepthM *float64
	CeilingM   *float64
	StopTimeS  *uint32
	NDLSeconds *uint32
}

// Sample is one decoded dive-sample record.
type Sample struct {
	TimestampUnix int64

	DepthM          float64
	TemperatureC    float64
	TankPressureBar *float64
	PPO2            float64
	SensorPPO2      *[3]float64
	Setpoint        float64
	CNS             float64
	Deco            DecoStatus
	TTSSeconds      *uint32
	Event           *Event
	DiveMode        string
}

// Tank is a decoded tank-serial slot (spec §4.7 "Tanks").
type Tank struct {
	Name   string
	Serial string
	Usage  string
}

// Dive is a fully decoded PNF dive log.
type Dive struct {
	Fingerprint [4]byte

	StartTimeUnix         int64
	TimezoneOffsetSeconds *int32

	IsImperial bool
	GFLow      uint8
	GFHigh     uint8

	DiveMode   string
	LogVersion uint8
	GasMixes   []GasMix
	AIEnabled  bool
	DecoModel  string

	WaterDensity        *float64
	SensorCalibration   [4]float64
	SurfacePressureBar  *float64

	Model string

	MaxDepthM       float64
	DurationSeconds uint32

	Tanks   []Tank
	Samples []Sample
}
