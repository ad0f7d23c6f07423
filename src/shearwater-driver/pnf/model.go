package pnf

import "fmt"

// modelTeric is the Final[13] model byte identifying the Teric family,
// which drives both the timezone and Teric-specific tank-serial byte order
// (spec §4.7).
const modelTeric uint8 = 8

// modelNames maps the single-byte PNF model code to a human-readable
// family name. Shearwater's hardware-id RDBI (0x8050, session package) reports a
// 2-byte code that repeats or nearly repeats this same byte, so the table
// is shared: session.ReadDeviceInfo looks the low byte up here too.
var modelNames = map[uint8]string{
	0x01: "Predator",
	0x02: "Petrel 2",
	0x04: "Petrel",
	0x08: "Teric",
	0x09: "Petrel",
	0x0F: "Teric",
	0x10: "Perdix",
	0x11: "Perdix AI",
	0x12: "Peregrine",
	0x13: "Tern",
	0x14: "NERD",
	0x15: "NERD 2",
}

func modelName(code uint8) string {
	if name, ok := modelNames[code]; ok {
		return name
	}
	return fmt.Sprintf("Unknown (%d)", code)
}

// ModelName exports the lookup for the session package's RDBI-based device
// info, keyed by the low byte of the 2-byte hardware code.
func ModelName(code uint8) string {
	return modelName(code)
}
