package pnf

import (
	"encoding/hex"
	"strconv"
)

// tankOffsets names the four fixed slots a tank serial can occupy, each 3
// bytes wide (spec §4.7 "Tanks").
type tankOffset struct {
	opening int
	offset  int
}

var tankOffsets = []tankOffset{
	{opening: 5, offset: 1},
	{opening: 5, offset: 10},
	{opening: 6, offset: 25},
	{opening: 7, offset: 4},
}

const emptyTankSerial = "000000"

// assembleTanks decodes every populated tank slot, skipping empty serials.
// Teric logs store the serial bytes in reverse order.
func assembleTanks(rs recordSet, isTeric bool) []Tank {
	var tanks []Tank
	for i, slot := range tankOffsets {
		raw, ok := rs.opening(slot.opening).sub(slot.offset, 3)
		if !ok {
			continue
		}

		bytesToEncode := raw
		if isTeric {
			bytesToEncode = []byte{raw[2], raw[1], raw[0]}
		}
		serial := hex.EncodeToString(bytesToEncode)
		if serial == emptyTankSerial {
			continue
		}

		tanks = append(tanks, Tank{
			Name:   "Tank " + strconv.Itoa(i+1),
			Serial: serial,
			Usage:  "Unknown",
		})
	}
	return tanks
}
