package pnf

import (
	"encoding/json"
	"errors"
)

// GasMix describes one breathing or diluent gas mix, expressed as
// fractions rather than raw percent (spec §4.7 "Gas-mix assembly").
type GasMix struct {
	O2        float64 `json:"o2"`
	He        float64 `json:"he"`
	IsDiluent bool    `json:"isDiluent"`
}

// Event is the dive-event sum type: a gas or diluent switch, or one of the
// warning/error/unknown-code shapes the device's event stream can also
// carry (spec §9 "Tagged-variant event"). Only one field is ever non-nil.
type Event struct {
	*GasChange
	*DiluentChange
	*Warning
	*Error
	*Unknown
}

// GasChange marks a switch to a new open-circuit breathing gas.
type GasChange struct {
	Mix GasMix `json:"mix"`
}

// DiluentChange marks a switch to a new closed-circuit diluent.
type DiluentChange struct {
	Mix GasMix `json:"mix"`
}

// Warning carries a device-reported warning message.
type Warning struct {
	Message string `json:"message"`
}

// Error carries a device-reported error message.
type Error struct {
	Message string `json:"message"`
}

// Unknown carries an event code the parser doesn't recognise.
type Unknown struct {
	Code uint8 `json:"code"`
}

// MarshalJSON renders Event as a tagged object: {"type": "...", ...fields}.
func (e Event) MarshalJSON() ([]byte, error) {
	switch {
	case e.GasChange != nil:
		return json.Marshal(struct {
			Type string `json:"type"`
			Mix  GasMix `json:"mix"`
		}{"GasChange", e.GasChange.Mix})
	case e.DiluentChange != nil:
		return json.Marshal(struct {
			Type string `json:"type"`
			Mix  GasMix `json:"mix"`
		}{"DiluentChange", e.DiluentChange.Mix})
	case e.Warning != nil:
		return json.Marshal(struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		}{"Warning", e.Warning.Message})
	case e.Error != nil:
		return json.Marshal(struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		}{"Error", e.Error.Message})
	case e.Unknown != nil:
		return json.Marshal(struct {
			Type string `json:"type"`
			Code uint8  `json:"code"`
		}{"Unknown", e.Unknown.Code})
	}
	return nil, errors.New("pnf: empty event")
}

func gasChangeEvent(mix GasMix) Event {
	return Event{GasChange: &GasChange{Mix: mix}}
}

func diluentChangeEvent(mix GasMix) Event {
	return Event{DiluentChange: &DiluentChange{Mix: mix}}
}
