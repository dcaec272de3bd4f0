// pkg/flight/partial.go
// Copyright(c) 2026 swimfuse contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package flight

import (
	"time"

	"github.com/swimfuse/swimfuse/pkg/geo"
)

// MessageClass distinguishes the few en-route message shapes the merge
// engine treats specially; the decoder determines it from the message's
// flightType attribute, or from the elements present when that attribute
// names no known class, independent of the free-form WireSource tag.
type MessageClass int

const (
	ClassTrack MessageClass = iota
	ClassCanonicalState                 // authoritative for clearance/interim wipes
	ClassInterimDedicated                // also authoritative for interim wipes
	ClassAssumedHandoff                  // eligible to set Handoff.Forced
	ClassHeartbeat                       // Mode-C only; never touches assigned altitude
	ClassPosition                        // position-only; no raw payload retained
)

type AltitudeUpdate struct {
	Kind         AltitudeKind
	SimpleFeet   int
	VFRPlusFeet  int
	BlockFloor   int
	BlockCeiling int
}

type ClearanceUpdate struct {
	Heading Field[int]
	Speed   Field[int]
	Text    Field[string]
}

type HandoffUpdate struct {
	HasEvent     bool
	Event        string
	Transferring Field[string]
	Receiving    Field[string]
	Accepting    Field[string]
}

// PartialFlightUpdate carries exactly the fields present on one decoded
// en-route message. Zero-value fields are absent unless wrapped in a
// Field[T] that says otherwise.
type PartialFlightUpdate struct {
	ID         string
	WireSource string // raw source tag off the wire, e.g. "Z-flight"
	Centre     string
	Timestamp  time.Time
	Class      MessageClass

	Callsign      Field[string]
	ComputerID    Field[[2]string] // [facility, 3-char id]
	Operator      Field[string]
	Status        Field[Status]
	Origin        Field[string]
	Destination   Field[string]
	Alternates    Field[[]string]
	AircraftType  Field[string]
	Wake          Field[string]
	Equipment     Field[string]
	ModeSHex      Field[string]

	AssignedSquawkDedicated Field[string] // from the beacon-assignment element
	CurrentSquawk           Field[string] // from the current-beacon element

	FlightRules   Field[string]
	FlightType    Field[string]
	Route         Field[string]
	OriginalRoute Field[string]
	ArrivalProcedure Field[string]
	Remarks       Field[string]

	AssignedAltitude Field[AltitudeUpdate] // skipped entirely for ClassHeartbeat
	InterimAltitude  Field[int]            // Null = explicit xsi:nil clear
	ReportedAltitude Field[int]

	Position    Field[geo.Point]
	GroundSpeed Field[float64]
	TrackVX     Field[float64]
	TrackVY     Field[float64]
	Coast       Field[bool]

	ERAMPosition Field[geo.Point]
	ERAMAltitude Field[int]

	CoordinationFix  Field[string]
	CoordinationTime Field[time.Time]

	ControllingFacility Field[string]
	ControllingSector   Field[string]

	Clearance  ClearanceUpdate
	HasCleared bool // the <cleared> element was present at all

	Handoff HandoffUpdate
	PointOut Field[PointOut]

	AFTNOriginator Field[string]
	Supplement map[string]string // nameValue pairs, notably FDPS_GUFI/4TH_ADAPTED_FIELD/TMI_IDS
	CNS        Field[string]
	EETs       map[string]time.Duration

	RawPayload string
}
