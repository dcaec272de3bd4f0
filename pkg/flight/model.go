// pkg/flight/model.go
// Copyright(c) 2026 swimfuse contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package flight holds the per-flight/per-track state model, the
// concurrent store that keys records by stable identity, and the merge
// engine that applies decoded partial updates to stored records under
// source precedence and clear-semantics rules.
package flight

import (
	"sync"
	"time"

	"github.com/swimfuse/swimfuse/pkg/geo"
	"github.com/swimfuse/swimfuse/pkg/util"
)

type Status string

const (
	StatusNew       Status = "new"
	StatusActive    Status = "active"
	StatusDropped   Status = "dropped"
	StatusCancelled Status = "cancelled"
	StatusPurged    Status = "purged"
)

// AltitudeKind identifies which of the four mutually-exclusive assigned
// altitude shapes is set. Setting one via the Set* methods below always
// clears the others.
type AltitudeKind int

const (
	AltitudeNone AltitudeKind = iota
	AltitudeSimple
	AltitudeVFR
	AltitudeVFRPlus
	AltitudeBlock
)

type AssignedAltitude struct {
	Kind           AltitudeKind
	SimpleFeet     int
	VFRPlusFeet    int
	BlockFloor     int
	BlockCeiling   int
}

func (a *AssignedAltitude) SetSimple(feet int) { *a = AssignedAltitude{Kind: AltitudeSimple, SimpleFeet: feet} }
func (a *AssignedAltitude) SetVFR()            { *a = AssignedAltitude{Kind: AltitudeVFR} }
func (a *AssignedAltitude) SetVFRPlus(feet int) {
	*a = AssignedAltitude{Kind: AltitudeVFRPlus, VFRPlusFeet: feet}
}
func (a *AssignedAltitude) SetBlock(floor, ceiling int) {
	*a = AssignedAltitude{Kind: AltitudeBlock, BlockFloor: floor, BlockCeiling: ceiling}
}
func (a *AssignedAltitude) Clear() { *a = AssignedAltitude{} }

type Handoff struct {
	Transferring string
	Receiving    string
	Accepting    string
	Event        string
	Forced       bool
}

func (h *Handoff) Clear() { *h = Handoff{} }

type PointOut struct {
	Originating string
	Receiving   string
	Time        time.Time
}

type Clearance struct {
	HasHeading bool
	Heading    int
	HasSpeed   bool
	Speed      int
	Text       string
}

func (c *Clearance) Clear() { *c = Clearance{} }

type Supplemental struct {
	AFTNOriginator     string
	TMIIDs             []string
	FourthAdaptedField string
}

// PositionRecord is one entry in a flight's position history ring.
type PositionRecord struct {
	Lat, Lon float64
	Tick     time.Time
	Symbol   rune
}

// EventRecord is one entry in a flight's event history ring, and also the
// element type of its unbounded archive.
type EventRecord struct {
	Time    time.Time
	Source  string
	Centre  string
	Summary string
	Raw     string `json:",omitempty"`
}

// FlightRecord is the per-flight state model built up from en-route
// surveillance and flight-plan traffic. All mutation goes through Mu;
// readers that want a consistent view should lock, copy what they need,
// and unlock rather than holding the lock across I/O.
type FlightRecord struct {
	Mu sync.Mutex

	ID           string
	Callsign     string
	ComputerIDs  map[string]string // facility code -> 3-char id
	Operator     string
	Status       Status
	Origin       string
	Destination  string
	Alternates   []string
	AircraftType string
	Wake         string
	Equipment    string
	ModeSHex     string

	AssignedSquawk string
	CurrentSquawk  string

	FlightRules string
	FlightType  string
	Route       string
	OriginalRoute string
	ArrivalProcedure string
	Remarks     string

	AssignedAltitude AssignedAltitude
	HasInterimAltitude bool
	InterimAltitude    int
	HasReportedAltitude bool
	ReportedAltitude    int

	Position      geo.Point
	HasPosition   bool
	GroundSpeed   float64
	TrackVX, TrackVY float64
	Coast         bool

	HasERAMPosition bool
	ERAMPosition    geo.Point
	HasERAMAltitude bool
	ERAMAltitude    int

	CoordinationFix  string
	CoordinationTime time.Time

	ControllingFacility string
	ControllingSector   string

	Handoff  Handoff
	PointOut PointOut

	Clearance Clearance

	Supplemental Supplemental
	CNS          string

	EETs map[string]time.Duration // FIR id -> estimated elapsed time

	LastSeen     time.Time
	LastPosition time.Time
	LastSource   string

	Positions *util.RingBuffer[PositionRecord]
	Events    *util.RingBuffer[EventRecord]
	Archive   []EventRecord
}

func NewFlightRecord(id string) *FlightRecord {
	return &FlightRecord{
		ID:          id,
		ComputerIDs: make(map[string]string),
		EETs:        make(map[string]time.Duration),
		Status:      StatusNew,
		Positions:   util.NewRingBuffer[PositionRecord](20),
		Events:      util.NewRingBuffer[EventRecord](50),
	}
}

// HandoffActive reports whether any part of the handoff triple is set.
func (f *FlightRecord) HandoffActive() bool {
	return f.Handoff.Transferring != "" || f.Handoff.Receiving != "" || f.Handoff.Accepting != "" ||
		f.Handoff.Event != "" || f.Handoff.Forced
}

// SurfaceTrack is one airport-scoped ASDE-X/SMES track.
type SurfaceTrack struct {
	Mu sync.Mutex

	Airport      string
	TrackID      string
	Callsign     string
	Squawk       string
	AircraftType string
	TargetType   string
	Position     geo.Point
	AltitudeFeet int
	SpeedKnots   float64
	Heading      float64
	ERAMXRef     string
	LastSeen     time.Time

	// Re-derived each broadcast by the correlator; not authoritative
	// state, never persisted.
	DerivedOrigin      string
	DerivedDestination string
	DerivedProcedure   string
	DerivedRoute       string
	DerivedGate        string
	DerivedRunway      string
	DerivedGateCode    string
}

func NewSurfaceTrack(airport, trackID string) *SurfaceTrack {
	return &SurfaceTrack{Airport: airport, TrackID: trackID}
}

// TerminalTrack is one facility-scoped STARS track.
type TerminalTrack struct {
	Mu sync.Mutex

	Facility     string
	TrackNum     string
	Callsign     string
	Equipment    string
	Wake         string
	Rules        string
	Origin       string
	Destination  string
	EntryFix     string
	ExitFix      string
	AssignedSquawk string
	ReportedSquawk string
	RequestedAltitude int
	Runway       string
	Scratchpad1  string
	Scratchpad2  string
	Owner        string
	PendingHandoff string

	Position     geo.Point
	AltitudeFeet int
	GroundSpeed  float64
	Track        float64 // bearing between successive positions; vx/vy are not used for it
	VerticalRate float64
	ModeSHex     string // non-zero only
	Frozen       bool
	Pseudo       bool
	LastSeen     time.Time
}

func NewTerminalTrack(facility, trackNum string) *TerminalTrack {
	return &TerminalTrack{Facility: facility, TrackNum: trackNum}
}

type TowerEventKind string

const (
	TowerEventDatalinkClearance TowerEventKind = "datalink"
	TowerEventDeparture         TowerEventKind = "departure"
)

type DatalinkPayload struct {
	Header string
	Body   string
}

type DeparturePayload struct {
	Gate          string
	Runway        string
	ClearanceTime time.Time
	TaxiTime      time.Time
	TakeoffTime   time.Time
}

type TowerEvent struct {
	Kind         TowerEventKind
	Time         time.Time
	Beacon       string
	AircraftType string
	ComputerID   string
	XRefs        []string
	Datalink     *DatalinkPayload
	Departure    *DeparturePayload
}

// TowerAircraft is the ordered event history for one airport×aircraft id.
type TowerAircraft struct {
	Mu       sync.Mutex
	Airport  string
	AircraftID string
	Events   []TowerEvent
}

func NewTowerAircraft(airport, aircraftID string) *TowerAircraft {
	return &TowerAircraft{Airport: airport, AircraftID: aircraftID}
}
