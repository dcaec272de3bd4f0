// pkg/decode/tower.go
// Copyright(c) 2026 swimfuse contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package decode

import (
	"fmt"
	"strings"

	"github.com/swimfuse/swimfuse/pkg/flight"
)

// TowerPartial pairs a decoded tower event with the (airport, aircraft
// id) identity key the store uses for its tower map.
type TowerPartial struct {
	Airport    string
	AircraftID string
	Event      flight.TowerEvent
}

// DecodeTower decodes one TDLS payload. DATISData messages are
// recognized and ignored; any other root is reported to telemetry.
func DecodeTower(airport, payload string, tel *Telemetry) (*TowerPartial, error) {
	root, err := parseXML(strings.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("decode tower: %w", err)
	}
	if root == nil {
		return nil, fmt.Errorf("decode tower: empty document")
	}
	switch root.name {
	case "TDLSCSPMessage":
		return decodeDatalinkClearance(airport, root), nil
	case "TowerDepartureEventMessage":
		return decodeDepartureEvent(airport, root), nil
	case "DATISData":
		return nil, nil
	default:
		tel.note(root.name)
		return nil, nil
	}
}

func decodeDatalinkClearance(airport string, root *node) *TowerPartial {
	aircraftID := root.child("ComputerID").trimText()
	ev := flight.TowerEvent{
		Kind:         flight.TowerEventDatalinkClearance,
		Beacon:       root.child("Beacon").trimText(),
		AircraftType: root.child("AircraftType").trimText(),
		ComputerID:   aircraftID,
		Datalink: &flight.DatalinkPayload{
			Header: root.child("Header").trimText(),
			Body:   root.child("Body").trimText(),
		},
	}
	if t, ok := parseDatalinkTime(root.child("MessageTime").trimText()); ok {
		ev.Time = t
	}
	for _, x := range root.allChildren("CrossReference") {
		if v := x.trimText(); v != "" {
			ev.XRefs = append(ev.XRefs, v)
		}
	}
	if aircraftID == "" {
		aircraftID = ev.Beacon
	}
	return &TowerPartial{Airport: airport, AircraftID: aircraftID, Event: ev}
}

func decodeDepartureEvent(airport string, root *node) *TowerPartial {
	aircraftID := root.child("ComputerID").trimText()
	dep := &flight.DeparturePayload{
		Gate:   root.child("Gate").trimText(),
		Runway: root.child("NumericRunwayID").trimText() + root.child("RunwaySubID").trimText(),
	}
	if t, ok := parseISOTime(root.child("ClearanceTime").trimText()); ok {
		dep.ClearanceTime = t
	}
	if t, ok := parseISOTime(root.child("TaxiTime").trimText()); ok {
		dep.TaxiTime = t
	}
	if t, ok := parseISOTime(root.child("TakeoffTime").trimText()); ok {
		dep.TakeoffTime = t
	}
	ev := flight.TowerEvent{
		Kind:         flight.TowerEventDeparture,
		Beacon:       root.child("Beacon").trimText(),
		AircraftType: root.child("AircraftType").trimText(),
		ComputerID:   aircraftID,
		Time:         dep.ClearanceTime,
		Departure:    dep,
	}
	for _, x := range root.allChildren("CrossReference") {
		if v := x.trimText(); v != "" {
			ev.XRefs = append(ev.XRefs, v)
		}
	}
	if aircraftID == "" {
		aircraftID = ev.Beacon
	}
	return &TowerPartial{Airport: airport, AircraftID: aircraftID, Event: ev}
}
