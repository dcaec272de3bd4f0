// pkg/broadcast/downstream.go
// Copyright(c) 2026 swimfuse contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package broadcast

import (
	"encoding/binary"
	"net"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/swimfuse/swimfuse/pkg/log"
)

// DownstreamEncoder serializes the scope-display protocol over a raw
// TCP connection to a legacy display system: one msgpack-encoded
// envelope per message, length-prefixed.
type DownstreamEncoder struct {
	conn net.Conn
	lg   *log.Logger
}

func NewDownstreamEncoder(conn net.Conn, lg *log.Logger) *DownstreamEncoder {
	return &DownstreamEncoder{conn: conn, lg: lg}
}

// Serve subscribes under the downstream scope for facility and pumps
// msgpack-encoded envelopes until the connection or channel closes.
func (d *DownstreamEncoder) Serve(hub *Hub, facility, id string) {
	sub := hub.Subscribe(id, Scope{Kind: "downstream", Key: facility})
	defer hub.Unsubscribe(id)

	for env := range sub.Chan() {
		b, err := msgpack.Marshal(env)
		if err != nil {
			d.lg.Warnf("broadcast: downstream encode failed: %v", err)
			continue
		}
		var lenPrefix [4]byte
		binary.BigEndian.PutUint32(lenPrefix[:], uint32(len(b)))

		d.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if _, err := d.conn.Write(lenPrefix[:]); err != nil {
			d.lg.Debugf("broadcast: downstream write failed: %v", err)
			return
		}
		if _, err := d.conn.Write(b); err != nil {
			d.lg.Debugf("broadcast: downstream write failed: %v", err)
			return
		}
	}
}
