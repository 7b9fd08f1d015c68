package netio

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"net"

	"go.uber.org/zap"

	"github.com/pbellchambers/rustyhack-server-go/internal/mapdata"
)

// BulkServer serves the one-shot "get all maps" TCP channel: a client
// connects, sends nothing, and receives every loaded map's tile grid
// framed with ReadFrame/WriteFrame, then the connection closes. Adapted
// from the teacher's internal/net.Server accept-loop shape, with the
// session goroutines and the XOR stream cipher dropped — this channel
// carries no per-player session state, just a bulk transfer.
type BulkServer struct {
	ln  net.Listener
	reg *mapdata.Registry
	log *zap.Logger
}

func NewBulkServer(bindAddr string, reg *mapdata.Registry, log *zap.Logger) (*BulkServer, error) {
	ln, err := net.Listen("tcp", bindAddr)
	if err != nil {
		return nil, fmt.Errorf("netio: listen bulk tcp: %w", err)
	}
	return &BulkServer{ln: ln, reg: reg, log: log}, nil
}

// Serve blocks, accepting and immediately serving one bulk transfer per
// connection until the listener is closed.
func (b *BulkServer) Serve() {
	for {
		conn, err := b.ln.Accept()
		if err != nil {
			return
		}
		go b.serveOne(conn)
	}
}

func (b *BulkServer) serveOne(conn net.Conn) {
	defer conn.Close()
	names := b.reg.Names()
	if err := WriteFrame(conn, encodeUint32(uint32(len(names)))); err != nil {
		b.log.Debug("bulk: write map count failed", zap.Error(err))
		return
	}
	for _, name := range names {
		m, ok := b.reg.Get(name)
		if !ok {
			continue
		}
		payload, err := encodeMapChunk(name, m)
		if err != nil {
			b.log.Error("bulk: encode map chunk failed", zap.String("map", name), zap.Error(err))
			return
		}
		if err := WriteFrame(conn, payload); err != nil {
			b.log.Debug("bulk: write map chunk failed", zap.Error(err))
			return
		}
	}
}

func (b *BulkServer) Close() error { return b.ln.Close() }

// MapChunk is the gob-encoded payload of one map in the bulk transfer.
type MapChunk struct {
	Name          string
	Width, Height int
	Tiles         []int // row-major, len == Width*Height
}

func encodeMapChunk(name string, m *mapdata.Map) ([]byte, error) {
	tiles := make([]int, 0, m.Width()*m.Height())
	for y := 0; y < m.Height(); y++ {
		for x := 0; x < m.Width(); x++ {
			tiles = append(tiles, int(m.TileAt(x, y)))
		}
	}
	chunk := MapChunk{Name: name, Width: m.Width(), Height: m.Height(), Tiles: tiles}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(chunk); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeUint32(v uint32) []byte {
	return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}
