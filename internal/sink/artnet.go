package sink

import (
	"encoding/binary"
	"fmt"
	"net"
	"strconv"
	"sync"

	"github.com/pkg/errors"
)

const (
	// ArtNetPort is the UDP port Art-Net nodes listen on.
	ArtNetPort = 6454
	// UniverseSize is the number of DMX channels in one universe.
	UniverseSize = 512

	artNetOpDmx       = 0x5000
	artNetProtocol    = 14
	artNetHeaderSize  = 18
	artNetMaxUniverse = 1<<15 - 1
)

var artNetID = [8]byte{'A', 'r', 't', '-', 'N', 'e', 't', 0}

// ArtNet sends frames as ArtDmx packets over UDP. The whole frame must fit
// into a single universe.
type ArtNet struct {
	conn     net.Conn
	universe uint16

	mu       sync.Mutex
	sequence uint8
	packet   []byte
}

var _ Sink = (*ArtNet)(nil)

// DialArtNet connects to the node at addr. If addr has no port, ArtNetPort is
// used.
func DialArtNet(addr string, universe int) (*ArtNet, error) {
	if universe < 0 || universe > artNetMaxUniverse {
		return nil, fmt.Errorf("universe %d out of range", universe)
	}

	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = net.JoinHostPort(addr, strconv.Itoa(ArtNetPort))
	}

	conn, err := net.Dial("udp", addr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to dial Art-Net node")
	}

	return &ArtNet{
		conn:     conn,
		universe: uint16(universe),
		packet:   make([]byte, 0, artNetHeaderSize+UniverseSize),
	}, nil
}

// Send implements Sink. offset is the DMX channel, counted from 0, of the
// first byte of pix. Channels outside of pix are sent as zero.
func (a *ArtNet) Send(offset int, pix []byte) error {
	if offset < 0 || offset+len(pix) > UniverseSize {
		return fmt.Errorf("%d channels at offset %d do not fit into a universe", len(pix), offset)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.sequence++
	if a.sequence == 0 {
		// 0 disables sequencing on the receiver.
		a.sequence = 1
	}

	a.packet = appendArtDmx(a.packet[:0], a.sequence, a.universe, offset, pix)
	if _, err := a.conn.Write(a.packet); err != nil {
		return errors.Wrap(err, "failed to write ArtDmx packet")
	}
	return nil
}

// Close closes the UDP socket.
func (a *ArtNet) Close() error {
	return a.conn.Close()
}

// appendArtDmx appends an ArtDmx packet carrying pix at the given channel
// offset to dst.
func appendArtDmx(dst []byte, sequence uint8, universe uint16, offset int, pix []byte) []byte {
	length := offset + len(pix)
	if length%2 == 1 {
		length++
	}
	if length < 2 {
		length = 2
	}

	dst = append(dst, artNetID[:]...)
	dst = binary.LittleEndian.AppendUint16(dst, artNetOpDmx)
	dst = binary.BigEndian.AppendUint16(dst, artNetProtocol)
	dst = append(dst,
		sequence,
		0, // physical
		byte(universe),
		byte(universe>>8),
	)
	dst = binary.BigEndian.AppendUint16(dst, uint16(length))

	data := len(dst)
	for i := 0; i < length; i++ {
		dst = append(dst, 0)
	}
	copy(dst[data+offset:], pix)
	return dst
}
