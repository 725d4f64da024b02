// Package ledserial implements the serial protocol spoken between the clock
// and an LED controller board.
//
// Every packet starts with a one byte type and ends with the little endian
// CRC-32 (IEEE) of everything before it. Packets sent to the controller are
// incoming packets; packets sent by the controller are outgoing packets.
package ledserial

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
)

// Endianness defines the endianness of the protocol.
var Endianness = binary.LittleEndian

// MaxMessageLength is the longest message an outgoing packet can carry.
const MaxMessageLength = 1<<16 - 1

// IncomingPacketType is a type of packet sent to the controller.
type IncomingPacketType uint8

const (
	TypeInitializePacket IncomingPacketType = iota
	TypeClearPacket
	TypeSetPacket
)

// String returns a string representation of the packet type.
func (t IncomingPacketType) String() string {
	switch t {
	case TypeInitializePacket:
		return "initialize"
	case TypeClearPacket:
		return "clear"
	case TypeSetPacket:
		return "set"
	default:
		return fmt.Sprintf("IncomingPacketType(%d)", t)
	}
}

// IncomingPacket is a packet sent to the controller.
type IncomingPacket interface {
	// Type returns the type of packet.
	Type() IncomingPacketType
}

// InitializePacket tells the controller how many LEDs are chained.
type InitializePacket struct {
	NumLEDs uint16
}

// ClearPacket turns every LED off.
type ClearPacket struct{}

// SetPacket sets consecutive LEDs starting at Offset. Pix holds three bytes
// per LED in wire order.
type SetPacket struct {
	Offset uint16
	Pix    []uint8
}

func (p InitializePacket) Type() IncomingPacketType { return TypeInitializePacket }
func (p ClearPacket) Type() IncomingPacketType      { return TypeClearPacket }
func (p SetPacket) Type() IncomingPacketType        { return TypeSetPacket }

// OutgoingPacketType is a type of packet sent by the controller.
type OutgoingPacketType uint8

const (
	TypeAckPacket OutgoingPacketType = iota
	TypeErrorPacket
	TypePanicPacket
	TypeLogPacket
)

// String returns a string representation of the packet type.
func (t OutgoingPacketType) String() string {
	switch t {
	case TypeAckPacket:
		return "ack"
	case TypeErrorPacket:
		return "error"
	case TypePanicPacket:
		return "panic"
	case TypeLogPacket:
		return "log"
	default:
		return fmt.Sprintf("OutgoingPacketType(%d)", t)
	}
}

// OutgoingPacket is a packet sent by the controller.
type OutgoingPacket interface {
	// Type returns the type of packet.
	Type() OutgoingPacketType
}

// AckPacket acknowledges an incoming packet.
type AckPacket struct {
	IncomingPacketType IncomingPacketType
}

// ErrorPacket is a packet that indicates an error occurred.
type ErrorPacket struct {
	Message string
}

// PanicPacket is a packet that indicates the controller cannot recover.
type PanicPacket struct {
	Message string
}

// LogPacket is a packet that contains a log message.
type LogPacket struct {
	Message string
}

func (p AckPacket) Type() OutgoingPacketType   { return TypeAckPacket }
func (p ErrorPacket) Type() OutgoingPacketType { return TypeErrorPacket }
func (p PanicPacket) Type() OutgoingPacketType { return TypePanicPacket }
func (p LogPacket) Type() OutgoingPacketType   { return TypeLogPacket }

// ReadContext is the state of the LED strip. Data in this structure are
// required for the controller to read incoming packets.
type ReadContext struct {
	// NumLEDs is the number of LEDs in the strip.
	NumLEDs uint16
}

// ReadIncomingPacket reads an incoming packet from the given reader.
func ReadIncomingPacket(r io.Reader, context ReadContext) (IncomingPacket, error) {
	hash := crc32.NewIEEE()
	r = io.TeeReader(r, hash)

	var ptypeBuf [1]byte
	if _, err := io.ReadFull(r, ptypeBuf[:]); err != nil {
		return nil, fmt.Errorf("failed to read incoming packet type: %w", err)
	}

	var packet IncomingPacket

	switch ptype := IncomingPacketType(ptypeBuf[0]); ptype {
	case TypeInitializePacket:
		var p InitializePacket
		if err := binary.Read(r, Endianness, &p); err != nil {
			return nil, fmt.Errorf("failed to read number of LEDs: %w", err)
		}
		packet = p

	case TypeClearPacket:
		packet = ClearPacket{}

	case TypeSetPacket:
		var p SetPacket
		var length uint16
		if err := binary.Read(r, Endianness, &p.Offset); err != nil {
			return nil, fmt.Errorf("failed to read offset: %w", err)
		}
		if err := binary.Read(r, Endianness, &length); err != nil {
			return nil, fmt.Errorf("failed to read number of set LEDs: %w", err)
		}
		if int(p.Offset)+int(length) > int(context.NumLEDs) {
			return nil, fmt.Errorf(
				"set packet overflows the strip: offset %d + %d LEDs > %d",
				p.Offset, length, context.NumLEDs)
		}
		p.Pix = make([]uint8, 3*int(length))
		if _, err := io.ReadFull(r, p.Pix); err != nil {
			return nil, fmt.Errorf("failed to read pixel data: %w", err)
		}
		packet = p

	default:
		return nil, fmt.Errorf("unknown packet type: %s", ptype)
	}

	if err := readChecksum(r, hash.Sum32()); err != nil {
		return nil, err
	}

	return packet, nil
}

// WriteIncomingPacket writes an incoming packet to the given writer.
func WriteIncomingPacket(w io.Writer, p IncomingPacket) error {
	hash := crc32.NewIEEE()
	mw := io.MultiWriter(w, hash)

	if err := binary.Write(mw, Endianness, p.Type()); err != nil {
		return fmt.Errorf("failed to write packet type: %w", err)
	}

	switch p := p.(type) {
	case InitializePacket:
		if err := binary.Write(mw, Endianness, p); err != nil {
			return fmt.Errorf("failed to write packet: %w", err)
		}
	case ClearPacket:
	case SetPacket:
		if len(p.Pix)%3 != 0 || len(p.Pix)/3 > MaxMessageLength {
			return fmt.Errorf("invalid pixel data length %d", len(p.Pix))
		}
		if err := binary.Write(mw, Endianness, p.Offset); err != nil {
			return fmt.Errorf("failed to write offset: %w", err)
		}
		if err := binary.Write(mw, Endianness, uint16(len(p.Pix)/3)); err != nil {
			return fmt.Errorf("failed to write number of set LEDs: %w", err)
		}
		if _, err := mw.Write(p.Pix); err != nil {
			return fmt.Errorf("failed to write packet: %w", err)
		}
	default:
		return fmt.Errorf("unknown packet type: %T", p)
	}

	if err := binary.Write(w, Endianness, hash.Sum32()); err != nil {
		return fmt.Errorf("failed to write packet checksum: %w", err)
	}

	return nil
}

// ReadOutgoingPacket reads an outgoing packet from the given reader.
func ReadOutgoingPacket(r io.Reader) (OutgoingPacket, error) {
	hash := crc32.NewIEEE()
	r = io.TeeReader(r, hash)

	var ptypeBuf [1]byte
	if _, err := io.ReadFull(r, ptypeBuf[:]); err != nil {
		return nil, fmt.Errorf("failed to read outgoing packet type: %w", err)
	}

	var packet OutgoingPacket

	switch ptype := OutgoingPacketType(ptypeBuf[0]); ptype {
	case TypeAckPacket:
		var p AckPacket
		if err := binary.Read(r, Endianness, &p.IncomingPacketType); err != nil {
			return nil, fmt.Errorf("failed to read acked packet type: %w", err)
		}
		packet = p

	case TypeErrorPacket:
		msg, err := readMessage(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read error message: %w", err)
		}
		packet = ErrorPacket{Message: msg}

	case TypePanicPacket:
		msg, err := readMessage(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read panic message: %w", err)
		}
		packet = PanicPacket{Message: msg}

	case TypeLogPacket:
		msg, err := readMessage(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read log message: %w", err)
		}
		packet = LogPacket{Message: msg}

	default:
		return nil, fmt.Errorf("unknown packet type: %s", ptype)
	}

	if err := readChecksum(r, hash.Sum32()); err != nil {
		return nil, err
	}

	return packet, nil
}

// WriteOutgoingPacket writes an outgoing packet to the given writer.
func WriteOutgoingPacket(w io.Writer, p OutgoingPacket) error {
	hash := crc32.NewIEEE()
	mw := io.MultiWriter(w, hash)

	if err := binary.Write(mw, Endianness, p.Type()); err != nil {
		return fmt.Errorf("failed to write packet type: %w", err)
	}

	var err error
	switch p := p.(type) {
	case AckPacket:
		err = binary.Write(mw, Endianness, p.IncomingPacketType)
	case ErrorPacket:
		err = writeMessage(mw, p.Message)
	case PanicPacket:
		err = writeMessage(mw, p.Message)
	case LogPacket:
		err = writeMessage(mw, p.Message)
	default:
		return fmt.Errorf("unknown packet type: %T", p)
	}
	if err != nil {
		return fmt.Errorf("failed to write %s packet: %w", p.Type(), err)
	}

	if err := binary.Write(w, Endianness, hash.Sum32()); err != nil {
		return fmt.Errorf("failed to write packet checksum: %w", err)
	}

	return nil
}

// readChecksum reads the trailing checksum from r and compares it against
// sum, which must be taken before the checksum bytes pass through r.
func readChecksum(r io.Reader, sum uint32) error {
	var checksum uint32
	if err := binary.Read(r, Endianness, &checksum); err != nil {
		return fmt.Errorf("failed to read packet checksum: %w", err)
	}
	if checksum != sum {
		return fmt.Errorf("packet checksum mismatch")
	}
	return nil
}

func readMessage(r io.Reader) (string, error) {
	var length uint16
	if err := binary.Read(r, Endianness, &length); err != nil {
		return "", err
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func writeMessage(w io.Writer, msg string) error {
	if len(msg) > MaxMessageLength {
		msg = msg[:MaxMessageLength]
	}
	if err := binary.Write(w, Endianness, uint16(len(msg))); err != nil {
		return err
	}
	_, err := io.WriteString(w, msg)
	return err
}
