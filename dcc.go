package irc

import (
	"encoding/binary"
	"net"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// DCCKind identifies which DCC sub-grammar a DCCRequest carries.
type DCCKind int

const (
	DCCChat DCCKind = iota
	DCCSend
	DCCResume
	DCCAccept
)

// DCCRequest is the parsed form of a CTCP DCC message body ("CHAT chat <addr> <port>", "SEND
// <filename> <addr> <port> <filesize> [<token>]", etc).
type DCCRequest struct {
	Kind     DCCKind
	From     Nickname
	Filename string
	Addr     net.IP
	Port     int
	Filesize int64
	Position int64
	Token    string

	// Reverse is true when Port == 0, indicating a reverse DCC (the sender expects the
	// recipient to listen and connect back). The data-plane connection itself is always a
	// collaborator outside this package.
	Reverse bool
}

// ParseDCC parses the body of a CTCP DCC query (the text following "DCC ") into a DCCRequest.
// from is the nickname that sent the CTCP message.
func ParseDCC(from Nickname, body string) (*DCCRequest, error) {
	fields := strings.Fields(body)
	if len(fields) < 1 {
		return nil, newFacadeError(KindValidation, "DCC message has no subcommand")
	}

	switch strings.ToUpper(fields[0]) {
	case "CHAT":
		if len(fields) < 4 {
			return nil, newFacadeError(KindValidation, "DCC CHAT is missing arguments")
		}
		addr, err := decodeDCCAddr(fields[2])
		if err != nil {
			return nil, err
		}
		port, err := strconv.Atoi(fields[3])
		if err != nil {
			return nil, newFacadeError(KindValidation, "DCC CHAT has a malformed port")
		}
		return &DCCRequest{Kind: DCCChat, From: from, Addr: addr, Port: port, Reverse: port == 0}, nil

	case "SEND":
		if len(fields) < 5 {
			return nil, newFacadeError(KindValidation, "DCC SEND is missing arguments")
		}
		addr, err := decodeDCCAddr(fields[2])
		if err != nil {
			return nil, err
		}
		port, err := strconv.Atoi(fields[3])
		if err != nil {
			return nil, newFacadeError(KindValidation, "DCC SEND has a malformed port")
		}
		size, err := strconv.ParseInt(fields[4], 10, 64)
		if err != nil {
			return nil, newFacadeError(KindValidation, "DCC SEND has a malformed filesize")
		}
		req := &DCCRequest{Kind: DCCSend, From: from, Filename: fields[1], Addr: addr, Port: port, Filesize: size, Reverse: port == 0}
		if len(fields) > 5 {
			req.Token = fields[5]
		}
		return req, nil

	case "RESUME", "ACCEPT":
		if len(fields) < 4 {
			return nil, newFacadeError(KindValidation, "DCC "+fields[0]+" is missing arguments")
		}
		port, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, newFacadeError(KindValidation, "DCC "+fields[0]+" has a malformed port")
		}
		pos, err := strconv.ParseInt(fields[3], 10, 64)
		if err != nil {
			return nil, newFacadeError(KindValidation, "DCC "+fields[0]+" has a malformed position")
		}
		kind := DCCResume
		if strings.EqualFold(fields[0], "ACCEPT") {
			kind = DCCAccept
		}
		req := &DCCRequest{Kind: kind, From: from, Filename: fields[1], Port: port, Position: pos}
		if len(fields) > 4 {
			req.Token = fields[4]
		}
		return req, nil

	default:
		return nil, newFacadeError(KindValidation, "unrecognized DCC subcommand "+fields[0])
	}
}

// decodeDCCAddr decodes the DCC wire representation of an IPv4 address: a base-10 encoding of
// the address's 4 octets read as a big-endian (network byte order) 32-bit integer.
func decodeDCCAddr(s string) (net.IP, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return nil, newFacadeError(KindValidation, "malformed DCC address "+s)
	}
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(n))
	return net.IP(b), nil
}

// encodeDCCAddr encodes ip as the DCC wire representation: its 4 octets read as a big-endian
// 32-bit integer, rendered in base 10.
func encodeDCCAddr(ip net.IP) string {
	v4 := ip.To4()
	if v4 == nil {
		return "0"
	}
	return strconv.FormatUint(uint64(binary.BigEndian.Uint32(v4)), 10)
}

// DCCChatOffer builds a CTCP DCC CHAT request to target.
func DCCChatOffer(target string, addr net.IP, port int) *Message {
	return CTCP(target, ctcpDCC, "CHAT chat "+encodeDCCAddr(addr)+" "+strconv.Itoa(port))
}

// DCCSendOffer builds a CTCP DCC SEND request to target. Spaces in filename are replaced with
// underscores, since the DCC grammar space-splits the message body.
func DCCSendOffer(target, filename string, addr net.IP, port int, filesize int64) *Message {
	safe := strings.ReplaceAll(filename, " ", "_")
	body := "SEND " + safe + " " + encodeDCCAddr(addr) + " " + strconv.Itoa(port) + " " + strconv.FormatInt(filesize, 10)
	return CTCP(target, ctcpDCC, body)
}

// NewDCCToken generates a collision-resistant token to accompany a DCC SEND/RESUME/ACCEPT offer,
// used to disambiguate multiple simultaneous offers for the same filename.
func NewDCCToken() string {
	return uuid.New().String()
}
