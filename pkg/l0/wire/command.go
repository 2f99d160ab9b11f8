package wire

import "strconv"

// Command is the operation carried by a frame.
type Command byte

// Commands. Secure variants travel with the same framing, the protocol
// itself adds no protection.
const (
	CommandInvalid            Command = 0
	CommandAck                Command = 1
	CommandRead               Command = 2
	CommandReadResponse       Command = 3
	CommandWrite              Command = 4
	CommandReadResponseSecure Command = 101
	CommandWriteSecure        Command = 102
	CommandReadSecure         Command = 103
)

// IsValid checks if c is one of the known commands.
func (c Command) IsValid() bool {
	switch c {
	case CommandAck, CommandRead, CommandReadResponse, CommandWrite,
		CommandReadResponseSecure, CommandWriteSecure, CommandReadSecure:
		return true
	}
	return false
}

// IsRead is true for Read and ReadSecure.
func (c Command) IsRead() bool {
	return c == CommandRead || c == CommandReadSecure
}

// IsWrite is true for Write and WriteSecure.
func (c Command) IsWrite() bool {
	return c == CommandWrite || c == CommandWriteSecure
}

// IsResponse is true for ReadResponse and ReadResponseSecure.
func (c Command) IsResponse() bool {
	return c == CommandReadResponse || c == CommandReadResponseSecure
}

// IsSecure is true for the secure variants.
func (c Command) IsSecure() bool {
	return c >= CommandReadResponseSecure && c <= CommandReadSecure
}

// Response returns the response command matching a read request.
func (c Command) Response() Command {
	if c.IsSecure() {
		return CommandReadResponseSecure
	}
	return CommandReadResponse
}

func (c Command) String() string {
	switch c {
	case CommandInvalid:
		return "Invalid"
	case CommandAck:
		return "Ack"
	case CommandRead:
		return "Read"
	case CommandReadResponse:
		return "ReadResponse"
	case CommandWrite:
		return "Write"
	case CommandReadResponseSecure:
		return "ReadResponseSecure"
	case CommandWriteSecure:
		return "WriteSecure"
	case CommandReadSecure:
		return "ReadSecure"
	}
	return "Command(" + strconv.Itoa(int(c)) + ")"
}
