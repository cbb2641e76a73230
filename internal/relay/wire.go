package relay

import (
	"sort"
	"strings"
)

// Wire type tags. The first pipe-delimited field of every relay->client line
// is one of these; client->relay lines carry a tag only for replies and files.
const (
	tagSystem   = "_system_"
	tagUser     = "_user_"
	tagReply    = "_reply_"
	tagFile     = "_file_"
	tagUserList = "_userlist_"
)

const fieldSep = "|"

// EncodeSystem formats a system notice. System notices have no sender.
func EncodeSystem(text string) string {
	return tagSystem + fieldSep + text
}

// EncodeUserList formats the roster line. Names are published sorted
// ascending; an empty roster yields an empty payload.
func EncodeUserList(usernames []string) string {
	names := append([]string(nil), usernames...)
	sort.Strings(names)
	return tagUserList + fieldSep + strings.Join(names, ",")
}

// EncodeFromSender rewrites a raw inbound line into its broadcast form,
// attributing it to the sending session's username and color.
//
// The reply and file branches split off only the leading fields the client
// sent, so pipe characters embedded in the final field survive intact. An
// unrecognized or malformed tag falls through to the plain chat branch with
// the whole line as the body.
func EncodeFromSender(raw, username, color string) string {
	switch leadingTag(raw) {
	case tagReply:
		// inbound: _reply_|repliedToUser|repliedToText|body
		if parts := strings.SplitN(raw, fieldSep, 4); len(parts) == 4 {
			return strings.Join([]string{tagReply, username, color, parts[1], parts[2], parts[3]}, fieldSep)
		}
	case tagFile:
		// inbound: _file_|fileName|base64Payload
		if parts := strings.SplitN(raw, fieldSep, 3); len(parts) == 3 {
			return strings.Join([]string{tagFile, username, color, parts[1], parts[2]}, fieldSep)
		}
	}
	return strings.Join([]string{tagUser, username, color, raw}, fieldSep)
}

// ClientReply formats the client->relay reply line.
func ClientReply(repliedToUser, repliedToText, body string) string {
	return strings.Join([]string{tagReply, repliedToUser, repliedToText, body}, fieldSep)
}

// ClientFile formats the client->relay file line. The payload is an opaque
// base64 string; the relay never inspects or limits it.
func ClientFile(fileName, base64Payload string) string {
	return strings.Join([]string{tagFile, fileName, base64Payload}, fieldSep)
}

// FrameKind identifies one of the relay->client line shapes.
type FrameKind int

const (
	FrameSystem FrameKind = iota
	FrameUser
	FrameReply
	FrameFile
	FrameUserList
)

// Frame is a decoded relay->client line.
type Frame struct {
	Kind     FrameKind
	Sender   string
	Color    string
	Body     string   // chat body, reply body, or system text
	ReplyTo  string   // reply frames: username being replied to
	Quoted   string   // reply frames: the quoted text
	FileName string   // file frames
	Payload  string   // file frames: base64 contents, unmodified
	Users    []string // roster frames
}

// DecodeFrame parses one relay->client line. A line whose tag or shape is not
// recognized comes back as a system frame carrying the raw line, so a client
// never drops traffic it does not understand.
func DecodeFrame(line string) Frame {
	switch leadingTag(line) {
	case tagSystem:
		if p := strings.SplitN(line, fieldSep, 2); len(p) == 2 {
			return Frame{Kind: FrameSystem, Body: p[1]}
		}
	case tagUser:
		if p := strings.SplitN(line, fieldSep, 4); len(p) == 4 {
			return Frame{Kind: FrameUser, Sender: p[1], Color: p[2], Body: p[3]}
		}
	case tagReply:
		if p := strings.SplitN(line, fieldSep, 6); len(p) == 6 {
			return Frame{Kind: FrameReply, Sender: p[1], Color: p[2], ReplyTo: p[3], Quoted: p[4], Body: p[5]}
		}
	case tagFile:
		if p := strings.SplitN(line, fieldSep, 5); len(p) == 5 {
			return Frame{Kind: FrameFile, Sender: p[1], Color: p[2], FileName: p[3], Payload: p[4]}
		}
	case tagUserList:
		if p := strings.SplitN(line, fieldSep, 2); len(p) == 2 {
			var users []string
			if p[1] != "" {
				users = strings.Split(p[1], ",")
			}
			return Frame{Kind: FrameUserList, Users: users}
		}
	}
	return Frame{Kind: FrameSystem, Body: line}
}

func leadingTag(line string) string {
	if i := strings.Index(line, fieldSep); i >= 0 {
		return line[:i]
	}
	return line
}
