package parser

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Decode decodes the payload of a transport MESSAGE packet. Event and Ack
// payloads are split with the top level tokenizer; their values are kept
// as raw JSON and decoded on demand.
func Decode(text string) (Packet, error) {
	var p Packet

	if text == "" {
		return p, fmt.Errorf("%w: empty", ErrMalformedPacket)
	}

	typ := text[0] - '0'
	if text[0] < '0' || Type(typ) > BinaryAck {
		return p, fmt.Errorf("%w: %q", ErrInvalidPacketType, text[0])
	}
	p.Type = Type(typ)
	rest := text[1:]

	if p.Type.IsBinary() {
		n, tail, ok := readUint(rest)
		if !ok || !strings.HasPrefix(tail, "-") {
			return p, fmt.Errorf("%w: missing attachment count", ErrMalformedPacket)
		}
		p.Attachments = int(n)
		rest = tail[1:]
	}

	p.Namespace = DefaultNamespace
	if strings.HasPrefix(rest, "/") {
		ns := rest
		rest = ""
		if i := strings.IndexByte(ns, ','); i >= 0 {
			ns, rest = ns[:i], ns[i+1:]
		}
		if i := strings.IndexByte(ns, '?'); i >= 0 {
			ns, p.Query = ns[:i], ns[i+1:]
		}
		p.Namespace = ns
	}

	if id, tail, ok := readUint(rest); ok {
		p.ID = id
		p.NeedAck = true
		rest = tail
	}

	switch p.Type {
	case Event, BinaryEvent:
		tokens, err := splitTopLevel(rest)
		if err != nil {
			return p, err
		}
		if len(tokens) == 0 {
			return p, fmt.Errorf("%w: missing event name", ErrMalformedPacket)
		}
		if err := json.Unmarshal([]byte(tokens[0]), &p.Event); err != nil {
			return p, fmt.Errorf("%w: event name %s", ErrMalformedPacket, tokens[0])
		}
		p.Args = rawTokens(tokens[1:])

	case Ack, BinaryAck:
		if rest == "" {
			return p, nil
		}
		tokens, err := splitTopLevel(rest)
		if err != nil {
			return p, err
		}
		p.Args = rawTokens(tokens)

	default:
		if rest == "" {
			return p, nil
		}
		if !json.Valid([]byte(rest)) {
			// Some servers send bare text as the reason of errors.
			b, _ := json.Marshal(rest)
			rest = string(b)
		}
		p.Args = []json.RawMessage{json.RawMessage(rest)}
	}

	return p, nil
}

func readUint(s string) (uint64, string, bool) {
	i := 0
	for i < len(s) && '0' <= s[i] && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, s, false
	}

	n, err := strconv.ParseUint(s[:i], 10, 64)
	if err != nil {
		return 0, s, false
	}
	return n, s[i:], true
}

func rawTokens(tokens []string) []json.RawMessage {
	if len(tokens) == 0 {
		return nil
	}

	ret := make([]json.RawMessage, len(tokens))
	for i, token := range tokens {
		ret[i] = json.RawMessage(token)
	}
	return ret
}
