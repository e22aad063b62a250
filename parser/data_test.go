package parser

import "encoding/json"

func raw(s ...string) []json.RawMessage {
	ret := make([]json.RawMessage, len(s))
	for i := range s {
		ret[i] = json.RawMessage(s[i])
	}
	return ret
}

var tests = []struct {
	Name   string
	Packet Packet
	Text   string
}{
	{"Connect",
		Packet{Header: Header{Type: Connect, Namespace: "/"}},
		"0",
	},
	{"ConnectNamespace",
		Packet{Header: Header{Type: Connect, Namespace: "/chat"}},
		"0/chat,",
	},
	{"ConnectQuery",
		Packet{Header: Header{Type: Connect, Namespace: "/chat", Query: "token=abc"}},
		"0/chat?token=abc,",
	},
	{"ConnectSid",
		Packet{Header: Header{Type: Connect, Namespace: "/"}, Args: raw(`{"sid":"xyz"}`)},
		`0{"sid":"xyz"}`,
	},
	{"Disconnect",
		Packet{Header: Header{Type: Disconnect, Namespace: "/chat"}},
		"1/chat,",
	},
	{"Event",
		Packet{Header: Header{Type: Event, Namespace: "/"}, Event: "message", Args: raw(`"value"`)},
		`2["message","value"]`,
	},
	{"EventNoArgs",
		Packet{Header: Header{Type: Event, Namespace: "/"}, Event: "ping"},
		`2["ping"]`,
	},
	{"EventObject",
		Packet{Header: Header{Type: Event, Namespace: "/"}, Event: "new message",
			Args: raw(`{"username":"u","message":"a,b [c]"}`)},
		`2["new message",{"username":"u","message":"a,b [c]"}]`,
	},
	{"EventNamespaceAck",
		Packet{Header: Header{Type: Event, Namespace: "/chat", ID: 12, NeedAck: true}, Event: "add user",
			Args: raw(`"bob"`, `1`, `[1,[2]]`)},
		`2/chat,12["add user","bob",1,[1,[2]]]`,
	},
	{"Ack",
		Packet{Header: Header{Type: Ack, Namespace: "/", ID: 0, NeedAck: true}, Args: raw(`"ok"`, `true`)},
		`30["ok",true]`,
	},
	{"AckNamespace",
		Packet{Header: Header{Type: Ack, Namespace: "/chat", ID: 7, NeedAck: true}, Args: raw()},
		`3/chat,7[]`,
	},
	{"Error",
		Packet{Header: Header{Type: Error, Namespace: "/admin"}, Args: raw(`"not authorized"`)},
		`4/admin,"not authorized"`,
	},
	{"ErrorObject",
		Packet{Header: Header{Type: Error, Namespace: "/"}, Args: raw(`{"message":"nope"}`)},
		`4{"message":"nope"}`,
	},
	{"BinaryEvent",
		Packet{Header: Header{Type: BinaryEvent, Namespace: "/", Attachments: 1}, Event: "file",
			Args: raw(`{"_placeholder":true,"num":0}`)},
		`51-["file",{"_placeholder":true,"num":0}]`,
	},
	{"BinaryAck",
		Packet{Header: Header{Type: BinaryAck, Namespace: "/chat", ID: 3, NeedAck: true, Attachments: 2}, Args: raw(`1`)},
		`62-/chat,3[1]`,
	},
}
