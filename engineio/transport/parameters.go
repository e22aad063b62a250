package transport

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// ConnParameters is connection parameter of server.
type ConnParameters struct {
	PingInterval time.Duration
	PingTimeout  time.Duration
	SID          string
	Upgrades     []string
}

// CanUpgrade reports whether the server announced name as an upgrade.
func (p ConnParameters) CanUpgrade(name string) bool {
	for _, u := range p.Upgrades {
		if u == name {
			return true
		}
	}
	return false
}

type jsonParameters struct {
	SID          *string  `json:"sid"`
	Upgrades     []string `json:"upgrades"`
	PingInterval *int     `json:"pingInterval"`
	PingTimeout  *int     `json:"pingTimeout"`
}

// ParseConnParameters parses the payload of an OPEN packet.
func ParseConnParameters(payload string) (ConnParameters, error) {
	var param jsonParameters
	if err := json.Unmarshal([]byte(payload), &param); err != nil {
		return ConnParameters{}, fmt.Errorf("%w: %v", ErrInvalidHandshake, err)
	}

	switch {
	case param.SID == nil || *param.SID == "":
		return ConnParameters{}, fmt.Errorf("%w: missing sid", ErrInvalidHandshake)
	case param.PingInterval == nil || *param.PingInterval <= 0:
		return ConnParameters{}, fmt.Errorf("%w: missing pingInterval", ErrInvalidHandshake)
	case param.PingTimeout == nil || *param.PingTimeout <= 0:
		return ConnParameters{}, fmt.Errorf("%w: missing pingTimeout", ErrInvalidHandshake)
	}

	return ConnParameters{
		SID:          *param.SID,
		Upgrades:     param.Upgrades,
		PingInterval: time.Duration(*param.PingInterval) * time.Millisecond,
		PingTimeout:  time.Duration(*param.PingTimeout) * time.Millisecond,
	}, nil
}

// WriteTo writes to w with json format.
func (p ConnParameters) WriteTo(w io.Writer) (int64, error) {
	interval := int(p.PingInterval / time.Millisecond)
	timeout := int(p.PingTimeout / time.Millisecond)
	arg := jsonParameters{
		SID:          &p.SID,
		Upgrades:     p.Upgrades,
		PingInterval: &interval,
		PingTimeout:  &timeout,
	}
	if arg.Upgrades == nil {
		arg.Upgrades = []string{}
	}

	writer := writer{
		w: w,
	}
	err := json.NewEncoder(&writer).Encode(arg)
	return writer.i, err
}

type writer struct {
	i int64
	w io.Writer
}

func (w *writer) Write(p []byte) (int, error) {
	n, err := w.w.Write(p)
	w.i += int64(n)
	return n, err
}
