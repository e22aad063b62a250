package socketio

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/sioclient/go-socket.io-client/parser"
)

var (
	errorType = reflect.TypeOf((*error)(nil)).Elem()
	eventType = reflect.TypeOf((*Event)(nil))
)

// funcHandler calls a function with arguments decoded from an event. The
// first parameter may be *Event to receive the event itself.
type funcHandler struct {
	f         reflect.Value
	argTypes  []reflect.Type
	needEvent bool
}

func newFuncHandler(f interface{}) (*funcHandler, error) {
	fv := reflect.ValueOf(f)
	if fv.Kind() != reflect.Func || fv.IsNil() {
		return nil, fmt.Errorf("%w: %T is not a func", ErrInvalidHandler, f)
	}

	ft := fv.Type()
	if ft.IsVariadic() {
		return nil, fmt.Errorf("%w: variadic %s", ErrInvalidHandler, ft)
	}

	args := make([]reflect.Type, ft.NumIn())
	for i := range args {
		args[i] = ft.In(i)
	}

	needEvent := len(args) > 0 && args[0] == eventType
	if needEvent {
		args = args[1:]
	}

	return &funcHandler{
		f:         fv,
		argTypes:  args,
		needEvent: needEvent,
	}, nil
}

// Call decodes the arguments of e into the parameters of the function and
// calls it. A trailing error result is returned as err, the other results
// as ret.
func (h *funcHandler) Call(e *Event) (ret []interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			ret, err = nil, fmt.Errorf("handler panic: %v", r)
		}
	}()

	args, err := parser.DecodeArgs(e.Args, h.argTypes)
	if err != nil {
		return nil, err
	}

	if h.needEvent {
		args = append([]reflect.Value{reflect.ValueOf(e)}, args...)
	}

	retV := h.f.Call(args)
	if len(retV) == 0 {
		return nil, nil
	}

	last := retV[len(retV)-1]
	if last.Type() == errorType {
		if !last.IsNil() {
			err = last.Interface().(error)
		}
		retV = retV[:len(retV)-1]
	}

	ret = make([]interface{}, len(retV))
	for i, v := range retV {
		ret[i] = v.Interface()
	}
	return ret, err
}

// ackArgs marshals handler results into the arguments of an ack.
func ackArgs(ret []interface{}) ([]json.RawMessage, error) {
	if len(ret) == 0 {
		return []json.RawMessage{}, nil
	}
	return parser.MarshalArgs(ret...)
}
