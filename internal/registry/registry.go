// Package registry implements the service registry and procedure binding
// layer (spec components C4/C5): a bounded table mapping (instance_id,
// procedure_id) to a typed handler, and a reflection-based adapter that
// decodes an argument, invokes the handler, and encodes its result.
//
// The reference implementation erases a member-function pointer into a
// tagged union per argument-tuple shape. Go's reflect package lets this
// runtime do the same job with a single generic adapter instead of one
// hand-written specialization per signature: ExportMethod accepts any
// function value with zero to MaxArgs arguments and zero or one return value,
// inspects its reflect.Type once at registration time, and dispatches
// through internal/codec by reflect.Kind at call time.
//
// A procedure reference's identity for duplicate-detection and for the
// client-side lookup described in spec §4.3 is its reflect.Value.Pointer().
// For server-side registration this is the bound method value of a live
// service object (e.g. svc.DoHash). For client-side registration, where
// no service object exists, callers register a method value bound to a
// nil receiver of the same type (e.g. (*HashService)(nil).DoHash) purely
// to anchor identity and signature — ExportMethod never calls the
// function, so a nil receiver is safe as long as client and server build
// their registries with functions from the same underlying method set in
// the same order.
package registry

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/marmos91/dittorpc/internal/codec"
)

// MaxProceduresPerService bounds the number of procedures a single
// Service may register (spec §6).
const MaxProceduresPerService = 128

// MaxServices bounds the number of services a single Registry may hold
// (spec §6).
const MaxServices = 128

var (
	// ErrNotAFunction is returned by ExportMethod when given a non-func value.
	ErrNotAFunction = errors.New("registry: handler must be a function value")
	// ErrServiceFull is returned when a service's procedure table is at MaxProceduresPerService.
	ErrServiceFull = errors.New("registry: service procedure table is full")
	// ErrDuplicateHandler is returned when the same function value is registered twice.
	ErrDuplicateHandler = errors.New("registry: handler already registered")
	// ErrRegistryFull is returned by AddService when the registry is at MaxServices.
	ErrRegistryFull = errors.New("registry: service table is full")
	// ErrDuplicateInstance is returned by AddService for a reused instance_id.
	ErrDuplicateInstance = errors.New("registry: instance_id already registered")
)

// DispatchStatus reports the outcome of a Registry.Dispatch call, mapping
// directly onto spec §4.2/§4.3's accept_stat values.
type DispatchStatus int

const (
	// Success means the handler ran and its result, if any, was encoded into out.
	Success DispatchStatus = iota
	// NeedMoreArgs means args did not yet hold the full argument payload; non-fatal.
	NeedMoreArgs
	// GarbageArgs means the argument payload was malformed.
	GarbageArgs
	// ProgramMismatch means instance_id or procedure_id did not resolve to a handler.
	ProgramMismatch
	// InternalError means the result could not be encoded into out (buffer too small).
	InternalError
)

// MaxArgs bounds how many composite argument components a single
// procedure may declare (spec §3's composite-parameter concatenation).
const MaxArgs = 4

// procedure is one bound handler: its reflect.Value, an identity key for
// duplicate detection, and the argument/result shape derived once at
// registration time.
type procedure struct {
	fn        reflect.Value
	identity  uintptr
	argTypes  []reflect.Type // empty for a zero-argument handler
	hasResult bool
}

// Service is a labeled, ordered collection of procedures sharing one
// externally assigned instance_id.
type Service struct {
	instanceID uint32
	procedures []procedure
}

// NewService creates an empty service for the given instance_id. The
// instance_id itself is only meaningful once passed to Registry.AddService;
// Service does not validate it.
func NewService(instanceID uint32) *Service {
	return &Service{instanceID: instanceID}
}

// InstanceID returns the service's assigned instance_id.
func (s *Service) InstanceID() uint32 { return s.instanceID }

// ProcedureCount returns the number of procedures registered so far.
func (s *Service) ProcedureCount() int { return len(s.procedures) }

// ExportMethod registers fn as the next procedure, assigning it the next
// sequential procedure_id (spec §3: "procedure_id values assigned on
// registration are strictly sequential starting at 0"). fn must be a
// function value taking zero or more arguments (up to MaxArgs) and
// returning zero or one value; every argument and the return type must be
// one of internal/codec's Primitive types or string. Multiple arguments
// are decoded as spec §3's composite parameter: concatenated in
// declaration order, no separators.
func (s *Service) ExportMethod(fn any) (uint32, error) {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return 0, ErrNotAFunction
	}
	if len(s.procedures) >= MaxProceduresPerService {
		return 0, ErrServiceFull
	}

	ptr := v.Pointer()
	for _, p := range s.procedures {
		if p.identity == ptr {
			return 0, ErrDuplicateHandler
		}
	}

	t := v.Type()
	if t.NumIn() > MaxArgs {
		return 0, fmt.Errorf("registry: handler %v takes %d arguments, only 0-%d supported", t, t.NumIn(), MaxArgs)
	}
	if t.NumOut() > 1 {
		return 0, fmt.Errorf("registry: handler %v returns %d values, only 0 or 1 supported", t, t.NumOut())
	}

	p := procedure{fn: v, identity: ptr, hasResult: t.NumOut() == 1}
	for i := 0; i < t.NumIn(); i++ {
		argType := t.In(i)
		if !codecKind(argType.Kind()) {
			return 0, fmt.Errorf("registry: handler %v argument %d type %v is not wire-representable", t, i, argType)
		}
		p.argTypes = append(p.argTypes, argType)
	}
	if p.hasResult && !codecKind(t.Out(0).Kind()) {
		return 0, fmt.Errorf("registry: handler %v result type %v is not wire-representable", t, t.Out(0))
	}

	s.procedures = append(s.procedures, p)
	return uint32(len(s.procedures) - 1), nil
}

// ProcedureID resolves fn to the procedure_id it was registered under,
// matching on the same identity ExportMethod used. This is the client-side
// lookup described in spec §4.3: "to send a call, the client must resolve
// its own local copy of the service type to the same procedure_id."
func (s *Service) ProcedureID(fn any) (uint32, bool) {
	ptr := reflect.ValueOf(fn).Pointer()
	for i, p := range s.procedures {
		if p.identity == ptr {
			return uint32(i), true
		}
	}
	return 0, false
}

func (s *Service) lookup(procedureID uint32) (procedure, bool) {
	if int(procedureID) >= len(s.procedures) {
		return procedure{}, false
	}
	return s.procedures[procedureID], true
}

// Invoke decodes each of the handler's arguments (if any) from args in
// declaration order, calls the handler, and encodes its result (if any)
// into out. It
// implements spec §4.3's three dispatch-binding steps.
func (s *Service) Invoke(procedureID uint32, args []byte, out []byte) (consumed int, produced int, status DispatchStatus) {
	p, ok := s.lookup(procedureID)
	if !ok {
		return 0, 0, ProgramMismatch
	}

	callArgs := make([]reflect.Value, 0, len(p.argTypes))
	for _, argType := range p.argTypes {
		argVal, n, decStatus := decodeValue(argType, args[consumed:])
		switch decStatus {
		case codec.StatusNeedMore:
			return 0, 0, NeedMoreArgs
		case codec.StatusMalformed:
			return 0, 0, GarbageArgs
		}
		consumed += n
		callArgs = append(callArgs, argVal)
	}

	results := p.fn.Call(callArgs)

	if !p.hasResult {
		return consumed, 0, Success
	}

	n, ok := encodeValue(out, results[0])
	if !ok {
		return consumed, 0, InternalError
	}
	return consumed, n, Success
}

// Registry is the bounded table of services indexed by instance_id (spec's
// "program" field).
type Registry struct {
	services map[uint32]*Service
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{services: make(map[uint32]*Service)}
}

// AddService registers svc under instanceID. It fails if instanceID is
// already taken or the registry already holds MaxServices entries.
func (r *Registry) AddService(instanceID uint32, svc *Service) error {
	if _, exists := r.services[instanceID]; exists {
		return ErrDuplicateInstance
	}
	if len(r.services) >= MaxServices {
		return ErrRegistryFull
	}
	r.services[instanceID] = svc
	return nil
}

// Service returns the service registered under instanceID, if any.
func (r *Registry) Service(instanceID uint32) (*Service, bool) {
	svc, ok := r.services[instanceID]
	return svc, ok
}

// Dispatch resolves (instanceID, procedureID) by a map lookup of the
// service table and, on a hit, invokes the binding.
func (r *Registry) Dispatch(instanceID, procedureID uint32, args []byte, out []byte) (consumed int, produced int, status DispatchStatus) {
	svc, ok := r.services[instanceID]
	if !ok {
		return 0, 0, ProgramMismatch
	}
	return svc.Invoke(procedureID, args, out)
}

func codecKind(k reflect.Kind) bool {
	switch k {
	case reflect.Bool,
		reflect.Int8, reflect.Uint8,
		reflect.Int16, reflect.Uint16,
		reflect.Int32, reflect.Uint32,
		reflect.Int64, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.String:
		return true
	default:
		return false
	}
}

func decodeValue(t reflect.Type, buf []byte) (reflect.Value, int, codec.DecodeStatus) {
	switch t.Kind() {
	case reflect.Bool:
		v, n, st := codec.Decode[bool](buf)
		return reflect.ValueOf(v), n, st
	case reflect.Int8:
		v, n, st := codec.Decode[int8](buf)
		return reflect.ValueOf(v), n, st
	case reflect.Uint8:
		v, n, st := codec.Decode[uint8](buf)
		return reflect.ValueOf(v), n, st
	case reflect.Int16:
		v, n, st := codec.Decode[int16](buf)
		return reflect.ValueOf(v), n, st
	case reflect.Uint16:
		v, n, st := codec.Decode[uint16](buf)
		return reflect.ValueOf(v), n, st
	case reflect.Int32:
		v, n, st := codec.Decode[int32](buf)
		return reflect.ValueOf(v), n, st
	case reflect.Uint32:
		v, n, st := codec.Decode[uint32](buf)
		return reflect.ValueOf(v), n, st
	case reflect.Int64:
		v, n, st := codec.Decode[int64](buf)
		return reflect.ValueOf(v), n, st
	case reflect.Uint64:
		v, n, st := codec.Decode[uint64](buf)
		return reflect.ValueOf(v), n, st
	case reflect.Float32:
		v, n, st := codec.Decode[float32](buf)
		return reflect.ValueOf(v), n, st
	case reflect.Float64:
		v, n, st := codec.Decode[float64](buf)
		return reflect.ValueOf(v), n, st
	case reflect.String:
		s, n, st := codec.DecodeString(buf)
		return reflect.ValueOf(s), n, st
	default:
		return reflect.Value{}, 0, codec.StatusMalformed
	}
}

func encodeValue(buf []byte, v reflect.Value) (int, bool) {
	switch v.Kind() {
	case reflect.Bool:
		return codec.Encode(buf, v.Bool())
	case reflect.Int8:
		return codec.Encode(buf, int8(v.Int()))
	case reflect.Uint8:
		return codec.Encode(buf, uint8(v.Uint()))
	case reflect.Int16:
		return codec.Encode(buf, int16(v.Int()))
	case reflect.Uint16:
		return codec.Encode(buf, uint16(v.Uint()))
	case reflect.Int32:
		return codec.Encode(buf, int32(v.Int()))
	case reflect.Uint32:
		return codec.Encode(buf, uint32(v.Uint()))
	case reflect.Int64:
		return codec.Encode(buf, v.Int())
	case reflect.Uint64:
		return codec.Encode(buf, v.Uint())
	case reflect.Float32:
		return codec.Encode(buf, float32(v.Float()))
	case reflect.Float64:
		return codec.Encode(buf, v.Float())
	case reflect.String:
		return codec.EncodeString(buf, v.String())
	default:
		return 0, false
	}
}
