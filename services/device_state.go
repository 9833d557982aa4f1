package services

import (
	"sync"
	"time"

	"github.com/restoscan/resto-app/session"
)

// DeviceState is the server-side mirror of what a customer device keeps
// locally: its current table identity, the session epoch it last observed
// and the ids of the orders it placed this session. It is cleared whenever
// session-boundary detection fires or the device drops to takeaway.
type DeviceState struct {
	Ref          session.TableRef
	Epoch        *time.Time
	ActiveOrders []uint
}

type DeviceStore struct {
	mu     sync.Mutex
	states map[string]*DeviceState
}

func NewDeviceStore() *DeviceStore {
	return &DeviceStore{states: make(map[string]*DeviceState)}
}

func (s *DeviceStore) Get(deviceKey string) DeviceState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.states[deviceKey]; ok {
		out := *st
		out.ActiveOrders = append([]uint(nil), st.ActiveOrders...)
		return out
	}
	return DeviceState{Ref: session.Takeaway()}
}

func (s *DeviceStore) SetRef(deviceKey string, ref session.TableRef, epoch *time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state(deviceKey)
	st.Ref = ref
	st.Epoch = epoch
}

// AppendOrder records a placed order id, appending rather than replacing so
// one device can track several concurrent orders in a session.
func (s *DeviceStore) AppendOrder(deviceKey string, orderID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state(deviceKey)
	st.ActiveOrders = append(st.ActiveOrders, orderID)
}

// Reset drops the device back to takeaway with no session attached.
func (s *DeviceStore) Reset(deviceKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[deviceKey] = &DeviceState{Ref: session.Takeaway()}
}

func (s *DeviceStore) state(deviceKey string) *DeviceState {
	st, ok := s.states[deviceKey]
	if !ok {
		st = &DeviceState{Ref: session.Takeaway()}
		s.states[deviceKey] = st
	}
	return st
}
