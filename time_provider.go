package reagent

import "time"

// TimeProvider supplies the wall-clock time used for step timestamps and
// tool-call durations. It allows injecting a fixed or stepped clock in tests.
//
// The provider is also accessible in prompt templates via the .Time field:
//
//	Today is {{.Time.Today}}
type TimeProvider interface {
	// Now returns the current time.
	Now() time.Time

	// Today returns today's date as a string (YYYY-MM-DD).
	//
	// Template: {{.Time.Today}}
	Today() string
}

// DefaultTimeProvider is the standard TimeProvider using the system clock.
type DefaultTimeProvider struct{}

// NewDefaultTimeProvider creates a new DefaultTimeProvider.
func NewDefaultTimeProvider() *DefaultTimeProvider {
	return &DefaultTimeProvider{}
}

// Now returns the current system time.
func (p *DefaultTimeProvider) Now() time.Time {
	return time.Now()
}

// Today returns today's date as YYYY-MM-DD.
func (p *DefaultTimeProvider) Today() string {
	return p.Now().Format("2006-01-02")
}

// Compile-time check that DefaultTimeProvider implements TimeProvider.
var _ TimeProvider = (*DefaultTimeProvider)(nil)

// MockTimeProvider is a TimeProvider that returns a fixed time, advanced
// manually. Useful for testing time-dependent functionality.
type MockTimeProvider struct {
	fixedTime time.Time
}

// NewMockTimeProvider creates a MockTimeProvider with the given fixed time.
func NewMockTimeProvider(t time.Time) *MockTimeProvider {
	return &MockTimeProvider{fixedTime: t}
}

// SetTime updates the fixed time returned by Now().
func (m *MockTimeProvider) SetTime(t time.Time) {
	m.fixedTime = t
}

// Advance moves the fixed time forward by d.
func (m *MockTimeProvider) Advance(d time.Duration) {
	m.fixedTime = m.fixedTime.Add(d)
}

// Now returns the fixed time.
func (m *MockTimeProvider) Now() time.Time {
	return m.fixedTime
}

// Today returns the fixed date as YYYY-MM-DD.
func (m *MockTimeProvider) Today() string {
	return m.fixedTime.Format("2006-01-02")
}

// Compile-time check that MockTimeProvider implements TimeProvider.
var _ TimeProvider = (*MockTimeProvider)(nil)
