package taskmeta

// ExitMode is the job restart-on-exit policy encoded in the job flags.
type ExitMode uint32

const (
	// ExitNoRestart leaves a terminated job terminated.
	ExitNoRestart ExitMode = 0
	// ExitRestart restarts the job immediately on termination.
	ExitRestart ExitMode = 1
	// ExitPanic panics the kernel on job termination.
	ExitPanic ExitMode = 2
	// ExitPeriodicRestart restarts the job on its period boundary.
	ExitPeriodicRestart ExitMode = 3
	// ExitReset resets the whole system on job termination.
	ExitReset ExitMode = 4

	numExitModes = 5
)

// exitModeNames maps configuration spellings to exit modes.
var exitModeNames = map[string]ExitMode{
	"norestart": ExitNoRestart,
	"restart":   ExitRestart,
	"panic":     ExitPanic,
	"periodic":  ExitPeriodicRestart,
	"reset":     ExitReset,
}

// String returns the configuration spelling of the mode.
func (m ExitMode) String() string {
	for name, mode := range exitModeNames {
		if mode == m {
			return name
		}
	}
	return "invalid"
}

// ParseExitMode parses a configuration spelling into an ExitMode.
func ParseExitMode(name string) (ExitMode, error) {
	mode, ok := exitModeNames[name]
	if !ok {
		return 0, newFormatError(ErrCodeInvalidExitMode, "unknown exit mode %q", name)
	}
	return mode, nil
}

// Job flags bit layout. Bit 0 carries the autostart boolean, bits 1-3 carry
// the exit mode ordinal. All remaining bits are reserved and preserved by
// the accessors.
const (
	jobFlagAutostartMask uint32 = 0x1

	jobFlagExitModeShift        = 1
	jobFlagExitModeMask  uint32 = 0x7 << jobFlagExitModeShift
)

// JobFlags is the bit-packed job-flags field of a task descriptor.
type JobFlags uint32

// Autostart reports whether the autostart bit is set.
func (f JobFlags) Autostart() bool {
	return uint32(f)&jobFlagAutostartMask != 0
}

// SetAutostart sets or clears the autostart bit, leaving every other bit
// untouched.
func (f *JobFlags) SetAutostart(auto bool) {
	raw := uint32(*f) &^ jobFlagAutostartMask
	if auto {
		raw |= jobFlagAutostartMask
	}
	*f = JobFlags(raw)
}

// ExitMode decodes the exit-mode bits. Returns an INVALID_EXIT_MODE format
// error if the bits decode outside the defined enumeration.
func (f JobFlags) ExitMode() (ExitMode, error) {
	mode := ExitMode((uint32(f) & jobFlagExitModeMask) >> jobFlagExitModeShift)
	if mode >= numExitModes {
		return 0, newFormatError(ErrCodeInvalidExitMode, "exit mode bits decode to %d", mode)
	}
	return mode, nil
}

// SetExitMode writes the exit-mode bits, leaving the autostart bit and all
// reserved bits untouched.
func (f *JobFlags) SetExitMode(mode ExitMode) error {
	if mode >= numExitModes {
		return newFormatError(ErrCodeInvalidExitMode, "exit mode %d out of range", mode)
	}
	raw := uint32(*f) &^ jobFlagExitModeMask
	raw |= (uint32(mode) << jobFlagExitModeShift) & jobFlagExitModeMask
	*f = JobFlags(raw)
	return nil
}

// PackJobFlags builds a job-flags field from scratch. All reserved bits are
// zero.
func PackJobFlags(autostart bool, mode ExitMode) (JobFlags, error) {
	var f JobFlags
	f.SetAutostart(autostart)
	if err := f.SetExitMode(mode); err != nil {
		return 0, err
	}
	return f, nil
}

// Task handle bit layout. The 16-bit numeric task id sits at bit offset 13;
// the remaining bits are reserved for the kernel (family and rerun counter)
// and must be preserved across id updates.
const (
	handleIDShift        = 13
	handleIDMask  uint32 = 0xffff << handleIDShift
)

// TaskHandle is the bit-packed task-handle field of a task descriptor.
type TaskHandle uint32

// ID extracts the 16-bit numeric task id.
func (h TaskHandle) ID() uint16 {
	return uint16((uint32(h) & handleIDMask) >> handleIDShift)
}

// SetID writes the numeric task id with a masked read-modify-write, never a
// plain assignment: bits outside the id mask keep their current value.
func (h *TaskHandle) SetID(id uint16) {
	raw := uint32(*h) &^ handleIDMask
	raw |= (uint32(id) << handleIDShift) & handleIDMask
	*h = TaskHandle(raw)
}
