package registry

import (
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/chandlerburket/security-camera/internal/framebuffer"
	"github.com/chandlerburket/security-camera/internal/models"
)

// Entry mirrors one camera node: its live frame buffer, the latest heartbeat
// report and a single-slot command mailbox. Each entry has its own lock so
// unrelated cameras never contend.
type Entry struct {
	cameraID string
	frames   *framebuffer.Buffer

	mu            sync.RWMutex
	report        models.HeartbeatReport
	lastUpdate    time.Time
	lastFrameTime time.Time
	command       models.Command
}

// Snapshot is a point-in-time copy of an entry's mirrored state.
type Snapshot struct {
	CameraID      string
	Report        models.HeartbeatReport
	LastFrameTime time.Time
	LastUpdate    time.Time
}

func newEntry(cameraID string) *Entry {
	return &Entry{
		cameraID: cameraID,
		frames:   framebuffer.New(),
	}
}

// Frames exposes the live frame buffer for streaming readers.
func (e *Entry) Frames() *framebuffer.Buffer {
	return e.frames
}

// PublishFrame stores the newest frame and stamps its arrival.
func (e *Entry) PublishFrame(data []byte) error {
	now := time.Now()
	if err := e.frames.Publish(framebuffer.Frame{Data: data, Timestamp: now}); err != nil {
		return err
	}
	e.mu.Lock()
	e.lastFrameTime = now
	e.mu.Unlock()
	return nil
}

// LastFrameTime returns when the newest frame arrived, zero if none has.
func (e *Entry) LastFrameTime() time.Time {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastFrameTime
}

// UpdateReport replaces the mirrored heartbeat state and returns the previous
// report so callers can react to transitions. This is the sole mutator of
// the mirrored state.
func (e *Entry) UpdateReport(report models.HeartbeatReport) models.HeartbeatReport {
	e.mu.Lock()
	defer e.mu.Unlock()
	prev := e.report
	e.report = report
	e.lastUpdate = time.Now()
	return prev
}

// EnqueueCommand places a command in the mailbox, silently replacing any
// undelivered prior one. Last write wins.
func (e *Entry) EnqueueCommand(cmd models.Command) {
	e.mu.Lock()
	prev := e.command
	e.command = cmd
	e.mu.Unlock()

	if prev != "" && prev != cmd {
		log.Debug().
			Str("camera_id", e.cameraID).
			Str("replaced", prev.String()).
			Str("command", cmd.String()).
			Msg("Pending command overwritten")
	}
}

// DrainCommand removes and returns the pending command, if any. Called from
// the heartbeat exchange so each command is delivered at most once.
func (e *Entry) DrainCommand() (models.Command, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.command == "" {
		return "", false
	}
	cmd := e.command
	e.command = ""
	return cmd, true
}

// Snapshot copies the mirrored state without holding the lock beyond the
// copy itself.
func (e *Entry) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return Snapshot{
		CameraID:      e.cameraID,
		Report:        e.report,
		LastFrameTime: e.lastFrameTime,
		LastUpdate:    e.lastUpdate,
	}
}

// Registry is the aggregator's camera state, passed into request handlers
// instead of living in package globals. It also hosts the door sensor slot
// that shares the aggregator process.
type Registry struct {
	mu      sync.RWMutex
	cameras map[string]*Entry

	doorMu   sync.RWMutex
	door     models.DoorEvent
	doorSeen time.Time
	hasDoor  bool
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		cameras: make(map[string]*Entry),
	}
}

// GetOrCreate returns the entry for a camera, creating it on first contact.
func (r *Registry) GetOrCreate(cameraID string) *Entry {
	r.mu.RLock()
	entry, ok := r.cameras[cameraID]
	r.mu.RUnlock()
	if ok {
		return entry
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if entry, ok := r.cameras[cameraID]; ok {
		return entry
	}
	entry = newEntry(cameraID)
	r.cameras[cameraID] = entry

	log.Info().
		Str("camera_id", cameraID).
		Msg("Camera registered")

	return entry
}

// Get returns the entry for a camera if it has ever checked in.
func (r *Registry) Get(cameraID string) (*Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cameras[cameraID]
	return entry, ok
}

// Snapshots returns a stable-ordered copy of every camera's state.
func (r *Registry) Snapshots() []Snapshot {
	r.mu.RLock()
	entries := make([]*Entry, 0, len(r.cameras))
	for _, entry := range r.cameras {
		entries = append(entries, entry)
	}
	r.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].cameraID < entries[j].cameraID
	})

	snaps := make([]Snapshot, 0, len(entries))
	for _, entry := range entries {
		snaps = append(snaps, entry.Snapshot())
	}
	return snaps
}

// UpdateDoor stores the latest door sensor event.
func (r *Registry) UpdateDoor(event models.DoorEvent) {
	r.doorMu.Lock()
	r.door = event
	r.doorSeen = time.Now()
	r.hasDoor = true
	r.doorMu.Unlock()

	log.Info().
		Str("door_state", event.DoorState).
		Str("device", event.Device).
		Msg("Door sensor event")
}

// DoorStatus returns the last door event and when it arrived. ok is false
// when no event was ever received.
func (r *Registry) DoorStatus() (models.DoorEvent, time.Time, bool) {
	r.doorMu.RLock()
	defer r.doorMu.RUnlock()
	return r.door, r.doorSeen, r.hasDoor
}

// Close releases every entry's frame buffer, waking any streaming readers.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, entry := range r.cameras {
		entry.frames.Close()
	}
}
