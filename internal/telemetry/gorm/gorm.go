// Package gormstorage persists recording sessions through GORM. Samples
// are buffered in write queues and flushed in batches by a background
// writer so the dispatch loop never waits on the database.
package gormstorage

import (
	"fmt"
	"sync/atomic"
	"time"

	"gorm.io/gorm"

	"github.com/antonymarion/forkQGroundControl/internal/logging"
	"github.com/antonymarion/forkQGroundControl/internal/model"
	"github.com/antonymarion/forkQGroundControl/internal/model/convert"
	"github.com/antonymarion/forkQGroundControl/internal/queue"
	"github.com/antonymarion/forkQGroundControl/pkg/core"
)

// Dependencies holds everything the GORM backend needs. The database
// callbacks come from the database manager so the backend keeps working
// across a Postgres-to-SQLite fallback.
type Dependencies struct {
	DB              *gorm.DB
	LogManager      *logging.SlogManager
	Tag             string
	IsDatabaseValid func() bool
	ShouldSaveLocal func() bool
	DumpToDisk      func() error
	DumpInterval    time.Duration
}

// queues holds the write queues drained by the background writer.
type queues struct {
	Telemetry    *queue.Queue[model.Telemetry]
	FlightEvents *queue.Queue[model.FlightEvent]
	RawFrames    *queue.Queue[model.RawFrame]
	ParamValues  *queue.Queue[model.ParamValue]
}

func newQueues() *queues {
	return &queues{
		Telemetry:    queue.New[model.Telemetry](),
		FlightEvents: queue.New[model.FlightEvent](),
		RawFrames:    queue.New[model.RawFrame](),
		ParamValues:  queue.New[model.ParamValue](),
	}
}

// Backend implements the telemetry backend on top of GORM.
type Backend struct {
	deps   Dependencies
	queues *queues

	sessionID           atomic.Uint64
	stopChan            chan struct{}
	lastDBWriteDuration time.Duration
}

// New creates a GORM backend from its dependencies.
func New(deps Dependencies) *Backend {
	return &Backend{deps: deps}
}

// Init prepares the write queues and starts the background writer. When
// the manager fell back to in-memory SQLite an extra goroutine vacuums
// the database to disk on a timer.
func (b *Backend) Init() error {
	b.queues = newQueues()
	b.stopChan = make(chan struct{})
	b.startDBWriter()
	if b.deps.ShouldSaveLocal() && b.deps.DumpToDisk != nil {
		go b.dumpLoop(b.stopChan)
	}
	return nil
}

// Close stops the writer, flushes whatever is still queued and dumps the
// fallback database to disk when one is in use.
func (b *Backend) Close() error {
	if b.stopChan != nil {
		close(b.stopChan)
		b.stopChan = nil
	}
	if b.deps.DB != nil {
		b.writeAll()
	}
	if b.deps.ShouldSaveLocal() && b.deps.DumpToDisk != nil {
		if err := b.deps.DumpToDisk(); err != nil {
			return fmt.Errorf("error dumping database to disk: %v", err)
		}
	}
	return nil
}

// StartSession inserts the session row and remembers its primary key so
// the writer can stamp it onto every queued sample.
func (b *Backend) StartSession(s *core.Session) error {
	if b.deps.DB == nil {
		return nil
	}
	row := convert.CoreToSession(*s)
	row.Tag = b.deps.Tag
	if err := b.deps.DB.Create(&row).Error; err != nil {
		return fmt.Errorf("error creating session: %v", err)
	}
	b.sessionID.Store(uint64(row.ID))
	return nil
}

// EndSession flushes the outstanding queues and stamps the end time on
// the session row. Samples are written first so the row only reads as
// ended once its data is complete.
func (b *Backend) EndSession() error {
	if b.deps.DB == nil {
		return nil
	}
	id := uint(b.sessionID.Load())
	if id == 0 {
		return nil
	}
	b.writeAll()
	err := b.deps.DB.Model(&model.Session{}).Where("id = ?", id).
		Update("end_time", time.Now()).Error
	if err != nil {
		return fmt.Errorf("error closing session: %v", err)
	}
	return nil
}

// SetSessionID overrides the session samples are attached to. Used by
// replay tooling that records into an existing session row.
func (b *Backend) SetSessionID(id uint) {
	b.sessionID.Store(uint64(id))
}

// SessionRowID returns the database id of the active session row, or 0
// when no session has been started.
func (b *Backend) SessionRowID() uint {
	return uint(b.sessionID.Load())
}

// RecordTelemetry queues one telemetry sample for batch insertion.
func (b *Backend) RecordTelemetry(s *core.TelemetrySample) error {
	b.queues.Telemetry.Push(convert.CoreToTelemetry(*s))
	return nil
}

// RecordFlightEvent queues one flight event for batch insertion.
func (b *Backend) RecordFlightEvent(e *core.FlightEvent) error {
	b.queues.FlightEvents.Push(convert.CoreToFlightEvent(*e))
	return nil
}

// RecordParamValue queues one parameter value for batch insertion.
func (b *Backend) RecordParamValue(p *core.ParamValue) error {
	b.queues.ParamValues.Push(convert.CoreToParamValue(*p))
	return nil
}

// RecordRawFrame queues one raw transport frame. Raw frames are not
// recorded on the in-memory SQLite fallback.
func (b *Backend) RecordRawFrame(f *core.RawFrame) error {
	if b.deps.ShouldSaveLocal() {
		return nil
	}
	b.queues.RawFrames.Push(convert.CoreToRawFrame(*f))
	return nil
}

// GetLastDBWriteDuration returns how long the most recent batch write took.
func (b *Backend) GetLastDBWriteDuration() time.Duration {
	return b.lastDBWriteDuration
}

// WriteQueueLengths reports how many samples sit in each write queue.
func (b *Backend) WriteQueueLengths() model.WriteQueueLengths {
	return model.WriteQueueLengths{
		Telemetry:    uint16(b.queues.Telemetry.Len()),
		FlightEvents: uint16(b.queues.FlightEvents.Len()),
		RawFrames:    uint16(b.queues.RawFrames.Len()),
		ParamValues:  uint16(b.queues.ParamValues.Len()),
	}
}

// writeQueue drains one queue into the database inside a transaction.
// On failure the items are pushed back so the next cycle retries them.
func writeQueue[T any](db *gorm.DB, q *queue.Queue[T], name string, log func(string, string, string), prepare func([]T)) {
	if q.Empty() {
		return
	}
	tx := db.Begin()
	items := q.GetAndEmpty()
	if prepare != nil {
		prepare(items)
	}
	if err := tx.Create(&items).Error; err != nil {
		log("writeQueue", fmt.Sprintf("error writing %s: %v", name, err), "error")
		tx.Rollback()
		q.Push(items...)
		return
	}
	tx.Commit()
}

// writeAll drains every queue, stamping the active session ID onto each
// row. Queues keep filling until a session row exists to attach them to.
func (b *Backend) writeAll() {
	sessionID := uint(b.sessionID.Load())
	if sessionID == 0 {
		return
	}
	log := b.deps.LogManager.WriteLog

	start := time.Now()
	wrote := !b.queues.Telemetry.Empty() || !b.queues.FlightEvents.Empty() ||
		!b.queues.RawFrames.Empty() || !b.queues.ParamValues.Empty()

	writeQueue(b.deps.DB, b.queues.Telemetry, "telemetry samples", log, func(items []model.Telemetry) {
		for i := range items {
			items[i].SessionID = sessionID
		}
	})
	writeQueue(b.deps.DB, b.queues.FlightEvents, "flight events", log, func(items []model.FlightEvent) {
		for i := range items {
			items[i].SessionID = sessionID
		}
	})
	writeQueue(b.deps.DB, b.queues.RawFrames, "raw frames", log, func(items []model.RawFrame) {
		for i := range items {
			items[i].SessionID = sessionID
		}
	})
	writeQueue(b.deps.DB, b.queues.ParamValues, "param values", log, func(items []model.ParamValue) {
		for i := range items {
			items[i].SessionID = sessionID
		}
	})

	if wrote {
		b.lastDBWriteDuration = time.Since(start)
	}
}

// startDBWriter starts the goroutine that drains the write queues into
// the database every couple of seconds.
func (b *Backend) startDBWriter() {
	stop := b.stopChan
	go func() {
		for {
			select {
			case <-stop:
				return
			default:
			}

			if b.deps.DB == nil || !b.deps.IsDatabaseValid() {
				time.Sleep(1 * time.Second)
				continue
			}

			b.writeAll()
			time.Sleep(2 * time.Second)
		}
	}()
}

// dumpLoop vacuums the in-memory fallback database to disk on a timer.
func (b *Backend) dumpLoop(stop chan struct{}) {
	interval := b.deps.DumpInterval
	if interval <= 0 {
		interval = 3 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := b.deps.DumpToDisk(); err != nil {
				b.deps.LogManager.WriteLog("dumpLoop", fmt.Sprintf("error dumping database to disk: %v", err), "error")
			}
		}
	}
}
