// Package progress fans out download progress events to subscribers.
package progress

import (
	"sync"

	"github.com/google/uuid"

	"playlist-downloader/pkg/models"
)

const (
	// subscriberBuffer is the per-subscriber channel capacity. Publishing to a
	// full channel drops the event so one slow reader cannot stall the pipeline.
	subscriberBuffer = 16

	// firehoseBuffer is the channel capacity for subscribers watching all downloads
	firehoseBuffer = 64

	// maxRetained bounds how many terminal events are kept for late subscribers
	maxRetained = 256
)

// TerminalLookup resolves the terminal event for a download with no open
// topic, typically from persisted records after a restart.
type TerminalLookup func(downloadID int64) (models.ProgressEvent, bool)

// Hub routes progress events from active downloads to per-download and
// firehose subscribers.
type Hub struct {
	mu            sync.Mutex
	topics        map[int64]*topic
	retained      map[int64]models.ProgressEvent
	retainedOrder []int64
	firehose      map[string]chan models.ProgressEvent
	lookup        TerminalLookup
}

type topic struct {
	subscribers map[string]chan models.ProgressEvent
}

// NewHub creates a hub. The lookup may be nil when there is no fallback
// source of terminal events.
func NewHub(lookup TerminalLookup) *Hub {
	return &Hub{
		topics:   make(map[int64]*topic),
		retained: make(map[int64]models.ProgressEvent),
		firehose: make(map[string]chan models.ProgressEvent),
		lookup:   lookup,
	}
}

// Open registers a topic for a download so subscribers can attach before the
// first event is published.
func (h *Hub) Open(downloadID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.topics[downloadID]; !ok {
		h.topics[downloadID] = &topic{subscribers: make(map[string]chan models.ProgressEvent)}
	}
}

// Publish delivers an event to the download's subscribers and to all firehose
// subscribers without blocking. A terminal event closes the download's topic
// and is retained for late subscribers.
func (h *Hub) Publish(event models.ProgressEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if t, ok := h.topics[event.DownloadID]; ok {
		for _, ch := range t.subscribers {
			select {
			case ch <- event:
			default:
			}
		}
	}

	for _, ch := range h.firehose {
		select {
		case ch <- event:
		default:
		}
	}

	if !event.Type.IsTerminal() {
		return
	}

	h.retain(event)

	if t, ok := h.topics[event.DownloadID]; ok {
		for _, ch := range t.subscribers {
			close(ch)
		}
		delete(h.topics, event.DownloadID)
	}
}

// retain keeps a terminal event for late subscribers, evicting the oldest
// entry once the cap is reached. Caller must hold h.mu.
func (h *Hub) retain(event models.ProgressEvent) {
	if _, ok := h.retained[event.DownloadID]; !ok {
		h.retainedOrder = append(h.retainedOrder, event.DownloadID)
	}
	h.retained[event.DownloadID] = event

	for len(h.retainedOrder) > maxRetained {
		oldest := h.retainedOrder[0]
		h.retainedOrder = h.retainedOrder[1:]
		delete(h.retained, oldest)
	}
}

// Subscribe attaches to a download's event stream. For a download that has
// already finished it returns a channel that yields the terminal event and
// closes. The cancel function detaches the subscriber and is safe to call
// after the topic has closed.
func (h *Hub) Subscribe(downloadID int64) (<-chan models.ProgressEvent, func()) {
	h.mu.Lock()

	if t, ok := h.topics[downloadID]; ok {
		id := uuid.NewString()
		ch := make(chan models.ProgressEvent, subscriberBuffer)
		t.subscribers[id] = ch
		h.mu.Unlock()

		cancel := func() {
			h.mu.Lock()
			defer h.mu.Unlock()

			top, ok := h.topics[downloadID]
			if !ok {
				return
			}
			if sub, ok := top.subscribers[id]; ok {
				delete(top.subscribers, id)
				close(sub)
			}
		}

		return ch, cancel
	}

	event, found := h.retained[downloadID]
	h.mu.Unlock()

	// No open topic: replay the terminal event when one is known
	if !found && h.lookup != nil {
		event, found = h.lookup(downloadID)
	}

	ch := make(chan models.ProgressEvent, 1)
	if found {
		ch <- event
	}
	close(ch)

	return ch, func() {}
}

// SubscribeAll attaches a firehose subscriber that receives events for every
// download.
func (h *Hub) SubscribeAll() (<-chan models.ProgressEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := uuid.NewString()
	ch := make(chan models.ProgressEvent, firehoseBuffer)
	h.firehose[id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()

		if sub, ok := h.firehose[id]; ok {
			delete(h.firehose, id)
			close(sub)
		}
	}

	return ch, cancel
}
