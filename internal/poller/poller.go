// Package poller refreshes bridge resources on a fixed interval and
// publishes change events for the push channel.
package poller

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lightpanel/lightpaneld/internal/bridge"
	"github.com/lightpanel/lightpaneld/internal/eventbus"
	"github.com/lightpanel/lightpaneld/internal/storage"
)

// Resource kinds cached in the state store.
const (
	KindSensor = "sensor"
	KindGroup  = "group"
)

// Poller periodically fetches sensors and groups from the bridge, caches
// them in the state store and publishes an event for every resource whose
// cached version advanced. Last write wins; there is no conflict handling.
type Poller struct {
	client  *bridge.Client
	bus     *eventbus.Bus
	sensors *storage.TypedStore[bridge.Sensor]
	groups  *storage.TypedStore[bridge.Group]

	sensorsInterval time.Duration
	groupsInterval  time.Duration

	// Versions already broadcast, per kind
	sensorVersions map[string]int64
	groupVersions  map[string]int64

	stop    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

// New creates a poller over the given client and store.
func New(client *bridge.Client, bus *eventbus.Bus, store *storage.Store, sensorsInterval, groupsInterval time.Duration) *Poller {
	if sensorsInterval <= 0 {
		sensorsInterval = 10 * time.Second
	}
	if groupsInterval <= 0 {
		groupsInterval = 10 * time.Second
	}

	return &Poller{
		client:          client,
		bus:             bus,
		sensors:         storage.NewTypedStore[bridge.Sensor](store, KindSensor),
		groups:          storage.NewTypedStore[bridge.Group](store, KindGroup),
		sensorsInterval: sensorsInterval,
		groupsInterval:  groupsInterval,
		sensorVersions:  make(map[string]int64),
		groupVersions:   make(map[string]int64),
		stop:            make(chan struct{}),
		stopped:         make(chan struct{}),
	}
}

// Start launches the poll loop. It returns immediately.
func (p *Poller) Start(ctx context.Context) {
	go p.run(ctx)
	log.Info().
		Dur("sensors_interval", p.sensorsInterval).
		Dur("groups_interval", p.groupsInterval).
		Msg("Poller started")
}

// Stop terminates the poll loop and waits for it to exit.
func (p *Poller) Stop() {
	p.once.Do(func() {
		close(p.stop)
	})
	<-p.stopped
}

func (p *Poller) run(ctx context.Context) {
	defer close(p.stopped)

	sensorsTicker := time.NewTicker(p.sensorsInterval)
	defer sensorsTicker.Stop()
	groupsTicker := time.NewTicker(p.groupsInterval)
	defer groupsTicker.Stop()

	// Prime the cache right away so the first page load has data
	p.pollSensors(ctx)
	p.pollGroups(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stop:
			return
		case <-sensorsTicker.C:
			p.pollSensors(ctx)
		case <-groupsTicker.C:
			p.pollGroups(ctx)
		}
	}
}

func (p *Poller) pollSensors(ctx context.Context) {
	sensors, err := p.client.GetSensors(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to poll sensors")
		return
	}

	for _, sensor := range sensors {
		if err := p.sensors.Set(sensor.ID, sensor); err != nil {
			log.Warn().Err(err).Str("sensor", sensor.ID).Msg("Failed to cache sensor")
		}
	}

	dirty, err := p.sensors.GetDirty(p.sensorVersions)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to find changed sensors")
		return
	}

	for _, id := range dirty {
		sensor, version, err := p.sensors.Get(id)
		if err != nil {
			continue
		}
		p.sensorVersions[id] = version

		p.bus.Publish(eventbus.Event{
			Type:       eventbus.EventTypeSensorUpdate,
			ResourceID: id,
			Payload:    sensor,
		})
	}

	if len(dirty) > 0 {
		log.Debug().Int("changed", len(dirty)).Msg("Sensor poll published updates")
	}
}

func (p *Poller) pollGroups(ctx context.Context) {
	groups, err := p.client.GetGroups(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to poll groups")
		return
	}

	for _, group := range groups {
		if err := p.groups.Set(group.ID, group); err != nil {
			log.Warn().Err(err).Str("group", group.ID).Msg("Failed to cache group")
		}
	}

	dirty, err := p.groups.GetDirty(p.groupVersions)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to find changed groups")
		return
	}

	for _, id := range dirty {
		group, version, err := p.groups.Get(id)
		if err != nil {
			continue
		}
		p.groupVersions[id] = version

		p.bus.Publish(eventbus.Event{
			Type:       eventbus.EventTypeGroupUpdate,
			ResourceID: id,
			Payload:    group,
		})
	}

	if len(dirty) > 0 {
		log.Debug().Int("changed", len(dirty)).Msg("Group poll published updates")
	}
}
