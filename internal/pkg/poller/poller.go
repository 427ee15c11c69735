package poller

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/anicoll/huawei-solar-integration/internal/pkg/huawei"
	"github.com/anicoll/huawei-solar-integration/internal/pkg/model"
)

const (
	// DefaultCooldown keeps the inverter from being flooded with requests.
	DefaultCooldown = 100 * time.Millisecond
	// DefaultReconnectDelay throttles fetches after the session dropped.
	DefaultReconnectDelay = 30 * time.Second
)

type deviceClient interface {
	Get(ctx context.Context, register string) (model.Value, error)
}

type Options struct {
	OptimizersInstalled bool
	BatteryInstalled    bool
	// Cooldown is the pause after every fetch, DefaultCooldown when 0.
	Cooldown time.Duration
	// ReconnectDelay is the pause after a connection error,
	// DefaultReconnectDelay when 0.
	ReconnectDelay time.Duration
}

// Poller runs register poll cycles for a single inverter and owns the
// resulting state. Readers only ever see copies through Snapshot.
type Poller struct {
	client deviceClient
	opts   Options
	logger *zap.Logger
	sleep  func(ctx context.Context, d time.Duration)
	now    func() time.Time

	mu           sync.RWMutex
	state        *model.Value
	available    bool
	attributes   map[string]model.Value
	sensorStates map[string]model.Value
	pvVoltage    []*model.Value
	pvCurrent    []*model.Value
}

func New(client deviceClient, opts Options) *Poller {
	if opts.Cooldown <= 0 {
		opts.Cooldown = DefaultCooldown
	}
	if opts.ReconnectDelay <= 0 {
		opts.ReconnectDelay = DefaultReconnectDelay
	}
	return &Poller{
		client:       client,
		opts:         opts,
		logger:       zap.L(),
		sleep:        sleepContext,
		now:          time.Now,
		attributes:   make(map[string]model.Value),
		sensorStates: make(map[string]model.Value),
	}
}

// WithLogger replaces the poller's logger, usually to add the inverter name.
func (p *Poller) WithLogger(logger *zap.Logger) *Poller {
	p.logger = logger
	return p
}

func (p *Poller) Options() Options {
	return p.opts
}

// Update performs one full refresh pass. Every register relevant to the
// configuration is attempted even when all of them fail.
func (p *Poller) Update(ctx context.Context) {
	started := p.now()

	p.updateStatic(ctx)

	ok := p.attempt(ctx, StateRegister, func(v model.Value) {
		p.state = &v
	})
	p.mu.Lock()
	p.available = ok
	p.mu.Unlock()

	for _, register := range DynamicAttributes {
		p.fetchInto(ctx, p.attributes, register)
	}

	for i := range p.pvStringCount() {
		p.attempt(ctx, PVVoltageRegister(i), func(v model.Value) {
			p.pvVoltage[i] = &v
		})
		p.attempt(ctx, PVCurrentRegister(i), func(v model.Value) {
			p.pvCurrent[i] = &v
		})
	}

	if p.opts.OptimizersInstalled {
		p.fetchInto(ctx, p.attributes, NbOnlineOptimizersAttr)
	}

	for _, register := range EntitySensors {
		p.fetchInto(ctx, p.sensorStates, register)
	}

	if p.opts.BatteryInstalled {
		for _, register := range BatteryEntitySensors {
			p.fetchInto(ctx, p.sensorStates, register)
		}
		for _, register := range BatteryAttributes {
			p.fetchInto(ctx, p.attributes, register)
		}
	}

	p.logger.Debug("poll cycle finished",
		zap.Bool("available", ok),
		zap.Duration("duration", p.now().Sub(started)),
	)
}

// updateStatic reads identity and capability registers that are still missing.
func (p *Poller) updateStatic(ctx context.Context) {
	for _, register := range StaticAttributes {
		if p.hasAttribute(register) {
			continue
		}
		if p.fetchInto(ctx, p.attributes, register) && register == NbPVStringsRegister {
			p.resizePVStrings()
		}
	}

	if !p.hasAttribute(GridStandardAttribute) {
		p.attempt(ctx, GridCodeRegister, func(v model.Value) {
			gc, ok := v.GridCode()
			if !ok {
				p.logger.Warn("unexpected grid code value", zap.Any("value", v.Data))
				return
			}
			p.attributes[GridStandardAttribute] = model.Value{Data: gc.Standard}
			p.attributes[GridCountryAttribute] = model.Value{Data: gc.Country}
		})
	}

	if p.opts.OptimizersInstalled && !p.hasAttribute(NbOptimizersRegister) {
		p.fetchInto(ctx, p.attributes, NbOptimizersRegister)
	}
}

func (p *Poller) resizePVStrings() {
	p.mu.Lock()
	defer p.mu.Unlock()
	n, ok := p.attributes[NbPVStringsRegister].Int()
	if !ok || n < 0 {
		n = 0
	}
	p.pvVoltage = make([]*model.Value, n)
	p.pvCurrent = make([]*model.Value, n)
}

func (p *Poller) pvStringCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.pvVoltage)
}

func (p *Poller) hasAttribute(register string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.attributes[register]
	return ok
}

func (p *Poller) fetchInto(ctx context.Context, target map[string]model.Value, register string) bool {
	return p.attempt(ctx, register, func(v model.Value) {
		target[register] = v
	})
}

// attempt fetches one register, records it through store on success and
// logs on failure. It never propagates the error. store runs under the
// write lock.
func (p *Poller) attempt(ctx context.Context, register string, store func(model.Value)) bool {
	v, err := p.client.Get(ctx, register)
	if err != nil {
		p.logger.Error("could not get register", zap.String("register", register), zap.Error(err))
		if errors.Is(err, huawei.ErrConnection) {
			p.sleep(ctx, p.opts.ReconnectDelay)
		} else {
			p.sleep(ctx, p.opts.Cooldown)
		}
		return false
	}

	p.mu.Lock()
	store(v)
	p.mu.Unlock()

	p.logger.Debug("get register", zap.String("register", register))
	p.sleep(ctx, p.opts.Cooldown)
	return true
}

// Snapshot returns a copy of the current state that is safe to hand out.
func (p *Poller) Snapshot() model.Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s := model.Snapshot{
		State:        p.state,
		Available:    p.available,
		Attributes:   p.attributes,
		SensorStates: p.sensorStates,
		PVVoltage:    p.pvVoltage,
		PVCurrent:    p.pvCurrent,
		TakenAt:      p.now(),
	}
	return s.Clone()
}

func sleepContext(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
