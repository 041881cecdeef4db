package referee

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"sueca-referee/internal/game"
	"sueca-referee/internal/referee/stream"
	"sueca-referee/internal/store"

	"github.com/rs/zerolog/log"
)

const (
	defaultHistorySize = 50
	closeReasonClosed  = "closed"
	closeReasonIdle    = "idle_timeout"
	closeReasonFeed    = "intake_closed"
	closeReasonStop    = "shutdown"
	closeReasonError   = "error"
)

type Options struct {
	Rules             game.Rules
	Drain             game.DrainPolicy
	IntakeBuffer      int
	EventBufferSize   int
	IdleTimeout       time.Duration
	ScanMinConfidence float64
	HistorySize       int
	Recorder          Recorder
}

// TableSpec overrides the coordinator defaults for one table.
type TableSpec struct {
	RevealTrump *bool  `json:"reveal_trump,omitempty"`
	DrainPolicy string `json:"drain_policy,omitempty"`
}

// Coordinator runs any number of independent tables. Each table owns its
// game loop goroutine, card intake and event buffer; nothing is shared
// between tables.
type Coordinator struct {
	opts Options

	mu            sync.Mutex
	tables        map[string]*tableRuntime
	tableObserver TableLifecycleObserver
	wg            sync.WaitGroup
}

func NewCoordinator(opts Options) *Coordinator {
	if opts.Drain == "" {
		opts.Drain = game.DrainRemaining
	}
	if opts.HistorySize <= 0 {
		opts.HistorySize = defaultHistorySize
	}
	return &Coordinator{
		opts:   opts,
		tables: map[string]*tableRuntime{},
	}
}

func (c *Coordinator) SetTableLifecycleObserver(obs TableLifecycleObserver) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tableObserver = obs
}

func (c *Coordinator) CreateTable(ctx context.Context, spec TableSpec) (TableInfo, error) {
	rules := c.opts.Rules
	if spec.RevealTrump != nil {
		rules.RevealTrump = *spec.RevealTrump
	}
	drain := c.opts.Drain
	if strings.TrimSpace(spec.DrainPolicy) != "" {
		d, err := game.ParseDrainPolicy(spec.DrainPolicy)
		if err != nil {
			return TableInfo{}, fmt.Errorf("%w: %v", ErrInvalidTableSpec, err)
		}
		drain = d
	}

	id := store.NewID()
	if c.opts.Recorder != nil {
		err := c.opts.Recorder.CreateTable(ctx, store.RefereeTable{
			ID:          id,
			DrainPolicy: string(drain),
			RevealTrump: rules.RevealTrump,
		})
		if err != nil {
			return TableInfo{}, err
		}
	}

	meta := TableMeta{TableID: id, RevealTrump: rules.RevealTrump, DrainPolicy: drain}
	rt := newTableRuntime(meta, c.opts)
	runCtx, cancel := context.WithCancel(context.Background())
	rt.cancel = cancel

	c.mu.Lock()
	c.tables[id] = rt
	obs := c.tableObserver
	c.mu.Unlock()
	metricTablesActive.Add(1)
	metricTablesCreated.Add(1)

	if obs != nil {
		obs.OnTableStarted(meta, rt.buf)
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		rt.run(runCtx)
		c.removeTable(rt)
	}()

	log.Info().
		Str("table_id", id).
		Bool("reveal_trump", rules.RevealTrump).
		Str("drain_policy", string(drain)).
		Msg("table created")
	return rt.info(), nil
}

// SubmitCard queues one recognised card identifier for the table. Whether the
// card is legal is decided by the table's game loop, not here.
func (c *Coordinator) SubmitCard(ctx context.Context, tableID, card string) error {
	card = strings.TrimSpace(card)
	if card == "" {
		metricCardsRejected.Add(1)
		return ErrEmptyCard
	}
	rt, err := c.lookup(tableID)
	if err != nil {
		metricCardsRejected.Add(1)
		return err
	}
	if err := rt.submit(ctx, card); err != nil {
		metricCardsRejected.Add(1)
		return err
	}
	metricCardsSubmitted.Add(1)
	return nil
}

func (c *Coordinator) GetState(tableID string) (TableState, error) {
	rt, err := c.lookup(tableID)
	if err != nil {
		return TableState{}, err
	}
	return rt.state(), nil
}

func (c *Coordinator) GetBuffer(tableID string) (*stream.EventBuffer, error) {
	rt, err := c.lookup(tableID)
	if err != nil {
		return nil, err
	}
	return rt.buf, nil
}

// ListTables returns the open tables, oldest first.
func (c *Coordinator) ListTables() []TableInfo {
	c.mu.Lock()
	rts := make([]*tableRuntime, 0, len(c.tables))
	for _, rt := range c.tables {
		rts = append(rts, rt)
	}
	c.mu.Unlock()
	sort.Slice(rts, func(i, j int) bool { return rts[i].meta.TableID < rts[j].meta.TableID })
	out := make([]TableInfo, 0, len(rts))
	for _, rt := range rts {
		out = append(out, rt.info())
	}
	return out
}

// CloseTable stops accepting cards, lets the table consume what is already
// queued and waits for its game loop to exit. A round still in progress at
// that point is abandoned without a verdict.
func (c *Coordinator) CloseTable(ctx context.Context, tableID string) error {
	rt, err := c.lookup(tableID)
	if err != nil {
		return err
	}
	rt.close(closeReasonClosed)
	select {
	case <-rt.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown cancels every table without waiting for queued cards.
func (c *Coordinator) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	for _, rt := range c.tables {
		rt.setCloseReason(closeReasonStop)
		rt.cancel()
	}
	c.mu.Unlock()
	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Coordinator) lookup(tableID string) (*tableRuntime, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rt, ok := c.tables[tableID]
	if !ok {
		return nil, ErrTableNotFound
	}
	return rt, nil
}

func (c *Coordinator) removeTable(rt *tableRuntime) {
	c.mu.Lock()
	if c.tables[rt.meta.TableID] == rt {
		delete(c.tables, rt.meta.TableID)
	}
	obs := c.tableObserver
	c.mu.Unlock()
	metricTablesActive.Add(-1)
	if obs != nil {
		obs.OnTableClosed(rt.meta.TableID)
	}
}
